// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package meals

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bloomi/cli/internal/backend"
	"bloomi/cli/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	analyzed  []backend.AnalyzeRequest
	dates     []string
	months    []string
	analysis  *model.MealAnalysis
	dailyErr  error
	monthStat *model.MonthlyStatistics
}

func (f *fakeAPI) AnalyzeMeal(_ context.Context, req backend.AnalyzeRequest) (*model.MealAnalysis, error) {
	f.analyzed = append(f.analyzed, req)
	return f.analysis, nil
}

func (f *fakeAPI) DailyMeals(_ context.Context, date string) ([]model.MealAnalysis, error) {
	f.dates = append(f.dates, date)
	return []model.MealAnalysis{}, f.dailyErr
}

func (f *fakeAPI) MonthlyStatistics(_ context.Context, ym string) (*model.MonthlyStatistics, error) {
	f.months = append(f.months, ym)
	return f.monthStat, nil
}

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00")
	heicHeader = []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")
	heifHeader = []byte("\x00\x00\x00\x18ftypmif1\x00\x00\x00\x00mif1heic")
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestAnalyzeUploadsDetectedType(t *testing.T) {
	api := &fakeAPI{analysis: &model.MealAnalysis{Name: "Bibimbap", Calories: 560, TraceID: "tr-1"}}
	svc := NewService(api, nil)

	out, err := svc.Analyze(context.Background(), AnalyzeInput{
		ImagePath: writeFile(t, "lunch.png", pngHeader),
		Name:      "  Bibimbap ",
		Weight:    350,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bibimbap", out.Name)

	require.Len(t, api.analyzed, 1)
	assert.Equal(t, "image/png", api.analyzed[0].ContentType)
	assert.Equal(t, "Bibimbap", api.analyzed[0].Name)
	assert.Equal(t, 350.0, api.analyzed[0].Weight)
}

func TestDetectImageType(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "jpeg", file: "a.jpg", data: jpegHeader, want: "image/jpeg"},
		{name: "png", file: "a.png", data: pngHeader, want: "image/png"},
		{name: "webp", file: "a.webp", data: webpHeader, want: "image/webp"},
		{name: "heic", file: "IMG_0001.HEIC", data: heicHeader, want: "image/heic"},
		{name: "heif", file: "a.heif", data: heifHeader, want: "image/heif"},
		{name: "content wins over extension", file: "photo.jpg", data: webpHeader, want: "image/webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectImageType(writeFile(t, tt.file, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectImageTypeRejectsOtherFiles(t *testing.T) {
	_, err := detectImageType(writeFile(t, "menu.heic", []byte("%PDF-1.7\n")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = detectImageType(writeFile(t, "a.gif", []byte("GIF89a\x01\x00\x01\x00")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	svc := NewService(&fakeAPI{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AnalyzeInput
	}{
		{name: "missing path", in: AnalyzeInput{}},
		{name: "negative weight", in: AnalyzeInput{ImagePath: writeFile(t, "a.png", pngHeader), Weight: -1}},
		{name: "not an image", in: AnalyzeInput{ImagePath: writeFile(t, "a.txt", []byte("hello world"))}},
		{name: "empty file", in: AnalyzeInput{ImagePath: writeFile(t, "a.jpg", nil)}},
		{name: "directory", in: AnalyzeInput{ImagePath: t.TempDir()}},
		{name: "does not exist", in: AnalyzeInput{ImagePath: filepath.Join(t.TempDir(), "nope.jpg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Analyze(ctx, tt.in)
			assert.Error(t, err)
		})
	}
}

func TestTodayUsesLocalDate(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 23, 30, 0, 0, time.Local) }

	_, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-09"}, api.dates)

	_, err = svc.ThisMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03"}, api.months)
}

func TestByDateAndMonthlyValidateFormat(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, nil)

	_, err := svc.ByDate(context.Background(), "03/09/2025")
	assert.Error(t, err)
	_, err = svc.Monthly(context.Background(), "2025-13")
	assert.Error(t, err)
	assert.Empty(t, api.dates)
	assert.Empty(t, api.months)
}

func TestDaysIn(t *testing.T) {
	feb, err := ParseYearMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 29, DaysIn(feb))

	apr, err := ParseYearMonth("2025-04")
	require.NoError(t, err)
	assert.Equal(t, 30, DaysIn(apr))
}
