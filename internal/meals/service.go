// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package meals implements meal photo analysis and meal history on top of the
// backend API.
package meals

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bloomi/cli/internal/backend"
	"bloomi/cli/internal/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaxImageSize is the largest photo accepted for upload.
const MaxImageSize = 10 << 20

// ErrUnsupportedImage is returned for files that are not a supported image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

var supportedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic", "image/heif"}

// API is the part of the backend the service calls.
type API interface {
	AnalyzeMeal(ctx context.Context, req backend.AnalyzeRequest) (*model.MealAnalysis, error)
	DailyMeals(ctx context.Context, date string) ([]model.MealAnalysis, error)
	MonthlyStatistics(ctx context.Context, yearMonth string) (*model.MonthlyStatistics, error)
}

// AnalyzeInput is a photo plus the optional hints a user can add.
type AnalyzeInput struct {
	ImagePath string  `validate:"required"`
	Name      string  `validate:"max=100"`
	Weight    float64 `validate:"gte=0,lte=10000"`
	Notes     string  `validate:"max=500"`
}

// Service wraps the meal endpoints.
type Service struct {
	api      API
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a meal service.
func NewService(api API, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      api,
		logger:   logger.Named("meals"),
		validate: validator.New(),
		now:      time.Now,
	}
}

// Analyze uploads a meal photo and returns the backend's nutritional breakdown.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*model.MealAnalysis, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid meal input: %w", err)
	}

	contentType, err := detectImageType(in.ImagePath)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("uploading meal photo",
		zap.String("file", filepath.Base(in.ImagePath)),
		zap.String("content_type", contentType))

	out, err := s.api.AnalyzeMeal(ctx, backend.AnalyzeRequest{
		ImagePath:   in.ImagePath,
		ContentType: contentType,
		Name:        in.Name,
		Weight:      in.Weight,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("meal analysed", zap.String("trace_id", out.TraceID))
	return out, nil
}

// detectImageType identifies the photo from its content, not its extension.
func detectImageType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s is empty", path)
	}
	if info.Size() > MaxImageSize {
		return "", fmt.Errorf("%s is larger than %d MiB", path, MaxImageSize>>20)
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	for _, t := range supportedTypes {
		if mtype.Is(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
}

// Today returns the meals logged today in local time.
func (s *Service) Today(ctx context.Context) ([]model.MealAnalysis, error) {
	return s.ByDate(ctx, FormatLocalDate(s.now()))
}

// ByDate returns the meals logged on date (YYYY-MM-DD).
func (s *Service) ByDate(ctx context.Context, date string) ([]model.MealAnalysis, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	return s.api.DailyMeals(ctx, date)
}

// Monthly returns per-day meal counts for yearMonth (YYYY-MM).
func (s *Service) Monthly(ctx context.Context, yearMonth string) (*model.MonthlyStatistics, error) {
	if _, err := ParseYearMonth(yearMonth); err != nil {
		return nil, err
	}
	return s.api.MonthlyStatistics(ctx, yearMonth)
}

// ThisMonth returns statistics for the current local month.
func (s *Service) ThisMonth(ctx context.Context) (*model.MonthlyStatistics, error) {
	return s.Monthly(ctx, FormatYearMonth(s.now()))
}
