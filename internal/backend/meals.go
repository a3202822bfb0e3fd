// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"bloomi/cli/internal/apiclient"
	"bloomi/cli/internal/model"
)

// AnalyzeMeal uploads a meal photo as multipart/form-data to POST /api/v1/meal/analyze.
func (h *HTTP) AnalyzeMeal(ctx context.Context, in AnalyzeRequest) (*model.MealAnalysis, error) {
	f, err := os.Open(in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	req := h.client.R(ctx).
		SetMultipartField("image", filepath.Base(in.ImagePath), in.ContentType, f)
	if in.Name != "" {
		req.SetMultipartFormData(map[string]string{"name": in.Name})
	}
	if in.Weight > 0 {
		req.SetMultipartFormData(map[string]string{"weight": strconv.FormatFloat(in.Weight, 'f', -1, 64)})
	}
	if in.Notes != "" {
		req.SetMultipartFormData(map[string]string{"notes": in.Notes})
	}

	resp, err := h.client.Do(req, http.MethodPost, PathAnalyze)
	if err != nil {
		return nil, err
	}
	var out model.MealAnalysis
	if err := apiclient.DecodeData(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailyMeals calls GET /api/v1/meal/{date}. A missing data member is an empty day.
func (h *HTTP) DailyMeals(ctx context.Context, date string) ([]model.MealAnalysis, error) {
	resp, err := h.client.Do(h.client.R(ctx).SetPathParam("date", date), http.MethodGet, PathMealsByDate)
	if err != nil {
		return nil, err
	}
	var out []model.MealAnalysis
	if err := apiclient.DecodeData(resp, &out); err != nil {
		if errors.Is(err, apiclient.ErrEmptyData) {
			return []model.MealAnalysis{}, nil
		}
		return nil, err
	}
	return out, nil
}

// MonthlyStatistics calls GET /api/v1/meal/monthly/{yearMonth}.
func (h *HTTP) MonthlyStatistics(ctx context.Context, yearMonth string) (*model.MonthlyStatistics, error) {
	resp, err := h.client.Do(h.client.R(ctx).SetPathParam("yearMonth", yearMonth), http.MethodGet, PathMonthlyStats)
	if err != nil {
		return nil, err
	}
	out := model.MonthlyStatistics{YearMonth: yearMonth}
	if err := apiclient.DecodeData(resp, &out); err != nil {
		if errors.Is(err, apiclient.ErrEmptyData) {
			out.DailyCounts = map[string]int{}
			return &out, nil
		}
		return nil, err
	}
	if out.DailyCounts == nil {
		out.DailyCounts = map[string]int{}
	}
	return &out, nil
}
