// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the contract and HTTP implementation for the Bloomi
// backend: session endpoints (/auth/*), meal analysis and history endpoints
// (/api/v1/meal/*) and the browser login entry point.
package backend

import (
	"context"

	"bloomi/cli/internal/model"
)

// API defines backend operations the client depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	GetVersion(ctx context.Context) (string, error)
	// GetMe returns the profile for the stored access token. A rejected token
	// surfaces as a 401 *apiclient.StatusError.
	GetMe(ctx context.Context) (*model.User, error)
	// Logout invalidates accessToken on the backend. The token is passed
	// explicitly because local credentials are already gone when this runs.
	Logout(ctx context.Context, accessToken string) error
	// DeleteAccount permanently removes the current account.
	DeleteAccount(ctx context.Context) error
	// LoginURL is the browser entry point for the given identity provider.
	LoginURL(provider, redirectURI string) string

	AnalyzeMeal(ctx context.Context, req AnalyzeRequest) (*model.MealAnalysis, error)
	DailyMeals(ctx context.Context, date string) ([]model.MealAnalysis, error)
	MonthlyStatistics(ctx context.Context, yearMonth string) (*model.MonthlyStatistics, error)
}

// AnalyzeRequest is a meal photo upload with optional user-provided hints.
type AnalyzeRequest struct {
	// ImagePath is the local file uploaded as the "image" part.
	ImagePath string
	// ContentType of the image, e.g. "image/jpeg".
	ContentType string
	Name        string
	// Weight in grams; zero omits the field.
	Weight float64
	Notes  string
}
