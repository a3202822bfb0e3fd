// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

// Macros is the macronutrient breakdown in grams.
type Macros struct {
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// Serving describes the estimated portion.
type Serving struct {
	Unit   string  `json:"unit"`
	Amount float64 `json:"amount"`
}

// FoodItem is one recognised component of a meal.
type FoodItem struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
}

// MealAnalysis is the nutritional breakdown the backend returns for a meal photo.
type MealAnalysis struct {
	Name       string     `json:"name"`
	Calories   float64    `json:"calories"`
	Macros     Macros     `json:"macros"`
	Serving    Serving    `json:"serving"`
	Items      []FoodItem `json:"items"`
	Confidence float64    `json:"confidence"`
	Advice     string     `json:"advice"`
	TraceID    string     `json:"traceId"`
}

// MonthlyStatistics counts analysed meals per day for one month.
type MonthlyStatistics struct {
	YearMonth   string         `json:"yearMonth"`
	DailyCounts map[string]int `json:"dailyCounts"`
	TotalCount  int            `json:"totalCount"`
	TraceID     string         `json:"traceId"`
}
