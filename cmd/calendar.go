// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"strconv"
	"time"

	"bloomi/cli/internal/httperrors"
	"bloomi/cli/internal/meals"
	"bloomi/cli/internal/model"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// calendarCmd shows a month grid with the number of meals logged per day.
var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Show meals per day for a month (default this month)",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireLogin(); err != nil {
			return err
		}

		month := meals.FormatYearMonth(time.Now())
		if len(args) == 1 {
			month = args[0]
		}
		first, err := meals.ParseYearMonth(month)
		if err != nil {
			return err
		}

		stats, err := a.meals.Monthly(cmd.Context(), month)
		if err != nil {
			if httperrors.Classify(err) == httperrors.KindUnauthorized {
				return httperrors.Report(err, "loading the calendar", a.cfg.APIURL)
			}
			a.logger.Warn("failed to load monthly statistics", zap.String("month", month), zap.Error(err))
			pterm.Warning.Println("Could not load statistics from the server, showing an empty month")
			stats = &model.MonthlyStatistics{YearMonth: month, DailyCounts: map[string]int{}}
		}

		renderCalendar(first, stats)
		return nil
	},
}

// renderCalendar prints a Monday-first month grid. Days with meals show the
// count next to the day number.
func renderCalendar(first time.Time, stats *model.MonthlyStatistics) {
	data := calendarGrid(first, stats.DailyCounts)
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(first.Format("January 2006")))
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	total := stats.TotalCount
	if total == 0 {
		for _, n := range stats.DailyCounts {
			total += n
		}
	}
	pterm.Printf("%d meals logged\n", total)
}

func calendarGrid(first time.Time, counts map[string]int) pterm.TableData {
	data := pterm.TableData{{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}}
	offset := (int(first.Weekday()) + 6) % 7
	row := make([]string, 7)
	col := offset
	for day := 1; day <= meals.DaysIn(first); day++ {
		date := time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location())
		cell := strconv.Itoa(day)
		if n := counts[meals.FormatLocalDate(date)]; n > 0 {
			cell += pterm.NewStyle(pterm.FgGreen).Sprintf(" ●%d", n)
		}
		row[col] = cell
		col++
		if col == 7 {
			data = append(data, row)
			row = make([]string, 7)
			col = 0
		}
	}
	if col > 0 {
		data = append(data, row)
	}
	return data
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}
