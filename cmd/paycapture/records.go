package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

const dateLayout = "2006-01-02"

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Work with confirmed expense records",
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsAddCmd())
	cmd.AddCommand(recordsStatsCmd())

	return cmd
}

func recordsListCmd() *cobra.Command {
	var (
		from  string
		to    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expense records, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.RecordFilter{Limit: limit}

			if from != "" {
				start, err := time.ParseInLocation(dateLayout, from, time.Local)
				if err != nil {
					return common.NewUserError("Invalid --from date, expected YYYY-MM-DD", err)
				}
				filter.StartDate = &start
			}
			if to != "" {
				end, err := time.ParseInLocation(dateLayout, to, time.Local)
				if err != nil {
					return common.NewUserError("Invalid --to date, expected YYYY-MM-DD", err)
				}
				end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
				filter.EndDate = &end
			}

			return withStorage(cmd, func(store service.Storage) error {
				records, err := store.GetRecords(cmd.Context(), filter)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRecordTable(records))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of records to show")

	return cmd
}

func recordsAddCmd() *cobra.Command {
	var (
		category string
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add a manual expense record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil || !amount.IsPositive() {
				return common.NewUserError("Amount must be a positive number", err)
			}

			record := &model.Record{
				Timestamp: time.Now(),
				Amount:    amount.Round(2),
				Category:  category,
				Note:      note,
				Source:    model.RecordSourceManual,
			}

			return withStorage(cmd, func(store service.Storage) error {
				if err := store.SaveRecord(cmd.Context(), record); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Recorded %s in %s (record %d)", record.Amount.StringFixed(2), record.Category, record.ID)))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategory, "expense category")
	cmd.Flags().StringVarP(&note, "note", "n", "", "free-form note")

	return cmd
}

func recordsStatsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show spending per category for one month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := monthRange(month, time.Now())
			if err != nil {
				return err
			}

			return withStorage(cmd, func(store service.Storage) error {
				records, err := store.GetRecords(cmd.Context(), service.RecordFilter{StartDate: &start, EndDate: &end})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(),
					cli.RenderCategoryTotals(start.Format("January 2006"), model.TotalsByCategory(records)))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to summarize (YYYY-MM, default current month)")

	return cmd
}

// monthRange returns the first and last instant of month in local time.
// An empty month selects the month containing now.
func monthRange(month string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if month == "" {
		now = now.In(time.Local)
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	} else {
		parsed, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewUserError("Invalid --month, expected YYYY-MM", err)
		}
		start = parsed
	}
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
}
