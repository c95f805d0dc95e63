package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paycapture/internal/cli"
	"github.com/Veraticus/paycapture/internal/common"
	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
	"github.com/Veraticus/paycapture/internal/storage"
	"github.com/Veraticus/paycapture/internal/tui"
)

func inboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Review captured payments waiting to be recorded",
		Long:  `List, review, confirm and dismiss prefill requests stored by the capture commands.`,
	}

	cmd.AddCommand(inboxListCmd())
	cmd.AddCommand(inboxConfirmCmd())
	cmd.AddCommand(inboxDismissCmd())
	cmd.AddCommand(inboxReviewCmd())

	return cmd
}

func inboxListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prefill requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.PrefillFilter{Status: model.PrefillStatus(status), Limit: limit}
			if status == "all" {
				filter.Status = ""
			} else if !filter.Status.IsValid() {
				return common.NewUserError(fmt.Sprintf("Unknown status %q (pending, confirmed, dismissed, all)", status), storage.ErrInvalidStatus)
			}

			return withStorage(cmd, func(store service.Storage) error {
				requests, err := store.ListPrefillRequests(cmd.Context(), filter)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderPrefillTable(requests))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(model.PrefillPending), "filter by status (pending, confirmed, dismissed, all)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of requests to show")

	return cmd
}

func inboxConfirmCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "confirm <id>",
		Short: "Record a captured payment as an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(store service.Storage) error {
				record, err := store.ConfirmPrefillRequest(cmd.Context(), args[0], category, time.Now())
				if err != nil {
					return inboxError(args[0], err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Recorded %s in %s (record %d)", record.Amount.StringFixed(2), record.Category, record.ID)))
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategory, "expense category")

	return cmd
}

func inboxDismissCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Discard a captured payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(store service.Storage) error {
				if err := store.DismissPrefillRequest(cmd.Context(), args[0]); err != nil {
					return inboxError(args[0], err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Dismissed "+args[0]))
				return err
			})
		},
	}
}

func inboxReviewCmd() *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Walk through pending captures interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			final, err := tui.Run(cmd.Context(), store, tui.Config{
				Status:          model.PrefillPending,
				DefaultCategory: category,
				Limit:           limit,
			}, tui.Options{
				Input:     cmd.InOrStdin(),
				Output:    cmd.OutOrStdout(),
				AltScreen: true,
			})
			if err != nil {
				return err
			}

			confirmed, dismissed := final.Counts()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf(
				"%d recorded, %d dismissed", confirmed, dismissed)))
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategory, "category used when recording without typing one")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of requests to load")

	return cmd
}

func inboxError(id string, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError("No prefill request with id "+id, err)
	case errors.Is(err, storage.ErrPrefillNotPending):
		return common.NewUserError("Prefill request "+id+" was already confirmed or dismissed", err)
	default:
		return err
	}
}

// withStorage opens the configured inbox for the duration of fn.
func withStorage(cmd *cobra.Command, fn func(service.Storage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(store)
}
