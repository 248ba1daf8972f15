package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/finance-advisor/internal/advisor"
	"github.com/iwvelando/finance-advisor/internal/session"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		userID string
		months int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a user's monthly expense totals from the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("a user id is required")
			}
			if months < 1 || months > constants.MaxCompareMonths {
				return fmt.Errorf("months must be between 1 and %d, got %d", constants.MaxCompareMonths, months)
			}

			repo, err := storage.Open(a.cfg.Storage.Path, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					a.logger.Warn("failed to close storage", zap.String("op", "main.compare"), zap.Error(err))
				}
			}()

			service := advisor.NewService(repo, a.logger, tax.Options{UsdToInr: a.cfg.Tax.UsdToInr})
			totals, err := service.CompareMonths(cmd.Context(), session.Session{UserID: userID}, months, time.Now().UTC())
			if err != nil {
				return err
			}
			return a.writer(cmd).MonthComparison(totals)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id whose expenses are compared")
	cmd.Flags().IntVarP(&months, "months", "m", 3, "Number of months ending with the current one")
	return cmd
}
