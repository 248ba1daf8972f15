// Package advisor combines stored user data with the finance, advice and tax
// calculations.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/finance-advisor/internal/records"
	"github.com/iwvelando/finance-advisor/internal/session"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/datetime"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidSaving is returned when a savings ledger entry is rejected.
var ErrInvalidSaving = errors.New("invalid saving")

// Store persists per-user documents, savings and monthly expenses.
// storage.Repository implements it.
type Store interface {
	Document(ctx context.Context, userID, kind string) ([]byte, error)
	PutDocument(ctx context.Context, userID, kind string, version int, payload []byte) error
	Ledger(ctx context.Context, userID string) (finance.MonthlySavingsLedger, error)
	PutSaving(ctx context.Context, userID, monthKey string, amount float64) error
	MonthlyExpenses(ctx context.Context, userID string) ([]finance.Entry, error)
	AddMonthlyExpense(ctx context.Context, userID string, e finance.Entry) (finance.Entry, error)
	UpdateMonthlyExpense(ctx context.Context, userID string, e finance.Entry) error
	DeleteMonthlyExpense(ctx context.Context, userID, id string) error
}

// Service serves one user's requests at a time against a shared store.
type Service struct {
	store      Store
	logger     *zap.Logger
	taxOptions tax.Options
	tracker    *finance.Tracker
}

// NewService creates a new service with the given store and logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewService(store Store, logger *zap.Logger, taxOptions tax.Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		logger:     logger,
		taxOptions: taxOptions,
		tracker:    finance.NewTracker(logger),
	}
}

// TaxOptions returns the options used for tax estimates and foreign income
// conversion.
func (s *Service) TaxOptions() tax.Options {
	return s.taxOptions
}

// Profile returns the stored profile, or an empty one when none was saved.
func (s *Service) Profile(ctx context.Context, sess session.Session) (records.Profile, error) {
	data, err := s.store.Document(ctx, sess.UserID, records.KindProfile)
	if errors.Is(err, storage.ErrNotFound) {
		return records.NewProfile(), nil
	}
	if err != nil {
		return records.Profile{}, err
	}
	profile, err := records.DecodeProfile(data)
	if err != nil {
		return records.Profile{}, fmt.Errorf("decode stored profile: %w", err)
	}
	return profile, nil
}

// SaveProfile stores the profile at the current schema version and returns it
// normalized together with plausibility warnings.
func (s *Service) SaveProfile(ctx context.Context, sess session.Session, profile records.Profile) (records.Profile, []string, error) {
	if err := profile.Normalize(); err != nil {
		return records.Profile{}, nil, err
	}
	data, err := records.EncodeProfile(profile)
	if err != nil {
		return records.Profile{}, nil, err
	}
	if err := s.store.PutDocument(ctx, sess.UserID, records.KindProfile, records.SchemaVersion, data); err != nil {
		return records.Profile{}, nil, err
	}

	warnings := profile.Validator(nil).ValidateAll()
	s.logger.Debug("profile saved",
		zap.String("op", "advisor.SaveProfile"),
		zap.String("user", sess.UserID),
		zap.Int("warnings", len(warnings)),
	)
	return profile, warnings, nil
}

// Goal returns the stored savings goal, or the default goal when none was saved.
func (s *Service) Goal(ctx context.Context, sess session.Session) (records.Goal, error) {
	data, err := s.store.Document(ctx, sess.UserID, records.KindGoal)
	if errors.Is(err, storage.ErrNotFound) {
		return records.NewGoal(), nil
	}
	if err != nil {
		return records.Goal{}, err
	}
	goal, err := records.DecodeGoal(data)
	if err != nil {
		return records.Goal{}, fmt.Errorf("decode stored goal: %w", err)
	}
	return goal, nil
}

// SaveGoal stores the savings goal and returns it normalized.
func (s *Service) SaveGoal(ctx context.Context, sess session.Session, goal records.Goal) (records.Goal, error) {
	goal.Normalize()
	data, err := records.EncodeGoal(goal)
	if err != nil {
		return records.Goal{}, err
	}
	if err := s.store.PutDocument(ctx, sess.UserID, records.KindGoal, records.SchemaVersion, data); err != nil {
		return records.Goal{}, err
	}
	return goal, nil
}

// Ledger returns the user's monthly savings.
func (s *Service) Ledger(ctx context.Context, sess session.Session) (finance.MonthlySavingsLedger, error) {
	return s.store.Ledger(ctx, sess.UserID)
}

// RecordSaving sets the amount saved in the month identified by a YYYY-MM key.
func (s *Service) RecordSaving(ctx context.Context, sess session.Session, monthKey string, amount float64) error {
	month, err := datetime.ParseMonthKey(strings.TrimSpace(monthKey))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaving, err)
	}
	if mathutil.Finite(amount) != amount || amount < 0 {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidSaving)
	}
	return s.store.PutSaving(ctx, sess.UserID, month.Key(), mathutil.Round(amount))
}

// MonthlyExpenses returns the user's expense entries, newest period first.
func (s *Service) MonthlyExpenses(ctx context.Context, sess session.Session) ([]finance.Entry, error) {
	return s.store.MonthlyExpenses(ctx, sess.UserID)
}

// AddMonthlyExpense validates and stores a new entry.
func (s *Service) AddMonthlyExpense(ctx context.Context, sess session.Session, e finance.Entry) (finance.Entry, error) {
	e.Why = strings.TrimSpace(e.Why)
	if err := e.Validate(); err != nil {
		return finance.Entry{}, err
	}
	return s.store.AddMonthlyExpense(ctx, sess.UserID, e)
}

// UpdateMonthlyExpense validates and replaces an existing entry, returning the
// entry as stored.
func (s *Service) UpdateMonthlyExpense(ctx context.Context, sess session.Session, e finance.Entry) (finance.Entry, error) {
	e.Why = strings.TrimSpace(e.Why)
	if strings.TrimSpace(e.ID) == "" {
		return finance.Entry{}, fmt.Errorf("%w: id is required", finance.ErrInvalidEntry)
	}
	if err := e.Validate(); err != nil {
		return finance.Entry{}, err
	}
	if err := s.store.UpdateMonthlyExpense(ctx, sess.UserID, e); err != nil {
		return finance.Entry{}, err
	}
	return e, nil
}

// DeleteMonthlyExpense removes an entry.
func (s *Service) DeleteMonthlyExpense(ctx context.Context, sess session.Session, id string) error {
	return s.store.DeleteMonthlyExpense(ctx, sess.UserID, id)
}

// CompareMonths totals the user's expenses for the n months ending with the
// month containing now, oldest first. n is clamped to [1, MaxCompareMonths].
func (s *Service) CompareMonths(ctx context.Context, sess session.Session, n int, now time.Time) ([]finance.MonthTotal, error) {
	if n < 1 {
		n = 1
	}
	if n > constants.MaxCompareMonths {
		n = constants.MaxCompareMonths
	}
	entries, err := s.store.MonthlyExpenses(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return s.tracker.CompareMonths(entries, now, n), nil
}

// Advise builds the advisor report for a snapshot.
func (s *Service) Advise(in advice.Input, tolerance advice.RiskTolerance) advice.Report {
	return advice.BuildReport(in, tolerance)
}

// EstimateTax estimates taxes with the service's conversion rate.
func (s *Service) EstimateTax(in tax.Input) tax.Result {
	return tax.Estimate(in, s.taxOptions)
}

// Dashboard loads the profile, goal and savings ledger concurrently and derives
// the user's insights and advisor report.
func (s *Service) Dashboard(ctx context.Context, sess session.Session) (Dashboard, error) {
	var (
		profile records.Profile
		goal    records.Goal
		ledger  finance.MonthlySavingsLedger
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.Profile(gctx, sess)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goal, err = s.Goal(gctx, sess)
		if err != nil {
			return fmt.Errorf("load goal: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ledger, err = s.store.Ledger(gctx, sess.UserID)
		if err != nil {
			return fmt.Errorf("load savings ledger: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard load failed",
			zap.String("op", "advisor.Dashboard"),
			zap.String("user", sess.UserID),
			zap.Error(err),
		)
		return Dashboard{}, err
	}

	tolerance := advice.ParseRiskTolerance(profile.RiskTolerance)
	in := profile.AdviceInput(s.taxOptions.UsdToInr)
	return Dashboard{
		Profile:  profile,
		Goal:     goal,
		Ledger:   ledger,
		Insights: BuildInsights(profile, goal, ledger, s.taxOptions.UsdToInr),
		Report:   advice.BuildReport(in, tolerance),
		Warnings: profile.Validator(&goal).ValidateAll(),
	}, nil
}
