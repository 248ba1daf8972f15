package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/datetime"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidEntry is returned when a monthly expense entry fails validation.
var ErrInvalidEntry = errors.New("invalid monthly expense entry")

// Entry is a single expense recorded against a calendar month.
type Entry struct {
	ID     string  `json:"id"`
	Why    string  `json:"why"`
	Amount float64 `json:"amount"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
}

// Key returns the YYYY-MM key of the month the entry belongs to.
func (e Entry) Key() string {
	return datetime.Month{Year: e.Year, Month: time.Month(e.Month)}.Key()
}

// Validate checks that the entry has a reason, a positive finite amount and a
// real calendar month.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Why) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	if mathutil.Finite(e.Amount) <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidEntry)
	}
	if e.Month < 1 || e.Month > constants.MonthsPerYear {
		return fmt.Errorf("%w: month %d is out of range", ErrInvalidEntry, e.Month)
	}
	if e.Year < 1 {
		return fmt.Errorf("%w: year %d is out of range", ErrInvalidEntry, e.Year)
	}
	return nil
}

// MonthTotal is the summed expense of one calendar month.
type MonthTotal struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Tracker aggregates monthly expense entries.
type Tracker struct {
	logger *zap.Logger
}

// NewTracker creates a new tracker with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger}
}

// MonthTotals sums the valid entries per YYYY-MM key. Invalid entries are skipped.
func (t *Tracker) MonthTotals(entries []Entry) map[string]MonthTotal {
	totals := make(map[string]MonthTotal)
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			t.logger.Debug("skipping monthly expense entry",
				zap.String("op", "finance.MonthTotals"),
				zap.String("id", entry.ID),
				zap.Error(err),
			)
			continue
		}
		key := entry.Key()
		total := totals[key]
		total.Key = key
		total.Label = datetime.Month{Year: entry.Year, Month: time.Month(entry.Month)}.Label()
		total.Total += entry.Amount
		total.Count++
		totals[key] = total
	}
	return totals
}

// CompareMonths returns the totals of the n months ending with the month
// containing now, oldest first. Months without entries report a zero total.
func (t *Tracker) CompareMonths(entries []Entry, now time.Time, n int) []MonthTotal {
	totals := t.MonthTotals(entries)
	months := datetime.LastNMonths(now, n)
	out := make([]MonthTotal, len(months))
	for i, m := range months {
		total, ok := totals[m.Key()]
		if !ok {
			total = MonthTotal{Key: m.Key(), Label: m.Label()}
		}
		out[i] = total
	}
	return out
}

// EntriesForMonth returns the entries recorded against year and month, in input order.
func EntriesForMonth(entries []Entry, year, month int) []Entry {
	out := make([]Entry, 0)
	for _, entry := range entries {
		if entry.Year == year && entry.Month == month {
			out = append(out, entry)
		}
	}
	return out
}
