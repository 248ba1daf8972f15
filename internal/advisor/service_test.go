package advisor

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/finance-advisor/internal/records"
	"github.com/iwvelando/finance-advisor/internal/session"
	"github.com/iwvelando/finance-advisor/internal/storage"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/iwvelando/finance-advisor/pkg/testutil"
	"go.uber.org/zap"
)

type memoryStore struct {
	mu        sync.Mutex
	documents map[string][]byte
	ledgers   map[string]finance.MonthlySavingsLedger
	entries   map[string][]finance.Entry
	nextID    int
	ledgerErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		documents: map[string][]byte{},
		ledgers:   map[string]finance.MonthlySavingsLedger{},
		entries:   map[string][]finance.Entry{},
	}
}

func (m *memoryStore) Document(_ context.Context, userID, kind string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.documents[userID+"/"+kind]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memoryStore) PutDocument(_ context.Context, userID, kind string, _ int, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[userID+"/"+kind] = payload
	return nil
}

func (m *memoryStore) Ledger(_ context.Context, userID string) (finance.MonthlySavingsLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledgerErr != nil {
		return nil, m.ledgerErr
	}
	out := finance.MonthlySavingsLedger{}
	for k, v := range m.ledgers[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) PutSaving(_ context.Context, userID, monthKey string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledgers[userID] == nil {
		m.ledgers[userID] = finance.MonthlySavingsLedger{}
	}
	m.ledgers[userID][monthKey] = amount
	return nil
}

func (m *memoryStore) MonthlyExpenses(_ context.Context, userID string) ([]finance.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]finance.Entry(nil), m.entries[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key() > out[j].Key() })
	return out, nil
}

func (m *memoryStore) AddMonthlyExpense(_ context.Context, userID string, e finance.Entry) (finance.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = "entry-" + strconv.Itoa(m.nextID)
	m.entries[userID] = append(m.entries[userID], e)
	return e, nil
}

func (m *memoryStore) UpdateMonthlyExpense(_ context.Context, userID string, e finance.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.entries[userID] {
		if existing.ID == e.ID {
			m.entries[userID][i] = e
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memoryStore) DeleteMonthlyExpense(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.entries[userID] {
		if existing.ID == id {
			m.entries[userID] = append(m.entries[userID][:i], m.entries[userID][i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

var alice = session.Session{UserID: "alice"}

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop(), tax.DefaultOptions())
}

func TestProfileDefaultsAndSave(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	profile, err := svc.Profile(ctx, alice)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.Version != records.SchemaVersion || profile.RiskTolerance != "medium" {
		t.Errorf("default profile = %+v", profile)
	}

	profile.Income = 50000
	profile.RiskTolerance = "LOW"
	profile.Primary["housing"] = 20000
	profile.Secondary["travel"] = 1000

	saved, warnings, err := svc.SaveProfile(ctx, alice, profile)
	if err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if saved.RiskTolerance != "low" {
		t.Errorf("RiskTolerance = %q, expected normalized low", saved.RiskTolerance)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, expected one for the unknown travel category", warnings)
	}

	loaded, err := svc.Profile(ctx, alice)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if loaded.Income != 50000 || loaded.Primary["housing"] != 20000 {
		t.Errorf("loaded profile = %+v", loaded)
	}

	other, _ := svc.Profile(ctx, session.Session{UserID: "bob"})
	if other.Income != 0 {
		t.Errorf("profile leaked across users: %+v", other)
	}
}

func TestSaveProfileRejectsConflicts(t *testing.T) {
	svc := newTestService(newMemoryStore())
	profile := records.NewProfile()
	profile.Primary["misc"] = 10
	profile.Secondary["Misc"] = 10

	if _, _, err := svc.SaveProfile(context.Background(), alice, profile); !errors.Is(err, records.ErrCategoryConflict) {
		t.Errorf("SaveProfile() error = %v, expected ErrCategoryConflict", err)
	}
}

func TestGoal(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	goal, err := svc.Goal(ctx, alice)
	if err != nil {
		t.Fatalf("Goal() error = %v", err)
	}
	if goal.TimeframeMonths != 12 || goal.TargetAmount != 0 {
		t.Errorf("default goal = %+v", goal)
	}

	saved, err := svc.SaveGoal(ctx, alice, records.Goal{TargetAmount: 60000, TimeframeMonths: -3})
	if err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
	if saved.TimeframeMonths != 12 {
		t.Errorf("TimeframeMonths = %d, expected default 12", saved.TimeframeMonths)
	}

	loaded, _ := svc.Goal(ctx, alice)
	if loaded.TargetAmount != 60000 {
		t.Errorf("loaded goal = %+v", loaded)
	}
}

func TestRecordSaving(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		month   string
		amount  float64
		wantErr bool
	}{
		{"Valid month", "2025-03", 1500.456, false},
		{"Padded month", " 2025-04 ", 100, false},
		{"Zero amount", "2025-05", 0, false},
		{"Bad key", "March", 100, true},
		{"Month out of range", "2025-13", 100, true},
		{"Negative amount", "2025-06", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.RecordSaving(ctx, alice, tt.month, tt.amount)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSaving) {
					t.Errorf("RecordSaving() error = %v, expected ErrInvalidSaving", err)
				}
				return
			}
			if err != nil {
				t.Errorf("RecordSaving() error = %v", err)
			}
		})
	}

	ledger, err := svc.Ledger(ctx, alice)
	if err != nil {
		t.Fatalf("Ledger() error = %v", err)
	}
	if len(ledger) != 3 || ledger["2025-03"] != 1500.46 || ledger["2025-04"] != 100 {
		t.Errorf("Ledger() = %v", ledger)
	}
}

func TestMonthlyExpenseLifecycle(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	if _, err := svc.AddMonthlyExpense(ctx, alice, finance.Entry{Why: "  ", Amount: 10, Month: 1, Year: 2025}); !errors.Is(err, finance.ErrInvalidEntry) {
		t.Errorf("AddMonthlyExpense() blank reason error = %v", err)
	}
	if _, err := svc.AddMonthlyExpense(ctx, alice, finance.Entry{Why: "rent", Amount: 0, Month: 1, Year: 2025}); !errors.Is(err, finance.ErrInvalidEntry) {
		t.Errorf("AddMonthlyExpense() zero amount error = %v", err)
	}

	entry, err := svc.AddMonthlyExpense(ctx, alice, finance.Entry{Why: " rent ", Amount: 15000, Month: 1, Year: 2025})
	if err != nil {
		t.Fatalf("AddMonthlyExpense() error = %v", err)
	}
	if entry.ID == "" || entry.Why != "rent" {
		t.Errorf("entry = %+v", entry)
	}

	entry.Amount = 16000
	entry.Why = "  rent and deposit  "
	updated, err := svc.UpdateMonthlyExpense(ctx, alice, entry)
	if err != nil {
		t.Fatalf("UpdateMonthlyExpense() error = %v", err)
	}
	if updated.Why != "rent and deposit" || updated.ID != entry.ID {
		t.Errorf("UpdateMonthlyExpense() returned %+v", updated)
	}
	if _, err := svc.UpdateMonthlyExpense(ctx, alice, finance.Entry{Why: "x", Amount: 1, Month: 1, Year: 2025}); !errors.Is(err, finance.ErrInvalidEntry) {
		t.Errorf("UpdateMonthlyExpense() without id error = %v", err)
	}
	entry.Month = 13
	if _, err := svc.UpdateMonthlyExpense(ctx, alice, entry); !errors.Is(err, finance.ErrInvalidEntry) {
		t.Errorf("UpdateMonthlyExpense() bad month error = %v", err)
	}

	entries, _ := svc.MonthlyExpenses(ctx, alice)
	if len(entries) != 1 || entries[0].Amount != 16000 {
		t.Errorf("MonthlyExpenses() = %+v", entries)
	}

	if err := svc.DeleteMonthlyExpense(ctx, alice, entry.ID); err != nil {
		t.Fatalf("DeleteMonthlyExpense() error = %v", err)
	}
	if err := svc.DeleteMonthlyExpense(ctx, alice, entry.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteMonthlyExpense() twice error = %v", err)
	}
}

func TestCompareMonths(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

	for _, e := range []finance.Entry{
		{Why: "rent", Amount: 1000, Month: 1, Year: 2025},
		{Why: "food", Amount: 250, Month: 3, Year: 2025},
		{Why: "food", Amount: 250, Month: 3, Year: 2025},
		{Why: "old", Amount: 99, Month: 12, Year: 2023},
	} {
		if _, err := svc.AddMonthlyExpense(ctx, alice, e); err != nil {
			t.Fatalf("AddMonthlyExpense() error = %v", err)
		}
	}

	totals, err := svc.CompareMonths(ctx, alice, 3, now)
	if err != nil {
		t.Fatalf("CompareMonths() error = %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("CompareMonths() returned %d months, expected 3", len(totals))
	}
	expected := []struct {
		key   string
		total float64
	}{
		{"2025-01", 1000},
		{"2025-02", 0},
		{"2025-03", 500},
	}
	for i, want := range expected {
		if totals[i].Key != want.key || totals[i].Total != want.total {
			t.Errorf("totals[%d] = %+v, expected %s = %v", i, totals[i], want.key, want.total)
		}
	}

	clamped, _ := svc.CompareMonths(ctx, alice, 0, now)
	if len(clamped) != 1 {
		t.Errorf("CompareMonths(0) returned %d months, expected 1", len(clamped))
	}
	capped, _ := svc.CompareMonths(ctx, alice, 100, now)
	if len(capped) != 24 {
		t.Errorf("CompareMonths(100) returned %d months, expected 24", len(capped))
	}
	if old := testutil.FindMonth(capped, "2023-12"); old == nil || old.Total != 99 {
		t.Errorf("expected December 2023 total of 99 within 24 months, got %+v", old)
	}
	if testutil.FindMonth(totals, "2023-12") != nil {
		t.Error("December 2023 should fall outside a 3 month window")
	}
}

func TestDashboard(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	profile := records.NewProfile()
	profile.Income = 50000
	profile.Investments = 5000
	profile.Primary["housing"] = 20000
	profile.Secondary["entertainment"] = 5000
	if _, _, err := svc.SaveProfile(ctx, alice, profile); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if _, err := svc.SaveGoal(ctx, alice, records.Goal{TargetAmount: 120000, TimeframeMonths: 12}); err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
	_ = svc.RecordSaving(ctx, alice, "2025-01", 10000)
	_ = svc.RecordSaving(ctx, alice, "2025-02", 20000)

	dash, err := svc.Dashboard(ctx, alice)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	in := dash.Insights
	if in.MonthlyTarget != 10000 || in.TotalSaved != 30000 || in.Progress != 25 {
		t.Errorf("target/saved/progress = %v / %v / %v", in.MonthlyTarget, in.TotalSaved, in.Progress)
	}
	if in.MonthlySavings != 20000 {
		t.Errorf("MonthlySavings = %v, expected 20000", in.MonthlySavings)
	}
	if !in.Reachable || in.ProjectedMonths != 5 || !in.WithinTimeframe {
		t.Errorf("projection = %d months, reachable %v, within %v", in.ProjectedMonths, in.Reachable, in.WithinTimeframe)
	}
	if in.Feasibility.Status != finance.OnTrack {
		t.Errorf("Feasibility = %+v", in.Feasibility)
	}
	if in.SpendingPattern != advice.Conservative {
		t.Errorf("SpendingPattern = %q", in.SpendingPattern)
	}
	if in.Investment.Tier != advice.TierHigh {
		t.Errorf("Investment = %+v", in.Investment)
	}
	if dash.Report.RiskTolerance != advice.ToleranceMedium {
		t.Errorf("Report.RiskTolerance = %q", dash.Report.RiskTolerance)
	}
	if len(dash.Warnings) != 0 {
		t.Errorf("Warnings = %v", dash.Warnings)
	}
}

func TestDashboardUnreachableGoal(t *testing.T) {
	svc := newTestService(newMemoryStore())
	ctx := context.Background()

	profile := records.NewProfile()
	profile.Income = 10000
	profile.Primary["housing"] = 12000
	_, _, _ = svc.SaveProfile(ctx, alice, profile)
	_, _ = svc.SaveGoal(ctx, alice, records.Goal{TargetAmount: 5000, TimeframeMonths: 6})

	dash, err := svc.Dashboard(ctx, alice)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dash.Insights.Reachable || dash.Insights.WithinTimeframe {
		t.Errorf("Insights = %+v, expected an unreachable goal", dash.Insights)
	}
	if dash.Insights.Feasibility.Status != finance.NeedsAttention {
		t.Errorf("Feasibility = %+v", dash.Insights.Feasibility)
	}
}

func TestDashboardLoadError(t *testing.T) {
	store := newMemoryStore()
	store.ledgerErr = errors.New("disk on fire")
	svc := newTestService(store)

	if _, err := svc.Dashboard(context.Background(), alice); err == nil {
		t.Error("Dashboard() expected error when the ledger cannot be loaded")
	}
}

func TestDashboardStoredDocumentCorrupt(t *testing.T) {
	store := newMemoryStore()
	store.documents["alice/"+records.KindProfile] = []byte("not json")
	svc := newTestService(store)

	if _, err := svc.Dashboard(context.Background(), alice); !errors.Is(err, records.ErrMalformedDocument) {
		t.Errorf("Dashboard() error = %v, expected ErrMalformedDocument", err)
	}
}

func TestAdviseAndEstimateTax(t *testing.T) {
	svc := NewService(newMemoryStore(), nil, tax.Options{UsdToInr: 80})

	report := svc.Advise(advice.Input{Income: 50000, TotalExpenses: 20000}, advice.ToleranceHigh)
	if report.RiskTolerance != advice.ToleranceHigh || len(report.Suggestions) == 0 {
		t.Errorf("Advise() = %+v", report)
	}

	result := svc.EstimateTax(tax.Input{Income: 1000000, ForeignIncome: 1000, Regime: tax.RegimeNew})
	if result.ConvertedIncome != 80000 || result.TotalIncome != 1080000 {
		t.Errorf("EstimateTax() converted %v total %v", result.ConvertedIncome, result.TotalIncome)
	}
}

func TestServiceWithSQLiteStore(t *testing.T) {
	repo, err := storage.Open(t.TempDir()+"/advisor.db", zap.NewNop())
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer repo.Close()

	svc := newTestService(repo)
	ctx := context.Background()
	if _, err := svc.SaveGoal(ctx, alice, records.Goal{TargetAmount: 1200, TimeframeMonths: 12}); err != nil {
		t.Fatalf("SaveGoal() error = %v", err)
	}
	if err := svc.RecordSaving(ctx, alice, "2025-01", 600); err != nil {
		t.Fatalf("RecordSaving() error = %v", err)
	}

	dash, err := svc.Dashboard(ctx, alice)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dash.Insights.Progress != 50 {
		t.Errorf("Progress = %v, expected 50", dash.Insights.Progress)
	}
}
