package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sells-group/proposal-cli/internal/assemble"
	"github.com/sells-group/proposal-cli/internal/config"
	"github.com/sells-group/proposal-cli/internal/ident"
	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/narrative"
	"github.com/sells-group/proposal-cli/internal/phases"
	"github.com/sells-group/proposal-cli/internal/placeholder"
	"github.com/sells-group/proposal-cli/internal/pricing"
	"github.com/sells-group/proposal-cli/internal/store"
	"github.com/sells-group/proposal-cli/pkg/backend"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore is an in-memory Store that records every ledger mutation.
type memStore struct {
	mu           sync.Mutex
	seq          int
	runs         map[string]*model.Run
	statuses     []model.RunStatus
	phaseNames   []string
	completed    map[string]string // phase name -> error message
	result       *model.RunResult
	resultStatus model.RunStatus
	failMsg      string

	createErr error
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		runs:      make(map[string]*model.Run),
		completed: make(map[string]string),
	}
}

func (m *memStore) CreateRun(_ context.Context, clientName string) (*model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.seq++
	run := &model.Run{
		ID:         fmt.Sprintf("run-%04d", m.seq),
		ClientName: clientName,
		Status:     model.RunStatusPending,
		StartedAt:  time.Now(),
	}
	m.runs[run.ID] = run
	return run, nil
}

func (m *memStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	if run, ok := m.runs[runID]; ok {
		run.Status = status
	}
	return nil
}

func (m *memStore) FailRun(_ context.Context, runID string, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMsg = msg
	if run, ok := m.runs[runID]; ok {
		run.Status = model.RunStatusFailed
		run.Error = msg
	}
	return nil
}

func (m *memStore) UpdateRunResult(_ context.Context, runID string, status model.RunStatus, result *model.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
	m.resultStatus = status
	if run, ok := m.runs[runID]; ok {
		run.Status = status
		run.Result = result
	}
	return nil
}

func (m *memStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, eris.Errorf("run %s not found", runID)
	}
	return run, nil
}

func (m *memStore) ListRuns(context.Context, store.RunFilter) ([]model.Run, error) {
	return nil, nil
}

func (m *memStore) CreatePhase(_ context.Context, runID string, name string) (*model.RunPhase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseNames = append(m.phaseNames, name)
	return &model.RunPhase{RunID: runID, Name: name, StartedAt: time.Now()}, nil
}

func (m *memStore) CompletePhase(_ context.Context, _ string, name string, phaseErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[name] = phaseErr
	return nil
}

func (m *memStore) ListPhases(context.Context, string) ([]model.RunPhase, error) {
	return nil, nil
}

func (m *memStore) Migrate(context.Context) error { return nil }
func (m *memStore) Close() error                  { return nil }

// fakeGen scripts backend responses by call index.
type fakeGen struct {
	mu    sync.Mutex
	fn    func(call int, mdl string, req backend.GenerateRequest) (*backend.GenerateResponse, error)
	calls int
}

func (f *fakeGen) Provider() string { return "gemini" }

func (f *fakeGen) Generate(_ context.Context, mdl string, req backend.GenerateRequest) (*backend.GenerateResponse, error) {
	f.mu.Lock()
	n := f.calls
	f.calls++
	f.mu.Unlock()
	return f.fn(n, mdl, req)
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Gemini: config.GeminiConfig{
			Key:    "test",
			Models: []string{"pro", "flash"},
		},
		Narrative: config.NarrativeConfig{
			Provider:           "gemini",
			BatchSize:          3,
			MaxRetries:         2,
			RequestTimeoutSecs: 5,
			BatchDelayMillis:   1,
		},
		Proposal: config.ProposalConfig{
			Producer: "Sells Group",
			Contact:  "proposals@sellsgroup.com",
		},
		Pricing: config.PricingConfig{
			Gemini: map[string]config.ModelPricing{
				"pro":   {Input: 1.25, Output: 10.00},
				"flash": {Input: 0.30, Output: 2.50},
			},
		},
	}
}

func sampleExtract() *model.AuditExtract {
	return &model.AuditExtract{
		Client: model.Client{Name: "Acme Logistics", Industry: "saas"},
		Findings: []model.Finding{
			{Category: "Lead Response", Severity: model.SeverityCritical, Title: "Leads wait 3 days"},
			{Category: "Data Hygiene", Severity: model.SeverityWarning, Title: "Duplicate contacts"},
		},
		Fixes: []model.Fix{
			{Title: "Instant lead routing", Description: "Route inbound leads to reps", Complexity: "moderate build"},
			{Title: "CRM dedupe", Description: "Merge duplicate records", Complexity: "complex integration"},
		},
		Systems:      []string{"HubSpot", "Gmail"},
		MonthlyBleed: 2000,
	}
}

func testPipeline(t *testing.T, st store.Store, gen backend.Generator) *Pipeline {
	t.Helper()
	cfg := testConfig()

	rates := config.DefaultRates()
	require.NoError(t, rates.Validate())

	ids := &ident.Sequence{}
	fixed := time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)
	asm := assemble.New(cfg.Proposal, ids).WithNow(func() time.Time { return fixed })

	var exec *narrative.Executor
	if gen != nil {
		catalog, err := narrative.LoadCatalog("")
		require.NoError(t, err)
		policy := narrative.GeminiPolicy(cfg.Gemini)
		exec = narrative.NewExecutor(gen, policy, catalog, cfg.Narrative)
	}

	return New(cfg, st, pricing.New(rates), phases.NewBuilder(rates, ids), asm, exec)
}

func TestRunCompletesAndPersists(t *testing.T) {
	st := newMemStore()
	gen := &fakeGen{
		fn: func(_ int, mdl string, _ backend.GenerateRequest) (*backend.GenerateResponse, error) {
			return &backend.GenerateResponse{
				Text:  "Generated narrative.",
				Model: mdl,
				Usage: backend.Usage{InputTokens: 100, OutputTokens: 200},
			}, nil
		},
	}
	p := testPipeline(t, st, gen)

	res, err := p.Run(context.Background(), sampleExtract(), Options{})
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusComplete, res.Status)
	assert.NotEmpty(t, res.RunID)
	require.NotNil(t, res.Breakdown)
	require.NotNil(t, res.Document)

	// Every slot resolved; no sentinels survive in the document.
	assert.Greater(t, res.Slots.Total, 0)
	assert.Equal(t, res.Slots.Total, res.Slots.Resolved)
	assert.Zero(t, res.Slots.Failed)
	assert.Empty(t, placeholder.Slots(res.Document))
	assert.Equal(t, res.Slots.Total, gen.callCount())

	// Usage and cost attribution flow through.
	assert.Equal(t, int64(100*res.Slots.Total), res.Usage.InputTokens)
	assert.Equal(t, int64(200*res.Slots.Total), res.Usage.OutputTokens)
	assert.Greater(t, res.CostUSD, 0.0)

	// Ledger: phases in order, final status, persisted summary.
	assert.Equal(t, []string{"1_price", "2_phases", "3_assemble", "4_narrative"}, st.phaseNames)
	for name, msg := range st.completed {
		assert.Empty(t, msg, "phase %s recorded an error", name)
	}
	assert.Equal(t, model.RunStatusComplete, st.resultStatus)
	require.NotNil(t, st.result)
	assert.Equal(t, res.RunID, st.result.RunID)
	assert.Equal(t, res.Document.Meta.ProposalNumber, st.result.ProposalNumber)
	assert.Equal(t, res.Breakdown.FinalPrice, st.result.FinalPrice)
	assert.Equal(t, res.Breakdown.Subtotal, st.result.Subtotal)
	require.NotNil(t, st.result.Document)
}

func TestRunSkipNarrativeLeavesSentinels(t *testing.T) {
	st := newMemStore()
	gen := &fakeGen{
		fn: func(int, string, backend.GenerateRequest) (*backend.GenerateResponse, error) {
			t.Error("generator must not be called when narrative is skipped")
			return nil, nil
		},
	}
	p := testPipeline(t, st, gen)

	res, err := p.Run(context.Background(), sampleExtract(), Options{SkipNarrative: true})
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusPartial, res.Status)
	assert.Greater(t, res.Slots.Total, 0)
	assert.Zero(t, res.Slots.Resolved)
	assert.Len(t, placeholder.Slots(res.Document), res.Slots.Total)
	assert.Contains(t, res.Warnings, "narrative generation skipped")
	assert.Zero(t, gen.callCount())

	assert.Equal(t, []string{"1_price", "2_phases", "3_assemble"}, st.phaseNames)
	assert.Equal(t, model.RunStatusPartial, st.resultStatus)
	require.NotNil(t, st.result)
	assert.Zero(t, st.result.Usage.InputTokens)
	assert.Zero(t, st.result.CostUSD)
}

func TestRunPartialWhenSlotFails(t *testing.T) {
	st := newMemStore()
	gen := &fakeGen{
		fn: func(call int, mdl string, _ backend.GenerateRequest) (*backend.GenerateResponse, error) {
			if call == 0 {
				return nil, &backend.FatalError{Provider: "gemini", Err: eris.New("prompt rejected")}
			}
			return &backend.GenerateResponse{
				Text:  "Generated narrative.",
				Model: mdl,
				Usage: backend.Usage{InputTokens: 100, OutputTokens: 200},
			}, nil
		},
	}
	p := testPipeline(t, st, gen)

	res, err := p.Run(context.Background(), sampleExtract(), Options{})
	require.NoError(t, err, "narrative failure never fails the run")

	assert.Equal(t, model.RunStatusPartial, res.Status)
	assert.Equal(t, 1, res.Slots.Failed)
	assert.Equal(t, res.Slots.Total-1, res.Slots.Resolved)
	assert.Len(t, placeholder.Slots(res.Document), 1, "the failed slot keeps its sentinel")
	assert.NotEmpty(t, res.Warnings)

	assert.Equal(t, model.RunStatusPartial, st.resultStatus)
	require.NotNil(t, st.result)
	assert.Equal(t, 1, st.result.Slots.Failed)
}

func TestRunCreateRunFailure(t *testing.T) {
	st := newMemStore()
	st.createErr = eris.New("connection refused")
	p := testPipeline(t, st, nil)

	res, err := p.Run(context.Background(), sampleExtract(), Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "create run")
	assert.Empty(t, st.phaseNames)
}

func TestRunNilExecutorSkipsNarrative(t *testing.T) {
	st := newMemStore()
	p := testPipeline(t, st, nil)

	res, err := p.Run(context.Background(), sampleExtract(), Options{})
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusPartial, res.Status)
	assert.Zero(t, res.Slots.Resolved)
	assert.Contains(t, res.Warnings, "narrative generation skipped")
}
