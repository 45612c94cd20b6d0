package model

import "time"

// RunStatus is the lifecycle state of a generation run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	// RunStatusPartial marks runs that produced a document with one or
	// more narrative slots left unresolved.
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one proposal-generation execution recorded in the ledger.
type Run struct {
	ID          string     `json:"id"`
	ClientName  string     `json:"client_name"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      *RunResult `json:"result,omitempty"`
}

// SlotStats counts narrative slot outcomes for a run.
type SlotStats struct {
	Total    int `json:"total"`
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Usage accumulates generation token consumption across a run.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add accumulates another usage sample.
func (u *Usage) Add(in, out int64) {
	u.InputTokens += in
	u.OutputTokens += out
}

// RunResult is the summarized outcome of a run, persisted alongside the
// document for the ledger.
type RunResult struct {
	RunID          string    `json:"run_id"`
	ProposalNumber string    `json:"proposal_number"`
	FinalPrice     int64     `json:"final_price"`
	Subtotal       int64     `json:"subtotal"`
	Slots          SlotStats `json:"slots"`
	Usage          Usage     `json:"usage"`
	CostUSD        float64   `json:"cost_usd"`
	Warnings       []string  `json:"warnings,omitempty"`

	Document *ProposalDocument `json:"document,omitempty"`
}

// RunPhase times one named stage of the pipeline.
type RunPhase struct {
	RunID       string     `json:"run_id"`
	Name        string     `json:"name"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
