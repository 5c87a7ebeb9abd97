package importer

import (
	"context"
	"time"
)

// Status represents the lifecycle state of an import job.
type Status string

const (
	// StatusIdle is the initial state. A job can only be started from here.
	StatusIdle Status = "idle"
	// StatusPreparing means inputs are being validated and the total computed.
	StatusPreparing Status = "preparing"
	// StatusProcessing means the row loop is running.
	StatusProcessing Status = "processing"
	// StatusPaused means the row loop is suspended between rows.
	StatusPaused Status = "paused"
	// StatusCompleted is terminal: every row was processed.
	StatusCompleted Status = "completed"
	// StatusError is terminal: the job was cancelled or failed a precondition.
	StatusError Status = "error"
)

// IsTerminal reports whether no further transition is possible without a Reset.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsActive reports whether the row loop owns the job.
func (s Status) IsActive() bool {
	return s == StatusPreparing || s == StatusProcessing || s == StatusPaused
}

// Mode is the reconciliation policy selected once per job.
type Mode string

const (
	// ModeCreate always inserts. Duplicate SKUs are possible.
	ModeCreate Mode = "create"
	// ModeUpdateBySKU only updates items matched by SKU.
	ModeUpdateBySKU Mode = "update_by_sku"
	// ModeUpsert updates items matched by SKU or name and inserts the rest.
	ModeUpsert Mode = "upsert"
)

// Modes lists every supported reconciliation mode.
var Modes = []Mode{ModeCreate, ModeUpdateBySKU, ModeUpsert}

// IsValid checks if the mode is one of the supported policies.
func (m Mode) IsValid() bool {
	switch m {
	case ModeCreate, ModeUpdateBySKU, ModeUpsert:
		return true
	default:
		return false
	}
}

// ParseMode converts user input ("upsert", "update-by-sku", "UpdateBySku") into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(normalizeKey(s))
	if m == "updatebysku" || m == "update" {
		m = ModeUpdateBySKU
	}
	if !m.IsValid() {
		return "", &ModeError{Value: s}
	}
	return m, nil
}

// Fields maps canonical field names to typed values: string, int64, float64, bool or []string.
type Fields map[string]any

// String returns a string field or "" when absent.
func (f Fields) String(name string) string {
	if v, ok := f[name].(string); ok {
		return v
	}
	return ""
}

// CandidateRecord is one parsed CSV row.
type CandidateRecord struct {
	// RowNumber is the 1-based line number in the source file (header is row 1).
	RowNumber int `json:"row_number"`

	// Fields holds the coerced values for recognised columns.
	Fields Fields `json:"fields"`

	// Invalid is non-empty when the record must be reported as a row error
	// without reaching reconciliation.
	Invalid string `json:"invalid,omitempty"`
}

// SKU returns the record's SKU, if any.
func (r CandidateRecord) SKU() string {
	return r.Fields.String(FieldSKU)
}

// Name returns the record's name, if any.
func (r CandidateRecord) Name() string {
	return r.Fields.String(FieldName)
}

// RowError is a non-fatal, per-record failure.
type RowError struct {
	// Row is the source line number. Zero marks a job-level entry such as cancellation.
	Row int `json:"row"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// ItemID identifies an inventory item in the store.
type ItemID string

// ItemRef is the result of a store lookup.
type ItemRef struct {
	ID   ItemID `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// Lookup resolves an existing item. When both are given the SKU is tried first,
// then the exact name. It reports false when nothing matched.
type Lookup interface {
	Lookup(ctx context.Context, sku, name string) (ItemRef, bool, error)
}

// ItemStore is the persistence collaborator. Each call is an independent unit of work;
// the engine never batches or wraps rows in a transaction.
type ItemStore interface {
	Lookup
	// Create inserts a new item and returns its ID.
	Create(ctx context.Context, fields Fields) (ItemID, error)
	// Update writes the given fields onto an existing item.
	Update(ctx context.Context, id ItemID, fields Fields) error
}

// ImportJob is the aggregate root of one import run. It is owned by a Controller.
type ImportJob struct {
	Status       Status
	Mode         Mode
	Total        int
	Current      int
	SuccessCount int
	UpdatedCount int
	ErrorCount   int
	Errors       []RowError
	Message      string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Outcome is the result of processing one row.
type Outcome string

const (
	OutcomeInserted Outcome = "inserted"
	OutcomeUpdated  Outcome = "updated"
	OutcomeError    Outcome = "error"
)

// Observer receives engine events, typically to feed metrics.
type Observer interface {
	RowProcessed(mode Mode, outcome Outcome)
	JobFinished(snap Snapshot, elapsed time.Duration)
}
