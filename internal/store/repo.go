package store

import (
	"context"
	"errors"
	"time"
)

// ErrAmbiguousID is returned when a snapshot id prefix matches more than one
// snapshot.
var ErrAmbiguousID = errors.New("ambiguous snapshot id")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Snapshot is one archived save of a skill tree.
type Snapshot struct {
	ID        string
	Sequence  int64
	CreatedAt time.Time
	Path      string

	// Nodes and Completed summarize the tree so listings need not decode Data.
	Nodes     int
	Completed int

	// Data is the tree document exactly as it was written to Path.
	Data []byte
}

// SnapshotRepo manages archived tree saves.
type SnapshotRepo interface {
	// Save stores a new snapshot, assigning ID, Sequence and CreatedAt when
	// they are zero.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// List returns up to limit snapshots, newest first (0 = all).
	List(ctx context.Context, limit int) ([]Snapshot, error)

	// Get returns the snapshot whose ID is id or starts with id, or nil if
	// there is none. More than one prefix match is ErrAmbiguousID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots and reports how
	// many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a group of events.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose sums usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel sums usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
