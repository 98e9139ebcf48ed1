package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const snapshotsTable = "snapshots"

var snapshotColumns = []string{"id", "sequence", "created_at", "path", "nodes", "completed", "data"}

// snapshotRepo implements SnapshotRepo with the ent SQL builder.
type snapshotRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		snap.Sequence = seq
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	query, args := builder().Insert(snapshotsTable).
		Columns(snapshotColumns...).
		Values(snap.ID, snap.Sequence, snap.CreatedAt.UnixNano(), snap.Path,
			snap.Nodes, snap.Completed, string(snap.Data)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	snaps, err := r.List(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

func (r *snapshotRepo) List(ctx context.Context, limit int) ([]Snapshot, error) {
	sel := builder().Select(snapshotColumns...).
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	return r.query(ctx, sel)
}

func (r *snapshotRepo) Get(ctx context.Context, id string) (*Snapshot, error) {
	if id == "" {
		return nil, nil
	}
	sel := builder().Select(snapshotColumns...).
		From(entsql.Table(snapshotsTable)).
		Where(entsql.HasPrefix("id", id)).
		OrderBy(entsql.Desc("sequence")).
		Limit(2)
	snaps, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	for i := range snaps {
		if snaps[i].ID == id {
			return &snaps[i], nil
		}
	}
	switch len(snaps) {
	case 0:
		return nil, nil
	case 1:
		return &snaps[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	query, args := builder().Select("id").
		From(entsql.Table(snapshotsTable)).
		OrderBy(entsql.Desc("sequence")).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query snapshots for prune: %w", err)
	}
	var ids []any
	for n := 0; rows.Next(); n++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan snapshot id: %w", err)
		}
		if n >= keep {
			ids = append(ids, id)
		}
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return 0, fmt.Errorf("query snapshots for prune: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil // fewer than keep snapshots exist
	}

	query, args = builder().Delete(snapshotsTable).
		Where(entsql.In("id", ids...)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(ids), nil
	}
	return int(n), nil
}

func (r *snapshotRepo) query(ctx context.Context, sel *entsql.Selector) ([]Snapshot, error) {
	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s       Snapshot
			created int64
			data    string
		)
		if err := rows.Scan(&s.ID, &s.Sequence, &created, &s.Path, &s.Nodes, &s.Completed, &data); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.CreatedAt = time.Unix(0, created).UTC()
		s.Data = []byte(data)
		out = append(out, s)
	}
	return out, rows.Err()
}
