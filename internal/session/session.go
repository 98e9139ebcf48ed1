// Package session binds a skill tree engine to the file it was opened from
// and archives every save in the snapshot history.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/abhisek/skilltree/internal/skilltree"
	"github.com/abhisek/skilltree/internal/store"
	"github.com/abhisek/skilltree/internal/treefile"
)

// ErrNoPath is returned by Save when the session has no file yet.
var ErrNoPath = errors.New("no file to save to; use save as")

// ErrSnapshotNotFound is returned by Restore for an unknown snapshot id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Options configures Open.
type Options struct {
	// Path is the tree file. It may name a file that does not exist yet.
	Path   string
	Policy skilltree.Policy

	// SeedDefault starts a missing file with the built-in example tree
	// instead of an empty one.
	SeedDefault bool

	// History archives every save when non-nil. Keep bounds the archive;
	// zero keeps everything.
	History store.SnapshotRepo
	Keep    int
}

// Session is one open tree. It is not safe for concurrent use.
type Session struct {
	engine  *skilltree.Engine
	path    string
	dirty   bool
	history store.SnapshotRepo
	keep    int
}

// Open loads opts.Path if it exists. JSON and outline files are accepted;
// an outline is imported and the session has no path until SaveAs.
func Open(ctx context.Context, opts Options) (*Session, error) {
	s := &Session{
		engine:  skilltree.NewEngine(skilltree.New(), opts.Policy),
		history: opts.History,
		keep:    opts.Keep,
	}
	if opts.Path == "" {
		if opts.SeedDefault {
			s.engine = skilltree.NewEngine(skilltree.Default(), opts.Policy)
			s.dirty = true
		}
		return s, nil
	}

	if _, err := os.Stat(opts.Path); err != nil {
		if !os.IsNotExist(err) || treefile.IsOutline(opts.Path) {
			return nil, &treefile.LoadError{Path: opts.Path, Err: err}
		}
		s.path = opts.Path
		if opts.SeedDefault {
			s.engine = skilltree.NewEngine(skilltree.Default(), opts.Policy)
			s.dirty = true
		}
		log.FromContext(ctx).Debug("starting new skill tree", "path", opts.Path, "seeded", opts.SeedDefault)
		return s, nil
	}

	if err := s.Load(ctx, opts.Path); err != nil {
		return nil, err
	}
	return s, nil
}

// Engine returns the propagation engine.
func (s *Session) Engine() *skilltree.Engine { return s.engine }

// Tree returns the tree being edited.
func (s *Session) Tree() *skilltree.Tree { return s.engine.Tree() }

// Path returns the file Save writes to, or "" if there is none.
func (s *Session) Path() string { return s.path }

// Dirty reports whether the tree changed since it was loaded or saved.
func (s *Session) Dirty() bool { return s.dirty }

// Stats summarizes the tree.
func (s *Session) Stats() skilltree.Stats { return s.Tree().Stats() }

// Toggle flips id under the active policy.
func (s *Session) Toggle(id skilltree.ID) (bool, error) {
	v, err := s.engine.Toggle(id)
	if err == nil {
		s.dirty = true
	}
	return v, err
}

// Set drives id to completed under the active policy. A skill already in
// that state leaves the session clean.
func (s *Session) Set(id skilltree.ID, completed bool) error {
	n, err := s.Tree().Get(id)
	if err != nil {
		return err
	}
	if err := s.engine.Set(id, completed); err != nil {
		return err
	}
	if n.Completed != completed {
		s.dirty = true
	}
	return nil
}

// Add inserts a skill under parent.
func (s *Session) Add(parent skilltree.ID, label string) (skilltree.ID, error) {
	id, err := s.engine.Add(parent, label)
	if err == nil {
		s.dirty = true
	}
	return id, err
}

// Delete removes id and its subtree.
func (s *Session) Delete(id skilltree.ID) error {
	if err := s.engine.Delete(id); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// SetExpanded shows or hides the children of id. Expansion is saved with
// the tree, so this marks the session dirty.
func (s *Session) SetExpanded(id skilltree.ID, expanded bool) error {
	n, err := s.Tree().Get(id)
	if err != nil {
		return err
	}
	if n.Expanded == expanded {
		return nil
	}
	if err := s.Tree().SetExpanded(id, expanded); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// ExpandAll expands every skill.
func (s *Session) ExpandAll() {
	s.engine.ExpandAll()
	s.dirty = true
}

// CollapseAll collapses every skill.
func (s *Session) CollapseAll() {
	s.engine.CollapseAll()
	s.dirty = true
}

// Reset marks every skill incomplete.
func (s *Session) Reset() {
	s.engine.Reset()
	s.dirty = true
}

// Save writes the tree to its file and archives it.
func (s *Session) Save(ctx context.Context) error {
	if s.path == "" {
		return ErrNoPath
	}
	if err := treefile.Save(s.path, s.Tree()); err != nil {
		return err
	}
	s.dirty = false
	s.archive(ctx)
	return nil
}

// SaveAs writes the tree to path and makes it the session file. On failure
// the previous path is kept.
func (s *Session) SaveAs(ctx context.Context, path string) error {
	if path == "" {
		return ErrNoPath
	}
	if treefile.IsOutline(path) {
		return &treefile.SaveError{Path: path, Err: errors.New("outline files are import-only; save as .json")}
	}
	if err := treefile.Save(path, s.Tree()); err != nil {
		return err
	}
	s.path = path
	s.dirty = false
	s.archive(ctx)
	return nil
}

// Load replaces the tree with the contents of path. JSON files become the
// session file; outlines are imported. On error nothing changes.
func (s *Session) Load(ctx context.Context, path string) error {
	if treefile.IsOutline(path) {
		return s.Import(ctx, path)
	}
	if err := treefile.Load(path, s.Tree()); err != nil {
		return err
	}
	fixed := s.engine.Reconcile()
	if fixed > 0 {
		log.FromContext(ctx).Warn("recomputed inconsistent completion flags", "path", path, "nodes", fixed)
	}
	s.path = path
	s.dirty = fixed > 0
	return nil
}

// Import replaces the tree with an indented outline. The session file is
// unchanged, so the imported tree is saved over it (or needs SaveAs).
func (s *Session) Import(ctx context.Context, path string) error {
	if err := treefile.ImportOutline(path, s.Tree()); err != nil {
		return err
	}
	s.dirty = true
	log.FromContext(ctx).Debug("imported outline", "path", path, "nodes", s.Tree().Len())
	return nil
}

// Replace swaps the whole tree for records.
func (s *Session) Replace(records []treefile.Record) error {
	if err := treefile.Replace(s.Tree(), records); err != nil {
		return err
	}
	s.engine.Reconcile()
	s.dirty = true
	return nil
}

// Graft appends records under parent and recomputes completion.
func (s *Session) Graft(parent skilltree.ID, records []treefile.Record) ([]skilltree.ID, error) {
	ids, err := treefile.Graft(s.Tree(), parent, records)
	if err != nil {
		return nil, err
	}
	s.engine.Reconcile()
	s.dirty = true
	return ids, nil
}

// Restore replaces the tree with an archived snapshot. id may be a unique
// prefix.
func (s *Session) Restore(ctx context.Context, id string) (*store.Snapshot, error) {
	if s.history == nil {
		return nil, errors.New("snapshot history is disabled")
	}
	snap, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err := treefile.Decode(bytes.NewReader(snap.Data), s.Tree()); err != nil {
		return nil, err
	}
	s.engine.Reconcile()
	s.dirty = true
	return snap, nil
}

// archive stores the saved tree in the history. Failures are logged; the
// file on disk is already written.
func (s *Session) archive(ctx context.Context) {
	if s.history == nil {
		return
	}
	logger := log.FromContext(ctx)

	data, err := treefile.Marshal(s.Tree())
	if err != nil {
		logger.Warn("snapshot not archived", "err", err)
		return
	}
	st := s.Stats()
	snap := &store.Snapshot{
		Path:      s.path,
		Nodes:     st.Nodes,
		Completed: st.CompletedNodes,
		Data:      data,
	}
	if err := s.history.Save(ctx, snap); err != nil {
		logger.Warn("snapshot not archived", "err", err)
		return
	}
	if s.keep > 0 {
		if n, err := s.history.Prune(ctx, s.keep); err != nil {
			logger.Warn("snapshot history not pruned", "err", err)
		} else if n > 0 {
			logger.Debug("pruned snapshot history", "removed", n)
		}
	}
}
