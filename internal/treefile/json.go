package treefile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/abhisek/skilltree/internal/skilltree"
)

// indent matches the layout of files written by earlier versions.
const indent = "    "

// wireRecord is the permissive on-disk shape. Pointer fields distinguish
// "missing" from "false" so defaults can be applied.
type wireRecord struct {
	Label     *string      `json:"label"`
	Text      *string      `json:"text"`
	Completed *bool        `json:"completed"`
	Expanded  *bool        `json:"expanded"`
	Open      *bool        `json:"open"`
	Children  []wireRecord `json:"children"`
}

func (w wireRecord) record() Record {
	r := Record{Expanded: true}
	switch {
	case w.Label != nil:
		r.Label = *w.Label
	case w.Text != nil:
		r.Label = *w.Text
	}
	if w.Completed != nil {
		r.Completed = *w.Completed
	}
	switch {
	case w.Expanded != nil:
		r.Expanded = *w.Expanded
	case w.Open != nil:
		r.Expanded = *w.Open
	}
	r.Children = make([]Record, 0, len(w.Children))
	for _, c := range w.Children {
		r.Children = append(r.Children, c.record())
	}
	return r
}

// Marshal encodes the forest as the wrapper document.
func Marshal(t *skilltree.Tree) ([]byte, error) {
	return json.MarshalIndent(document{Children: FromTree(t)}, "", indent)
}

// Encode writes the forest to w.
func Encode(w io.Writer, t *skilltree.Tree) error {
	data, err := Marshal(t)
	if err != nil {
		return fmt.Errorf("encode skill tree: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Unmarshal parses and validates a document without touching any tree.
func Unmarshal(data []byte) ([]Record, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var wire []wireRecord
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
	} else {
		var wrapper struct {
			Children []wireRecord `json:"children"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		wire = wrapper.Children
	}

	records := make([]Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, w.record())
	}
	if err := validateRecords(records, "$"); err != nil {
		return nil, err
	}
	return records, nil
}

// Decode reads a document from r and replaces the contents of into. On any
// error into is unchanged and the error is a *LoadError.
func Decode(r io.Reader, into *skilltree.Tree) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return &LoadError{Err: err}
	}
	records, err := Unmarshal(data)
	if err != nil {
		return &LoadError{Err: err}
	}
	if err := Replace(into, records); err != nil {
		return &LoadError{Err: err}
	}
	return nil
}

// Load reads the JSON document at path into the tree.
func Load(path string, into *skilltree.Tree) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	records, err := Unmarshal(data)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := Replace(into, records); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// IsOutline reports whether path names an indented text outline rather than
// a JSON document.
func IsOutline(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".outline":
		return true
	}
	return false
}

// LoadFile loads path as an outline or a JSON document depending on its
// extension.
func LoadFile(path string, into *skilltree.Tree) error {
	if IsOutline(path) {
		return ImportOutline(path, into)
	}
	return Load(path, into)
}

// Save writes the forest to path. The file is written to a temporary file
// in the same directory and renamed into place, so an interrupted save
// never leaves a truncated document behind.
func Save(path string, t *skilltree.Tree) error {
	data, err := Marshal(t)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	data = append(data, '\n')
	if err := writeAtomic(path, data); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".skilltree-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
