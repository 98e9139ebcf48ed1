package treefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/skilltree/internal/skilltree"
)

const (
	// TabWidth is the number of spaces a tab counts for in an outline.
	TabWidth = 4

	// IndentWidth is the number of spaces per nesting level.
	IndentWidth = 2

	marker = "- "
)

type outlineNode struct {
	label    string
	children []*outlineNode
}

// ParseOutline reads an indented text outline. Each non-blank line is one
// skill. Nesting comes from the leading whitespace and an optional "- "
// marker:
//
//	no indent, no marker   level 0
//	"- " marker            indent/2 + 1
//	otherwise              indent/2
//
// A skill's parent is the most recent skill seen at the level above; when
// there is none it goes to the top level. Imported skills are incomplete and
// expanded.
func ParseOutline(r io.Reader) ([]Record, error) {
	var roots []*outlineNode
	last := make(map[int]*outlineNode)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		label, level, ok := parseOutlineLine(line)
		if !ok {
			continue
		}

		n := &outlineNode{label: label}
		if parent, found := last[level-1]; level > 0 && found {
			parent.children = append(parent.children, n)
		} else {
			roots = append(roots, n)
		}

		last[level] = n
		for l := range last {
			if l > level {
				delete(last, l)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return outlineRecords(roots), nil
}

// parseOutlineLine returns the label and level of a line, or ok=false for
// blank and malformed lines.
func parseOutlineLine(line string) (label string, level int, ok bool) {
	text := strings.TrimSpace(line)
	if text == "" || text == "-" {
		return "", 0, false
	}

	indent := 0
	for _, c := range line {
		if c == ' ' {
			indent++
		} else if c == '\t' {
			indent += TabWidth
		} else {
			break
		}
	}

	hasMarker := strings.HasPrefix(text, marker)
	if hasMarker {
		text = strings.TrimSpace(text[len(marker):])
		if text == "" {
			return "", 0, false
		}
	}

	switch {
	case indent == 0 && !hasMarker:
		level = 0
	case hasMarker:
		level = indent/IndentWidth + 1
	default:
		level = indent / IndentWidth
	}
	return text, level, true
}

func outlineRecords(nodes []*outlineNode) []Record {
	out := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Record{
			Label:    n.label,
			Expanded: true,
			Children: outlineRecords(n.children),
		})
	}
	return out
}

// ImportOutline parses the outline at path and replaces the contents of
// into. Errors are *LoadError and leave into unchanged.
func ImportOutline(path string, into *skilltree.Tree) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := ParseOutline(f)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	if err := Replace(into, records); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

// WriteOutline writes the forest as an indented outline, IndentWidth spaces
// per level. Completion and expansion are not carried.
func WriteOutline(w io.Writer, t *skilltree.Tree) error {
	bw := bufio.NewWriter(w)
	err := t.Walk(func(n skilltree.Node, depth int) error {
		_, err := fmt.Fprintf(bw, "%s%s\n", strings.Repeat(" ", depth*IndentWidth), n.Label)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}
