// Package output writes the per-board export artifacts to disk.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dackerman/trello-checklists-export/internal/core"
	"github.com/dackerman/trello-checklists-export/internal/trello"
)

var unsafeNameChars = regexp.MustCompile(`[\s./]`)

// Writer writes artifacts under Dir/<board id>/
type Writer struct {
	Dir string
}

// NewWriter creates a Writer rooted at dir
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Stamp formats t as DDMMYYYY.HHMMSS, the suffix shared by one board's files
func Stamp(t time.Time) string {
	return t.Format("02012006.150405")
}

// SafeName replaces whitespace, dots and slashes in a board name
func SafeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// BoardDir returns the directory holding a board's artifacts
func (w *Writer) BoardDir(board *trello.Board) string {
	return filepath.Join(w.Dir, board.ID)
}

// WriteDump writes the board document as received, indented
func (w *Writer) WriteDump(board *trello.Board, stamp string) (string, error) {
	raw := board.Raw
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(board); err != nil {
			return "", fmt.Errorf("encoding board dump: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("indenting board dump: %w", err)
	}
	buf.WriteByte('\n')

	return w.write(board, fmt.Sprintf("trello_%s.%s.json", SafeName(board.Name), stamp), buf.Bytes())
}

// WriteTree writes the readable list/card/checklist tree
func (w *Writer) WriteTree(board *trello.Board, stamp string, tree *core.Tree) (string, error) {
	data, err := marshalIndent(tree)
	if err != nil {
		return "", fmt.Errorf("encoding checklist tree: %w", err)
	}
	return w.write(board, fmt.Sprintf("trello_%s.checklists.%s.json", SafeName(board.Name), stamp), data)
}

// WriteRows writes the flat rows as CSV
func (w *Writer) WriteRows(board *trello.Board, stamp string, rows []core.Row) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return "", err
	}
	return w.write(board, fmt.Sprintf("trello_%s.checklists.%s.csv", SafeName(board.Name), stamp), buf.Bytes())
}

// WriteFields writes the resolved plugin fields per card
func (w *Writer) WriteFields(board *trello.Board, stamp string, fields *core.CardFields) (string, error) {
	data, err := marshalIndent(fields)
	if err != nil {
		return "", fmt.Errorf("encoding plugin fields: %w", err)
	}
	return w.write(board, fmt.Sprintf("trello_%s.fields.%s.json", SafeName(board.Name), stamp), data)
}

// WriteCSV writes rows as comma separated records. Rows may differ in length.
func WriteCSV(w io.Writer, rows []core.Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) write(board *trello.Board, name string, data []byte) (string, error) {
	dir := w.BoardDir(board)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

func marshalIndent(v any) ([]byte, error) {
	compact, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
