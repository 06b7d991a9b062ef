// Package export runs the fetch, reshape and write pipeline for each board.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dackerman/trello-checklists-export/internal/core"
	"github.com/dackerman/trello-checklists-export/internal/output"
	"github.com/dackerman/trello-checklists-export/internal/trello"
)

// ArtifactWriter persists the artifacts produced for one board
type ArtifactWriter interface {
	WriteDump(board *trello.Board, stamp string) (string, error)
	WriteTree(board *trello.Board, stamp string, tree *core.Tree) (string, error)
	WriteRows(board *trello.Board, stamp string, rows []core.Row) (string, error)
	WriteFields(board *trello.Board, stamp string, fields *core.CardFields) (string, error)
}

var _ ArtifactWriter = (*output.Writer)(nil)

// BoardResult is the outcome of exporting one board
type BoardResult struct {
	BoardID    string
	BoardName  string
	Cards      int
	Rows       int
	Columns    int
	Collisions int
	Files      []string
	Err        error
}

// OK reports whether the board was exported without error
func (r BoardResult) OK() bool {
	return r.Err == nil
}

// Exporter runs the pipeline. API may be nil when only ProcessFile is used.
type Exporter struct {
	API    trello.API
	Writer ArtifactWriter
	Logger *zap.Logger
	Now    func() time.Time
}

// Run exports each board in order. A failure is recorded in that board's
// result and the remaining boards are still processed.
func (e *Exporter) Run(ctx context.Context, boardIDs []string) []BoardResult {
	results := make([]BoardResult, 0, len(boardIDs))
	for _, id := range boardIDs {
		if err := ctx.Err(); err != nil {
			results = append(results, BoardResult{BoardID: id, Err: err})
			continue
		}
		results = append(results, e.ExportBoard(ctx, id))
	}
	return results
}

// ExportBoard fetches one board and processes it
func (e *Exporter) ExportBoard(ctx context.Context, boardID string) BoardResult {
	log := e.logger().With(zap.String("board_id", boardID))
	log.Info("Fetching board")

	board, err := e.API.GetBoard(ctx, boardID)
	if err != nil {
		log.Error("Unable to retrieve board", zap.Error(err))
		return BoardResult{BoardID: boardID, Err: fmt.Errorf("fetching board %s: %w", boardID, err)}
	}

	if len(board.PluginData) == 0 && hasCardPluginData(board) {
		models, err := e.API.GetPluginData(ctx, boardID)
		if err != nil {
			log.Warn("Unable to retrieve plugin data, plugin fields will be empty", zap.Error(err))
		} else {
			board.PluginData = models
		}
	}

	return e.ProcessBoard(board)
}

// ProcessFile runs the pipeline on a board dump previously written to disk
func (e *Exporter) ProcessFile(path string) BoardResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return BoardResult{Err: fmt.Errorf("reading board dump: %w", err)}
	}

	board, err := trello.ParseBoard(data)
	if err != nil {
		return BoardResult{Err: fmt.Errorf("%s: %w", path, err)}
	}

	return e.ProcessBoard(board)
}

// ProcessBoard writes the dump, the checklist tree, the flat rows and the
// plugin fields for a board that has already been fetched
func (e *Exporter) ProcessBoard(board *trello.Board) BoardResult {
	log := e.logger().With(zap.String("board_id", board.ID), zap.String("board_name", board.Name))
	result := BoardResult{BoardID: board.ID, BoardName: board.Name, Cards: len(board.Cards)}

	fail := func(err error) BoardResult {
		log.Error("Board export failed", zap.Error(err))
		result.Err = err
		return result
	}

	stamp := output.Stamp(e.now())

	path, err := e.Writer.WriteDump(board, stamp)
	if err != nil {
		return fail(err)
	}
	result.Files = append(result.Files, path)

	built, err := core.Build(board)
	if err != nil {
		return fail(err)
	}
	result.Collisions = built.Collisions
	if built.Collisions > 0 {
		log.Warn("Cards with duplicate names were overwritten", zap.Int("collisions", built.Collisions))
	}
	if built.SkippedChecklists > 0 {
		log.Debug("Skipped checklists missing from export", zap.Int("skipped", built.SkippedChecklists))
	}

	if path, err = e.Writer.WriteTree(board, stamp, built.Tree); err != nil {
		return fail(err)
	}
	result.Files = append(result.Files, path)

	rows := core.Flatten(built.Tree)
	result.Rows = len(rows)
	result.Columns = len(core.Columns(built.Tree))

	if path, err = e.Writer.WriteRows(board, stamp, rows); err != nil {
		return fail(err)
	}
	result.Files = append(result.Files, path)

	if path, err = e.Writer.WriteFields(board, stamp, core.BoardFields(board.PluginData, board)); err != nil {
		return fail(err)
	}
	result.Files = append(result.Files, path)

	log.Info("Board processed",
		zap.Int("cards", result.Cards),
		zap.Int("rows", result.Rows),
		zap.Int("columns", result.Columns))

	return result
}

func (e *Exporter) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func hasCardPluginData(board *trello.Board) bool {
	for _, card := range board.Cards {
		if len(card.PluginData) > 0 {
			return true
		}
	}
	return false
}

// Failed counts the results that carry an error
func Failed(results []BoardResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
