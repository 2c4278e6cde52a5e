package repl

import (
	"context"
	"errors"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"
)

// HistoryLimit is the number of stored lines loaded into a new line editor.
const HistoryLimit = 1000

// HistoryStore persists accepted lines across sessions.
type HistoryStore interface {
	Append(ctx context.Context, line string) error
	Recent(ctx context.Context, limit int) ([]string, error)
}

// LineEditor is a LineReader backed by an interactive line editor.
type LineEditor struct {
	line    *liner.State
	history HistoryStore
	logger  zerolog.Logger
}

var _ LineReader = (*LineEditor)(nil)

// NewLineEditor puts the terminal into raw mode and preloads history from
// store, which may be nil.
func NewLineEditor(ctx context.Context, store HistoryStore, logger zerolog.Logger) *LineEditor {
	t := &LineEditor{
		line:    liner.NewLiner(),
		history: store,
		logger:  logger.With().Str("component", "repl").Logger(),
	}
	t.line.SetCtrlCAborts(true)
	t.line.SetMultiLineMode(true)

	if store != nil {
		lines, err := store.Recent(ctx, HistoryLimit)
		if err != nil {
			t.logger.Warn().Err(err).Msg("Failed to load history")
		}
		for _, l := range lines {
			t.line.AppendHistory(l)
		}
	}
	return t
}

// ReadLine implements LineReader.
func (t *LineEditor) ReadLine(prompt string) (string, error) {
	line, err := t.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInterrupted
	}
	return line, err
}

// AppendHistory implements LineReader.
func (t *LineEditor) AppendHistory(line string) {
	t.line.AppendHistory(line)
	if t.history == nil {
		return
	}
	if err := t.history.Append(context.Background(), line); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to save history")
	}
}

// Close restores the terminal mode.
func (t *LineEditor) Close() error {
	return t.line.Close()
}
