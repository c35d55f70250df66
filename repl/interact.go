package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/leftmike/nquery/flags"
	"github.com/leftmike/nquery/symbols"
)

const (
	nqueryHistory = ".nquery_history"
)

type lineReader struct {
	line   *liner.State
	r      *strings.Reader
	prompt string
}

func (lr *lineReader) ReadRune() (r rune, size int, err error) {
	for {
		if lr.r == nil {
			s, err := lr.line.Prompt(lr.prompt)
			if err != nil {
				if err == liner.ErrPromptAborted {
					return 0, 0, io.EOF
				}
				return 0, 0, err
			}
			lr.line.AppendHistory(s)
			lr.r = strings.NewReader(s + "\n")
		}

		r, sz, err := lr.r.ReadRune()
		if err == io.EOF {
			lr.r = nil
		} else if err != nil {
			return 0, 0, err
		} else {
			return r, sz, nil
		}
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nqueryHistory
	}
	return filepath.Join(home, nqueryHistory)
}

// Interact runs a console session with line editing; history is kept in
// ~/.nquery_history.
func Interact(ctx context.Context, dc *symbols.DataContext, flgs flags.Flags) {
	line := liner.NewLiner()
	defer line.Close()

	history := historyFile()
	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	ReplSQL(ctx, dc, flgs, &lineReader{line: line, prompt: "nquery> "}, os.Stdout)

	if f, err := os.Create(history); err != nil {
		fmt.Fprintf(os.Stderr, "nquery: error writing history file, %s: %s\n", history, err)
	} else {
		line.WriteHistory(f)
		f.Close()
	}
}
