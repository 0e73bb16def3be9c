package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrewchambers/cfront/config"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/charmbracelet/lipgloss"
)

// positioned is implemented by lexer, parser and semantic errors.
type positioned interface {
	Position() cpp.FilePos
}

const tabWidth = 4

func reportError(w io.Writer, err error, cfg *config.Config) {
	heading := "error:"
	caret := "^"
	if cfg.Output.Color {
		r := lipgloss.NewRenderer(w)
		heading = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render(heading)
		caret = r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render(caret)
	}
	fmt.Fprintf(w, "%s %s\n", heading, err)
	var pe positioned
	if !errors.As(err, &pe) || !cfg.Output.ShowSource {
		return
	}
	pos := pe.Position()
	if !pos.IsValid() {
		return
	}
	line, ok := sourceLine(pos.File, pos.Line)
	if !ok {
		return
	}
	fmt.Fprintln(w, expandTabs(line))
	// Columns already count a tab as tabWidth.
	fmt.Fprintln(w, strings.Repeat(" ", max(pos.Col-1, 0))+caret)
}

// sourceLine returns line number lineno of path without its newline.
func sourceLine(path string, lineno int) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for n := 1; s.Scan(); n++ {
		if n == lineno {
			return s.Text(), true
		}
	}
	return "", false
}

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
}
