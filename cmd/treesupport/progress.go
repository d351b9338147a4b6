package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/chazu/lignin/treesupport/pkg/support"
)

// barProgress renders a single-line progress bar to an ANSI-aware writer
// when stdout is a real terminal, and falls back to plain percentage lines
// otherwise — CI logs and redirected output shouldn't fill up with carriage
// returns.
type barProgress struct {
	out   io.Writer
	tty   bool
	label string
	last  int
}

func newProgress(label string) support.Progress {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return &barProgress{out: colorable.NewColorableStdout(), tty: tty, label: label, last: -1}
}

func (p *barProgress) Report(stage string, done, total int) {
	if total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct == p.last {
		return
	}
	p.last = pct

	if p.tty {
		fmt.Fprintf(p.out, "\r\x1b[36m%s\x1b[0m [%-30s] %3d%%", p.label, bar(pct), pct)
		if pct >= 100 {
			fmt.Fprintln(p.out)
		}
	} else {
		fmt.Fprintf(p.out, "%s: %d%%\n", p.label, pct)
	}
}

func bar(pct int) string {
	filled := pct * 30 / 100
	b := make([]byte, 30)
	for i := range b {
		if i < filled {
			b[i] = '='
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}
