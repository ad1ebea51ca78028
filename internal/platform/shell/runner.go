package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Target is a place commands run.
type Target interface {
	Start(ctx context.Context, command string) (*Process, error)
	String() string
}

var prefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

// Runner runs commands and copies their output to a sink, one prefixed line
// at a time. It is safe for concurrent use.
type Runner struct {
	out    io.Writer
	styled bool
	mu     sync.Mutex
}

// NewRunner creates a Runner writing to out. The target prefix is styled
// when out is a terminal.
func NewRunner(out io.Writer) *Runner {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd())
	}
	return &Runner{out: out, styled: styled}
}

// Run starts command on target, streams its output and waits for it.
// It does not retry.
func (r *Runner) Run(ctx context.Context, target Target, command string) error {
	proc, err := target.Start(ctx, command)
	if err != nil {
		return err
	}
	name := target.String()
	for line := range proc.Lines() {
		r.emit(name, line)
	}
	return proc.Wait()
}

func (r *Runner) emit(name, line string) {
	prefix := "[" + name + "]"
	if r.styled {
		prefix = prefixStyle.Render(prefix)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s %s\n", prefix, line)
}
