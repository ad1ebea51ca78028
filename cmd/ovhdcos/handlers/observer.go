package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr/funcr"

	"github.com/imamik/ovhdcos/internal/provisioning"
)

// Log formats accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogOptions selects how progress is reported.
type LogOptions struct {
	Format  string
	Verbose bool
}

// logOutput receives structured log lines. Replaced in tests.
var logOutput io.Writer = os.Stderr

// newObserver builds the observer for opts. Plain text without -v keeps the
// standard log output; everything else goes through logr.
func newObserver(opts LogOptions) (provisioning.Observer, error) {
	verbosity := 0
	if opts.Verbose {
		verbosity = 1
	}
	write := func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(logOutput, "%s %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(logOutput, args)
	}

	switch opts.Format {
	case "", LogFormatText:
		if !opts.Verbose {
			return provisioning.NewConsoleObserver(), nil
		}
		l := funcr.New(write, funcr.Options{Verbosity: verbosity, LogTimestamp: true})
		return provisioning.NewLogrObserver(l), nil
	case LogFormatJSON:
		l := funcr.NewJSON(func(obj string) { write("", obj) }, funcr.Options{Verbosity: verbosity, LogTimestamp: true})
		return provisioning.NewLogrObserver(l), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", opts.Format, LogFormatText, LogFormatJSON)
	}
}
