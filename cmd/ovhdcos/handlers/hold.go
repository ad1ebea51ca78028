package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
)

// Function variables for dependency injection in tests.
var (
	confirmDestroy = defaultConfirmDestroy
	interactive    = func() bool { return isTerminal(os.Stdin) && isTerminal(os.Stdout) }
)

// holdCluster keeps the instances alive until the operator lets go: an
// explicit confirmation on a terminal, otherwise an interrupt signal.
func holdCluster(ctx context.Context, w io.Writer) {
	if !interactive() {
		_, _ = fmt.Fprintln(w, "Press Ctrl+C to DESTROY all instances...")
		<-ctx.Done()
		return
	}

	for {
		destroy, err := confirmDestroy(ctx)
		if err != nil || destroy || ctx.Err() != nil {
			return
		}
	}
}

func defaultConfirmDestroy(ctx context.Context) (bool, error) {
	var destroy bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Destroy all instances?").
				Description("The cluster stays up until you confirm").
				Affirmative("Destroy").
				Negative("Keep").
				Value(&destroy),
		),
	).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return true, nil
	}
	return destroy, err
}
