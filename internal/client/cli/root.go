package cli

import (
	"bufio"
	"context"
	"os"
)

// Root restores the persisted session and runs the REPL until the user
// exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to GophMart (type 'help' for commands)")

	if err := a.session.Initialize(ctx); err != nil {
		a.log.Warn(ctx, "session initialization", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
