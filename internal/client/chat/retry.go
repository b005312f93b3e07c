package chat

import (
	"context"
	"time"

	"github.com/gophmart/gophmart/internal/client/api"
)

// retry runs fn up to retries+1 times. Only errors the transport marked
// retryable are retried; anything else fails immediately. The delay before
// re-attempt n is n times the base delay, and waiting is cancellable.
func retry(ctx context.Context, retries int, delay time.Duration, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= retries || !api.IsRetryable(err) {
			return err
		}
		if werr := wait(ctx, time.Duration(attempt+1)*delay); werr != nil {
			return werr
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
