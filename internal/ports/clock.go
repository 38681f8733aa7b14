package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done. It reports false when ctx ended
	// the wait.
	Sleep(ctx context.Context, d time.Duration) bool
}
