package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"
)

const (
	// markerFile is written inside the mirror after every successful refresh,
	// its modification time is the refresh time.
	markerFile = "typings-registry-refreshed"

	lockRetryDelay = 250 * time.Millisecond
)

// RefreshFunc brings the mirror at path up to date with remoteURL, cloning it when absent
type RefreshFunc func(ctx context.Context, path, remoteURL string) error

// Guard throttles mirror refreshes. Concurrent callers for the same path share one
// in-flight refresh within the process, and a file lock next to the mirror
// serializes refreshes between processes on the same host.
type Guard struct {
	group   singleflight.Group
	refresh RefreshFunc
	now     func() time.Time
}

// NewGuard creates a Guard that refreshes mirrors with the given function
func NewGuard(refresh RefreshFunc) *Guard {
	return &Guard{
		refresh: refresh,
		now:     time.Now,
	}
}

// EnsureFresh refreshes the mirror unless its last refresh is younger than maxAge.
// Refresh errors are returned to every caller that shared the refresh.
func (g *Guard) EnsureFresh(ctx context.Context, path, remoteURL string, maxAge time.Duration) error {
	if g.isFresh(path, maxAge) {
		return nil
	}

	_, err, shared := g.group.Do(path, func() (any, error) {
		return nil, g.refreshLocked(ctx, path, remoteURL, maxAge)
	})
	if shared {
		slog.Debug("Joined in-flight mirror refresh", "path", path)
	}
	return err
}

func (g *Guard) refreshLocked(ctx context.Context, path, remoteURL string, maxAge time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create mirror parent directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock mirror %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock mirror %s", path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("Failed to unlock mirror", "path", path, "error", err)
		}
	}()

	// another process may have refreshed while we waited for the lock
	if g.isFresh(path, maxAge) {
		return nil
	}

	start := g.now()
	slog.Info("Refreshing mirror", "path", path, "url", remoteURL)
	if err := g.refresh(ctx, path, remoteURL); err != nil {
		return fmt.Errorf("failed to refresh mirror %s: %w", path, err)
	}

	if err := g.touch(path); err != nil {
		return err
	}
	slog.Info("Mirror refreshed", "path", path, "duration", g.now().Sub(start).String())
	return nil
}

func (g *Guard) isFresh(path string, maxAge time.Duration) bool {
	info, err := os.Stat(filepath.Join(path, markerFile))
	if err != nil {
		return false
	}
	return g.now().Sub(info.ModTime()) < maxAge
}

func (g *Guard) touch(path string) error {
	marker := filepath.Join(path, markerFile)
	now := g.now()
	if err := os.WriteFile(marker, []byte(now.UTC().Format(time.RFC3339)), 0o600); err != nil {
		return fmt.Errorf("failed to write refresh marker: %w", err)
	}
	if err := os.Chtimes(marker, now, now); err != nil {
		return fmt.Errorf("failed to update refresh marker: %w", err)
	}
	return nil
}
