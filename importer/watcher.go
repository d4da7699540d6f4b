package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Runner is one reconciliation run. Both importers satisfy it.
type Runner interface {
	Run(ctx context.Context) (Stats, error)
}

// Watcher polls the modification times of the two source files and
// re-runs the matching importer when one changes. Runs are serialized by
// a mutex so a rapid burst of writes queues full reconciliations instead
// of racing them; each run is idempotent, so the extra runs are harmless.
type Watcher struct {
	matchesPath string
	usersPath   string
	matches     Runner
	users       Runner
	interval    time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger

	mu     sync.Mutex
	mtimes map[string]time.Time
}

func NewWatcher(matchesPath string, matches Runner, usersPath string, users Runner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Watcher {
	return &Watcher{
		matchesPath: matchesPath,
		usersPath:   usersPath,
		matches:     matches,
		users:       users,
		interval:    interval,
		clock:       clock,
		logger:      logger,
		mtimes:      make(map[string]time.Time),
	}
}

// Run reconciles both sources once, then polls until ctx is canceled.
// Importer failures are logged and do not stop the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("import watcher started",
		slog.String("dir", filepath.Dir(w.matchesPath)),
		slog.Duration("interval", w.interval))

	// Record current mtimes so the startup run is not immediately
	// repeated by the first tick.
	w.remember(w.matchesPath)
	w.remember(w.usersPath)
	w.runOne(ctx, "matches", w.matches)
	w.runOne(ctx, "users", w.users)

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("import watcher stopped")
			return nil
		case <-ticker.Chan():
			if w.changed(w.matchesPath) {
				w.logger.Info("matches file changed, reconciling")
				w.runOne(ctx, "matches", w.matches)
			}
			if w.changed(w.usersPath) {
				w.logger.Info("users file changed, reconciling")
				w.runOne(ctx, "users", w.users)
			}
		}
	}
}

func (w *Watcher) runOne(ctx context.Context, kind string, r Runner) {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats, err := r.Run(ctx)
	if err != nil {
		w.logger.Error("reconciliation failed",
			slog.String("source", kind), slog.Any("error", err))
		return
	}
	w.logger.Info("reconciliation finished",
		slog.String("source", kind),
		slog.Int("created", stats.Created),
		slog.Int("updated", stats.Updated),
		slog.Int("deleted", stats.Deleted),
		slog.Int("skipped", stats.Skipped))
}

// changed reports whether the file's mtime moved since the last check
// and records the new value. A file appearing for the first time counts
// as changed.
func (w *Watcher) changed(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	last, known := w.mtimes[path]
	w.mtimes[path] = info.ModTime()
	return !known || info.ModTime().After(last)
}

func (w *Watcher) remember(path string) {
	if info, err := os.Stat(path); err == nil {
		w.mtimes[path] = info.ModTime()
	}
}
