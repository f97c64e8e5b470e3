package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/schema"
	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// Loader implements ports.FlowLoader and ports.Watchable over a JSON or YAML flow file.
// A failed reload keeps the last good flow.
type Loader struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	name  string
	nodes *memory.Loader
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used to report reloads.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader reads the flow file once.
func NewLoader(path string, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{path: path, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the flow file.
func (l *Loader) Reload() error {
	flow, err := schema.ReadFlowFile(l.path)
	if err != nil {
		return err
	}
	nodes, err := memory.NewFromNodes(flow.Nodes...)
	if err != nil {
		return fmt.Errorf("invalid flow %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.name = flow.Name
	l.nodes = nodes
	l.mu.Unlock()
	return nil
}

// Name returns the flow name.
func (l *Loader) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

func (l *Loader) current() *memory.Loader {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nodes
}

// GetNode retrieves a node by id.
func (l *Loader) GetNode(id string) (*domain.Node, error) {
	return l.current().GetNode(id)
}

// NodeByCommand finds the node a command triggers.
func (l *Loader) NodeByCommand(command string) (*domain.Node, error) {
	return l.current().NodeByCommand(command)
}

// ListNodes returns every node in definition order.
func (l *Loader) ListNodes() ([]domain.Node, error) {
	return l.current().ListNodes()
}

// Watch reloads the flow when its file changes and signals after each
// successful reload. The channel closes when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.path, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		target := filepath.Clean(l.path)
		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer.Reset(debounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("flow watcher error", "path", l.path, "error", err)
			case <-timer.C:
				if err := l.Reload(); err != nil {
					l.logger.Error("flow reload failed, keeping previous flow", "path", l.path, "error", err)
					continue
				}
				l.logger.Info("flow reloaded", "path", l.path)
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
