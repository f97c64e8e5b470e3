package loam

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/adapters/memory"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/schema"
	"github.com/aretw0/loam"
)

// Loader implements ports.FlowLoader and ports.Watchable over a Loam
// repository where every document is one node.
type Loader struct {
	Repo   *loam.TypedRepository[NodeMetadata]
	logger *slog.Logger

	mu    sync.RWMutex
	name  string
	nodes *memory.Loader
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report reloads.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithName sets the flow name reported by Name.
func WithName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// Open initializes a read-only Loam repository at dir and loads its nodes.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as integers; the engine never writes the flow.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	opts = append([]Option{WithName(filepath.Base(absPath))}, opts...)
	return New(loam.NewTypedRepository[NodeMetadata](repo), opts...)
}

// New creates a Loader over an existing typed repository and loads its nodes.
func New(repo *loam.TypedRepository[NodeMetadata], opts ...Option) (*Loader, error) {
	l := &Loader{Repo: repo, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Reload(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload lists every document and rebuilds the flow. Decoding problems are
// collected so one pass reports all broken documents.
func (l *Loader) Reload(ctx context.Context) error {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	nodes := make([]domain.Node, 0, len(docs))
	var errs []error

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID))
			continue
		}
		seen[id] = doc.ID

		node, err := schema.DecodeNode(doc.Data.raw(id, strings.TrimSpace(doc.Content)))
		if err != nil {
			errs = append(errs, &schema.FieldError{Path: doc.ID, Reason: err.Error()})
			continue
		}
		nodes = append(nodes, *node)
	}
	if len(errs) > 0 {
		return schema.FlowErrors(errs)
	}

	loader, err := memory.NewFromNodes(nodes...)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.nodes = loader
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

// ListNodes returns every node.
func (l *Loader) ListNodes() ([]domain.Node, error) {
	return l.current().ListNodes()
}

// Watch reloads the flow when a document changes and signals after each
// successful reload. The channel closes when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := l.Reload(ctx); err != nil {
					l.logger.Error("flow reload failed, keeping previous flow", "document", evt.ID, "error", err)
					continue
				}
				l.logger.Info("flow reloaded", "document", evt.ID)
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
