// Package variables implements the two-tier per-user variable lookup.
//
// Resolution order, first hit wins:
//
//  1. the durable record's nested user_data map (possibly JSON-encoded), unwrapping {"value": ...}
//  2. a durable top-level field with the same name
//  3. the volatile session map
//
// A tier hits when it holds the name with a non-null value. Durable failures never
// propagate: malformed JSON reads as "not found" and an unavailable durable tier
// degrades to the volatile tier.
package variables

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
	"github.com/spf13/cast"
)

// Store resolves variables for users across the durable and volatile tiers.
// It is safe for concurrent use when its tiers are.
type Store struct {
	durable  ports.UserRecordStore
	volatile ports.VolatileStore
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used to report degraded durable reads.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers the OnTierDegraded hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// New creates a Store. durable may be nil, in which case only the volatile tier is used.
func New(durable ports.UserRecordStore, volatile ports.VolatileStore, opts ...Option) *Store {
	s := &Store{
		durable:  durable,
		volatile: volatile,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve looks up a single variable.
func (s *Store) Resolve(ctx context.Context, userID, name string) domain.VariableRecord {
	return s.Load(ctx, userID).Resolve(name)
}

// Load reads both tiers once and returns a Scope for the rest of an evaluation.
func (s *Store) Load(ctx context.Context, userID string) *Scope {
	scope := &Scope{}

	if s.durable != nil {
		rec, err := s.durable.LoadUser(ctx, userID)
		switch {
		case err == nil:
			scope.flat = rec
			scope.userData = decodeUserData(rec[domain.UserDataKey])
		case errors.Is(err, domain.ErrUserNotFound):
		default:
			s.logger.Warn("Durable variable tier unavailable, using volatile tier",
				"user_id", userID,
				"err", err,
			)
			if s.hooks.OnTierDegraded != nil {
				s.hooks.OnTierDegraded(ctx, &domain.EventBase{
					Timestamp: time.Now(),
					Type:      domain.EventTierDegraded,
					UserID:    userID,
				}, err)
			}
		}
	}

	if s.volatile != nil {
		scope.session = s.volatile.Variables(ctx, userID)
	}
	return scope
}

// Set stores a collected value. The volatile tier is always written; the durable
// tier is written best-effort and a failure is returned for the caller to log.
func (s *Store) Set(ctx context.Context, userID, name, value string) error {
	if s.volatile != nil {
		s.volatile.Set(ctx, userID, name, value)
	}
	if s.durable == nil {
		return nil
	}
	if err := s.durable.SaveVariable(ctx, userID, name, value); err != nil {
		s.logger.Warn("Failed to persist variable to durable tier",
			"user_id", userID,
			"variable", name,
			"err", err,
		)
		return err
	}
	return nil
}

// Scope is a per-evaluation snapshot of one user's variables.
type Scope struct {
	userData map[string]any
	flat     domain.UserRecord
	session  map[string]string
}

// Resolve applies the tier order to one name.
func (sc *Scope) Resolve(name string) domain.VariableRecord {
	if v, ok := sc.userData[name]; ok {
		if s, ok := stringify(unwrap(v)); ok {
			return domain.NewVariableRecord(s)
		}
	}
	if name != domain.UserDataKey {
		if v, ok := sc.flat[name]; ok {
			if s, ok := stringify(v); ok {
				return domain.NewVariableRecord(s)
			}
		}
	}
	if v, ok := sc.session[name]; ok {
		return domain.NewVariableRecord(v)
	}
	return domain.Missing()
}

// Known returns every resolvable variable with a non-null value, each resolved
// with the same tier order as Resolve.
func (sc *Scope) Known() map[string]string {
	names := make(map[string]struct{}, len(sc.userData)+len(sc.flat)+len(sc.session))
	for k := range sc.userData {
		names[k] = struct{}{}
	}
	for k := range sc.flat {
		if k != domain.UserDataKey {
			names[k] = struct{}{}
		}
	}
	for k := range sc.session {
		names[k] = struct{}{}
	}

	known := make(map[string]string, len(names))
	for name := range names {
		if v, ok := sc.Resolve(name).String(); ok {
			known[name] = v
		}
	}
	return known
}

// decodeUserData accepts a map or its JSON encoding. Anything else reads as empty.
func decodeUserData(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil
		}
		return m
	case []byte:
		var m map[string]any
		if err := json.Unmarshal(v, &m); err != nil {
			return nil
		}
		return m
	default:
		return nil
	}
}

func unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return v
}

// stringify renders a stored value as text. nil is reported as absent.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	default:
		s, err := cast.ToStringE(t)
		if err != nil {
			b, jerr := json.Marshal(t)
			if jerr != nil {
				return "", false
			}
			return string(b), true
		}
		return s, true
	}
}
