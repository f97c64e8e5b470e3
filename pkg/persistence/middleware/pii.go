package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/ports"
)

type piiMiddleware struct {
	next     ports.UserRecordStore
	patterns []*regexp.Regexp
	logger   *slog.Logger
}

// NewPIIMiddleware creates a middleware that keeps variables whose names match
// any of the patterns out of the durable tier. Such values then live only in
// the volatile tier for the rest of the session.
// It fails on the first pattern that does not compile.
func NewPIIMiddleware(patternStrings []string, logger *slog.Logger) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next ports.UserRecordStore) ports.UserRecordStore {
		return &piiMiddleware{next: next, patterns: patterns, logger: logger}
	}, nil
}

func (m *piiMiddleware) SaveVariable(ctx context.Context, userID, name, value string) error {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			m.logger.Debug("Variable kept out of durable tier", "user_id", userID, "variable", name)
			return nil
		}
	}
	return m.next.SaveVariable(ctx, userID, name, value)
}

func (m *piiMiddleware) LoadUser(ctx context.Context, userID string) (domain.UserRecord, error) {
	rec, err := m.next.LoadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if data, ok := userData(rec); ok {
		masked := false
		for name := range data {
			for _, p := range m.patterns {
				if p.MatchString(name) {
					delete(data, name)
					masked = true
					break
				}
			}
		}
		if masked {
			rec[domain.UserDataKey] = data
		}
	}
	return rec, nil
}
