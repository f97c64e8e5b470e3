// Package cache provides the volatile variable tier backed by go-cache.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Volatile implements ports.VolatileStore.
// Each user's variables are stored as one immutable map; writers replace it under a lock.
type Volatile struct {
	cache *gocache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

// Option configures the Volatile store.
type Option func(*Volatile)

// WithTTL expires a user's session variables after ttl without writes.
// Zero (the default) keeps them until cleared.
func WithTTL(ttl time.Duration) Option {
	return func(v *Volatile) {
		v.ttl = ttl
	}
}

// NewVolatile creates an empty volatile tier.
func NewVolatile(opts ...Option) *Volatile {
	v := &Volatile{}
	for _, opt := range opts {
		opt(v)
	}

	expiration := gocache.NoExpiration
	if v.ttl > 0 {
		expiration = v.ttl
	}
	v.cache = gocache.New(expiration, 10*time.Minute)
	return v
}

// Variables returns a copy of the user's variables.
func (v *Volatile) Variables(ctx context.Context, userID string) map[string]string {
	current := v.get(userID)
	out := make(map[string]string, len(current))
	for k, val := range current {
		out[k] = val
	}
	return out
}

// Set stores one variable.
func (v *Volatile) Set(ctx context.Context, userID, name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.get(userID)
	next := make(map[string]string, len(current)+1)
	for k, val := range current {
		next[k] = val
	}
	next[name] = value
	v.cache.Set(userID, next, gocache.DefaultExpiration)
}

// Clear drops the user's variables.
func (v *Volatile) Clear(ctx context.Context, userID string) {
	v.cache.Delete(userID)
}

func (v *Volatile) get(userID string) map[string]string {
	raw, found := v.cache.Get(userID)
	if !found {
		return nil
	}
	m, _ := raw.(map[string]string)
	return m
}
