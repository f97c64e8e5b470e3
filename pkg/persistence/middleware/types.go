package middleware

import "github.com/aretw0/botflow/pkg/ports"

// Middleware allows wrapping a UserRecordStore to add behavior.
type Middleware func(ports.UserRecordStore) ports.UserRecordStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.UserRecordStore, mws ...Middleware) ports.UserRecordStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
