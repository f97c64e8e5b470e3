package domain

import "errors"

// ErrUserNotFound is returned when the durable tier holds no record for a user.
var ErrUserNotFound = errors.New("user not found")

// ErrStateNotFound is returned when no conversation state exists for a user.
var ErrStateNotFound = errors.New("conversation state not found")

// ErrNodeNotFound is returned when a flow node cannot be located.
var ErrNodeNotFound = errors.New("node not found")
