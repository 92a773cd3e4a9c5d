// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers
// such as the hold manager and handlers to distinguish between
// different failure scenarios without inspecting SQL driver errors.
package repository

import "errors"

// ErrHoldNotFound is returned when a booking hold cannot be located
// by its identifier. The hold manager translates this into a
// "no longer valid" outcome so stale clients stop polling.
var ErrHoldNotFound = errors.New("booking hold not found")

// ErrConflict is returned when an insert cannot proceed because of
// conflicting state, such as adding a blocked date that already
// exists. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
