// Package errors provides error handling for shotsort.
//
// It re-exports github.com/cockroachdb/errors and defines the sentinel
// markers used to classify failures across the triage pipeline:
//
//	// Mark a per-file failure so the engine can count it
//	return errors.Mark(errors.Wrap(err, "decode"), errors.ErrClassification)
//
//	// Check the category later
//	if errors.Is(err, errors.ErrState) { ... }
//
// Hints attached with WithHint are printed by the CLI under the error.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is    = crdb.Is
	IsAny = crdb.IsAny
	As    = crdb.As
	Mark  = crdb.Mark
)

// Failure categories. Wrap the underlying cause and Mark it with one of these
// so callers can branch with Is without string matching.
var (
	// ErrDiscovery: the input directory could not be listed.
	ErrDiscovery = New("discovery failed")
	// ErrClassification: a single image could not be decoded or scored.
	ErrClassification = New("classification failed")
	// ErrCopy: a single image could not be written to its destination.
	ErrCopy = New("copy failed")
	// ErrModelLoad: the classifier backend failed to initialise.
	ErrModelLoad = New("model load failed")
	// ErrState: the operation is not allowed in the current state.
	ErrState = New("invalid state")
	// ErrSetup: the run could not be prepared (config or output folders).
	ErrSetup = New("setup failed")
)
