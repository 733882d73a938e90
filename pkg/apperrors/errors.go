package apperrors

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrDuplicateMergeConflict = errors.New("concurrent merge conflict")
	ErrOrphanClaim            = errors.New("claim references missing tool")
	ErrWeightsNotNormalized   = errors.New("scoring weights must sum to 1")
)
