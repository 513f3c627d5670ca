package goknots

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrMalformedTemplate  = errors.New("malformed tile template")
	ErrIncompleteMap      = errors.New("incomplete map")
	ErrInconsistentRegion = errors.New("region spans triangles of differing color")
	ErrOutOfBounds        = errors.New("grid position out of bounds")
	ErrUnknownTopology    = errors.New("unknown topology")
	ErrUnknownDirection   = errors.New("unknown direction")
	ErrBadTemplateExpr    = errors.New("bad tile template expression")
	ErrNilTemplate        = errors.New("nil tile template")
)

// ErrIncongruentBoundary is also an ErrMalformedTemplate: the two tiles' templates can't share a side.
var ErrIncongruentBoundary = fmt.Errorf("%w: facing tile boundaries are not congruent", ErrMalformedTemplate)
