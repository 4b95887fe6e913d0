package server

import "errors"

// ErrNoUpstreamAvailable is returned by dispatch when the pool has no
// record satisfying the client's requirements (spec §4.3, §5).
var ErrNoUpstreamAvailable = errors.New("server: no upstream available")

// ErrUpstreamExhausted is returned when every attempt up to MaxTries
// failed to produce a usable negotiated upstream (spec §5 "Retry").
var ErrUpstreamExhausted = errors.New("server: upstream attempts exhausted")
