package validator

import "errors"

// ErrAllProtocolsFailed is returned when every configured protocol probe
// failed against a candidate; the candidate is discarded without ever
// entering the pool (spec §4.2 "Failure semantics").
var ErrAllProtocolsFailed = errors.New("validator: no protocol succeeded for candidate")

// ErrBlacklisted is returned when the DNSBL collaborator flags a candidate
// at admission time (spec §6 "DNSBL interface").
var ErrBlacklisted = errors.New("validator: candidate rejected by DNSBL")
