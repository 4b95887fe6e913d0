// Package validator probes a candidate upstream through each configured
// protocol, producing the set of confirmed protocols, the anonymity level,
// the geographic origin, and seed latency samples the Pool needs to admit
// it (spec §4.2).
package validator
