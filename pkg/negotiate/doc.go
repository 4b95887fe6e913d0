// Package negotiate implements the per-protocol upstream handshakes: pure
// bytewise exchanges against an already-open TCP socket that bring it to a
// state where it transparently forwards bytes to a target host:port.
//
// Each negotiator is used both by the Validator (probing a judge through a
// candidate) and by the Server (opening a live client session through a
// selected pool member).
package negotiate
