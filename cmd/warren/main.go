// Warren is a proxy-rotation gateway: a single listener that accepts
// HTTP/HTTPS/SOCKS4/SOCKS5 client sessions and forwards each one through a
// dynamically selected upstream proxy drawn from a continuously validated
// pool.
//
// Usage:
//
//	# Validate a candidate list and print the admitted pool
//	warren find --input candidates.txt
//
//	# Enumerate raw candidates without validating them
//	warren grab --input candidates.txt
//
//	# Validate an input list, exit non-zero if nothing is admitted
//	warren check candidates.txt
//
//	# Start the rotation gateway
//	warren serve --config /path/to/config.yaml
//
//	# Show version information
//	warren version
//
// Run `warren --help` for the full command list and flags.
package main

func main() {
	Execute()
}
