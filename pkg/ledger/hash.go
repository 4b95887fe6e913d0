package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// chainHash computes the next link in the ledger's hash chain: the SHA-256
// of prevHash concatenated with the record's canonical fields. Including
// prevHash means altering or reordering any past record changes every hash
// after it, making tampering detectable by replaying the chain.
func chainHash(prevHash string, r *SessionRecord) string {
	var b strings.Builder
	b.WriteString(prevHash)
	b.WriteString(r.ID)
	b.WriteString(r.StartTime.UTC().Format("2006-01-02T15:04:05.000000000Z"))
	b.WriteString(r.EndTime.UTC().Format("2006-01-02T15:04:05.000000000Z"))
	b.WriteString(r.ClientAddr)
	b.WriteString(r.UpstreamHost)
	b.WriteString(strconv.Itoa(r.UpstreamPort))
	b.WriteString(r.Protocol)
	b.WriteString(r.Outcome)
	b.WriteString(strconv.Itoa(r.RetryCount))
	b.WriteString(strconv.FormatInt(r.ElapsedMS, 10))
	b.WriteString(r.Error)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
