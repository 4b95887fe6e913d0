package external

// GeoIP resolves an IP address to an ISO-3166 alpha-2 country code. Absent
// a match, implementations return ok=false and the core treats the country
// as "--" (spec §4.2, §6).
type GeoIP interface {
	Lookup(ip string) (country string, ok bool)
}

// NoopGeoIP always reports no match; used when no GeoIP backend is
// configured so the Validator can run unconditionally.
type NoopGeoIP struct{}

func (NoopGeoIP) Lookup(ip string) (string, bool) { return "", false }
