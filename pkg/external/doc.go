// Package external declares the narrow, named interfaces the core consumes
// from collaborators that are explicitly out of scope: the proxy-source
// grabber, the GeoIP lookup, and the DNSBL blacklist checker. Besides the
// contracts the rest of the module programs against, it ships only minimal
// stand-ins (FileGrabber, ListCountDNSBL, NoopDNSBL, NoopGeoIP); fuller
// implementations are supplied by the operator.
package external
