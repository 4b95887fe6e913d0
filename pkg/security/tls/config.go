package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"warren-hq/warren/pkg/config"
)

// Config builds the outbound *tls.Config Warren presents when dialing an
// HTTPS judge or negotiating an HTTPS/CONNECT upstream. Warren never
// terminates client TLS — there is no certificate/key pair here, only the
// posture the dialer takes toward servers it connects to.
type Config struct {
	// MinVersion is the minimum TLS version to accept from the remote
	// end ("1.2" or "1.3"). Default: "1.2".
	MinVersion string

	// InsecureSkipVerify disables certificate verification. Only meant
	// for judges/proxies with self-signed certificates during local
	// testing.
	InsecureSkipVerify bool

	// RootCAFile, if set, is an additional PEM-encoded CA bundle trusted
	// on top of the system root pool. Useful for judges or upstreams
	// behind an internal CA.
	RootCAFile string
}

// FromSecurityConfig builds a dialer Config from the gateway's security
// configuration.
func FromSecurityConfig(cfg config.SecurityConfig) *Config {
	return &Config{
		MinVersion:         cfg.MinTLSVersion,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
}

// ToTLSConfig converts Config to a crypto/tls.Config suitable for use as
// http.Transport.TLSClientConfig or as the config passed to tls.Dial when
// probing a judge or negotiating a CONNECT upstream.
func (c *Config) ToTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         c.parseTLSVersion(),
		InsecureSkipVerify: c.InsecureSkipVerify,
	}

	if c.RootCAFile != "" {
		pem, err := os.ReadFile(c.RootCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read root CA file: %w", err)
		}

		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse root CA file: %s", c.RootCAFile)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

// parseTLSVersion converts MinVersion to a tls.Version constant.
// TLS 1.0 and 1.1 are not supported due to security concerns.
func (c *Config) parseTLSVersion() uint16 {
	switch c.MinVersion {
	case "1.3":
		return tls.VersionTLS13
	case "1.2", "":
		return tls.VersionTLS12
	default:
		return tls.VersionTLS12
	}
}
