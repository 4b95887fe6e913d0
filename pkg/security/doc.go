/*
Package security provides outbound transport security for Warren.

Warren never terminates client TLS — HTTPS clients reach it via CONNECT and
the TLS handshake happens between the client and the upstream proxy, not at
Warren's listener. What security does own is the TLS posture Warren itself
presents when it, as a client, probes an HTTPS judge or negotiates a TLS
upstream:

	cfg := securitytls.FromSecurityConfig(appCfg.Security)
	tlsConfig, err := cfg.ToTLSConfig()
	if err != nil {
		log.Fatal(err)
	}

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}}

See the tls subpackage for the full Config type and its defaults.
*/
package security
