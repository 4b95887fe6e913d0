/*
Package tls provides the outbound TLS posture Warren uses when probing
HTTPS judges and negotiating HTTPS/CONNECT upstreams.

Warren never terminates client TLS — it is a plaintext-to-the-client proxy
gateway (spec Non-goals). This package only governs the TLS Warren itself
initiates as a client: dialing a judge's HTTPS endpoint, or completing a
CONNECT handshake through an HTTPS upstream proxy.

# Dialer Configuration

	cfg := tls.FromSecurityConfig(securityConfig)
	tlsConfig, err := cfg.ToTLSConfig()
	if err != nil {
	    log.Fatal(err)
	}

	transport := &http.Transport{TLSClientConfig: tlsConfig}

# Certificate Inspection

Judge and upstream certificates can be inspected and validated for
expiry, independent of the dialer config:

	info := tls.ExtractCertificateInfo(cert)
	days, warning := tls.CheckCertificateExpiration(cert)
	if warning != "" {
	    log.Warn("judge certificate nearing expiry", "judge", judgeURL, "warning", warning)
	}
*/
package tls
