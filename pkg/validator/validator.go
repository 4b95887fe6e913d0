package validator

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"sync"
	"time"

	"warren-hq/warren/pkg/external"
	"warren-hq/warren/pkg/judge"
	"warren-hq/warren/pkg/negotiate"
	"warren-hq/warren/pkg/pool"
)

// fixedConnectTargets are the destinations probed for the CONNECT:80 and
// CONNECT:25 protocol checks (spec §4.2): reachability only, no echo.
var fixedConnectTargets = map[pool.Protocol]negotiate.Target{
	pool.ProtoConnect80: {Host: "example.com", Port: 80},
	pool.ProtoConnect25: {Host: "smtp.example.com", Port: 25},
}

// Validator probes candidates through each configured protocol using the
// judge registry as the thing being echoed against.
type Validator struct {
	cfg    Config
	judges *judge.Registry
	geo    external.GeoIP
	dnsbl  external.DNSBL

	mu       sync.Mutex
	publicIP string
}

// New builds a Validator. geo/dnsbl may be nil to disable those checks
// (treated as external.NoopGeoIP / external.NoopDNSBL).
func New(cfg Config, judges *judge.Registry, geo external.GeoIP, dnsbl external.DNSBL) *Validator {
	if geo == nil {
		geo = external.NoopGeoIP{}
	}
	if dnsbl == nil {
		dnsbl = external.NoopDNSBL{}
	}
	return &Validator{cfg: defaultConfig(cfg), judges: judges, geo: geo, dnsbl: dnsbl}
}

// CapturePublicIP records the validator's own public IP once at startup, by
// echoing against the best HTTP judge directly (spec §4.2 "Anonymity
// derivation").
func (v *Validator) CapturePublicIP(ctx context.Context) error {
	best, ok := v.judges.Best(judge.SchemeHTTP)
	if !ok {
		return ErrAllProtocolsFailed
	}
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", best.Host)
	if err != nil {
		return err
	}
	defer conn.Close()

	echo, err := echoThroughConn(conn, best.URL, v.cfg.AttemptTimeout, false)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.publicIP = echo.PerceivedIP
	v.mu.Unlock()
	return nil
}

// ValidateBatch runs Validate over every candidate with bounded concurrency,
// mirroring the teacher's semaphore-gated fan-out pattern.
func (v *Validator) ValidateBatch(ctx context.Context, candidates []Candidate, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = 5
	}
	results := make([]Result, len(candidates))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			res, _ := v.Validate(ctx, c)
			results[i] = res
		}(i, c)
	}
	wg.Wait()
	return results
}

// Validate attempts each configured protocol against candidate, up to
// MaxTries per protocol, and applies the admission rule (spec §4.2).
func (v *Validator) Validate(ctx context.Context, c Candidate) (Result, error) {
	res := Result{Host: c.Host, Port: c.Port}

	for _, proto := range v.cfg.Protocols {
		elapsedMS, echo, ok := v.probeWithRetries(ctx, c, proto)
		if !ok {
			continue
		}
		res.Protocols = append(res.Protocols, proto)
		res.Runtimes = append(res.Runtimes, elapsedMS)
		if echo != nil {
			res.Anonymity = v.classifyAnonymity(*echo)
		}
	}

	if len(res.Protocols) == 0 {
		return res, ErrAllProtocolsFailed
	}

	if country, ok := v.geo.Lookup(c.Host); ok {
		res.Country = country
	} else {
		res.Country = "--"
	}

	if v.dnsbl.IsMalicious(c.Host) {
		return res, ErrBlacklisted
	}

	res.Admitted = admissionRule(res.Runtimes, v.cfg.MaxAvgResponseTimeMS, v.cfg.MinSamplesForFiltering)
	return res, nil
}

// admissionRule implements spec §4.2: admitted iff at least one protocol
// succeeded (guaranteed by the caller reaching this point) AND the mean of
// runtimes is within threshold, OR there are too few samples to judge.
func admissionRule(runtimes []int64, maxAvgRTMS int64, minSamples int) bool {
	if len(runtimes) < minSamples {
		return true
	}
	var sum int64
	for _, v := range runtimes {
		sum += v
	}
	avg := sum / int64(len(runtimes))
	return avg <= maxAvgRTMS
}

// classifyAnonymity derives the record's anonymity level from an echo
// result, per spec §4.2 and SPEC_FULL §12.5's body-text scan supplement.
func (v *Validator) classifyAnonymity(echo judge.EchoResult) pool.Anonymity {
	v.mu.Lock()
	myIP := v.publicIP
	v.mu.Unlock()

	sawMyIP := echo.PerceivedIP == myIP || echo.BodyContainsIP(myIP)
	if myIP != "" && sawMyIP {
		return pool.AnonymityTransparent
	}
	if echo.HasProxyIndicator() {
		return pool.AnonymityAnonymous
	}
	return pool.AnonymityHigh
}

// probeWithRetries attempts proto up to MaxTries times, returning the
// elapsed milliseconds and echo of the first success.
func (v *Validator) probeWithRetries(ctx context.Context, c Candidate, proto pool.Protocol) (int64, *judge.EchoResult, bool) {
	for attempt := 0; attempt < v.cfg.MaxTries; attempt++ {
		probeCtx, cancel := context.WithTimeout(ctx, v.cfg.AttemptTimeout)
		start := time.Now()
		echo, err := v.probeOnce(probeCtx, c, proto)
		elapsed := time.Since(start).Milliseconds()
		cancel()
		if err == nil {
			return elapsed, echo, true
		}
	}
	return 0, nil, false
}

func (v *Validator) probeOnce(ctx context.Context, c Candidate, proto pool.Protocol) (*judge.EchoResult, error) {
	switch proto {
	case pool.ProtoHTTP:
		return v.probeHTTP(ctx, c)
	case pool.ProtoHTTPS:
		return v.probeHTTPS(ctx, c)
	case pool.ProtoSOCKS4:
		return v.probeSOCKS4(ctx, c)
	case pool.ProtoSOCKS5:
		return v.probeSOCKS5(ctx, c)
	case pool.ProtoConnect80, pool.ProtoConnect25:
		return nil, v.probeFixedConnect(ctx, c, proto)
	default:
		return nil, ErrAllProtocolsFailed
	}
}

func (v *Validator) dialCandidate(ctx context.Context, c Candidate) (net.Conn, error) {
	dialer := net.Dialer{}
	return dialer.DialContext(ctx, "tcp", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}

// probeHTTP: open TCP to candidate, send a GET for the best HTTP judge with
// the candidate acting as an HTTP proxy (spec §4.2).
func (v *Validator) probeHTTP(ctx context.Context, c Candidate) (*judge.EchoResult, error) {
	best, ok := v.judges.Best(judge.SchemeHTTP)
	if !ok {
		return nil, ErrAllProtocolsFailed
	}
	conn, err := v.dialCandidate(ctx, c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	echo, err := echoThroughConn(conn, best.URL, v.cfg.AttemptTimeout, true)
	if err != nil {
		v.judges.Report(best, judge.Failure, 0)
		return nil, err
	}
	return &echo, nil
}

// probeHTTPS: CONNECT to judge:443 through candidate, then TLS, then echo.
func (v *Validator) probeHTTPS(ctx context.Context, c Candidate) (*judge.EchoResult, error) {
	best, ok := v.judges.Best(judge.SchemeHTTPS)
	if !ok {
		return nil, ErrAllProtocolsFailed
	}
	target, err := hostPortTarget(best.Host, 443)
	if err != nil {
		return nil, err
	}
	conn, err := v.dialCandidate(ctx, c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := (negotiate.ConnectNegotiator{}).Negotiate(conn, target, v.cfg.AttemptTimeout); err != nil {
		return nil, err
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: target.Host})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	echo, err := echoThroughConn(tlsConn, best.URL, v.cfg.AttemptTimeout, false)
	if err != nil {
		return nil, err
	}
	return &echo, nil
}

func (v *Validator) probeSOCKS4(ctx context.Context, c Candidate) (*judge.EchoResult, error) {
	best, ok := v.judges.Best(judge.SchemeHTTP)
	if !ok {
		return nil, ErrAllProtocolsFailed
	}
	target, err := hostPortTarget(best.Host, 80)
	if err != nil {
		return nil, err
	}
	conn, err := v.dialCandidate(ctx, c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if err := (negotiate.SOCKS4Negotiator{}).Negotiate(conn, target, v.cfg.AttemptTimeout); err != nil {
		return nil, err
	}
	echo, err := echoThroughConn(conn, best.URL, v.cfg.AttemptTimeout, false)
	if err != nil {
		return nil, err
	}
	return &echo, nil
}

func (v *Validator) probeSOCKS5(ctx context.Context, c Candidate) (*judge.EchoResult, error) {
	best, ok := v.judges.Best(judge.SchemeHTTP)
	if !ok {
		return nil, ErrAllProtocolsFailed
	}
	target, err := hostPortTarget(best.Host, 80)
	if err != nil {
		return nil, err
	}
	conn, err := v.dialCandidate(ctx, c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if err := (negotiate.SOCKS5Negotiator{}).Negotiate(conn, target, v.cfg.AttemptTimeout); err != nil {
		return nil, err
	}
	echo, err := echoThroughConn(conn, best.URL, v.cfg.AttemptTimeout, false)
	if err != nil {
		return nil, err
	}
	return &echo, nil
}

func (v *Validator) probeFixedConnect(ctx context.Context, c Candidate, proto pool.Protocol) error {
	target := fixedConnectTargets[proto]
	conn, err := v.dialCandidate(ctx, c)
	if err != nil {
		return err
	}
	defer conn.Close()
	return (negotiate.ConnectNegotiator{}).Negotiate(conn, target, v.cfg.AttemptTimeout)
}

func hostPortTarget(hostport string, defaultPort int) (negotiate.Target, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return negotiate.Target{Host: hostport, Port: defaultPort}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return negotiate.Target{}, err
	}
	return negotiate.Target{Host: host, Port: port}, nil
}
