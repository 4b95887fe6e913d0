package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"warren-hq/warren/pkg/cli"
	"warren-hq/warren/pkg/config"
	"warren-hq/warren/pkg/external"
	"warren-hq/warren/pkg/judge"
	"warren-hq/warren/pkg/pool"
	securitytls "warren-hq/warren/pkg/security/tls"
	"warren-hq/warren/pkg/telemetry/logging"
	"warren-hq/warren/pkg/validator"
)

// toValidatorCandidates adapts external.Candidate (the Grabber's output
// shape) to validator.Candidate (the Validator's input shape) — identical
// fields, distinct types, since the two packages have no reason to share a
// dependency on each other's candidate type.
func toValidatorCandidates(in []external.Candidate) []validator.Candidate {
	out := make([]validator.Candidate, len(in))
	for i, c := range in {
		out[i] = validator.Candidate{Host: c.Host, Port: c.Port}
	}
	return out
}

// loadConfig loads the configuration singleton from cfgFile and returns it.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return config.GetConfig(), nil
}

// newLogger builds the structured logger for cfg.Telemetry.Logging.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := logging.Config{
		Level:             cfg.Telemetry.Logging.Level,
		Format:            cfg.Telemetry.Logging.Format,
		AddSource:         cfg.Telemetry.Logging.AddSource,
		RedactCredentials: cfg.Telemetry.Logging.RedactCredentials,
		BufferSize:        cfg.Telemetry.Logging.BufferSize,
	}
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg)
}

// judgeProber builds the direct HTTP health probe a judge.Registry uses to
// rank its own configured judges (spec §4.1): a plain GET against the
// judge's own URL, success on any 2xx/3xx response.
func judgeProber(cfg *config.Config) judge.Prober {
	tlsConfig, _ := securitytls.FromSecurityConfig(cfg.Security).ToTLSConfig()
	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}
	return func(ctx context.Context, j *judge.Judge) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.URL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("judge %s returned %s", j.URL, resp.Status)
		}
		return nil
	}
}

// newJudgeRegistry builds and seeds a judge.Registry from cfg.Judges, then
// runs the initial probe round so Best() has data immediately.
func newJudgeRegistry(ctx context.Context, cfg *config.Config) (*judge.Registry, error) {
	probeTimeout := time.Duration(cfg.Judges.ProbeTimeoutSeconds) * time.Second
	registry := judge.NewRegistry(judgeProber(cfg), probeTimeout)

	for _, url := range cfg.Judges.URLs {
		if err := registry.Add(url); err != nil {
			return nil, fmt.Errorf("judge %q: %w", url, err)
		}
	}

	registry.Initialize(ctx)
	return registry, nil
}

// newValidator builds a Validator over registry, with DNSBL/GeoIP
// collaborators left as the spec's external no-op stand-ins unless an
// operator wires in real ones (out of scope per spec §1).
func newValidator(cfg *config.Config, registry *judge.Registry) *validator.Validator {
	protocols := make([]pool.Protocol, 0, len(cfg.Validator.Protocols))
	for _, p := range cfg.Validator.Protocols {
		protocols = append(protocols, pool.Protocol(p))
	}

	var dnsbl external.DNSBL = external.NoopDNSBL{}
	if cfg.DNSBL.Enabled {
		// No concrete list-lookup collaborator is configured in this
		// build; threshold semantics are wired (see
		// external.NewListCountDNSBL) but HitCount has no real backend
		// here, so malicious-IP gating stays a no-op until an operator
		// supplies one.
		dnsbl = external.NoopDNSBL{}
	}

	vcfg := validator.Config{
		MaxTries:               cfg.Validator.MaxTries,
		AttemptTimeout:         cfg.Validator.DefaultTimeout,
		MaxAvgResponseTimeMS:   cfg.Pool.MaxAvgResponseTimeMS,
		MinSamplesForFiltering: cfg.Pool.MinRequestsForFiltering,
		Protocols:              protocols,
	}
	return validator.New(vcfg, registry, external.NoopGeoIP{}, dnsbl)
}

// newPool builds a Pool from cfg.Pool.
func newPool(cfg *config.Config) *pool.Pool {
	return pool.New(pool.Config{
		MinSamplesForFiltering: cfg.Pool.MinRequestsForFiltering,
		MaxAvgResponseTimeMS:   cfg.Pool.MaxAvgResponseTimeMS,
		PerProxyConcurrency:    cfg.Pool.PerProxyConcurrency,
	})
}

// admit applies a validation Result to p, if it was admitted.
func admit(p *pool.Pool, r validator.Result) error {
	if !r.Admitted {
		return nil
	}
	key := pool.Key{Host: r.Host, Port: r.Port}
	return p.Admit(key, r.Protocols, r.Anonymity, r.Country, r.Runtimes)
}

// readCandidateFile parses "host:port" pairs, one per line, from path.
// Blank lines and lines starting with "#" are skipped. This is the stand-in
// file-backed source for grab/find/check; a real candidate source is an
// external collaborator reached only through external.Grabber (spec §1).
func readCandidateFile(path string) ([]external.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file %q: %w", path, err)
	}
	defer f.Close()

	var candidates []external.Candidate
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		host, portStr, err := net.SplitHostPort(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid host:port %q: %w", path, lineNo, line, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid port in %q: %w", path, lineNo, line, err)
		}
		candidates = append(candidates, external.Candidate{Host: host, Port: port})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate file %q: %w", path, err)
	}
	return candidates, nil
}

// drainGrabber pulls every candidate off g until exhaustion.
func drainGrabber(ctx context.Context, g external.Grabber) ([]external.Candidate, error) {
	var out []external.Candidate
	for {
		c, ok, err := g.Next(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, c)
	}
}
