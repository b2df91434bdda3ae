// Package fastestmirror measures TCP/TLS connect latency to a set of
// mirror URLs and produces a stable ordering by that latency, bounded to a
// fixed 2-second wall-clock window.
//
// The concurrency shape — one goroutine per item under an errgroup-derived
// context, each writing its own slot of a preallocated result slice — is
// grounded on the teacher's HTTPClient.downloadFiles/reuseOrDownload/
// recvResult pattern (internal/mirror/http_client.go in the teacher repo),
// repurposed here from downloading files to timing connects.
package fastestmirror

import (
	"context"
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mirrorkit/librepo/internal/urlkit"
)

// measurementWindow bounds every Probe call: mirror ranking must never
// stall a caller more than this long, regardless of how many mirrors are
// slow or unreachable.
const measurementWindow = 2 * time.Second

// defaultPorts fills in a destination port when a mirror URL's authority
// doesn't name one, mirroring what a real client would connect to for
// each protocol.
var defaultPorts = map[urlkit.Protocol]string{
	urlkit.HTTP:  "80",
	urlkit.FTP:   "21",
	urlkit.RSYNC: "873",
}

// ProbeConfig carries the network configuration a Probe call must inherit
// from the caller's prototype connection rather than invent fresh:
// interface binding, DNS, and timeouts ride along on Dialer (its
// LocalAddr, Resolver, and Timeout fields), proxying on Proxy, and TLS
// settings on TLSConfig. Probe duplicates these per connection attempt — it never
// shares or mutates the prototype, so concurrent probes never observe
// each other's state.
type ProbeConfig struct {
	// Dialer is cloned (by value) for every connection attempt. Its
	// Timeout, LocalAddr, and Resolver fields all apply to the probe.
	Dialer *net.Dialer
	// TLSConfig is cloned for every https target. A nil TLSConfig means
	// the probe uses Go's default TLS settings for https connects.
	TLSConfig *tls.Config
	// Proxy, when non-nil, is consulted for every target URL exactly as
	// an http.Transport.Proxy would be. A nil Proxy means direct
	// connections only.
	Proxy func(*url.URL) (*url.URL, error)
}

// DefaultProbeConfig returns a ProbeConfig with a conservative dial
// timeout and no proxy or custom TLS settings. It is a plain constructor,
// not a package-level mutable default — there is no hidden process-wide
// connection template.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Dialer: &net.Dialer{Timeout: measurementWindow},
	}
}

// validate reports InvalidInput if proto is unusable.
func (proto ProbeConfig) validate() error {
	if proto.Dialer == nil {
		return errors.New("fastestmirror: ProbeConfig.Dialer must not be nil")
	}
	return nil
}

// probeResult is one URL's outcome for the duration of a single Probe call.
type probeResult struct {
	url  string
	time float64 // seconds; math.Inf(1) means "no valid measurement"
}

// Probe measures the TCP (and, for https, TLS) connect time to every URL
// in urls and returns them sorted ascending by that time. Ties preserve
// input order. The returned slice is a permutation of urls: no URL is
// added or dropped, however it measured.
//
// An empty urls is a successful no-op. A probe that cannot even begin
// (invalid ProbeConfig) returns an InvalidInput error synchronously,
// without starting any goroutine.
//
// A per-mirror dial/handshake failure, or Probe's own 2-second
// measurement window expiring, never fails the call: that mirror is
// simply recorded as +Inf and sorts last. Only cancellation of ctx
// itself — the caller's own signal, distinct from Probe's internal
// deadline — aborts the call: Probe returns a TransportDriverError
// wrapping ctx.Err(), every opened connection is still closed, and the
// caller's mirror lists (via SortLists) are left untouched.
//
// Probe never issues an application-level request: every connection is
// connect-only, and every connection opened is closed before Probe
// returns, on every exit path.
func Probe(ctx context.Context, proto ProbeConfig, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	if err := proto.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fastestmirror: probe aborted before starting")
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, measurementWindow)
	defer cancel()

	g, gctx := errgroup.WithContext(deadlineCtx)
	results := make([]probeResult, len(urls))

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i] = probeResult{url: u, time: measureOne(gctx, proto, u)}
			return nil
		})
	}

	// g.Wait's own error is always nil: every per-URL goroutine above
	// absorbs its failure into +Inf rather than returning one. The real
	// abort signal is ctx itself (the caller's context, not the
	// synthetic deadlineCtx derived from it) having been cancelled or
	// expired out from under the probe.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "fastestmirror: probe aborted: caller context done")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].time < results[j].time
	})

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.url
	}
	return out, nil
}

// measureOne times a single connect attempt. It never returns an error:
// any failure — dial error, deadline expiry, unparsable URL — is encoded
// as +Inf so the caller sorts that mirror last, per the probe's
// per-mirror failure model.
func measureOne(ctx context.Context, proto ProbeConfig, rawURL string) float64 {
	protocol := urlkit.Classify(rawURL)
	if protocol == urlkit.FILE {
		// Local sources are considered the best mirrors: no network
		// round trip can beat reading from disk.
		return 0.0
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return math.Inf(1)
	}

	addr, err := dialAddress(u, protocol)
	if err != nil {
		return math.Inf(1)
	}

	dialer := *proto.Dialer // duplicate: never share the prototype across connects
	if proto.Proxy != nil {
		if proxyURL, perr := proto.Proxy(u); perr == nil && proxyURL != nil {
			if proxyAddr, aerr := dialAddress(proxyURL, urlkit.Classify(proxyURL.String())); aerr == nil {
				addr = proxyAddr
			}
		}
	}

	start := time.Now()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return math.Inf(1)
	}
	defer conn.Close()

	if u.Scheme == "https" {
		tlsCfg := cloneTLSConfig(proto.TLSConfig)
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = u.Hostname()
		}
		tlsConn := tls.Client(conn, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return math.Inf(1)
		}
	}

	elapsed := time.Since(start).Seconds()
	if elapsed == 0 {
		// A reported-zero connect time is indistinguishable from a
		// broken clock or a dialer that short-circuited without really
		// connecting; treat it as "no valid measurement".
		return math.Inf(1)
	}
	return elapsed
}

func cloneTLSConfig(cfg *tls.Config) *tls.Config {
	if cfg == nil {
		return &tls.Config{}
	}
	return cfg.Clone()
}

// dialAddress turns a mirror URL into a "host:port" dial target,
// defaulting the port by protocol when the URL's authority doesn't name
// one.
func dialAddress(u *url.URL, protocol urlkit.Protocol) (string, error) {
	host := u.Hostname()
	if host == "" {
		return "", errors.New("fastestmirror: URL has no host")
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else if p, ok := defaultPorts[protocol]; ok {
			port = p
		} else {
			port = "80"
		}
	}
	return net.JoinHostPort(host, port), nil
}
