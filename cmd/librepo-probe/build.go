package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mirrorkit/librepo/internal/cache"
	"github.com/mirrorkit/librepo/internal/config"
	"github.com/mirrorkit/librepo/internal/fastestmirror"
	"github.com/mirrorkit/librepo/internal/fetch"
	"github.com/mirrorkit/librepo/internal/lockfile"
	"github.com/mirrorkit/librepo/internal/metalink"
	"github.com/mirrorkit/librepo/internal/mirrorlist"
)

func fetchHTTPClient(tlsCfg *tls.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg
	return &http.Client{Transport: transport}
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	release, err := lockfile.Acquire(cfg.CacheDir)
	if err != nil {
		return errors.Wrap(err, "acquiring cache lock")
	}
	defer release()

	c, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}

	names := args
	if len(names) == 0 {
		for name := range cfg.Sources {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return errors.Wrap(err, "building TLS config")
	}

	httpClient := fetchHTTPClient(tlsCfg)
	fetcher := fetch.New(c, httpClient)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lists, err := buildLists(ctx, cfg, fetcher, names)
	if err != nil {
		return err
	}

	noProbe, _ := cmd.Flags().GetBool("no-probe")
	if !noProbe {
		proto := fastestmirror.DefaultProbeConfig()
		proto.TLSConfig = tlsCfg

		var all []*mirrorlist.List
		for _, name := range names {
			all = append(all, lists[name])
		}

		var bar *pb.ProgressBar
		if cfg.Log.ShouldShowProgress() {
			bar = pb.StartNew(len(all))
			defer bar.Finish()
		}

		if err := fastestmirror.SortLists(ctx, proto, all...); err != nil {
			return errors.Wrap(err, "ranking mirrors")
		}
		if bar != nil {
			bar.SetCurrent(int64(len(all)))
		}
	}

	for _, name := range names {
		fmt.Printf("# %s\n", name)
		for _, m := range lists[name].Mirrors {
			fmt.Printf("%s\n", m.URL)
		}
	}
	return nil
}

// buildLists fetches every named source concurrently and turns each into
// a mirrorlist.List, grounded on the teacher's errgroup-based concurrent
// download pattern in internal/mirror/http_client.go.
func buildLists(ctx context.Context, cfg *config.Config, fetcher *fetch.Fetcher, names []string) (map[string]*mirrorlist.List, error) {
	results := make(map[string]*mirrorlist.List, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		src, ok := cfg.Sources[name]
		if !ok {
			return nil, errors.Newf("unknown source %q", name)
		}
		g.Go(func() error {
			list, err := buildOne(gctx, fetcher, name, src)
			if err != nil {
				return errors.Wrapf(err, "source %q", name)
			}
			mu.Lock()
			results[name] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func buildOne(ctx context.Context, fetcher *fetch.Fetcher, name string, src *config.MirrorSource) (*mirrorlist.List, error) {
	var l mirrorlist.List

	switch src.Kind {
	case config.SourceRaw:
		l.AppendURL(src.URL, src.Vars)
		return &l, nil

	case config.SourceFlat:
		data, err := fetchOrFallback(ctx, fetcher, name, src)
		if err != nil {
			return nil, err
		}
		urls, err := mirrorlist.ParseFlat(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		l.AppendFlat(urls, src.Vars)
		return &l, nil

	case config.SourceMetalink:
		data, err := fetchOrFallback(ctx, fetcher, name, src)
		if err != nil {
			return nil, err
		}
		ml, err := metalink.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		l.AppendMetalink(ml, src.Suffix, src.Vars)
		return &l, nil

	default:
		return nil, errors.Newf("unsupported source kind %q", src.Kind)
	}
}

// fetchOrFallback fetches src over the network, falling back to the
// last cached copy (logging a warning) so a transient outage doesn't
// make a previously-working source disappear entirely.
func fetchOrFallback(ctx context.Context, fetcher *fetch.Fetcher, name string, src *config.MirrorSource) ([]byte, error) {
	data, err := fetcher.Fetch(ctx, name, src)
	if err == nil {
		return data, nil
	}

	cached, ok, cacheErr := fetcher.Cached(name)
	if cacheErr != nil || !ok {
		return nil, err
	}
	slog.Warn("using cached copy after fetch failure", "source", name, "error", err)
	return cached, nil
}
