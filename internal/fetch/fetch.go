// Package fetch retrieves a mirror source's raw bytes over HTTP(S) or
// from a local path, transparently decompressing a ".xz"-suffixed
// response and optionally verifying a detached PGP signature, then
// persists the result through internal/cache.
//
// The PGP verification call shape (pgp.Verify().VerificationKey(key).New(),
// then VerifyDetached, then checking SignatureError) is carried over from
// the teacher's internal/mirror/apt_parser.go verifyPGPSignature logic,
// reapplied here to arbitrary fetched files instead of APT Release files.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/cockroachdb/errors"
	"github.com/ulikunitz/xz"

	"github.com/mirrorkit/librepo/internal/cache"
	"github.com/mirrorkit/librepo/internal/config"
)

const fetchTimeout = 30 * time.Second

// Fetcher retrieves and caches mirror source payloads.
type Fetcher struct {
	client *http.Client
	cache  *cache.Cache
}

// New returns a Fetcher that caches retrieved bytes in c. A nil httpClient
// means http.DefaultClient is used.
func New(c *cache.Cache, httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{client: httpClient, cache: c}
}

// Fetch retrieves the bytes named by src, issuing an HTTP GET when src.URL
// starts with http:// or https:// and otherwise reading it as a local file
// path (a leading file:// is stripped first). A ".xz" URL is
// transparently decompressed. When src.PGPKeyPath is set, the raw
// (post-decompression) bytes must carry a valid detached ".asc" signature
// fetched from src.URL+".asc", or Fetch fails closed.
//
// On success the decompressed, verified bytes are written to the cache
// under name before being returned, so a later run can fall back to them
// with Cached.
func (f *Fetcher) Fetch(ctx context.Context, name string, src *config.MirrorSource) ([]byte, error) {
	raw, err := f.retrieve(ctx, src.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", src.URL)
	}

	data := raw
	if strings.HasSuffix(src.URL, ".xz") {
		data, err = decompressXZ(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decompressing %s", src.URL)
		}
	}

	if src.PGPKeyPath != "" {
		if err := f.verify(ctx, data, src); err != nil {
			return nil, errors.Wrapf(err, "verifying signature for %s", src.URL)
		}
	}

	if f.cache != nil {
		if err := f.cache.Put(name, data); err != nil {
			return nil, errors.Wrap(err, "caching fetched data")
		}
	}
	return data, nil
}

// Cached returns the last successfully fetched and verified bytes for
// name, without touching the network.
func (f *Fetcher) Cached(name string) ([]byte, bool, error) {
	if f.cache == nil {
		return nil, false, nil
	}
	return f.cache.Get(name)
}

func (f *Fetcher) retrieve(ctx context.Context, rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		path := strings.TrimPrefix(rawURL, "file://")
		return os.ReadFile(path) //nolint:gosec // operator-supplied config path
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func decompressXZ(compressed []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (f *Fetcher) verify(ctx context.Context, data []byte, src *config.MirrorSource) error {
	keyBytes, err := os.ReadFile(src.PGPKeyPath) //nolint:gosec // validated absolute path, config.MirrorSource.Check
	if err != nil {
		return errors.Wrap(err, "reading pgp key file")
	}
	publicKey, err := crypto.NewKeyFromArmored(string(keyBytes))
	if err != nil {
		return errors.Wrap(err, "parsing pgp key")
	}

	sigBytes, err := f.retrieve(ctx, src.URL+".asc")
	if err != nil {
		return errors.Wrap(err, "fetching detached signature")
	}

	pgp := crypto.PGP()
	verifier, err := pgp.Verify().VerificationKey(publicKey).New()
	if err != nil {
		return errors.Wrap(err, "creating verifier")
	}
	result, err := verifier.VerifyDetached(data, sigBytes, crypto.Armor)
	if err != nil {
		return errors.Wrap(err, "verifying detached signature")
	}
	if sigErr := result.SignatureError(); sigErr != nil {
		return errors.Wrap(sigErr, "signature invalid")
	}
	return nil
}
