// Package mirrorlist assembles ordered lists of candidate mirrors from the
// four source kinds librepo supports: a single raw URL, a flat mirrorlist
// file, a parsed Metalink document, or another already-built list.
package mirrorlist

import "github.com/mirrorkit/librepo/internal/urlkit"

// Mirror is one normalised mirror-list entry.
type Mirror struct {
	// URL is non-empty, variable-substituted, and suffix-stripped.
	URL string
	// Protocol is derived from URL at append time.
	Protocol urlkit.Protocol
	// Preference is 1-100, higher is better. Defaults to 100 unless the
	// source (Metalink) supplies its own value.
	Preference int
	// Fails is owned for writing by a downloader; this package only ever
	// initialises it to zero, including on the copies AppendList makes.
	Fails int
}
