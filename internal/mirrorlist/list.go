package mirrorlist

import (
	"strings"

	"github.com/mirrorkit/librepo/internal/metalink"
	"github.com/mirrorkit/librepo/internal/urlkit"
)

const defaultPreference = 100

// List is an ordered, insertion-order sequence of Mirror entries. The zero
// value is an empty, ready-to-use list.
//
// All builder methods mutate the receiver and return it, so calls chain:
//
//	var l mirrorlist.List
//	l.AppendURL("http://primary", nil).AppendFlat(extraURLs, nil)
//
// None of them remove entries — deduplication, where it happens at all,
// is the cross-handle sorter's job (fastestmirror.SortLists), not the
// builder's.
type List struct {
	Mirrors []Mirror
}

// AppendURL appends url as a single mirror with preference 100. A nil or
// empty url is a silent no-op.
func (l *List) AppendURL(url string, vars map[string]string) *List {
	l.appendOne(url, vars, defaultPreference)
	return l
}

// AppendFlat appends every URL in urls, in order, exactly as AppendURL
// would. Empty URLs in urls are skipped.
func (l *List) AppendFlat(urls []string, vars map[string]string) *List {
	for _, u := range urls {
		l.appendOne(u, vars, defaultPreference)
	}
	return l
}

// AppendMetalink appends one mirror per URL entry in ml, in document
// order, carrying over each entry's preference verbatim. When suffix is
// non-empty and a URL ends with it, exactly that trailing occurrence is
// stripped before the URL is recorded — this is how "…/repodata/repomd.xml"
// Metalink entries become base repository URLs.
func (l *List) AppendMetalink(ml *metalink.Metalink, suffix string, vars map[string]string) *List {
	if ml == nil {
		return l
	}
	for _, u := range ml.URLs {
		url := u.URL
		if url == "" {
			continue
		}
		if suffix != "" && strings.HasSuffix(url, suffix) {
			url = url[:len(url)-len(suffix)]
		}
		l.appendOne(url, vars, u.Preference)
	}
	return l
}

// AppendList deep-copies every entry of other into l, skipping entries
// with an empty URL. Preference and Protocol are copied verbatim — no
// re-substitution, no re-classification — and the copy's Fails counter
// resets to 0, since fail history belongs to the list it was observed on.
func (l *List) AppendList(other *List) *List {
	if other == nil {
		return l
	}
	for _, m := range other.Mirrors {
		if m.URL == "" {
			continue
		}
		l.Mirrors = append(l.Mirrors, Mirror{
			URL:        m.URL,
			Protocol:   m.Protocol,
			Preference: m.Preference,
			Fails:      0,
		})
	}
	return l
}

// Reset drops every entry, leaving l empty and ready for reuse. It exists
// as the Go analogue of the original API's explicit "free" operation.
func (l *List) Reset() *List {
	l.Mirrors = nil
	return l
}

// Len returns the number of mirrors currently in the list.
func (l *List) Len() int {
	return len(l.Mirrors)
}

func (l *List) appendOne(url string, vars map[string]string, preference int) {
	if url == "" {
		return
	}
	url = urlkit.Substitute(url, vars)
	l.Mirrors = append(l.Mirrors, Mirror{
		URL:        url,
		Protocol:   urlkit.Classify(url),
		Preference: preference,
	})
}
