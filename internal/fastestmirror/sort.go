package fastestmirror

import (
	"context"

	"github.com/mirrorkit/librepo/internal/mirrorlist"
	"github.com/mirrorkit/librepo/internal/urlkit"
)

// SortLists reorders every list in lists by measured mirror speed, using a
// single probe pass shared across all of them: each distinct host is timed
// once regardless of how many lists or entries reference it.
//
// Unlike the original C implementation's lr_fastestmirror_sort_internalmirrorlists,
// which reorders each GSList in place by splicing nodes out of the list it
// is simultaneously walking, SortLists builds a brand-new Mirrors slice per
// list and only swaps it in once that list's ordering is fully computed.
// Mutating a slice while iterating it is exactly the kind of aliasing bug
// Go's slice semantics make easy to introduce and hard to see in review;
// building fresh avoids it entirely.
//
// SortLists has all-or-nothing failure semantics: if the shared probe
// fails for any reason (a cancelled ctx, an invalid ProbeConfig), every
// list in lists is left completely untouched, not partially reordered.
func SortLists(ctx context.Context, proto ProbeConfig, lists ...*mirrorlist.List) error {
	hosts := distinctHosts(lists)
	if len(hosts) == 0 {
		return nil
	}

	orderedHosts, err := Probe(ctx, proto, hosts)
	if err != nil {
		return err
	}

	for _, l := range lists {
		reorder(l, orderedHosts)
	}
	return nil
}

// distinctHosts collects the unique host-only forms (scheme://host[:port])
// across every mirror in lists, in first-seen order. Two mirrors that
// share a host are probed exactly once between them.
func distinctHosts(lists []*mirrorlist.List) []string {
	seen := make(map[string]struct{})
	var hosts []string
	for _, l := range lists {
		if l == nil {
			continue
		}
		for _, m := range l.Mirrors {
			h := urlkit.HostOnly(m.URL)
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// reorder rebuilds l.Mirrors in orderedHosts order, picking only the
// first not-yet-placed mirror for each host. Any further mirrors sharing
// an already-placed host are "remaining occurrences": they are appended
// after every ranked entry, in their original relative order, exactly as
// lr_fastestmirror_sort_internalmirrorlists does — a host's second and
// later mirrors never jump the queue to sit next to its first.
func reorder(l *mirrorlist.List, orderedHosts []string) {
	if l == nil || len(l.Mirrors) == 0 {
		return
	}

	placed := make([]bool, len(l.Mirrors))
	fresh := make([]mirrorlist.Mirror, 0, len(l.Mirrors))

	for _, host := range orderedHosts {
		for i, m := range l.Mirrors {
			if placed[i] {
				continue
			}
			if urlkit.HostOnly(m.URL) == host {
				fresh = append(fresh, m)
				placed[i] = true
				break
			}
		}
	}

	for i, m := range l.Mirrors {
		if !placed[i] {
			fresh = append(fresh, m)
		}
	}

	l.Mirrors = fresh
}
