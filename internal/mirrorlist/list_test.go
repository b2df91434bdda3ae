package mirrorlist

import (
	"testing"

	"github.com/mirrorkit/librepo/internal/metalink"
	"github.com/mirrorkit/librepo/internal/urlkit"
)

// S1 — builder with flat list + defaults.
func TestAppendFlatDropsEmptyURLsAndDefaultsPreference(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendFlat([]string{"http://foo", "", "ftp://bar"}, nil)

	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	want := []Mirror{
		{URL: "http://foo", Protocol: urlkit.HTTP, Preference: 100},
		{URL: "ftp://bar", Protocol: urlkit.FTP, Preference: 100},
	}
	for i, w := range want {
		if l.Mirrors[i] != w {
			t.Errorf("Mirrors[%d] = %+v, want %+v", i, l.Mirrors[i], w)
		}
	}
}

// S2 — builder with Metalink and suffix.
func TestAppendMetalinkStripsSuffixAndKeepsPreference(t *testing.T) {
	t.Parallel()

	ml := &metalink.Metalink{
		URLs: []metalink.URL{
			{URL: "http://foo/repodata/repomd.xml", Preference: 100},
			{URL: "", Preference: 50},
			{URL: "ftp://bar/repodata/repomd.xml", Preference: 95},
		},
	}

	var l List
	l.AppendMetalink(ml, "/repodata/repomd.xml", nil)

	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
	want := []Mirror{
		{URL: "http://foo", Protocol: urlkit.HTTP, Preference: 100},
		{URL: "ftp://bar", Protocol: urlkit.FTP, Preference: 95},
	}
	for i, w := range want {
		if l.Mirrors[i] != w {
			t.Errorf("Mirrors[%d] = %+v, want %+v", i, l.Mirrors[i], w)
		}
	}
}

// S3 — builder append to existing.
func TestAppendMetalinkOntoExistingList(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendURL("http://abc", nil)

	ml := &metalink.Metalink{
		URLs: []metalink.URL{
			{URL: "http://foo/repodata/repomd.xml", Preference: 100},
			{URL: "", Preference: 50},
			{URL: "ftp://bar/repodata/repomd.xml", Preference: 95},
		},
	}
	l.AppendMetalink(ml, "/repodata/repomd.xml", nil)

	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}
	wantURLs := []string{"http://abc", "http://foo", "ftp://bar"}
	for i, want := range wantURLs {
		if l.Mirrors[i].URL != want {
			t.Errorf("Mirrors[%d].URL = %q, want %q", i, l.Mirrors[i].URL, want)
		}
	}
}

// S4 — variable substitution.
func TestAppendURLSubstitutesVariables(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendURL("http://xyz/$arch/", map[string]string{"arch": "i386"})

	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
	if l.Mirrors[0].URL != "http://xyz/i386/" {
		t.Errorf("URL = %q, want %q", l.Mirrors[0].URL, "http://xyz/i386/")
	}
}

func TestAppendURLEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendURL("", nil)
	if l.Len() != 0 {
		t.Errorf("len = %d, want 0", l.Len())
	}
}

func TestAppendListCopiesVerbatimAndResetsFails(t *testing.T) {
	t.Parallel()

	var src List
	src.AppendURL("http://abc", nil)
	src.Mirrors[0].Fails = 3

	var dst List
	dst.AppendList(&src)

	if dst.Len() != 1 {
		t.Fatalf("len = %d, want 1", dst.Len())
	}
	if dst.Mirrors[0].Fails != 0 {
		t.Errorf("Fails = %d, want 0 (copy must not inherit fail history)", dst.Mirrors[0].Fails)
	}
	if dst.Mirrors[0].URL != "http://abc" || dst.Mirrors[0].Preference != 100 {
		t.Errorf("copy mismatch: %+v", dst.Mirrors[0])
	}

	// Mutating the source afterward must not affect the copy.
	src.Mirrors[0].URL = "http://mutated"
	if dst.Mirrors[0].URL != "http://abc" {
		t.Error("AppendList must deep-copy, not alias, entries")
	}
}

func TestAppendListSkipsEmptyURLs(t *testing.T) {
	t.Parallel()

	src := List{Mirrors: []Mirror{{URL: ""}, {URL: "http://foo", Preference: 50}}}

	var dst List
	dst.AppendList(&src)

	if dst.Len() != 1 || dst.Mirrors[0].URL != "http://foo" {
		t.Errorf("dst = %+v, want a single http://foo entry", dst.Mirrors)
	}
}

func TestOrderingIsConcatenationOfCalls(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendURL("http://one", nil).
		AppendFlat([]string{"http://two", "http://three"}, nil)

	var other List
	other.AppendURL("http://four", nil)
	l.AppendList(&other)

	want := []string{"http://one", "http://two", "http://three", "http://four"}
	if l.Len() != len(want) {
		t.Fatalf("len = %d, want %d", l.Len(), len(want))
	}
	for i, w := range want {
		if l.Mirrors[i].URL != w {
			t.Errorf("Mirrors[%d].URL = %q, want %q", i, l.Mirrors[i].URL, w)
		}
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	var l List
	l.AppendURL("http://foo", nil)
	l.Reset()
	if l.Len() != 0 {
		t.Errorf("len = %d, want 0 after Reset", l.Len())
	}
}
