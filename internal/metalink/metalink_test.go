package metalink

import (
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<metalink version="3.0" xmlns="http://www.metalinker.org/">
  <files>
    <file name="repomd.xml">
      <timestamp>1700000000</timestamp>
      <size>4096</size>
      <verification>
        <hash type="sha256">abcdef0123456789</hash>
      </verification>
      <resources>
        <url protocol="http" type="http" location="US" preference="100">http://foo/repodata/repomd.xml</url>
        <url protocol="ftp" type="ftp" location="CZ" preference="95">ftp://bar/repodata/repomd.xml</url>
        <url protocol="http" type="http" location="DE"></url>
        <url protocol="http" type="http" location="FR" preference="not-a-number">http://broken/repodata/repomd.xml</url>
      </resources>
    </file>
  </files>
</metalink>`

func TestParse(t *testing.T) {
	t.Parallel()

	ml, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if ml.Filename != "repomd.xml" {
		t.Errorf("Filename = %q, want %q", ml.Filename, "repomd.xml")
	}
	if ml.Timestamp != 1700000000 {
		t.Errorf("Timestamp = %d, want 1700000000", ml.Timestamp)
	}
	if len(ml.Hashes) != 1 || ml.Hashes[0].Type != "sha256" {
		t.Fatalf("Hashes = %+v, want one sha256 entry", ml.Hashes)
	}

	if len(ml.URLs) != 4 {
		t.Fatalf("len(URLs) = %d, want 4", len(ml.URLs))
	}

	want := []URL{
		{Protocol: "http", Type: "http", Location: "US", Preference: 100, URL: "http://foo/repodata/repomd.xml"},
		{Protocol: "ftp", Type: "ftp", Location: "CZ", Preference: 95, URL: "ftp://bar/repodata/repomd.xml"},
		{Protocol: "http", Type: "http", Location: "DE", Preference: 0, URL: ""},
		{Protocol: "http", Type: "http", Location: "FR", Preference: 0, URL: "http://broken/repodata/repomd.xml"},
	}
	for i, w := range want {
		if ml.URLs[i] != w {
			t.Errorf("URLs[%d] = %+v, want %+v", i, ml.URLs[i], w)
		}
	}
}

func TestParseEmptyDocument(t *testing.T) {
	t.Parallel()

	ml, err := Parse(strings.NewReader(`<metalink></metalink>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ml.URLs) != 0 {
		t.Errorf("URLs = %+v, want empty", ml.URLs)
	}
}

func TestParseMalformedXML(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(`<metalink><files>`))
	if err == nil {
		t.Fatal("Parse() error = nil, want non-nil for truncated XML")
	}
}
