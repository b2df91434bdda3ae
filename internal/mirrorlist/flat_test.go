package mirrorlist

import (
	"strings"
	"testing"
)

func TestParseFlat(t *testing.T) {
	t.Parallel()

	const input = `
# comment line
http://mirror1.example.com/repo/

   http://mirror2.example.com/repo/
	# indented comment
ftp://mirror3.example.com/repo/
`

	urls, err := ParseFlat(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseFlat() error = %v", err)
	}

	want := []string{
		"http://mirror1.example.com/repo/",
		"http://mirror2.example.com/repo/",
		"ftp://mirror3.example.com/repo/",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i, w := range want {
		if urls[i] != w {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], w)
		}
	}
}

func TestParseFlatEmptyInput(t *testing.T) {
	t.Parallel()

	urls, err := ParseFlat(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseFlat() error = %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("urls = %v, want empty", urls)
	}
}
