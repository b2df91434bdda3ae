package mirrorlist

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseFlat reads a flat mirrorlist file: UTF-8 text, one URL per
// non-empty, non-comment line. A line whose first non-whitespace
// character is '#' is a comment. Leading and trailing whitespace is
// stripped from every line; empty lines are ignored.
//
// This is intentionally minimal — the distilled spec this core is built
// from treats flat-mirrorlist parsing as "trivial line-splitting ... not
// elaborated". It exists so AppendFlat has something to consume; it adds
// no semantics beyond the format description.
func ParseFlat(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "mirrorlist: parse flat file")
	}

	return urls, nil
}
