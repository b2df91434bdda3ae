// Package metalink reads the Metalink XML documents that accompany many RPM
// and APT repositories: an ordered list of candidate mirror URLs for a
// single target file, each carrying a preference score and optional
// protocol/type/location hints.
//
// There is no third-party XML library anywhere in the example corpus this
// module was grounded on, so this reader is built on encoding/xml — the
// same choice the epel provider in the corpus makes for its own repomd/
// primary XML parsing (see DESIGN.md).
package metalink

import (
	"encoding/xml"
	"io"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Hash is a single checksum advertised for the metalink's target file.
// The mirror-selection core reads neither field; they pass through for any
// caller that wants to verify downloaded content.
type Hash struct {
	Type  string
	Value string
}

// URL is a single mirror entry from a Metalink document.
type URL struct {
	Protocol   string
	Type       string
	Location   string
	Preference int
	URL        string
}

// Metalink is the parsed contract this core consumes: an ordered list of
// candidate mirror URLs for one target file, plus metadata the mirror core
// ignores but preserves for callers that need it.
type Metalink struct {
	Filename  string
	Timestamp int64
	Size      int64
	Hashes    []Hash
	URLs      []URL
}

// xmlMetalink and friends mirror the subset of the Metalink 3/4 schema
// relevant to mirror selection. Unknown elements and attributes are
// ignored by encoding/xml, so this struct set only needs to name what it
// reads.
type xmlMetalink struct {
	XMLName xml.Name    `xml:"metalink"`
	Files   []xmlFile   `xml:"files>file"`
	File    *xmlFile    `xml:"file"`
}

type xmlFile struct {
	Name      string    `xml:"name,attr"`
	Timestamp int64     `xml:"timestamp"`
	Size      int64     `xml:"size"`
	Hashes    []xmlHash `xml:"verification>hash"`
	URLs      []xmlURL  `xml:"resources>url"`
}

type xmlHash struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlURL struct {
	Protocol   string `xml:"protocol,attr"`
	Type       string `xml:"type,attr"`
	Location   string `xml:"location,attr"`
	Preference string `xml:"preference,attr"`
	Value      string `xml:",chardata"`
}

// Parse decodes a Metalink XML document into the contract this core
// consumes. It preserves document order and empty URL text content
// (filtering empties is the mirrorlist builder's job, not the reader's).
//
// A <url> whose preference attribute is absent or not a valid integer gets
// preference 0 and a logged warning, per the documented contract — this is
// not treated as a parse error, since one malformed mirror should not sink
// an otherwise-usable metalink document.
func Parse(r io.Reader) (*Metalink, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var doc xmlMetalink
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "metalink: parse")
	}

	file := doc.File
	if file == nil && len(doc.Files) > 0 {
		file = &doc.Files[0]
	}
	if file == nil {
		return &Metalink{}, nil
	}

	ml := &Metalink{
		Filename:  file.Name,
		Timestamp: file.Timestamp,
		Size:      file.Size,
	}

	for _, h := range file.Hashes {
		ml.Hashes = append(ml.Hashes, Hash{Type: h.Type, Value: h.Value})
	}

	for _, u := range file.URLs {
		pref := 0
		if u.Preference == "" {
			slog.Warn("metalink: missing preference attribute, defaulting to 0",
				"url", u.Value)
		} else {
			p, err := strconv.Atoi(u.Preference)
			if err != nil {
				slog.Warn("metalink: malformed preference attribute, defaulting to 0",
					"url", u.Value, "preference", u.Preference)
			} else {
				pref = p
			}
		}
		ml.URLs = append(ml.URLs, URL{
			Protocol:   u.Protocol,
			Type:       u.Type,
			Location:   u.Location,
			Preference: pref,
			URL:        u.Value,
		})
	}

	return ml, nil
}
