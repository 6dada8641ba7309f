// Package artifact parses managed files into ordered record sequences and
// serializes them back to their exact on-disk grammar. Three grammars are
// supported: profile files (tab-separated section/key/value lines), settings
// files (colon-separated lines), and sector files (bracketed sections with
// first-token keys).
package artifact

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/packsync/packsync/internal/logging"
	"github.com/packsync/packsync/internal/model"
)

// MalformedError reports a parse failure, most commonly a duplicate record
// identity within a single artifact.
type MalformedError struct {
	// Kind is the grammar being parsed.
	Kind model.ArtifactKind
	// ID is the offending record identity, when applicable.
	ID model.RecordID
	// Line is the 1-based line number of the failure.
	Line int
	// Reason describes the failure.
	Reason string
}

func (e *MalformedError) Error() string {
	if e.ID != (model.RecordID{}) {
		return fmt.Sprintf("malformed %s artifact: %s at line %d (%s)", e.Kind, e.Reason, e.Line, e.ID)
	}
	return fmt.Sprintf("malformed %s artifact: %s at line %d", e.Kind, e.Reason, e.Line)
}

// Parse decodes content and parses it with the grammar selected by kind.
// Decoding tries UTF-8 first and falls back to Windows-1252, since upstream
// files are not guaranteed to be strictly encoded.
func Parse(kind model.ArtifactKind, content []byte) (*model.Document, error) {
	text := decode(content)

	doc := &model.Document{Kind: kind}
	doc.CRLF = strings.Contains(text, "\r\n")
	doc.FinalNewline = strings.HasSuffix(text, "\n")

	lines := splitLines(text)

	var err error
	switch kind {
	case model.Profile:
		err = parseProfile(doc, lines)
	case model.Settings:
		err = parseSettings(doc, lines)
	case model.Sector:
		err = parseSector(doc, lines)
	default:
		return nil, fmt.Errorf("unsupported artifact kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("parsed artifact",
		logging.Kind(string(kind)),
		logging.Count(len(doc.Records)),
	)
	return doc, nil
}

// Serialize writes the document back to its on-disk form. For documents
// produced by Parse the output re-parses to an equal record sequence, with
// the original trailing-newline and line-ending discipline preserved.
func Serialize(doc *model.Document) []byte {
	eol := "\n"
	if doc.CRLF {
		eol = "\r\n"
	}

	var sb strings.Builder
	for i, rec := range doc.Records {
		for j, line := range rec.Lines {
			if i > 0 || j > 0 {
				sb.WriteString(eol)
			}
			sb.WriteString(line)
		}
	}
	if doc.FinalNewline && sb.Len() > 0 {
		sb.WriteString(eol)
	}
	return []byte(sb.String())
}

// decode returns content as text, falling back to a permissive Windows-1252
// decode when the bytes are not valid UTF-8.
func decode(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		// Windows-1252 decodes any byte sequence; this path is
		// unreachable in practice but keep the raw bytes if it ever
		// fires.
		logging.Warn("fallback decode failed", logging.Err(err))
		return string(content)
	}
	logging.Debug("decoded artifact as windows-1252")
	return string(decoded)
}

// splitLines splits text into lines without terminators. A trailing newline
// does not produce an empty final line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// recordBuilder accumulates records and enforces identity uniqueness.
type recordBuilder struct {
	kind model.ArtifactKind
	recs []model.Record
	seen map[model.RecordID]bool
}

func newRecordBuilder(kind model.ArtifactKind) *recordBuilder {
	return &recordBuilder{kind: kind, seen: make(map[model.RecordID]bool)}
}

// keyed appends a keyed record, failing on a duplicate (tag, key) pair.
func (b *recordBuilder) keyed(tag, key, line string, lineNo int) error {
	id := model.RecordID{Tag: tag, Key: key}
	if b.seen[id] {
		return &MalformedError{Kind: b.kind, ID: id, Line: lineNo, Reason: "duplicate record"}
	}
	b.seen[id] = true
	b.recs = append(b.recs, model.Record{Tag: tag, Key: key, Lines: []string{line}})
	return nil
}

// raw appends an unkeyed line, coalescing with a preceding raw record that
// shares its tag.
func (b *recordBuilder) raw(tag, line string) {
	if n := len(b.recs); n > 0 {
		last := &b.recs[n-1]
		if !last.Keyed() && last.Tag == tag {
			last.Lines = append(last.Lines, line)
			return
		}
	}
	b.recs = append(b.recs, model.Record{Tag: tag, Lines: []string{line}})
}

// continuation appends a line to the immediately preceding keyed record. It
// reports whether there was one.
func (b *recordBuilder) continuation(line string) bool {
	if n := len(b.recs); n > 0 && b.recs[n-1].Keyed() {
		b.recs[n-1].Lines = append(b.recs[n-1].Lines, line)
		return true
	}
	return false
}
