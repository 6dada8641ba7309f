package model

// RecordID identifies a record within one parsed artifact. Tag is the
// section the record belongs to, Key its name within that section. The pair
// is unique per artifact for keyed records.
type RecordID struct {
	Tag string
	Key string
}

func (id RecordID) String() string {
	if id.Tag == "" {
		return id.Key
	}
	return id.Tag + "/" + id.Key
}

// Record is the atomic unit of a parsed artifact: an identified block of raw
// content lines. Records with an empty Key carry unkeyed content (comments,
// blank lines, section headers) that is preserved verbatim but never merged.
type Record struct {
	// Tag is the section or category the record belongs to.
	Tag string

	// Key is the record's identity within its tag. Empty for raw content.
	Key string

	// Lines holds the raw content, one entry per physical line, without
	// line terminators.
	Lines []string
}

// ID returns the record's identity.
func (r Record) ID() RecordID {
	return RecordID{Tag: r.Tag, Key: r.Key}
}

// Keyed reports whether the record participates in merging.
func (r Record) Keyed() bool {
	return r.Key != ""
}

// ContentEqual reports whether two records carry identical content lines.
func (r Record) ContentEqual(other Record) bool {
	if len(r.Lines) != len(other.Lines) {
		return false
	}
	for i := range r.Lines {
		if r.Lines[i] != other.Lines[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	lines := make([]string, len(r.Lines))
	copy(lines, r.Lines)
	return Record{Tag: r.Tag, Key: r.Key, Lines: lines}
}
