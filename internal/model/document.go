package model

// Document is an ordered record sequence parsed from one artifact, together
// with enough layout state to serialize it back byte-for-byte.
type Document struct {
	// Kind is the grammar the document was parsed with.
	Kind ArtifactKind

	// Records holds keyed and raw records in file order.
	Records []Record

	// FinalNewline records whether the source ended with a line
	// terminator. Appending records forces it on so new content always
	// lands on its own line.
	FinalNewline bool

	// CRLF records whether the source used Windows line endings, so the
	// serializer can write the file back with the same discipline.
	CRLF bool
}

// Find returns the index of the keyed record with the given identity, or -1.
func (d *Document) Find(id RecordID) int {
	for i, r := range d.Records {
		if r.Keyed() && r.ID() == id {
			return i
		}
	}
	return -1
}

// Keyed returns the document's keyed records, in file order.
func (d *Document) Keyed() []Record {
	var out []Record
	for _, r := range d.Records {
		if r.Keyed() {
			out = append(out, r)
		}
	}
	return out
}

// Index returns the keyed records mapped by identity.
func (d *Document) Index() map[RecordID]Record {
	idx := make(map[RecordID]Record, len(d.Records))
	for _, r := range d.Records {
		if r.Keyed() {
			idx[r.ID()] = r
		}
	}
	return idx
}

// Replace swaps the content of the record with rec's identity. It reports
// whether a record was found.
func (d *Document) Replace(rec Record) bool {
	i := d.Find(rec.ID())
	if i < 0 {
		return false
	}
	d.Records[i] = rec.Clone()
	return true
}

// Remove deletes the keyed record with the given identity. It reports
// whether a record was removed.
func (d *Document) Remove(id RecordID) bool {
	i := d.Find(id)
	if i < 0 {
		return false
	}
	d.Records = append(d.Records[:i], d.Records[i+1:]...)
	return true
}

// Append adds rec after the last record sharing its tag, so new entries land
// at the end of their section. When no record with that tag exists the
// record is appended to the end of the document. Appending forces a final
// newline.
func (d *Document) Append(rec Record) {
	at := len(d.Records)
	for i := len(d.Records) - 1; i >= 0; i-- {
		if d.Records[i].Tag == rec.Tag {
			at = i + 1
			break
		}
	}
	rec = rec.Clone()
	d.Records = append(d.Records, Record{})
	copy(d.Records[at+1:], d.Records[at:])
	d.Records[at] = rec
	d.FinalNewline = true
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Kind: d.Kind, FinalNewline: d.FinalNewline, CRLF: d.CRLF}
	out.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	return out
}
