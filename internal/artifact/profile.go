package artifact

import (
	"strings"

	"github.com/packsync/packsync/internal/model"
)

// parseProfile parses EuroScope profile files. Each meaningful line has the
// shape "Section\tKey\tValue"; the (Section, Key) pair is the record
// identity. Anything else is preserved as raw content.
func parseProfile(doc *model.Document, lines []string) error {
	b := newRecordBuilder(model.Profile)

	for i, line := range lines {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 3 || fields[0] == "" || fields[1] == "" {
			b.raw("", line)
			continue
		}
		if err := b.keyed(fields[0], fields[1], line, i+1); err != nil {
			return err
		}
	}

	doc.Records = b.recs
	return nil
}

// ProfileRecord builds a profile record for the given section, key and
// value, ready for merging into a parsed profile.
func ProfileRecord(section, key, value string) model.Record {
	return model.Record{
		Tag:   section,
		Key:   key,
		Lines: []string{section + "\t" + key + "\t" + value},
	}
}

// ProfileValue extracts the value column from a profile record. It reports
// false for raw or malformed records.
func ProfileValue(rec model.Record) (string, bool) {
	if len(rec.Lines) != 1 {
		return "", false
	}
	fields := strings.SplitN(rec.Lines[0], "\t", 3)
	if len(fields) < 3 {
		return "", false
	}
	return fields[2], true
}
