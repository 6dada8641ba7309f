package artifact

import (
	"strings"

	"github.com/packsync/packsync/internal/model"
)

// parseSector parses sector definition files. "[SECTION]" headers open a
// section whose name tags every record inside it. Entries are identified by
// their first whitespace-delimited token; indented lines continue the
// preceding entry. Comments (";") and blank lines are raw content.
func parseSector(doc *model.Document, lines []string) error {
	b := newRecordBuilder(model.Sector)
	section := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			section = strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			b.raw(section, line)

		case trimmed == "" || strings.HasPrefix(trimmed, ";"):
			b.raw(section, line)

		case strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t"):
			// Indented content continues the previous entry.
			if !b.continuation(line) {
				b.raw(section, line)
			}

		default:
			key := trimmed
			if idx := strings.IndexAny(trimmed, " \t"); idx > 0 {
				key = trimmed[:idx]
			}
			if err := b.keyed(section, key, line, i+1); err != nil {
				return err
			}
		}
	}

	doc.Records = b.recs
	return nil
}

// SectorSectionHeader builds the raw header record opening a section.
func SectorSectionHeader(name string) model.Record {
	return model.Record{Tag: name, Lines: []string{"[" + name + "]"}}
}
