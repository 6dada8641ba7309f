package artifact

import (
	"strings"

	"github.com/packsync/packsync/internal/model"
)

// parseSettings parses settings and ASR files. Lines are colon-separated:
// "name:selector:rest..." is identified by (name, selector), while two-field
// "name:value" lines are identified by name alone. Lines without a colon
// (blank lines, END terminators) are raw content.
func parseSettings(doc *model.Document, lines []string) error {
	b := newRecordBuilder(model.Settings)

	for i, line := range lines {
		tag, key, ok := settingsIdentity(line)
		if !ok {
			b.raw("", line)
			continue
		}
		if err := b.keyed(tag, key, line, i+1); err != nil {
			return err
		}
	}

	doc.Records = b.recs
	return nil
}

// settingsIdentity derives the record identity for a settings line.
// Display-item lines ("m_Column:ASSR:...") are identified by name and
// selector, plugin lines ("PLUGIN:vSMR:setting:...") by plugin and setting
// name, and everything else ("SECTORFILE:C:\...") by the leading name alone,
// so colons inside values never leak into identity.
func settingsIdentity(line string) (tag, key string, ok bool) {
	if line == "" || strings.HasPrefix(line, ";") {
		return "", "", false
	}
	fields := strings.SplitN(line, ":", 4)
	if len(fields) < 2 || fields[0] == "" {
		return "", "", false
	}
	switch {
	case fields[0] == "PLUGIN" && len(fields) >= 3 && fields[1] != "" && fields[2] != "":
		return fields[0], fields[1] + ":" + fields[2], true
	case strings.HasPrefix(fields[0], "m_") && len(fields) >= 3 && fields[1] != "":
		return fields[0], fields[1], true
	default:
		return fields[0], fields[0], true
	}
}

// SettingsRecord builds a one-line settings record from its raw line.
func SettingsRecord(line string) (model.Record, bool) {
	tag, key, ok := settingsIdentity(line)
	if !ok {
		return model.Record{}, false
	}
	return model.Record{Tag: tag, Key: key, Lines: []string{line}}, true
}
