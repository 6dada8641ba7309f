// Package rewrite applies pack housekeeping edits that follow a sector file
// release: pointing every screen setup and profile at the new sector file,
// and seeding plugin columns into departure list setups.
package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/model"
)

var (
	departureListPattern = regexp.MustCompile(`_APP_DL\.txt$`)
	appScreenPattern     = regexp.MustCompile(`_APP_Screen\.txt$`)
)

// IsDepartureList reports whether path is a departure list setup file.
func IsDepartureList(path string) bool {
	return departureListPattern.MatchString(filepath.Base(path))
}

// IsAppScreen reports whether path is an approach screen setup file.
func IsAppScreen(path string) bool {
	return appScreenPattern.MatchString(filepath.Base(path))
}

// setLine replaces the settings record parsed from line, or appends it when
// the document has no record with that identity. It reports whether the
// document changed.
func setLine(doc *model.Document, line string) bool {
	rec, ok := artifact.SettingsRecord(line)
	if !ok {
		return false
	}
	if i := doc.Find(rec.ID()); i >= 0 {
		if doc.Records[i].ContentEqual(rec) {
			return false
		}
		doc.Records[i] = rec
		return true
	}
	doc.Append(rec)
	return true
}

// SectorRefs points a screen setup (.asr) document at the given sector file.
// It reports whether anything changed.
func SectorRefs(doc *model.Document, sctPath string) bool {
	title := sctPath
	if i := strings.LastIndexAny(sctPath, `/\`); i >= 0 {
		title = sctPath[i+1:]
	}

	changed := setLine(doc, "SECTORFILE:"+sctPath)
	if setLine(doc, "SECTORTITLE:"+title) {
		changed = true
	}
	return changed
}

// ProfileSectorRef points a profile document at the given sector file. It
// reports whether the document changed.
func ProfileSectorRef(doc *model.Document, sctPath string) bool {
	rec := artifact.ProfileRecord("Settings", "sector", sctPath)
	if i := doc.Find(rec.ID()); i >= 0 {
		if doc.Records[i].ContentEqual(rec) {
			return false
		}
		doc.Records[i] = rec
		return true
	}
	doc.Append(rec)
	return true
}

// ShowVccsMiniControl forces the VCCS mini control panel visible in an
// approach screen setup.
func ShowVccsMiniControl(doc *model.Document) bool {
	return setLine(doc, "m_ShowTsVccsMiniControl:1")
}
