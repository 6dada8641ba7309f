// Package session harvests a user's connection settings from the profile
// files already on disk, so a fresh pack install can be seeded with their
// callsign details, plugin list, and voice setup instead of blank defaults.
package session

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/packsync/packsync/internal/logging"
)

// Field identifies one harvested setting.
type Field string

const (
	FieldRealname           Field = "realname"
	FieldCertificate        Field = "certificate"
	FieldPassword           Field = "password"
	FieldFacility           Field = "facility"
	FieldRating             Field = "rating"
	FieldPlugins            Field = "plugins"
	FieldVccsPttG2A         Field = "vccs_ptt_g2a"
	FieldVccsPttG2G         Field = "vccs_ptt_g2g"
	FieldVccsPlaybackMode   Field = "vccs_playback_mode"
	FieldVccsPlaybackDevice Field = "vccs_playback_device"
	FieldVccsCaptureMode    Field = "vccs_capture_mode"
	FieldVccsCaptureDevice  Field = "vccs_capture_device"
	FieldCPDLCPassword      Field = "hoppies_cpdlc_password"
)

// patterns match setting lines inside profile files. Certificate and rating
// values are validated in place so junk lines never surface as candidates.
var patterns = map[Field]*regexp.Regexp{
	FieldRealname:           regexp.MustCompile(`^LastSession\trealname\t(.*)`),
	FieldCertificate:        regexp.MustCompile(`^LastSession\tcertificate\t([0-9]{4,})`),
	FieldPassword:           regexp.MustCompile(`^LastSession\tpassword\t(.*)`),
	FieldFacility:           regexp.MustCompile(`^LastSession\tfacility\t([0-9])`),
	FieldRating:             regexp.MustCompile(`^LastSession\trating\t([0-9])`),
	FieldPlugins:            regexp.MustCompile(`^Plugins\tPlugin[0-9]\t([A-Z]:\\.*)`),
	FieldVccsPttG2A:         regexp.MustCompile(`^TeamSpeakVccs\tTs3G2APtt\t([0-9]{1,10})`),
	FieldVccsPttG2G:         regexp.MustCompile(`^TeamSpeakVccs\tTs3G2GPtt\t([0-9]{1,10})`),
	FieldVccsPlaybackMode:   regexp.MustCompile(`^TeamSpeakVccs\tPlaybackMode\t(.*)`),
	FieldVccsPlaybackDevice: regexp.MustCompile(`^TeamSpeakVccs\tPlaybackDevice\t(.*)`),
	FieldVccsCaptureMode:    regexp.MustCompile(`^TeamSpeakVccs\tCaptureMode\t(.*)`),
	FieldVccsCaptureDevice:  regexp.MustCompile(`^TeamSpeakVccs\tCaptureDevice\t(.*)`),
	FieldCPDLCPassword:      regexp.MustCompile(`^vSMR:cpdlc_password:(.*)`),
}

// Found holds every distinct candidate value per field, sorted.
type Found map[Field][]string

// Harvest walks root for .prf files and collects candidate values for each
// field. Files that cannot be read are skipped.
func Harvest(root string) (Found, error) {
	sets := make(map[Field]map[string]bool)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".prf") {
			return nil
		}

		f, err := os.Open(path) // #nosec G304 - path comes from walking the pack dir
		if err != nil {
			logging.Warn("skipping unreadable profile",
				logging.Path(path),
				logging.Err(err),
			)
			return nil
		}
		defer f.Close()

		logging.Debug("scanning profile for session settings",
			logging.Path(path),
		)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			for field, re := range patterns {
				if m := re.FindStringSubmatch(line); m != nil {
					if sets[field] == nil {
						sets[field] = make(map[string]bool)
					}
					sets[field][m[1]] = true
				}
			}
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}

	found := make(Found, len(sets))
	for field, values := range sets {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		sort.Strings(list)
		found[field] = list
	}
	return found, nil
}
