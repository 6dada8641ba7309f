package session

import (
	"fmt"
	"regexp"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/model"
)

// EuroScope anchors the VCCS mini control panel at fixed coordinates when
// none are stored; seeding them keeps the panel on screen.
const (
	vccsMiniControlX = "1581"
	vccsMiniControlY = "198"
)

var pluginKeyPattern = regexp.MustCompile(`^Plugin([0-9]+)$`)

// Apply seeds doc with the resolved session settings. Existing records are
// replaced in place, missing ones are appended at the end of their section.
// Harvested plugins are numbered after the highest Plugin entry already in
// the profile.
func Apply(doc *model.Document, s Settings) {
	set := func(section, key, value string) {
		if value == "" {
			return
		}
		rec := artifact.ProfileRecord(section, key, value)
		if !doc.Replace(rec) {
			doc.Append(rec)
		}
	}

	set("LastSession", "realname", s.Realname)
	set("LastSession", "certificate", s.Certificate)
	set("LastSession", "password", s.Password)
	set("LastSession", "rating", s.Rating)

	next := nextPluginIndex(doc)
	for _, plugin := range s.Plugins {
		set("Plugins", fmt.Sprintf("Plugin%d", next), plugin)
		next++
	}

	if s.Certificate != "" {
		set("TeamSpeakVccs", "Ts3NickName", s.Certificate)
		set("TeamSpeakVccs", "TsVccsMiniControlX", vccsMiniControlX)
		set("TeamSpeakVccs", "TsVccsMiniControlY", vccsMiniControlY)
	}
	set("TeamSpeakVccs", "Ts3G2APtt", s.VccsPttG2A)
	set("TeamSpeakVccs", "Ts3G2GPtt", s.VccsPttG2G)
	set("TeamSpeakVccs", "PlaybackMode", s.VccsPlaybackMode)
	set("TeamSpeakVccs", "PlaybackDevice", s.VccsPlaybackDevice)
	set("TeamSpeakVccs", "CaptureMode", s.VccsCaptureMode)
	set("TeamSpeakVccs", "CaptureDevice", s.VccsCaptureDevice)
}

func nextPluginIndex(doc *model.Document) int {
	next := 0
	for _, rec := range doc.Records {
		if rec.Tag != "Plugins" || !rec.Keyed() {
			continue
		}
		m := pluginKeyPattern.FindStringSubmatch(rec.Key)
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n >= next {
			next = n + 1
		}
	}
	return next
}
