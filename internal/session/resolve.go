package session

import (
	"fmt"

	"github.com/packsync/packsync/internal/logging"
)

// Settings is the resolved set of connection details to seed profiles with.
type Settings struct {
	Realname    string
	Certificate string
	Password    string
	Facility    string
	Rating      string

	// Plugins are full DLL paths of non-pack plugins the user confirmed
	// they want carried over.
	Plugins []string

	VccsPttG2A         string
	VccsPttG2G         string
	VccsPlaybackMode   string
	VccsPlaybackDevice string
	VccsCaptureMode    string
	VccsCaptureDevice  string

	// CPDLCPassword is the Hoppies logon harvested from vSMR plugin
	// settings.
	CPDLCPassword string
}

// Prompter resolves ambiguity the harvest cannot: several candidate values
// for one field, secrets, and plugin carry-over confirmation.
type Prompter interface {
	// Select picks one of options for the named field.
	Select(field Field, options []string) (string, error)

	// Secret reads a value without echoing it.
	Secret(prompt string) (string, error)

	// Confirm asks a yes/no question, defaulting to yes.
	Confirm(prompt string) (bool, error)
}

// Resolve turns harvested candidates into concrete settings. Single-valued
// fields resolve silently; conflicts go through the prompter. Conflicting
// passwords are never displayed, the user re-enters theirs instead. Each
// harvested plugin needs individual confirmation.
func Resolve(found Found, p Prompter) (Settings, error) {
	var s Settings

	assign := map[Field]*string{
		FieldRealname:           &s.Realname,
		FieldCertificate:        &s.Certificate,
		FieldFacility:           &s.Facility,
		FieldRating:             &s.Rating,
		FieldVccsPttG2A:         &s.VccsPttG2A,
		FieldVccsPttG2G:         &s.VccsPttG2G,
		FieldVccsPlaybackMode:   &s.VccsPlaybackMode,
		FieldVccsPlaybackDevice: &s.VccsPlaybackDevice,
		FieldVccsCaptureMode:    &s.VccsCaptureMode,
		FieldVccsCaptureDevice:  &s.VccsCaptureDevice,
		FieldCPDLCPassword:      &s.CPDLCPassword,
	}

	for field, dst := range assign {
		values := found[field]
		switch len(values) {
		case 0:
		case 1:
			*dst = values[0]
		default:
			logging.Warn("multiple candidate values found",
				logging.Operation(string(field)),
				logging.Count(len(values)),
			)
			choice, err := p.Select(field, values)
			if err != nil {
				return Settings{}, fmt.Errorf("resolve %s: %w", field, err)
			}
			*dst = choice
		}
	}

	switch passwords := found[FieldPassword]; len(passwords) {
	case 0:
	case 1:
		s.Password = passwords[0]
	default:
		pw, err := p.Secret("Multiple stored passwords found. Enter the password to use: ")
		if err != nil {
			return Settings{}, fmt.Errorf("resolve password: %w", err)
		}
		s.Password = pw
	}

	for _, plugin := range found[FieldPlugins] {
		keep, err := p.Confirm(fmt.Sprintf("Carry over plugin %s?", plugin))
		if err != nil {
			return Settings{}, fmt.Errorf("confirm plugin: %w", err)
		}
		if keep {
			s.Plugins = append(s.Plugins, plugin)
		}
	}

	return s, nil
}
