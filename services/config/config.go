// Package config resolves board profiles. Profiles are YAML documents
// compiled into the firmware image; the host CLI may parse a file instead.
package config

import (
	"bytes"
	"embed"
	"errors"

	"collective-go/types"

	"gopkg.in/yaml.v3"
)

// Device IDs of the embedded profiles.
const (
	DeviceIOBoard  = "ioboard"
	DeviceUSBBoard = "usbboard"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// EmbeddedProfileLookup allows overriding how profiles are resolved.
var EmbeddedProfileLookup = func(device string) ([]byte, bool) {
	b, err := profileFS.ReadFile("profiles/" + device + ".yaml")
	if err != nil {
		return nil, false
	}
	return b, true
}

func lookup(device string) ([]byte, error) {
	raw, ok := EmbeddedProfileLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded profile for device: " + device)
	}
	return raw, nil
}

// decode is strict: unknown keys are rejected so a typo in a wiring table
// cannot silently drop a button.
func decode(raw []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// ---- IO board ----

// ParseIOBoard decodes, validates and normalises an IO board profile.
func ParseIOBoard(raw []byte) (*types.IOBoardProfile, error) {
	var p types.IOBoardProfile
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if err := ValidateIOBoard(&p); err != nil {
		return nil, err
	}
	NormalizeIOBoard(&p)
	return &p, nil
}

// LoadIOBoard resolves the embedded profile for device.
func LoadIOBoard(device string) (*types.IOBoardProfile, error) {
	raw, err := lookup(device)
	if err != nil {
		return nil, err
	}
	return ParseIOBoard(raw)
}

// ---- USB board ----

func ParseUSBBoard(raw []byte) (*types.USBBoardProfile, error) {
	var p types.USBBoardProfile
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	if err := ValidateUSBBoard(&p); err != nil {
		return nil, err
	}
	NormalizeUSBBoard(&p)
	return &p, nil
}

func LoadUSBBoard(device string) (*types.USBBoardProfile, error) {
	raw, err := lookup(device)
	if err != nil {
		return nil, err
	}
	return ParseUSBBoard(raw)
}
