package main

import (
	"fmt"
	"os"

	"collective-go/services/config"
	"collective-go/types"
)

// usbProfile loads path, or the embedded USB board profile when path is empty.
func usbProfile(path string) (*types.USBBoardProfile, error) {
	if path == "" {
		return config.LoadUSBBoard(config.DeviceUSBBoard)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := config.ParseUSBBoard(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func ioProfile(path string) (*types.IOBoardProfile, error) {
	if path == "" {
		return config.LoadIOBoard(config.DeviceIOBoard)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := config.ParseIOBoard(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
