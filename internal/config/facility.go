package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"parking-facility/internal/parking"
)

// LoadLayout reads a facility layout file. Gate ids are case sensitive, so
// the file is decoded with yaml.v3 directly rather than through viper, which
// lowercases map keys.
func LoadLayout(path string) (parking.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parking.Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (parking.Layout, error) {
	var l parking.Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return parking.Layout{}, fmt.Errorf("%w: %v", parking.ErrInvalidLayout, err)
	}
	if len(l.Spots) == 0 {
		return parking.Layout{}, fmt.Errorf("%w: no spots defined", parking.ErrInvalidLayout)
	}
	return l, nil
}

// Layout returns the configured facility, falling back to parking.DemoLayout.
func (c *Config) Layout() (parking.Layout, error) {
	if c.Facility.LayoutFile == "" {
		return parking.DemoLayout(), nil
	}
	return LoadLayout(c.Facility.LayoutFile)
}
