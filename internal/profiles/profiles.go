// Package profiles is the read-only chipset catalogue: per-SoC boot
// sequences, peripheral summaries and hardware defaults, loaded from an
// embedded YAML document. The catalogue backs chipset detection during
// synthesis and boot log rendering in the fallback simulator.
package profiles

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firmlab/firmlab/internal/model"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// BootStage is one stage of a chipset's boot sequence.
type BootStage struct {
	Stage             string   `yaml:"stage" json:"stage"`
	Name              string   `yaml:"name" json:"name"`
	TimeoutMS         int      `yaml:"timeout_ms" json:"timeout_ms"`
	ExpectedOutput    []string `yaml:"expected_output" json:"expected_output"`
	SuccessIndicators []string `yaml:"success_indicators" json:"success_indicators"`
	FailureIndicators []string `yaml:"failure_indicators" json:"failure_indicators"`
}

// Peripheral is a summary entry for one on-chip peripheral.
type Peripheral struct {
	Type     string         `yaml:"type" json:"type"`
	Name     string         `yaml:"name" json:"name"`
	Features map[string]any `yaml:"features,omitempty" json:"features,omitempty"`
}

// Profile describes one supported chipset.
type Profile struct {
	ChipsetID       string       `yaml:"-" json:"chipset_id"`
	Vendor          string       `yaml:"vendor" json:"vendor"`
	Model           string       `yaml:"model" json:"model"`
	Architecture    string       `yaml:"architecture" json:"architecture"`
	CPUType         string       `yaml:"cpu_type" json:"cpu_type"`
	CPUCores        int          `yaml:"cpu_cores" json:"cpu_cores"`
	CPUFrequencyMHz int          `yaml:"cpu_frequency_mhz" json:"cpu_frequency_mhz"`
	RAMMB           int          `yaml:"ram_mb" json:"ram_mb"`
	FlashMB         int          `yaml:"flash_mb" json:"flash_mb"`
	BootSequence    []BootStage  `yaml:"boot_sequence" json:"boot_sequence"`
	Peripherals     []Peripheral `yaml:"peripherals" json:"peripherals"`
	SpecialFeatures []string     `yaml:"special_features" json:"special_features"`
}

// Catalog is an immutable chipset profile lookup table. A single Catalog
// may be shared across concurrent sessions.
type Catalog struct {
	profiles map[string]Profile
}

type catalogueDoc struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load reads a catalogue from YAML.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	var doc catalogueDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	profiles := make(map[string]Profile, len(doc.Profiles))
	for id, p := range doc.Profiles {
		p.ChipsetID = id
		profiles[id] = p
	}
	return &Catalog{profiles: profiles}, nil
}

// Default returns the embedded catalogue. The embedded document is
// validated by tests; a parse failure here is a build defect.
func Default() *Catalog {
	cat, err := Load(strings.NewReader(string(catalogueYAML)))
	if err != nil {
		panic(fmt.Sprintf("profiles: embedded catalogue: %v", err))
	}
	return cat
}

// Get looks up a profile by chipset ID, case-insensitively.
func (c *Catalog) Get(chipsetID string) (Profile, bool) {
	p, ok := c.profiles[strings.ToUpper(chipsetID)]
	return p, ok
}

// List returns all profiles, sorted by chipset ID. vendor, when non-empty,
// restricts the result to that vendor (case-insensitive).
func (c *Catalog) List(vendor string) []Profile {
	vendor = strings.ToLower(vendor)
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		if vendor != "" && strings.ToLower(p.Vendor) != vendor {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChipsetID < out[j].ChipsetID })
	return out
}

// Detect finds the catalogue chipset matching a hardware spec: an exact
// SoC ID match first, then a vendor match. Returns false when the spec
// names no known chipset.
func (c *Catalog) Detect(hw model.HardwareSpec) (Profile, bool) {
	if p, ok := c.Get(hw.SoC); ok {
		return p, true
	}

	soc := strings.ToUpper(hw.SoC)
	if soc != "" && soc != "UNKNOWN" {
		for _, p := range c.List("") {
			if strings.Contains(soc, p.ChipsetID) || strings.Contains(p.ChipsetID, soc) {
				return p, true
			}
		}
	}

	vendor := strings.ToLower(hw.Vendor)
	if vendor != "" && vendor != "unknown" {
		if byVendor := c.List(vendor); len(byVendor) > 0 {
			return byVendor[0], true
		}
	}
	return Profile{}, false
}
