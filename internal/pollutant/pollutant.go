// Package pollutant defines the Sentinel-5P products the dashboard can display.
package pollutant

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined registry errors.
var (
	ErrUnknownPollutant = errors.New("unknown pollutant")
)

// Display names of the supported pollutants. These are the only valid
// inputs to Lookup and the values offered by the dashboard selector.
const (
	NitrogenDioxide = "Nitrogen Dioxide (NO2)"
	SulfurDioxide   = "Sulfur Dioxide (SO2)"
	CarbonMonoxide  = "Carbon Monoxide (CO)"
	AerosolIndex    = "Aerosol Index (Dust/Smoke)"
)

// Profile describes how a single pollutant is queried and rendered.
type Profile struct {
	// Name is the human-readable display name.
	Name string

	// Collection is the Earth Engine image collection identifier.
	Collection string

	// Band is the measurement band within the collection.
	Band string

	// Min and Max bound the display range for colorization.
	Min float64
	Max float64

	// Palette is the ordered color ramp applied between Min and Max.
	Palette []string

	// Unit is the physical unit of the band values.
	Unit string
}

// ShortName returns the first word of the display name, used in
// export filenames and the dashboard metric chip.
func (p Profile) ShortName() string {
	name, _, _ := strings.Cut(p.Name, " ")
	return name
}

// spectrumPalette is the default ramp for column density products.
var spectrumPalette = []string{"black", "blue", "purple", "cyan", "green", "yellow", "red"}

// profiles holds the fixed registry, in selector order.
var profiles = []Profile{
	{
		Name:       NitrogenDioxide,
		Collection: "COPERNICUS/S5P/OFFL/L3_NO2",
		Band:       "tropospheric_NO2_column_number_density",
		Min:        0,
		Max:        0.0002,
		Palette:    spectrumPalette,
		Unit:       "mol/m²",
	},
	{
		Name:       SulfurDioxide,
		Collection: "COPERNICUS/S5P/OFFL/L3_SO2",
		Band:       "SO2_column_number_density",
		Min:        0,
		Max:        0.0005,
		Palette:    []string{"blue", "green", "yellow", "orange", "red"},
		Unit:       "mol/m²",
	},
	{
		Name:       CarbonMonoxide,
		Collection: "COPERNICUS/S5P/OFFL/L3_CO",
		Band:       "CO_column_number_density",
		Min:        0,
		Max:        0.05,
		Palette:    spectrumPalette,
		Unit:       "mol/m²",
	},
	{
		Name:       AerosolIndex,
		Collection: "COPERNICUS/S5P/OFFL/L3_AER_AI",
		Band:       "absorbing_aerosol_index",
		Min:        -1,
		Max:        2,
		Palette:    spectrumPalette,
		Unit:       "Index",
	},
}

func init() {
	// An invalid registry entry is a programming error, not a runtime condition.
	for _, p := range profiles {
		if p.Min > p.Max {
			panic(fmt.Sprintf("pollutant: %s has min > max", p.Name))
		}
		if len(p.Palette) == 0 {
			panic(fmt.Sprintf("pollutant: %s has empty palette", p.Name))
		}
	}
}

// All returns the registry entries in selector order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Lookup returns the profile for a display name. Any name outside the
// four supported pollutants is an error; there is no default.
func Lookup(name string) (Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPollutant, name)
}
