package pollutant

import "strings"

// insights maps a display-name prefix to the explanatory text shown
// under the map. The prefixes cover every registry entry.
var insights = []struct {
	prefix string
	text   string
}{
	{"Nitrogen", "NO₂ mainly originates from traffic and fossil fuel combustion."},
	{"Sulfur", "SO₂ indicates industrial emissions and power generation."},
	{"Carbon", "CO is linked to incomplete combustion in urban areas."},
	{"Aerosol", "Aerosol Index highlights dust storms and smoke transport."},
}

// Insight returns the interpretation text for a pollutant display name,
// matched by name prefix. The empty string means no match, which is
// unreachable for registry names.
func Insight(name string) string {
	for _, in := range insights {
		if strings.HasPrefix(name, in.prefix) {
			return in.text
		}
	}
	return ""
}
