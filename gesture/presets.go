package gesture

import (
	"errors"
	"fmt"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named location to jump to.
type Preset struct {
	Name      string  `yaml:"name" json:"name"`
	Real      float64 `yaml:"real" json:"real"`
	Imaginary float64 `yaml:"imaginary" json:"imaginary"`
	Zoom      float64 `yaml:"zoom" json:"zoom"`
}

type Presets []Preset

var defaultPresets = Presets{
	{"home", -0.5, 0, 1},
	{"flower", -1.9854406434, 0, 2300},
	{"seahorse-valley", -0.737532251, 0.1665403958, 150.89},
	{"starfish", -0.417, -0.603, 370},
	{"elephant-valley", 0.2966735576, 0.4851305008, 260.78},
	{"spiral", -0.764140113, -0.09488865, 3500.72},
	{"lightning-storm", -1.7754446326, -0.0046148166, 1300},
	{"vortex", -0.7473278619, 0.1003012304, 9046.45},
	{"portals", -0.0865673632, -0.6563693169, 1300.47},
	{"sun", -0.776592847, -0.136640848, 20000},
	{"tendrils", -0.2175429922, -1.1144508288, 9000},
}

// DefaultPresets returns a copy of the built in locations.
func DefaultPresets() Presets {
	return append(Presets(nil), defaultPresets...)
}

func (p Presets) Lookup(name string) (Preset, error) {
	for _, preset := range p {
		if preset.Name == name {
			return preset, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func (p Presets) Names() []string {
	names := make([]string, len(p))
	for i, preset := range p {
		names[i] = preset.Name
	}
	return names
}

// With returns p with extra appended. An extra preset with an existing name
// replaces it in place.
func (p Presets) With(extra ...Preset) Presets {
	out := append(Presets(nil), p...)

Extra:
	for _, e := range extra {
		for i := range out {
			if out[i].Name == e.Name {
				out[i] = e
				continue Extra
			}
		}
		out = append(out, e)
	}
	return out
}
