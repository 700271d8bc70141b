package metrics

import "sort"

// Preset is a named starting point for a Source.
type Preset struct {
	Name        string
	Description string
	Initial     Sample
	Trend       float64
}

var Presets = map[string]Preset{
	"calm": {
		Name:        "calm",
		Description: "idle host, slow drift",
		Initial:     DefaultSample,
	},
	"stressed": {
		Name:        "stressed",
		Description: "busy host climbing toward saturation",
		Initial:     Sample{CPU: 65, Memory: 72, Network: 40},
		Trend:       0.6,
	},
	"incident": {
		Name:        "incident",
		Description: "saturated cpu with lingering errors",
		Initial:     Sample{CPU: 90, Memory: 85, Errors: 8, Network: 25},
		Trend:       0.3,
	},
	"burst": {
		Name:        "burst",
		Description: "quiet cpu during a network burst",
		Initial:     Sample{CPU: 30, Memory: 40, Network: NetworkSpike},
		Trend:       -0.2,
	},
}

// GetPreset returns the named preset and whether it exists.
func GetPreset(name string) (Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

// PresetNames returns preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for k := range Presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Options turns the preset into source options.
func (p Preset) Options() []SourceOption {
	return []SourceOption{WithInitial(p.Initial), WithTrend(p.Trend)}
}
