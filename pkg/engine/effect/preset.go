package effect

import "fmt"

// presets maps a Kind to its named factory presets, each a partial
// parameter set applied over the effect's constructed defaults.
// Values mirror Freeverb's room presets
// (SetPresetSmallRoom/MediumHall/LargeHall/Cathedral).
var presets = map[Kind]map[string]map[string]float64{
	KindReverbAlgorithmic: {
		"small_room":  {"room_size": 0.3, "damping": 0.75, "wet": 0.25, "width": 0.5},
		"medium_hall": {"room_size": 0.6, "damping": 0.5, "wet": 0.35, "width": 0.75},
		"large_hall":  {"room_size": 0.85, "damping": 0.3, "wet": 0.4, "width": 1.0},
		"cathedral":   {"room_size": 0.95, "damping": 0.1, "wet": 0.5, "width": 1.0},
	},
}

// ErrUnknownPreset is returned by ApplyPreset for a kind/name pair
// with no matching factory preset.
var ErrUnknownPreset = fmt.Errorf("effect: unknown preset")

// PresetNames lists the factory presets available for kind, in no
// particular order; nil if kind has none.
func PresetNames(kind Kind) []string {
	byName, ok := presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	return names
}

// ApplyPreset sets every parameter named in the kind/name factory
// preset onto e via the normal SetParameter path (so values are
// clamped and smoothed exactly like a UI-driven parameter change).
// Unknown kind/name pairs return ErrUnknownPreset and leave e
// untouched.
func ApplyPreset(e *Effect, name string) error {
	byName, ok := presets[e.Kind]
	if !ok {
		return fmt.Errorf("%w: %q has no presets", ErrUnknownPreset, e.Kind)
	}
	values, ok := byName[name]
	if !ok {
		return fmt.Errorf("%w: %q/%q", ErrUnknownPreset, e.Kind, name)
	}
	for param, value := range values {
		if err := e.SetParameter(param, value); err != nil {
			return err
		}
	}
	return nil
}
