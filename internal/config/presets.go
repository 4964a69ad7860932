package config

import "sort"

var Presets = map[string]ParamsConfig{
	"classic": {Mass: 10, Height: 100, Gravity: 981, Surface: "land"},
	"heavy":   {Mass: 400, Height: 300, Gravity: 981, Surface: "land"},
	"shatter": {Mass: 2500, Height: 500, Gravity: 981, Surface: "land"},
	"splash":  {Mass: 400, Height: 300, Gravity: 981, Surface: "water"},
	"windy":   {Mass: 100, Height: 400, Gravity: 981, Lateral: 25, Surface: "land"},
	"moon":    {Mass: 400, Height: 450, Gravity: 162, Surface: "land"},
	"feather": {Mass: 1, Height: 50, Gravity: 981, Surface: "land"},
}

func GetPreset(name string) (ParamsConfig, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
