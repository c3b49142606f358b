package config

// PresetCustom marks a free-form resolution.
const PresetCustom = "custom"

// Resolution is a named canvas size.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Resolutions lists the built-in resolution presets. PresetCustom maps to the
// zero value and leaves dimensions alone.
var Resolutions = map[string]Resolution{
	"1080p":      {Width: 1920, Height: 1080},
	"1440p":      {Width: 2560, Height: 1440},
	"4k":         {Width: 3840, Height: 2160},
	"phone":      {Width: 1170, Height: 2532},
	"ultrawide":  {Width: 3440, Height: 1440},
	PresetCustom: {},
}

// ApplyResolution switches c to the named preset. Unknown names report false
// and leave c untouched.
func (c *Config) ApplyResolution(name string) bool {
	res, ok := Resolutions[name]
	if !ok {
		return false
	}
	c.Preset = name
	if res.Width > 0 {
		c.Width, c.Height = res.Width, res.Height
	}
	return true
}
