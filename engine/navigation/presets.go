package navigation

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/walkabout-go/common"
)

// DefaultPresets returns the built-in walkthrough stops: four first-person
// viewpoints and one top-down floor-plan viewpoint. The slice is freshly
// allocated on each call so callers may reorder or extend it.
//
// Returns:
//   - []PresetLocation: the default preset list
func DefaultPresets() []PresetLocation {
	return []PresetLocation{
		{Name: "entrance", Position: mgl32.Vec3{0, 1.6, 8}, Yaw: 0, Mode: ModeFirstPerson},
		{Name: "living-room", Position: mgl32.Vec3{-4, 1.6, 2}, Yaw: math.Pi / 2, Mode: ModeFirstPerson},
		{Name: "kitchen", Position: mgl32.Vec3{4, 1.6, -2}, Yaw: -math.Pi / 2, Mode: ModeFirstPerson},
		{Name: "terrace", Position: mgl32.Vec3{0, 1.6, -6}, Yaw: math.Pi, Mode: ModeFirstPerson},
		{Name: "overhead", Position: mgl32.Vec3{0, 12, 0}, Pitch: -math.Pi / 2, Yaw: 0, Mode: ModeFloorPlan},
	}
}

// presetEntry is the YAML shape of a single preset location.
type presetEntry struct {
	Name      string  `yaml:"name"`
	X         float32 `yaml:"x"`
	Y         float32 `yaml:"y"`
	Z         float32 `yaml:"z"`
	Pitch     float32 `yaml:"pitch"`
	Yaw       float32 `yaml:"yaw"`
	FloorPlan bool    `yaml:"floorPlan"`
}

// tuningEntry is the YAML shape of the optional tuning overrides.
// Zero values mean "keep the default".
type tuningEntry struct {
	RotateSpeed     float32 `yaml:"rotateSpeed"`
	PanSpeed        float32 `yaml:"panSpeed"`
	DollySpeed      float32 `yaml:"dollySpeed"`
	ZoomSpeed       float32 `yaml:"zoomSpeed"`
	CollisionOffset float32 `yaml:"collisionOffset"`
	ArrivalEpsilon  float32 `yaml:"arrivalEpsilon"`
	TransitionRate  float32 `yaml:"transitionRate"`
	LiveRate        float32 `yaml:"liveRate"`
	TourDwellMs     int     `yaml:"tourDwellMs"`
}

// PresetFile is a site-specific walkthrough description loaded from YAML:
// an ordered preset list plus optional tuning overrides.
type PresetFile struct {
	Tuning  tuningEntry   `yaml:"tuning"`
	Presets []presetEntry `yaml:"presets"`
}

// LoadPresetFile reads and decodes a walkthrough preset file.
//
// Parameters:
//   - path: path to the YAML file
//
// Returns:
//   - *PresetFile: the decoded file
//   - error: error if the file cannot be read, decoded, or names no presets
func LoadPresetFile(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", path, err)
	}
	var f PresetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode preset file %s: %w", path, err)
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("preset file %s defines no presets", path)
	}
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset file %s: preset %d has no name", path, i)
		}
	}
	return &f, nil
}

// Locations converts the file's preset entries to PresetLocations.
//
// Returns:
//   - []PresetLocation: the ordered preset list
func (f *PresetFile) Locations() []PresetLocation {
	locations := make([]PresetLocation, 0, len(f.Presets))
	for _, p := range f.Presets {
		mode := ModeFirstPerson
		if p.FloorPlan {
			mode = ModeFloorPlan
		}
		locations = append(locations, PresetLocation{
			Name:     p.Name,
			Position: mgl32.Vec3{p.X, p.Y, p.Z},
			Pitch:    p.Pitch,
			Yaw:      p.Yaw,
			Mode:     mode,
		})
	}
	return locations
}

// Options expands the file into navigator options: the preset list plus any
// non-zero tuning overrides layered over the supplied defaults.
//
// Parameters:
//   - defaults: fallback tuning used for fields the file leaves unset
//
// Returns:
//   - []NavigatorOption: options ready to pass to NewNavigator
func (f *PresetFile) Options(defaults Tuning) []NavigatorOption {
	t := Tuning{
		RotateSpeed:     common.Coalesce(f.Tuning.RotateSpeed, defaults.RotateSpeed),
		PanSpeed:        common.Coalesce(f.Tuning.PanSpeed, defaults.PanSpeed),
		DollySpeed:      common.Coalesce(f.Tuning.DollySpeed, defaults.DollySpeed),
		ZoomSpeed:       common.Coalesce(f.Tuning.ZoomSpeed, defaults.ZoomSpeed),
		CollisionOffset: common.Coalesce(f.Tuning.CollisionOffset, defaults.CollisionOffset),
		ArrivalEpsilon:  common.Coalesce(f.Tuning.ArrivalEpsilon, defaults.ArrivalEpsilon),
		TransitionRate:  common.Coalesce(f.Tuning.TransitionRate, defaults.TransitionRate),
		LiveRate:        common.Coalesce(f.Tuning.LiveRate, defaults.LiveRate),
		TourDwell:       common.Coalesce(msToDuration(f.Tuning.TourDwellMs), defaults.TourDwell),
	}
	return []NavigatorOption{
		WithPresets(f.Locations()...),
		WithTuning(t),
	}
}
