package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/arcadecar/physics"
	"github.com/milk9111/arcadecar/vehicle"
	"gopkg.in/yaml.v3"
)

const (
	VehicleSpecFile = "vehicle.yaml"
	TerrainSpecFile = "terrain.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type VehicleSpec struct {
	Name       string         `yaml:"name"`
	Color      YAMLColor      `yaml:"color"`
	Body       BodySpec       `yaml:"body"`
	Suspension SuspensionSpec `yaml:"suspension"`
	Drive      DriveSpec      `yaml:"drive"`
	Wheels     []WheelSpec    `yaml:"wheels"`
}

type BodySpec struct {
	Mass           float64  `yaml:"mass"`
	HalfExtents    YAMLVec3 `yaml:"half_extents"`
	Spawn          YAMLVec3 `yaml:"spawn"`
	SpawnYaw       float64  `yaml:"spawn_yaw"`
	LinearDamping  float64  `yaml:"linear_damping"`
	AngularDamping float64  `yaml:"angular_damping"`
	Friction       float64  `yaml:"friction"`
}

type SuspensionSpec struct {
	RestLength float64 `yaml:"rest_length"`
	Stiffness  float64 `yaml:"stiffness"`
	Damping    float64 `yaml:"damping"`
	MaxForce   float64 `yaml:"max_force"`
	RaySlack   float64 `yaml:"ray_slack"`
}

type DriveSpec struct {
	EngineForce          float64 `yaml:"engine_force"`
	ReverseForce         float64 `yaml:"reverse_force"`
	BrakeForce           float64 `yaml:"brake_force"`
	BrakeShare           float64 `yaml:"brake_share"`
	LateralGrip          float64 `yaml:"lateral_grip"`
	MaxLateralCorrection float64 `yaml:"max_lateral_correction"`
	CorrectionFactor     float64 `yaml:"correction_factor"`
	SteerAngleMax        float64 `yaml:"steer_angle_max"`
	SteerTorqueGain      float64 `yaml:"steer_torque_gain"`
	SpeedAttenuation     float64 `yaml:"speed_attenuation"`
	MinSpeedFactor       float64 `yaml:"min_speed_factor"`
	MaxSpeed             float64 `yaml:"max_speed"`
	Traction             string  `yaml:"traction"`
}

type WheelSpec struct {
	Name      string   `yaml:"name"`
	Offset    YAMLVec3 `yaml:"offset"`
	Radius    float64  `yaml:"radius"`
	Driven    bool     `yaml:"driven"`
	Steered   bool     `yaml:"steered"`
	Corrected bool     `yaml:"corrected"`
}

// DefaultVehicleSpec mirrors vehicle.DefaultParams and physics.DefaultBodyConfig
// so a prefab only has to list what it changes.
func DefaultVehicleSpec() VehicleSpec {
	p := vehicle.DefaultParams()
	b := physics.DefaultBodyConfig()
	spec := VehicleSpec{
		Name:  "car",
		Color: YAMLColor{Color: color.NRGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0xff}},
		Body: BodySpec{
			Mass:           b.Mass,
			HalfExtents:    YAMLVec3(b.HalfExtents),
			Spawn:          YAMLVec3(b.Position),
			LinearDamping:  b.LinearDamping,
			AngularDamping: b.AngularDamping,
			Friction:       b.Friction,
		},
		Suspension: SuspensionSpec(p.Suspension),
		Drive: DriveSpec{
			EngineForce:          p.Drive.EngineForce,
			ReverseForce:         p.Drive.ReverseForce,
			BrakeForce:           p.Drive.BrakeForce,
			BrakeShare:           p.Drive.BrakeShare,
			LateralGrip:          p.Drive.LateralGrip,
			MaxLateralCorrection: p.Drive.MaxLateralCorrection,
			CorrectionFactor:     p.Drive.CorrectionFactor,
			SteerAngleMax:        p.Drive.SteerAngleMax,
			SteerTorqueGain:      p.Drive.SteerTorqueGain,
			SpeedAttenuation:     p.Drive.SpeedAttenuation,
			MinSpeedFactor:       p.Drive.MinSpeedFactor,
			MaxSpeed:             p.Drive.MaxSpeed,
			Traction:             string(p.Drive.Traction),
		},
	}
	for _, m := range vehicle.DefaultMounts() {
		spec.Wheels = append(spec.Wheels, WheelSpec{
			Name:      m.Name,
			Offset:    YAMLVec3(m.Offset),
			Radius:    m.Radius,
			Driven:    m.Driven,
			Steered:   m.Steered,
			Corrected: m.Corrected,
		})
	}
	return spec
}

// ParseVehicleSpec decodes a vehicle prefab over the defaults.
func ParseVehicleSpec(data []byte) (VehicleSpec, error) {
	spec := DefaultVehicleSpec()
	spec.Wheels = nil
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return VehicleSpec{}, fmt.Errorf("prefabs: unmarshal vehicle: %w", err)
	}
	if len(spec.Wheels) == 0 {
		spec.Wheels = DefaultVehicleSpec().Wheels
	}
	return spec, nil
}

func LoadVehicleSpec(filename string) (VehicleSpec, error) {
	if filename == "" {
		filename = VehicleSpecFile
	}
	data, err := Load(filename)
	if err != nil {
		return VehicleSpec{}, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	spec, err := ParseVehicleSpec(data)
	if err != nil {
		return VehicleSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

func (s VehicleSpec) Params() vehicle.Params {
	return vehicle.Params{
		Suspension: vehicle.SuspensionParams(s.Suspension),
		Drive: vehicle.DriveParams{
			EngineForce:          s.Drive.EngineForce,
			ReverseForce:         s.Drive.ReverseForce,
			BrakeForce:           s.Drive.BrakeForce,
			BrakeShare:           s.Drive.BrakeShare,
			LateralGrip:          s.Drive.LateralGrip,
			MaxLateralCorrection: s.Drive.MaxLateralCorrection,
			CorrectionFactor:     s.Drive.CorrectionFactor,
			SteerAngleMax:        s.Drive.SteerAngleMax,
			SteerTorqueGain:      s.Drive.SteerTorqueGain,
			SpeedAttenuation:     s.Drive.SpeedAttenuation,
			MinSpeedFactor:       s.Drive.MinSpeedFactor,
			MaxSpeed:             s.Drive.MaxSpeed,
			Traction:             vehicle.TractionMode(strings.ToLower(strings.TrimSpace(s.Drive.Traction))),
		},
	}
}

func (s VehicleSpec) Mounts() ([vehicle.WheelCount]vehicle.WheelMount, error) {
	var out [vehicle.WheelCount]vehicle.WheelMount
	if len(s.Wheels) != vehicle.WheelCount {
		return out, fmt.Errorf("prefabs: vehicle %q: want %d wheels, got %d", s.Name, vehicle.WheelCount, len(s.Wheels))
	}
	for i, w := range s.Wheels {
		out[i] = vehicle.WheelMount{
			Name:      w.Name,
			Offset:    mgl64.Vec3(w.Offset),
			Radius:    w.Radius,
			Driven:    w.Driven,
			Steered:   w.Steered,
			Corrected: w.Corrected,
		}
	}
	return out, nil
}

func (s VehicleSpec) BodyConfig() physics.BodyConfig {
	return physics.BodyConfig{
		Mass:           s.Body.Mass,
		HalfExtents:    mgl64.Vec3(s.Body.HalfExtents),
		Position:       mgl64.Vec3(s.Body.Spawn),
		Rotation:       mgl64.QuatRotate(s.Body.SpawnYaw, mgl64.Vec3{0, 1, 0}),
		LinearDamping:  s.Body.LinearDamping,
		AngularDamping: s.Body.AngularDamping,
		Friction:       s.Body.Friction,
	}
}

type TerrainSpec struct {
	Name     string        `yaml:"name"`
	Depth    float64       `yaml:"depth"`
	Friction float64       `yaml:"friction"`
	Profiles []ProfileSpec `yaml:"profiles"`
}

// ProfileSpec is one ground polyline in the XY side plane.
type ProfileSpec struct {
	Points [][2]float64 `yaml:"points"`
}

func LoadTerrainSpec(filename string) (TerrainSpec, error) {
	if filename == "" {
		filename = TerrainSpecFile
	}
	spec, err := LoadSpec[TerrainSpec](filename)
	if err != nil {
		return TerrainSpec{}, err
	}
	if len(spec.Profiles) == 0 {
		return TerrainSpec{}, fmt.Errorf("prefabs: %s: no profiles", filename)
	}
	return spec, nil
}

// Build adds the terrain to w.
func (t TerrainSpec) Build(w *physics.World) error {
	w.SetTerrainDepth(t.Depth)
	for i, p := range t.Profiles {
		points := make([]cp.Vector, 0, len(p.Points))
		for _, pt := range p.Points {
			points = append(points, cp.Vector{X: pt[0], Y: pt[1]})
		}
		if err := w.AddGround(points, t.Friction); err != nil {
			return fmt.Errorf("prefabs: terrain %q profile %d: %w", t.Name, i, err)
		}
	}
	return nil
}

// YAMLVec3 accepts either a [x, y, z] sequence or an {x, y, z} mapping.
type YAMLVec3 mgl64.Vec3

func (v *YAMLVec3) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("vec3 needs 3 values, got %d", len(xs))
		}
		*v = YAMLVec3{xs[0], xs[1], xs[2]}
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		*v = YAMLVec3{m.X, m.Y, m.Z}
	default:
		return fmt.Errorf("vec3 must be a sequence or mapping")
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
