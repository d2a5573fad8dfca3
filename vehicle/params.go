package vehicle

import (
	"errors"
	"fmt"

	"github.com/milk9111/arcadecar/common"
)

var (
	ErrNilBody       = errors.New("vehicle: body is nil")
	ErrInvalidParams = errors.New("vehicle: invalid params")
)

// TractionMode selects where propulsion impulses are applied.
type TractionMode string

const (
	// TractionPerWheel pushes at the contact point of each grounded driven wheel.
	TractionPerWheel TractionMode = "per_wheel"
	// TractionCentralized pushes once at the body centre while any wheel is grounded.
	TractionCentralized TractionMode = "centralized"
)

// SuspensionParams tunes the raycast springs. Forces are in newtons.
type SuspensionParams struct {
	RestLength float64
	Stiffness  float64
	Damping    float64
	MaxForce   float64
	// RaySlack extends the probe past the rest length so a wheel keeps
	// contact over small dips.
	RaySlack float64
}

// DriveParams tunes traction, steering, grip and top speed.
type DriveParams struct {
	EngineForce  float64
	ReverseForce float64
	BrakeForce   float64
	// BrakeShare scales BrakeForce while reversing.
	BrakeShare float64

	LateralGrip          float64
	MaxLateralCorrection float64
	CorrectionFactor     float64

	SteerAngleMax    float64
	SteerTorqueGain  float64
	SpeedAttenuation float64
	MinSpeedFactor   float64

	MaxSpeed float64
	Traction TractionMode
}

// Params is the full, immutable tuning of one vehicle.
type Params struct {
	Suspension SuspensionParams
	Drive      DriveParams
}

// DefaultParams returns the arcade tuning for a 1.8 kg chassis.
func DefaultParams() Params {
	return Params{
		Suspension: SuspensionParams{
			RestLength: 0.45,
			Stiffness:  60,
			Damping:    6,
			MaxForce:   120,
			RaySlack:   0.35,
		},
		Drive: DriveParams{
			EngineForce:          12,
			ReverseForce:         8,
			BrakeForce:           8,
			BrakeShare:           0.25,
			LateralGrip:          4,
			MaxLateralCorrection: 6,
			CorrectionFactor:     0.5,
			SteerAngleMax:        0.6,
			SteerTorqueGain:      3,
			SpeedAttenuation:     0.06,
			MinSpeedFactor:       0.15,
			MaxSpeed:             18,
			Traction:             TractionPerWheel,
		},
	}
}

// Validate rejects tuning the frame update cannot use safely.
func (p Params) Validate() error {
	checks := []struct {
		name string
		v    float64
		min  float64
	}{
		{"suspension.rest_length", p.Suspension.RestLength, 0},
		{"suspension.stiffness", p.Suspension.Stiffness, 0},
		{"suspension.damping", p.Suspension.Damping, 0},
		{"suspension.max_force", p.Suspension.MaxForce, 0},
		{"suspension.ray_slack", p.Suspension.RaySlack, 0},
		{"drive.engine_force", p.Drive.EngineForce, 0},
		{"drive.reverse_force", p.Drive.ReverseForce, 0},
		{"drive.brake_force", p.Drive.BrakeForce, 0},
		{"drive.brake_share", p.Drive.BrakeShare, 0},
		{"drive.lateral_grip", p.Drive.LateralGrip, 0},
		{"drive.max_lateral_correction", p.Drive.MaxLateralCorrection, 0},
		{"drive.correction_factor", p.Drive.CorrectionFactor, 0},
		{"drive.steer_angle_max", p.Drive.SteerAngleMax, 0},
		{"drive.steer_torque_gain", p.Drive.SteerTorqueGain, 0},
		{"drive.speed_attenuation", p.Drive.SpeedAttenuation, 0},
		{"drive.min_speed_factor", p.Drive.MinSpeedFactor, 0},
		{"drive.max_speed", p.Drive.MaxSpeed, 0},
	}
	for _, c := range checks {
		if !common.Finite(c.v) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, c.name)
		}
		if c.v < c.min {
			return fmt.Errorf("%w: %s must be >= %v, got %v", ErrInvalidParams, c.name, c.min, c.v)
		}
	}
	if p.Suspension.RestLength == 0 {
		return fmt.Errorf("%w: suspension.rest_length must be positive", ErrInvalidParams)
	}
	if p.Drive.MaxSpeed == 0 {
		return fmt.Errorf("%w: drive.max_speed must be positive", ErrInvalidParams)
	}
	if p.Drive.MinSpeedFactor > 1 {
		return fmt.Errorf("%w: drive.min_speed_factor must be <= 1, got %v", ErrInvalidParams, p.Drive.MinSpeedFactor)
	}
	if p.Drive.CorrectionFactor > 1 {
		return fmt.Errorf("%w: drive.correction_factor must be <= 1, got %v", ErrInvalidParams, p.Drive.CorrectionFactor)
	}
	switch p.Drive.Traction {
	case TractionPerWheel, TractionCentralized:
	default:
		return fmt.Errorf("%w: unknown traction mode %q", ErrInvalidParams, p.Drive.Traction)
	}
	return nil
}
