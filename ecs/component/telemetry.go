package component

// Telemetry accumulates per-vehicle stats between log lines.
type Telemetry struct {
	Frames       int
	Airborne     int
	Clamped      int
	Discarded    int
	TopSpeed     float64
	Distance     float64
	LastReported uint64
}

var TelemetryComponent = NewComponent[Telemetry]()
