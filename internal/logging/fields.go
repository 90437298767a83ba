package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID is the standardized structured logging key for acquisition session identifiers.
	FieldSessionID = "session_id"
	// FieldSample is the standardized structured logging key for the sample name.
	FieldSample = "sample"
	// FieldState is the standardized structured logging key for coordinator state names.
	FieldState = "state"
	// FieldDriver is the standardized structured logging key for driver names (microscope, camera, speed_controller).
	FieldDriver = "driver"
	// FieldCommand is the standardized structured logging key for RPC command names.
	FieldCommand = "command"
	// FieldEndpoint is the standardized structured logging key for driver endpoints.
	FieldEndpoint = "endpoint"
	// FieldEventType is the standardized structured logging key for machine-parseable event tags.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take after a failure.
	FieldErrorHint = "error_hint"
	// FieldFrameCount is the standardized structured logging key for collected frame counts.
	FieldFrameCount = "frame_count"
)
