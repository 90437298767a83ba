package driver

// Command enumerates every operation a driver service can execute. The
// proxies only ever send these constants, so a remote call that would miss
// its handler is a compile-time visible mistake, not a runtime typo.
type Command string

// Microscope commands.
const (
	CmdIdentity      Command = "identity"
	CmdStageAngle    Command = "stage_angle"
	CmdStagePosition Command = "stage_position"
	CmdSetStageAngle Command = "set_stage_angle"
	CmdStopStage     Command = "stop_stage"
	CmdMagnification Command = "magnification"
	CmdSpotSize      Command = "spot_size"
)

// Camera commands.
const (
	CmdCameraDimensions Command = "camera_dimensions"
	CmdAcquireFrame     Command = "acquire_frame"
)

// Speed controller commands.
const (
	CmdRotationSpeed    Command = "rotation_speed"
	CmdSetRotationSpeed Command = "set_rotation_speed"
)
