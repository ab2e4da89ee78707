package services

// State is where the current login attempt stands.
//
//	Idle -> Submitting -> Success -> SessionWritten -> Navigated
//	                   \-> Failed -> Idle
type State string

const (
	StateIdle           State = "idle"
	StateSubmitting     State = "submitting"
	StateSuccess        State = "success"
	StateSessionWritten State = "session_written"
	StateNavigated      State = "navigated"
	StateFailed         State = "failed"
)

// Flow names the kind of user action being served.
type Flow string

const (
	FlowPassword Flow = "password"
	FlowFace     Flow = "face"
	FlowReset    Flow = "reset"
)
