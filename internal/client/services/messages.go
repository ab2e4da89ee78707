package services

import (
	"errors"

	"github.com/dmitrijs2005/coachlogin/internal/client/capture"
	"github.com/dmitrijs2005/coachlogin/internal/client/client"
	"github.com/dmitrijs2005/coachlogin/internal/common"
)

// Texts shown to the user.
const (
	MsgPasswordLoginFailed = "Login failed. Please try again later."
	MsgFaceLoginFailed     = "Face recognition failed. Please try again."
	MsgCameraUnavailable   = "Camera is not available. Please check permissions and try again."
	MsgResetRejected       = "Unable to process your request. Please try again."
	MsgResetFailed         = "An error occurred. Please try again later."
	MsgResetSent           = "Password reset link sent to your email."
	MsgBusy                = "A request is already in progress."
)

// Describe reduces err to one displayable line: the server's detail when
// it sent one, fallback otherwise.
func Describe(err error, fallback string) string {
	if d, ok := client.Detail(err); ok {
		return d
	}
	return fallback
}

// DescribeLoginError picks the message for a failed login of the given flow.
func DescribeLoginError(flow Flow, err error) string {
	switch {
	case errors.Is(err, common.ErrBusy):
		return MsgBusy
	case capture.IsCaptureError(err):
		return MsgCameraUnavailable
	case flow == FlowFace:
		return Describe(err, MsgFaceLoginFailed)
	default:
		return Describe(err, MsgPasswordLoginFailed)
	}
}

// DescribeResetError picks the message for a failed reset request. A
// rejection by the server and a failed exchange read differently, but both
// are the same failure kind to the caller.
func DescribeResetError(err error) string {
	if errors.Is(err, common.ErrBusy) {
		return MsgBusy
	}
	var se *client.ServerError
	if errors.As(err, &se) {
		return Describe(err, MsgResetRejected)
	}
	return MsgResetFailed
}
