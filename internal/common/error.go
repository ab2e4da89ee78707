package common

import "errors"

// ErrBusy is returned when an action starts while another is in flight.
var ErrBusy = errors.New("request already in progress")
