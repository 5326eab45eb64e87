package gputest

import "errors"

var errUnknownBuffer = errors.New("gputest: write to a buffer this device did not create")
