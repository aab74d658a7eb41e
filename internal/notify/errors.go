package notify

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown notify provider")
	ErrDeliveryFailed  = errors.New("notification delivery failed")
)
