package worker

import "errors"

var (
	errQueueFull  = errors.New("notice queue full")
	errPoolClosed = errors.New("notice pool closed")
)
