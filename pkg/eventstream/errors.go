package eventstream

import "errors"

// ErrNilEvent indicates a nil push event payload was provided to a publisher.
var ErrNilEvent = errors.New("nil push event")
