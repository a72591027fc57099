package protocol

import "fmt"

// ErrNoServiceAvailable means no registered service matched the query,
// e.g. no agent serves the requested partition.
var ErrNoServiceAvailable = fmt.Errorf("no service available")

var ErrServiceAlreadyExists = fmt.Errorf("service already exists")
var ErrServiceDoesNotExist = fmt.Errorf("service does not exist")

// ErrNoServiceInformed is returned on register operations issued before
// an inform.
var ErrNoServiceInformed = fmt.Errorf("no service informed")
var ErrUnknownOperation = fmt.Errorf("unknown register operation")
