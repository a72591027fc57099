package api

import "fmt"

var ErrPartitionNotServed = fmt.Errorf("partition not served by this agent")
var ErrFailedToSubmit = fmt.Errorf("failed to submit job")
var ErrFailedToCancel = fmt.Errorf("failed to cancel job")
var ErrFailedToQueryStatus = fmt.Errorf("failed to query job status")
var ErrLogFileNotFound = fmt.Errorf("log file not found")
var ErrLogPathOutsideSpool = fmt.Errorf("log path outside spool directory")
var ErrFailedToUpload = fmt.Errorf("failed to upload")
