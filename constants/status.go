package constants

// JobStatus is the canonical status for rows in the batch job store.
type JobStatus string

// Stable values (store these exact strings).
const (
	JobStatusQueued    JobStatus = "QUEUED"     // queued for processing
	JobStatusRunning   JobStatus = "RUNNING"    // in progress
	JobStatusTextOK    JobStatus = "TEXT_OK"    // stage 1 completed (text extracted)
	JobStatusAssembled JobStatus = "ASSEMBLED"  // stage 2 completed (certificate assembled)
	JobStatusSucceeded JobStatus = "SUCCEEDED"  // XML written
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
	JobStatusDuplicate JobStatus = "DUPLICATE"  // identical content already processed in this run
)
