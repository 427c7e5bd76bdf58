package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in the run index).
const (
	JobStatusQueued    JobStatus = "QUEUED"     // scanned, waiting for the oracle
	JobStatusRunning   JobStatus = "RUNNING"    // oracle call in flight
	JobStatusExtractOK JobStatus = "EXTRACT_OK" // metadata written, copy renamed
	JobStatusNoDate    JobStatus = "NO_DATE"    // metadata written, no date so no rename
	JobStatusFailed    JobStatus = "FAILED"     // terminal failure
)
