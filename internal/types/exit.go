package types

const (
	ExitNormal int = 0
	// Unexpected failure, nothing graded
	ExitErrored int = 1
	// Batch finished but at least one item failed
	ExitItemsFailed int = 2
	// A grade record could not be stored
	ExitPersistence int = 3
)
