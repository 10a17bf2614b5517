package post

// Outcome classifies how the save flow ended.
type Outcome int

const (
	// OutcomeSaved means a cache entry was handed to the store.
	OutcomeSaved Outcome = iota
	// OutcomeSkippedNoState means the setup phase never ran.
	OutcomeSkippedNoState
	// OutcomeSkippedDisabled means saving was disabled for this job.
	OutcomeSkippedDisabled
	// OutcomeSkippedEmptyCache means there was nothing worth saving.
	OutcomeSkippedEmptyCache
	// OutcomeRecovered means something failed and was degraded to a
	// warning; the job must not fail because of it.
	OutcomeRecovered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkippedNoState:
		return "skipped, no setup state"
	case OutcomeSkippedDisabled:
		return "skipped, saving disabled"
	case OutcomeSkippedEmptyCache:
		return "skipped, cache empty"
	case OutcomeRecovered:
		return "recovered from failure"
	}
	return "unknown"
}

// Result is the typed outcome of the save flow. Err is only set with
// OutcomeRecovered and has already been reported as a warning. Done
// reports that no asynchronous work remains, so an embedding process
// may terminate early if it wants to.
type Result struct {
	Outcome Outcome
	Err     error
	Done    bool
}
