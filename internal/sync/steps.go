package sync

// StepKind identifies what a step result refers to.
type StepKind string

const (
	// StepComposer is the destination composer insert
	StepComposer StepKind = "composer"
	// StepWork is a destination work insert
	StepWork StepKind = "work"
	// StepRecording is a destination recording insert
	StepRecording StepKind = "recording"
	// StepAsset is an asset transfer attempt; asset steps do not count
	// toward progress
	StepAsset StepKind = "asset"
)

// Outcome classifies how a step ended.
type Outcome string

const (
	// OutcomeOK means the step completed
	OutcomeOK Outcome = "ok"
	// OutcomeSkipped means the step was not attempted, e.g. because the
	// parent composer insert failed
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the step was attempted and failed; the transfer
	// continued past it
	OutcomeFailed Outcome = "failed"
)

// StepResult records the outcome of one sub-operation of a push or pull.
// EntityID is the source-side id of the entity the step belongs to.
type StepResult struct {
	Kind     StepKind
	EntityID string
	Outcome  Outcome
	Err      error
}

// Report is the structured record of a completed push or pull. A non-empty
// Failures list does not mean the call failed; partial failure is tolerated.
type Report struct {
	Steps            []StepResult
	BytesTransferred int64
}

func (r *Report) add(kind StepKind, entityID string, outcome Outcome, err error) {
	r.Steps = append(r.Steps, StepResult{Kind: kind, EntityID: entityID, Outcome: outcome, Err: err})
}

// Failures returns the steps that failed.
func (r *Report) Failures() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Outcome == OutcomeFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Skipped returns the steps that were never attempted.
func (r *Report) Skipped() []StepResult {
	var skipped []StepResult
	for _, s := range r.Steps {
		if s.Outcome == OutcomeSkipped {
			skipped = append(skipped, s)
		}
	}
	return skipped
}
