package publish

import "fmt"

// Step names reported on failure. The pipeline is a linear chain: the
// first failing step names itself and short-circuits everything after it.
const (
	StepResolveArtifacts = "resolveArtifacts"
	StepCreateEdit       = "createEdit"
	StepUploadArtifact   = "uploadArtifact"
	StepSyncMetadata     = "syncMetadata"
	StepUpdateTrack      = "updateTrack"
	StepPatchChangelog   = "patchChangelog"
	StepCommit           = "commit"
)

// StepError is a fatal pipeline failure, tagged with the step that
// produced it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
