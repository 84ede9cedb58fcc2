package usecases

import "fmt"

// pipelineState tracks a candidate through the transfer pipeline.
type pipelineState string

const (
	stateFetched         pipelineState = "FETCHED"
	stateValidated       pipelineState = "VALIDATED"
	stateMatched         pipelineState = "MATCHED"
	stateSkipped         pipelineState = "SKIPPED"
	stateDownloading     pipelineState = "DOWNLOADING"
	stateStaged          pipelineState = "STAGED"
	stateCommitted       pipelineState = "COMMITTED"
	stateMetadataUpdated pipelineState = "METADATA_UPDATED"
	stateDone            pipelineState = "DONE"
	stateErrored         pipelineState = "ERRORED"
)

func isTerminal(s pipelineState) bool {
	switch s {
	case stateSkipped, stateDone, stateErrored:
		return true
	default:
		return false
	}
}

func allowedTransition(from, to pipelineState) bool {
	if to == stateErrored {
		return !isTerminal(from)
	}
	switch from {
	case stateFetched:
		return to == stateValidated
	case stateValidated:
		return to == stateMatched || to == stateSkipped
	case stateMatched:
		return to == stateSkipped || to == stateDownloading
	case stateDownloading:
		return to == stateStaged
	case stateStaged:
		return to == stateCommitted
	case stateCommitted:
		return to == stateMetadataUpdated
	case stateMetadataUpdated:
		return to == stateDone
	default:
		return false
	}
}

// transferState is the per-candidate mutable pipeline position.
type transferState struct {
	current pipelineState
}

func newTransferState() *transferState {
	return &transferState{current: stateFetched}
}

// advance performs a validated transition. An invalid transition is a
// programming error, not an operational one.
func (s *transferState) advance(to pipelineState) {
	if !allowedTransition(s.current, to) {
		panic(fmt.Sprintf("invalid pipeline transition: %s -> %s", s.current, to))
	}
	s.current = to
}
