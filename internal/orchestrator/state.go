package orchestrator

// State identifies a position in the build flow. Transitions are
// strictly forward; the only way back is rollback-then-abort.
type State int

const (
	StateInit State = iota
	StateValidated
	StateTagComposed
	StateRepoBootstrapped
	StateSnapshotted
	StateParentResolved
	StateCrossTrackChecked
	StateBranchReady
	StateMerged
	StateCommitted
	StateBuildInvoked
	StateTagged
	StatePushed
	StatePromoted
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateValidated:         "validated",
	StateTagComposed:       "tag-composed",
	StateRepoBootstrapped:  "repo-bootstrapped",
	StateSnapshotted:       "snapshotted",
	StateParentResolved:    "parent-resolved",
	StateCrossTrackChecked: "cross-track-checked",
	StateBranchReady:       "branch-ready",
	StateMerged:            "merged",
	StateCommitted:         "committed",
	StateBuildInvoked:      "build-invoked",
	StateTagged:            "tagged",
	StatePushed:            "pushed",
	StatePromoted:          "promoted",
	StateDone:              "done",
	StateAborted:           "aborted",
}

// String returns the state name used in verbose traces.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
