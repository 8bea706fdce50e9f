package pipeline

// State is a pipeline state
type State int

// Pipeline states, in order
const (
	StateIdle State = iota
	StateRepoEnsured
	StateCloned
	StateDownloaded
	StateExtracted
	StatePublished
	StateDirectoryResolved
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateRepoEnsured:       "repo_ensured",
	StateCloned:            "cloned",
	StateDownloaded:        "downloaded",
	StateExtracted:         "extracted",
	StatePublished:         "published",
	StateDirectoryResolved: "directory_resolved",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Stages label progress events and errors with the step that produced them
const (
	StageValidate = "validate"
	StageEnsure   = "ensure_repo"
	StageClone    = "clone"
	StagePrune    = "prune"
	StageDownload = "download"
	StageExtract  = "extract"
	StagePublish  = "publish"
	StageResolve  = "resolve"
	StageComplete = "complete"
)

// TransitionFunc observes state changes. A failed run ends with a
// transition from the last reached state to StateFailed.
type TransitionFunc func(from, to State)
