package support

// Progress reports generation progress with spec.md §6's fixed stage
// weighting (collision 50, drop 1, draw 1 per layer). Stage is always
// "support"; done/total are monotone non-decreasing within one Generate call.
type Progress interface {
	Report(stage string, done, total int)
}

// noopProgress satisfies Progress when the caller supplies none.
type noopProgress struct{}

func (noopProgress) Report(string, int, int) {}

// stageWeights mirrors spec.md §6's callback weighting.
const (
	collisionWeight = 50
	dropWeight      = 1
	drawWeight      = 1
)
