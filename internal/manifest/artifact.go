package manifest

import "time"

// Kind classifies a written artifact.
type Kind string

const (
	KindFiltered  Kind = "filtered"
	KindLedger    Kind = "interaction_count"
	KindCompiled  Kind = "compiled"
	KindBuckets   Kind = "segment_counts"
	KindHistogram Kind = "histogram"
	KindPie       Kind = "pie"
)

// Kinds lists every artifact kind in pipeline order.
func Kinds() []Kind {
	return []Kind{KindFiltered, KindLedger, KindBuckets, KindCompiled, KindHistogram, KindPie}
}

// Artifact holds metadata for one output file of a run.
type Artifact struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Failure records an input that produced no results.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}
