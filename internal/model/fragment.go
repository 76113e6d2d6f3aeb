package model

// RetrievedFragment is one indexed chunk as returned by the vector store.
// Metadata is loosely typed; read it through the rag accessors only.
type RetrievedFragment struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	Section    string                 `json:"section"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata"`
	Similarity float64                `json:"similarity"`
}

type DocType string

const (
	DocTypeNone      DocType = ""
	DocTypeCaseStudy DocType = "case-study"
	DocTypeTimeline  DocType = "timeline"
)

type DocMeta struct {
	Type   DocType `json:"type"`
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	URL    string  `json:"url,omitempty"`
	GitHub string  `json:"github,omitempty"`
}

type ResolvedDocument struct {
	DocKey    string  `json:"doc_key"`
	BestScore float64 `json:"best_score"`
	Meta      DocMeta `json:"meta"`
	Link      Pill    `json:"link"`
}

// ScorePolarity tells which end of the vector store score scale is best.
type ScorePolarity string

const (
	// PolarityDistance: lower is more relevant (pgvector <=>).
	PolarityDistance ScorePolarity = "distance"
	// PolaritySimilarity: higher is more relevant (qdrant cosine score).
	PolaritySimilarity ScorePolarity = "similarity"
)

func (p ScorePolarity) Valid() bool {
	return p == PolarityDistance || p == PolaritySimilarity
}

// Better reports whether score a beats score b.
func (p ScorePolarity) Better(a, b float64) bool {
	if p == PolaritySimilarity {
		return a > b
	}
	return a < b
}
