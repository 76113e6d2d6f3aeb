package rag

import (
	"sort"

	"github.com/xxxsen/foliochat/internal/model"
)

// Aggregate collapses fragments into one document per DocumentKey, keeping
// the metadata of the best scoring fragment under polarity. Fragments with
// no representative link are skipped. Ties keep the first fragment seen and
// documents come out in order of first appearance.
func Aggregate(frags []model.RetrievedFragment, polarity model.ScorePolarity, conv Conventions) []model.ResolvedDocument {
	index := make(map[string]int, len(frags))
	docs := make([]model.ResolvedDocument, 0, len(frags))
	for _, f := range frags {
		link := RepresentativePill(f, conv)
		if link.IsZero() {
			continue
		}
		key := DocumentKey(f)
		doc := model.ResolvedDocument{
			DocKey:    key,
			BestScore: f.Similarity,
			Meta:      ResolveMeta(f, conv),
			Link:      link,
		}
		pos, ok := index[key]
		if !ok {
			index[key] = len(docs)
			docs = append(docs, doc)
			continue
		}
		if polarity.Better(f.Similarity, docs[pos].BestScore) {
			docs[pos] = doc
		}
	}
	return docs
}

// SortByScore orders documents best first; equal scores keep their order.
func SortByScore(docs []model.ResolvedDocument, polarity model.ScorePolarity) []model.ResolvedDocument {
	out := make([]model.ResolvedDocument, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		return polarity.Better(out[i].BestScore, out[j].BestScore)
	})
	return out
}

// FilterType keeps documents of the given type.
func FilterType(docs []model.ResolvedDocument, typ model.DocType) []model.ResolvedDocument {
	out := make([]model.ResolvedDocument, 0, len(docs))
	for _, d := range docs {
		if d.Meta.Type == typ {
			out = append(out, d)
		}
	}
	return out
}
