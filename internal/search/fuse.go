package search

// Fusion weights: items present in both rankings blend keyword and
// semantic scores; items in only one ranking are dampened so agreement
// between the two paths wins.
const (
	keywordWeight   = 0.4
	semanticWeight  = 0.6
	singleListScale = 0.5
)

// Fuse merges a normalized keyword ranking with a semantic ranking.
// Both inputs carry scores in 0..1.
func Fuse(keyword, semantic []Result) []Result {
	type key struct {
		kind string
		id   string
	}
	merged := make(map[key]*Result, len(keyword)+len(semantic))
	order := make([]key, 0, len(keyword)+len(semantic))

	for _, r := range semantic {
		k := key{string(r.Kind), r.ID}
		merged[k] = &Result{Kind: r.Kind, ID: r.ID, Score: r.Score * singleListScale}
		order = append(order, k)
	}
	for _, r := range keyword {
		k := key{string(r.Kind), r.ID}
		if existing, ok := merged[k]; ok {
			// In both lists: recover the raw semantic score and blend.
			sem := existing.Score / singleListScale
			existing.Score = keywordWeight*r.Score + semanticWeight*sem
			continue
		}
		merged[k] = &Result{Kind: r.Kind, ID: r.ID, Score: r.Score * singleListScale}
		order = append(order, k)
	}

	out := make([]Result, 0, len(merged))
	for _, k := range order {
		out = append(out, *merged[k])
	}
	return out
}
