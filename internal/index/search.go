package index

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tdzio/tdz/internal/model"
)

// Posting is one keyword-index hit. Score is bm25 rescaled so higher is
// better.
type Posting struct {
	Kind      model.Kind
	ID        string
	Score     float64
	UpdatedAt int64
}

// VectorHit is one semantic-index hit.
type VectorHit struct {
	Kind  model.Kind
	ID    string
	Score float64
}

// SearchKeyword runs an FTS5 match restricted to kinds (nil means all
// searchable kinds), ordered by relevance then recency.
func (x *Index) SearchKeyword(query string, kinds []model.Kind, limit int) ([]Posting, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	match := buildMatchQuery(query)
	args := []any{match}
	kindClause := ""
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		kindClause = " AND f.kind IN (" + strings.Join(placeholders, ", ") + ")"
	}
	args = append(args, limit)

	// bm25 returns smaller-is-better; negate so callers see a
	// descending score.
	rows, err := x.db.Query(`
		SELECT f.kind, f.id, -bm25(artifacts_fts) AS score, COALESCE(a.updated_at, 0)
		FROM artifacts_fts f
		LEFT JOIN artifacts a ON a.kind = f.kind AND a.id = f.id
		WHERE artifacts_fts MATCH ?`+kindClause+`
		ORDER BY score DESC, a.updated_at DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		var p Posting
		var kind string
		if err := rows.Scan(&kind, &p.ID, &p.Score, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan keyword hit: %w", err)
		}
		p.Kind = model.Kind(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SearchVector scans stored vectors and returns cosine hits at or above
// threshold, best first, at most topK.
func (x *Index) SearchVector(query []float32, kinds []model.Kind, threshold float64, topK int) ([]VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if topK <= 0 {
		topK = 20
	}
	args := []any{}
	kindClause := ""
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		kindClause = "WHERE kind IN (" + strings.Join(placeholders, ", ") + ")"
	}
	rows, err := x.db.Query(`SELECT kind, id, dims, vec FROM vectors `+kindClause, args...)
	if err != nil {
		return nil, fmt.Errorf("vector scan: %w", err)
	}
	defer rows.Close()

	var hits []VectorHit
	for rows.Next() {
		var kind, id string
		var dims int
		var blob []byte
		if err := rows.Scan(&kind, &id, &dims, &blob); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		vec := decodeVector(blob, dims)
		if len(vec) != len(query) {
			continue
		}
		score := Cosine(query, vec)
		if score < threshold {
			continue
		}
		hits = append(hits, VectorHit{Kind: model.Kind(kind), ID: id, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// buildMatchQuery builds a safe FTS5 MATCH expression scoped to the
// text column. Unquoted hyphenated tokens are quoted so the FTS parser
// does not read them as operators.
func buildMatchQuery(userQuery string) string {
	q := strings.TrimSpace(userQuery)
	if q == "" {
		return `text:""`
	}
	return "text: (" + sanitizeMatch(q) + ")"
}

func sanitizeMatch(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)

	inQuotes := false
	i := 0
	for i < len(q) {
		c := q[i]
		if c == '"' {
			inQuotes = !inQuotes
			b.WriteByte(c)
			i++
			continue
		}
		if inQuotes || c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' {
			b.WriteByte(c)
			i++
			continue
		}

		start := i
		for i < len(q) {
			cc := q[i]
			if cc == '"' || cc == '(' || cc == ')' || cc == ' ' || cc == '\t' || cc == '\n' || cc == '\r' {
				break
			}
			i++
		}
		tok := q[start:i]

		switch strings.ToUpper(tok) {
		case "AND", "OR", "NOT", "NEAR":
			b.WriteString(tok)
			continue
		}
		// Quote anything that could trip the FTS parser. Each token
		// becomes a plain phrase.
		if strings.ContainsAny(tok, `-:*^.,;'`) {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(tok, `"`, `""`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte, dims int) []float32 {
	if len(b) < dims*4 {
		return nil
	}
	v := make([]float32, dims)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
