package advisory

import (
	"fmt"
	"sort"
	"strings"
)

// Synthesizer maps retrieved evidence to ranked, attributed suggestions.
// It is deterministic: the same transcript and evidence always produce the
// same ordered output.
type Synthesizer struct{}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

const excerptLimit = 300

// Synthesize turns the ranked evidence into suggestions. Snippets from the
// same source fold into one suggestion citing all of them. Empty evidence
// yields an empty result; suggestions are never fabricated without a
// citation. Malformed snippets (missing source or text) are the only error.
func (s *Synthesizer) Synthesize(transcriptText string, snippets []Snippet) ([]Suggestion, error) {
	for i, sn := range snippets {
		if strings.TrimSpace(sn.Source) == "" || strings.TrimSpace(sn.Text) == "" {
			return nil, fmt.Errorf("%w: snippet %d missing source or text", ErrSynthesis, i)
		}
	}
	if len(snippets) == 0 {
		return nil, nil
	}

	minScore, maxScore := snippets[0].Score, snippets[0].Score
	for _, sn := range snippets {
		if sn.Score < minScore {
			minScore = sn.Score
		}
		if sn.Score > maxScore {
			maxScore = sn.Score
		}
	}

	terms := transcriptTerms(transcriptText)

	type group struct {
		source   string
		members  []Snippet
		bestRank int
	}
	bySource := make(map[string]*group)
	var order []*group
	for rank, sn := range snippets {
		g, ok := bySource[sn.Source]
		if !ok {
			g = &group{source: sn.Source, bestRank: rank}
			bySource[sn.Source] = g
			order = append(order, g)
		}
		g.members = append(g.members, sn)
	}

	out := make([]Suggestion, 0, len(order))
	for _, g := range order {
		best := g.members[0]

		// Rank component: the snippet's score placed within this
		// response's score range. Scores are not comparable across
		// responses, so a fresh range per call.
		rankScore := 1.0
		if maxScore > minScore {
			rankScore = (best.Score - minScore) / (maxScore - minScore)
		}
		overlap := termOverlap(best.Text, terms)
		confidence := clamp01(0.7*rankScore + 0.3*overlap)

		citations := make([]Citation, 0, len(g.members))
		for _, m := range g.members {
			citations = append(citations, Citation{Source: m.Source, Excerpt: truncate(m.Text, excerptLimit)})
		}

		out = append(out, Suggestion{
			Text:       fmt.Sprintf("Evidence from %s suggests: %s", g.source, truncate(best.Text, excerptLimit)),
			Citations:  citations,
			Confidence: confidence,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

// transcriptTerms builds the lookup set of significant transcript words.
func transcriptTerms(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]\"'")
		if len(w) > 3 {
			terms[w] = true
		}
	}
	return terms
}

// termOverlap is the fraction of a snippet's significant words that also
// appear in the transcript.
func termOverlap(text string, terms map[string]bool) float64 {
	total, hits := 0, 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()[]\"'")
		if len(w) <= 3 {
			continue
		}
		total++
		if terms[w] {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
