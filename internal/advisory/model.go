package advisory

// Snippet is one ranked evidence excerpt returned by the vector retrieval
// service. Scores are comparable only within a single response; higher means
// more relevant there, nothing more.
type Snippet struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Citation points a suggestion back at the evidence it rests on.
type Citation struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// Suggestion is a clinician-facing advisory item. Every suggestion cites at
// least one retrieved snippet; confidence is in [0,1] and non-increasing by
// position in the returned sequence.
type Suggestion struct {
	Text       string     `json:"text"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
}
