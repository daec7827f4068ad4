package model

// Clause is one semantically distinct unit of a legal document's text.
// Clauses are produced once by the extraction stage and never mutated.
type Clause struct {
	Index int    `json:"index"` // 1-based, sequential, no gaps
	Text  string `json:"text"`
}

// ClauseResult is the analysis output derived from exactly one Clause.
// SimplifiedText falls back to the original text when simplification
// degrades, so results always zip 1:1 with their source clauses.
type ClauseResult struct {
	ClauseNumber   int        `json:"clause_number"`
	OriginalClause string     `json:"original_clause"`
	SimplifiedText string     `json:"simplified_text"`
	RiskFlags      []RiskFlag `json:"risk_flags"`
}

// NewClauses wraps raw clause texts into indexed Clauses.
func NewClauses(texts []string) []Clause {
	clauses := make([]Clause, 0, len(texts))
	for i, t := range texts {
		clauses = append(clauses, Clause{Index: i + 1, Text: t})
	}
	return clauses
}
