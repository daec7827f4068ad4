package model

// AnalysisResponse is the body returned by the document-analysis endpoint.
type AnalysisResponse struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Clauses     []ClauseResult `json:"clauses"`
}

// QARequest is the body accepted by the question-answering endpoint.
type QARequest struct {
	Question string `json:"question" binding:"required"`
	Context  string `json:"context" binding:"required"`
}

// QAResponse echoes the question alongside the answer.
type QAResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
