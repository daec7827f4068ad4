package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aryan-2511/lexiclarus/internal/clause"
	"github.com/aryan-2511/lexiclarus/internal/extract"
	"github.com/aryan-2511/lexiclarus/internal/model"
)

// errorDetail mirrors the {"detail": ...} error envelope the frontend
// already understands.
type errorDetail struct {
	Detail string `json:"detail"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, errorDetail{Detail: msg})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "lexiclarus API running"})
}

// analyzeDocument accepts a multipart upload under the "file" field and
// returns one result record per extracted clause.
func (s *Server) analyzeDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file upload failed: expected multipart field 'file'")
		return
	}

	if s.cfg.Server.MaxUploadBytes > 0 && fileHeader.Size > s.cfg.Server.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, "uploaded file is too large")
		return
	}

	s.log.Info("received file", "filename", fileHeader.Filename, "size", fileHeader.Size)

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "error reading uploaded file")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "error reading uploaded file")
		return
	}

	fullText, err := extract.FromUpload(fileHeader.Filename, data)
	switch {
	case errors.Is(err, extract.ErrUnsupportedFileType):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, extract.ErrNoText):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, "error extracting text: "+err.Error())
		return
	}

	// Overall deadline: a hung remote call with retries must not pin the
	// request forever.
	ctx := c.Request.Context()
	if s.cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
	}

	results, err := s.analyzer.AnalyzeDocument(ctx, fullText)
	if err != nil {
		if errors.Is(err, clause.ErrNoClauses) {
			fail(c, http.StatusBadRequest, "no clauses identified in the document")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, model.AnalysisResponse{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Clauses:     results,
	})
}

// askQuestion answers a free-text question against caller-provided
// context (typically the flattened document text from a prior analysis).
func (s *Server) askQuestion(c *gin.Context) {
	var req model.QARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: question and context are required")
		return
	}

	ctx := c.Request.Context()
	if s.cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
	}

	answer := s.analyzer.Answer(ctx, req.Question, req.Context)
	c.JSON(http.StatusOK, model.QAResponse{
		Question: req.Question,
		Answer:   answer,
	})
}
