package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/logger"
	"github.com/samvad-hq/samvad-wiki-quiz/internal/storage"
)

const maxRequestBytes = 1 << 20

// Generator runs the quiz pipeline for one address.
type Generator interface {
	Generate(ctx context.Context, address string) (domain.GeneratedQuiz, error)
}

// History is the read/delete side of quiz storage.
type History interface {
	ListQuizzes(ctx context.Context) ([]domain.StoredQuiz, error)
	GetQuiz(ctx context.Context, id int64) (domain.StoredQuiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
}

// Handlers serves the quiz endpoints.
type Handlers struct {
	gen     Generator
	history History
	log     logger.Logger
}

// NewHandlers builds the endpoint handlers.
func NewHandlers(gen Generator, history History, log logger.Logger) *Handlers {
	return &Handlers{gen: gen, history: history, log: logger.Ensure(log)}
}

type generateRequest struct {
	URL     string `json:"url"`
	Address string `json:"address"`
}

func (req generateRequest) target() string {
	if u := strings.TrimSpace(req.URL); u != "" {
		return u
	}
	return strings.TrimSpace(req.Address)
}

// Generate handles POST /generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeDetail(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	address := req.target()
	if address == "" {
		writeDetail(w, h.log, http.StatusBadRequest, "url is required")
		return
	}

	out, err := h.gen.Generate(r.Context(), address)
	if err != nil {
		code, detail := statusFor(err)
		writeDetail(w, h.log, code, detail)
		return
	}
	writeJSON(w, h.log, http.StatusOK, out)
}

// ListHistory handles GET /history.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.history.ListQuizzes(r.Context())
	if err != nil {
		h.log.ErrorObj("list history failed", "error", err.Error())
		writeDetail(w, h.log, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	out := make([]domain.GeneratedQuiz, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, historyEntry(q))
	}
	writeJSON(w, h.log, http.StatusOK, out)
}

// GetHistory handles GET /history/{id}.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quizID(w, r)
	if !ok {
		return
	}
	q, err := h.history.GetQuiz(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeDetail(w, h.log, http.StatusNotFound, "Quiz not found")
	case err != nil:
		h.log.ErrorObj("get history failed", "error", err.Error())
		writeDetail(w, h.log, http.StatusInternalServerError, "Error: "+err.Error())
	default:
		writeJSON(w, h.log, http.StatusOK, historyEntry(q))
	}
}

// DeleteHistory handles DELETE /history/{id}.
func (h *Handlers) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.quizID(w, r)
	if !ok {
		return
	}
	err := h.history.DeleteQuiz(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeDetail(w, h.log, http.StatusNotFound, "Quiz not found")
	case err != nil:
		h.log.ErrorObj("delete history failed", "error", err.Error())
		writeDetail(w, h.log, http.StatusInternalServerError, "Error: "+err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "ok", "message": "Server is running"})
}

func (h *Handlers) quizID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, h.log, http.StatusBadRequest, "invalid quiz id")
		return 0, false
	}
	return id, true
}

// historyEntry renders a stored quiz in the same shape as a fresh generation.
func historyEntry(q domain.StoredQuiz) domain.GeneratedQuiz {
	questions := q.Questions
	if questions == nil {
		questions = []domain.QuizQuestion{}
	}
	related := q.RelatedTopics
	if related == nil {
		related = []string{}
	}
	return domain.GeneratedQuiz{
		ID:      q.ID,
		Address: q.Address,
		Title:   q.Title,
		QuizResult: domain.QuizResult{
			Summary:       q.Summary,
			Entities:      q.Entities,
			Sections:      []string{},
			Questions:     questions,
			RelatedTopics: related,
		},
	}
}
