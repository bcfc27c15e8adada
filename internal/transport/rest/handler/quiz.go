package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mindprint/internal/model"
	"mindprint/internal/service"
	"mindprint/internal/session"
	"mindprint/internal/transport/rest/middleware"
)

// QuizHandler handles participant quiz endpoints.
type QuizHandler struct {
	quizSvc      *service.QuizService
	analyticsSvc *service.AnalyticsService
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(quizSvc *service.QuizService, analyticsSvc *service.AnalyticsService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc, analyticsSvc: analyticsSvc}
}

// StartRequest is the request body for starting a quiz.
type StartRequest struct {
	Variant model.Variant `json:"variant"`
}

// AnswerRequest is the request body for submitting an answer.
type AnswerRequest struct {
	Token       string `json:"token"`
	OptionIndex int    `json:"optionIndex"`
}

// Start handles POST /v1/quiz/start.
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	username := middleware.GetUsername(r.Context())

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Variant == "" {
		req.Variant = model.VariantFull
	}

	payload, err := h.quizSvc.Start(r.Context(), userID, username, req.Variant)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	h.analyticsSvc.RecordMessage(userID, username, "start "+string(req.Variant), model.ChannelREST, true)
	writeJSON(w, http.StatusOK, payload)
}

// Answer handles POST /v1/quiz/answers.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next, completed, err := h.quizSvc.SubmitAnswer(r.Context(), userID, userID, req.Token, req.OptionIndex)
	if err != nil {
		writeQuizError(w, err)
		return
	}

	if completed != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"done": true, "result": completed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"done": false, "question": next})
}

// Current handles GET /v1/quiz/current.
func (h *QuizHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	payload, err := h.quizSvc.Current(r.Context(), userID)
	if err != nil {
		writeQuizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Abandon handles POST /v1/quiz/abandon.
func (h *QuizHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.quizSvc.Abandon(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// writeQuizError maps engine errors onto HTTP statuses. Session-state
// errors are user-facing rejections, not server faults.
func writeQuizError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrDuplicateSession):
		writeError(w, http.StatusConflict, "quiz already in progress")
	case errors.Is(err, session.ErrNoSession):
		writeError(w, http.StatusNotFound, "no quiz in progress")
	case errors.Is(err, session.ErrSessionExpired):
		writeError(w, http.StatusGone, "quiz session expired, please restart")
	case errors.Is(err, session.ErrInvalidOption):
		writeError(w, http.StatusBadRequest, "invalid option index")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not your quiz")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
