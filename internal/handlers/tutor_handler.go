package handlers

import (
	"errors"
	"net/http"

	"codesathi/internal/apperr"
	"codesathi/internal/appstate"
	"codesathi/internal/llm"
	"codesathi/internal/logger"
	"codesathi/internal/tutor"
)

// TutorHandler exposes Sathi over HTTP. Provider failures still answer 200
// with the tutor's fallback text and fallback set.
type TutorHandler struct {
	tutor     *tutor.Tutor
	container *appstate.Container
	log       *logger.Logger
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(t *tutor.Tutor, container *appstate.Container, log *logger.Logger) *TutorHandler {
	return &TutorHandler{
		tutor:     t,
		container: container,
		log:       log.With("component", "tutor-handler"),
	}
}

type chatRequest struct {
	Message       string        `json:"message"`
	History       []llm.Message `json:"history"`
	LessonContext string        `json:"lessonContext"`
}

type hintRequest struct {
	Intent  tutor.Intent `json:"intent"`
	Context string       `json:"context"`
	Message string       `json:"message"`
}

type tutorResponse struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Chat answers a free-form question
func (h *TutorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	reply, err := h.tutor.Chat(r.Context(), req.History, req.Message, req.LessonContext)
	h.respond(w, reply, err)
}

// Hint returns a self-checked hint for the current task
func (h *TutorHandler) Hint(w http.ResponseWriter, r *http.Request) {
	var req hintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	hint := tutor.HintRequest{Intent: req.Intent, Context: req.Context, Message: req.Message}
	user := GetUserFromContext(r.Context())
	if st, err := h.container.Get(r.Context(), user.ID); err == nil {
		if st.Progress != nil {
			hint.Track = st.Progress.CurrentTrack
		}
		if st.Profile != nil {
			hint.AgeGroup = st.Profile.AgeGroup
		}
	}

	reply, err := h.tutor.SelfCheck(r.Context(), hint)
	h.respond(w, reply, err)
}

// Welcome writes the post-onboarding greeting
func (h *TutorHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	st, err := h.container.Get(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, h.log, err, appstate.MsgLoadFailed)
		return
	}
	if st.Profile == nil {
		respondWithError(w, h.log, http.StatusNotFound, ErrNoProfile, "", nil)
		return
	}

	reply, err := h.tutor.WelcomePlan(r.Context(), *st.Profile, st.Profile.RecommendedTrack)
	h.respond(w, reply, err)
}

func (h *TutorHandler) respond(w http.ResponseWriter, reply string, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, tutorResponse{Reply: reply})
	case apperr.IsValidation(err):
		respondWithAppError(w, h.log, err, ErrInternalServerError)
	default:
		if !errors.Is(err, tutor.ErrNotConfigured) {
			h.log.Warn("tutor request failed", "op", apperr.Op(err), "transient", llm.IsTransient(err), "error", err)
		}
		respondJSON(w, http.StatusOK, tutorResponse{Reply: reply, Fallback: true})
	}
}
