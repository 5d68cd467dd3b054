package handlers

import (
	"net/http"

	"codesathi/internal/appstate"
	"codesathi/internal/lessons"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/recommend"
	"codesathi/internal/service"
)

// APIHandler serves the learner's profile, progress and the catalogs
type APIHandler struct {
	profiles  *service.ProfileService
	progress  *service.ProgressService
	container *appstate.Container
	catalog   *lessons.Catalog
	log       *logger.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(profiles *service.ProfileService, progress *service.ProgressService, container *appstate.Container, catalog *lessons.Catalog, log *logger.Logger) *APIHandler {
	return &APIHandler{
		profiles:  profiles,
		progress:  progress,
		container: container,
		catalog:   catalog,
		log:       log.With("component", "api"),
	}
}

// lessonView is a lesson without its solution patterns
type lessonView struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Track        models.Track         `json:"track"`
	Difficulty   models.Difficulty    `json:"difficulty"`
	XPReward     int                  `json:"xpReward"`
	IntroText    string               `json:"introText"`
	TheoryCards  []lessons.TheoryCard `json:"theoryCards"`
	InitialCode  string               `json:"initialCode"`
	Instructions []string             `json:"instructions"`
	Hints        []string             `json:"hints"`
	Challenge    *challengeView       `json:"challenge,omitempty"`
	Completed    bool                 `json:"completed"`
	Locked       bool                 `json:"locked"`
}

type challengeView struct {
	Description string `json:"description"`
	InitialCode string `json:"initialCode"`
}

type recommendationResponse struct {
	Track  models.Track `json:"track"`
	Label  string       `json:"label"`
	Reason string       `json:"reason"`
}

type badgesResponse struct {
	Earned []models.Badge `json:"earned"`
	All    []models.Badge `json:"all"`
}

type trackRequest struct {
	Track models.Track `json:"track"`
}

// state loads the hydrated state for the signed-in user and writes the
// error response itself when that fails.
func (h *APIHandler) state(w http.ResponseWriter, r *http.Request) (appstate.State, bool) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, h.log, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return appstate.State{}, false
	}
	st, err := h.container.Get(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, h.log, err, appstate.MsgLoadFailed)
		return appstate.State{}, false
	}
	return st, true
}

// State returns the profile and progress together
func (h *APIHandler) State(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// GetProfile returns the onboarding profile
func (h *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if st.Profile == nil {
		respondWithError(w, h.log, http.StatusNotFound, ErrNoProfile, "", nil)
		return
	}
	respondJSON(w, http.StatusOK, st.Profile)
}

// PutProfile completes onboarding for the signed-in user
func (h *APIHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var p models.Profile
	if err := decodeJSON(w, r, &p); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	saved, err := h.profiles.Complete(r.Context(), user.ID, p)
	if err != nil {
		respondWithAppError(w, h.log, err, "Could not save your profile. Please try again.")
		return
	}
	h.container.SetProfile(user.ID, saved)
	respondJSON(w, http.StatusOK, saved)
}

// Recommendation explains the track picked for the stored profile
func (h *APIHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if st.Profile == nil {
		respondWithError(w, h.log, http.StatusNotFound, ErrNoProfile, "", nil)
		return
	}
	track := recommend.Track(*st.Profile)
	respondJSON(w, http.StatusOK, recommendationResponse{
		Track:  track,
		Label:  track.Label(),
		Reason: recommend.Reason(track),
	})
}

// Progress returns XP, streak, completions and badges
func (h *APIHandler) Progress(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, st.Progress)
}

// UpdateTrack switches the current track
func (h *APIHandler) UpdateTrack(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	if !req.Track.Valid() {
		respondWithError(w, h.log, http.StatusBadRequest, "Unknown track", "", nil)
		return
	}

	if err := h.progress.UpdateTrack(r.Context(), user.ID, req.Track); err != nil {
		respondWithAppError(w, h.log, err, service.MsgUpdateTrackFailed)
		return
	}

	fresh, err := h.progress.Get(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, h.log, err, appstate.MsgLoadFailed)
		return
	}
	h.container.SetProgress(user.ID, fresh)
	respondJSON(w, http.StatusOK, fresh)
}

// Badges lists earned badges next to the full catalog
func (h *APIHandler) Badges(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, badgesResponse{
		Earned: h.progress.Badges(st.Progress),
		All:    models.Badges,
	})
}

// Projects lists the showcase projects
func (h *APIHandler) Projects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.Projects)
}

// Lessons lists one track's lessons, defaulting to the current track
func (h *APIHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	track := st.Progress.CurrentTrack
	if raw := r.URL.Query().Get("track"); raw != "" {
		track = models.Track(raw)
		if !track.Valid() {
			respondWithError(w, h.log, http.StatusBadRequest, "Unknown track", "", nil)
			return
		}
	}
	respondJSON(w, http.StatusOK, h.progress.LessonStatus(st.Progress, track))
}

// Lesson returns one lesson's content
func (h *APIHandler) Lesson(w http.ResponseWriter, r *http.Request) {
	lesson, ok := h.catalog.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, h.log, http.StatusNotFound, ErrLessonNotFound, "", nil)
		return
	}
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	view := lessonView{
		ID:           lesson.ID,
		Title:        lesson.Title,
		Description:  lesson.Description,
		Track:        lesson.Track,
		Difficulty:   lesson.Difficulty,
		XPReward:     lesson.XPReward,
		IntroText:    lesson.IntroText,
		TheoryCards:  lesson.TheoryCards,
		InitialCode:  lesson.InitialCode,
		Instructions: lesson.Instructions,
		Hints:        lesson.Hints,
		Completed:    st.Progress.HasCompleted(lesson.ID),
		Locked:       !h.catalog.Unlocked(lesson.ID, st.Progress.HasCompleted),
	}
	if lesson.Challenge != nil {
		view.Challenge = &challengeView{
			Description: lesson.Challenge.Description,
			InitialCode: lesson.Challenge.InitialCode,
		}
	}
	respondJSON(w, http.StatusOK, view)
}
