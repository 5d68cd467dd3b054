package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"codesathi/internal/appstate"
	"codesathi/internal/kvstore"
	"codesathi/internal/lessons"
	"codesathi/internal/logger"
	"codesathi/internal/player"
	"codesathi/internal/service"
)

// PlayerHandler drives lesson players over HTTP. Each user and lesson pair
// has at most one live player; its cursor survives restarts in the KV store.
type PlayerHandler struct {
	catalog   *lessons.Catalog
	kv        kvstore.Store
	progress  *service.ProgressService
	container *appstate.Container
	log       *logger.Logger

	mu      sync.Mutex
	players map[string]*playerEntry
	now     func() time.Time
}

type playerEntry struct {
	mu         sync.Mutex
	p          *player.Player
	completion *service.CompletionResult
	lastUsed   time.Time // guarded by PlayerHandler.mu
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(catalog *lessons.Catalog, kv kvstore.Store, progress *service.ProgressService, container *appstate.Container, log *logger.Logger) *PlayerHandler {
	return &PlayerHandler{
		catalog:   catalog,
		kv:        kv,
		progress:  progress,
		container: container,
		log:       log.With("component", "player"),
		players:   make(map[string]*playerEntry),
		now:       time.Now,
	}
}

// Attach drops a user's live players when they sign out. Their cursors stay
// in the KV store, so the next request reopens where they left off.
func (h *PlayerHandler) Attach(auth *service.AuthService) (detach func()) {
	return auth.Subscribe(func(_ context.Context, ev service.SessionEvent) {
		if ev.Type == service.EventSignedOut {
			h.dropUser(ev.UserID)
		}
	})
}

// RunCleanup evicts players idle for longer than idle, every interval until
// ctx is done.
func (h *PlayerHandler) RunCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.evictIdle(idle); n > 0 {
				h.log.Debug("evicted idle players", "count", n)
			}
		}
	}
}

func (h *PlayerHandler) evictIdle(idle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-idle)
	n := 0
	for key, entry := range h.players {
		if entry.lastUsed.Before(cutoff) {
			delete(h.players, key)
			n++
		}
	}
	return n
}

func (h *PlayerHandler) dropUser(userID string) {
	prefix := userID + ":"
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.players {
		if strings.HasPrefix(key, prefix) {
			delete(h.players, key)
		}
	}
}

func (h *PlayerHandler) livePlayers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.players)
}

type runRequest struct {
	Code string `json:"code"`
}

type runResponse struct {
	Result player.RunResult `json:"result"`
	State  player.State     `json:"state"`
}

type revealResponse struct {
	Solution string       `json:"solution"`
	State    player.State `json:"state"`
}

type continueResponse struct {
	State      player.State              `json:"state"`
	Completion *service.CompletionResult `json:"completion,omitempty"`
}

func playerKey(userID, lessonID string) string {
	return userID + ":" + lessonID
}

// Open (re)loads the lesson at its saved cursor
func (h *PlayerHandler) Open(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.open(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	respondJSON(w, http.StatusOK, entry.p.State())
}

// Start leaves the intro
func (h *PlayerHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(ctx context.Context, p *player.Player) error { return p.Start(ctx) })
}

// Next advances to the next theory card or into practice
func (h *PlayerHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(ctx context.Context, p *player.Player) error { return p.NextCard(ctx) })
}

// Back returns to the previous theory card
func (h *PlayerHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func(ctx context.Context, p *player.Player) error { return p.PrevCard(ctx) })
}

// Run evaluates submitted code against the current exercise
func (h *PlayerHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	res, err := entry.p.Run(r.Context(), req.Code)
	if err != nil {
		h.respondWithPlayerError(w, err, ErrInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, runResponse{Result: res, State: entry.p.State()})
}

// Reveal shows the challenge solution after enough failed attempts
func (h *PlayerHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	solution, err := entry.p.Reveal()
	if err != nil {
		h.respondWithPlayerError(w, err, ErrInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, revealResponse{Solution: solution, State: entry.p.State()})
}

// Continue finishes the lesson and records the completion
func (h *PlayerHandler) Continue(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.p.Continue(r.Context()); err != nil {
		h.respondWithPlayerError(w, err, service.MsgSaveLessonFailed)
		return
	}

	user := GetUserFromContext(r.Context())
	h.forget(playerKey(user.ID, entry.p.Lesson().ID), entry)
	respondJSON(w, http.StatusOK, continueResponse{State: entry.p.State(), Completion: entry.completion})
}

func (h *PlayerHandler) step(w http.ResponseWriter, r *http.Request, fn func(context.Context, *player.Player) error) {
	entry, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := fn(r.Context(), entry.p); err != nil {
		h.respondWithPlayerError(w, err, ErrInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, entry.p.State())
}

// lookup returns the live player for the request, opening it when the
// process has not seen it yet.
func (h *PlayerHandler) lookup(w http.ResponseWriter, r *http.Request) (*playerEntry, bool) {
	user := GetUserFromContext(r.Context())
	h.mu.Lock()
	entry, ok := h.players[playerKey(user.ID, r.PathValue("id"))]
	if ok {
		entry.lastUsed = h.now()
	}
	h.mu.Unlock()
	if ok {
		return entry, true
	}
	return h.open(w, r)
}

// open restores a player from the saved cursor and registers it. Locked
// lessons cannot be opened.
func (h *PlayerHandler) open(w http.ResponseWriter, r *http.Request) (*playerEntry, bool) {
	user := GetUserFromContext(r.Context())
	lesson, ok := h.catalog.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, h.log, http.StatusNotFound, ErrLessonNotFound, "", nil)
		return nil, false
	}

	st, err := h.container.Get(r.Context(), user.ID)
	if err != nil {
		respondWithAppError(w, h.log, err, appstate.MsgLoadFailed)
		return nil, false
	}
	if !h.catalog.Unlocked(lesson.ID, st.Progress.HasCompleted) {
		respondWithError(w, h.log, http.StatusBadRequest, ErrLessonLocked, "", nil)
		return nil, false
	}

	entry := &playerEntry{}
	userID := user.ID
	onComplete := func(ctx context.Context) error {
		res, err := h.progress.RecordCompletion(ctx, userID, lesson.ID)
		if err != nil {
			return err
		}
		h.container.SetProgress(userID, res.Progress)
		entry.completion = res
		return nil
	}

	p, err := player.Open(r.Context(), h.kv, userID, lesson, onComplete)
	if err != nil {
		respondWithAppError(w, h.log, err, ErrInternalServerError)
		return nil, false
	}
	entry.p = p

	h.mu.Lock()
	entry.lastUsed = h.now()
	h.players[playerKey(userID, lesson.ID)] = entry
	h.mu.Unlock()
	return entry, true
}

// forget drops entry unless a newer Open already replaced it.
func (h *PlayerHandler) forget(key string, entry *playerEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.players[key] == entry {
		delete(h.players, key)
	}
}

func (h *PlayerHandler) respondWithPlayerError(w http.ResponseWriter, err error, fallbackMsg string) {
	if errors.Is(err, player.ErrInvalidTransition) {
		respondWithError(w, h.log, http.StatusConflict, ErrInvalidStep, "", nil)
		return
	}
	respondWithAppError(w, h.log, err, fallbackMsg)
}
