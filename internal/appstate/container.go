// Package appstate owns the per-account application state: the learner's
// profile and progress, loaded when a session starts and dropped when it ends.
package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"codesathi/internal/apperr"
	"codesathi/internal/kvstore"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/service"
)

// MsgLoadFailed is the single user-visible message for hydration failures.
const MsgLoadFailed = "Could not load your data. Please try again."

// State is the hydrated view of one account
type State struct {
	Profile  *models.Profile  `json:"profile"`
	Progress *models.Progress `json:"progress"`
	Error    string           `json:"error,omitempty"`
}

// ProfileSource loads and completes profiles
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Complete(ctx context.Context, userID string, p models.Profile) (*models.Profile, error)
}

// ProgressSource loads progress records
type ProgressSource interface {
	Get(ctx context.Context, userID string) (*models.Progress, error)
}

// Container holds one State per signed-in account. A newer hydration or a
// sign-out always supersedes a hydration still in flight.
type Container struct {
	profiles ProfileSource
	progress ProgressSource
	kv       kvstore.Store
	log      *logger.Logger

	mu      sync.Mutex
	entries map[string]State
	gens    map[string]uint64
}

// New creates an empty container
func New(profiles ProfileSource, progress ProgressSource, kv kvstore.Store, log *logger.Logger) *Container {
	return &Container{
		profiles: profiles,
		progress: progress,
		kv:       kv,
		log:      log.With("component", "appstate"),
		entries:  make(map[string]State),
		gens:     make(map[string]uint64),
	}
}

// Attach subscribes the container to session changes: sign-in hydrates,
// sign-out drops the account's state.
func (c *Container) Attach(auth *service.AuthService) (detach func()) {
	return auth.Subscribe(func(ctx context.Context, ev service.SessionEvent) {
		switch ev.Type {
		case service.EventSignedIn:
			if _, err := c.Hydrate(ctx, ev.UserID); err != nil {
				c.log.Warn("hydration after sign-in failed", "userId", ev.UserID, "error", err)
			}
		case service.EventSignedOut:
			c.Drop(ev.UserID)
		}
	})
}

// Get returns the cached state for userID, hydrating it first if needed.
func (c *Container) Get(ctx context.Context, userID string) (State, error) {
	c.mu.Lock()
	st, ok := c.entries[userID]
	c.mu.Unlock()
	if ok && st.Error == "" {
		return st, nil
	}
	return c.Hydrate(ctx, userID)
}

// Hydrate loads profile and progress concurrently, applies any pending
// onboarding profile, and replaces the account's state with the result.
func (c *Container) Hydrate(ctx context.Context, userID string) (State, error) {
	gen := c.begin(userID)

	var (
		profile  *models.Profile
		progress *models.Progress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.profiles.Get(gctx, userID)
		profile = p
		return err
	})
	g.Go(func() error {
		p, err := c.progress.Get(gctx, userID)
		progress = p
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Error("failed to hydrate state", "userId", userID, "op", apperr.Op(err), "error", err)
		failed := State{Error: MsgLoadFailed}
		c.commit(userID, gen, failed)
		return failed, err
	}

	if saved := c.applyPending(ctx, userID); saved != nil {
		profile = saved
	}

	st := State{Profile: profile, Progress: progress}
	c.commit(userID, gen, st)
	return st, nil
}

// applyPending saves the staged onboarding profile, if any. Malformed
// payloads are discarded; a failed save keeps the payload for the next
// sign-in.
func (c *Container) applyPending(ctx context.Context, userID string) *models.Profile {
	key := kvstore.PendingProfileKey(userID)
	raw, err := c.kv.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		c.log.Warn("failed to read pending profile", "userId", userID, "error", err)
		return nil
	}

	if err := checkPendingProfile([]byte(raw)); err != nil {
		c.log.Warn("discarding malformed pending profile", "userId", userID, "error", err)
		c.clearPending(ctx, key)
		return nil
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.log.Warn("discarding malformed pending profile", "userId", userID, "error", err)
		c.clearPending(ctx, key)
		return nil
	}

	saved, err := c.profiles.Complete(ctx, userID, p)
	if err != nil {
		if apperr.IsValidation(err) {
			c.log.Warn("discarding rejected pending profile", "userId", userID, "error", err)
			c.clearPending(ctx, key)
		} else {
			c.log.Warn("pending profile kept for retry", "userId", userID, "error", err)
		}
		return nil
	}
	c.clearPending(ctx, key)
	c.log.Info("pending profile applied", "userId", userID)
	return saved
}

func (c *Container) clearPending(ctx context.Context, key string) {
	if err := c.kv.Delete(ctx, key); err != nil {
		c.log.Warn("failed to clear pending profile", "key", key, "error", err)
	}
}

// SetProfile replaces the cached profile after a successful write.
func (c *Container) SetProfile(userID string, p *models.Profile) {
	c.update(userID, func(st *State) { st.Profile = p })
}

// SetProgress replaces the cached progress after a successful write.
func (c *Container) SetProgress(userID string, p *models.Progress) {
	c.update(userID, func(st *State) { st.Progress = p })
}

// Drop forgets the account's state and cancels any hydration in flight.
func (c *Container) Drop(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	delete(c.entries, userID)
}

func (c *Container) begin(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	return c.gens[userID]
}

func (c *Container) commit(userID string, gen uint64, st State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return
	}
	c.entries[userID] = st
}

func (c *Container) update(userID string, fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.entries[userID]
	if !ok {
		return
	}
	fn(&st)
	c.entries[userID] = st
}
