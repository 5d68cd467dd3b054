package service

import (
	"context"
	"encoding/json"
	"fmt"

	"codesathi/internal/apperr"
	"codesathi/internal/kvstore"
	"codesathi/internal/logger"
	"codesathi/internal/models"
	"codesathi/internal/recommend"
	"codesathi/internal/repository"
	"codesathi/internal/validation"
)

// BlockedWordChecker reports whether text contains a blocked word
type BlockedWordChecker interface {
	ContainsBlockedWord(ctx context.Context, text string) (bool, error)
}

// ProfileService handles onboarding profiles
type ProfileService struct {
	profiles *repository.ProfileRepository
	kv       kvstore.Store
	blocked  BlockedWordChecker
	log      *logger.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profiles *repository.ProfileRepository, kv kvstore.Store, blocked BlockedWordChecker, log *logger.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		kv:       kv,
		blocked:  blocked,
		log:      log.With("component", "profile"),
	}
}

// Get returns the stored profile with its recommended track, or nil.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.FetchProfile(ctx, userID)
	if err != nil || p == nil {
		return nil, err
	}
	p.RecommendedTrack = recommend.Track(*p)
	return p, nil
}

// Complete validates and stores an onboarding profile and returns it with
// the recommended track filled in.
func (s *ProfileService) Complete(ctx context.Context, userID string, p models.Profile) (*models.Profile, error) {
	if err := s.check(ctx, "completeProfile", p); err != nil {
		return nil, err
	}
	saved, err := s.profiles.SaveProfile(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	saved.RecommendedTrack = recommend.Track(*saved)
	s.log.Info("profile saved", "userId", userID, "recommendedTrack", saved.RecommendedTrack)
	return saved, nil
}

// StagePending keeps a profile until the account's first successful
// sign-in, when it is saved and cleared.
func (s *ProfileService) StagePending(ctx context.Context, userID string, p models.Profile) error {
	const op = "stagePendingProfile"
	if userID == "" {
		return apperr.Validation(op, "userId", "user id is required")
	}
	if err := s.check(ctx, op, p); err != nil {
		return err
	}
	p.RecommendedTrack = ""
	data, err := json.Marshal(p)
	if err != nil {
		return apperr.Wrap(op, fmt.Errorf("failed to encode pending profile: %w", err))
	}
	if err := s.kv.Set(ctx, kvstore.PendingProfileKey(userID), string(data)); err != nil {
		return apperr.Wrap(op, err)
	}
	return nil
}

// Validate runs the checks Complete applies without saving anything.
func (s *ProfileService) Validate(ctx context.Context, p models.Profile) error {
	return s.check(ctx, "validateProfile", p)
}

func (s *ProfileService) check(ctx context.Context, op string, p models.Profile) error {
	if err := validation.ValidateProfile(p); err != nil {
		return err
	}
	if s.blocked == nil {
		return nil
	}
	blocked, err := s.blocked.ContainsBlockedWord(ctx, p.Name)
	if err != nil {
		return apperr.Wrap(op, err)
	}
	if blocked {
		return apperr.Validation(op, "name", "Please choose a different name.")
	}
	return nil
}
