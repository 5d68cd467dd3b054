// Package validation checks user input before it reaches the services.
// Failures are returned as *apperr.ValidationError.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"codesathi/internal/apperr"
	"codesathi/internal/models"
)

const op = "validate"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Limits
const (
	MinPasswordLength = 6
	MaxNameLength     = 50
	MinPhoneLength    = 7
	MinAddressLength  = 10
	MaxTimePerDay     = 240
)

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation(op, "email", "email is required")
	}
	if !emailRegex.MatchString(email) {
		return apperr.Validation(op, "email", "invalid email format")
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return apperr.Validation(op, "password", "password is required")
	}
	if len(password) < MinPasswordLength {
		return apperr.Validation(op, "password", "password must be at least 6 characters")
	}
	return nil
}

// ValidateName checks a display name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation(op, "name", "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperr.Validation(op, "name", "name must be at most 50 characters")
	}
	return nil
}

// ValidateTrack checks that t is one of the defined tracks
func ValidateTrack(t models.Track) error {
	if !t.Valid() {
		return apperr.Validation(op, "track", "unknown track")
	}
	return nil
}

// ValidateProfile checks a submitted onboarding profile. Contact fields are
// optional but must look plausible when present.
func ValidateProfile(p models.Profile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if !oneOf(p.LearnerType, models.LearnerMyself, models.LearnerChild) {
		return apperr.Validation(op, "learnerType", "choose who is learning")
	}
	if !oneOf(p.AgeGroup, models.Age7to9, models.Age10to12, models.Age13to14) {
		return apperr.Validation(op, "ageGroup", "choose an age group")
	}
	if len(p.Goals) == 0 {
		return apperr.Validation(op, "goals", "pick at least one goal")
	}
	if !oneOf(p.Experience, models.ExperienceNone, models.ExperienceScratch, models.ExperienceCode) {
		return apperr.Validation(op, "experience", "choose an experience level")
	}
	if !oneOf(p.LearningStyle, models.StyleVisual, models.StyleChallenges, models.StyleStep) {
		return apperr.Validation(op, "learningStyle", "choose a learning style")
	}
	if len(p.Devices) == 0 {
		return apperr.Validation(op, "devices", "pick at least one device")
	}
	if p.TimePerDay < 0 || p.TimePerDay > MaxTimePerDay {
		return apperr.Validation(op, "timePerDay", "time per day is out of range")
	}
	if phone := strings.TrimSpace(p.PhoneNumber); phone != "" && len(phone) < MinPhoneLength {
		return apperr.Validation(op, "phoneNumber", "phone number is too short")
	}
	if addr := strings.TrimSpace(p.Address); addr != "" && len(addr) < MinAddressLength {
		return apperr.Validation(op, "address", "address is too short")
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
