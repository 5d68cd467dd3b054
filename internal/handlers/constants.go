package handlers

const (
	oauthStateCookie    = "oauth_state"
	oauthProviderCookie = "oauth_provider"

	ErrInvalidJSON         = "Invalid request body"
	ErrUnauthorized        = "Please sign in to continue."
	ErrForbiddenCSRF       = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests. Please slow down."
	ErrInternalServerError = "Something went wrong. Please try again."
	ErrNoProfile           = "Finish onboarding first."
	ErrLessonNotFound      = "Lesson not found"
	ErrLessonLocked        = "Finish the previous lesson first."
	ErrInvalidStep         = "That step isn't available right now."

	// Shown instead of the provider's own text for wrong credentials
	ErrBadCredentials = "User not found or password is incorrect."
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10
