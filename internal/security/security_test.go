package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "testPassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("HashPassword() returned %q", hash)
	}

	// Same password produces different hashes (salt)
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "mySecurePassword", hash, true},
		{"wrong password", "wrongPassword", hash, false},
		{"empty password", "", hash, false},
		{"case differs", "MySecurePassword", hash, false},
		{"empty hash", "mySecurePassword", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSRFGenerator(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	again, _ := g.GenerateToken("session-1")
	if token != again {
		t.Error("tokens for the same session should match")
	}
	if !g.ValidateToken("session-1", token) {
		t.Error("ValidateToken() rejected a valid token")
	}
	if g.ValidateToken("session-2", token) {
		t.Error("ValidateToken() accepted a token for another session")
	}
	if NewCSRFGenerator("other").ValidateToken("session-1", token) {
		t.Error("ValidateToken() accepted a token signed with another secret")
	}
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken(\"\") should fail")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request in the window should be rejected")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("bucket should refill after the window")
	}

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("cleanup left %d visitors", len(rl.visitors))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:1234", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "127.0.0.1:1234", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if id, _ := SessionFromRequest(r); id != "" {
		t.Errorf("SessionFromRequest() = %q, want empty", id)
	}

	r.AddCookie(CreateSessionCookie(r, "cookie-session", time.Now().Add(time.Hour)))
	id, bearer := SessionFromRequest(r)
	if id != "cookie-session" || bearer {
		t.Errorf("SessionFromRequest() = %q, %v", id, bearer)
	}

	r.Header.Set("Authorization", "Bearer header-session")
	id, bearer = SessionFromRequest(r)
	if id != "header-session" || !bearer {
		t.Errorf("SessionFromRequest() = %q, %v", id, bearer)
	}
}

func TestVerificationSigner(t *testing.T) {
	s := NewVerificationSigner("verify-secret", time.Hour)

	code, err := s.Issue("user-1", "kid@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, email, err := s.Verify(code)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-1" || email != "kid@example.com" {
		t.Errorf("Verify() = %q, %q", userID, email)
	}

	if _, _, err := NewVerificationSigner("other", time.Hour).Verify(code); err != ErrInvalidVerificationCode {
		t.Errorf("Verify() with wrong secret error = %v", err)
	}
	if _, _, err := s.Verify("not-a-token"); err != ErrInvalidVerificationCode {
		t.Errorf("Verify() garbage error = %v", err)
	}

	expired, err := NewVerificationSigner("verify-secret", -time.Minute).Issue("user-1", "kid@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, _, err := s.Verify(expired); err != ErrInvalidVerificationCode {
		t.Errorf("Verify() expired error = %v", err)
	}
}
