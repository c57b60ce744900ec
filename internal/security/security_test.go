package security

import (
	"crypto/tls"
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
		t.Errorf("HashPassword() returned %q", hash)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"incorrect password", "wrongPassword", hash, false},
		{"empty password", "", hash, false},
		{"no stored hash", password, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSRF(t *testing.T) {
	csrf := NewCSRF("secret")
	token := csrf.Token("session-1")

	if token == "" {
		t.Fatal("empty token")
	}
	if token != csrf.Token("session-1") {
		t.Error("token is not stable for a session")
	}
	if !csrf.Valid("session-1", token) {
		t.Error("own token rejected")
	}
	if csrf.Valid("session-2", token) {
		t.Error("token accepted for another session")
	}
	if NewCSRF("other").Valid("session-1", token) {
		t.Error("token accepted under another secret")
	}
	if csrf.Token("") != "" || csrf.Valid("", "") {
		t.Error("empty session must not produce or accept tokens")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("keys must be limited independently")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("window did not refill")
	}

	now = now.Add(3 * time.Minute)
	if removed := rl.Prune(); removed != 2 {
		t.Errorf("Prune() removed %d, want 2", removed)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.3"}, "1.1.1.1:80", "10.0.0.3"},
		{"remote addr", nil, "192.168.1.5:5123", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCookies(t *testing.T) {
	plain := httptest.NewRequest("GET", "/", nil)
	secure := httptest.NewRequest("GET", "/", nil)
	secure.TLS = &tls.ConnectionState{}

	if c := NewCookie(plain, SessionCookie, "v", time.Now()); c.Secure || !c.HttpOnly {
		t.Errorf("plain cookie = %+v", c)
	}
	if c := NewCookie(secure, SessionCookie, "v", time.Now()); !c.Secure {
		t.Error("TLS request should set Secure")
	}
	if c := ExpiredCookie(plain, SessionCookie); c.MaxAge != -1 || c.Value != "" {
		t.Errorf("expired cookie = %+v", c)
	}
	if GenerateSessionID() == GenerateSessionID() {
		t.Error("session IDs repeat")
	}
}
