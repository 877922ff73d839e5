package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/poofware/cinema-api/internal/service"
)

func TestLogoutRevokesTokenAcrossTheStack(t *testing.T) {
	ts := newAPITestServer(t)
	defer ts.Close()

	token := registerAccount(t, ts, "revokee", "User")

	// Token works against a protected route before logout.
	resp, _ := doJSON(t, ts.Client, http.MethodGet, ts.BaseURL+"/api/movies", authHeader(token), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 listing movies before logout, got %d", resp.StatusCode)
	}

	resp, env := doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/api/auth/logout", authHeader(token), "")
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("logout failed: status=%d error=%+v", resp.StatusCode, env.Error)
	}

	claims, err := ts.JWTMgr.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	key := "token_blacklist:" + claims.ID
	marker, err := ts.Redis.Get(key)
	if err != nil {
		t.Fatalf("expected blacklist entry %s in redis: %v", key, err)
	}
	if marker != service.RevokedMarker {
		t.Fatalf("expected marker %q, got %q", service.RevokedMarker, marker)
	}
	if ttl := ts.Redis.TTL(key); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected entry TTL within token lifetime, got %v", ttl)
	}

	// Every protected route now rejects the revoked token.
	for _, path := range []string{"/api/movies", "/api/directors"} {
		resp, env = doJSON(t, ts.Client, http.MethodGet, ts.BaseURL+path, authHeader(token), "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s with revoked token, got %d", path, resp.StatusCode)
		}
		if env.Error == nil || env.Error.Code != "TOKEN_REVOKED" {
			t.Fatalf("expected TOKEN_REVOKED for %s, got %+v", path, env.Error)
		}
	}

	// A fresh login issues a new jti that is not revoked.
	resp, env = doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/api/auth/login", nil, `{"username":"revokee","password":"pw123456"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("re-login failed: status=%d error=%+v", resp.StatusCode, env.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	resp, _ = doJSON(t, ts.Client, http.MethodGet, ts.BaseURL+"/api/movies", authHeader(data.Token), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with fresh token, got %d", resp.StatusCode)
	}
}

func TestBlacklistEntryExpiresWithToken(t *testing.T) {
	ts := newAPITestServer(t)
	defer ts.Close()

	token := registerAccount(t, ts, "expiring", "User")
	resp, _ := doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/api/auth/logout", authHeader(token), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}

	claims, err := ts.JWTMgr.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	key := "token_blacklist:" + claims.ID
	if !ts.Redis.Exists(key) {
		t.Fatal("expected blacklist entry before fast-forward")
	}
	ts.Redis.FastForward(2 * time.Hour)
	if ts.Redis.Exists(key) {
		t.Fatal("expected blacklist entry to expire with the token")
	}
}

func TestAuthGateFailsClosedWhenRedisDown(t *testing.T) {
	ts := newAPITestServer(t)
	defer ts.Close()

	token := registerAccount(t, ts, "stranded", "User")
	ts.Redis.Close()

	resp, env := doJSON(t, ts.Client, http.MethodGet, ts.BaseURL+"/api/movies", authHeader(token), "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "BLACKLIST_UNAVAILABLE" {
		t.Fatalf("expected BLACKLIST_UNAVAILABLE, got %+v", env.Error)
	}
}

func TestAuthRateLimitOnLoginEndpoint(t *testing.T) {
	ts := newAPITestServerWithOptions(t, testServerOptions{AuthRateLimitRPM: 2})
	defer ts.Close()

	body := `{"username":"nobody","password":"wrong"}`
	var last *http.Response
	for i := 0; i < 3; i++ {
		last, _ = doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/api/auth/login", nil, body)
	}
	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third login attempt, got %d", last.StatusCode)
	}
	if got := last.Header.Get("Retry-After"); got == "" {
		t.Fatal("expected Retry-After header on limited response")
	}
}

func TestProtectedRoutesRejectTamperedToken(t *testing.T) {
	ts := newAPITestServer(t)
	defer ts.Close()

	token := registerAccount(t, ts, "tamper", "User")
	tampered := token[:len(token)-2] + "xx"

	resp, env := doJSON(t, ts.Client, http.MethodGet, ts.BaseURL+"/api/movies", authHeader(tampered), "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %+v", env.Error)
	}
}
