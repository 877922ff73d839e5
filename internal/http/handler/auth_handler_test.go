package handler

import (
	"context"
	"net/http"
	"testing"
)

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	rr, resp := env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"alice","email":"alice@example.com","password":"s3cret!"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("register expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var reg registerResponse
	decodeData(t, resp, &reg)
	if reg.ID == 0 || reg.Username != "alice" || reg.Role != "User" || reg.Token == "" {
		t.Fatalf("unexpected register payload: %+v", reg)
	}

	rr, resp = env.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"s3cret!"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var tok tokenResponse
	decodeData(t, resp, &tok)
	claims, err := env.jwtMgr.Parse(tok.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "alice" || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	env := newTestEnv(t)

	rr, _ := env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"bob@example.com","password":"pw123456"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("first register expected 200, got %d", rr.Code)
	}
	rr, resp := env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"bob","email":"other@example.com","password":"pw123456"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register expected 409, got %d", rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT error, got %+v", resp.Error)
	}
}

func TestRegisterMissingFieldsRejected(t *testing.T) {
	env := newTestEnv(t)

	rr, resp := env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"nopassword","email":"x@example.com"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", resp.Error)
	}
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"carol","email":"carol@example.com","password":"rightpw1"}`)

	rr, resp := env.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"carol","password":"wrongpw1"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected INVALID_CREDENTIALS, got %+v", resp.Error)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	_, resp := env.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"dave","email":"dave@example.com","password":"pw123456"}`)
	var reg registerResponse
	decodeData(t, resp, &reg)

	rr, _ := env.do(t, http.MethodPost, "/api/auth/logout", reg.Token, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("logout expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	claims, err := env.jwtMgr.Parse(reg.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	revoked, err := env.blacklist.IsRevoked(context.Background(), claims.ID)
	if err != nil {
		t.Fatalf("blacklist lookup: %v", err)
	}
	if !revoked {
		t.Fatal("expected token jti to be blacklisted after logout")
	}

	// The same token must now bounce off the gate.
	rr, resp2 := env.do(t, http.MethodPost, "/api/auth/logout", reg.Token, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 replaying a revoked token, got %d", rr.Code)
	}
	if resp2.Error == nil || resp2.Error.Code != "TOKEN_REVOKED" {
		t.Fatalf("expected TOKEN_REVOKED, got %+v", resp2.Error)
	}
}

func TestLogoutWithoutTokenUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	rr, _ := env.do(t, http.MethodPost, "/api/auth/logout", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
