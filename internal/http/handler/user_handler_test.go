package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/poofware/cinema-api/internal/domain"
)

func TestUserCreateDoesNotExposePasswordHash(t *testing.T) {
	env := newTestEnv(t)

	rr, resp := env.do(t, http.MethodPost, "/api/users", "", `{"username":"eve","email":"eve@example.com","password":"pw123456","role":"Admin"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", rr.Body.String())
	}
	var u domain.User
	decodeData(t, resp, &u)
	if u.ID == 0 || u.Role != "Admin" || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, resp := env.do(t, http.MethodPost, "/api/users", "", `{"username":"frank","email":"frank@example.com","password":"pw123456"}`)
	var u domain.User
	decodeData(t, resp, &u)

	rr, _ := env.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", u.ID), "", `{"username":"frank","email":"frank@new.example.com","is_active":false}`)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("update expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", rr.Code)
	}
	var got domain.User
	decodeData(t, resp, &got)
	if got.Email != "frank@new.example.com" || got.IsActive {
		t.Fatalf("expected updated user, got %+v", got)
	}

	rr, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", u.ID), "", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete expected 204, got %d", rr.Code)
	}
	rr, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", u.ID), "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete expected 404, got %d", rr.Code)
	}
}

func TestUserDuplicateCreateConflicts(t *testing.T) {
	env := newTestEnv(t)
	rr, _ := env.do(t, http.MethodPost, "/api/users", "", `{"username":"gina","email":"gina@example.com","password":"pw123456"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first create expected 201, got %d", rr.Code)
	}

	rr, resp := env.do(t, http.MethodPost, "/api/users", "", `{"username":"gina","email":"gina2@example.com","password":"pw123456"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate create expected 409, got %d", rr.Code)
	}
	if resp.Error == nil || resp.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %+v", resp.Error)
	}
}
