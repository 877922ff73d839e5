package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/http/middleware"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/security"
	"github.com/poofware/cinema-api/internal/service"
)

type testEnv struct {
	router    chi.Router
	jwtMgr    *security.JWTManager
	blacklist service.TokenBlacklist
}

// newTestEnv wires real services over an in-memory sqlite database and
// mounts every route; the catalog and user routes skip the auth gate so
// handler behavior can be exercised directly.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Director{}, &domain.Movie{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	jwtMgr, err := security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456")
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	blacklist := service.NewInMemoryTokenBlacklist()

	users := repository.NewUserRepository(db)
	directors := repository.NewDirectorRepository(db)
	movies := repository.NewMovieRepository(db)

	authSvc := service.NewAuthService(users, jwtMgr, blacklist, time.Hour, 4)
	authHandler := NewAuthHandler(authSvc)
	directorHandler := NewDirectorHandler(service.NewDirectorService(directors))
	movieHandler := NewMovieHandler(service.NewMovieService(movies, directors))
	userHandler := NewUserHandler(service.NewUserService(users, 4))

	r := chi.NewRouter()
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/register", authHandler.Register)
	r.With(middleware.Auth(jwtMgr, blacklist)).Post("/api/auth/logout", authHandler.Logout)

	mountCRUD := func(prefix string, list, create, get, update, del http.HandlerFunc) {
		r.Get(prefix, list)
		r.Post(prefix, create)
		r.Get(prefix+"/{id}", get)
		r.Put(prefix+"/{id}", update)
		r.Delete(prefix+"/{id}", del)
	}
	mountCRUD("/api/directors", directorHandler.List, directorHandler.Create, directorHandler.Get, directorHandler.Update, directorHandler.Delete)
	mountCRUD("/api/movies", movieHandler.List, movieHandler.Create, movieHandler.Get, movieHandler.Update, movieHandler.Delete)
	mountCRUD("/api/users", userHandler.List, userHandler.Create, userHandler.Get, userHandler.Update, userHandler.Delete)

	return &testEnv{router: r, jwtMgr: jwtMgr, blacklist: blacklist}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, target, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope from %q: %v", rr.Body.String(), err)
		}
	}
	return rr, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %q: %v", string(env.Data), err)
	}
}
