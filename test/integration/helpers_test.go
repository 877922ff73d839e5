package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/poofware/cinema-api/internal/domain"
	"github.com/poofware/cinema-api/internal/health"
	"github.com/poofware/cinema-api/internal/http/handler"
	"github.com/poofware/cinema-api/internal/http/router"
	"github.com/poofware/cinema-api/internal/repository"
	"github.com/poofware/cinema-api/internal/security"
	"github.com/poofware/cinema-api/internal/service"
)

type testServerOptions struct {
	Readiness        *health.ProbeRunner
	WireReadiness    bool
	AuthRateLimitRPM int
}

type testServer struct {
	BaseURL   string
	Client    *http.Client
	Redis     *miniredis.Miniredis
	JWTMgr    *security.JWTManager
	Blacklist *service.RedisTokenBlacklist
	Close     func()
}

// newAPITestServer boots the full stack: sqlite behind gorm, miniredis
// behind the revocation store and rate limiters, and the real router.
func newAPITestServer(t *testing.T) *testServer {
	return newAPITestServerWithOptions(t, testServerOptions{})
}

func newAPITestServerWithOptions(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jwtMgr, err := security.NewJWTManager("cinema-api-test", "cinema-clients", "abcdefghijklmnopqrstuvwxyz123456")
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	blacklist := service.NewRedisTokenBlacklist(redisClient, "")

	users := repository.NewUserRepository(db)
	directors := repository.NewDirectorRepository(db)
	movies := repository.NewMovieRepository(db)

	authSvc := service.NewAuthService(users, jwtMgr, blacklist, time.Hour, 4)

	readiness := opts.Readiness
	if readiness == nil && opts.WireReadiness {
		readiness = health.NewProbeRunner(time.Second, time.Second,
			health.NewGormChecker("sqlite", db),
			health.NewRedisChecker("redis", redisClient),
		)
	}
	authRPM := opts.AuthRateLimitRPM
	if authRPM == 0 {
		authRPM = 1000
	}

	h := router.NewRouter(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc),
		DirectorHandler:  handler.NewDirectorHandler(service.NewDirectorService(directors)),
		MovieHandler:     handler.NewMovieHandler(service.NewMovieService(movies, directors)),
		UserHandler:      handler.NewUserHandler(service.NewUserService(users, 4)),
		JWTManager:       jwtMgr,
		Blacklist:        blacklist,
		CORSOrigins:      []string{"http://localhost"},
		APIRateLimitRPM:  1000,
		AuthRateLimitRPM: authRPM,
		Readiness:        readiness,
	})

	srv := httptest.NewServer(h)
	return &testServer{
		BaseURL:   srv.URL,
		Client:    srv.Client(),
		Redis:     mr,
		JWTMgr:    jwtMgr,
		Blacklist: blacklist,
		Close: func() {
			srv.Close()
			_ = redisClient.Close()
		},
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, headers map[string]string, body string) (*http.Response, apiEnvelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope %q: %v", string(raw), err)
		}
	}
	return resp, env
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func registerAccount(t *testing.T, ts *testServer, username, role string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"pw123456","role":%q}`, username, username, role)
	resp, env := doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/api/auth/register", nil, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s failed: status=%d error=%+v", username, resp.StatusCode, env.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("register %s returned no token: %v %s", username, err, string(env.Data))
	}
	return data.Token
}
