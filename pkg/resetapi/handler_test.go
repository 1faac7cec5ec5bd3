package resetapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resetd/pkg/common/config"
	"resetd/pkg/common/database"
	"resetd/pkg/reset"
)

type stubResetter struct {
	outcome reset.Outcome
	calls   int
}

func (s *stubResetter) Reset(context.Context) reset.Outcome {
	s.calls++
	return s.outcome
}

// helper to setup router with routes
func setupRouter(r Resetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	RegisterRoutes(engine.Group("/api"), r)
	return engine
}

func post(t *testing.T, engine *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
	return w
}

func TestStatusCode(t *testing.T) {
	cases := map[reset.Outcome]int{
		reset.Succeeded: http.StatusNoContent,
		reset.Rejected:  http.StatusBadRequest,
		reset.Failed:    http.StatusInternalServerError,
	}
	for outcome, want := range cases {
		if got := StatusCode(outcome); got != want {
			t.Errorf("StatusCode(%s) = %d, want %d", outcome, got, want)
		}
	}
}

func TestResetEndpoint(t *testing.T) {
	for _, outcome := range []reset.Outcome{reset.Succeeded, reset.Rejected, reset.Failed} {
		t.Run(outcome.String(), func(t *testing.T) {
			stub := &stubResetter{outcome: outcome}
			w := post(t, setupRouter(stub), "/api/reset-db")

			if w.Code != StatusCode(outcome) {
				t.Errorf("expected %d, got %d", StatusCode(outcome), w.Code)
			}
			if w.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", w.Body.String())
			}
			if stub.calls != 1 {
				t.Errorf("expected one reset call, got %d", stub.calls)
			}
		})
	}
}

func TestResetEndpointOnlyAcceptsPost(t *testing.T) {
	stub := &stubResetter{outcome: reset.Succeeded}
	engine := setupRouter(stub)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/reset-db", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for GET, got %d", w.Code)
	}
	if stub.calls != 0 {
		t.Error("expected no reset for GET")
	}
}

type fixture struct {
	db     *gorm.DB
	mr     *miniredis.Miniredis
	engine *gin.Engine
}

// newFixture wires the real orchestrator to a sqlite database holding
// users (3 rows) and posts (5 rows) and a miniredis cache with one key.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := database.NewPool(config.Database{
		Driver: config.DriverSQLite,
		DB:     filepath.Join(t.TempDir(), "test-misskey.db"),
	}, database.WithQuietSQL(true))
	t.Cleanup(func() { pool.Close() })

	db, err := pool.DB(context.Background())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, s := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id) ON DELETE CASCADE)`,
		`INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b'), (3, 'c')`,
		`INSERT INTO posts (user_id) VALUES (1), (1), (2), (3), (3)`,
	} {
		if err := db.Exec(s).Error; err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	mr := miniredis.RunT(t)
	if err := mr.Set("misskey:meta", "cached"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	o := reset.New(reset.NewDatabase(pool), reset.NewCache(client))
	return &fixture{db: db, mr: mr, engine: setupRouter(o)}
}

func (f *fixture) rows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestResetEndpointEndToEnd(t *testing.T) {
	f := newFixture(t)
	t.Setenv("NODE_ENV", "test")

	for i := 0; i < 2; i++ {
		w := post(t, f.engine, "/api/reset-db")
		if w.Code != http.StatusNoContent {
			t.Fatalf("reset %d: expected 204, got %d", i+1, w.Code)
		}
		if n := f.rows(t, "users"); n != 0 {
			t.Errorf("reset %d: expected users empty, got %d rows", i+1, n)
		}
		if n := f.rows(t, "posts"); n != 0 {
			t.Errorf("reset %d: expected posts empty, got %d rows", i+1, n)
		}
		if keys := f.mr.Keys(); len(keys) != 0 {
			t.Errorf("reset %d: expected empty cache, got %v", i+1, keys)
		}
	}
}

func TestResetEndpointOutsideTestMode(t *testing.T) {
	f := newFixture(t)
	t.Setenv("NODE_ENV", "")

	w := post(t, f.engine, "/api/reset-db")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if n := f.rows(t, "users"); n != 3 {
		t.Errorf("expected users untouched, got %d rows", n)
	}
	if n := f.rows(t, "posts"); n != 5 {
		t.Errorf("expected posts untouched, got %d rows", n)
	}
	if !f.mr.Exists("misskey:meta") {
		t.Error("expected cache untouched")
	}
}

func TestResetEndpointCacheDown(t *testing.T) {
	f := newFixture(t)
	t.Setenv("NODE_ENV", "test")
	f.mr.Close()

	w := post(t, f.engine, "/api/reset-db")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestResetEndpointDatabaseDown(t *testing.T) {
	t.Setenv("NODE_ENV", "test")
	pool := database.NewPool(config.Database{
		Driver: config.DriverPostgres, Host: "127.0.0.1", Port: 1, DB: "test-misskey", User: "postgres",
	}, database.WithQuietSQL(true))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	engine := setupRouter(reset.New(reset.NewDatabase(pool), reset.NewCache(client)))
	w := post(t, engine, "/api/reset-db")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
