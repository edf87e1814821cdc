package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/handlers"
	"github.com/parlatrack/backend/internal/merge"
	"github.com/parlatrack/backend/internal/middleware"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/services"
)

type routerEnv struct {
	router       *gin.Engine
	collectorKey string
	adminKey     string
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Gremium{}, &domain.Autor{}, &domain.Dokument{},
		&domain.Vorgang{}, &domain.VgIdent{}, &domain.Station{},
		&domain.Sitzung{}, &domain.Top{}, &domain.ApiKey{}, &domain.TouchRecord{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	reposet := repos.New(db, log)
	notifier := services.NewLogNotifier(log)
	resolver := services.NewResolverService(reposet, merge.TrigramScorer{}, services.ResolverThresholds{Title: 0.66, Author: 0.8}, notifier, log)
	attribution := services.NewAttributionService(reposet, 5, log)
	integration := services.NewIntegrationService(db, reposet, resolver, attribution, 2, log)
	query := services.NewQueryService(reposet, attribution, log)
	auth := services.NewAuthService(db, reposet, log)

	ctx := context.Background()
	collectorKey, _, err := auth.CreateKey(ctx, domain.ScopeCollector, uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("create collector key: %v", err)
	}
	adminKey, _, err := auth.CreateKey(ctx, domain.ScopeAdmin, uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("create admin key: %v", err)
	}

	router := NewRouter(RouterConfig{
		VorgangHandler: handlers.NewVorgangHandler(log, integration, query),
		SitzungHandler: handlers.NewSitzungHandler(log, integration, query),
		AuthHandler:    handlers.NewAuthHandler(log, auth, integration),
		HealthHandler:  handlers.NewHealthHandler(db),
		AuthMiddleware: middleware.NewAuthMiddleware(log, auth),
	})
	return &routerEnv{router: router, collectorKey: collectorKey, adminKey: adminKey}
}

func (env *routerEnv) do(method, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func sampleVorgangBody(apiID uuid.UUID) string {
	return `{
		"api_id": "` + apiID.String() + `",
		"titel": "Gesetz zur Aenderung des Beispielgesetzes",
		"wahlperiode": 20,
		"typ": "gg-einspruch",
		"verfassungsaendernd": false,
		"ids": [{"id": "20/999", "typ": "initdrucks"}],
		"initiatoren": [{"organisation": "SPD"}],
		"stationen": [{
			"typ": "parl-initiativ",
			"parlament": "BT",
			"zp_start": "` + time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339) + `",
			"dokumente": [{
				"hash": "router-doc-1",
				"typ": "entwurf",
				"titel": "Drucksache 20/999",
				"volltext": "...",
				"link": "https://example.org/999",
				"zp_referenz": "2026-02-01T00:00:00Z",
				"zp_modifiziert": "2026-02-01T00:00:00Z",
				"autoren": [{"organisation": "SPD"}]
			}],
			"stellungnahmen": []
		}]
	}`
}

func TestSubmitRequiresAPIKey(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(http.MethodPut, "/api/v1/vorgang", "", sampleVorgangBody(uuid.New()))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: want=401 got=%d", w.Code)
	}
}

func TestSubmitCreateThenUpdateStatus(t *testing.T) {
	env := newRouterEnv(t)
	apiID := uuid.New()
	body := sampleVorgangBody(apiID)

	w := env.do(http.MethodPut, "/api/v1/vorgang", env.collectorKey, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("first submit: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodPut, "/api/v1/vorgang", env.collectorKey, body)
	if w.Code != http.StatusOK {
		t.Fatalf("second submit: want=200 got=%d body=%s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/v1/vorgang/"+apiID.String(), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("read: want=200 got=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Beispielgesetzes") {
		t.Fatalf("read body missing titel: %s", w.Body.String())
	}
}

func TestDeleteNeedsAdminScope(t *testing.T) {
	env := newRouterEnv(t)
	apiID := uuid.New()
	if w := env.do(http.MethodPut, "/api/v1/vorgang", env.collectorKey, sampleVorgangBody(apiID)); w.Code != http.StatusCreated {
		t.Fatalf("seed: got=%d", w.Code)
	}

	w := env.do(http.MethodDelete, "/api/v1/vorgang/"+apiID.String(), env.collectorKey, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("collector delete: want=403 got=%d", w.Code)
	}
	w = env.do(http.MethodDelete, "/api/v1/vorgang/"+apiID.String(), env.adminKey, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: want=204 got=%d", w.Code)
	}
	w = env.do(http.MethodGet, "/api/v1/vorgang/"+apiID.String(), "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("read after delete: want=404 got=%d", w.Code)
	}
}

func TestAdminKeyMaySubmit(t *testing.T) {
	env := newRouterEnv(t)
	w := env.do(http.MethodPut, "/api/v1/vorgang", env.adminKey, sampleVorgangBody(uuid.New()))
	if w.Code != http.StatusCreated {
		t.Fatalf("admin submit: want=201 got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListFilters(t *testing.T) {
	env := newRouterEnv(t)
	if w := env.do(http.MethodPut, "/api/v1/vorgang", env.collectorKey, sampleVorgangBody(uuid.New())); w.Code != http.StatusCreated {
		t.Fatalf("seed: got=%d", w.Code)
	}

	w := env.do(http.MethodGet, "/api/v1/vorgang?wp=20&p=BT", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: want=200 got=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Beispielgesetzes") {
		t.Fatalf("filter must match the seeded vorgang: %s", w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/v1/vorgang?wp=19", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: want=200 got=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "Beispielgesetzes") {
		t.Fatalf("other working period must not match")
	}
}
