package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/merge"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/requestdata"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Gremium{},
		&domain.Autor{},
		&domain.Dokument{},
		&domain.Vorgang{},
		&domain.VgIdent{},
		&domain.Station{},
		&domain.Sitzung{},
		&domain.Top{},
		&domain.ApiKey{},
		&domain.TouchRecord{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

type testEnv struct {
	db          *gorm.DB
	repos       *repos.Repos
	resolver    ResolverService
	attribution AttributionService
	integration IntegrationService
	notifier    *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	log := testLogger(t)
	r := repos.New(db, log)
	notifier := &recordingNotifier{}
	resolver := NewResolverService(r, merge.TrigramScorer{}, ResolverThresholds{Title: 0.66, Author: 0.8}, notifier, log)
	attribution := NewAttributionService(r, 5, log)
	integration := NewIntegrationService(db, r, resolver, attribution, 2, log)
	return &testEnv{
		db:          db,
		repos:       r,
		resolver:    resolver,
		attribution: attribution,
		integration: integration,
		notifier:    notifier,
	}
}

type recordingNotifier struct {
	ambiguous  int
	nearMisses int
	fuzzyHits  int
}

func (n *recordingNotifier) AmbiguousMatch(ctx context.Context, kind domain.EntityKind, chosenID int64, candidateIDs []int64) {
	n.ambiguous++
}

func (n *recordingNotifier) GremiumNearMiss(ctx context.Context, incoming, existing string, score float64) {
	n.nearMisses++
}

func (n *recordingNotifier) AutorFuzzyHit(ctx context.Context, incoming, existing string, score float64) {
	n.fuzzyHits++
}

func collectorContext(collectorID uuid.UUID, keyID int64) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		KeyID:       keyID,
		Scope:       domain.ScopeCollector,
		CollectorID: collectorID,
	})
}

func strPtr(s string) *string { return &s }
