package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/domain"
)

func rawOf(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func samplePayload(apiID uuid.UUID) *domain.Vorgang {
	person := "Maxi Beispiel"
	kurz := "KlimaG"
	vorwort := "Entwurf eines Gesetzes zur Aenderung des Klimaschutzgesetzes"
	return &domain.Vorgang{
		ApiID:       apiID,
		Titel:       "Gesetz zur Aenderung des Klimaschutzgesetzes",
		Kurztitel:   &kurz,
		Wahlperiode: 20,
		Typ:         domain.VorgangstypGGEinspruch,
		Ids:         []domain.VgIdent{{Ident: "20/1234", Typ: domain.VgIdentTypInitdrucks}},
		Initiatoren: []domain.Autor{{Person: &person, Organisation: "SPD"}},
		Stationen: []domain.Station{{
			Typ:       domain.StationstypParlInitiativ,
			Parlament: domain.ParlamentBT,
			ZpStart:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
			Gremium: &domain.Gremium{
				Parlament:   domain.ParlamentBT,
				Wahlperiode: 20,
				Name:        "Plenum",
			},
			Dokumente: []domain.Dokument{{
				Hash:          "doc-hash-1",
				Typ:           domain.DoktypEntwurf,
				Titel:         "Drucksache 20/1234",
				Vorwort:       &vorwort,
				Volltext:      "Der Bundestag moege beschliessen ...",
				Link:          "https://example.org/20-1234",
				ZpReferenz:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				ZpModifiziert: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				Autoren:       []domain.Autor{{Organisation: "SPD"}},
			}},
		}},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSubmitVorgangCreateThenIdempotentUpdate(t *testing.T) {
	env := newTestEnv(t)
	collector := uuid.New()
	ctx := collectorContext(collector, 1)
	payload := samplePayload(uuid.New())
	raw := rawOf(t, payload)

	first, err := env.integration.SubmitVorgang(ctx, payload, raw)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !first.Created {
		t.Fatalf("first submission must create")
	}

	second, err := env.integration.SubmitVorgang(ctx, samplePayload(payload.ApiID), raw)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.Created {
		t.Fatalf("second submission must update")
	}
	if second.ID != first.ID || second.ApiID != first.ApiID {
		t.Fatalf("resubmission must land on the same row: first=%+v second=%+v", first, second)
	}

	if n := countRows(t, env.db, &domain.Vorgang{}); n != 1 {
		t.Fatalf("vorgang rows: want=1 got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Station{}); n != 1 {
		t.Fatalf("station rows: want=1 got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Dokument{}); n != 1 {
		t.Fatalf("dokument rows: want=1 got=%d", n)
	}
	if n := countRows(t, env.db, &domain.VgIdent{}); n != 1 {
		t.Fatalf("ident rows: want=1 got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Autor{}); n != 2 {
		t.Fatalf("autor rows: want=2 got=%d", n)
	}
}

func TestSubmitVorgangPartialOverlayKeepsBaseFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := collectorContext(uuid.New(), 1)
	payload := samplePayload(uuid.New())
	if _, err := env.integration.SubmitVorgang(ctx, payload, rawOf(t, payload)); err != nil {
		t.Fatalf("seed submit: %v", err)
	}

	overlayRaw := []byte(`{"api_id":"` + payload.ApiID.String() + `","titel":"Neuer Titel"}`)
	overlay := &domain.Vorgang{ApiID: payload.ApiID, Titel: "Neuer Titel"}
	outcome, err := env.integration.SubmitVorgang(ctx, overlay, overlayRaw)
	if err != nil {
		t.Fatalf("overlay submit: %v", err)
	}
	if outcome.Created {
		t.Fatalf("overlay must update the existing row")
	}

	stored, err := env.repos.Vorgang.GetByApiID(context.Background(), nil, payload.ApiID)
	if err != nil || stored == nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Titel != "Neuer Titel" {
		t.Fatalf("titel: want=%q got=%q", "Neuer Titel", stored.Titel)
	}
	if stored.Kurztitel == nil || *stored.Kurztitel != "KlimaG" {
		t.Fatalf("kurztitel absent from overlay must survive, got=%v", stored.Kurztitel)
	}
	if stored.Wahlperiode != 20 {
		t.Fatalf("wahlperiode must survive, got=%d", stored.Wahlperiode)
	}
	if len(stored.Stationen) != 1 {
		t.Fatalf("stations must survive an overlay without stations, got=%d", len(stored.Stationen))
	}
}

func TestSubmitVorgangAccretesDokumente(t *testing.T) {
	env := newTestEnv(t)
	ctx := collectorContext(uuid.New(), 1)
	payload := samplePayload(uuid.New())
	if _, err := env.integration.SubmitVorgang(ctx, payload, rawOf(t, payload)); err != nil {
		t.Fatalf("seed submit: %v", err)
	}

	next := samplePayload(payload.ApiID)
	next.Stationen[0].Dokumente = []domain.Dokument{{
		Hash:          "doc-hash-2",
		Typ:           domain.DoktypBeschlussempf,
		Titel:         "Beschlussempfehlung",
		Volltext:      "...",
		Link:          "https://example.org/20-1300",
		ZpReferenz:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ZpModifiziert: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
	if _, err := env.integration.SubmitVorgang(ctx, next, rawOf(t, next)); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	stored, err := env.repos.Vorgang.GetByApiID(context.Background(), nil, payload.ApiID)
	if err != nil || stored == nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored.Stationen) != 1 {
		t.Fatalf("station must be matched, not duplicated: got=%d", len(stored.Stationen))
	}
	if len(stored.Stationen[0].Dokumente) != 2 {
		t.Fatalf("documents accrete: want=2 got=%d", len(stored.Stationen[0].Dokumente))
	}
}

func TestSubmitAttributionBounded(t *testing.T) {
	env := newTestEnv(t)
	payload := samplePayload(uuid.New())
	for i := 0; i < 6; i++ {
		ctx := collectorContext(uuid.New(), int64(i+1))
		next := samplePayload(payload.ApiID)
		if _, err := env.integration.SubmitVorgang(ctx, next, rawOf(t, next)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	id, found, err := env.repos.Vorgang.IDByApiID(context.Background(), nil, payload.ApiID)
	if err != nil || !found {
		t.Fatalf("lookup: %v found=%v", err, found)
	}
	records, err := env.attribution.RecentTouches(context.Background(), nil, domain.KindVorgang, id)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("ledger capacity: want=5 got=%d", len(records))
	}
}

// failingAttribution fails the dokument touch so a nested step blows up
// after the vorgang row was already written inside the transaction.
type failingAttribution struct {
	AttributionService
}

func (f *failingAttribution) RecordTouch(ctx context.Context, tx *gorm.DB, kind domain.EntityKind, entityID int64, collectorID uuid.UUID, keyID int64) error {
	if kind == domain.KindDokument {
		return errors.New("ledger unavailable")
	}
	return f.AttributionService.RecordTouch(ctx, tx, kind, entityID, collectorID, keyID)
}

func TestSubmitRollsBackWholeTree(t *testing.T) {
	env := newTestEnv(t)
	log := testLogger(t)
	integration := NewIntegrationService(env.db, env.repos, env.resolver, &failingAttribution{env.attribution}, 2, log)

	payload := samplePayload(uuid.New())
	ctx := collectorContext(uuid.New(), 1)
	if _, err := integration.SubmitVorgang(ctx, payload, rawOf(t, payload)); err == nil {
		t.Fatalf("submission must fail when a nested step fails")
	}

	if n := countRows(t, env.db, &domain.Vorgang{}); n != 0 {
		t.Fatalf("no partial vorgang: got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Station{}); n != 0 {
		t.Fatalf("no partial station: got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Dokument{}); n != 0 {
		t.Fatalf("no partial dokument: got=%d", n)
	}
	if n := countRows(t, env.db, &domain.TouchRecord{}); n != 0 {
		t.Fatalf("no partial touches: got=%d", n)
	}
}

func TestDeleteVorgangCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := collectorContext(uuid.New(), 1)
	payload := samplePayload(uuid.New())
	if _, err := env.integration.SubmitVorgang(ctx, payload, rawOf(t, payload)); err != nil {
		t.Fatalf("seed submit: %v", err)
	}

	if err := env.integration.DeleteVorgang(context.Background(), payload.ApiID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := countRows(t, env.db, &domain.Vorgang{}); n != 0 {
		t.Fatalf("vorgang rows after delete: got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Station{}); n != 0 {
		t.Fatalf("station rows after delete: got=%d", n)
	}
	if err := env.integration.DeleteVorgang(context.Background(), payload.ApiID); err == nil {
		t.Fatalf("second delete must report not found")
	}
}

func TestSubmitSitzungCreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := collectorContext(uuid.New(), 1)
	titel := "Sitzung des Wirtschaftsausschusses"
	payload := &domain.Sitzung{
		Titel:  &titel,
		Termin: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		Nummer: 12,
		Public: true,
		Gremium: &domain.Gremium{
			Parlament:   domain.ParlamentBT,
			Wahlperiode: 20,
			Name:        "Ausschuss für Wirtschaft",
		},
		Tops: []domain.Top{{Nummer: 1, Titel: "Anhoerung"}},
	}
	first, err := env.integration.SubmitSitzung(ctx, payload, rawOf(t, payload))
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if !first.Created {
		t.Fatalf("first submission must create")
	}

	again := *payload
	second, err := env.integration.SubmitSitzung(ctx, &again, rawOf(t, &again))
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if second.Created || second.ID != first.ID {
		t.Fatalf("same gremium and nummer must update: first=%+v second=%+v", first, second)
	}
	if n := countRows(t, env.db, &domain.Sitzung{}); n != 1 {
		t.Fatalf("sitzung rows: want=1 got=%d", n)
	}
	if n := countRows(t, env.db, &domain.Top{}); n != 1 {
		t.Fatalf("top rows: want=1 got=%d", n)
	}
}
