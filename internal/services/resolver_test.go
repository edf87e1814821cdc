package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/merge"
)

func seedVorgang(t *testing.T, env *testEnv, v *domain.Vorgang, idents []domain.VgIdent) int64 {
	t.Helper()
	ctx := context.Background()
	if err := env.repos.Vorgang.Create(ctx, nil, v); err != nil {
		t.Fatalf("seed vorgang: %v", err)
	}
	if len(idents) > 0 {
		if err := env.repos.Vorgang.ReplaceIdents(ctx, nil, v.ID, idents); err != nil {
			t.Fatalf("seed idents: %v", err)
		}
	}
	return v.ID
}

func TestResolveVorgangByApiID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	apiID := uuid.New()
	seeded := seedVorgang(t, env, &domain.Vorgang{
		ApiID:       apiID,
		Titel:       "Gesetz zur Sache",
		Wahlperiode: 20,
		Typ:         domain.VorgangstypGGEinspruch,
	}, nil)

	incoming := &domain.Vorgang{
		ApiID:       apiID,
		Titel:       "Completely different title",
		Wahlperiode: 19,
		Typ:         domain.VorgangstypSonstig,
	}
	id, found, err := env.resolver.ResolveVorgang(ctx, nil, incoming)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !found || id != seeded {
		t.Fatalf("api id match: want=(%d,true) got=(%d,%v)", seeded, id, found)
	}
}

func TestResolveVorgangNaturalKeyTiebreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ident := []domain.VgIdent{{Ident: "20/1234", Typ: domain.VgIdentTypInitdrucks}}
	first := seedVorgang(t, env, &domain.Vorgang{
		ApiID: uuid.New(), Titel: "Erster", Wahlperiode: 20, Typ: domain.VorgangstypGGZustimmung,
	}, ident)
	seedVorgang(t, env, &domain.Vorgang{
		ApiID: uuid.New(), Titel: "Zweiter", Wahlperiode: 20, Typ: domain.VorgangstypGGZustimmung,
	}, ident)

	incoming := &domain.Vorgang{
		ApiID:       uuid.New(),
		Titel:       "Dritter",
		Wahlperiode: 20,
		Typ:         domain.VorgangstypGGZustimmung,
		Ids:         []domain.VgIdent{{Ident: "20/1234", Typ: domain.VgIdentTypInitdrucks}},
	}
	for run := 0; run < 2; run++ {
		id, found, err := env.resolver.ResolveVorgang(ctx, nil, incoming)
		if err != nil {
			t.Fatalf("resolve run %d: %v", run, err)
		}
		if !found || id != first {
			t.Fatalf("run %d: want oldest id %d, got=(%d,%v)", run, first, id, found)
		}
	}
	if env.notifier.ambiguous != 2 {
		t.Fatalf("ambiguous notifications: want=2 got=%d", env.notifier.ambiguous)
	}
}

func TestResolveVorgangFuzzyVorwort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vorwort := "Entwurf eines Gesetzes zur Aenderung des Klimaschutzgesetzes des Landes"
	seeded := seedVorgang(t, env, &domain.Vorgang{
		ApiID: uuid.New(), Titel: "Klimaschutz", Wahlperiode: 20, Typ: domain.VorgangstypGGEinspruch,
	}, nil)
	station := &domain.Station{
		VorgangID: seeded,
		Typ:       domain.StationstypParlInitiativ,
		Parlament: domain.ParlamentBT,
		ZpStart:   time.Now(),
	}
	if err := env.repos.Station.Create(ctx, nil, station); err != nil {
		t.Fatalf("seed station: %v", err)
	}
	dok := &domain.Dokument{
		Hash:          "hash-a",
		Typ:           domain.DoktypEntwurf,
		Titel:         "Drucksache 20/1",
		Vorwort:       &vorwort,
		Volltext:      "...",
		Link:          "https://example.org/1",
		ZpReferenz:    time.Now(),
		ZpModifiziert: time.Now(),
	}
	if err := env.repos.Dokument.Create(ctx, nil, dok); err != nil {
		t.Fatalf("seed dokument: %v", err)
	}
	if err := env.repos.Station.SetDokumente(ctx, nil, station.ID, []int64{dok.ID}); err != nil {
		t.Fatalf("link dokument: %v", err)
	}

	nearVorwort := "Entwurf eines Gesetzes zur Aenderung des Klimaschutzgesetzes"
	incoming := &domain.Vorgang{
		ApiID:       uuid.New(),
		Titel:       "Anderer Titel",
		Wahlperiode: 20,
		Typ:         domain.VorgangstypGGEinspruch,
		Stationen: []domain.Station{{
			Typ:       domain.StationstypParlInitiativ,
			Parlament: domain.ParlamentBT,
			Dokumente: []domain.Dokument{{
				Typ:     domain.DoktypEntwurf,
				Vorwort: &nearVorwort,
			}},
		}},
	}
	id, found, err := env.resolver.ResolveVorgang(ctx, nil, incoming)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !found || id != seeded {
		t.Fatalf("fuzzy match: want=(%d,true) got=(%d,%v)", seeded, id, found)
	}
}

func TestResolveVorgangNotFound(t *testing.T) {
	env := newTestEnv(t)
	incoming := &domain.Vorgang{
		ApiID:       uuid.New(),
		Titel:       "Neu",
		Wahlperiode: 21,
		Typ:         domain.VorgangstypSonstig,
	}
	_, found, err := env.resolver.ResolveVorgang(context.Background(), nil, incoming)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if found {
		t.Fatalf("empty database must not match")
	}
}

func TestResolveDokumentPrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	apiID := uuid.New()
	drucksnr := "20/42"
	seeded := &domain.Dokument{
		ApiID:         &apiID,
		Hash:          "hash-b",
		Typ:           domain.DoktypAntrag,
		Titel:         "Antrag",
		Volltext:      "...",
		Drucksnr:      &drucksnr,
		Link:          "https://example.org/2",
		ZpReferenz:    time.Now(),
		ZpModifiziert: time.Now(),
	}
	if err := env.repos.Dokument.Create(ctx, nil, seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	byHash := &domain.Dokument{Hash: "hash-b", Typ: domain.DoktypAntrag}
	id, found, err := env.resolver.ResolveDokument(ctx, nil, byHash)
	if err != nil || !found || id != seeded.ID {
		t.Fatalf("hash match: want=(%d,true) got=(%d,%v,%v)", seeded.ID, id, found, err)
	}

	byApiID := &domain.Dokument{Hash: "other", ApiID: &apiID}
	id, found, err = env.resolver.ResolveDokument(ctx, nil, byApiID)
	if err != nil || !found || id != seeded.ID {
		t.Fatalf("api id match: want=(%d,true) got=(%d,%v,%v)", seeded.ID, id, found, err)
	}

	byDrucksnr := &domain.Dokument{Hash: "hash-c", Drucksnr: &drucksnr}
	id, found, err = env.resolver.ResolveDokument(ctx, nil, byDrucksnr)
	if err != nil || !found || id != seeded.ID {
		t.Fatalf("drucksnr match: want=(%d,true) got=(%d,%v,%v)", seeded.ID, id, found, err)
	}
}

func TestInsertOrRetrieveAutorExact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	person := "Maxi Beispiel"
	first, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Person: &person, Organisation: "SPD"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Person: &person, Organisation: "SPD"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if first != second {
		t.Fatalf("exact retrieve: want=%d got=%d", first, second)
	}
}

func TestInsertOrRetrieveAutorAbsentFieldsWildcard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	// lower threshold so "Foo" vs "Foo e.V." (score 0.5) counts
	resolver := NewResolverService(env.repos, merge.TrigramScorer{}, ResolverThresholds{Title: 0.66, Author: 0.3}, env.notifier, testLogger(t))

	first, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Organisation: "Foo"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Organisation: "Foo e.V."})
	if err != nil {
		t.Fatalf("fuzzy retrieve: %v", err)
	}
	if first != second {
		t.Fatalf("absent person on both sides must not block the match: want=%d got=%d", first, second)
	}
	if env.notifier.fuzzyHits != 1 {
		t.Fatalf("fuzzy hit notifications: want=1 got=%d", env.notifier.fuzzyHits)
	}

	// absent on one side only is not a wildcard
	person := "Maxi Beispiel"
	third, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Person: &person, Organisation: "Foo"})
	if err != nil {
		t.Fatalf("insert with person: %v", err)
	}
	if third == first {
		t.Fatalf("present person must not match an absent one")
	}
}

func TestInsertOrRetrieveAutorFachgebietDistinguishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	landwirtschaft := "Landwirtschaft"
	gesundheit := "Gesundheit"

	first, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{
		Organisation: "Deutscher Bauernverband", Fachgebiet: &landwirtschaft,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	otherSubject, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{
		Organisation: "Deutscher Bauernverband", Fachgebiet: &gesundheit,
	})
	if err != nil {
		t.Fatalf("insert other subject: %v", err)
	}
	if otherSubject == first {
		t.Fatalf("same organisation with dissimilar fachgebiet must stay a separate entity")
	}
	noSubject, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{
		Organisation: "Deutscher Bauernverband",
	})
	if err != nil {
		t.Fatalf("insert without subject: %v", err)
	}
	if noSubject == first || noSubject == otherSubject {
		t.Fatalf("absent fachgebiet must not match a present one")
	}

	again, err := env.resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{
		Organisation: "Deutscher Bauernverband", Fachgebiet: &landwirtschaft,
	})
	if err != nil {
		t.Fatalf("exact retrieve: %v", err)
	}
	if again != first {
		t.Fatalf("exact retrieve with fachgebiet: want=%d got=%d", first, again)
	}
}

func TestInsertOrRetrieveAutorFuzzyHitFillsLobbyregister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resolver := NewResolverService(env.repos, merge.TrigramScorer{}, ResolverThresholds{Title: 0.66, Author: 0.3}, env.notifier, testLogger(t))

	first, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Organisation: "Foo"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	register := "https://lobbyregister.example.org/foo"
	second, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{
		Organisation: "Foo e.V.", Lobbyregister: &register,
	})
	if err != nil {
		t.Fatalf("fuzzy retrieve: %v", err)
	}
	if second != first {
		t.Fatalf("fuzzy retrieve: want=%d got=%d", first, second)
	}

	all, err := env.repos.Autor.All(ctx, nil)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("fuzzy hit must not create a row: %d rows", len(all))
	}
	if all[0].Lobbyregister == nil || *all[0].Lobbyregister != register {
		t.Fatalf("fuzzy hit must fill the missing lobbyregister: %+v", all[0].Lobbyregister)
	}
}

func TestInsertOrRetrieveAutorEqualScoreTiebreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resolver := NewResolverService(env.repos, merge.TrigramScorer{}, ResolverThresholds{Title: 0.66, Author: 0.3}, env.notifier, testLogger(t))

	// two identically named candidates, seeded directly so both rows exist
	first := &domain.Autor{Organisation: "Umweltverband"}
	if err := env.repos.Autor.Create(ctx, nil, first); err != nil {
		t.Fatalf("seed first: %v", err)
	}
	second := &domain.Autor{Organisation: "Umweltverband"}
	if err := env.repos.Autor.Create(ctx, nil, second); err != nil {
		t.Fatalf("seed second: %v", err)
	}

	for run := 0; run < 2; run++ {
		got, err := resolver.InsertOrRetrieveAutor(ctx, nil, &domain.Autor{Organisation: "Umweltverband e.V."})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if got != first.ID {
			t.Fatalf("run %d: equal scores must resolve to the oldest row %d, got %d", run, first.ID, got)
		}
	}
}

func TestInsertOrRetrieveGremiumNearMiss(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first, err := env.resolver.InsertOrRetrieveGremium(ctx, nil, &domain.Gremium{
		Parlament: domain.ParlamentBT, Wahlperiode: 20, Name: "Ausschuss für Wirtschaft",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	exact, err := env.resolver.InsertOrRetrieveGremium(ctx, nil, &domain.Gremium{
		Parlament: domain.ParlamentBT, Wahlperiode: 20, Name: "Ausschuss für Wirtschaft",
	})
	if err != nil {
		t.Fatalf("exact retrieve: %v", err)
	}
	if exact != first {
		t.Fatalf("exact retrieve: want=%d got=%d", first, exact)
	}

	near, err := env.resolver.InsertOrRetrieveGremium(ctx, nil, &domain.Gremium{
		Parlament: domain.ParlamentBT, Wahlperiode: 20, Name: "Ausschuss für Wirtschaft 2",
	})
	if err != nil {
		t.Fatalf("near miss insert: %v", err)
	}
	if near == first {
		t.Fatalf("near miss must still create a fresh row")
	}
	if env.notifier.nearMisses != 1 {
		t.Fatalf("near miss notifications: want=1 got=%d", env.notifier.nearMisses)
	}
}
