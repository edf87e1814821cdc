package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/merge"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

// ResolverThresholds carries the similarity cutoffs of the fuzzy
// fallbacks. Scores must strictly exceed the threshold to count.
type ResolverThresholds struct {
	Title  float64
	Author float64
}

// ResolverService maps incoming payloads onto already persisted rows.
// Absence of a match is a regular outcome, never an error.
type ResolverService interface {
	ResolveVorgang(ctx context.Context, tx *gorm.DB, incoming *domain.Vorgang) (int64, bool, error)
	ResolveStation(ctx context.Context, tx *gorm.DB, vorgangID int64, incoming *domain.Station, gremiumID *int64) (int64, bool, error)
	ResolveDokument(ctx context.Context, tx *gorm.DB, incoming *domain.Dokument) (int64, bool, error)
	ResolveSitzung(ctx context.Context, tx *gorm.DB, incoming *domain.Sitzung, gremiumID int64) (int64, bool, error)
	// InsertOrRetrieveAutor returns the id of an equivalent persisted
	// author, creating one when neither the exact nor the fuzzy pass
	// finds a counterpart.
	InsertOrRetrieveAutor(ctx context.Context, tx *gorm.DB, incoming *domain.Autor) (int64, error)
	// InsertOrRetrieveGremium matches committees exactly on
	// (parlament, wahlperiode, name). Near misses are reported to the
	// notifier and a fresh row is created regardless.
	InsertOrRetrieveGremium(ctx context.Context, tx *gorm.DB, incoming *domain.Gremium) (int64, error)
}

type resolverService struct {
	repos      *repos.Repos
	scorer     merge.Scorer
	thresholds ResolverThresholds
	notifier   MatchNotifier
	log        *logger.Logger
}

func NewResolverService(r *repos.Repos, scorer merge.Scorer, thresholds ResolverThresholds, notifier MatchNotifier, baseLog *logger.Logger) ResolverService {
	svcLog := baseLog.With("service", "ResolverService")
	return &resolverService{repos: r, scorer: scorer, thresholds: thresholds, notifier: notifier, log: svcLog}
}

func (rs *resolverService) ResolveVorgang(ctx context.Context, tx *gorm.DB, incoming *domain.Vorgang) (int64, bool, error) {
	if id, found, err := rs.repos.Vorgang.IDByApiID(ctx, tx, incoming.ApiID); err != nil {
		return 0, false, err
	} else if found {
		return id, true, nil
	}

	ids, err := rs.repos.Vorgang.IDsByNaturalKey(ctx, tx, incoming.Wahlperiode, incoming.Typ, incoming.Ids)
	if err != nil {
		return 0, false, err
	}
	if len(ids) > 0 {
		return rs.pick(ctx, domain.KindVorgang, ids), true, nil
	}

	preambles := entwurfVorworte(incoming)
	if len(preambles) == 0 {
		return 0, false, nil
	}
	rows, err := rs.repos.Vorgang.EntwurfVorworte(ctx, tx, incoming.Wahlperiode, incoming.Typ)
	if err != nil {
		return 0, false, err
	}
	var hits []int64
	seen := map[int64]bool{}
	for _, row := range rows {
		if seen[row.VorgangID] {
			continue
		}
		for _, vorwort := range preambles {
			if rs.scorer.Score(row.Vorwort, vorwort) > rs.thresholds.Title {
				hits = append(hits, row.VorgangID)
				seen[row.VorgangID] = true
				break
			}
		}
	}
	if len(hits) == 0 {
		return 0, false, nil
	}
	return rs.pick(ctx, domain.KindVorgang, hits), true, nil
}

// entwurfVorworte collects the preambles of the initiative drafts
// attached to the incoming procedure's stations.
func entwurfVorworte(v *domain.Vorgang) []string {
	var out []string
	for _, station := range v.Stationen {
		for _, dok := range station.Dokumente {
			if dok.Typ != domain.DoktypEntwurf && dok.Typ != domain.DoktypPreparlEntwurf {
				continue
			}
			if dok.Vorwort != nil && *dok.Vorwort != "" {
				out = append(out, *dok.Vorwort)
			}
		}
	}
	return out
}

func (rs *resolverService) ResolveStation(ctx context.Context, tx *gorm.DB, vorgangID int64, incoming *domain.Station, gremiumID *int64) (int64, bool, error) {
	ids, err := rs.repos.Station.MatchIDs(ctx, tx, vorgangID, incoming.Typ, gremiumID)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return rs.pick(ctx, domain.KindStation, ids), true, nil
}

func (rs *resolverService) ResolveDokument(ctx context.Context, tx *gorm.DB, incoming *domain.Dokument) (int64, bool, error) {
	existing, err := rs.repos.Dokument.GetByHash(ctx, tx, incoming.Hash)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}
	if incoming.ApiID != nil {
		existing, err = rs.repos.Dokument.GetByApiID(ctx, tx, *incoming.ApiID)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			return existing.ID, true, nil
		}
	}
	if incoming.Drucksnr != nil {
		id, found, err := rs.repos.Dokument.IDByDrucksnr(ctx, tx, *incoming.Drucksnr)
		if err != nil {
			return 0, false, err
		}
		if found {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (rs *resolverService) ResolveSitzung(ctx context.Context, tx *gorm.DB, incoming *domain.Sitzung, gremiumID int64) (int64, bool, error) {
	if incoming.ApiID != nil {
		if id, found, err := rs.repos.Sitzung.IDByApiID(ctx, tx, *incoming.ApiID); err != nil {
			return 0, false, err
		} else if found {
			return id, true, nil
		}
	}
	ids, err := rs.repos.Sitzung.IDsByNaturalKey(ctx, tx, gremiumID, incoming.Nummer)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return rs.pick(ctx, domain.KindSitzung, ids), true, nil
}

func (rs *resolverService) InsertOrRetrieveAutor(ctx context.Context, tx *gorm.DB, incoming *domain.Autor) (int64, error) {
	exact, err := rs.repos.Autor.FindExact(ctx, tx, incoming.Person, incoming.Organisation, incoming.Fachgebiet)
	if err != nil {
		return 0, err
	}
	if exact != nil {
		return exact.ID, nil
	}

	all, err := rs.repos.Autor.All(ctx, tx)
	if err != nil {
		return 0, err
	}
	var best *domain.Autor
	bestScore := rs.thresholds.Author
	for i := range all {
		candidate := &all[i]
		if !merge.Similar(rs.scorer, incoming.Person, candidate.Person, rs.thresholds.Author) {
			continue
		}
		if !merge.Similar(rs.scorer, incoming.Fachgebiet, candidate.Fachgebiet, rs.thresholds.Author) {
			continue
		}
		score := rs.scorer.Score(incoming.Organisation, candidate.Organisation)
		if score > bestScore || (score == bestScore && best != nil && candidate.ID < best.ID) {
			best = candidate
			bestScore = score
		}
	}
	if best != nil {
		rs.notifier.AutorFuzzyHit(ctx, incoming.Organisation, best.Organisation, bestScore)
		var fachgebiet, lobbyregister *string
		if best.Fachgebiet == nil {
			fachgebiet = incoming.Fachgebiet
		}
		if best.Lobbyregister == nil {
			lobbyregister = incoming.Lobbyregister
		}
		if err := rs.repos.Autor.UpdateDetails(ctx, tx, best.ID, fachgebiet, lobbyregister); err != nil {
			return 0, err
		}
		return best.ID, nil
	}

	if err := rs.repos.Autor.Create(ctx, tx, incoming); err != nil {
		return 0, err
	}
	return incoming.ID, nil
}

func (rs *resolverService) InsertOrRetrieveGremium(ctx context.Context, tx *gorm.DB, incoming *domain.Gremium) (int64, error) {
	exact, err := rs.repos.Gremium.FindExact(ctx, tx, incoming.Parlament, incoming.Wahlperiode, incoming.Name)
	if err != nil {
		return 0, err
	}
	if exact != nil {
		return exact.ID, nil
	}

	siblings, err := rs.repos.Gremium.ByParlament(ctx, tx, incoming.Parlament)
	if err != nil {
		return 0, err
	}
	for _, sibling := range siblings {
		score := rs.scorer.Score(incoming.Name, sibling.Name)
		if score > rs.thresholds.Title {
			rs.notifier.GremiumNearMiss(ctx, incoming.Name, sibling.Name, score)
			break
		}
	}

	if err := rs.repos.Gremium.Create(ctx, tx, incoming); err != nil {
		return 0, err
	}
	return incoming.ID, nil
}

func (rs *resolverService) pick(ctx context.Context, kind domain.EntityKind, ids []int64) int64 {
	chosen := ids[0]
	for _, id := range ids[1:] {
		if id < chosen {
			chosen = id
		}
	}
	if len(ids) > 1 && rs.notifier != nil {
		rs.notifier.AmbiguousMatch(ctx, kind, chosen, ids)
	}
	return chosen
}
