package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/merge"
	"github.com/parlatrack/backend/internal/pkg/apierr"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/requestdata"
)

// SubmitOutcome reports where a submission landed and whether the row
// is new. Handlers map Created onto 201 and updates onto 200.
type SubmitOutcome struct {
	ID      int64
	ApiID   uuid.UUID
	Created bool
}

// IntegrationService is the write path. Every submission runs as one
// transaction; a failed nested step rolls back the whole tree.
type IntegrationService interface {
	SubmitVorgang(ctx context.Context, payload *domain.Vorgang, raw []byte) (*SubmitOutcome, error)
	SubmitSitzung(ctx context.Context, payload *domain.Sitzung, raw []byte) (*SubmitOutcome, error)
	DeleteVorgang(ctx context.Context, apiID uuid.UUID) error
	DeleteSitzung(ctx context.Context, apiID uuid.UUID) error
	RollbackCollector(ctx context.Context, collectorID uuid.UUID) (int, error)
}

type integrationService struct {
	db            *gorm.DB
	repos         *repos.Repos
	resolver      ResolverService
	attribution   AttributionService
	retryAttempts int
	log           *logger.Logger
}

func NewIntegrationService(db *gorm.DB, r *repos.Repos, resolver ResolverService, attribution AttributionService, retryAttempts int, baseLog *logger.Logger) IntegrationService {
	svcLog := baseLog.With("service", "IntegrationService")
	if retryAttempts < 1 {
		retryAttempts = 1
	}
	return &integrationService{
		db:            db,
		repos:         r,
		resolver:      resolver,
		attribution:   attribution,
		retryAttempts: retryAttempts,
		log:           svcLog,
	}
}

// vorgangOverlay mirrors the raw request body far enough to hand each
// station overlay to the merge engine unparsed.
type vorgangOverlay struct {
	Stationen []json.RawMessage `json:"stationen"`
}

type stationOverlay struct {
	Dokumente      []json.RawMessage `json:"dokumente"`
	Stellungnahmen []json.RawMessage `json:"stellungnahmen"`
}

type sitzungOverlay struct {
	Dokumente []json.RawMessage `json:"dokumente"`
}

func (is *integrationService) SubmitVorgang(ctx context.Context, payload *domain.Vorgang, raw []byte) (*SubmitOutcome, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.ErrUnauthorized
	}
	var outcome *SubmitOutcome
	err := is.withRetry(ctx, func(tx *gorm.DB) error {
		result, txErr := is.submitVorgangTx(ctx, tx, payload, raw, rd)
		if txErr != nil {
			return txErr
		}
		outcome = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (is *integrationService) submitVorgangTx(ctx context.Context, tx *gorm.DB, payload *domain.Vorgang, raw []byte, rd *requestdata.RequestData) (*SubmitOutcome, error) {
	id, found, err := is.resolver.ResolveVorgang(ctx, tx, payload)
	if err != nil {
		return nil, err
	}

	var overlay vorgangOverlay
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrInvalidArgument, err)
	}

	created := !found
	var apiID uuid.UUID
	if found {
		if err := is.repos.Vorgang.LockByID(ctx, tx, id); err != nil {
			return nil, err
		}
		base, err := is.repos.Vorgang.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, apierr.ErrNotFound
		}
		apiID = base.ApiID
		merged := &domain.Vorgang{}
		if err := mergeInto(base, raw, merged, "stationen"); err != nil {
			return nil, err
		}
		merged.ID = id
		merged.ApiID = base.ApiID
		if err := is.repos.Vorgang.UpdateScalars(ctx, tx, merged); err != nil {
			return nil, err
		}
		if err := is.repos.Vorgang.ReplaceIdents(ctx, tx, id, merged.Ids); err != nil {
			return nil, err
		}
		if err := is.setInitiatoren(ctx, tx, id, merged.Initiatoren); err != nil {
			return nil, err
		}
	} else {
		fresh := *payload
		fresh.ID = 0
		if fresh.ApiID == uuid.Nil {
			fresh.ApiID = uuid.New()
		}
		apiID = fresh.ApiID
		if err := is.repos.Vorgang.Create(ctx, tx, &fresh); err != nil {
			return nil, referential("vorgang", err)
		}
		id = fresh.ID
		if err := is.repos.Vorgang.ReplaceIdents(ctx, tx, id, payload.Ids); err != nil {
			return nil, referential("vg_ident", err)
		}
		if err := is.setInitiatoren(ctx, tx, id, payload.Initiatoren); err != nil {
			return nil, err
		}
	}

	for i := range payload.Stationen {
		var stationRaw json.RawMessage
		if i < len(overlay.Stationen) {
			stationRaw = overlay.Stationen[i]
		}
		if err := is.upsertStation(ctx, tx, id, &payload.Stationen[i], stationRaw, rd); err != nil {
			return nil, err
		}
	}

	if err := is.attribution.RecordTouch(ctx, tx, domain.KindVorgang, id, rd.CollectorID, rd.KeyID); err != nil {
		return nil, err
	}
	return &SubmitOutcome{ID: id, ApiID: apiID, Created: created}, nil
}

func (is *integrationService) setInitiatoren(ctx context.Context, tx *gorm.DB, vorgangID int64, initiatoren []domain.Autor) error {
	autorIDs := make([]int64, 0, len(initiatoren))
	for i := range initiatoren {
		autor := initiatoren[i]
		autor.ID = 0
		autorID, err := is.resolver.InsertOrRetrieveAutor(ctx, tx, &autor)
		if err != nil {
			return referential("autor", err)
		}
		autorIDs = append(autorIDs, autorID)
	}
	return is.repos.Vorgang.SetInitiatoren(ctx, tx, vorgangID, autorIDs)
}

func (is *integrationService) upsertStation(ctx context.Context, tx *gorm.DB, vorgangID int64, payload *domain.Station, raw json.RawMessage, rd *requestdata.RequestData) error {
	var gremiumID *int64
	if payload.Gremium != nil {
		gremium := *payload.Gremium
		gremium.ID = 0
		resolved, err := is.resolver.InsertOrRetrieveGremium(ctx, tx, &gremium)
		if err != nil {
			return referential("gremium", err)
		}
		gremiumID = &resolved
	}

	id, found, err := is.resolver.ResolveStation(ctx, tx, vorgangID, payload, gremiumID)
	if err != nil {
		return err
	}

	var overlay stationOverlay
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &overlay); err != nil {
			return fmt.Errorf("%w: %v", apierr.ErrInvalidArgument, err)
		}
	}

	var keepDok, keepStln []int64
	if found {
		base, err := is.repos.Station.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if base == nil {
			return apierr.ErrNotFound
		}
		merged := &domain.Station{}
		if len(raw) > 0 {
			if err := mergeInto(base, raw, merged, "dokumente", "stellungnahmen", "gremium"); err != nil {
				return err
			}
		} else {
			*merged = *payload
		}
		merged.ID = id
		merged.VorgangID = vorgangID
		if gremiumID != nil {
			merged.GremiumID = gremiumID
		} else {
			merged.GremiumID = base.GremiumID
		}
		if merged.ApiID == nil {
			merged.ApiID = base.ApiID
		}
		if err := is.repos.Station.UpdateScalars(ctx, tx, merged); err != nil {
			return err
		}
		for _, dok := range base.Dokumente {
			keepDok = append(keepDok, dok.ID)
		}
		for _, stln := range base.Stellungnahmen {
			keepStln = append(keepStln, stln.ID)
		}
	} else {
		fresh := *payload
		fresh.ID = 0
		fresh.VorgangID = vorgangID
		fresh.GremiumID = gremiumID
		fresh.Gremium = nil
		if fresh.ApiID == nil {
			generated := uuid.New()
			fresh.ApiID = &generated
		}
		if err := is.repos.Station.Create(ctx, tx, &fresh); err != nil {
			return referential("station", err)
		}
		id = fresh.ID
	}

	dokIDs, err := is.upsertDokumente(ctx, tx, payload.Dokumente, overlay.Dokumente, rd)
	if err != nil {
		return err
	}
	stlnIDs, err := is.upsertDokumente(ctx, tx, payload.Stellungnahmen, overlay.Stellungnahmen, rd)
	if err != nil {
		return err
	}
	if err := is.repos.Station.SetDokumente(ctx, tx, id, union(keepDok, dokIDs)); err != nil {
		return err
	}
	if err := is.repos.Station.SetStellungnahmen(ctx, tx, id, union(keepStln, stlnIDs)); err != nil {
		return err
	}

	return is.attribution.RecordTouch(ctx, tx, domain.KindStation, id, rd.CollectorID, rd.KeyID)
}

func (is *integrationService) upsertDokumente(ctx context.Context, tx *gorm.DB, payloads []domain.Dokument, raws []json.RawMessage, rd *requestdata.RequestData) ([]int64, error) {
	ids := make([]int64, 0, len(payloads))
	for i := range payloads {
		var raw json.RawMessage
		if i < len(raws) {
			raw = raws[i]
		}
		id, err := is.upsertDokument(ctx, tx, &payloads[i], raw, rd)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (is *integrationService) upsertDokument(ctx context.Context, tx *gorm.DB, payload *domain.Dokument, raw json.RawMessage, rd *requestdata.RequestData) (int64, error) {
	id, found, err := is.resolver.ResolveDokument(ctx, tx, payload)
	if err != nil {
		return 0, err
	}

	target := &domain.Dokument{}
	if found {
		base, err := is.repos.Dokument.GetByID(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		if base == nil {
			return 0, apierr.ErrNotFound
		}
		if len(raw) > 0 {
			if err := mergeInto(base, raw, target, "autoren"); err != nil {
				return 0, err
			}
		} else {
			*target = *payload
		}
		target.ID = id
		if target.ApiID == nil {
			target.ApiID = base.ApiID
		}
	} else {
		*target = *payload
		target.ID = 0
		if target.ApiID == nil {
			generated := uuid.New()
			target.ApiID = &generated
		}
	}

	if payload.Vorgaenger != nil {
		prev, err := is.repos.Dokument.GetByApiID(ctx, tx, *payload.Vorgaenger)
		if err != nil {
			return 0, err
		}
		if prev != nil {
			target.VorgaengerID = &prev.ID
		}
	}

	if found {
		if err := is.repos.Dokument.UpdateScalars(ctx, tx, target); err != nil {
			return 0, err
		}
	} else {
		if err := is.repos.Dokument.Create(ctx, tx, target); err != nil {
			return 0, referential("dokument", err)
		}
		id = target.ID
	}

	autorIDs := make([]int64, 0, len(payload.Autoren))
	for i := range payload.Autoren {
		autor := payload.Autoren[i]
		autor.ID = 0
		autorID, err := is.resolver.InsertOrRetrieveAutor(ctx, tx, &autor)
		if err != nil {
			return 0, referential("autor", err)
		}
		autorIDs = append(autorIDs, autorID)
	}
	if len(autorIDs) > 0 || !found {
		if err := is.repos.Dokument.SetAutoren(ctx, tx, id, autorIDs); err != nil {
			return 0, err
		}
	}

	if err := is.attribution.RecordTouch(ctx, tx, domain.KindDokument, id, rd.CollectorID, rd.KeyID); err != nil {
		return 0, err
	}
	return id, nil
}

func (is *integrationService) SubmitSitzung(ctx context.Context, payload *domain.Sitzung, raw []byte) (*SubmitOutcome, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.ErrUnauthorized
	}
	var outcome *SubmitOutcome
	err := is.withRetry(ctx, func(tx *gorm.DB) error {
		result, txErr := is.submitSitzungTx(ctx, tx, payload, raw, rd)
		if txErr != nil {
			return txErr
		}
		outcome = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (is *integrationService) submitSitzungTx(ctx context.Context, tx *gorm.DB, payload *domain.Sitzung, raw []byte, rd *requestdata.RequestData) (*SubmitOutcome, error) {
	if payload.Gremium == nil {
		return nil, fmt.Errorf("%w: sitzung requires a gremium", apierr.ErrInvalidArgument)
	}
	gremium := *payload.Gremium
	gremium.ID = 0
	gremiumID, err := is.resolver.InsertOrRetrieveGremium(ctx, tx, &gremium)
	if err != nil {
		return nil, referential("gremium", err)
	}

	id, found, err := is.resolver.ResolveSitzung(ctx, tx, payload, gremiumID)
	if err != nil {
		return nil, err
	}

	var overlay sitzungOverlay
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("%w: %v", apierr.ErrInvalidArgument, err)
	}

	created := !found
	var apiID uuid.UUID
	var keepDok []int64
	if found {
		base, err := is.repos.Sitzung.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, apierr.ErrNotFound
		}
		merged := &domain.Sitzung{}
		if err := mergeInto(base, raw, merged, "tops", "dokumente", "experten", "gremium"); err != nil {
			return nil, err
		}
		merged.ID = id
		merged.GremiumID = gremiumID
		if merged.ApiID == nil {
			merged.ApiID = base.ApiID
		}
		if merged.ApiID != nil {
			apiID = *merged.ApiID
		}
		if err := is.repos.Sitzung.UpdateScalars(ctx, tx, merged); err != nil {
			return nil, err
		}
		for _, dok := range base.Dokumente {
			keepDok = append(keepDok, dok.ID)
		}
	} else {
		fresh := *payload
		fresh.ID = 0
		fresh.GremiumID = gremiumID
		fresh.Gremium = nil
		if fresh.ApiID == nil {
			generated := uuid.New()
			fresh.ApiID = &generated
		}
		apiID = *fresh.ApiID
		if err := is.repos.Sitzung.Create(ctx, tx, &fresh); err != nil {
			return nil, referential("sitzung", err)
		}
		id = fresh.ID
	}

	dokIDs, err := is.upsertDokumente(ctx, tx, payload.Dokumente, overlay.Dokumente, rd)
	if err != nil {
		return nil, err
	}
	if err := is.repos.Sitzung.SetDokumente(ctx, tx, id, union(keepDok, dokIDs)); err != nil {
		return nil, err
	}

	expertIDs := make([]int64, 0, len(payload.Experten))
	for i := range payload.Experten {
		expert := payload.Experten[i]
		expert.ID = 0
		expertID, err := is.resolver.InsertOrRetrieveAutor(ctx, tx, &expert)
		if err != nil {
			return nil, referential("autor", err)
		}
		expertIDs = append(expertIDs, expertID)
	}
	if len(expertIDs) > 0 || created {
		if err := is.repos.Sitzung.SetExperten(ctx, tx, id, expertIDs); err != nil {
			return nil, err
		}
	}

	if len(payload.Tops) > 0 || created {
		tops := make([]domain.Top, len(payload.Tops))
		copy(tops, payload.Tops)
		for i := range tops {
			resolved, err := is.upsertDokumente(ctx, tx, tops[i].Dokumente, nil, rd)
			if err != nil {
				return nil, err
			}
			tops[i].Dokumente = make([]domain.Dokument, len(resolved))
			for j, dokID := range resolved {
				tops[i].Dokumente[j] = domain.Dokument{ID: dokID}
			}
		}
		if err := is.repos.Sitzung.ReplaceTops(ctx, tx, id, tops); err != nil {
			return nil, err
		}
	}

	if err := is.attribution.RecordTouch(ctx, tx, domain.KindSitzung, id, rd.CollectorID, rd.KeyID); err != nil {
		return nil, err
	}
	return &SubmitOutcome{ID: id, ApiID: apiID, Created: created}, nil
}

func (is *integrationService) DeleteVorgang(ctx context.Context, apiID uuid.UUID) error {
	return is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, found, err := is.repos.Vorgang.IDByApiID(ctx, tx, apiID)
		if err != nil {
			return err
		}
		if !found {
			return apierr.ErrNotFound
		}
		if err := is.attribution.ForgetEntity(ctx, tx, domain.KindVorgang, id); err != nil {
			return err
		}
		return is.repos.Vorgang.Delete(ctx, tx, id)
	})
}

func (is *integrationService) DeleteSitzung(ctx context.Context, apiID uuid.UUID) error {
	return is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, found, err := is.repos.Sitzung.IDByApiID(ctx, tx, apiID)
		if err != nil {
			return err
		}
		if !found {
			return apierr.ErrNotFound
		}
		if err := is.attribution.ForgetEntity(ctx, tx, domain.KindSitzung, id); err != nil {
			return err
		}
		return is.repos.Sitzung.Delete(ctx, tx, id)
	})
}

func (is *integrationService) RollbackCollector(ctx context.Context, collectorID uuid.UUID) (int, error) {
	var removed int
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records, err := is.attribution.ForgetCollector(ctx, tx, collectorID)
		if err != nil {
			return err
		}
		removed = len(records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// withRetry runs fn in a transaction and replays it a bounded number of
// times when the database reports a serialization failure.
func (is *integrationService) withRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= is.retryAttempts; attempt++ {
		lastErr = is.db.WithContext(ctx).Transaction(fn)
		if lastErr == nil {
			return nil
		}
		if !apierr.IsSerializationFailure(lastErr) {
			return lastErr
		}
		is.log.Warn("submission raced on the same target, retrying", "attempt", attempt)
	}
	return &apierr.ConflictError{Attempts: is.retryAttempts, Err: lastErr}
}

// mergeInto patches target with the raw overlay applied on top of base,
// dropping the named keys from both sides first. The dropped keys are
// the nested collections handled by dedicated resolution.
func mergeInto(base any, raw []byte, target any, dropKeys ...string) error {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return err
	}
	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return err
	}
	var overlayMap map[string]any
	if err := json.Unmarshal(raw, &overlayMap); err != nil {
		return fmt.Errorf("%w: %v", apierr.ErrInvalidArgument, err)
	}
	for _, key := range dropKeys {
		delete(baseMap, key)
		delete(overlayMap, key)
	}
	merged := merge.Apply(baseMap, overlayMap)
	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(mergedJSON, target)
}

func referential(ref string, err error) error {
	if apierr.IsConstraintViolation(err) {
		return &apierr.ReferentialError{Ref: ref, Err: err}
	}
	return err
}

func union(a, b []int64) []int64 {
	seen := make(map[int64]bool, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
