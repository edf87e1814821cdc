package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/apierr"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

const (
	defaultPageSize = 32
	maxPageSize     = 256
)

// QueryService is the read path. It never mutates state.
type QueryService interface {
	GetVorgang(ctx context.Context, apiID uuid.UUID) (*domain.Vorgang, error)
	ListVorgaenge(ctx context.Context, f repos.VorgangFilter, page, perPage int) ([]*domain.Vorgang, error)
	GetSitzung(ctx context.Context, apiID uuid.UUID) (*domain.Sitzung, error)
	ListSitzungen(ctx context.Context, f repos.SitzungFilter, page, perPage int) ([]*domain.Sitzung, error)
	VorgangTouches(ctx context.Context, apiID uuid.UUID) ([]domain.TouchRecord, error)
}

type queryService struct {
	repos       *repos.Repos
	attribution AttributionService
	log         *logger.Logger
}

func NewQueryService(r *repos.Repos, attribution AttributionService, baseLog *logger.Logger) QueryService {
	svcLog := baseLog.With("service", "QueryService")
	return &queryService{repos: r, attribution: attribution, log: svcLog}
}

func (qs *queryService) GetVorgang(ctx context.Context, apiID uuid.UUID) (*domain.Vorgang, error) {
	result, err := qs.repos.Vorgang.GetByApiID(ctx, nil, apiID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apierr.ErrNotFound
	}
	return result, nil
}

func (qs *queryService) ListVorgaenge(ctx context.Context, f repos.VorgangFilter, page, perPage int) ([]*domain.Vorgang, error) {
	limit, offset := pagination(page, perPage)
	return qs.repos.Vorgang.Filter(ctx, nil, f, limit, offset)
}

func (qs *queryService) GetSitzung(ctx context.Context, apiID uuid.UUID) (*domain.Sitzung, error) {
	result, err := qs.repos.Sitzung.GetByApiID(ctx, nil, apiID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apierr.ErrNotFound
	}
	return result, nil
}

func (qs *queryService) ListSitzungen(ctx context.Context, f repos.SitzungFilter, page, perPage int) ([]*domain.Sitzung, error) {
	limit, offset := pagination(page, perPage)
	return qs.repos.Sitzung.Filter(ctx, nil, f, limit, offset)
}

func (qs *queryService) VorgangTouches(ctx context.Context, apiID uuid.UUID) ([]domain.TouchRecord, error) {
	id, found, err := qs.repos.Vorgang.IDByApiID(ctx, nil, apiID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apierr.ErrNotFound
	}
	return qs.attribution.RecentTouches(ctx, nil, domain.KindVorgang, id)
}

func pagination(page, perPage int) (limit, offset int) {
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
