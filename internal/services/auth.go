package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parlatrack/backend/internal/data/repos"
	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/apierr"
	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/utils"
)

const defaultKeyTTL = 365 * 24 * time.Hour

// AuthService owns the API key lifecycle. Keys are stored hashed; the
// plaintext is returned exactly once, at creation.
type AuthService interface {
	// ValidateKey authenticates a raw key and returns its record.
	// Expired, revoked and rotated keys fail uniformly.
	ValidateKey(ctx context.Context, rawKey string) (*domain.ApiKey, error)
	CreateKey(ctx context.Context, scope domain.APIScope, collectorID uuid.UUID, expiresAt *time.Time, createdBy *int64) (string, *domain.ApiKey, error)
	// RotateKey issues a successor with the same scope and collector
	// and retires the old key, marked as rotated by itself.
	RotateKey(ctx context.Context, keyID int64) (string, *domain.ApiKey, error)
	RevokeKey(ctx context.Context, keytag string, revokedBy int64) error
	ListKeys(ctx context.Context) ([]domain.ApiKey, error)
	// EnsureRootKey seeds the configured keyadder key on startup when
	// its keytag is not present yet.
	EnsureRootKey(ctx context.Context, rawKey string) error
}

type authService struct {
	db    *gorm.DB
	repos *repos.Repos
	now   func() time.Time
	log   *logger.Logger
}

func NewAuthService(db *gorm.DB, r *repos.Repos, baseLog *logger.Logger) AuthService {
	svcLog := baseLog.With("service", "AuthService")
	return &authService{db: db, repos: r, now: time.Now, log: svcLog}
}

func (as *authService) ValidateKey(ctx context.Context, rawKey string) (*domain.ApiKey, error) {
	if !utils.WellFormedKey(rawKey) {
		return nil, apierr.ErrUnauthorized
	}
	keytag := utils.KeytagOf(rawKey)
	record, err := as.repos.ApiKey.GetByKeytag(ctx, nil, keytag)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Active(as.now()) {
		return nil, apierr.ErrUnauthorized
	}
	if !utils.CompareAPIKey(record.KeyHash, rawKey) {
		return nil, apierr.ErrUnauthorized
	}
	usedAt := as.now().UTC()
	if err := as.repos.ApiKey.TouchLastUsed(ctx, nil, record.ID, usedAt); err != nil {
		as.log.Warn("failed to record key usage", "keytag", keytag, "error", err.Error())
	} else {
		record.LastUsedAt = &usedAt
	}
	return record, nil
}

func (as *authService) CreateKey(ctx context.Context, scope domain.APIScope, collectorID uuid.UUID, expiresAt *time.Time, createdBy *int64) (string, *domain.ApiKey, error) {
	if !scope.Valid() {
		return "", nil, apierr.ErrInvalidArgument
	}
	rawKey, err := utils.GenerateAPIKey()
	if err != nil {
		return "", nil, err
	}
	hash, err := utils.HashAPIKey(rawKey)
	if err != nil {
		return "", nil, err
	}
	keytag := utils.KeytagOf(rawKey)
	expiry := as.now().Add(defaultKeyTTL)
	if expiresAt != nil {
		expiry = *expiresAt
	}
	record := &domain.ApiKey{
		Keytag:      keytag,
		KeyHash:     hash,
		Scope:       scope,
		CollectorID: collectorID,
		CreatedBy:   createdBy,
		ExpiresAt:   expiry,
	}
	if err := as.repos.ApiKey.Create(ctx, nil, record); err != nil {
		return "", nil, err
	}
	as.log.Info("api key created", "keytag", keytag, "scope", string(scope))
	return rawKey, record, nil
}

func (as *authService) RotateKey(ctx context.Context, keyID int64) (string, *domain.ApiKey, error) {
	var rawKey string
	var successor *domain.ApiKey
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := as.repos.ApiKey.GetByID(ctx, tx, keyID)
		if err != nil {
			return err
		}
		if current == nil || !current.Active(as.now()) {
			return apierr.ErrUnauthorized
		}
		raw, err := utils.GenerateAPIKey()
		if err != nil {
			return err
		}
		hash, err := utils.HashAPIKey(raw)
		if err != nil {
			return err
		}
		keytag := utils.KeytagOf(raw)
		next := &domain.ApiKey{
			Keytag:      keytag,
			KeyHash:     hash,
			Scope:       current.Scope,
			CollectorID: current.CollectorID,
			CreatedBy:   &current.ID,
			ExpiresAt:   as.now().Add(defaultKeyTTL),
		}
		if err := as.repos.ApiKey.Create(ctx, tx, next); err != nil {
			return err
		}
		if err := as.repos.ApiKey.MarkDeleted(ctx, tx, current.ID, current.ID); err != nil {
			return err
		}
		if err := as.repos.ApiKey.SetRotatedFor(ctx, tx, current.ID, next.ID); err != nil {
			return err
		}
		rawKey = raw
		successor = next
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	as.log.Info("api key rotated", "old_id", keyID, "new_id", successor.ID)
	return rawKey, successor, nil
}

func (as *authService) RevokeKey(ctx context.Context, keytag string, revokedBy int64) error {
	record, err := as.repos.ApiKey.GetByKeytag(ctx, nil, keytag)
	if err != nil {
		return err
	}
	if record == nil {
		return apierr.ErrNotFound
	}
	if record.DeletedBy != nil {
		return nil
	}
	if err := as.repos.ApiKey.MarkDeleted(ctx, nil, record.ID, revokedBy); err != nil {
		return err
	}
	as.log.Info("api key revoked", "keytag", keytag)
	return nil
}

func (as *authService) ListKeys(ctx context.Context) ([]domain.ApiKey, error) {
	return as.repos.ApiKey.List(ctx, nil, false)
}

func (as *authService) EnsureRootKey(ctx context.Context, rawKey string) error {
	if !utils.WellFormedKey(rawKey) {
		return apierr.ErrInvalidArgument
	}
	keytag := utils.KeytagOf(rawKey)
	existing, err := as.repos.ApiKey.GetByKeytag(ctx, nil, keytag)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := utils.HashAPIKey(rawKey)
	if err != nil {
		return err
	}
	record := &domain.ApiKey{
		Keytag:      keytag,
		KeyHash:     hash,
		Scope:       domain.ScopeKeyAdder,
		CollectorID: uuid.Nil,
		ExpiresAt:   as.now().Add(defaultKeyTTL),
	}
	if err := as.repos.ApiKey.Create(ctx, nil, record); err != nil {
		return err
	}
	as.log.Info("root keyadder key seeded", "keytag", keytag)
	return nil
}
