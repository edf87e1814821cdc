package services

import (
	"context"

	"github.com/parlatrack/backend/internal/domain"
	"github.com/parlatrack/backend/internal/pkg/logger"
)

// MatchNotifier receives advisory events from the resolution pipeline.
// Notifications never affect the outcome of a submission.
type MatchNotifier interface {
	AmbiguousMatch(ctx context.Context, kind domain.EntityKind, chosenID int64, candidateIDs []int64)
	GremiumNearMiss(ctx context.Context, incoming, existing string, score float64)
	AutorFuzzyHit(ctx context.Context, incoming, existing string, score float64)
}

type logNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) MatchNotifier {
	return &logNotifier{log: baseLog.With("service", "MatchNotifier")}
}

func (n *logNotifier) AmbiguousMatch(ctx context.Context, kind domain.EntityKind, chosenID int64, candidateIDs []int64) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Warn("multiple match candidates, picked lowest id",
		"entity_kind", string(kind),
		"chosen_id", chosenID,
		"candidate_count", len(candidateIDs),
	)
}

func (n *logNotifier) GremiumNearMiss(ctx context.Context, incoming, existing string, score float64) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Warn("gremium name close to an existing one, created anyway",
		"incoming", incoming,
		"existing", existing,
		"score", score,
	)
}

func (n *logNotifier) AutorFuzzyHit(ctx context.Context, incoming, existing string, score float64) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Info("autor matched by similarity",
		"incoming", incoming,
		"existing", existing,
		"score", score,
	)
}
