package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"citypulse/internal/domain"
	"citypulse/internal/ranking"
	"citypulse/internal/repository"
)

const DefaultTasteUpdateMaxAttempts = 5

// TasteUpdater aplica un like al perfil con read-fold-CAS.
// Si otro like gana la carrera, relee y reintenta; nunca pisa una actualizacion ajena.
type TasteUpdater struct {
	repo        repository.TasteRepository
	maxAttempts int
	now         func() time.Time
	logger      *zap.Logger
}

func NewTasteUpdater(repo repository.TasteRepository, maxAttempts int, logger *zap.Logger) *TasteUpdater {
	if maxAttempts <= 0 {
		maxAttempts = DefaultTasteUpdateMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TasteUpdater{
		repo:        repo,
		maxAttempts: maxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

func (u *TasteUpdater) Apply(ctx context.Context, userID string, v []float32) (domain.TasteProfile, error) {
	if u == nil || u.repo == nil {
		return domain.TasteProfile{}, ErrServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.TasteProfile{}, ErrInvalidRequest
	}

	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.TasteProfile{}, err
		}

		current, err := u.repo.GetOrCreate(ctx, userID)
		if err != nil {
			return domain.TasteProfile{}, fmt.Errorf("load taste profile: %w", err)
		}

		updated, err := ranking.FoldTaste(current, v, u.now())
		if err != nil {
			return domain.TasteProfile{}, fmt.Errorf("fold taste: %w", err)
		}

		err = u.repo.UpdateTaste(ctx, updated, current.Version)
		if err == nil {
			updated.Version = current.Version + 1
			return updated, nil
		}
		if !errors.Is(err, repository.ErrTasteVersionConflict) {
			return domain.TasteProfile{}, fmt.Errorf("update taste profile: %w: %w", ErrTasteWriteUncertain, err)
		}
		u.logger.Debug("taste update conflict, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Int64("expected_version", current.Version),
		)
	}

	u.logger.Warn("taste update gave up after conflicts",
		zap.String("user_id", userID),
		zap.Int("attempts", u.maxAttempts),
	)
	return domain.TasteProfile{}, ErrTasteUpdateConflict
}
