package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hustlehub/authgate/models"
	"github.com/hustlehub/authgate/repositories"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ProfileRepository implements the repositories.ProfileRepository interface
type ProfileRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB, logger *zap.Logger) repositories.ProfileRepository {
	return &ProfileRepository{
		db:     db,
		logger: logger,
	}
}

// GetUserRole retrieves the user_type of a profile
func (r *ProfileRepository) GetUserRole(ctx context.Context, userID string) (models.UserRole, error) {
	// profiles.id is a UUID; anything else cannot match a row
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", repositories.ErrProfileNotFound, userID)
	}

	query := `
		SELECT user_type
		FROM profiles
		WHERE id = $1
	`

	var raw string
	err = r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", repositories.ErrProfileNotFound, id)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			r.logger.Warn("profile query rejected by postgres",
				zap.String("code", string(pqErr.Code)),
				zap.String("code_name", pqErr.Code.Name()))
		}
		return "", fmt.Errorf("failed to get user role: %w", err)
	}

	role, err := models.ParseUserRole(raw)
	if err != nil {
		return "", fmt.Errorf("profile %s has invalid user_type: %w", id, err)
	}

	r.logger.Debug("user role resolved", zap.String("id", id.String()), zap.String("role", role.String()))
	return role, nil
}
