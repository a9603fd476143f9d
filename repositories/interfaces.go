package repositories

import (
	"context"
	"errors"

	"github.com/hustlehub/authgate/models"
)

// ErrProfileNotFound is returned when no profile row exists for a user id
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository reads profile rows. Rows are owned by the database
// trigger that fires on account creation; this service never writes them.
type ProfileRepository interface {
	// GetUserRole returns the user_type of the profile with the given id
	GetUserRole(ctx context.Context, userID string) (models.UserRole, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Profiles ProfileRepository
}
