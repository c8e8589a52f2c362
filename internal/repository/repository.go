package repository

import (
	"context"
	"time"

	"rehabtrack/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, sport, position string) error
}

// ExerciseFilter narrows exercise listings. Zero values mean "no filter".
type ExerciseFilter struct {
	BodyPart  string
	Category  string
	CreatedBy primitive.ObjectID
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Find(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error // Ensure trainer owns the exercise
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctBodyParts(ctx context.Context) ([]string, error)
}

// AssignmentRepository defines the interface for interacting with assignment data.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	// GetByIDAndTrainer scopes the lookup to the owning trainer; a miss is
	// ErrNotFound whether the assignment is absent or owned by someone else.
	GetByIDAndTrainer(ctx context.Context, id, trainerID primitive.ObjectID) (*domain.Assignment, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Assignment, error)
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error)
	GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error)
	// GetActiveStartedBefore returns the athlete's active assignments whose
	// startDate is on or before the cutoff (compliance window qualification).
	GetActiveStartedBefore(ctx context.Context, athleteID primitive.ObjectID, cutoff time.Time) ([]domain.Assignment, error)
	Update(ctx context.Context, assignment *domain.Assignment) error
	Delete(ctx context.Context, id, trainerID primitive.ObjectID) error
	CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error)
	CountByTrainerAndStatus(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) (int64, error)
}

// ProgressRepository defines the interface for interacting with progress data.
type ProgressRepository interface {
	// Create inserts a completion entry. Returns ErrDuplicate when an entry
	// already exists for the same (assignmentId, completedDate).
	Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Progress, error)
	GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Progress, error)
	GetByAssignmentIDs(ctx context.Context, assignmentIDs []primitive.ObjectID, limit int64) ([]domain.Progress, error)
	GetByAssignmentAndDate(ctx context.Context, assignmentID primitive.ObjectID, date time.Time) (*domain.Progress, error)
	CountByAssignmentSince(ctx context.Context, assignmentID primitive.ObjectID, since time.Time) (int64, error)
	// CountDistinctAssignmentsSince counts how many of the given assignments
	// have at least one completion dated on/after since.
	CountDistinctAssignmentsSince(ctx context.Context, assignmentIDs []primitive.ObjectID, since time.Time) (int, error)
	Update(ctx context.Context, progress *domain.Progress) error
}

// NotificationRepository defines the interface for interacting with notification data.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error)
	// GetByIDAndUser scopes the lookup to the owning user; a miss is ErrNotFound
	// whether the notification is absent or owned by someone else.
	GetByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}
