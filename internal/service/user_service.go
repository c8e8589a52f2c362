package service

import (
	"context"
	"errors"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	// ErrAccessDenied is the package-wide guard failure: the caller is
	// authenticated but not permitted. Shared across services.
	ErrAccessDenied = errors.New("access denied")
	ErrUserNotFound = errors.New("user not found")
)

type UserService interface {
	// ListAthletes returns the athlete directory; trainers only.
	ListAthletes(ctx context.Context, callerRole domain.Role) ([]domain.User, error)
	// ListTrainers is open to any authenticated user.
	ListTrainers(ctx context.Context) ([]domain.User, error)
	// Get returns a user profile: self, or any profile for trainer callers.
	Get(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, userID primitive.ObjectID) (*domain.User, error)
	// UpdateProfile edits the caller's own mutable fields; role and email are immutable.
	UpdateProfile(ctx context.Context, callerID, userID primitive.ObjectID, firstName, lastName, sport, position string) error
}

// --- Service Implementation ---

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) ListAthletes(ctx context.Context, callerRole domain.Role) ([]domain.User, error) {
	if callerRole != domain.RoleTrainer {
		return nil, ErrAccessDenied
	}
	athletes, err := s.userRepo.GetByRole(ctx, domain.RoleAthlete)
	if err != nil {
		return nil, err
	}
	stripHashes(athletes)
	return athletes, nil
}

func (s *userService) ListTrainers(ctx context.Context) ([]domain.User, error) {
	trainers, err := s.userRepo.GetByRole(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	stripHashes(trainers)
	return trainers, nil
}

func (s *userService) Get(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, userID primitive.ObjectID) (*domain.User, error) {
	// Athletes may only view their own profile; trainers may view any.
	if callerRole == domain.RoleAthlete && callerID != userID {
		return nil, ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, callerID, userID primitive.ObjectID, firstName, lastName, sport, position string) error {
	if callerID != userID {
		return ErrAccessDenied
	}

	err := s.userRepo.UpdateProfile(ctx, userID, firstName, lastName, sport, position)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func stripHashes(users []domain.User) {
	for i := range users {
		users[i].PasswordHash = ""
	}
}
