package service

import (
	"context"
	"errors"
	"log"
	"time"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidFrequency   = errors.New("invalid frequency: must be daily, weekly, twice_weekly, or three_times_weekly")
	ErrAthleteNotFound    = errors.New("athlete not found")
	ErrAssignmentNotFound = errors.New("assignment not found or access denied")
)

// AssignmentInput carries the writable fields of an assignment.
type AssignmentInput struct {
	Frequency domain.Frequency
	StartDate time.Time
	EndDate   *time.Time
	Notes     string
	Status    domain.AssignmentStatus
}

// AthleteSummary is the denormalized athlete identity attached to listings.
type AthleteSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Sport     string `json:"sport,omitempty"`
}

// TrainerSummary is the denormalized trainer identity attached to listings.
type TrainerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AssignmentDetails is an assignment joined with its exercise, the people on
// both ends, and the full completion history.
type AssignmentDetails struct {
	domain.Assignment
	Exercise *domain.Exercise  `json:"exercise,omitempty"`
	Athlete  *AthleteSummary   `json:"athlete,omitempty"`
	Trainer  *TrainerSummary   `json:"trainer,omitempty"`
	Progress []domain.Progress `json:"progress"`
}

// TrainerStats aggregates a trainer's dashboard numbers.
type TrainerStats struct {
	TotalAssignments  int64 `json:"totalAssignments"`
	ActiveAssignments int64 `json:"activeAssignments"`
	CompletedThisWeek int   `json:"completedThisWeek"`
}

type AssignmentService interface {
	Create(ctx context.Context, trainerID, athleteID, exerciseID primitive.ObjectID, input AssignmentInput) (*domain.Assignment, error)
	Update(ctx context.Context, trainerID, assignmentID primitive.ObjectID, input AssignmentInput) (*domain.Assignment, error)
	Delete(ctx context.Context, trainerID, assignmentID primitive.ObjectID) error
	ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]AssignmentDetails, error)
	StatsForTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerStats, error)
	// ListForAthlete returns the athlete's active assignments with exercise,
	// trainer, and progress attached. Athletes see only their own.
	ListForAthlete(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID) ([]AssignmentDetails, error)
}

// --- Service Implementation ---

type assignmentService struct {
	userRepo       repository.UserRepository
	exerciseRepo   repository.ExerciseRepository
	assignmentRepo repository.AssignmentRepository
	progressRepo   repository.ProgressRepository
	notifier       NotificationService
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	assignmentRepo repository.AssignmentRepository,
	progressRepo repository.ProgressRepository,
	notifier NotificationService,
) AssignmentService {
	return &assignmentService{
		userRepo:       userRepo,
		exerciseRepo:   exerciseRepo,
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		notifier:       notifier,
	}
}

// Create validates referential integrity, inserts the assignment, and emits a
// best-effort notification to the athlete.
func (s *assignmentService) Create(ctx context.Context, trainerID, athleteID, exerciseID primitive.ObjectID, input AssignmentInput) (*domain.Assignment, error) {
	if trainerID == primitive.NilObjectID || athleteID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("trainer ID, athlete ID, and exercise ID are required")
	}
	if !domain.ValidFrequency(input.Frequency) {
		return nil, ErrInvalidFrequency
	}
	if input.StartDate.IsZero() {
		return nil, errors.New("start date is required")
	}

	// athleteId must resolve to a user with role=athlete.
	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrAthleteNotFound
	}

	// exerciseId must reference an existing exercise.
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	assignment := &domain.Assignment{
		AthleteID:  athleteID,
		ExerciseID: exerciseID,
		TrainerID:  trainerID,
		Frequency:  input.Frequency,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Notes:      input.Notes,
		Status:     domain.StatusActive,
	}

	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	// Best-effort: the assignment insert already succeeded, so a notification
	// failure is logged and swallowed rather than surfaced or rolled back.
	if _, err := s.notifier.Notify(ctx, athleteID,
		"New Exercise Assignment",
		"You have been assigned a new exercise. Check your dashboard for details.",
		domain.NotificationAssignment,
	); err != nil {
		log.Printf("WARN: failed to notify athlete %s of new assignment: %v", athleteID.Hex(), err)
	}

	return assignment, nil
}

// Update replaces the mutable fields of an assignment the trainer owns.
// The frequency is written as given, matching the create-only enum check.
func (s *assignmentService) Update(ctx context.Context, trainerID, assignmentID primitive.ObjectID, input AssignmentInput) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByIDAndTrainer(ctx, assignmentID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	assignment.Frequency = input.Frequency
	assignment.StartDate = input.StartDate
	assignment.EndDate = input.EndDate
	assignment.Notes = input.Notes
	assignment.Status = input.Status

	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// Delete hard-deletes an assignment the trainer owns. Progress rows are not
// cascade-deleted; they remain retrievable by id afterwards.
func (s *assignmentService) Delete(ctx context.Context, trainerID, assignmentID primitive.ObjectID) error {
	err := s.assignmentRepo.Delete(ctx, assignmentID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

// ListForTrainer returns all of a trainer's assignments, newest first, each
// joined with exercise, athlete, and completion history via batch fetches.
func (s *assignmentService) ListForTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]AssignmentDetails, error) {
	assignments, err := s.assignmentRepo.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, assignments, true, false)
}

// ListForAthlete returns the athlete's active assignments, most recent start
// first, joined with exercise, trainer, and completion history.
func (s *assignmentService) ListForAthlete(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID) ([]AssignmentDetails, error) {
	if callerRole == domain.RoleAthlete && callerID != athleteID {
		return nil, ErrAccessDenied
	}

	assignments, err := s.assignmentRepo.GetActiveByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, assignments, false, true)
}

// StatsForTrainer computes the trainer dashboard aggregates.
func (s *assignmentService) StatsForTrainer(ctx context.Context, trainerID primitive.ObjectID) (*TrainerStats, error) {
	total, err := s.assignmentRepo.CountByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	active, err := s.assignmentRepo.CountByTrainerAndStatus(ctx, trainerID, domain.StatusActive)
	if err != nil {
		return nil, err
	}

	// Distinct assignments with at least one completion in the last 7 days.
	assignments, err := s.assignmentRepo.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	completedThisWeek, err := s.progressRepo.CountDistinctAssignmentsSince(ctx, ids, weekAgo)
	if err != nil {
		return nil, err
	}

	return &TrainerStats{
		TotalAssignments:  total,
		ActiveAssignments: active,
		CompletedThisWeek: completedThisWeek,
	}, nil
}

// enrich joins assignments with their exercises, the requested counterpart
// identities, and full progress history, preserving the input order.
func (s *assignmentService) enrich(ctx context.Context, assignments []domain.Assignment, withAthlete, withTrainer bool) ([]AssignmentDetails, error) {
	exerciseIDs := make([]primitive.ObjectID, 0, len(assignments))
	userIDs := make([]primitive.ObjectID, 0, len(assignments))
	assignmentIDs := make([]primitive.ObjectID, 0, len(assignments))
	seenExercise := make(map[primitive.ObjectID]bool)
	seenUser := make(map[primitive.ObjectID]bool)

	for _, a := range assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
		if !seenExercise[a.ExerciseID] {
			seenExercise[a.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, a.ExerciseID)
		}
		if withAthlete && !seenUser[a.AthleteID] {
			seenUser[a.AthleteID] = true
			userIDs = append(userIDs, a.AthleteID)
		}
		if withTrainer && !seenUser[a.TrainerID] {
			seenUser[a.TrainerID] = true
			userIDs = append(userIDs, a.TrainerID)
		}
	}

	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	exercisesByID := make(map[primitive.ObjectID]domain.Exercise, len(exercises))
	for _, e := range exercises {
		exercisesByID[e.ID] = e
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[primitive.ObjectID]domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	progressEntries, err := s.progressRepo.GetByAssignmentIDs(ctx, assignmentIDs, 0)
	if err != nil {
		return nil, err
	}
	progressByAssignment := make(map[primitive.ObjectID][]domain.Progress)
	for _, p := range progressEntries {
		progressByAssignment[p.AssignmentID] = append(progressByAssignment[p.AssignmentID], p)
	}

	result := make([]AssignmentDetails, 0, len(assignments))
	for _, a := range assignments {
		details := AssignmentDetails{Assignment: a, Progress: []domain.Progress{}}
		if e, ok := exercisesByID[a.ExerciseID]; ok {
			ex := e
			details.Exercise = &ex
		}
		if withAthlete {
			if u, ok := usersByID[a.AthleteID]; ok {
				details.Athlete = &AthleteSummary{
					ID:        u.ID.Hex(),
					FirstName: u.FirstName,
					LastName:  u.LastName,
					Email:     u.Email,
					Sport:     u.Sport,
				}
			}
		}
		if withTrainer {
			if u, ok := usersByID[a.TrainerID]; ok {
				details.Trainer = &TrainerSummary{
					ID:        u.ID.Hex(),
					FirstName: u.FirstName,
					LastName:  u.LastName,
				}
			}
		}
		if entries, ok := progressByAssignment[a.ID]; ok {
			details.Progress = entries
		}
		result = append(result, details)
	}
	return result, nil
}
