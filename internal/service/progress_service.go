package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgressNotFound      = errors.New("progress entry not found")
	ErrInvalidPainLevel      = fmt.Errorf("pain level must be between %d and %d", domain.PainLevelMin, domain.PainLevelMax)
	ErrInvalidDifficulty     = fmt.Errorf("difficulty must be between %d and %d", domain.DifficultyMin, domain.DifficultyMax)
	ErrProgressAlreadyLogged = errors.New("progress already logged for today")
)

// DefaultAthleteProgressLimit bounds the per-athlete summary listing.
const DefaultAthleteProgressLimit = 50

// ProgressInput carries the writable fields of a completion entry.
type ProgressInput struct {
	Notes      string
	PainLevel  *int
	Difficulty *int
}

// ProgressWithExercise enriches a completion with assignment and exercise
// context for the athlete summary view.
type ProgressWithExercise struct {
	domain.Progress
	Frequency    domain.Frequency `json:"frequency"`
	ExerciseName string           `json:"exerciseName"`
	BodyPart     string           `json:"bodyPart"`
	Category     string           `json:"category"`
}

type ProgressService interface {
	// Log records one completion for the assignment on today's UTC calendar
	// date. At most one completion per assignment per day.
	Log(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, assignmentID primitive.ObjectID, input ProgressInput) (*domain.Progress, error)
	// Update is the explicit correction path; the completion date never changes.
	Update(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, progressID primitive.ObjectID, input ProgressInput) (*domain.Progress, error)
	Get(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, progressID primitive.ObjectID) (*domain.Progress, error)
	ListForAssignment(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, assignmentID primitive.ObjectID) ([]domain.Progress, error)
	ListForAthlete(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID) ([]ProgressWithExercise, error)
	Compliance(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID, days int) (*ComplianceReport, error)
}

// --- Service Implementation ---

type progressService struct {
	assignmentRepo repository.AssignmentRepository
	progressRepo   repository.ProgressRepository
	exerciseRepo   repository.ExerciseRepository
	notifier       NotificationService
	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	assignmentRepo repository.AssignmentRepository,
	progressRepo repository.ProgressRepository,
	exerciseRepo repository.ExerciseRepository,
	notifier NotificationService,
) ProgressService {
	return &progressService{
		assignmentRepo: assignmentRepo,
		progressRepo:   progressRepo,
		exerciseRepo:   exerciseRepo,
		notifier:       notifier,
		now:            time.Now,
	}
}

func validateScores(input ProgressInput) error {
	if input.PainLevel != nil && (*input.PainLevel < domain.PainLevelMin || *input.PainLevel > domain.PainLevelMax) {
		return ErrInvalidPainLevel
	}
	if input.Difficulty != nil && (*input.Difficulty < domain.DifficultyMin || *input.Difficulty > domain.DifficultyMax) {
		return ErrInvalidDifficulty
	}
	return nil
}

// Log records a completion and emits a best-effort notification to the
// assignment's trainer.
func (s *progressService) Log(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, assignmentID primitive.ObjectID, input ProgressInput) (*domain.Progress, error) {
	if assignmentID == primitive.NilObjectID {
		return nil, errors.New("assignment ID is required")
	}
	if err := validateScores(input); err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	// Athletes may only log their own assignments. Trainers may log on behalf
	// of any athlete.
	if callerRole == domain.RoleAthlete && callerID != assignment.AthleteID {
		return nil, ErrAccessDenied
	}

	today := domain.DateOnly(s.now())

	// Friendly pre-check; the unique (assignmentId, completedDate) index is
	// what actually closes the concurrent-duplicate window.
	if _, err := s.progressRepo.GetByAssignmentAndDate(ctx, assignmentID, today); err == nil {
		return nil, ErrProgressAlreadyLogged
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	progress := &domain.Progress{
		AssignmentID:  assignmentID,
		CompletedDate: today,
		Notes:         input.Notes,
		PainLevel:     input.PainLevel,
		Difficulty:    input.Difficulty,
	}

	progressID, err := s.progressRepo.Create(ctx, progress)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProgressAlreadyLogged
		}
		return nil, err
	}
	progress.ID = progressID

	// Best-effort trainer notification; failure is logged, never surfaced.
	if _, err := s.notifier.Notify(ctx, assignment.TrainerID,
		"Exercise Completed",
		"An athlete has completed their assigned exercise.",
		domain.NotificationProgress,
	); err != nil {
		log.Printf("WARN: failed to notify trainer %s of progress on assignment %s: %v",
			assignment.TrainerID.Hex(), assignmentID.Hex(), err)
	}

	return progress, nil
}

// Update overwrites the correctable fields of an existing entry. The
// assignment's athlete or any trainer may correct; the date stays put.
func (s *progressService) Update(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, progressID primitive.ObjectID, input ProgressInput) (*domain.Progress, error) {
	if err := validateScores(input); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.GetByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	if err := s.authorizeProgressAccess(ctx, callerID, callerRole, progress.AssignmentID); err != nil {
		return nil, err
	}

	progress.Notes = input.Notes
	progress.PainLevel = input.PainLevel
	progress.Difficulty = input.Difficulty

	if err := s.progressRepo.Update(ctx, progress); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return progress, nil
}

// Get retrieves a single entry. Orphaned entries (assignment deleted) stay
// retrievable; only trainers can see those, since athlete ownership can no
// longer be established.
func (s *progressService) Get(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, progressID primitive.ObjectID) (*domain.Progress, error) {
	progress, err := s.progressRepo.GetByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	if err := s.authorizeProgressAccess(ctx, callerID, callerRole, progress.AssignmentID); err != nil {
		return nil, err
	}
	return progress, nil
}

// ListForAssignment returns all completions for one assignment, newest first.
func (s *progressService) ListForAssignment(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, assignmentID primitive.ObjectID) ([]domain.Progress, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if callerRole == domain.RoleAthlete && callerID != assignment.AthleteID {
		return nil, ErrAccessDenied
	}

	return s.progressRepo.GetByAssignmentID(ctx, assignmentID)
}

// ListForAthlete returns the athlete's recent completions across all of their
// assignments, enriched with exercise context, newest first.
func (s *progressService) ListForAthlete(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID) ([]ProgressWithExercise, error) {
	if callerRole == domain.RoleAthlete && callerID != athleteID {
		return nil, ErrAccessDenied
	}

	assignments, err := s.assignmentRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		return nil, err
	}

	assignmentsByID := make(map[primitive.ObjectID]domain.Assignment, len(assignments))
	assignmentIDs := make([]primitive.ObjectID, 0, len(assignments))
	exerciseIDs := make([]primitive.ObjectID, 0, len(assignments))
	seenExercise := make(map[primitive.ObjectID]bool)
	for _, a := range assignments {
		assignmentsByID[a.ID] = a
		assignmentIDs = append(assignmentIDs, a.ID)
		if !seenExercise[a.ExerciseID] {
			seenExercise[a.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, a.ExerciseID)
		}
	}

	entries, err := s.progressRepo.GetByAssignmentIDs(ctx, assignmentIDs, DefaultAthleteProgressLimit)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	exercisesByID := make(map[primitive.ObjectID]domain.Exercise, len(exercises))
	for _, e := range exercises {
		exercisesByID[e.ID] = e
	}

	result := make([]ProgressWithExercise, 0, len(entries))
	for _, p := range entries {
		enriched := ProgressWithExercise{Progress: p}
		if a, ok := assignmentsByID[p.AssignmentID]; ok {
			enriched.Frequency = a.Frequency
			if e, ok := exercisesByID[a.ExerciseID]; ok {
				enriched.ExerciseName = e.Name
				enriched.BodyPart = e.BodyPart
				enriched.Category = e.Category
			}
		}
		result = append(result, enriched)
	}
	return result, nil
}

// authorizeProgressAccess applies the shared rule for reading or correcting an
// entry: any trainer, or the athlete who owns the parent assignment.
func (s *progressService) authorizeProgressAccess(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, assignmentID primitive.ObjectID) error {
	if callerRole == domain.RoleTrainer {
		return nil
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Orphaned entry: ownership cannot be established for athletes.
			return ErrAccessDenied
		}
		return err
	}
	if callerID != assignment.AthleteID {
		return ErrAccessDenied
	}
	return nil
}
