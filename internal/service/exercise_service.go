package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"
	"rehabtrack/rehab-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound   = errors.New("exercise not found or access denied")
	ErrExerciseValidation = errors.New("name, body part, and category are required")
	ErrInvalidVideoType   = errors.New("only video content types are allowed")
	ErrUploadURLError     = errors.New("failed to generate upload URL")
)

// ExerciseInput carries the writable fields of an exercise.
type ExerciseInput struct {
	Name         string
	Description  string
	Instructions string
	BodyPart     string
	Category     string
	Duration     *int
	Sets         *int
	Reps         *int
}

// ExerciseWithTrainer enriches an exercise with its creator's name for listings.
type ExerciseWithTrainer struct {
	domain.Exercise
	TrainerFirstName string `json:"trainerFirstName"`
	TrainerLastName  string `json:"trainerLastName"`
}

// VideoUploadTicket is handed to the client so it can PUT the file straight
// into the media store, then confirm with the object key.
type VideoUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ExerciseService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	GetByID(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseWithTrainer, error)
	List(ctx context.Context, filter repository.ExerciseFilter) ([]ExerciseWithTrainer, error)
	Update(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	Delete(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
	Categories(ctx context.Context) ([]string, error)
	BodyParts(ctx context.Context) ([]string, error)

	// Video media flow: presigned upload, then confirmation stores the URL
	// verbatim on the exercise. Content is never inspected here.
	RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*VideoUploadTicket, error)
	ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	userRepo     repository.UserRepository
	mediaStore   storage.MediaStore
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, userRepo repository.UserRepository, mediaStore storage.MediaStore) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		userRepo:     userRepo,
		mediaStore:   mediaStore,
	}
}

// Create handles the creation of a new exercise by a trainer.
func (s *exerciseService) Create(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" || input.BodyPart == "" || input.Category == "" {
		return nil, ErrExerciseValidation
	}
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		TrainerID:    trainerID,
		Name:         input.Name,
		Description:  input.Description,
		Instructions: input.Instructions,
		BodyPart:     input.BodyPart,
		Category:     input.Category,
		Duration:     input.Duration,
		Sets:         input.Sets,
		Reps:         input.Reps,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again to get the repository-populated timestamps.
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetByID retrieves a single exercise with its creator's name attached.
func (s *exerciseService) GetByID(ctx context.Context, exerciseID primitive.ObjectID) (*ExerciseWithTrainer, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	enriched := ExerciseWithTrainer{Exercise: *exercise}
	if trainer, err := s.userRepo.GetByID(ctx, exercise.TrainerID); err == nil {
		enriched.TrainerFirstName = trainer.FirstName
		enriched.TrainerLastName = trainer.LastName
	}
	return &enriched, nil
}

// List retrieves exercises matching the filter, enriched with trainer names.
func (s *exerciseService) List(ctx context.Context, filter repository.ExerciseFilter) ([]ExerciseWithTrainer, error) {
	exercises, err := s.exerciseRepo.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Batch fetch creators instead of one lookup per row.
	trainerIDs := make([]primitive.ObjectID, 0, len(exercises))
	seen := make(map[primitive.ObjectID]bool)
	for _, e := range exercises {
		if !seen[e.TrainerID] {
			seen[e.TrainerID] = true
			trainerIDs = append(trainerIDs, e.TrainerID)
		}
	}
	trainers, err := s.userRepo.GetByIDs(ctx, trainerIDs)
	if err != nil {
		return nil, err
	}
	trainersByID := make(map[primitive.ObjectID]domain.User, len(trainers))
	for _, t := range trainers {
		trainersByID[t.ID] = t
	}

	result := make([]ExerciseWithTrainer, 0, len(exercises))
	for _, e := range exercises {
		enriched := ExerciseWithTrainer{Exercise: e}
		if t, ok := trainersByID[e.TrainerID]; ok {
			enriched.TrainerFirstName = t.FirstName
			enriched.TrainerLastName = t.LastName
		}
		result = append(result, enriched)
	}
	return result, nil
}

// Update modifies an exercise. The lookup is owner-scoped: a missing row and a
// row owned by another trainer produce the same not-found error.
func (s *exerciseService) Update(ctx context.Context, trainerID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if input.Name == "" || input.BodyPart == "" || input.Category == "" {
		return nil, ErrExerciseValidation
	}

	existing, err := s.ownedExercise(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Instructions = input.Instructions
	existing.BodyPart = input.BodyPart
	existing.Category = input.Category
	existing.Duration = input.Duration
	existing.Sets = input.Sets
	existing.Reps = input.Reps

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// Delete removes an exercise the trainer owns.
func (s *exerciseService) Delete(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	err := s.exerciseRepo.Delete(ctx, exerciseID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// Categories lists the distinct exercise categories in use.
func (s *exerciseService) Categories(ctx context.Context) ([]string, error) {
	return s.exerciseRepo.DistinctCategories(ctx)
}

// BodyParts lists the distinct body parts in use.
func (s *exerciseService) BodyParts(ctx context.Context) ([]string, error) {
	return s.exerciseRepo.DistinctBodyParts(ctx)
}

// RequestVideoUploadURL hands out a presigned PUT URL for an exercise video.
func (s *exerciseService) RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*VideoUploadTicket, error) {
	if !strings.HasPrefix(contentType, "video/") {
		return nil, ErrInvalidVideoType
	}

	if _, err := s.ownedExercise(ctx, trainerID, exerciseID); err != nil {
		return nil, err
	}

	ext := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		ext = "." + parts[1]
	}
	objectKey := path.Join("exercises", exerciseID.Hex(), fmt.Sprintf("video-%s%s", uuid.NewString(), ext))

	uploadURL, err := s.mediaStore.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}

	return &VideoUploadTicket{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload records the uploaded object's URL on the exercise.
func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	existing, err := s.ownedExercise(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}

	existing.VideoURL = s.mediaStore.ObjectURL(objectKey)

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// ownedExercise fetches an exercise and verifies the trainer owns it,
// conflating absent and not-owned into one error.
func (s *exerciseService) ownedExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.TrainerID != trainerID {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}
