package service

import (
	"context"
	"strings"
	"time"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository stubs shared by the service tests.

func intPtr(v int) *int { return &v }

// --- User repository stub ---

type stubUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *stubUserRepo) add(user domain.User) primitive.ObjectID {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	u := user
	r.users[u.ID] = &u
	return u.ID
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return r.add(*user), nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	result := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUserRepo) GetByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, u := range r.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, sport, position string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.Sport = sport
	u.Position = position
	u.UpdatedAt = time.Now()
	return nil
}

// --- Exercise repository stub ---

type stubExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newStubExerciseRepo() *stubExerciseRepo {
	return &stubExerciseRepo{exercises: make(map[primitive.ObjectID]*domain.Exercise)}
}

func (r *stubExerciseRepo) add(exercise domain.Exercise) primitive.ObjectID {
	if exercise.ID == primitive.NilObjectID {
		exercise.ID = primitive.NewObjectID()
	}
	e := exercise
	r.exercises[e.ID] = &e
	return e.ID
}

func (r *stubExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	exercise.CreatedAt = time.Now()
	exercise.UpdatedAt = exercise.CreatedAt
	id := r.add(*exercise)
	exercise.ID = id
	return id, nil
}

func (r *stubExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubExerciseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	result := make([]domain.Exercise, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *stubExerciseRepo) Find(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	var result []domain.Exercise
	for _, e := range r.exercises {
		if filter.BodyPart != "" && e.BodyPart != filter.BodyPart {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.CreatedBy != primitive.NilObjectID && e.TrainerID != filter.CreatedBy {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (r *stubExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *exercise
	cp.UpdatedAt = time.Now()
	r.exercises[exercise.ID] = &cp
	return nil
}

func (r *stubExerciseRepo) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok || e.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

func (r *stubExerciseRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	return r.distinct(func(e *domain.Exercise) string { return e.Category }), nil
}

func (r *stubExerciseRepo) DistinctBodyParts(ctx context.Context) ([]string, error) {
	return r.distinct(func(e *domain.Exercise) string { return e.BodyPart }), nil
}

func (r *stubExerciseRepo) distinct(key func(*domain.Exercise) string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, e := range r.exercises {
		k := key(e)
		if !seen[k] {
			seen[k] = true
			result = append(result, k)
		}
	}
	return result
}

// --- Assignment repository stub ---

type stubAssignmentRepo struct {
	assignments map[primitive.ObjectID]*domain.Assignment
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{assignments: make(map[primitive.ObjectID]*domain.Assignment)}
}

func (r *stubAssignmentRepo) add(assignment domain.Assignment) primitive.ObjectID {
	if assignment.ID == primitive.NilObjectID {
		assignment.ID = primitive.NewObjectID()
	}
	a := assignment
	r.assignments[a.ID] = &a
	return a.ID
}

func (r *stubAssignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	id := r.add(*assignment)
	assignment.ID = id
	return id, nil
}

func (r *stubAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAssignmentRepo) GetByIDAndTrainer(ctx context.Context, id, trainerID primitive.ObjectID) (*domain.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok || a.TrainerID != trainerID {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAssignmentRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, a := range r.assignments {
		if a.TrainerID == trainerID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *stubAssignmentRepo) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, a := range r.assignments {
		if a.AthleteID == athleteID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *stubAssignmentRepo) GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, a := range r.assignments {
		if a.AthleteID == athleteID && a.Status == domain.StatusActive {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *stubAssignmentRepo) GetActiveStartedBefore(ctx context.Context, athleteID primitive.ObjectID, cutoff time.Time) ([]domain.Assignment, error) {
	var result []domain.Assignment
	for _, a := range r.assignments {
		if a.AthleteID == athleteID && a.Status == domain.StatusActive && !a.StartDate.After(cutoff) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (r *stubAssignmentRepo) Update(ctx context.Context, assignment *domain.Assignment) error {
	if _, ok := r.assignments[assignment.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *assignment
	cp.UpdatedAt = time.Now()
	r.assignments[assignment.ID] = &cp
	return nil
}

func (r *stubAssignmentRepo) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	a, ok := r.assignments[id]
	if !ok || a.TrainerID != trainerID {
		return repository.ErrNotFound
	}
	delete(r.assignments, id)
	return nil
}

func (r *stubAssignmentRepo) CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error) {
	var count int64
	for _, a := range r.assignments {
		if a.TrainerID == trainerID {
			count++
		}
	}
	return count, nil
}

func (r *stubAssignmentRepo) CountByTrainerAndStatus(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) (int64, error) {
	var count int64
	for _, a := range r.assignments {
		if a.TrainerID == trainerID && a.Status == status {
			count++
		}
	}
	return count, nil
}

// --- Progress repository stub ---

type stubProgressRepo struct {
	entries map[primitive.ObjectID]*domain.Progress
}

func newStubProgressRepo() *stubProgressRepo {
	return &stubProgressRepo{entries: make(map[primitive.ObjectID]*domain.Progress)}
}

func (r *stubProgressRepo) add(progress domain.Progress) primitive.ObjectID {
	if progress.ID == primitive.NilObjectID {
		progress.ID = primitive.NewObjectID()
	}
	p := progress
	r.entries[p.ID] = &p
	return p.ID
}

func (r *stubProgressRepo) Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	date := domain.DateOnly(progress.CompletedDate)
	for _, p := range r.entries {
		if p.AssignmentID == progress.AssignmentID && p.CompletedDate.Equal(date) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	progress.CompletedDate = date
	progress.CreatedAt = time.Now()
	id := r.add(*progress)
	progress.ID = id
	return id, nil
}

func (r *stubProgressRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Progress, error) {
	p, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProgressRepo) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Progress, error) {
	var result []domain.Progress
	for _, p := range r.entries {
		if p.AssignmentID == assignmentID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProgressRepo) GetByAssignmentIDs(ctx context.Context, assignmentIDs []primitive.ObjectID, limit int64) ([]domain.Progress, error) {
	wanted := make(map[primitive.ObjectID]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	var result []domain.Progress
	for _, p := range r.entries {
		if wanted[p.AssignmentID] {
			result = append(result, *p)
		}
	}
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubProgressRepo) GetByAssignmentAndDate(ctx context.Context, assignmentID primitive.ObjectID, date time.Time) (*domain.Progress, error) {
	day := domain.DateOnly(date)
	for _, p := range r.entries {
		if p.AssignmentID == assignmentID && p.CompletedDate.Equal(day) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubProgressRepo) CountByAssignmentSince(ctx context.Context, assignmentID primitive.ObjectID, since time.Time) (int64, error) {
	var count int64
	for _, p := range r.entries {
		if p.AssignmentID == assignmentID && !p.CompletedDate.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *stubProgressRepo) CountDistinctAssignmentsSince(ctx context.Context, assignmentIDs []primitive.ObjectID, since time.Time) (int, error) {
	wanted := make(map[primitive.ObjectID]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	matched := make(map[primitive.ObjectID]bool)
	for _, p := range r.entries {
		if wanted[p.AssignmentID] && !p.CompletedDate.Before(since) {
			matched[p.AssignmentID] = true
		}
	}
	return len(matched), nil
}

func (r *stubProgressRepo) Update(ctx context.Context, progress *domain.Progress) error {
	if _, ok := r.entries[progress.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *progress
	r.entries[progress.ID] = &cp
	return nil
}

// --- Notification repository stub ---

type stubNotificationRepo struct {
	notifications []*domain.Notification
	createErr     error // when set, Create fails with this error
}

func newStubNotificationRepo() *stubNotificationRepo {
	return &stubNotificationRepo{}
}

func (r *stubNotificationRepo) Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error) {
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	n := *notification
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, &n)
	return n.ID, nil
}

func (r *stubNotificationRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	if limit > 0 && int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubNotificationRepo) GetByIDAndUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubNotificationRepo) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubNotificationRepo) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

// forUser returns the stored notifications for one recipient.
func (r *stubNotificationRepo) forUser(userID primitive.ObjectID) []domain.Notification {
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result
}

// --- Media store stub ---

type stubMediaStore struct {
	uploadErr error
}

func (s *stubMediaStore) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "https://media.test/upload/" + objectKey, nil
}

func (s *stubMediaStore) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://media.test/download/" + objectKey, nil
}

func (s *stubMediaStore) ObjectURL(objectKey string) string {
	return "https://media.test/bucket/" + objectKey
}

func (s *stubMediaStore) DeleteObject(ctx context.Context, objectKey string) error {
	return nil
}
