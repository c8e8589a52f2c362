package mongo

import (
	"context"
	"errors"
	"time"

	"rehabtrack/rehab-app/internal/domain"
	"rehabtrack/rehab-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "progress"

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new Progress repository backed by MongoDB.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// Create inserts a completion entry. The unique (assignmentId, completedDate)
// index makes a concurrent same-day insert fail here instead of slipping past
// the service-level existence check.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	if progress.AssignmentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires an assignmentId")
	}
	if progress.CompletedDate.IsZero() {
		return primitive.NilObjectID, errors.New("progress requires a completedDate")
	}

	progress.ID = primitive.NewObjectID()
	progress.CompletedDate = domain.DateOnly(progress.CompletedDate)
	progress.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress ID")
	}
	return insertedID, nil
}

// GetByID retrieves a progress entry by its ID.
func (r *mongoProgressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Progress, error) {
	var progress domain.Progress
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetByAssignmentID retrieves all completions for one assignment, newest day first.
func (r *mongoProgressRepository) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Progress, error) {
	return r.findMany(ctx, bson.M{"assignmentId": assignmentID}, 0)
}

// GetByAssignmentIDs retrieves completions across several assignments,
// newest day first, optionally capped at limit.
func (r *mongoProgressRepository) GetByAssignmentIDs(ctx context.Context, assignmentIDs []primitive.ObjectID, limit int64) ([]domain.Progress, error) {
	if len(assignmentIDs) == 0 {
		return []domain.Progress{}, nil
	}
	return r.findMany(ctx, bson.M{"assignmentId": bson.M{"$in": assignmentIDs}}, limit)
}

func (r *mongoProgressRepository) findMany(ctx context.Context, filter bson.M, limit int64) ([]domain.Progress, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "completedDate", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.Progress
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByAssignmentAndDate looks up the completion for one assignment on one calendar day.
func (r *mongoProgressRepository) GetByAssignmentAndDate(ctx context.Context, assignmentID primitive.ObjectID, date time.Time) (*domain.Progress, error) {
	var progress domain.Progress
	filter := bson.M{"assignmentId": assignmentID, "completedDate": domain.DateOnly(date)}

	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// CountByAssignmentSince counts completions for one assignment dated on/after since.
func (r *mongoProgressRepository) CountByAssignmentSince(ctx context.Context, assignmentID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"assignmentId":  assignmentID,
		"completedDate": bson.M{"$gte": domain.DateOnly(since)},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountDistinctAssignmentsSince counts how many of the given assignments have
// at least one completion dated on/after since.
func (r *mongoProgressRepository) CountDistinctAssignmentsSince(ctx context.Context, assignmentIDs []primitive.ObjectID, since time.Time) (int, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}

	filter := bson.M{
		"assignmentId":  bson.M{"$in": assignmentIDs},
		"completedDate": bson.M{"$gte": domain.DateOnly(since)},
	}

	values, err := r.collection.Distinct(ctx, "assignmentId", filter)
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

// Update overwrites the correctable fields of a progress entry.
// The completion date never changes after the fact.
func (r *mongoProgressRepository) Update(ctx context.Context, progress *domain.Progress) error {
	if progress.ID == primitive.NilObjectID {
		return errors.New("progress ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"notes":      progress.Notes,
			"painLevel":  progress.PainLevel,
			"difficulty": progress.Difficulty,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": progress.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates necessary indexes for the progress collection.
// The unique compound index is what enforces the one-completion-per-day invariant.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "completedDate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "completedDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
