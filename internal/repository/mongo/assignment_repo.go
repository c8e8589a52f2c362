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

const assignmentCollectionName = "assignments"

// mongoAssignmentRepository implements repository.AssignmentRepository
type mongoAssignmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAssignmentRepository creates a new Assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		collection: db.Collection(assignmentCollectionName),
	}
}

// Create inserts a new assignment into the database.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.AthleteID == primitive.NilObjectID ||
		assignment.ExerciseID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires athleteId, exerciseId, and trainerId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusActive
	}

	result, err := r.collection.InsertOne(ctx, assignment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByIDAndTrainer retrieves an assignment only when the given trainer owns it.
// Absent and not-owned are indistinguishable to the caller.
func (r *mongoAssignmentRepository) GetByIDAndTrainer(ctx context.Context, id, trainerID primitive.ObjectID) (*domain.Assignment, error) {
	return r.findOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
}

func (r *mongoAssignmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// GetByTrainerID retrieves all assignments created by a trainer, newest first.
func (r *mongoAssignmentRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Assignment, error) {
	return r.findMany(ctx, bson.M{"trainerId": trainerID}, bson.D{{Key: "createdAt", Value: -1}})
}

// GetByAthleteID retrieves all assignments for an athlete regardless of status.
func (r *mongoAssignmentRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error) {
	return r.findMany(ctx, bson.M{"athleteId": athleteID}, bson.D{{Key: "createdAt", Value: -1}})
}

// GetActiveByAthleteID retrieves an athlete's active assignments, most recent start first.
func (r *mongoAssignmentRepository) GetActiveByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.Assignment, error) {
	filter := bson.M{"athleteId": athleteID, "status": domain.StatusActive}
	return r.findMany(ctx, filter, bson.D{{Key: "startDate", Value: -1}})
}

// GetActiveStartedBefore retrieves the athlete's active assignments whose
// startDate is on or before the cutoff.
func (r *mongoAssignmentRepository) GetActiveStartedBefore(ctx context.Context, athleteID primitive.ObjectID, cutoff time.Time) ([]domain.Assignment, error) {
	filter := bson.M{
		"athleteId": athleteID,
		"status":    domain.StatusActive,
		"startDate": bson.M{"$lte": cutoff},
	}
	return r.findMany(ctx, filter, bson.D{{Key: "startDate", Value: -1}})
}

func (r *mongoAssignmentRepository) findMany(ctx context.Context, filter bson.M, sort bson.D) ([]domain.Assignment, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Update replaces the mutable fields of an assignment.
func (r *mongoAssignmentRepository) Update(ctx context.Context, assignment *domain.Assignment) error {
	if assignment.ID == primitive.NilObjectID {
		return errors.New("assignment ID is required for update")
	}

	updateFields := assignmentUpdateFields(assignment, time.Now().UTC())

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": assignment.ID}, bson.M{"$set": updateFields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// assignmentUpdateFields builds the $set document for Update. endDate is
// written unconditionally so a nil value stores null and clears any
// previously set date.
func assignmentUpdateFields(assignment *domain.Assignment, now time.Time) bson.M {
	return bson.M{
		"frequency": assignment.Frequency,
		"startDate": assignment.StartDate,
		"endDate":   assignment.EndDate,
		"notes":     assignment.Notes,
		"status":    assignment.Status,
		"updatedAt": now,
	}
}

// Delete hard-deletes an assignment, scoped to its owning trainer.
// Progress rows are deliberately left in place (no cascade).
func (r *mongoAssignmentRepository) Delete(ctx context.Context, id, trainerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByTrainer counts all assignments created by a trainer.
func (r *mongoAssignmentRepository) CountByTrainer(ctx context.Context, trainerID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID})
}

// CountByTrainerAndStatus counts a trainer's assignments in a given status.
func (r *mongoAssignmentRepository) CountByTrainerAndStatus(ctx context.Context, trainerID primitive.ObjectID, status domain.AssignmentStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"trainerId": trainerID, "status": status})
}

// EnsureAssignmentIndexes creates necessary indexes for the assignments collection.
func EnsureAssignmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
