package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Frequency governs the expected completion cadence of an assignment.
type Frequency string

const (
	FrequencyDaily            Frequency = "daily"
	FrequencyWeekly           Frequency = "weekly"
	FrequencyTwiceWeekly      Frequency = "twice_weekly"
	FrequencyThreeTimesWeekly Frequency = "three_times_weekly"
)

// ValidFrequency reports whether the given frequency is one of the closed set.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyTwiceWeekly, FrequencyThreeTimesWeekly:
		return true
	}
	return false
}

// AssignmentStatus type for assignment lifecycle
type AssignmentStatus string

const (
	StatusActive    AssignmentStatus = "active"
	StatusCompleted AssignmentStatus = "completed"
	StatusPaused    AssignmentStatus = "paused"
)

// Assignment connects an Exercise to an Athlete, as assigned by a Trainer.
// It is the aggregation root joining User x User x Exercise.
type Assignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID  primitive.ObjectID `bson:"athleteId" json:"athleteId"`   // Link to the Athlete
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Link to the specific Exercise
	TrainerID  primitive.ObjectID `bson:"trainerId" json:"trainerId"`   // Link to the Trainer (denormalized for easier queries/auth)
	Frequency  Frequency          `bson:"frequency" json:"frequency"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"` // Optional (pointer for nullability)
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`     // Notes from the trainer
	Status     AssignmentStatus   `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
