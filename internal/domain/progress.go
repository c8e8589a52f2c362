package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pain and difficulty score bounds for a progress entry.
const (
	PainLevelMin  = 1
	PainLevelMax  = 10
	DifficultyMin = 1
	DifficultyMax = 5
)

// Progress records one completion event for an assignment on a specific
// calendar date. At most one entry may exist per (assignmentId, completedDate);
// the storage layer enforces this with a unique compound index.
type Progress struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	CompletedDate time.Time         `bson:"completedDate" json:"completedDate"` // UTC calendar day (midnight)
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	PainLevel    *int               `bson:"painLevel,omitempty" json:"painLevel,omitempty"`   // 1..10 (pointer for nullability)
	Difficulty   *int               `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // 1..5
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
