package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single rehabilitation exercise definition.
// It is created by a trainer and referenced (never owned) by Assignments.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Trainer who created/owns this exercise
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"` // Step-by-step execution details
	VideoURL     string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`         // Media store URL, stored verbatim
	BodyPart     string             `bson:"bodyPart" json:"bodyPart"` // e.g., "Knee", "Shoulder"
	Category     string             `bson:"category" json:"category"` // e.g., "Mobility", "Strength"
	Duration     *int               `bson:"duration,omitempty" json:"duration,omitempty"` // Minutes (pointer for nullability)
	Sets         *int               `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps         *int               `bson:"reps,omitempty" json:"reps,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
