package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleAthlete Role = "athlete"
)

// ValidRole reports whether the given role is one of the closed set.
func ValidRole(r Role) bool {
	return r == RoleTrainer || r == RoleAthlete
}

// User represents a user in the system (either a Trainer or an Athlete).
// The role is fixed at registration and never changes afterwards.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Role         Role               `bson:"role" json:"role"`
	Sport        string             `bson:"sport,omitempty" json:"sport,omitempty"`       // e.g., "Football", "Swimming"
	Position     string             `bson:"position,omitempty" json:"position,omitempty"` // e.g., "Goalkeeper"
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}
