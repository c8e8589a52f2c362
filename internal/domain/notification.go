package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies what triggered a notification.
type NotificationType string

const (
	NotificationAssignment NotificationType = "assignment" // New exercise assigned
	NotificationProgress   NotificationType = "progress"   // Athlete logged a completion
)

// Notification is one entry in a user's append-only event log.
// Rows are never deleted; only the IsRead flag ever changes.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"` // Recipient
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      NotificationType   `bson:"type" json:"type"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
