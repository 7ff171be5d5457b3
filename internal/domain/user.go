package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the domain entity for a user account. The password hash never
// leaves the service layer; json:"-" keeps it out of the Redis cache too.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Fullname     string             `bson:"fullname" json:"fullname"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
