package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DisplayName string             `json:"display_name" bson:"display_name" validate:"required,min=2,max=50"`
	Email       string             `json:"email" bson:"email" validate:"required,email"`
	Password    string             `json:"-" bson:"password"`
	PhotoURL    string             `json:"photo_url" bson:"photo_url"`
	Bio         string             `json:"bio" bson:"bio"`
	Status      UserStatus         `json:"status" bson:"status" default:"active"`
	RatingAvg   float64            `json:"rating_avg" bson:"rating_avg"`
	RatingCount int64              `json:"rating_count" bson:"rating_count"`
	LastLoginAt *time.Time         `json:"last_login_at" bson:"last_login_at"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublicProfile strips fields other users should not see.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"display_name": u.DisplayName,
		"photo_url":    u.PhotoURL,
		"bio":          u.Bio,
		"rating_avg":   u.RatingAvg,
		"rating_count": u.RatingCount,
		"member_since": u.CreatedAt,
	}
}
