package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Banner struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	ImageURL  string             `bson:"imageUrl" json:"imageUrl"`
	LinkURL   string             `bson:"linkUrl,omitempty" json:"linkUrl,omitempty"`
	Position  int                `bson:"position" json:"position"`
	StartAt   *time.Time         `bson:"startAt,omitempty" json:"startAt,omitempty"`
	EndAt     *time.Time         `bson:"endAt,omitempty" json:"endAt,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
