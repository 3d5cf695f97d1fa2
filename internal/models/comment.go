package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a free-text product comment, optionally replying to another.
type Comment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID  `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID  `bson:"userId" json:"userId"`
	UserName  string              `bson:"userName" json:"userName"`
	Content   string              `bson:"content" json:"content"`
	ParentID  *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
