package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingSummary holds the denormalized rating aggregates recomputed on every
// rating write. Histogram index 0 counts 1-star ratings.
type RatingSummary struct {
	Average   float64 `bson:"average" json:"average"`
	Total     int     `bson:"total" json:"total"`
	Histogram [5]int  `bson:"histogram" json:"histogram"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	Unit        string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
	InStock     bool               `bson:"-" json:"inStock"`
	Rating      RatingSummary      `bson:"rating" json:"rating"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
