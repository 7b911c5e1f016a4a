package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalType is an admin-managed taxonomy entry of category/subcategory pairs.
// Athletes pick their primary and secondary goals from this list during
// onboarding.
type GoalType struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category    string             `bson:"category" json:"category"`       // e.g. "Strength"
	Subcategory string             `bson:"subcategory,omitempty" json:"subcategory,omitempty"` // e.g. "Powerlifting"
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
