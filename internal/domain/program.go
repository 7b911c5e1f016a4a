package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a reusable week-by-week exercise template authored by a coach.
// Roadmap generation stamps a program's weeks into the timeline of the cycle
// it belongs to.
type Program struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID       primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // Who authored the program
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CycleName     CycleName          `bson:"cycleName" json:"cycleName"` // Which cycle this program serves
	Goal          string             `bson:"goal,omitempty" json:"goal,omitempty"` // Primary goal category it targets
	DurationWeeks int                `bson:"durationWeeks" json:"durationWeeks"`
	// Weeks[i] is the list of day entries for week i+1. Exercise VideoURL
	// fields hold S3 object keys here; presigned URLs are substituted when
	// the program is stamped into a roadmap.
	Weeks     [][]DayExercise `bson:"weeks,omitempty" json:"weeks,omitempty"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}
