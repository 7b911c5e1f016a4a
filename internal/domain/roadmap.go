package domain

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseItem is one prescribed exercise inside a roadmap day. Entirely
// display data from the client's perspective.
type ExerciseItem struct {
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Sets        int           `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps        string        `bson:"reps,omitempty" json:"reps,omitempty"` // "8-12", "AMRAP", ...
	Load        string        `bson:"load,omitempty" json:"load,omitempty"`
	VideoURL    string        `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Alternate   *ExerciseItem `bson:"alternate,omitempty" json:"alternate,omitempty"`
}

// DayExercise is one day entry in a roadmap week.
type DayExercise struct {
	DayLabel  string         `bson:"dayLabel" json:"dayLabel"`
	RestDay   bool           `bson:"restDay" json:"restDay"`
	Exercises []ExerciseItem `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

// TimelineShape discriminates the three wire shapes a roadmap week can carry.
// The heterogeneity is a versioning artifact of the API: current payloads send
// structured day lists, certain cycle types send a single day object, and the
// legacy generator sent a flat list of plain strings. All three generations
// are still in the wild, so all three must decode.
type TimelineShape int

const (
	ShapeEmpty TimelineShape = iota
	ShapeDayList
	ShapeSingleDay
	ShapeLegacyNotes
)

// TimelineDays holds one week of a roadmap timeline in whichever shape the
// backend produced it. Exactly one of Days, Day or Notes is populated; use
// Shape to dispatch instead of sniffing fields.
type TimelineDays struct {
	Days  []DayExercise `bson:"days,omitempty"`
	Day   *DayExercise  `bson:"day,omitempty"`
	Notes []string      `bson:"notes,omitempty"`
}

// Shape returns the discriminator for the populated variant.
func (t TimelineDays) Shape() TimelineShape {
	switch {
	case len(t.Days) > 0:
		return ShapeDayList
	case t.Day != nil:
		return ShapeSingleDay
	case len(t.Notes) > 0:
		return ShapeLegacyNotes
	}
	return ShapeEmpty
}

// UnmarshalJSON accepts a list of day objects, a single day object, or a
// legacy list of plain strings. Absent, null or unrecognized data decodes to
// the empty shape rather than failing.
func (t *TimelineDays) UnmarshalJSON(data []byte) error {
	*t = TimelineDays{}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	trimmed := firstByte(raw)
	switch trimmed {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil // tolerate malformed weeks
		}
		if len(elems) == 0 {
			return nil
		}
		switch firstByte(elems[0]) {
		case '{':
			var days []DayExercise
			if err := json.Unmarshal(raw, &days); err == nil {
				t.Days = days
			}
		case '"':
			var notes []string
			if err := json.Unmarshal(raw, &notes); err == nil {
				t.Notes = notes
			}
		}
	case '{':
		var day DayExercise
		if err := json.Unmarshal(raw, &day); err == nil {
			t.Day = &day
		}
	}
	return nil
}

// MarshalJSON re-emits the populated variant in its original wire shape.
func (t TimelineDays) MarshalJSON() ([]byte, error) {
	switch t.Shape() {
	case ShapeDayList:
		return json.Marshal(t.Days)
	case ShapeSingleDay:
		return json.Marshal(t.Day)
	case ShapeLegacyNotes:
		return json.Marshal(t.Notes)
	}
	return []byte("[]"), nil
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}

// RoadmapCycle is one phase entry in a roadmap.
type RoadmapCycle struct {
	Name          CycleName           `bson:"name" json:"name"`
	Type          string              `bson:"type" json:"type"` // lowercase timeline key
	StartDate     time.Time           `bson:"startDate" json:"startDate"`
	EndDate       time.Time           `bson:"endDate" json:"endDate"`
	Active        bool                `bson:"active" json:"active"`
	Completed     bool                `bson:"completed" json:"completed"`
	ProgramID     *primitive.ObjectID `bson:"programId,omitempty" json:"programId,omitempty"`
	DurationWeeks int                 `bson:"durationWeeks" json:"durationWeeks"`
}

// Roadmap is the generated multi-week plan of cycles and daily exercises for
// an athlete. Read-only from the client's perspective; the server regenerates
// it on cycle confirmation.
type Roadmap struct {
	ID           primitive.ObjectID                 `bson:"_id,omitempty" json:"id"`
	AthleteID    primitive.ObjectID                 `bson:"athleteId" json:"athleteId"`
	PrimaryGoal  string                             `bson:"primaryGoal" json:"primaryGoal"`
	EventDate    string                             `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	TotalWeeks   int                                `bson:"totalWeeks" json:"totalWeeks"`
	CurrentCycle CycleName                          `bson:"currentCycle" json:"currentCycle"`
	Cycles       []RoadmapCycle                     `bson:"cycles" json:"cycles"`
	Timeline     map[string]map[string]TimelineDays `bson:"timeline" json:"timeline"` // cycle type -> week key -> days
	CreatedAt    time.Time                          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                          `bson:"updatedAt" json:"updatedAt"`
}
