package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/repository"
	"peakform/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRoadmapNotFound = errors.New("no roadmap found")
)

// Roadmaps with no event date get this default horizon.
const defaultRoadmapWeeks = 12

// --- Service Interface ---

// RoadmapService generates and serves the multi-week plan of cycles and daily
// exercises for an athlete.
type RoadmapService interface {
	// Generate builds and stores the roadmap for a confirmed cycle
	// selection. Regenerating replaces any previous roadmap.
	Generate(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile, selection domain.CycleSelection, rec *domain.ReadinessRecommendation) (*domain.Roadmap, error)

	// Get returns the athlete's current roadmap.
	Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.Roadmap, error)

	// GenerateLegacy serves the previous API generation: its timelines are
	// flat lists of plain strings rather than structured day objects.
	GenerateLegacy(ctx context.Context, athleteID primitive.ObjectID, primaryGoal, eventDate string, cycle domain.CycleName) (*domain.Roadmap, error)

	// Rollover flips active/completed flags on cycles whose date windows
	// have passed. Returns the number of roadmaps touched.
	Rollover(ctx context.Context, now time.Time) (int, error)
}

// --- Service Implementation ---

type roadmapService struct {
	roadmapRepo repository.RoadmapRepository
	programRepo repository.ProgramRepository
	media       storage.MediaStorage
	now         func() time.Time
}

// NewRoadmapService creates a new instance of roadmapService. media may be
// nil, in which case exercise video keys are passed through unsigned.
func NewRoadmapService(roadmapRepo repository.RoadmapRepository, programRepo repository.ProgramRepository, media storage.MediaStorage) RoadmapService {
	return &roadmapService{
		roadmapRepo: roadmapRepo,
		programRepo: programRepo,
		media:       media,
		now:         time.Now,
	}
}

// phaseRatios maps the chosen (first) cycle to the split of total weeks over
// the remaining Green -> Amber -> Red progression.
func phaseSplit(start domain.CycleName, totalWeeks int) []domain.RoadmapCycle {
	type phase struct {
		name  domain.CycleName
		ratio float64
	}
	var phases []phase
	switch start {
	case domain.CycleGreen:
		phases = []phase{{domain.CycleGreen, 0.40}, {domain.CycleAmber, 0.35}, {domain.CycleRed, 0.25}}
	case domain.CycleAmber:
		phases = []phase{{domain.CycleAmber, 0.60}, {domain.CycleRed, 0.40}}
	default:
		phases = []phase{{domain.CycleRed, 1.0}}
	}

	cycles := make([]domain.RoadmapCycle, 0, len(phases))
	assigned := 0
	for i, p := range phases {
		weeks := int(float64(totalWeeks)*p.ratio + 0.5)
		if weeks < 1 {
			weeks = 1
		}
		if i == len(phases)-1 {
			// Last phase absorbs rounding drift.
			weeks = totalWeeks - assigned
			if weeks < 1 {
				weeks = 1
			}
		}
		assigned += weeks
		cycles = append(cycles, domain.RoadmapCycle{
			Name:          p.name,
			Type:          p.name.Type(),
			DurationWeeks: weeks,
		})
	}
	return cycles
}

// Generate builds the cycle phases from the selection, stamps program
// templates into the timeline, presigns video links and stores the result.
func (s *roadmapService) Generate(ctx context.Context, athleteID primitive.ObjectID, profile domain.OnboardingProfile, selection domain.CycleSelection, rec *domain.ReadinessRecommendation) (*domain.Roadmap, error) {
	if !selection.CycleName.IsValid() {
		return nil, fmt.Errorf("invalid cycle name %q", selection.CycleName)
	}

	totalWeeks := 0
	if rec != nil {
		totalWeeks = rec.WeeksToEvent
	}
	if totalWeeks <= 0 {
		totalWeeks = defaultRoadmapWeeks
	}

	cycles := phaseSplit(selection.CycleName, totalWeeks)

	// Date windows run consecutively from today.
	cursor := s.now().UTC().Truncate(24 * time.Hour)
	timeline := make(map[string]map[string]domain.TimelineDays, len(cycles))
	for i := range cycles {
		cycles[i].StartDate = cursor
		cursor = cursor.AddDate(0, 0, cycles[i].DurationWeeks*7)
		cycles[i].EndDate = cursor.AddDate(0, 0, -1)
		cycles[i].Active = i == 0
		cycles[i].Completed = false

		program := s.lookupProgram(ctx, cycles[i].Name, profile.PrimaryGoal, selection, rec, i == 0)
		if program != nil {
			cycles[i].ProgramID = &program.ID
		}
		timeline[cycles[i].Type] = s.buildCycleWeeks(ctx, cycles[i], program)
	}

	roadmap := &domain.Roadmap{
		AthleteID:    athleteID,
		PrimaryGoal:  profile.PrimaryGoal,
		EventDate:    profile.EventDate,
		TotalWeeks:   totalWeeks,
		CurrentCycle: selection.CycleName,
		Cycles:       cycles,
		Timeline:     timeline,
	}

	if _, err := s.roadmapRepo.Save(ctx, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

// lookupProgram resolves the program for a phase. An explicit selection wins
// on the first (chosen) phase, then the recommendation's program, then the
// cycle/goal template lookup.
func (s *roadmapService) lookupProgram(ctx context.Context, cycle domain.CycleName, goal string, selection domain.CycleSelection, rec *domain.ReadinessRecommendation, firstPhase bool) *domain.Program {
	if firstPhase && selection.ProgramID != nil {
		if program, err := s.programRepo.GetByID(ctx, *selection.ProgramID); err == nil {
			return program
		}
	}
	if firstPhase && rec != nil && rec.RecommendedProgramID != nil && rec.RecommendedCycle == cycle {
		if program, err := s.programRepo.GetByID(ctx, *rec.RecommendedProgramID); err == nil {
			return program
		}
	}
	program, err := s.programRepo.FindByCycleAndGoal(ctx, cycle, goal)
	if err != nil {
		return nil
	}
	return program
}

// buildCycleWeeks fills one cycle's timeline. Template weeks repeat when the
// phase outlasts the template. The final week of a Red phase collapses into a
// single taper day object, which is one of the three timeline shapes clients
// must render.
func (s *roadmapService) buildCycleWeeks(ctx context.Context, cycle domain.RoadmapCycle, program *domain.Program) map[string]domain.TimelineDays {
	weeks := make(map[string]domain.TimelineDays, cycle.DurationWeeks)
	for w := 1; w <= cycle.DurationWeeks; w++ {
		key := fmt.Sprintf("week%d", w)

		if cycle.Name == domain.CycleRed && w == cycle.DurationWeeks {
			weeks[key] = domain.TimelineDays{Day: &domain.DayExercise{
				DayLabel: "Taper",
				Exercises: []domain.ExerciseItem{
					{Name: "Event rehearsal", Description: "Short openers at competition load", Sets: 3, Reps: "1", Load: "90%"},
				},
			}}
			continue
		}

		var days []domain.DayExercise
		if program != nil && len(program.Weeks) > 0 {
			days = cloneDays(program.Weeks[(w-1)%len(program.Weeks)])
		} else {
			days = defaultWeek(cycle.Name)
		}
		for i := range days {
			s.presignVideos(ctx, days[i].Exercises)
		}
		weeks[key] = domain.TimelineDays{Days: days}
	}
	return weeks
}

// presignVideos swaps stored object keys for presigned download URLs.
// Failures leave the key in place; display code treats it as absent.
func (s *roadmapService) presignVideos(ctx context.Context, items []domain.ExerciseItem) {
	if s.media == nil {
		return
	}
	for i := range items {
		if key := items[i].VideoURL; key != "" && !strings.HasPrefix(key, "http") {
			url, err := s.media.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
			if err == nil {
				items[i].VideoURL = url
			}
		}
		if items[i].Alternate != nil {
			s.presignVideos(ctx, []domain.ExerciseItem{*items[i].Alternate})
		}
	}
}

func cloneDays(src []domain.DayExercise) []domain.DayExercise {
	days := make([]domain.DayExercise, len(src))
	copy(days, src)
	for i := range days {
		exercises := make([]domain.ExerciseItem, len(src[i].Exercises))
		copy(exercises, src[i].Exercises)
		days[i].Exercises = exercises
	}
	return days
}

// defaultWeek is the fallback template when no program exists for a cycle.
func defaultWeek(cycle domain.CycleName) []domain.DayExercise {
	intensity := map[domain.CycleName]string{
		domain.CycleGreen: "RPE 6",
		domain.CycleAmber: "RPE 7-8",
		domain.CycleRed:   "RPE 9",
	}[cycle]
	return []domain.DayExercise{
		{DayLabel: "Day 1", Exercises: []domain.ExerciseItem{
			{Name: "Squat", Sets: 4, Reps: "6-8", Load: intensity},
			{Name: "Bench Press", Sets: 4, Reps: "6-8", Load: intensity},
		}},
		{DayLabel: "Day 2", RestDay: true},
		{DayLabel: "Day 3", Exercises: []domain.ExerciseItem{
			{Name: "Deadlift", Sets: 3, Reps: "5", Load: intensity},
			{Name: "Overhead Press", Sets: 3, Reps: "8-10", Load: intensity,
				Alternate: &domain.ExerciseItem{Name: "Incline Dumbbell Press", Sets: 3, Reps: "10-12"}},
		}},
		{DayLabel: "Day 4", RestDay: true},
		{DayLabel: "Day 5", Exercises: []domain.ExerciseItem{
			{Name: "Row", Sets: 4, Reps: "8-10", Load: intensity},
			{Name: "Pull-up", Sets: 3, Reps: "AMRAP"},
		}},
	}
}

// Get returns the athlete's current roadmap.
func (s *roadmapService) Get(ctx context.Context, athleteID primitive.ObjectID) (*domain.Roadmap, error) {
	roadmap, err := s.roadmapRepo.GetByAthleteID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoadmapNotFound
		}
		return nil, err
	}
	return roadmap, nil
}

// GenerateLegacy reproduces the previous generator: same cycle math, but each
// week is a flat list of strings. Kept for clients that have not migrated.
func (s *roadmapService) GenerateLegacy(ctx context.Context, athleteID primitive.ObjectID, primaryGoal, eventDate string, cycle domain.CycleName) (*domain.Roadmap, error) {
	if !cycle.IsValid() {
		return nil, fmt.Errorf("invalid cycle name %q", cycle)
	}

	totalWeeks := weeksToEvent(eventDate, s.now())
	if totalWeeks <= 0 {
		totalWeeks = defaultRoadmapWeeks
	}

	cycles := phaseSplit(cycle, totalWeeks)
	cursor := s.now().UTC().Truncate(24 * time.Hour)
	timeline := make(map[string]map[string]domain.TimelineDays, len(cycles))
	for i := range cycles {
		cycles[i].StartDate = cursor
		cursor = cursor.AddDate(0, 0, cycles[i].DurationWeeks*7)
		cycles[i].EndDate = cursor.AddDate(0, 0, -1)
		cycles[i].Active = i == 0

		weeks := make(map[string]domain.TimelineDays, cycles[i].DurationWeeks)
		for w := 1; w <= cycles[i].DurationWeeks; w++ {
			var notes []string
			for _, day := range defaultWeek(cycles[i].Name) {
				if day.RestDay {
					notes = append(notes, fmt.Sprintf("%s: Rest", day.DayLabel))
					continue
				}
				parts := make([]string, 0, len(day.Exercises))
				for _, ex := range day.Exercises {
					parts = append(parts, fmt.Sprintf("%s %dx%s", ex.Name, ex.Sets, ex.Reps))
				}
				notes = append(notes, fmt.Sprintf("%s: %s", day.DayLabel, strings.Join(parts, ", ")))
			}
			weeks[fmt.Sprintf("week%d", w)] = domain.TimelineDays{Notes: notes}
		}
		timeline[cycles[i].Type] = weeks
	}

	roadmap := &domain.Roadmap{
		AthleteID:    athleteID,
		PrimaryGoal:  primaryGoal,
		EventDate:    eventDate,
		TotalWeeks:   totalWeeks,
		CurrentCycle: cycle,
		Cycles:       cycles,
		Timeline:     timeline,
	}

	if _, err := s.roadmapRepo.Save(ctx, roadmap); err != nil {
		return nil, err
	}
	return roadmap, nil
}

// Rollover walks active roadmaps and advances cycle flags past their date
// windows. Run nightly by the scheduler.
func (s *roadmapService) Rollover(ctx context.Context, now time.Time) (int, error) {
	roadmaps, err := s.roadmapRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	touched := 0
	for i := range roadmaps {
		roadmap := &roadmaps[i]
		changed := false
		for j := range roadmap.Cycles {
			c := &roadmap.Cycles[j]
			if !c.Completed && now.After(c.EndDate) {
				c.Completed = true
				c.Active = false
				changed = true
			} else if !c.Completed && !c.Active && !now.Before(c.StartDate) {
				c.Active = true
				roadmap.CurrentCycle = c.Name
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.roadmapRepo.Update(ctx, roadmap); err != nil {
			log.Printf("ERROR: cycle rollover failed for roadmap %s: %v", roadmap.ID.Hex(), err)
			continue
		}
		touched++
	}
	return touched, nil
}
