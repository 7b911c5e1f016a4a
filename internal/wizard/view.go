package wizard

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"peakform/coaching-app/internal/client"
	"peakform/coaching-app/internal/domain"
)

// FormatConfidence renders a 0..1 confidence as a whole percentage.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(confidence*100)))
}

// DisplayError turns an error into the text a step shows inline: the
// server-supplied message verbatim when present, else the generic fallback.
func DisplayError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return client.GenericFailureMessage
}

// RenderRecommendation produces the step-two summary lines.
func RenderRecommendation(rec *domain.ReadinessRecommendation) []string {
	if rec == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("Recommended cycle: %s", rec.RecommendedCycle),
		fmt.Sprintf("Confidence: %s", FormatConfidence(rec.Confidence)),
	}
	if rec.WeeksToEvent > 0 {
		lines = append(lines, fmt.Sprintf("Weeks to event: %d", rec.WeeksToEvent))
	}
	if rec.Reason != "" {
		lines = append(lines, rec.Reason)
	}
	if rec.TransitionNote != "" {
		lines = append(lines, rec.TransitionNote)
	}
	return lines
}

// FormatDays renders one timeline week as display lines, tolerating all
// three payload shapes. Structured days render fully; the legacy string list
// passes through as-is; empty or unrecognized weeks render nothing rather
// than failing.
func FormatDays(days domain.TimelineDays) []string {
	switch days.Shape() {
	case domain.ShapeDayList:
		var lines []string
		for _, day := range days.Days {
			lines = append(lines, formatDay(day)...)
		}
		return lines
	case domain.ShapeSingleDay:
		return formatDay(*days.Day)
	case domain.ShapeLegacyNotes:
		return append([]string(nil), days.Notes...)
	}
	return nil
}

func formatDay(day domain.DayExercise) []string {
	if day.RestDay {
		return []string{fmt.Sprintf("%s: Rest", day.DayLabel)}
	}
	lines := []string{day.DayLabel + ":"}
	for _, ex := range day.Exercises {
		lines = append(lines, "  "+formatExercise(ex))
		if ex.Alternate != nil {
			lines = append(lines, "    alt: "+formatExercise(*ex.Alternate))
		}
	}
	return lines
}

func formatExercise(ex domain.ExerciseItem) string {
	var b strings.Builder
	b.WriteString(ex.Name)
	if ex.Sets > 0 {
		b.WriteString(fmt.Sprintf(" %dx%s", ex.Sets, ex.Reps))
	}
	if ex.Load != "" {
		b.WriteString(" @ " + ex.Load)
	}
	return b.String()
}

// RenderRoadmap produces the step-four display: cycle phases in order, then
// each cycle's weeks in numeric order.
func RenderRoadmap(roadmap *domain.Roadmap) []string {
	if roadmap == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("Goal: %s", roadmap.PrimaryGoal),
		fmt.Sprintf("Total weeks: %d", roadmap.TotalWeeks),
		fmt.Sprintf("Current cycle: %s", roadmap.CurrentCycle),
	}
	for _, cycle := range roadmap.Cycles {
		lines = append(lines, fmt.Sprintf("-- %s cycle (%d weeks, %s to %s)",
			cycle.Name, cycle.DurationWeeks,
			cycle.StartDate.Format("2006-01-02"), cycle.EndDate.Format("2006-01-02")))

		weeks := roadmap.Timeline[cycle.Type]
		for _, key := range sortedWeekKeys(weeks) {
			lines = append(lines, fmt.Sprintf("  %s:", key))
			for _, line := range FormatDays(weeks[key]) {
				lines = append(lines, "    "+line)
			}
		}
	}
	return lines
}

// sortedWeekKeys orders "week1".."weekN" numerically, with anything
// unparseable sorted last lexically.
func sortedWeekKeys(weeks map[string]domain.TimelineDays) []string {
	keys := make([]string, 0, len(weeks))
	for key := range weeks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := weekNumber(keys[i])
		nj, jok := weekNumber(keys[j])
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

func weekNumber(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "week"))
	return n, err == nil
}
