package service

import (
	"context"
	"fmt"
	"math"

	"rehabtrack/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultComplianceWindowDays is the rolling window used when the caller does
// not specify one.
const DefaultComplianceWindowDays = 30

// ExerciseCompliance is the expected-vs-actual breakdown for one assignment.
type ExerciseCompliance struct {
	AssignmentID   string           `json:"assignmentId"`
	ExerciseName   string           `json:"exerciseName"`
	Frequency      domain.Frequency `json:"frequency"`
	ExpectedCount  int              `json:"expectedCount"`
	CompletedCount int              `json:"completedCount"`
	ComplianceRate float64          `json:"complianceRate"`
}

// ComplianceReport is the athlete-level compliance summary over the window.
type ComplianceReport struct {
	Period             string               `json:"period"`
	OverallCompliance  int                  `json:"overallCompliance"`
	ExerciseCompliance []ExerciseCompliance `json:"exerciseCompliance"`
}

// expectedCompletions maps a frequency onto the number of completions expected
// over a window of the given length. This is a linear count model, not a
// calendar scheduler: it never checks which days were expected.
func expectedCompletions(frequency domain.Frequency, days int) int {
	switch frequency {
	case domain.FrequencyDaily:
		return days
	case domain.FrequencyTwiceWeekly:
		return days * 2
	case domain.FrequencyThreeTimesWeekly:
		return days * 3
	case domain.FrequencyWeekly:
		return int(math.Ceil(float64(days) / 7.0))
	}
	return 0
}

// complianceRate returns completed/expected as a percentage, capped at 100,
// guarding the zero-expected case so the result is never NaN.
func complianceRate(completed, expected int) float64 {
	if expected <= 0 {
		return 0
	}
	return math.Min(100, float64(completed)/float64(expected)*100)
}

// overallCompliance is the arithmetic mean of per-assignment rates, rounded to
// the nearest integer; 0 when there is nothing to average.
func overallCompliance(items []ExerciseCompliance) int {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range items {
		sum += item.ComplianceRate
	}
	return int(math.Round(sum / float64(len(items))))
}

// Compliance computes the expected-vs-actual completion report for an athlete
// over a rolling window of days (default 30). Only active assignments started
// on/before the window start qualify.
func (s *progressService) Compliance(ctx context.Context, callerID primitive.ObjectID, callerRole domain.Role, athleteID primitive.ObjectID, days int) (*ComplianceReport, error) {
	if callerRole == domain.RoleAthlete && callerID != athleteID {
		return nil, ErrAccessDenied
	}
	if days <= 0 {
		days = DefaultComplianceWindowDays
	}

	windowStart := domain.DateOnly(s.now()).AddDate(0, 0, -days)

	assignments, err := s.assignmentRepo.GetActiveStartedBefore(ctx, athleteID, windowStart)
	if err != nil {
		return nil, err
	}

	exerciseIDs := make([]primitive.ObjectID, 0, len(assignments))
	seen := make(map[primitive.ObjectID]bool)
	for _, a := range assignments {
		if !seen[a.ExerciseID] {
			seen[a.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, a.ExerciseID)
		}
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	exerciseNames := make(map[primitive.ObjectID]string, len(exercises))
	for _, e := range exercises {
		exerciseNames[e.ID] = e.Name
	}

	items := make([]ExerciseCompliance, 0, len(assignments))
	for _, a := range assignments {
		completed, err := s.progressRepo.CountByAssignmentSince(ctx, a.ID, windowStart)
		if err != nil {
			return nil, err
		}
		expected := expectedCompletions(a.Frequency, days)
		items = append(items, ExerciseCompliance{
			AssignmentID:   a.ID.Hex(),
			ExerciseName:   exerciseNames[a.ExerciseID],
			Frequency:      a.Frequency,
			ExpectedCount:  expected,
			CompletedCount: int(completed),
			ComplianceRate: complianceRate(int(completed), expected),
		})
	}

	return &ComplianceReport{
		Period:             fmt.Sprintf("%d days", days),
		OverallCompliance:  overallCompliance(items),
		ExerciseCompliance: items,
	}, nil
}
