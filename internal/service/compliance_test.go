package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rehabtrack/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExpectedCompletions(t *testing.T) {
	cases := []struct {
		name      string
		frequency domain.Frequency
		days      int
		want      int
	}{
		{"daily over 30 days", domain.FrequencyDaily, 30, 30},
		{"daily over 7 days", domain.FrequencyDaily, 7, 7},
		{"weekly over 30 days", domain.FrequencyWeekly, 30, 5},
		{"weekly over 7 days", domain.FrequencyWeekly, 7, 1},
		{"weekly over 10 days", domain.FrequencyWeekly, 10, 2},
		{"twice weekly over 7 days", domain.FrequencyTwiceWeekly, 7, 14},
		{"three times weekly over 7 days", domain.FrequencyThreeTimesWeekly, 7, 21},
		{"unknown frequency", domain.Frequency("sometimes"), 30, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := expectedCompletions(tc.frequency, tc.days); got != tc.want {
				t.Errorf("expectedCompletions(%q, %d) = %d, want %d", tc.frequency, tc.days, got, tc.want)
			}
		})
	}
}

func TestComplianceRate(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		expected  int
		want      float64
	}{
		{"partial compliance", 4, 5, 80},
		{"full compliance", 5, 5, 100},
		{"over-compliance capped", 12, 5, 100},
		{"zero expected", 3, 0, 0},
		{"nothing done", 0, 30, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := complianceRate(tc.completed, tc.expected); got != tc.want {
				t.Errorf("complianceRate(%d, %d) = %v, want %v", tc.completed, tc.expected, got, tc.want)
			}
		})
	}
}

func TestOverallCompliance(t *testing.T) {
	if got := overallCompliance(nil); got != 0 {
		t.Errorf("overallCompliance(nil) = %d, want 0", got)
	}

	items := []ExerciseCompliance{
		{ComplianceRate: 80},
		{ComplianceRate: 50},
	}
	if got := overallCompliance(items); got != 65 {
		t.Errorf("overallCompliance = %d, want 65", got)
	}

	// Rounds to nearest integer.
	items = []ExerciseCompliance{
		{ComplianceRate: 100},
		{ComplianceRate: 33.4},
	}
	if got := overallCompliance(items); got != 67 {
		t.Errorf("overallCompliance = %d, want 67", got)
	}
}

// complianceFixture wires a progress service with a frozen clock and one
// trainer/athlete pair.
type complianceFixture struct {
	svc        *progressService
	users      *stubUserRepo
	assignRepo *stubAssignmentRepo
	progRepo   *stubProgressRepo
	exRepo     *stubExerciseRepo
	trainerID  primitive.ObjectID
	athleteID  primitive.ObjectID
	now        time.Time
}

func newComplianceFixture(t *testing.T) *complianceFixture {
	t.Helper()
	f := &complianceFixture{
		users:      newStubUserRepo(),
		assignRepo: newStubAssignmentRepo(),
		progRepo:   newStubProgressRepo(),
		exRepo:     newStubExerciseRepo(),
		now:        time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC),
	}
	f.trainerID = f.users.add(domain.User{Role: domain.RoleTrainer, FirstName: "Pat", LastName: "Lee"})
	f.athleteID = f.users.add(domain.User{Role: domain.RoleAthlete, FirstName: "Sam", LastName: "Diaz"})
	f.svc = &progressService{
		assignmentRepo: f.assignRepo,
		progressRepo:   f.progRepo,
		exerciseRepo:   f.exRepo,
		notifier:       NewNotificationService(newStubNotificationRepo()),
		now:            func() time.Time { return f.now },
	}
	return f
}

// addAssignment creates an active assignment that started well before any
// compliance window under test.
func (f *complianceFixture) addAssignment(frequency domain.Frequency, exerciseName string) primitive.ObjectID {
	exerciseID := f.exRepo.add(domain.Exercise{
		TrainerID: f.trainerID,
		Name:      exerciseName,
		BodyPart:  "Knee",
		Category:  "Mobility",
	})
	return f.assignRepo.add(domain.Assignment{
		AthleteID:  f.athleteID,
		ExerciseID: exerciseID,
		TrainerID:  f.trainerID,
		Frequency:  frequency,
		StartDate:  f.now.AddDate(0, -6, 0),
		Status:     domain.StatusActive,
	})
}

func (f *complianceFixture) logOnDaysAgo(assignmentID primitive.ObjectID, daysAgo ...int) {
	for _, d := range daysAgo {
		f.progRepo.add(domain.Progress{
			AssignmentID:  assignmentID,
			CompletedDate: domain.DateOnly(f.now.AddDate(0, 0, -d)),
		})
	}
}

func TestComplianceReport(t *testing.T) {
	f := newComplianceFixture(t)
	assignmentID := f.addAssignment(domain.FrequencyWeekly, "Leg Raises")
	f.logOnDaysAgo(assignmentID, 2, 9, 16, 23)

	report, err := f.svc.Compliance(context.Background(), f.trainerID, domain.RoleTrainer, f.athleteID, 30)
	if err != nil {
		t.Fatalf("Compliance returned error: %v", err)
	}

	if report.Period != "30 days" {
		t.Errorf("Period = %q, want %q", report.Period, "30 days")
	}
	if len(report.ExerciseCompliance) != 1 {
		t.Fatalf("got %d compliance items, want 1", len(report.ExerciseCompliance))
	}
	item := report.ExerciseCompliance[0]
	if item.ExerciseName != "Leg Raises" {
		t.Errorf("ExerciseName = %q, want %q", item.ExerciseName, "Leg Raises")
	}
	if item.ExpectedCount != 5 {
		t.Errorf("ExpectedCount = %d, want 5", item.ExpectedCount)
	}
	if item.CompletedCount != 4 {
		t.Errorf("CompletedCount = %d, want 4", item.CompletedCount)
	}
	if item.ComplianceRate != 80 {
		t.Errorf("ComplianceRate = %v, want 80", item.ComplianceRate)
	}
	if report.OverallCompliance != 80 {
		t.Errorf("OverallCompliance = %d, want 80", report.OverallCompliance)
	}
}

func TestComplianceReportDefaultsWindow(t *testing.T) {
	f := newComplianceFixture(t)

	report, err := f.svc.Compliance(context.Background(), f.athleteID, domain.RoleAthlete, f.athleteID, 0)
	if err != nil {
		t.Fatalf("Compliance returned error: %v", err)
	}
	if report.Period != "30 days" {
		t.Errorf("Period = %q, want the 30 day default", report.Period)
	}
}

func TestComplianceReportEmpty(t *testing.T) {
	f := newComplianceFixture(t)

	report, err := f.svc.Compliance(context.Background(), f.trainerID, domain.RoleTrainer, f.athleteID, 30)
	if err != nil {
		t.Fatalf("Compliance returned error: %v", err)
	}
	if report.OverallCompliance != 0 {
		t.Errorf("OverallCompliance = %d, want 0 with no assignments", report.OverallCompliance)
	}
	if len(report.ExerciseCompliance) != 0 {
		t.Errorf("got %d compliance items, want 0", len(report.ExerciseCompliance))
	}
}

func TestComplianceReportExcludesRecentAndInactive(t *testing.T) {
	f := newComplianceFixture(t)

	// Started inside the window: does not qualify.
	recentExercise := f.exRepo.add(domain.Exercise{TrainerID: f.trainerID, Name: "New Drill", BodyPart: "Hip", Category: "Strength"})
	f.assignRepo.add(domain.Assignment{
		AthleteID:  f.athleteID,
		ExerciseID: recentExercise,
		TrainerID:  f.trainerID,
		Frequency:  domain.FrequencyDaily,
		StartDate:  f.now.AddDate(0, 0, -3),
		Status:     domain.StatusActive,
	})

	// Paused: does not qualify either.
	pausedExercise := f.exRepo.add(domain.Exercise{TrainerID: f.trainerID, Name: "Old Drill", BodyPart: "Hip", Category: "Strength"})
	f.assignRepo.add(domain.Assignment{
		AthleteID:  f.athleteID,
		ExerciseID: pausedExercise,
		TrainerID:  f.trainerID,
		Frequency:  domain.FrequencyDaily,
		StartDate:  f.now.AddDate(0, -6, 0),
		Status:     domain.StatusPaused,
	})

	report, err := f.svc.Compliance(context.Background(), f.trainerID, domain.RoleTrainer, f.athleteID, 30)
	if err != nil {
		t.Fatalf("Compliance returned error: %v", err)
	}
	if len(report.ExerciseCompliance) != 0 {
		t.Errorf("got %d compliance items, want 0", len(report.ExerciseCompliance))
	}
}

func TestComplianceAccessDeniedForOtherAthlete(t *testing.T) {
	f := newComplianceFixture(t)
	otherAthlete := f.users.add(domain.User{Role: domain.RoleAthlete})

	_, err := f.svc.Compliance(context.Background(), otherAthlete, domain.RoleAthlete, f.athleteID, 30)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Compliance error = %v, want ErrAccessDenied", err)
	}
}
