package service

import (
	"context"
	"errors"
	"testing"

	"rehabtrack/rehab-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserFixture() (UserService, *stubUserRepo, primitive.ObjectID, primitive.ObjectID) {
	users := newStubUserRepo()
	trainerID := users.add(domain.User{Role: domain.RoleTrainer, FirstName: "Pat", PasswordHash: "hash"})
	athleteID := users.add(domain.User{Role: domain.RoleAthlete, FirstName: "Sam", PasswordHash: "hash"})
	return NewUserService(users), users, trainerID, athleteID
}

func TestListAthletesTrainerOnly(t *testing.T) {
	svc, _, _, _ := newUserFixture()
	ctx := context.Background()

	athletes, err := svc.ListAthletes(ctx, domain.RoleTrainer)
	if err != nil {
		t.Fatalf("ListAthletes returned error: %v", err)
	}
	if len(athletes) != 1 {
		t.Errorf("got %d athletes, want 1", len(athletes))
	}
	for _, a := range athletes {
		if a.PasswordHash != "" {
			t.Error("PasswordHash leaked in the listing")
		}
	}

	if _, err := svc.ListAthletes(ctx, domain.RoleAthlete); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("athlete ListAthletes error = %v, want ErrAccessDenied", err)
	}
}

func TestListTrainersOpenToAll(t *testing.T) {
	svc, _, _, _ := newUserFixture()

	trainers, err := svc.ListTrainers(context.Background())
	if err != nil {
		t.Fatalf("ListTrainers returned error: %v", err)
	}
	if len(trainers) != 1 {
		t.Errorf("got %d trainers, want 1", len(trainers))
	}
}

func TestGetUserAccess(t *testing.T) {
	svc, _, trainerID, athleteID := newUserFixture()
	ctx := context.Background()

	// Athlete self-view.
	user, err := svc.Get(ctx, athleteID, domain.RoleAthlete, athleteID)
	if err != nil {
		t.Fatalf("self Get returned error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("PasswordHash leaked in the profile")
	}

	// Trainer may view anyone.
	if _, err := svc.Get(ctx, trainerID, domain.RoleTrainer, athleteID); err != nil {
		t.Errorf("trainer Get returned error: %v", err)
	}

	// Athlete viewing someone else is denied.
	if _, err := svc.Get(ctx, athleteID, domain.RoleAthlete, trainerID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("cross Get error = %v, want ErrAccessDenied", err)
	}

	// Missing user.
	if _, err := svc.Get(ctx, trainerID, domain.RoleTrainer, primitive.NewObjectID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing Get error = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, athleteID := newUserFixture()
	ctx := context.Background()

	if err := svc.UpdateProfile(ctx, athleteID, athleteID, "Samuel", "Diaz", "Rugby", "Fly-half"); err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	updated, err := users.GetByID(ctx, athleteID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if updated.FirstName != "Samuel" || updated.Sport != "Rugby" || updated.Position != "Fly-half" {
		t.Errorf("profile not updated: %+v", updated)
	}
}

func TestUpdateProfileSelfOnly(t *testing.T) {
	svc, _, trainerID, athleteID := newUserFixture()

	err := svc.UpdateProfile(context.Background(), trainerID, athleteID, "X", "Y", "", "")
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("cross UpdateProfile error = %v, want ErrAccessDenied", err)
	}
}
