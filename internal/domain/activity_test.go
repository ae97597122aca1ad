package domain

import "testing"

func TestActivityCapacityHelpers(t *testing.T) {
	a := Activity{MaxParticipants: 2, Participants: []string{"a@x.edu"}}
	if a.IsFull() {
		t.Fatal("expected activity with one free spot to not be full")
	}
	if got := a.SpotsLeft(); got != 1 {
		t.Fatalf("expected 1 spot left got %d", got)
	}

	a.Participants = append(a.Participants, "b@x.edu", "c@x.edu")
	if !a.IsFull() {
		t.Fatal("expected over-subscribed activity to be full")
	}
	if got := a.SpotsLeft(); got != 0 {
		t.Fatalf("expected 0 spots left got %d", got)
	}
}

func TestActivityClone(t *testing.T) {
	a := Activity{Name: "Chess Club", Participants: []string{"a@x.edu"}}
	c := a.Clone()
	c.Participants[0] = "b@x.edu"

	if !a.HasParticipant("a@x.edu") {
		t.Fatal("clone shares participant storage with original")
	}
	if c.HasParticipant("a@x.edu") {
		t.Fatal("expected clone to reflect its own mutation")
	}
}
