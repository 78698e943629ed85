package maintenance

import (
	"testing"
	"time"

	"github.com/yourusername/marvin/internal/database"
	"github.com/yourusername/marvin/internal/output"
)

func countSightings(t *testing.T, db *database.DB) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow(`SELECT COUNT(*) FROM urls`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestPruneSightings(t *testing.T) {
	db := database.NewTestDB(t)
	now := time.Now().Unix()

	old := &database.URLRecord{Seen: now - 40*24*3600, Channel: "#c", Nick: "a", URL: "http://old.example/"}
	fresh := &database.URLRecord{Seen: now, Channel: "#c", Nick: "a", URL: "http://new.example/"}
	for _, rec := range []*database.URLRecord{old, fresh} {
		if err := db.InsertURL(rec); err != nil {
			t.Fatalf("InsertURL() failed: %v", err)
		}
	}

	s := New(db.Conn(), output.Nop{}, time.Hour, 30*24*time.Hour)
	if err := s.pruneSightings(); err != nil {
		t.Fatalf("pruneSightings() failed: %v", err)
	}

	if got := countSightings(t, db); got != 1 {
		t.Errorf("sightings after prune = %d, want 1", got)
	}
	stats, err := db.QueryURL("http://new.example/", "#c", 24*time.Hour)
	if err != nil {
		t.Fatalf("QueryURL() failed: %v", err)
	}
	if stats.Count != 1 {
		t.Error("fresh sighting should survive pruning")
	}
}

func TestPruneSightings_ZeroRetentionKeepsAll(t *testing.T) {
	db := database.NewTestDB(t)
	rec := &database.URLRecord{Seen: 1, Channel: "#c", Nick: "a", URL: "http://ancient.example/"}
	if err := db.InsertURL(rec); err != nil {
		t.Fatalf("InsertURL() failed: %v", err)
	}

	s := New(db.Conn(), output.Nop{}, time.Hour, 0)
	if err := s.pruneSightings(); err != nil {
		t.Fatalf("pruneSightings() failed: %v", err)
	}
	if got := countSightings(t, db); got != 1 {
		t.Errorf("sightings = %d, want 1 with retention disabled", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	db := database.NewTestDB(t)

	s := New(db.Conn(), output.Nop{}, time.Hour, 0)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := s.Start(); err == nil {
		t.Error("second Start() = nil, want error")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if err := s.Stop(); err == nil {
		t.Error("second Stop() = nil, want error")
	}
}
