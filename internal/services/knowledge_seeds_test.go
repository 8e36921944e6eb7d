package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeSeedTarget records InsertIfAbsent calls, treating repeated questions
// as already present.
type fakeSeedTarget struct {
	seen map[string]string
}

func (f *fakeSeedTarget) InsertIfAbsent(ctx context.Context, question, answer string) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[string]string)
	}
	if _, ok := f.seen[question]; ok {
		return false, nil
	}
	f.seen[question] = answer
	return true, nil
}

func TestSeedKnowledge_Builtins(t *testing.T) {
	target := &fakeSeedTarget{}

	inserted, err := SeedKnowledge(context.Background(), target, "")
	if err != nil {
		t.Fatalf("SeedKnowledge returned error: %v", err)
	}
	if inserted != len(builtinSeeds) {
		t.Errorf("Expected %d inserted builtins, got %d", len(builtinSeeds), inserted)
	}
	if answer, ok := target.seen["What are your hours?"]; !ok || answer == "" {
		t.Error("Expected the hours builtin to be seeded")
	}
}

func TestSeedKnowledge_NeverOverwrites(t *testing.T) {
	target := &fakeSeedTarget{seen: map[string]string{
		"What are your hours?": "We are open 24/7 now.",
	}}

	inserted, err := SeedKnowledge(context.Background(), target, "")
	if err != nil {
		t.Fatalf("SeedKnowledge returned error: %v", err)
	}
	if inserted != len(builtinSeeds)-1 {
		t.Errorf("Expected %d inserted, got %d", len(builtinSeeds)-1, inserted)
	}
	if target.seen["What are your hours?"] != "We are open 24/7 now." {
		t.Error("Seeding must not overwrite a learned answer")
	}
}

func TestSeedKnowledge_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.yaml")
	content := `entries:
  - question: "Do you offer hair extensions?"
    answer: "Yes, tape-in and clip-in."
  - question: ""
    answer: "orphan answer"
  - question: "What is your cancellation policy?"
    answer: "24 hours notice, please."
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write seeds file: %v", err)
	}

	target := &fakeSeedTarget{}
	inserted, err := SeedKnowledge(context.Background(), target, path)
	if err != nil {
		t.Fatalf("SeedKnowledge returned error: %v", err)
	}
	if inserted != 2 {
		t.Errorf("Expected 2 inserted entries (blank question skipped), got %d", inserted)
	}
	if target.seen["What is your cancellation policy?"] != "24 hours notice, please." {
		t.Error("Expected the policy entry to be seeded from the file")
	}
}

func TestSeedKnowledge_MissingFile(t *testing.T) {
	target := &fakeSeedTarget{}

	if _, err := SeedKnowledge(context.Background(), target, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected an error for a missing seeds file")
	}
	if len(target.seen) != 0 {
		t.Errorf("Nothing should be seeded on a read failure, got %d entries", len(target.seen))
	}
}
