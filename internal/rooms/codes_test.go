package rooms

import (
	"regexp"
	"strings"
	"testing"
	"typerace/internal/protocol"
)

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 31 {
		t.Errorf("alphabet has %d symbols, want 31", len(alphabet))
	}
	seen := map[rune]bool{}
	for _, ch := range alphabet {
		if seen[ch] {
			t.Errorf("alphabet repeats %c", ch)
		}
		seen[ch] = true
	}
	if strings.ContainsAny(alphabet, "0O1IL") {
		t.Error("alphabet contains an ambiguous character")
	}
}

func TestGenerateCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[` + alphabet + `]{6}$`)

	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("GenerateCode() = %q, doesn't match expected pattern", code)
		}
		if normalizeCode(strings.ToLower(code)) != code {
			t.Errorf("code %q does not survive normalization", code)
		}
	}
}

func TestGenerateCode_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	dupes := 0
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatal(err)
		}
		if seen[code] {
			dupes++
		}
		seen[code] = true
	}
	// 31^6 is close to 900M codes; 1000 samples should not collide
	if dupes > 5 {
		t.Errorf("too many duplicate codes: %d out of 1000", dupes)
	}
}

func TestRegistry_CreateRetriesOnCollision(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	calls := 0
	opts := testOptions()
	opts.Codes = func() (string, error) {
		c := codes[min(calls, len(codes)-1)]
		calls++
		return c, nil
	}
	s := NewRegistry(opts)

	first, err := s.Create(Member{ID: "a"}, protocol.RoomConfig{})
	if err != nil || first.ID != "AAAAAA" {
		t.Fatalf("first Create() = %v, %v", first, err)
	}
	second, err := s.Create(Member{ID: "b"}, protocol.RoomConfig{})
	if err != nil {
		t.Fatalf("second Create() error: %v", err)
	}
	if second.ID != "BBBBBB" {
		t.Errorf("second code = %q, want BBBBBB", second.ID)
	}
	if calls != 4 {
		t.Errorf("generator called %d times, want 4", calls)
	}
}

func TestRegistry_CreateGivesUpAfterTenCollisions(t *testing.T) {
	calls := 0
	opts := testOptions()
	opts.Codes = func() (string, error) {
		calls++
		return "SAME22", nil
	}
	s := NewRegistry(opts)

	if _, err := s.Create(Member{ID: "a"}, protocol.RoomConfig{}); err != nil {
		t.Fatal(err)
	}
	calls = 0
	if _, err := s.Create(Member{ID: "b"}, protocol.RoomConfig{}); err == nil {
		t.Fatal("Create() should fail when every code collides")
	}
	if calls != maxCodeAttempts {
		t.Errorf("generator called %d times, want %d", calls, maxCodeAttempts)
	}
	if len(s.List()) != 1 {
		t.Errorf("registry holds %d rooms, want 1", len(s.List()))
	}
}
