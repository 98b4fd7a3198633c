package players

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	list := s.GetList()
	if len(list) != 0 {
		t.Errorf("new store should be empty, got %d players", len(list))
	}
}

func TestStore_Add(t *testing.T) {
	s := NewStore()
	p := s.Add("id1", "Alice")

	if p.ID != "id1" {
		t.Errorf("player ID = %q, want %q", p.ID, "id1")
	}
	if p.Name != "Alice" {
		t.Errorf("player Name = %q, want %q", p.Name, "Alice")
	}
	if p.Color == "" {
		t.Error("player Color should not be empty")
	}
	if p.WPM != 0 || p.Progress != 0 {
		t.Errorf("player stats = %v/%v, want 0/0", p.WPM, p.Progress)
	}
	if p.Accuracy != 100 {
		t.Errorf("player Accuracy = %v, want 100", p.Accuracy)
	}
}

func TestStore_Get(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice")

	p := s.Get("id1")
	if p == nil {
		t.Fatal("Get returned nil for existing player")
	}
	if p.Name != "Alice" {
		t.Errorf("Name = %q, want %q", p.Name, "Alice")
	}

	if s.Get("nonexistent") != nil {
		t.Error("Get should return nil for nonexistent player")
	}
	if !s.Has("id1") || s.Has("nonexistent") {
		t.Error("Has does not match membership")
	}
}

func TestStore_GetListKeepsJoinOrder(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		s.Add(fmt.Sprintf("id%d", i), fmt.Sprintf("P%d", i))
	}

	list := s.GetList()
	if len(list) != 10 {
		t.Fatalf("GetList() returned %d players, want 10", len(list))
	}
	for i, p := range list {
		if want := fmt.Sprintf("id%d", i); p.ID != want {
			t.Errorf("list[%d] = %q, want %q", i, p.ID, want)
		}
	}
}

func TestStore_ReAddKeepsPosition(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice")
	s.Add("id2", "Bob")
	s.Add("id1", "Alice again")

	list := s.GetList()
	if len(list) != 2 {
		t.Fatalf("GetList() returned %d players, want 2", len(list))
	}
	if list[0].ID != "id1" || list[0].Name != "Alice again" {
		t.Errorf("list[0] = %+v, want re-added id1 first", list[0])
	}
}

func TestStore_UpdateStats(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice")

	p := s.UpdateStats("id1", Stats{WPM: 88, Progress: 40, Accuracy: 97.5})
	if p.WPM != 88 || p.Progress != 40 || p.Accuracy != 97.5 {
		t.Errorf("stats = %v/%v/%v, want 88/40/97.5", p.WPM, p.Progress, p.Accuracy)
	}

	p = s.UpdateStats("id1", Stats{WPM: 91, Progress: 45, Accuracy: 96})
	if p.WPM != 91 {
		t.Errorf("WPM = %v, want 91 (overwrite, not accumulate)", p.WPM)
	}

	if s.UpdateStats("nonexistent", Stats{WPM: 5}) != nil {
		t.Error("UpdateStats should return nil for nonexistent player")
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice")
	s.Add("id2", "Bob")

	if !s.Remove("id1") {
		t.Error("Remove should return true for existing player")
	}
	if s.Get("id1") != nil {
		t.Error("player should be nil after removal")
	}
	if len(s.GetList()) != 1 {
		t.Errorf("expected 1 player after removal, got %d", len(s.GetList()))
	}

	if s.Remove("nonexistent") {
		t.Error("Remove should return false for nonexistent player")
	}
}

func TestStore_First(t *testing.T) {
	s := NewStore()
	if s.First() != nil {
		t.Error("First should be nil for empty store")
	}

	s.Add("id1", "Alice")
	s.Add("id2", "Bob")
	s.Add("id3", "Carol")
	s.Remove("id1")

	if p := s.First(); p == nil || p.ID != "id2" {
		t.Errorf("First = %+v, want id2", p)
	}
}

func TestStore_Count(t *testing.T) {
	s := NewStore()
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}

	s.Add("id1", "Alice")
	s.Add("id2", "Bob")
	if s.Count() != 2 {
		t.Errorf("Count = %d, want 2", s.Count())
	}

	s.Remove("id1")
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1 after removal", s.Count())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("id%d", i)
			s.Add(id, "P")
			s.UpdateStats(id, Stats{WPM: float64(i)})
		}(i)
	}
	wg.Wait()

	if s.Count() != 100 {
		t.Errorf("concurrent Count = %d, want 100", s.Count())
	}
}
