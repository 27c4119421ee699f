package cache

import (
	"testing"

	"github.com/cinesort/cinesort/models"
)

func TestKey_Deterministic(t *testing.T) {
	if Key("Inception", "2010") != Key("Inception", "2010") {
		t.Error("same inputs produced different keys")
	}
	if Key("Inception", "2010") == Key("Inception", "") {
		t.Error("different years produced the same key")
	}
	if Key("Inception", "2010") == Key("Inception2010", "") {
		t.Error("field separator not effective")
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := New(10)
	record := models.MovieRecord{Title: "盗梦空间", Sid: "3541415"}

	key := Key("Inception", "2010")
	c.Set(key, record)

	got, hit := c.Get(key, 60000)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Title != "盗梦空间" || got.Sid != "3541415" {
		t.Errorf("got %+v", got)
	}
}

func TestCache_ZeroMaxAgeSkipsLookup(t *testing.T) {
	c := New(10)
	key := Key("Inception", "2010")
	c.Set(key, models.MovieRecord{Title: "盗梦空间"})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 should never hit")
	}
	if _, hit := c.Get(key, -1); hit {
		t.Error("negative maxAge should never hit")
	}
}

func TestCache_MissingKey(t *testing.T) {
	c := New(10)
	if _, hit := c.Get(Key("nope", ""), 60000); hit {
		t.Error("unexpected hit for missing key")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(2)
	c.Set(Key("a", ""), models.MovieRecord{Title: "a"})
	c.Set(Key("b", ""), models.MovieRecord{Title: "b"})
	c.Set(Key("c", ""), models.MovieRecord{Title: "c"})

	stats := c.Stats()
	if stats.Entries != 2 {
		t.Errorf("entries = %d, want 2 after eviction", stats.Entries)
	}
	if stats.MaxEntries != 2 {
		t.Errorf("max entries = %d, want 2", stats.MaxEntries)
	}

	// The newest entry always survives.
	if _, hit := c.Get(Key("c", ""), 60000); !hit {
		t.Error("most recent entry was evicted")
	}
}
