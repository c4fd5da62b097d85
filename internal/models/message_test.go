package models

import (
	"testing"
	"time"
)

func TestBefore(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Message{ID: 1, CreatedAt: t0}
	b := Message{ID: 2, CreatedAt: t0.Add(time.Minute)}
	if !a.Before(b) || b.Before(a) {
		t.Error("created_at order not respected")
	}

	// Timestamp tie breaks on id.
	c := Message{ID: 3, CreatedAt: t0}
	if !a.Before(c) || c.Before(a) {
		t.Error("id tie-break not respected")
	}
}

func TestSortMessages(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: 3, CreatedAt: t0.Add(time.Minute)},
		{ID: 2, CreatedAt: t0},
		{ID: 1, CreatedAt: t0},
	}
	SortMessages(msgs)
	if msgs[0].ID != 1 || msgs[1].ID != 2 || msgs[2].ID != 3 {
		t.Errorf("order = %v, %v, %v", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}
