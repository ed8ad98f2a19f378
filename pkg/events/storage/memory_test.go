package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
)

func seedEvents(t *testing.T, s events.Storage, n int) {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		actor := "u-1"
		if i%2 == 1 {
			actor = "u-2"
		}
		err := s.Append(context.Background(), &events.Event{
			ID:        "evt-" + strconv.Itoa(i),
			Type:      events.EventActionExecuted,
			Actor:     actor,
			ForumID:   "frm-1",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
}

func TestMemoryStorageQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()
	seedEvents(t, s, 10)

	t.Run("all oldest first", func(t *testing.T) {
		got, err := s.Query(ctx, &events.Query{})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 10 {
			t.Fatalf("len = %d, want 10", len(got))
		}
		if got[0].ID != "evt-0" || got[9].ID != "evt-9" {
			t.Errorf("order = %s..%s, want evt-0..evt-9", got[0].ID, got[9].ID)
		}
	})

	t.Run("actor filter", func(t *testing.T) {
		got, err := s.Query(ctx, &events.Query{Actor: "u-2"})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 5 {
			t.Errorf("len = %d, want 5", len(got))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := s.Query(ctx, &events.Query{Limit: 3, Offset: 4})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 3 || got[0].ID != "evt-4" {
			t.Errorf("page = %v", got)
		}

		got, err = s.Query(ctx, &events.Query{Offset: 50})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("offset past end returned %d events", len(got))
		}
	})

	t.Run("count ignores pagination", func(t *testing.T) {
		n, err := s.Count(ctx, &events.Query{Actor: "u-1", Limit: 2})
		if err != nil {
			t.Fatal(err)
		}
		if n != 5 {
			t.Errorf("Count = %d, want 5", n)
		}
	})
}

func TestMemoryStorageAppendCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	defer s.Close()

	e := &events.Event{
		ID:     "evt-1",
		Type:   events.EventForumCreated,
		Actor:  "u-1",
		Detail: map[string]string{"title": "Housing Intake"},
	}
	if err := s.Append(ctx, e); err != nil {
		t.Fatal(err)
	}

	// The stored record must be isolated from later caller mutations.
	e.Actor = "u-9"
	e.Detail["title"] = "Mutated"

	got, err := s.Query(ctx, &events.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Actor != "u-1" {
		t.Errorf("Actor = %q, caller mutation leaked", got[0].Actor)
	}
	if got[0].Detail["title"] != "Housing Intake" {
		t.Errorf("Detail = %v, caller mutation leaked", got[0].Detail)
	}
}
