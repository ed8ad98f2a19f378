package retention

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/events/storage"
)

func TestArchiverRun(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	defer s.Close()

	// Five old events past the cutoff, three recent ones that must stay out.
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, &events.Event{
			ID:        "old-" + strconv.Itoa(i),
			Type:      events.EventActionExecuted,
			Actor:     "u-1",
			Timestamp: now.Add(-48 * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, &events.Event{
			ID:        "new-" + strconv.Itoa(i),
			Type:      events.EventActionExecuted,
			Actor:     "u-1",
			Timestamp: now,
		}); err != nil {
			t.Fatal(err)
		}
	}

	dir := t.TempDir()
	archiver := NewArchiver(s, &Config{
		Dir:       dir,
		MaxAge:    24 * time.Hour,
		BatchSize: 2,
	})

	written, path, err := archiver.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if written != 5 {
		t.Errorf("written = %d, want 5", written)
	}
	if path == "" {
		t.Fatal("no archive path returned")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e events.Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not a JSON event: %v", lines+1, err)
		}
		if e.Timestamp.After(now.Add(-24 * time.Hour)) {
			t.Errorf("recent event %q leaked into the archive", e.ID)
		}
		lines++
	}
	if lines != 5 {
		t.Errorf("archive holds %d records, want 5", lines)
	}

	// Archival is export-only: primary storage keeps everything.
	total, err := s.Count(ctx, &events.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 8 {
		t.Errorf("primary storage count = %d after archival, want 8", total)
	}
}

func TestArchiverRunNothingToArchive(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	defer s.Close()

	if err := s.Append(ctx, &events.Event{
		ID:        "evt-1",
		Type:      events.EventActionExecuted,
		Actor:     "u-1",
		Timestamp: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	archiver := NewArchiver(s, &Config{Dir: dir, MaxAge: 24 * time.Hour, BatchSize: 100})

	written, path, err := archiver.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if written != 0 || path != "" {
		t.Errorf("Run() = %d, %q, want 0 and no file", written, path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("archive directory has %d entries, want none", len(entries))
	}
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	archiver := NewArchiver(s, &Config{Schedule: "not a cron line", Dir: t.TempDir()})
	if err := NewScheduler(archiver).Start(context.Background()); err == nil {
		t.Error("Start() accepted an invalid cron expression")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	s := storage.NewMemoryStorage()
	defer s.Close()

	sched := NewScheduler(NewArchiver(s, &Config{Dir: t.TempDir()}))
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	sched.Stop()
}
