package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestSessionRepository_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	sessions := s.Sessions()

	sess := &Session{ID: uuid.New().String(), Source: SourceWebcam}
	if err := sessions.Create(sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("Create should stamp StartedAt")
	}

	got, err := sessions.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Source != SourceWebcam {
		t.Errorf("source = %q, want webcam", got.Source)
	}
	if got.EndedAt != nil {
		t.Error("open session should have nil EndedAt")
	}

	if err := sessions.End(sess.ID); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	got, err = sessions.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID after End failed: %v", err)
	}
	if got.EndedAt == nil {
		t.Error("ended session should have EndedAt set")
	}

	// Ending twice reports not found (no open row to close).
	if err := sessions.End(sess.ID); err != ErrNotFound {
		t.Errorf("second End = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Sessions().GetByID("missing"); err != ErrNotFound {
		t.Errorf("GetByID = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	sessions := s.Sessions()

	for _, source := range []SourceKind{SourceWebcam, SourcePhone, SourceMock} {
		if err := sessions.Create(&Session{ID: uuid.New().String(), Source: source}); err != nil {
			t.Fatalf("Create(%s) failed: %v", source, err)
		}
	}

	all, err := sessions.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d sessions, want 3", len(all))
	}
}

func TestSessionRepository_DeleteCascadesEvents(t *testing.T) {
	s := newTestStore(t)
	sessions := s.Sessions()
	events := s.Events()

	sess := &Session{ID: uuid.New().String(), Source: SourceMock}
	if err := sessions.Create(sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := events.Append(&Event{SessionID: sess.ID, Kind: EventLocked, TimestampMs: 100, Payload: "{}"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := sessions.Delete(sess.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	left, err := events.ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d events survived session delete, want 0", len(left))
	}
}

func TestEventRepository_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	sessions := s.Sessions()
	events := s.Events()

	sess := &Session{ID: uuid.New().String(), Source: SourceMock}
	if err := sessions.Create(sess); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	seq := []struct {
		kind string
		ts   int64
	}{
		{EventLocked, 100},
		{EventGrabbed, 220},
		{EventReleased, 900},
		{EventSelection, 1500},
		{EventUnlocked, 2100},
	}
	for _, e := range seq {
		ev := &Event{SessionID: sess.ID, Kind: e.kind, TimestampMs: e.ts, Payload: `{"hand":"Right"}`}
		if err := events.Append(ev); err != nil {
			t.Fatalf("Append(%s) failed: %v", e.kind, err)
		}
		if ev.ID == 0 {
			t.Errorf("Append(%s) did not set the row id", e.kind)
		}
	}

	got, err := events.ListBySession(sess.ID)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	if len(got) != len(seq) {
		t.Fatalf("ListBySession returned %d events, want %d", len(got), len(seq))
	}
	for i, e := range got {
		if e.Kind != seq[i].kind || e.TimestampMs != seq[i].ts {
			t.Errorf("event %d = (%s, %d), want (%s, %d)", i, e.Kind, e.TimestampMs, seq[i].kind, seq[i].ts)
		}
	}

	n, err := events.CountByKind(sess.ID, EventSelection)
	if err != nil {
		t.Fatalf("CountByKind failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountByKind(selection) = %d, want 1", n)
	}
}
