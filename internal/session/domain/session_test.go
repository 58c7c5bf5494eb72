package domain

import (
	"testing"
	"time"
)

func TestSession_Touch(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &Session{ID: "s1", UserID: "u1", CreatedAt: base, LastUseAt: base}

	s.Touch(base.Add(time.Minute))
	if !s.LastUseAt.Equal(base.Add(time.Minute)) {
		t.Errorf("LastUseAt = %v, want %v", s.LastUseAt, base.Add(time.Minute))
	}

	// An earlier touch must not rewind the timestamp.
	s.Touch(base.Add(30 * time.Second))
	if !s.LastUseAt.Equal(base.Add(time.Minute)) {
		t.Errorf("LastUseAt rewound to %v", s.LastUseAt)
	}

	// An equal touch leaves it unchanged.
	s.Touch(base.Add(time.Minute))
	if !s.LastUseAt.Equal(base.Add(time.Minute)) {
		t.Errorf("LastUseAt = %v after equal touch", s.LastUseAt)
	}
}
