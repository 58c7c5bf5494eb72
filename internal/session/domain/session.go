package domain

import "time"

// Session is an authenticated session. The holder proves possession with a
// raw secret; only the hash of that secret is stored here.
type Session struct {
	ID         string
	UserID     string
	SecretHash string
	CreatedAt  time.Time
	LastUseAt  time.Time
}

// Touch records use of the session at the given instant. LastUseAt never
// moves backwards, so out-of-order touches from concurrent verifications
// cannot rewind it.
func (s *Session) Touch(at time.Time) {
	if at.After(s.LastUseAt) {
		s.LastUseAt = at
	}
}
