package navigation

import "time"

// SetClock lets tests control the store's notion of time.
func (s *Store) SetClock(now func() time.Time) { s.now = now }
