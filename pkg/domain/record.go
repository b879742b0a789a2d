package domain

import "time"

// Record is the persisted form of a turtle session: enough to rebuild the
// engine and continue its command sequence without gaps.
type Record struct {
	ID        string    `json:"id"`
	Canvas    Canvas    `json:"canvas"`
	State     State     `json:"state"`
	NextID    uint64    `json:"next_id"`
	Commands  []Command `json:"commands"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted record when the store is wrapped with
	// encryption. A sealed record carries no state or commands in the clear.
	Sealed []byte `json:"sealed,omitempty"`
}

// Clone returns a copy whose command slice does not alias the receiver's.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Commands = append([]Command(nil), r.Commands...)
	if r.Sealed != nil {
		c.Sealed = append([]byte(nil), r.Sealed...)
	}
	return &c
}
