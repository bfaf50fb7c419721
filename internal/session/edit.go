package session

// EditState tracks an optimistic change to one field.
type EditState int

const (
	Pending EditState = iota
	Confirmed
	RolledBack
)

func (s EditState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

// Edit is an optimistic update applied locally before the remote side confirms it.
// It moves from Pending to exactly one of Confirmed or RolledBack.
type Edit[T any] struct {
	prev  T
	next  T
	state EditState
}

// NewEdit starts a pending edit from prev to next.
func NewEdit[T any](prev, next T) *Edit[T] {
	return &Edit[T]{prev: prev, next: next, state: Pending}
}

// State returns the current state.
func (e *Edit[T]) State() EditState {
	return e.state
}

// Value returns what the field should show: the new value unless rolled back.
func (e *Edit[T]) Value() T {
	if e.state == RolledBack {
		return e.prev
	}
	return e.next
}

// Previous returns the value before the edit.
func (e *Edit[T]) Previous() T {
	return e.prev
}

// Confirm settles a pending edit. It reports false if the edit was already settled.
func (e *Edit[T]) Confirm() bool {
	if e.state != Pending {
		return false
	}
	e.state = Confirmed
	return true
}

// Rollback reverts a pending edit. It reports false if the edit was already settled.
func (e *Edit[T]) Rollback() bool {
	if e.state != Pending {
		return false
	}
	e.state = RolledBack
	return true
}

// EditChain orders overlapping edits of one field. The shown value is the
// newest edit that was not rolled back, or the base value when all of them were.
type EditChain[T any] struct {
	base  T
	edits []*Edit[T]
}

// NewEditChain starts a chain from the last settled value.
func NewEditChain[T any](base T) *EditChain[T] {
	return &EditChain[T]{base: base}
}

// Push starts a pending edit on top of the current value.
func (c *EditChain[T]) Push(next T) *Edit[T] {
	e := NewEdit(c.Value(), next)
	c.edits = append(c.edits, e)
	return e
}

// Value returns what the field should show.
func (c *EditChain[T]) Value() T {
	for i := len(c.edits) - 1; i >= 0; i-- {
		if c.edits[i].State() != RolledBack {
			return c.edits[i].Value()
		}
	}
	return c.base
}

// Settled reports whether no edit is pending.
func (c *EditChain[T]) Settled() bool {
	for _, e := range c.edits {
		if e.State() == Pending {
			return false
		}
	}
	return true
}
