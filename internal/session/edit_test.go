package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditConfirm(t *testing.T) {
	e := NewEdit("Old", "New")
	assert.Equal(t, Pending, e.State())
	assert.Equal(t, "New", e.Value())

	assert.True(t, e.Confirm())
	assert.Equal(t, Confirmed, e.State())
	assert.Equal(t, "New", e.Value())

	assert.False(t, e.Rollback(), "settled edits stay settled")
	assert.Equal(t, "New", e.Value())
}

func TestEditRollback(t *testing.T) {
	e := NewEdit(3, 5)

	assert.True(t, e.Rollback())
	assert.Equal(t, RolledBack, e.State())
	assert.Equal(t, 3, e.Value())
	assert.Equal(t, 3, e.Previous())

	assert.False(t, e.Confirm())
	assert.Equal(t, 3, e.Value())
}

func TestEditStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "rolled back", RolledBack.String())
	assert.Equal(t, "unknown", EditState(9).String())
}

func TestEditChain(t *testing.T) {
	tests := []struct {
		name    string
		settle  func(first, second *Edit[string])
		want    string
		settled bool
	}{
		{
			name:   "both pending shows newest",
			settle: func(first, second *Edit[string]) {},
			want:   "C",
		},
		{
			name:    "both fail restores base",
			settle:  func(first, second *Edit[string]) { second.Rollback(); first.Rollback() },
			want:    "A",
			settled: true,
		},
		{
			name:    "newest fails after older confirmed",
			settle:  func(first, second *Edit[string]) { first.Confirm(); second.Rollback() },
			want:    "B",
			settled: true,
		},
		{
			name:   "newest fails while older pending",
			settle: func(first, second *Edit[string]) { second.Rollback() },
			want:   "B",
		},
		{
			name:    "older fails after newest confirmed",
			settle:  func(first, second *Edit[string]) { second.Confirm(); first.Rollback() },
			want:    "C",
			settled: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEditChain("A")
			first := c.Push("B")
			second := c.Push("C")
			assert.Equal(t, "B", second.Previous())

			tt.settle(first, second)
			assert.Equal(t, tt.want, c.Value())
			assert.Equal(t, tt.settled, c.Settled())
		})
	}
}
