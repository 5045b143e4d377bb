package orderv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_Cost(t *testing.T) {
	o := &Order{Price: 5, Volume: 3}
	assert.Equal(t, int64(15), o.Cost())
}

func TestOrder_HigherPriority(t *testing.T) {
	tests := []struct {
		name     string
		a        *Order
		b        *Order
		expected bool
	}{
		{
			name:     "higher bid price wins",
			a:        &Order{IsBid: true, Price: 10, Timestamp: 5},
			b:        &Order{IsBid: true, Price: 9, Timestamp: 1},
			expected: true,
		},
		{
			name:     "lower ask price wins",
			a:        &Order{IsBid: false, Price: 8, Timestamp: 5},
			b:        &Order{IsBid: false, Price: 9, Timestamp: 1},
			expected: true,
		},
		{
			name:     "equal price earlier timestamp wins",
			a:        &Order{IsBid: true, Price: 10, Timestamp: 1},
			b:        &Order{IsBid: true, Price: 10, Timestamp: 2},
			expected: true,
		},
		{
			name:     "equal price later timestamp loses",
			a:        &Order{IsBid: false, Price: 10, Timestamp: 9},
			b:        &Order{IsBid: false, Price: 10, Timestamp: 2},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.HigherPriority(tc.b))
		})
	}
}
