package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
)

func TestCentsToDisplay(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{1050, "10.50"},
		{3000, "30.00"},
		{-1050, "-10.50"},
		{100000001, "1000000.01"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CentsToDisplay(tc.cents), "cents=%d", tc.cents)
	}
}

func TestDisplayToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10.50", 1050},
		{"0", 0},
		{"0.00", 0},
		{"30", 3000},
		{"-2.5", -250},
		{" 12.34 ", 1234},
	}
	for _, tc := range tests {
		got, err := DisplayToCents(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

// Half-cent boundaries round away from zero, independent of binary float
// representation.
func TestDisplayToCentsHalfAwayFromZero(t *testing.T) {
	got, err := DisplayToCents("1.015")
	require.NoError(t, err)
	assert.Equal(t, int64(102), got)

	got, err = DisplayToCents("-1.015")
	require.NoError(t, err)
	assert.Equal(t, int64(-102), got)

	got, err = DisplayToCents("0.005")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestDisplayToCentsRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12.3.4", "10元"} {
		_, err := DisplayToCents(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "input %q", in)
	}
}

func TestRoundTripStability(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 101, 1050, 123456789} {
		got, err := DisplayToCents(CentsToDisplay(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, got)
	}
}

func TestLineTotalLinearity(t *testing.T) {
	const price = int64(300)
	for _, pair := range [][2]int64{{0, 0}, {1, 2}, {10, 5}, {7, 13}} {
		q1, q2 := pair[0], pair[1]
		assert.Equal(t, LineTotal(price, q1)+LineTotal(price, q2), LineTotal(price, q1+q2))
	}
}

func TestItemSubtotal(t *testing.T) {
	// 1 case at 72.00 plus 6 bottles at 3.00 = 90.00.
	assert.Equal(t, int64(9000), ItemSubtotal(7200, 1, 300, 6))
	// Single-unit goods: big side is zero.
	assert.Equal(t, int64(3000), ItemSubtotal(0, 0, 300, 10))
}
