package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("9:00")
	require.NoError(t, err)
	assert.Equal(t, "09:00", got)

	got, err = NormalizeClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	got, err = NormalizeClock(" 23:59 ")
	require.NoError(t, err)
	assert.Equal(t, "23:59", got)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:00:00", "-1:30"} {
		_, err := NormalizeClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestNewRejectsInvertedInterval(t *testing.T) {
	_, err := New("10:00", "09:00")
	assert.Error(t, err)

	_, err = New("10:00", "10:00")
	assert.Error(t, err)

	iv, err := New("9:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, Interval{Start: "09:00", End: "10:30"}, iv)
}

func TestOverlaps(t *testing.T) {
	mk := func(s, e string) Interval {
		iv, err := New(s, e)
		require.NoError(t, err)
		return iv
	}

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"touching endpoints", mk("09:00", "10:00"), mk("10:00", "11:00"), false},
		{"disjoint", mk("08:00", "09:00"), mk("10:00", "11:00"), false},
		{"new starts inside existing", mk("09:30", "10:30"), mk("09:00", "10:00"), true},
		{"new ends inside existing", mk("08:30", "09:30"), mk("09:00", "10:00"), true},
		{"new contains existing", mk("09:00", "12:00"), mk("10:00", "11:00"), true},
		{"identical", mk("09:00", "10:00"), mk("09:00", "10:00"), true},
		{"unpadded input still compares", mk("9:00", "10:00"), mk("09:30", "11:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// symmetry
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a))
		})
	}
}

func TestConflicts(t *testing.T) {
	mk := func(s, e string) Interval {
		iv, err := New(s, e)
		require.NoError(t, err)
		return iv
	}

	existing := []Interval{mk("09:00", "10:00"), mk("13:00", "14:00")}

	assert.False(t, Conflicts(mk("10:00", "11:00"), existing))
	assert.False(t, Conflicts(mk("12:00", "13:00"), existing))
	assert.True(t, Conflicts(mk("09:30", "10:30"), existing))
	assert.True(t, Conflicts(mk("13:59", "15:00"), existing))
	assert.False(t, Conflicts(mk("09:00", "10:00"), nil))
}
