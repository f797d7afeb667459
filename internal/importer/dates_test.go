package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateResolver_Layouts(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		in   string
		want time.Time
	}{
		{"06-Dec-12", day(2012, time.December, 6)},
		{"6-Dec-12", day(2012, time.December, 6)},
		{"07/12/2012", day(2012, time.December, 7)},
		{"02/01/2012", day(2012, time.January, 2)},
		{"09 Dec 2012", day(2012, time.December, 9)},
		{"Dec. 8, 2012", day(2012, time.December, 8)},
		{"Dec 8, 2012", day(2012, time.December, 8)},
		{"December 8, 2012", day(2012, time.December, 8)},
		{"8 December 2012", day(2012, time.December, 8)},
		{"2012-12-09", day(2012, time.December, 9)},
		{"  2012-12-09 ", day(2012, time.December, 9)},
	}
	r := NewDateResolver()
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := r.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateResolver_Invalid(t *testing.T) {
	r := NewDateResolver()
	for _, in := range []string{"", "notadate", "13/13/2012", "2012/12/09"} {
		_, err := r.Parse(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestDateResolver_CustomLayouts(t *testing.T) {
	r := NewDateResolver("01/02/2006")
	got, err := r.Parse("07/12/2012")
	require.NoError(t, err)
	assert.Equal(t, time.July, got.Month())
	assert.Equal(t, []string{"01/02/2006"}, r.Layouts())
}
