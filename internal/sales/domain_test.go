package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	for _, in := range []string{"all", "north", "South", " EAST ", "west"} {
		r, err := ParseRegion(in)
		require.NoError(t, err, in)
		assert.Equal(t, Region(NormalizeRegion(in)), r)
	}

	r, err := ParseRegion("")
	require.NoError(t, err)
	assert.Equal(t, RegionAll, r)

	_, err = ParseRegion("northeast")
	assert.ErrorIs(t, err, ErrUnrecognizedRegion)
}

func TestNewCriteria(t *testing.T) {
	c, err := NewCriteria("2021-01-01", "2021-01-01", "north")
	require.NoError(t, err, "A single-day range is valid")
	require.NotNil(t, c.Start)
	require.NotNil(t, c.End)
	assert.Equal(t, RegionNorth, c.Region)

	c, err = NewCriteria("", "", "")
	require.NoError(t, err)
	assert.Nil(t, c.Start)
	assert.Nil(t, c.End)

	_, err = NewCriteria("2021-13-01", "", "all")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NewCriteria("", "yesterday", "all")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestInsight(t *testing.T) {
	assert.Equal(t, NoCutoverInsight, Insight(nil))

	higher := &Comparison{Delta: decimal.RequireFromString("1234.5"), Direction: AfterHigher}
	assert.Equal(t,
		"Sales were HIGHER after the price increase! Sales increased by $1,234.50 after January 15, 2021.",
		Insight(higher))

	lower := &Comparison{Delta: decimal.RequireFromString("3"), Direction: AfterLowerOrEqual}
	assert.Equal(t,
		"Sales were LOWER after the price increase. Sales decreased by $3.00 after January 15, 2021.",
		Insight(lower))
}
