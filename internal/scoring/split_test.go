package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSplitEvenlyTwoWays(t *testing.T) {
	shares := SplitEvenly(d("9.00"), 2)
	require.Len(t, shares, 2)
	require.True(t, shares[0].Equal(d("4.50")), "got %s", shares[0])
	require.True(t, shares[1].Equal(d("4.50")), "got %s", shares[1])
}

func TestSplitEvenlyRemainderGoesFirst(t *testing.T) {
	shares := SplitEvenly(d("1.00"), 3)
	require.Len(t, shares, 3)
	require.True(t, shares[0].Equal(d("0.34")), "got %s", shares[0])
	require.True(t, shares[1].Equal(d("0.33")), "got %s", shares[1])
	require.True(t, shares[2].Equal(d("0.33")), "got %s", shares[2])
}

func TestSplitEvenlySingleParticipant(t *testing.T) {
	shares := SplitEvenly(d("7.77"), 1)
	require.Len(t, shares, 1)
	require.True(t, shares[0].Equal(d("7.77")))
}

func TestSplitEvenlyConservesTotal(t *testing.T) {
	totals := []string{"9.00", "1.00", "0.01", "10.01", "33.35"}
	for _, total := range totals {
		for n := 1; n <= 7; n++ {
			shares := SplitEvenly(d(total), n)
			sum := decimal.Zero
			for _, s := range shares {
				sum = sum.Add(s)
			}
			require.True(t, sum.Equal(d(total)), "total=%s n=%d sum=%s", total, n, sum)
		}
	}
}

func TestSplitEvenlyNoParticipants(t *testing.T) {
	require.Nil(t, SplitEvenly(d("5.00"), 0))
	require.Nil(t, SplitEvenly(d("5.00"), -1))
}
