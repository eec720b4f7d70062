package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cargo-rewards/internal/domain"
)

func TestWorkUnitScore(t *testing.T) {
	tariff := domain.Tariff{
		PointsPerMass:   d("2.00"),
		PointsPerVolume: d("1.50"),
	}
	// 3 * 2.00 + 2 * 1.50 = 9.00
	got := WorkUnitScore(tariff, 3, 2)
	require.True(t, got.Equal(d("9.00")), "got %s", got)
}

func TestWorkUnitScoreRounds(t *testing.T) {
	tariff := domain.Tariff{
		PointsPerMass:   d("0.33"),
		PointsPerVolume: d("0.10"),
	}
	got := WorkUnitScore(tariff, 1.5, 0.25)
	// 0.495 + 0.025 = 0.52
	require.True(t, got.Equal(d("0.52")), "got %s", got)
}

func TestWorkUnitScoreZeroCargo(t *testing.T) {
	tariff := domain.Tariff{PointsPerMass: d("2.00"), PointsPerVolume: d("1.50")}
	require.True(t, WorkUnitScore(tariff, 0, 0).IsZero())
}
