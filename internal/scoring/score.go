package scoring

import (
	"github.com/shopspring/decimal"

	"cargo-rewards/internal/domain"
)

// WorkUnitScore — стоимость работы с грузом по тарифу региона:
// масса * баллы за тонну + объём * баллы за кубометр, 2 знака.
func WorkUnitScore(t domain.Tariff, mass, volume float64) decimal.Decimal {
	return decimal.NewFromFloat(mass).Mul(t.PointsPerMass).
		Add(decimal.NewFromFloat(volume).Mul(t.PointsPerVolume)).
		Round(2)
}
