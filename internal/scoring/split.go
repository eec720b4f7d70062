package scoring

import "github.com/shopspring/decimal"

// SplitEvenly делит total на n равных долей с точностью 2 знака после запятой.
// Правило округления: каждая доля усекается вниз, неделимый остаток целиком
// достаётся первой доле (самому раннему участнику). Сумма долей всегда
// в точности равна total.
func SplitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).RoundDown(2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}
	shares[0] = shares[0].Add(total.Sub(base.Mul(count)))
	return shares
}
