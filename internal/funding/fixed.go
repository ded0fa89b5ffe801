package funding

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimals18 is the precision all prices and the target value are carried in.
const Decimals18 = 18

// One is 1.0 in 18-decimal fixed point.
var One = Pow10(Decimals18)

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ParseFixed parses a non-negative decimal string ("0.005", "50000") into fixed point
// with the given number of decimals. Inputs with more precision than decimals are rejected.
func ParseFixed(input string, decimals uint8) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty decimal value")
	}
	if strings.Contains(input, "/") {
		return nil, fmt.Errorf("invalid decimal value: %s", input)
	}
	rat, ok := new(big.Rat).SetString(input)
	if !ok {
		return nil, fmt.Errorf("invalid decimal value: %s", input)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("negative decimal value: %s", input)
	}
	rat.Mul(rat, new(big.Rat).SetInt(Pow10(decimals)))
	if !rat.IsInt() {
		return nil, fmt.Errorf("value %s exceeds %d decimals", input, decimals)
	}
	return new(big.Int).Set(rat.Num()), nil
}

// Rescale converts a fixed-point value between decimal counts. Scaling down truncates.
func Rescale(value *big.Int, from, to uint8) *big.Int {
	out := new(big.Int).Set(value)
	switch {
	case to > from:
		out.Mul(out, Pow10(to-from))
	case from > to:
		out.Quo(out, Pow10(from-to))
	}
	return out
}

// FormatAmount renders a fixed-point value as a decimal string.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	rat := new(big.Rat).SetFrac(abs, Pow10(decimals))
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}
