package escrow

import (
	"fmt"
	"strconv"
)

// formatMZN renders an amount in centavos as meticais for confirmation
// messages, pt-MZ style: "." thousands separator, "," decimals, and no
// fraction when the amount is whole (15000_00 -> "15.000").
func formatMZN(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := strconv.FormatInt(cents/100, 10)
	var out []byte
	for i, d := range []byte(units) {
		if i > 0 && (len(units)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	s := string(out)
	if frac := cents % 100; frac != 0 {
		s += fmt.Sprintf(",%02d", frac)
	}
	if neg {
		s = "-" + s
	}
	return s
}
