package models

import "fmt"

// FormatMinorUnits renders an amount held in minor units as pounds, e.g.
// 50000 with scale 100 is "£500.00".
func FormatMinorUnits(amount int64, scale int64) string {
	if scale <= 0 {
		scale = 100
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s£%d.%02d", sign, amount/scale, (amount%scale)*100/scale)
}
