package sesxml

import "strings"

// PaymentCode maps a human payment description to the numeric code the
// schema expects. Digits pass through untouched; anything unrecognized
// falls back to "otros".
func PaymentCode(paymentType string) string {
	t := strings.ToLower(strings.TrimSpace(paymentType))
	if len(t) == 1 && t[0] >= '0' && t[0] <= '9' {
		return t
	}
	switch {
	case strings.Contains(t, "efectivo"), t == "ef":
		return "1"
	case strings.Contains(t, "tarjeta"), t == "ta":
		return "2"
	case strings.Contains(t, "transferencia"), t == "tr":
		return "3"
	case strings.Contains(t, "plataforma"), t == "pp":
		return "4"
	default:
		return "5"
	}
}
