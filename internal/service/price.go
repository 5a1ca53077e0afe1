package service

import (
	"math"
	"strconv"
	"strings"

	perrors "github.com/abgdnv/productdesk/internal/errors"
)

// ParsePrice turns price text as typed by a user into a finite float.
// Surrounding whitespace is ignored. Anything strconv.ParseFloat rejects, and
// NaN or infinities, is a ValidationError on field "price".
func ParsePrice(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, perrors.Invalid("price", "must not be empty")
	}
	price, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, perrors.Invalid("price", "has an invalid format")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, perrors.Invalid("price", "must be a finite number")
	}
	return price, nil
}
