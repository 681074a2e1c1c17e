// Parcel number assignment tests in Welzyne.

package order

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var parcelPattern = regexp.MustCompile(`^WELZYNE-[A-Z-]+-\d{4}$`)

func TestGenerateParcelNumberFormat(t *testing.T) {
	for _, courierType := range []string{"standard", "express", "same-day"} {
		parcel := generateParcelNumber(courierType)
		assert.Regexp(t, parcelPattern, parcel)
		assert.True(t, strings.HasPrefix(parcel, "WELZYNE-"+strings.ToUpper(courierType)+"-"))

		suffix, converr := strconv.Atoi(parcel[strings.LastIndex(parcel, "-")+1:])
		assert.NoError(t, converr)
		assert.GreaterOrEqual(t, suffix, 1000)
		assert.LessOrEqual(t, suffix, 9999)
	}
}

func TestGenerateParcelNumberVariesOnlyInSuffix(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		parcel := generateParcelNumber("express")
		assert.True(t, strings.HasPrefix(parcel, "WELZYNE-EXPRESS-"))
		seen[parcel] = true
	}
	// 50 draws out of 9000 suffixes collide rarely, expect several distinct ones
	assert.Greater(t, len(seen), 1)
}
