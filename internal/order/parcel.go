// Parcel number assignment for courier orders in Welzyne.

package order

import (
	"Welzyne/internal/errors"
	"context"
	"fmt"
	"math/rand"
	"strings"
)

// Fixed carrier tag prefixing every parcel number.
const carrierCode = "WELZYNE"

// How many collisions are tolerated before giving up on parcel assignment.
const maxParcelAttempts = 25

// generateParcelNumber composes a parcel number out of the carrier tag,
// the upper-cased courier class and a 4-digit random suffix in [1000, 9999].
func generateParcelNumber(courierType string) string {
	suffix := 1000 + rand.Intn(9000)
	return fmt.Sprintf("%s-%s-%d", carrierCode, strings.ToUpper(courierType), suffix)
}

// assignParcelNumber draws parcel numbers until one is unused.
// The 4-digit suffix space collides quickly at scale, so candidates are
// checked against the repository and regenerated on a hit.
func (s service) assignParcelNumber(ctx context.Context, courierType string) (string, error) {
	for i := 0; i < maxParcelAttempts; i++ {
		candidate := generateParcelNumber(courierType)
		taken, dberr := s.orderRepo.HasOrder(ctx, s.logger, candidate)
		if dberr != nil {
			// Error occured in HasOrder()
			return "", dberr
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.InternalServerError("Couldn't assign an unique parcel number")
}
