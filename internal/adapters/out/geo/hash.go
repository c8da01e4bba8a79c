package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"routing/internal/core/domain/model/kernel"
)

// NormalizeAddress lowercases an address and collapses runs of whitespace
// so trivially different spellings share one cache entry.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

// AddressHash is the geocode cache key: sha256 of the normalized address.
func AddressHash(address string) string {
	sum := sha256.Sum256([]byte(NormalizeAddress(address)))
	return hex.EncodeToString(sum[:])
}

// PointHash is the distance cache key component for one coordinate,
// rounded to six decimal places (about 11 cm) so float noise does not
// split cache entries.
func PointHash(pt kernel.GeoPoint) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%.6f,%.6f", pt.Lat(), pt.Lng())))
	return hex.EncodeToString(sum[:])
}
