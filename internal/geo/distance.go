// Package geo computes store distances and acquires the user's position.
package geo

import (
	"math"
	"math/big"
	"strconv"
)

// EarthRadiusKm is the sphere radius used for every distance shown to users.
const EarthRadiusKm = 6371.0

// NearbyRadiusKm is the inclusive radius of the nearby offer views.
const NearbyRadiusKm = 5.0

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// Haversine returns the unrounded great-circle distance in kilometres.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// CalculateDistance returns the haversine distance in kilometres rounded to
// one decimal place. Nearby filtering compares this rounded value.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	return RoundTenths(Haversine(lat1, lng1, lat2, lng2))
}

// RoundTenths rounds v to one decimal the way Number.prototype.toFixed(1)
// does: the decimal closest to the exact binary value, ties away from zero.
// The result is the float64 nearest to that decimal.
func RoundTenths(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	neg := v < 0
	x := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	x.Mul(x, big.NewFloat(10))
	x.Add(x, big.NewFloat(0.5))
	n, _ := x.Int(nil)

	digits := n.String()
	if len(digits) < 2 {
		digits = "0" + digits
	}
	text := digits[:len(digits)-1] + "." + digits[len(digits)-1:]
	if neg {
		text = "-" + text
	}

	out, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.Round(v*10) / 10
	}
	return out
}

// WithinNearbyRadius reports whether a rounded distance qualifies as nearby.
func WithinNearbyRadius(distanceKm float64) bool {
	return distanceKm <= NearbyRadiusKm
}
