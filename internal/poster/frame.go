package poster

import (
	"math"

	"cartographix/internal/mapdata"
)

const (
	// MinRadiusMeters and MaxRadiusMeters bound the effective query radius.
	// Requests outside the range are clamped, not rejected.
	MinRadiusMeters = 1000.0
	MaxRadiusMeters = 20000.0

	// fetchCompensationCap limits how much extra data a very elongated
	// format may pull in.
	fetchCompensationCap = 1.6

	// cosFloor keeps the metric-to-longitude conversion finite near the
	// poles.
	cosFloor = 0.01

	metersPerDegreeLat = 111320.0
)

// AxisLimits are the final degree-space viewport for a rendered frame.
type AxisLimits struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// Width returns the longitude span.
func (a AxisLimits) Width() float64 { return a.MaxLon - a.MinLon }

// Height returns the latitude span.
func (a AxisLimits) Height() float64 { return a.MaxLat - a.MinLat }

// EffectiveRadius clamps a requested radius into the supported range.
func EffectiveRadius(requested float64) float64 {
	return math.Min(math.Max(requested, MinRadiusMeters), MaxRadiusMeters)
}

// FetchRadius over-fetches along the narrower dimension of a non-square
// format so the retrieved data can fill the frame after axis correction.
func FetchRadius(format Format, effectiveRadius float64) float64 {
	ratio := format.Ratio()
	compensation := math.Max(ratio, 1/ratio)
	if compensation > fetchCompensationCap {
		compensation = fetchCompensationCap
	}
	return effectiveRadius * compensation
}

// latCos is the cosine of a latitude, floored away from zero.
func latCos(latDegrees float64) float64 {
	c := math.Cos(latDegrees * math.Pi / 180)
	if math.Abs(c) < cosFloor {
		return cosFloor
	}
	return math.Abs(c)
}

// MetersToLatDegrees converts a metric distance to a latitude delta.
func MetersToLatDegrees(meters float64) float64 {
	return meters / metersPerDegreeLat
}

// MetersToLonDegrees converts a metric distance to a longitude delta at the
// given latitude, applying the cosine correction.
func MetersToLonDegrees(meters, latDegrees float64) float64 {
	return meters / (metersPerDegreeLat * latCos(latDegrees))
}

// ComputeAxisLimits turns raw data bounds into the viewport for a format.
// Whichever axis the data under-fills is expanded symmetrically around its
// center until the displayed lon/lat span ratio equals the format's
// width/height ratio; data is never cropped. The result depends only on the
// bounds and the format, not on how the data was fetched.
func ComputeAxisLimits(bounds mapdata.Bounds, format Format) AxisLimits {
	limits := AxisLimits{
		MinLon: bounds.MinLon,
		MaxLon: bounds.MaxLon,
		MinLat: bounds.MinLat,
		MaxLat: bounds.MaxLat,
	}

	// Small uniform margin so strokes at the data edge are not clipped.
	const margin = 0.02
	padLon := limits.Width() * margin
	padLat := limits.Height() * margin
	limits.MinLon -= padLon
	limits.MaxLon += padLon
	limits.MinLat -= padLat
	limits.MaxLat += padLat

	targetRatio := format.Ratio()
	dataW := limits.Width()
	dataH := limits.Height()
	if dataW <= 0 || dataH <= 0 {
		return limits
	}

	if dataW/dataH < targetRatio {
		// Under-filled horizontally: widen the longitude span.
		newW := dataH * targetRatio
		center := (limits.MinLon + limits.MaxLon) / 2
		limits.MinLon = center - newW/2
		limits.MaxLon = center + newW/2
	} else {
		// Under-filled vertically: expand the latitude span.
		newH := dataW / targetRatio
		center := (limits.MinLat + limits.MaxLat) / 2
		limits.MinLat = center - newH/2
		limits.MaxLat = center + newH/2
	}
	return limits
}
