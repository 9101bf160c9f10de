package mapdata

// Point is a WGS84 coordinate pair in the order Overpass returns geometry.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Polyline is an ordered run of coordinates.
type Polyline []Point

// Edge is one street segment with its OSM highway classification. The
// highway value may be a single tag or a semicolon-joined list; consumers
// use the first element.
type Edge struct {
	Highway string
	Points  Polyline
}

// Polygon is a closed area feature (water body, park).
type Polygon = Polyline

// Bounds is an axis-aligned bounding box in degrees.
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64

	seeded bool
}

// Extend grows the bounds to include p. The first point seeds the box; a
// coordinate sentinel would misfire on vertices at exactly (0, 0).
func (b *Bounds) Extend(p Point) {
	if !b.seeded {
		b.seeded = true
		b.MinLat, b.MaxLat = p.Lat, p.Lat
		b.MinLon, b.MaxLon = p.Lon, p.Lon
		return
	}
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lon < b.MinLon {
		b.MinLon = p.Lon
	}
	if p.Lon > b.MaxLon {
		b.MaxLon = p.Lon
	}
}

// Graph is the street network for one poster.
type Graph struct {
	Edges  []Edge
	Bounds Bounds
}

// FeatureSet carries the optional, best-effort layers.
type FeatureSet struct {
	Water []Polygon
	Parks []Polygon
}

// Layers selects which optional feature layers a fetch should attempt.
type Layers struct {
	Water bool
	Parks bool
}
