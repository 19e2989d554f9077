package geometry

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidGeometry is returned for empty or degenerate polygon geometry.
var ErrInvalidGeometry = errors.New("invalid geometry")

// OuterRings extracts the outer boundary rings of a Polygon or MultiPolygon.
// Holes are intentionally not carried over: every ring is treated as an
// independent outer boundary, matching the simplified containment model used
// throughout the renderer.
func OuterRings(geom orb.Geometry) []orb.Ring {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return []orb.Ring{g[0]}
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, poly := range g {
			if len(poly) > 0 {
				rings = append(rings, poly[0])
			}
		}
		return rings
	default:
		return nil
	}
}

// PointInRing runs the standard ray-casting test for point (x=lon, y=lat)
// against a single ring. Behaviour for a point exactly on a vertex or edge is
// undefined.
func PointInRing(x, y float64, ring orb.Ring) bool {
	n := len(ring)
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PointInPolygon reports whether the point lies inside any of the rings.
func PointInPolygon(x, y float64, rings []orb.Ring) bool {
	for _, ring := range rings {
		if PointInRing(x, y, ring) {
			return true
		}
	}
	return false
}

// BoundingBox returns the min/max lon/lat bound across all ring vertices.
func BoundingBox(rings []orb.Ring) (orb.Bound, error) {
	var bound orb.Bound
	found := false
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		if !found {
			bound = ring.Bound()
			found = true
			continue
		}
		bound = bound.Union(ring.Bound())
	}
	if !found {
		return orb.Bound{}, ErrInvalidGeometry
	}
	return bound, nil
}

// FillPolygonWithPoints lays a jittered square grid over the rings' bounding
// box and keeps the points that fall inside the polygon. The same
// (rings, targetCount, seed) input always yields the same point set, which is
// what lets callers cache rendered output. The returned count is only
// approximately targetCount.
func FillPolygonWithPoints(rings []orb.Ring, targetCount int, seed int64) []orb.Point {
	if targetCount <= 0 {
		return nil
	}

	bound, err := BoundingBox(rings)
	if err != nil {
		return nil
	}

	width := bound.Max[0] - bound.Min[0]
	height := bound.Max[1] - bound.Min[1]
	if width <= 0 || height <= 0 {
		return nil
	}

	// Oversample by 1.8x so that after clipping to the polygon roughly
	// targetCount points survive.
	cellSize := math.Sqrt(width * height / (float64(targetCount) * 1.8))
	if cellSize <= 0 {
		return nil
	}

	rng := newSplitMix64(seed)

	var points []orb.Point
	for lat := bound.Min[1] + cellSize*0.5; lat < bound.Max[1]; lat += cellSize {
		for lon := bound.Min[0] + cellSize*0.5; lon < bound.Max[0]; lon += cellSize {
			jlat := lat + rng.uniform(-cellSize*0.3, cellSize*0.3)
			jlon := lon + rng.uniform(-cellSize*0.3, cellSize*0.3)
			if PointInPolygon(jlon, jlat, rings) {
				points = append(points, orb.Point{jlon, jlat})
			}
		}
	}

	return points
}
