package geometry

import "math"

// Ray3D represents a ray with a unit direction and a maximum travel distance
type Ray3D struct {
	Origin      Point3D `json:"origin"`
	Direction   Point3D `json:"direction"`
	MaxDistance float64 `json:"max_distance"`
}

// NewRay3D creates a ray, normalizing the direction
func NewRay3D(origin, direction Point3D, maxDistance float64) Ray3D {
	return Ray3D{
		Origin:      origin,
		Direction:   direction.Normalize(),
		MaxDistance: maxDistance,
	}
}

// PointAt returns the point at parameter t along the ray
func (r Ray3D) PointAt(t float64) Point3D {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectAABB performs the slab test against a bounding box.
// It returns the entry distance and whether the ray hits the box within
// [0, MaxDistance]. A ray starting inside the box reports entry 0.
func (r Ray3D) IntersectAABB(b AABB) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	var ok bool
	if tMin, tMax, ok = slab(r.Origin.X, r.Direction.X, b.Min.X, b.Max.X, tMin, tMax); !ok {
		return 0, false
	}
	if tMin, tMax, ok = slab(r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y, tMin, tMax); !ok {
		return 0, false
	}
	if tMin, tMax, ok = slab(r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z, tMin, tMax); !ok {
		return 0, false
	}

	if tMax < 0 {
		return 0, false
	}
	entry := tMin
	if entry < 0 {
		entry = 0
	}
	if r.MaxDistance > 0 && entry > r.MaxDistance {
		return 0, false
	}
	return entry, true
}

// slab narrows the [tMin, tMax] interval by one axis slab
func slab(origin, dir, lo, hi, tMin, tMax float64) (float64, float64, bool) {
	if dir == 0 {
		// Ray parallel to the slab: miss unless the origin is inside it
		if origin < lo || origin > hi {
			return tMin, tMax, false
		}
		return tMin, tMax, true
	}
	t1 := (lo - origin) / dir
	t2 := (hi - origin) / dir
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > tMin {
		tMin = t1
	}
	if t2 < tMax {
		tMax = t2
	}
	return tMin, tMax, tMin <= tMax
}

// DistanceToPoint returns the perpendicular distance from the ray line to a
// point, or +Inf when the point projects behind the origin or past MaxDistance
func (r Ray3D) DistanceToPoint(p Point3D) float64 {
	v := p.Sub(r.Origin)
	t := v.Dot(r.Direction)
	if t < 0 || (r.MaxDistance > 0 && t > r.MaxDistance) {
		return math.Inf(1)
	}
	return r.PointAt(t).DistanceTo(p)
}
