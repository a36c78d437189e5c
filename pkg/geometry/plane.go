package geometry

// Plane3D represents a plane in Hessian normal form: dot(Normal, p) + D = 0
type Plane3D struct {
	Normal Point3D `json:"normal"`
	D      float64 `json:"d"`
}

// NewPlane3D creates a plane from a normal and offset, normalizing the normal
func NewPlane3D(normal Point3D, d float64) Plane3D {
	l := normal.Length()
	if l == 0 {
		return Plane3D{Normal: normal, D: d}
	}
	return Plane3D{Normal: normal.Scale(1 / l), D: d / l}
}

// NewPlaneFromPoints creates a plane through three points with the normal
// following the right-hand rule
func NewPlaneFromPoints(a, b, c Point3D) Plane3D {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane3D{Normal: n, D: -n.Dot(a)}
}

// SignedDistance returns the signed distance from the plane to a point
func (pl Plane3D) SignedDistance(p Point3D) float64 {
	return pl.Normal.Dot(p) + pl.D
}

// IntersectsAABB checks whether the plane straddles a bounding box, using the
// projected-radius test against the box center
func (pl Plane3D) IntersectsAABB(b AABB) bool {
	c := b.Center()
	// Half extents
	hx := (b.Max.X - b.Min.X) / 2
	hy := (b.Max.Y - b.Min.Y) / 2
	hz := (b.Max.Z - b.Min.Z) / 2

	r := hx*abs(pl.Normal.X) + hy*abs(pl.Normal.Y) + hz*abs(pl.Normal.Z)
	d := pl.SignedDistance(c)
	return d >= -r && d <= r
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
