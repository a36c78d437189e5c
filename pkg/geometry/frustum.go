package geometry

// Frustum3D represents a view frustum bounded by six inward-facing planes
type Frustum3D struct {
	Left   Plane3D `json:"left"`
	Right  Plane3D `json:"right"`
	Top    Plane3D `json:"top"`
	Bottom Plane3D `json:"bottom"`
	Near   Plane3D `json:"near"`
	Far    Plane3D `json:"far"`
}

// NewFrustum3D creates a frustum from its six planes
func NewFrustum3D(left, right, top, bottom, near, far Plane3D) Frustum3D {
	return Frustum3D{
		Left: left, Right: right,
		Top: top, Bottom: bottom,
		Near: near, Far: far,
	}
}

// Planes returns the six planes in a fixed order
func (f Frustum3D) Planes() [6]Plane3D {
	return [6]Plane3D{f.Left, f.Right, f.Top, f.Bottom, f.Near, f.Far}
}

// ContainsPoint checks if a point lies inside or on all six planes
func (f Frustum3D) ContainsPoint(p Point3D) bool {
	for _, pl := range f.Planes() {
		if pl.SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB performs the standard 6-plane test: the box is rejected as
// soon as it lies entirely on the negative side of any plane
func (f Frustum3D) IntersectsAABB(b AABB) bool {
	for _, pl := range f.Planes() {
		// Pick the box corner furthest along the plane normal
		v := Point3D{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if pl.Normal.X >= 0 {
			v.X = b.Max.X
		}
		if pl.Normal.Y >= 0 {
			v.Y = b.Max.Y
		}
		if pl.Normal.Z >= 0 {
			v.Z = b.Max.Z
		}
		if pl.SignedDistance(v) < 0 {
			return false
		}
	}
	return true
}
