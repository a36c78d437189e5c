package geometry

// AABB represents an axis-aligned 3D bounding box
type AABB struct {
	Min Point3D `json:"min"`
	Max Point3D `json:"max"`
}

// NewAABB creates a bounding box from min and max points
func NewAABB(min, max Point3D) AABB {
	return AABB{Min: min, Max: max}
}

// NewCube creates a cubic bounding box from an origin corner and edge length
func NewCube(origin Point3D, edge float64) AABB {
	return AABB{
		Min: origin,
		Max: Point3D{X: origin.X + edge, Y: origin.Y + edge, Z: origin.Z + edge},
	}
}

// Contains checks if a point is inside the bounding box
func (b AABB) Contains(p Point3D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsAABB checks if another box lies entirely inside this one
func (b AABB) ContainsAABB(other AABB) bool {
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y &&
		other.Min.Z >= b.Min.Z && other.Max.Z <= b.Max.Z
}

// Intersects checks if two bounding boxes intersect
func (b AABB) Intersects(other AABB) bool {
	return !(b.Max.X < other.Min.X || b.Min.X > other.Max.X ||
		b.Max.Y < other.Min.Y || b.Min.Y > other.Max.Y ||
		b.Max.Z < other.Min.Z || b.Min.Z > other.Max.Z)
}

// Center returns the center point of the bounding box
func (b AABB) Center() Point3D {
	return Point3D{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Volume calculates the volume of the bounding box
func (b AABB) Volume() float64 {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	dz := b.Max.Z - b.Min.Z
	return dx * dy * dz
}

// DistanceSquaredTo returns the squared distance from a point to the box,
// zero when the point is inside
func (b AABB) DistanceSquaredTo(p Point3D) float64 {
	d := 0.0
	d += axisDistSq(p.X, b.Min.X, b.Max.X)
	d += axisDistSq(p.Y, b.Min.Y, b.Max.Y)
	d += axisDistSq(p.Z, b.Min.Z, b.Max.Z)
	return d
}

func axisDistSq(v, lo, hi float64) float64 {
	if v < lo {
		return (lo - v) * (lo - v)
	}
	if v > hi {
		return (v - hi) * (v - hi)
	}
	return 0
}

// Sphere represents a sphere query volume
type Sphere struct {
	Center Point3D `json:"center"`
	Radius float64 `json:"radius"`
}

// NewSphere creates a sphere from a center and radius
func NewSphere(center Point3D, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Bounds returns the tight AABB around the sphere
func (s Sphere) Bounds() AABB {
	r := Point3D{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// Contains checks if a point lies inside the sphere
func (s Sphere) Contains(p Point3D) bool {
	return s.Center.DistanceSquaredTo(p) <= s.Radius*s.Radius
}

// IntersectsAABB checks if the sphere intersects a bounding box
func (s Sphere) IntersectsAABB(b AABB) bool {
	return b.DistanceSquaredTo(s.Center) <= s.Radius*s.Radius
}
