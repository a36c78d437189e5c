package sfc

// Connectivity tables for the six-type tetrahedral refinement. The cube is
// split into six tetrahedra sharing the main diagonal; each tetrahedron
// refines 1:8 via vertex midpoints (Bey refinement). The tables relate three
// child numbering schemes:
//
//   - local index: the order the space-filling curve visits the children,
//     a function of the parent type
//   - cube id: the 3-bit octant tag of the child's anchor within the parent
//     cell (x bit 0, y bit 1, z bit 2)
//   - Bey id: Bey's numbering, 0..3 the corner children at the parent's
//     vertices, 4..7 the interior octahedron children
//
// The tables are mutually redundant on purpose; the consistency tests in
// connectivity_test.go verify every relation between them.

// ParentTypeLocalIndexToCubeID maps (parent type, local index) to the child's
// cube id.
var ParentTypeLocalIndexToCubeID = [6][8]uint8{
	{0, 1, 1, 1, 5, 5, 5, 7},
	{0, 1, 1, 1, 3, 3, 3, 7},
	{0, 2, 2, 2, 3, 3, 3, 7},
	{0, 2, 2, 2, 6, 6, 6, 7},
	{0, 4, 4, 4, 6, 6, 6, 7},
	{0, 4, 4, 4, 5, 5, 5, 7},
}

// ParentTypeLocalIndexToType maps (parent type, local index) to the child's
// type.
var ParentTypeLocalIndexToType = [6][8]uint8{
	{0, 0, 4, 5, 0, 1, 2, 0},
	{1, 1, 2, 3, 0, 1, 5, 1},
	{2, 0, 1, 2, 2, 3, 4, 2},
	{3, 3, 4, 5, 1, 2, 3, 3},
	{4, 2, 3, 4, 0, 4, 5, 4},
	{5, 0, 1, 5, 3, 4, 5, 5},
}

// CubeIDTypeToParentType maps (cube id, child type) to the parent's type.
var CubeIDTypeToParentType = [8][6]uint8{
	{0, 1, 2, 3, 4, 5},
	{0, 1, 1, 1, 0, 0},
	{2, 2, 2, 3, 3, 3},
	{1, 1, 2, 2, 2, 1},
	{5, 5, 4, 4, 4, 5},
	{0, 0, 0, 5, 5, 5},
	{4, 3, 3, 3, 4, 4},
	{0, 1, 2, 3, 4, 5},
}

// TypeCubeIDToLocalIndex maps (child type, cube id) to the child's local
// index within its parent.
var TypeCubeIDToLocalIndex = [6][8]uint8{
	{0, 1, 1, 4, 1, 4, 4, 7},
	{0, 1, 2, 5, 2, 5, 4, 7},
	{0, 2, 3, 4, 1, 6, 5, 7},
	{0, 3, 1, 5, 2, 4, 6, 7},
	{0, 2, 2, 6, 3, 5, 5, 7},
	{0, 3, 3, 6, 3, 6, 6, 7},
}

// TypeBeyChildToType maps (parent type, Bey child id) to the child's type.
// The four corner children 0..3 keep the parent's type.
var TypeBeyChildToType = [6][8]uint8{
	{0, 0, 0, 0, 4, 5, 2, 1},
	{1, 1, 1, 1, 3, 2, 5, 0},
	{2, 2, 2, 2, 0, 1, 4, 3},
	{3, 3, 3, 3, 5, 4, 1, 2},
	{4, 4, 4, 4, 2, 3, 0, 5},
	{5, 5, 5, 5, 1, 0, 3, 4},
}

// TypeLocalIndexToBeyChild maps (parent type, local index) to the Bey id of
// that child.
var TypeLocalIndexToBeyChild = [6][8]uint8{
	{0, 1, 4, 5, 2, 7, 6, 3},
	{0, 1, 5, 4, 7, 2, 6, 3},
	{0, 4, 5, 1, 2, 7, 6, 3},
	{0, 1, 5, 4, 6, 7, 2, 3},
	{0, 4, 5, 1, 6, 2, 7, 3},
	{0, 5, 4, 1, 6, 7, 2, 3},
}

// BeyChildToVertex maps a Bey child id to the parent vertex whose midpoint
// with the anchor becomes the child's anchor. Child 0 sits on the anchor
// itself; the interior children 4..7 reuse vertices 1 and 2.
var BeyChildToVertex = [8]uint8{0, 1, 2, 3, 1, 1, 2, 2}

// TypeToSimplexVertices holds the four vertices of each tetrahedron type in
// unit-cube coordinates. Vertex 0 is the anchor and vertex 3 the far corner
// of the main diagonal for every type.
var TypeToSimplexVertices = [6][4][3]uint8{
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {1, 1, 1}},
	{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 1, 1}},
	{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {1, 1, 1}},
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {1, 1, 1}},
	{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 1, 1}},
}

// FaceNeighborType maps (type, face) to the type of the tetrahedron across
// that face. Faces 1 and 2 stay inside the same cube; faces 0 and 3 cross
// into a neighboring cube.
var FaceNeighborType = [6][4]uint8{
	{4, 5, 1, 2},
	{3, 2, 0, 5},
	{0, 1, 3, 4},
	{5, 4, 2, 1},
	{2, 3, 5, 0},
	{1, 0, 4, 3},
}

// FaceNeighborMirror maps a face to the matching face index on the neighbor.
var FaceNeighborMirror = [4]uint8{3, 1, 2, 0}

// faceNeighborAxis gives, per type, the axis crossed by face 0 (+h) and
// face 3 (-h). Face 0 crosses the type's first edge axis, face 3 the axis
// spanned by neither edge.
var faceNeighborAxis = [6][2]uint8{
	{0, 1},
	{0, 2},
	{1, 2},
	{1, 0},
	{2, 0},
	{2, 1},
}
