package renderer

import (
	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// floatsPerVertex is the interleaved position and normal layout.
const floatsPerVertex = 6

// posedVertices transforms every vertex of sm by its bone.
func posedVertices(dst []math.Vec3, sm *studio.SubModel, bones []math.Mat34) []math.Vec3 {
	dst = dst[:0]
	for i, v := range sm.Vertices {
		b := 0
		if i < len(sm.VertexBones) {
			b = int(sm.VertexBones[i])
		}
		if b < len(bones) {
			v = bones[b].TransformPoint(v)
		}
		dst = append(dst, v)
	}
	return dst
}

// faceNormal returns the outward unit normal of a studio triangle, whose
// front faces wind clockwise.
func faceNormal(a, b, c math.Vec3) math.Vec3 {
	return c.Sub(b).Cross(b.Sub(a)).Normalize()
}

func appendVertex(dst []float32, p, n math.Vec3) []float32 {
	return append(dst, p[0], p[1], p[2], n[0], n[1], n[2])
}

// appendSubModel appends the flat shaded triangles of the posed submodel.
func appendSubModel(dst []float32, posed []math.Vec3, sm *studio.SubModel) []float32 {
	for _, f := range shadow.BuildFaces(sm) {
		if int(f.V0) >= len(posed) || int(f.V1) >= len(posed) || int(f.V2) >= len(posed) {
			continue
		}
		a, b, c := posed[f.V0], posed[f.V1], posed[f.V2]
		n := faceNormal(a, b, c)
		dst = appendVertex(dst, a, n)
		dst = appendVertex(dst, b, n)
		dst = appendVertex(dst, c, n)
	}
	return dst
}

// appendGround appends two triangles covering -half..half on X and Y at
// height z, wound clockwise seen from above.
func appendGround(dst []float32, half, z float32) []float32 {
	up := math.Vec3{0, 0, 1}
	a := math.Vec3{-half, -half, z}
	b := math.Vec3{-half, half, z}
	c := math.Vec3{half, half, z}
	d := math.Vec3{half, -half, z}
	for _, p := range [6]math.Vec3{a, b, c, a, c, d} {
		dst = appendVertex(dst, p, up)
	}
	return dst
}

func appendLine(dst []float32, a, b math.Vec3) []float32 {
	dst = appendVertex(dst, a, math.Vec3{})
	return appendVertex(dst, b, math.Vec3{})
}

// boxEdges lists the corner pairs of a box; corner i has bit 0 for X max,
// bit 1 for Y max and bit 2 for Z max.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// appendBox appends the 12 edges of the box min..max placed by m.
func appendBox(dst []float32, m math.Mat34, min, max math.Vec3) []float32 {
	var corners [8]math.Vec3
	for i := range corners {
		p := min
		if i&1 != 0 {
			p[0] = max[0]
		}
		if i&2 != 0 {
			p[1] = max[1]
		}
		if i&4 != 0 {
			p[2] = max[2]
		}
		corners[i] = m.TransformPoint(p)
	}
	for _, e := range boxEdges {
		dst = appendLine(dst, corners[e[0]], corners[e[1]])
	}
	return dst
}

// appendBones appends one line from each bone to its parent.
func appendBones(dst []float32, bones []studio.Bone, t []math.Mat34) []float32 {
	for i := range bones {
		p := bones[i].Parent
		if p < 0 || int(p) >= len(t) || i >= len(t) {
			continue
		}
		dst = appendLine(dst, t[p].Origin(), t[i].Origin())
	}
	return dst
}
