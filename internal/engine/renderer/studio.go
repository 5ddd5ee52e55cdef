package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

var (
	chromeColor = mgl32.Vec4{0.75, 0.8, 0.9, 0.5}
	boneColor   = mgl32.Vec4{1, 0.6, 0, 1}
	hullColor   = mgl32.Vec4{0.2, 1, 0.2, 1}
	bboxColor   = mgl32.Vec4{1, 0.2, 0.2, 1}
	groundColor = mgl32.Vec4{0.55, 0.52, 0.45, 1}
)

// SetRemapColors sets the player colors used to tint the next submissions.
func (r *Renderer) SetRemapColors(top, bottom int) {
	r.top, r.bottom = top, bottom
}

// SetupRenderer sets blending for mode.
func (r *Renderer) SetupRenderer(mode entity.RenderMode) {
	r.mode = int32(mode)
	switch mode {
	case entity.RenderNormal:
		gl.Disable(gl.BLEND)
	case entity.RenderTransAdd, entity.RenderGlow:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		gl.DepthMask(false)
	default:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}

// RestoreRenderer undoes SetupRenderer and any projection override.
func (r *Renderer) RestoreRenderer() {
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	r.override = nil
	r.mode = int32(entity.RenderNormal)
}

// SetChrome switches every face to the chrome color.
func (r *Renderer) SetChrome(on bool) {
	r.chrome = on
}

// SetProjection overrides the camera projection until RestoreRenderer.
func (r *Renderer) SetProjection(p math.Mat4) {
	m := mgl32.Mat4(p)
	r.override = &m
}

func (r *Renderer) meshColor() mgl32.Vec4 {
	if r.chrome {
		return chromeColor
	}
	c := remapColor(r.top)
	if entity.RenderMode(r.mode) != entity.RenderNormal {
		c[3] = 0.6
	}
	return c
}

// DrawSubModel draws one submodel posed by t.
func (r *Renderer) DrawSubModel(e *entity.Entity, m *studio.Model, part, sub int, t *skeleton.Transforms) {
	if part >= len(m.BodyParts) || sub >= len(m.BodyParts[part].Models) {
		return
	}
	sm := &m.BodyParts[part].Models[sub]
	posed := posedVertices(nil, sm, t.Bone)
	r.scratch = appendSubModel(r.scratch[:0], posed, sm)
	if len(r.scratch) == 0 {
		return
	}

	n := int32(len(r.scratch) / floatsPerVertex)
	r.useMeshProgram(r.meshColor(), true)
	r.upload(r.scratch)
	gl.DrawArrays(gl.TRIANGLES, 0, n)
	gl.BindVertexArray(0)

	r.stats.SubModels++
	r.stats.Triangles += int(n) / 3
}

func (r *Renderer) drawLines(data []float32, color mgl32.Vec4) {
	if len(data) == 0 {
		return
	}
	r.useMeshProgram(color, false)
	r.upload(data)
	gl.DrawArrays(gl.LINES, 0, int32(len(data)/floatsPerVertex))
	gl.BindVertexArray(0)
}

// DrawBones draws the skeleton as lines.
func (r *Renderer) DrawBones(m *studio.Model, t *skeleton.Transforms) {
	r.scratch = appendBones(r.scratch[:0], m.Bones, t.Bone)
	gl.Disable(gl.DEPTH_TEST)
	r.drawLines(r.scratch, boneColor)
	gl.Enable(gl.DEPTH_TEST)
}

// DrawHulls draws the hit boxes.
func (r *Renderer) DrawHulls(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, additive bool) {
	r.scratch = r.scratch[:0]
	for _, hb := range m.HitBoxes {
		if int(hb.Bone) >= len(t.Bone) {
			continue
		}
		r.scratch = appendBox(r.scratch, t.Bone[hb.Bone], hb.BBMin, hb.BBMax)
	}
	if additive {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	}
	r.drawLines(r.scratch, hullColor)
}

// DrawAbsBBox draws the sequence bounds around the entity origin.
func (r *Renderer) DrawAbsBBox(e *entity.Entity, m *studio.Model) {
	min, max := m.Header.BBMin, m.Header.BBMax
	if seq := m.Sequence(e.Cur.Sequence); seq != nil {
		min, max = seq.BBMin, seq.BBMax
	}
	place := math.Identity34()
	place.SetOrigin(e.Origin)
	r.scratch = appendBox(r.scratch[:0], place, min, max)
	r.drawLines(r.scratch, bboxColor)
}

// DrawGround draws a square floor of the given half size at height z, lit
// from above, for shadows to land on.
func (r *Renderer) DrawGround(half, z float32) {
	r.scratch = appendGround(r.scratch[:0], half, z)
	r.useMeshProgram(groundColor, true)
	r.upload(r.scratch)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.scratch)/floatsPerVertex))
	gl.BindVertexArray(0)
}
