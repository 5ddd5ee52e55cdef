package studiorender

import (
	gomath "math"
	"strings"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// View model projection planes.
const (
	viewModelNear = 3
	viewModelFar  = 4096
)

var categoryWords = []struct {
	mask  FreezeMask
	words []string
}{
	{FreezeIdle, []string{"idle", "fidget"}},
	{FreezeShoot, []string{"shoot", "Shoot", "fire", "spin"}},
	{FreezeEquip, []string{"holster", "draw", "deploy", "up", "down"}},
	{FreezeReload, []string{"reload", "pump"}},
}

// Categories classifies a sequence label by the words it contains. A label
// may fall into several categories.
func Categories(label string) FreezeMask {
	var mask FreezeMask
	for _, c := range categoryWords {
		for _, w := range c.words {
			if strings.Contains(label, w) {
				mask |= c.mask
				break
			}
		}
	}
	return mask
}

// freezeViewModel applies the freeze policy to the view model sequence. Idle
// sequences stop on their current state at frame 0; equip, shoot and reload
// sequences are replaced by a one-frame rendition of sequence 0.
func (r *Renderer) freezeViewModel(seq *studio.Sequence) *studio.Sequence {
	if r.opts.ViewModelFreeze == 0 {
		return seq
	}
	e := r.cur
	hit := Categories(seq.Label) & r.opts.ViewModelFreeze

	if hit&FreezeIdle != 0 {
		e.Cur.Frame = 0
		e.Cur.FrameRate = 0
	}
	if hit&(FreezeShoot|FreezeEquip|FreezeReload) != 0 && r.model.Sequence(0) != nil {
		e.Cur.Sequence = 0
		r.frozen = *r.model.Sequence(0)
		r.frozen.NumFrames = 1
		r.frozen.FPS = 1
		return &r.frozen
	}
	return seq
}

// ViewModelProjection returns the projection used to draw the view model with
// its own field of view.
func ViewModelProjection(fov float32, width, height int) math.Mat4 {
	near, far := float32(viewModelNear), float32(viewModelFar)
	aspect := float32(width) / float32(height)
	h := float32(gomath.Tan(float64(fov)/360*gomath.Pi)) * near * (float32(height) / float32(width))
	w := h * aspect
	return math.Frustum(-w, w, -h, h, near, far)
}

func (r *Renderer) setViewModelProjection() {
	if !r.path.Hardware() {
		return
	}
	fov := r.opts.ViewModelFOV
	if fov < 1 || fov > 179 {
		return
	}
	// Zoomed in.
	if r.frame.FOV != r.opts.DefaultFOV {
		return
	}
	r.raster.SetProjection(ViewModelProjection(fov, r.frame.Width, r.frame.Height))
}

func (r *Renderer) adjustViewModelAttachments() bool {
	return r.path.Hardware() && r.opts.ViewModelFOV != 0 && r.frame.FOV == r.opts.DefaultFOV
}

// AdjustViewModelPoint moves a point drawn with the view model FOV to where it
// appears on screen in the world FOV, so effects spawned at attachments line
// up with the weapon.
func AdjustViewModelPoint(p math.Vec3, view *skeleton.View, worldFOV, viewModelFOV float32) math.Vec3 {
	worldX := gomath.Tan(float64(worldFOV) * gomath.Pi / 360)
	viewX := gomath.Tan(float64(viewModelFOV) * gomath.Pi / 360)
	factor := float32(worldX / viewX)

	tmp := p.Sub(view.Origin)
	x := view.Right.Dot(tmp) * factor
	y := view.Up.Dot(tmp) * factor
	z := view.Normal.Dot(tmp)

	out := view.Right.Scale(x).Add(view.Up.Scale(y)).Add(view.Normal.Scale(z))
	return view.Origin.Add(out)
}

func (r *Renderer) isViewModel(e *entity.Entity) bool {
	return e != nil && e == r.ents.ViewModel()
}
