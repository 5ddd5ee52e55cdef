package studiorender

import (
	"github.com/Faultbox/studiorender/internal/game/entity"
)

// renderModel submits the current model, twice for a glow shell: once as is
// and once with every face forced to chrome.
func (r *Renderer) renderModel() {
	e := r.cur
	r.chrome = false
	r.raster.SetChrome(false)

	if e.Cur.RenderFx != entity.FxGlowShell {
		r.renderFinal()
		return
	}

	e.Cur.RenderFx = entity.FxNone
	r.renderFinal()

	r.chrome = true
	r.raster.SetChrome(true)
	e.Cur.RenderFx = entity.FxGlowShell
	r.renderFinal()

	r.chrome = false
	r.raster.SetChrome(false)
}

func (r *Renderer) renderMode() entity.RenderMode {
	if r.chrome {
		return entity.RenderTransAdd
	}
	if !r.path.Hardware() {
		return entity.RenderNormal
	}
	return r.cur.Cur.RenderMode
}

func (r *Renderer) renderFinal() {
	e, m := r.cur, r.model
	mode := r.renderMode()
	hardware := r.path.Hardware()

	// Volumes go in before the model geometry.
	if hardware && r.shadows != nil && r.shadows.Enabled() && mode == entity.RenderNormal && !r.isViewModel(e) {
		r.shadows.Cast(e, m, &r.bones, r.frame.View.Origin)
	}

	r.raster.SetupRenderer(mode)

	switch r.opts.DrawEntities {
	case 2:
		r.raster.DrawBones(m, &r.bones)
	case 3:
		r.raster.DrawHulls(e, m, &r.bones, false)
	default:
		for i := range m.BodyParts {
			sub := m.BodyParts[i].SubModelIndex(e.Cur.Body)
			if hardware {
				if r.interp {
					// Interpolation invalidates the bounding box.
					e.TrivialAccept = false
				}
				if r.isViewModel(e) && r.opts.ViewModelFOV != 0 {
					r.setViewModelProjection()
				}
			}
			r.raster.DrawSubModel(e, m, i, sub, &r.bones)
		}
	}

	switch r.opts.DrawEntities {
	case 4:
		r.raster.DrawHulls(e, m, &r.bones, true)
	case 5:
		r.raster.DrawAbsBBox(e, m)
	}

	r.raster.RestoreRenderer()
}
