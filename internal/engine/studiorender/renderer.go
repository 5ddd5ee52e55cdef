package studiorender

import (
	"go.uber.org/zap"

	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// bindSequence poses models that carry no sequences.
var bindSequence = studio.Sequence{Label: "bind", FPS: 1, NumFrames: 1}

// Renderer draws studio models. It owns the scratch state of one draw and
// must only be used from the render goroutine.
type Renderer struct {
	host    Host
	raster  Rasterizer
	ents    *entity.Manager
	shadows ShadowCaster
	path    skeleton.Path
	rand    skeleton.Random
	opts    Options

	blender *anim.Blender
	space   skeleton.Space
	bones   skeleton.Transforms
	cache   skeleton.Cache

	// Per draw.
	frame        Frame
	cur          *entity.Entity
	model        *studio.Model
	player       *entity.PlayerInfo
	frozen       studio.Sequence
	interp       bool
	chrome       bool
	gaitMovement float32

	precache bool
	stats    Stats
}

// Config bundles the collaborators of a Renderer.
type Config struct {
	Host     Host
	Raster   Rasterizer
	Entities *entity.Manager
	Shadows  ShadowCaster // nil disables shadows
	Hardware bool
	Random   skeleton.Random // nil seeds a default source
	Options  Options
}

// New creates a renderer. The transform path is fixed for its lifetime.
func New(cfg Config) *Renderer {
	rnd := cfg.Random
	if rnd == nil {
		rnd = skeleton.NewRandom(1)
	}
	r := &Renderer{
		host:    cfg.Host,
		raster:  cfg.Raster,
		ents:    cfg.Entities,
		shadows: cfg.Shadows,
		path:    skeleton.SelectPath(cfg.Hardware),
		rand:    rnd,
		opts:    cfg.Options,
		blender: anim.NewBlender(),
	}
	logger.Debug("studio renderer created",
		zap.Bool("hardware", cfg.Hardware),
		zap.Bool("shadows", cfg.Shadows != nil))
	return r
}

// SetOptions replaces the tunables.
func (r *Renderer) SetOptions(o Options) {
	r.opts = o
}

// Options returns the current tunables.
func (r *Renderer) Options() Options {
	return r.opts
}

// RequestPrecache builds shadow data for every host model on the next draw.
func (r *Renderer) RequestPrecache() {
	r.precache = true
}

// Stats returns the draw counters.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ResetStats clears the draw counters.
func (r *Renderer) ResetStats() {
	r.stats = Stats{}
}

// Bones returns the transforms of the last draw. They are overwritten by the
// next draw.
func (r *Renderer) Bones() *skeleton.Transforms {
	return &r.bones
}

func (r *Renderer) begin(e *entity.Entity) {
	r.cur = e
	r.frame = r.host.Frame()
	r.interp = r.opts.Interpolate
	r.player = nil
}

// DrawModel draws a non-player entity. It reports whether anything was drawn.
func (r *Renderer) DrawModel(e *entity.Entity, flags Flags) bool {
	if r.precache {
		r.precache = false
		r.precacheShadows()
	}

	r.begin(e)

	if e.Cur.RenderFx == entity.FxDeadPlayer {
		return r.drawDeadPlayer(e, flags)
	}

	m := r.host.Model(e.Model)
	if m == nil {
		return false
	}
	r.model = m

	r.setUpTransform()

	if flags&FlagRender != 0 {
		if !r.host.CheckBBox(e, m) {
			return false
		}
		r.stats.ModelsDrawn++
		if len(m.BodyParts) == 0 {
			return true
		}
	}

	if e.Cur.MoveType == entity.MoveFollow {
		r.mergeBones(m)
	} else {
		r.setupBones()
	}
	r.saveBones()

	if flags&FlagEvents != 0 {
		r.calcAttachments()
	}

	if flags&FlagRender != 0 {
		r.host.SetRemapColors(entity.ColorMap(e.Cur.ColorMap))
		r.renderModel()
	}
	return true
}

// drawDeadPlayer draws a corpse as the player in the slot named by its render
// amount, without movement, weapon or interpolation.
func (r *Renderer) drawDeadPlayer(e *entity.Entity, flags Flags) bool {
	slot := int(e.Cur.RenderAmt)
	if slot <= 0 || slot > r.ents.MaxClients() {
		return false
	}

	dead := *r.ents.PlayerState(slot - 1)
	dead.Number = slot
	dead.WeaponModel = 0
	dead.GaitSequence = 0
	dead.MoveType = entity.MoveNone
	dead.Angles = e.Cur.Angles
	dead.Origin = e.Cur.Origin

	r.interp = false
	return r.drawPlayer(e, flags, &dead)
}

// DrawPlayer draws e as the player described by state.
func (r *Renderer) DrawPlayer(e *entity.Entity, flags Flags, state *entity.State) bool {
	r.begin(e)
	return r.drawPlayer(e, flags, state)
}

func (r *Renderer) drawPlayer(e *entity.Entity, flags Flags, state *entity.State) bool {
	slot := state.Number - 1
	if slot < 0 || slot >= r.ents.MaxClients() {
		return false
	}

	m := r.host.PlayerModel(slot)
	if m == nil {
		return false
	}
	r.model = m
	info := r.ents.PlayerInfo(slot)

	if state.GaitSequence != 0 {
		angles := e.Angles

		r.player = info
		r.processGait(state)
		info.GaitSequence = state.GaitSequence
		r.player = nil

		r.setUpTransform()
		e.Angles = angles
	} else {
		for i := range e.Cur.Controller {
			e.Cur.Controller[i] = 127
			e.Latched.PrevController[i] = 127
		}
		info.GaitSequence = 0

		r.setUpTransform()
	}

	if flags&FlagRender != 0 {
		if !r.host.CheckBBox(e, m) {
			return false
		}
		r.stats.ModelsDrawn++
		r.stats.Players++
		if len(m.BodyParts) == 0 {
			return true
		}
	}

	r.player = info
	r.setupBones()
	r.saveBones()
	info.RenderFrame = r.frame.Count
	r.player = nil

	if flags&FlagEvents != 0 {
		r.calcAttachments()
	}

	if flags&FlagRender != 0 {
		own := r.host.Model(e.Model)
		if r.opts.HiModels && m != own {
			// Highest resolution multiplayer body.
			e.Cur.Body = 255
		}
		if !(r.opts.Developer == 0 && r.ents.MaxClients() == 1) && m == own {
			// Force helmet.
			e.Cur.Body = 1
		}

		r.player = info
		r.host.SetRemapColors(info.RemapColors())
		r.renderModel()
		r.player = nil

		if state.WeaponModel != 0 {
			r.drawWeapon(e, state.WeaponModel)
		}
	}
	return true
}

// drawWeapon draws the weapon model of a player onto the skeleton that was
// just drawn. The entity is restored afterwards.
func (r *Renderer) drawWeapon(e *entity.Entity, index int) {
	w := r.host.Model(index)
	if w == nil {
		return
	}
	saved := *e
	body := r.model

	r.model = w
	r.mergeBones(w)
	r.renderModel()
	r.calcAttachments()
	r.stats.Merged++

	*e = saved
	r.model = body
}

func (r *Renderer) setUpTransform() {
	rotation, pos := skeleton.SetUpTransform(r.cur, r.frame.Now, r.interp)
	r.path.Prepare(&r.space, rotation, pos, &r.frame.View, false)
}

func (r *Renderer) root() skeleton.Root {
	e := r.cur
	return skeleton.Root{
		Space:  &r.space,
		Path:   r.path,
		Mirror: r.isViewModel(e) && r.path.Hardware() && r.opts.RightHand,
		Fx: skeleton.FxTransform{
			Fx:       e.Cur.RenderFx,
			Now:      r.frame.Now,
			AnimTime: e.Cur.AnimTime,
			Rand:     r.rand,
		},
	}
}

func (r *Renderer) controls(dadt float32) anim.Controls {
	e := r.cur
	return anim.Controls{
		Current:  e.Cur.Controller,
		Previous: e.Latched.PrevController,
		Mouth:    e.MouthOpen,
		Dadt:     dadt,
	}
}

// sequence bounds the entity sequence to m and returns its descriptor.
func (r *Renderer) sequence(m *studio.Model) *studio.Sequence {
	e := r.cur
	if e.Cur.Sequence < 0 || e.Cur.Sequence >= len(m.Sequences) {
		e.Cur.Sequence = 0
	}
	if seq := m.Sequence(e.Cur.Sequence); seq != nil {
		return seq
	}
	return &bindSequence
}

func blendWeight(cur, prev uint8, dadt float32) float32 {
	return (float32(cur)*dadt + float32(prev)*(1-dadt)) / 255
}

// setupBones evaluates the full pose of the current entity and composes it.
func (r *Renderer) setupBones() {
	e, m := r.cur, r.model
	now := r.frame.Now

	seq := r.sequence(m)

	if r.player != nil && !r.opts.PlayerGait {
		r.player.GaitSequence = 0
		r.player.GaitFrame = 0
	}

	if r.isViewModel(e) {
		seq = r.freezeViewModel(seq)
	}

	f := anim.EstimateFrame(seq, e.Cur.Frame, e.Cur.FrameRate, e.Cur.AnimTime, now, r.interp)
	dadt := anim.EstimateInterpolant(now, e.Cur.AnimTime, e.Latched.PrevAnimTime, r.interp)

	req := anim.Request{
		Model:    m,
		Sequence: seq,
		Frame:    f,
		Weights: [2]float32{
			blendWeight(e.Cur.Blending[0], e.Latched.PrevBlending[0], dadt),
			blendWeight(e.Cur.Blending[1], e.Latched.PrevBlending[1], dadt),
		},
		Controls: r.controls(dadt),
	}

	l := &e.Latched
	var transition anim.Transition
	if r.interp && l.SequenceTime != 0 && l.SequenceTime+anim.TransitionWindow > now && l.PrevSequence < len(m.Sequences) {
		if l.PrevSequence < 0 {
			l.PrevSequence = 0
		}
		transition = anim.Transition{
			Sequence: m.Sequence(l.PrevSequence),
			Frame:    l.PrevFrame,
			Weights: [2]float32{
				float32(l.PrevSeqBlending[0]) / 255,
				float32(l.PrevSeqBlending[1]) / 255,
			},
			Amount: float32(1 - (now-l.SequenceTime)/anim.TransitionWindow),
		}
		req.Transition = &transition
	} else {
		l.PrevFrame = f
	}

	var gait anim.Gait
	if p := r.player; p != nil {
		if p.GaitSequence >= len(m.Sequences) || p.GaitSequence < 0 {
			p.GaitSequence = 0
		}
		if p.GaitSequence != 0 {
			gait = anim.Gait{Sequence: m.Sequence(p.GaitSequence), Frame: p.GaitFrame}
			req.Gait = &gait
		}
	}

	pose := r.blender.Pose(&req)
	skeleton.Compose(&r.bones, m.Bones, pose, r.root())
}

// mergeBones poses an attached model: bones shared by name with the last
// saved skeleton are copied, its own bones follow its current sequence.
func (r *Renderer) mergeBones(m *studio.Model) {
	e := r.cur
	seq := r.sequence(m)

	f := anim.EstimateFrame(seq, e.Cur.Frame, e.Cur.FrameRate, e.Cur.AnimTime, r.frame.Now, r.interp)
	dadt := anim.EstimateInterpolant(r.frame.Now, e.Cur.AnimTime, e.Latched.PrevAnimTime, r.interp)

	pose := r.blender.Single(m, seq, f, r.controls(dadt))
	r.cache.Merge(&r.bones, m.Bones, pose, r.root())
}

func (r *Renderer) saveBones() {
	r.cache.Save(r.model.Bones, &r.bones)
}

// calcAttachments places the attachment points of the current model.
func (r *Renderer) calcAttachments() {
	e, m := r.cur, r.model
	if len(m.Attachments) > studio.MaxAttachments {
		logger.Fatal("too many attachments", zap.String("model", m.Path), zap.Int("count", len(m.Attachments)))
	}

	adjust := r.isViewModel(e) && r.adjustViewModelAttachments()
	for i := range m.Attachments {
		a := &m.Attachments[i]
		e.Attachments[i] = r.bones.Light[a.Bone].TransformPoint(a.Origin)
		if adjust {
			e.Attachments[i] = AdjustViewModelPoint(e.Attachments[i], &r.frame.View, r.frame.FOV, r.opts.ViewModelFOV)
		}
	}
}

func (r *Renderer) precacheShadows() {
	if r.shadows == nil {
		return
	}
	var models []*studio.Model
	for i := 1; ; i++ {
		m := r.host.Model(i)
		if m == nil {
			break
		}
		models = append(models, m)
	}
	r.shadows.Precache(models)
}
