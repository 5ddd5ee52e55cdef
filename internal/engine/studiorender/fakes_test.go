package studiorender

import (
	"fmt"
	"testing"

	"github.com/Faultbox/studiorender/internal/engine/skeleton"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/internal/logger"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
	"github.com/Faultbox/studiorender/pkg/studio/studiotest"
)

func init() {
	logger.Nop()
}

type fakeHost struct {
	frame   Frame
	models  map[int]*studio.Model
	players map[int]*studio.Model
	visible bool
	top     int
	bottom  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		frame: Frame{
			Count:  1,
			Now:    10,
			Prev:   9.9,
			FOV:    90,
			Width:  640,
			Height: 480,
			View: skeleton.View{
				Origin: math.Vec3{-100, 0, 0},
				Right:  math.Vec3{0, -1, 0},
				Up:     math.Vec3{0, 0, 1},
				Normal: math.Vec3{1, 0, 0},
				XScale: 1,
				YScale: 1,
			},
		},
		models:  make(map[int]*studio.Model),
		players: make(map[int]*studio.Model),
		visible: true,
	}
}

func (h *fakeHost) Frame() Frame                    { return h.frame }
func (h *fakeHost) Model(i int) *studio.Model       { return h.models[i] }
func (h *fakeHost) PlayerModel(s int) *studio.Model { return h.players[s] }
func (h *fakeHost) SetRemapColors(top, bottom int)  { h.top, h.bottom = top, bottom }

func (h *fakeHost) CheckBBox(*entity.Entity, *studio.Model) bool {
	return h.visible
}

// fakeRaster records submissions as short strings.
type fakeRaster struct {
	calls      []string
	projection *math.Mat4
}

func (f *fakeRaster) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeRaster) SetupRenderer(mode entity.RenderMode) { f.record("setup %d", mode) }
func (f *fakeRaster) RestoreRenderer()                     { f.record("restore") }
func (f *fakeRaster) SetChrome(on bool)                    { f.record("chrome %v", on) }

func (f *fakeRaster) SetProjection(p math.Mat4) {
	f.projection = &p
	f.record("projection")
}

func (f *fakeRaster) DrawSubModel(e *entity.Entity, m *studio.Model, part, sub int, t *skeleton.Transforms) {
	f.record("draw %s %d/%d", m.Header.Name, part, sub)
}

func (f *fakeRaster) DrawBones(m *studio.Model, t *skeleton.Transforms) { f.record("bones") }

func (f *fakeRaster) DrawHulls(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, additive bool) {
	f.record("hulls %v", additive)
}

func (f *fakeRaster) DrawAbsBBox(e *entity.Entity, m *studio.Model) { f.record("bbox") }

func (f *fakeRaster) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

type fakeShadows struct {
	enabled   bool
	casts     []*entity.Entity
	precached []*studio.Model
}

func (f *fakeShadows) Enabled() bool { return f.enabled }

func (f *fakeShadows) Cast(e *entity.Entity, m *studio.Model, t *skeleton.Transforms, viewOrigin math.Vec3) {
	f.casts = append(f.casts, e)
}

func (f *fakeShadows) Precache(models []*studio.Model) {
	f.precached = append(f.precached, models...)
}

func quad() studiotest.SubModel {
	return studiotest.SubModel{
		Name:        "body",
		Vertices:    []math.Vec3{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {10, 10, 0}},
		VertexBones: []uint8{0, 0, 1, 1},
		Meshes:      [][]studio.TriCommand{{studiotest.Strip(0, 1, 2, 3)}},
	}
}

func rampChannel(values ...int16) studiotest.Channel {
	return studiotest.Channel{{Total: len(values), Values: values}}
}

// playerModel has a spine, one leg bone, and idle, shoot and walk sequences.
func playerModel(t *testing.T) *studio.Model {
	b := &studiotest.Builder{
		Name: "player",
		Bones: []studio.Bone{
			studiotest.RootBone("Bip01"),
			studiotest.ChildBone("Bip01 Spine", 0),
			studiotest.ChildBone("Bip01 L Leg", 0),
		},
		Sequences: []studiotest.Sequence{
			{Sequence: studio.Sequence{Label: "idle", FPS: 10, NumFrames: 10, Flags: studio.FlagLooping}},
			{
				Sequence: studio.Sequence{Label: "shoot", FPS: 10, NumFrames: 5},
				Blends: [][]studiotest.BoneAnim{{
					{},
					{0: rampChannel(0, 1, 2, 3, 4)},
				}},
			},
			{
				Sequence: studio.Sequence{Label: "walk", FPS: 20, NumFrames: 20, Flags: studio.FlagLooping,
					LinearMovement: math.Vec3{40, 0, 0}},
				Blends: [][]studiotest.BoneAnim{{
					{},
					{},
					{5: rampChannel(0, 10, 20, 30)},
				}},
			},
		},
		BodyParts: []studiotest.BodyPart{
			{Name: "body", Base: 1, Models: []studiotest.SubModel{quad()}},
			{Name: "head", Base: 1, Models: []studiotest.SubModel{quad(), quad()}},
		},
		Attachments: []studio.Attachment{{Name: "muzzle", Bone: 1, Origin: math.Vec3{0, 0, 8}}},
	}
	return b.Model(t)
}

// weaponModel shares its root bone with the player skeleton under a lower case name.
func weaponModel(t *testing.T) *studio.Model {
	barrel := studiotest.ChildBone("barrel", 0)
	barrel.Value[0] = 12
	b := &studiotest.Builder{
		Name: "weapon",
		Bones: []studio.Bone{
			studiotest.RootBone("bip01"),
			barrel,
		},
		Sequences: []studiotest.Sequence{
			{Sequence: studio.Sequence{Label: "idle", FPS: 10, NumFrames: 1}},
		},
		BodyParts: []studiotest.BodyPart{
			{Name: "gun", Base: 1, Models: []studiotest.SubModel{quad()}},
		},
	}
	return b.Model(t)
}

type fixture struct {
	host    *fakeHost
	raster  *fakeRaster
	shadows *fakeShadows
	ents    *entity.Manager
	r       *Renderer
	player  *studio.Model
	weapon  *studio.Model
}

const (
	playerIndex = 1
	weaponIndex = 2
)

func newFixture(t *testing.T, opts Options) *fixture {
	f := &fixture{
		host:    newFakeHost(),
		raster:  &fakeRaster{},
		shadows: &fakeShadows{enabled: true},
		ents:    entity.NewManager(4),
		player:  playerModel(t),
		weapon:  weaponModel(t),
	}
	f.host.models[playerIndex] = f.player
	f.host.models[weaponIndex] = f.weapon
	f.host.players[0] = f.player

	f.r = New(Config{
		Host:     f.host,
		Raster:   f.raster,
		Entities: f.ents,
		Shadows:  f.shadows,
		Hardware: true,
		Options:  opts,
	})
	return f
}

func (f *fixture) entity(index int) *entity.Entity {
	e := entity.NewEntity(index, playerIndex, math.Vec3{0, 0, 0})
	e.Cur.AnimTime = f.host.frame.Now
	f.ents.Add(e)
	return e
}
