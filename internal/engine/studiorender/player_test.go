package studiorender

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
)

func TestDrawPlayerWithoutGait(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	e := f.entity(1)
	e.Cur.Controller = [4]uint8{1, 2, 3, 4}
	info := f.ents.PlayerInfo(0)
	info.GaitSequence = 2
	info.TopColor, info.BottomColor = 300, -4

	state := &entity.State{Number: 1}
	if !f.r.DrawPlayer(e, FlagRender, state) {
		t.Fatal("DrawPlayer() = false")
	}

	for i, c := range e.Cur.Controller {
		if c != 127 || e.Latched.PrevController[i] != 127 {
			t.Errorf("controller %d = %d/%d, want centered", i, c, e.Latched.PrevController[i])
		}
	}
	if info.GaitSequence != 0 {
		t.Errorf("gait sequence = %d, want cleared", info.GaitSequence)
	}
	if info.RenderFrame != f.host.frame.Count {
		t.Errorf("render frame = %d, want %d", info.RenderFrame, f.host.frame.Count)
	}
	if f.host.top != 254 || f.host.bottom != 0 {
		t.Errorf("remap colors = (%d, %d), want clamped (254, 0)", f.host.top, f.host.bottom)
	}
	if s := f.r.Stats(); s.Players != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDrawPlayerSlotBounds(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	e := f.entity(1)
	for _, n := range []int{0, 5, -1} {
		if f.r.DrawPlayer(e, FlagRender, &entity.State{Number: n}) {
			t.Errorf("player number %d should not draw", n)
		}
	}

	// Slot 1 has no model.
	if f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 2}) {
		t.Error("player without a model should not draw")
	}
}

func TestDrawPlayerWeapon(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	e := f.entity(1)

	f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1})
	root := f.r.Bones().Bone[0]
	before := *e

	f.raster.calls = nil
	f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1, WeaponModel: weaponIndex})

	if f.raster.count("draw weapon 0/0") != 1 {
		t.Errorf("calls = %v, want the weapon drawn", f.raster.calls)
	}
	if f.r.Stats().Merged != 1 {
		t.Errorf("merged = %d, want 1", f.r.Stats().Merged)
	}
	if f.r.Bones().Bone[0] != root {
		t.Error("weapon root should take the body's root bone regardless of case")
	}
	if e.Cur != before.Cur || e.Angles != before.Angles {
		t.Error("drawing the weapon should leave the entity unchanged")
	}
}

func TestBodyOverrides(t *testing.T) {
	t.Run("helmet", func(t *testing.T) {
		f := newFixture(t, DefaultOptions())
		e := f.entity(1)
		f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1})
		if e.Cur.Body != 1 {
			t.Errorf("body = %d, want helmet", e.Cur.Body)
		}
	})

	t.Run("single player", func(t *testing.T) {
		f := newFixture(t, DefaultOptions())
		f.ents = entity.NewManager(1)
		f.r = New(Config{Host: f.host, Raster: f.raster, Entities: f.ents, Hardware: true, Options: DefaultOptions()})
		e := f.entity(1)
		f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1})
		if e.Cur.Body != 0 {
			t.Errorf("body = %d, want untouched", e.Cur.Body)
		}
	})

	t.Run("hi models", func(t *testing.T) {
		opts := DefaultOptions()
		opts.HiModels = true
		f := newFixture(t, opts)
		e := f.entity(1)
		e.Model = weaponIndex
		f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1})
		if e.Cur.Body != 255 {
			t.Errorf("body = %d, want 255", e.Cur.Body)
		}
	})
}

func TestDeadPlayer(t *testing.T) {
	tests := []struct {
		name   string
		amount int32
		want   bool
	}{
		{"no slot", 0, false},
		{"past max clients", 5, false},
		{"first slot", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, DefaultOptions())
			snap := f.ents.PlayerState(0)
			snap.WeaponModel = weaponIndex
			snap.GaitSequence = 2

			corpse := f.entity(30)
			corpse.Cur.RenderFx = entity.FxDeadPlayer
			corpse.Cur.RenderAmt = tt.amount

			if got := f.r.DrawModel(corpse, FlagRender); got != tt.want {
				t.Fatalf("DrawModel() = %v, want %v", got, tt.want)
			}
			if !tt.want {
				return
			}
			if f.r.Stats().Merged != 0 {
				t.Error("corpse should be drawn without its weapon")
			}
			if f.ents.PlayerInfo(0).GaitSequence != 0 {
				t.Error("corpse should be drawn without gait")
			}
			if snap.WeaponModel != weaponIndex {
				t.Error("the player snapshot must not be modified")
			}
		})
	}
}

func TestGaitYawStaysFolded(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	e := f.entity(1)
	info := f.ents.PlayerInfo(0)
	state := &entity.State{Number: 1, GaitSequence: 2}

	for i := 0; i < 60; i++ {
		f.host.frame.Count++
		f.host.frame.Prev = f.host.frame.Now
		f.host.frame.Now += 0.1

		yaw := float32((i*137)%1440 - 720)
		e.Angles = math.Vec3{float32(i%30) - 15, yaw, 0}
		if i%3 != 0 {
			e.Origin = e.Origin.Add(math.Vec3{float32(i % 7), float32(i%5) - 2, 0})
		}

		f.r.DrawPlayer(e, FlagRender, state)

		if info.GaitYaw < -180 || info.GaitYaw > 180 {
			t.Fatalf("frame %d: gait yaw %v outside [-180, 180]", i, info.GaitYaw)
		}
		if info.GaitFrame < 0 || info.GaitFrame >= 20 {
			t.Fatalf("frame %d: gait frame %v outside [0, 20)", i, info.GaitFrame)
		}
		if e.Angles[math.Yaw] != yaw {
			t.Fatalf("frame %d: entity angles not restored", i)
		}
		c := e.Cur.Controller
		if c[0] != c[1] || c[1] != c[2] || c[2] != c[3] {
			t.Fatalf("frame %d: torso controllers differ: %v", i, c)
		}
	}
	if info.GaitSequence != 2 {
		t.Errorf("gait sequence = %d, want 2", info.GaitSequence)
	}
}

func TestGaitFromVelocity(t *testing.T) {
	opts := DefaultOptions()
	opts.GaitFromVelocity = true
	f := newFixture(t, opts)
	e := f.entity(1)
	info := f.ents.PlayerInfo(0)

	state := &entity.State{Number: 1, GaitSequence: 2, Velocity: math.Vec3{0, 100, 0}}
	f.r.DrawPlayer(e, FlagRender, state)

	if gomath.Abs(float64(info.GaitYaw-90)) > 0.001 {
		t.Errorf("gait yaw = %v, want 90", info.GaitYaw)
	}
	// 10 units moved over a 40 unit, 20 frame cycle.
	if gomath.Abs(info.GaitFrame-5) > 0.001 {
		t.Errorf("gait frame = %v, want 5", info.GaitFrame)
	}
}

func TestGaitStandingTurnsSlowly(t *testing.T) {
	f := newFixture(t, DefaultOptions())
	e := f.entity(1)
	e.Angles = math.Vec3{0, 90, 0}
	info := f.ents.PlayerInfo(0)
	state := &entity.State{Number: 1, GaitSequence: 2}

	f.r.DrawPlayer(e, FlagRender, state)
	// 90 degrees closed at dt*4 = 0.4 per frame.
	if gomath.Abs(float64(info.GaitYaw-36)) > 0.001 {
		t.Errorf("gait yaw = %v, want 36", info.GaitYaw)
	}
	if info.GaitFrame != 0 {
		t.Errorf("gait frame = %v, standing still should not advance a moving cycle", info.GaitFrame)
	}

	// Same host frame: no movement, no turn.
	f.r.DrawPlayer(e, FlagRender, state)
	if gomath.Abs(float64(info.GaitYaw-36)) > 0.001 {
		t.Errorf("gait yaw = %v after a repeated frame, want 36", info.GaitYaw)
	}
}

func TestGaitDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.PlayerGait = false
	f := newFixture(t, opts)
	e := f.entity(1)
	info := f.ents.PlayerInfo(0)
	info.GaitFrame = 7

	f.r.DrawPlayer(e, FlagRender, &entity.State{Number: 1, GaitSequence: 2})
	if info.GaitSequence != 0 || info.GaitFrame != 0 {
		t.Errorf("gait = (%d, %v), want cleared", info.GaitSequence, info.GaitFrame)
	}
}

func TestTorsoController(t *testing.T) {
	tests := []struct {
		yaw  float32
		want uint8
	}{
		{0, 127},
		{-120, 0},
		{120, 255},
		{-500, 0},
		{500, 255},
	}
	for _, tt := range tests {
		if got := torsoController(tt.yaw); got != tt.want {
			t.Errorf("torsoController(%v) = %d, want %d", tt.yaw, got, tt.want)
		}
	}
}
