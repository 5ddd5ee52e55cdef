package skeleton

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

func bones(names ...string) []studio.Bone {
	out := make([]studio.Bone, len(names))
	for i, n := range names {
		out[i] = studio.Bone{Name: n, Parent: int32(i) - 1}
	}
	return out
}

func pose(n int) *anim.Pose {
	p := anim.NewPose(n)
	for i := 0; i < n; i++ {
		p.Pos[i] = math.Vec3{float32(i + 1), 0, 0}
		p.Q[i] = math.AngleQuaternion(math.Vec3{0, 0, 0.3 * float32(i+1)})
	}
	return p
}

func hardwareRoot(origin math.Vec3) Root {
	sp := &Space{}
	HardwarePath{}.Prepare(sp, math.AngleMatrix(math.Vec3{0, 90, 0}), origin, nil, false)
	return Root{Space: sp, Path: HardwarePath{}}
}

func matNear(a, b math.Mat34) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			if gomath.Abs(float64(a[i][j]-b[i][j])) > 0.0001 {
				return false
			}
		}
	}
	return true
}

func TestComposeRootIgnoresSiblings(t *testing.T) {
	bs := []studio.Bone{
		{Name: "root", Parent: -1},
		{Name: "a", Parent: 0},
		{Name: "b", Parent: 0},
	}
	root := hardwareRoot(math.Vec3{10, 0, 0})

	p1 := pose(3)
	p2 := pose(3)
	p2.Pos[1] = math.Vec3{99, 99, 99}
	p2.Q[2] = math.AngleQuaternion(math.Vec3{1, 1, 1})

	t1, t2 := NewTransforms(3), NewTransforms(3)
	Compose(t1, bs, p1, root)
	Compose(t2, bs, p2, root)

	if t1.Bone[0] != t2.Bone[0] {
		t.Errorf("root transform changed with sibling pose: %v vs %v", t1.Bone[0], t2.Bone[0])
	}
	if t1.Bone[1] == t2.Bone[1] {
		t.Error("child transform should follow its own pose")
	}
}

func TestComposeChildConcatenatesParent(t *testing.T) {
	bs := bones("root", "child", "grandchild")
	p := pose(3)
	root := hardwareRoot(math.Vec3{0, 5, 0})

	tr := NewTransforms(0)
	Compose(tr, bs, p, root)

	for i := 1; i < 3; i++ {
		want := tr.Bone[i-1].Concat(Local(p, i))
		if !matNear(tr.Bone[i], want) {
			t.Errorf("bone %d = %v, want parent * local = %v", i, tr.Bone[i], want)
		}
		if tr.Light[i] != tr.Bone[i] {
			t.Errorf("hardware light transform %d should equal bone transform", i)
		}
	}

	pt := math.Vec3{1, 2, 3}
	got := tr.Bone[2].TransformPoint(pt)
	want := tr.Bone[0].TransformPoint(Local(p, 1).TransformPoint(Local(p, 2).TransformPoint(pt)))
	if got.Sub(want).Length() > 0.001 {
		t.Errorf("grandchild point = %v, want %v", got, want)
	}
}

func TestComposeMirror(t *testing.T) {
	bs := bones("root")
	p := pose(1)
	sp := &Space{}
	HardwarePath{}.Prepare(sp, math.Identity34(), math.Vec3{}, nil, false)

	plain, mirrored := NewTransforms(1), NewTransforms(1)
	Compose(plain, bs, p, Root{Space: sp, Path: HardwarePath{}})
	Compose(mirrored, bs, p, Root{Space: sp, Path: HardwarePath{}, Mirror: true})

	for j := 0; j < 4; j++ {
		if mirrored.Bone[0][1][j] != -plain.Bone[0][1][j] {
			t.Errorf("mirrored row 1 col %d = %v, want %v", j, mirrored.Bone[0][1][j], -plain.Bone[0][1][j])
		}
		if mirrored.Bone[0][0][j] != plain.Bone[0][0][j] {
			t.Errorf("row 0 should not change")
		}
	}
}

func TestSoftwarePath(t *testing.T) {
	view := &View{
		Origin: math.Vec3{0, 0, 0},
		Right:  math.Vec3{0, -1, 0},
		Up:     math.Vec3{0, 0, 1},
		Normal: math.Vec3{1, 0, 0},
		XScale: 1,
		YScale: 1,
	}
	sp := &Space{}
	rot := math.AngleMatrix(math.Vec3{0, 30, 0})
	SoftwarePath{}.Prepare(sp, rot, math.Vec3{100, 0, 0}, view, false)

	if sp.Rotation.Origin() != (math.Vec3{100, 0, 0}) {
		t.Errorf("rotation origin = %v", sp.Rotation.Origin())
	}
	// The model origin sits 100 units down the view normal.
	if got := sp.Alias.Origin(); got.Sub(math.Vec3{0, 0, 100}).Length() > 0.001 {
		t.Errorf("alias origin = %v, want (0, 0, 100)", got)
	}

	local := Local(pose(1), 0)
	bone, light := SoftwarePath{}.Root(sp, local)
	if !matNear(light, sp.Rotation.Concat(local)) {
		t.Error("software light transform should be rotation * local")
	}
	if !matNear(bone, sp.Alias.Concat(local)) {
		t.Error("software bone transform should be alias * local")
	}

	SoftwarePath{}.Prepare(sp, rot, math.Vec3{100, 0, 0}, view, true)
	if got := sp.Alias[2][3]; gomath.Abs(float64(got-100/zScale)) > 1e-12 {
		t.Errorf("trivially accepted alias depth = %v, want scaled", got)
	}
}

func TestSelectPath(t *testing.T) {
	if !SelectPath(true).Hardware() || SelectPath(false).Hardware() {
		t.Error("SelectPath should honour the capability flag")
	}
}

type fakeRandom struct {
	ints   []int
	floats []float32
}

func (f *fakeRandom) Int(lo, hi int) int {
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v
}

func (f *fakeRandom) Float(lo, hi float32) float32 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func TestFxTransform(t *testing.T) {
	base := math.Mat34{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}

	t.Run("explode caps at double", func(t *testing.T) {
		m := base
		FxTransform{Fx: entity.FxExplode, Now: 5, AnimTime: 1}.Apply(&m)
		if m[0][1] != 4 || m[1][1] != 12 || m[2][1] != 20 || m[0][0] != 1 {
			t.Errorf("explode = %v", m)
		}
	})

	t.Run("explode grows", func(t *testing.T) {
		m := base
		FxTransform{Fx: entity.FxExplode, Now: 1.05, AnimTime: 1}.Apply(&m)
		if gomath.Abs(float64(m[0][1]-3)) > 0.0001 {
			t.Errorf("explode column = %v, want 3", m[0][1])
		}
	})

	t.Run("hologram stretches Z row", func(t *testing.T) {
		m := base
		r := &fakeRandom{ints: []int{0, 1}, floats: []float32{1.25}}
		FxTransform{Fx: entity.FxHologram, Rand: r}.Apply(&m)
		if m[2] != [4]float32{11.25, 12.5, 13.75, 12} || m[0] != base[0] {
			t.Errorf("hologram = %v", m)
		}
	})

	t.Run("distort jolts translation", func(t *testing.T) {
		m := base
		r := &fakeRandom{ints: []int{7, 0, 0, 1}, floats: []float32{-3}}
		FxTransform{Fx: entity.FxDistort, Rand: r}.Apply(&m)
		if m[1][3] != 5 {
			t.Errorf("distort translation = %v, want 5", m[1][3])
		}
	})

	t.Run("distort mostly idle", func(t *testing.T) {
		m := base
		r := &fakeRandom{ints: []int{3, 9}}
		FxTransform{Fx: entity.FxDistort, Rand: r}.Apply(&m)
		if m != base {
			t.Errorf("distort should not change the transform, got %v", m)
		}
	})

	t.Run("none", func(t *testing.T) {
		m := base
		FxTransform{Fx: entity.FxNone}.Apply(&m)
		if m != base {
			t.Error("no effect should leave the transform alone")
		}
	})
}

func TestNewRandomBounds(t *testing.T) {
	r := NewRandom(42)
	for i := 0; i < 1000; i++ {
		if v := r.Int(0, 2); v < 0 || v > 2 {
			t.Fatalf("Int(0, 2) = %d", v)
		}
		if v := r.Float(-10, 10); v < -10 || v > 10 {
			t.Fatalf("Float(-10, 10) = %v", v)
		}
	}
}
