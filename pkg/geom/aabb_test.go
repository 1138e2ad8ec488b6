package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEmptyAABB(t *testing.T) {
	b := EmptyAABB()
	if b.IsValid() {
		t.Error("empty box should be invalid")
	}

	b.AddPoint(mgl32.Vec3{1, 2, 3})
	if !b.IsValid() {
		t.Fatal("box with one point should be valid")
	}
	if b.Min != b.Max {
		t.Errorf("single point box: min %v != max %v", b.Min, b.Max)
	}
}

func TestMergeIgnoresInvalid(t *testing.T) {
	b := NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	b.Merge(EmptyAABB())

	if b.Min != (mgl32.Vec3{0, 0, 0}) || b.Max != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("merge with invalid box changed bounds: %v", b)
	}

	b.Merge(NewAABB(mgl32.Vec3{-1, 2, 0}, mgl32.Vec3{0, 3, 0}))
	if b.Min != (mgl32.Vec3{-1, 0, 0}) || b.Max != (mgl32.Vec3{1, 3, 1}) {
		t.Errorf("merge: got %v", b)
	}
}

func TestTransformTranslate(t *testing.T) {
	b := NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	got := b.Transform(mgl32.Translate3D(10, 20, 30))

	if got.Min != (mgl32.Vec3{9, 19, 29}) || got.Max != (mgl32.Vec3{11, 21, 31}) {
		t.Errorf("translate: got %v", got)
	}
}

func TestTransformMatchesCorners(t *testing.T) {
	b := NewAABB(mgl32.Vec3{-1, 0, -2}, mgl32.Vec3{2, 1, 3})
	m := mgl32.Translate3D(5, -1, 2).
		Mul4(mgl32.HomogRotate3DY(float32(math.Pi / 5))).
		Mul4(mgl32.Scale3D(2, 1, 0.5))

	want := EmptyAABB()
	for _, c := range b.Corners() {
		want.AddPoint(TransformPoint(m, c))
	}
	got := b.Transform(m)

	if !got.Min.ApproxEqualThreshold(want.Min, 1e-4) || !got.Max.ApproxEqualThreshold(want.Max, 1e-4) {
		t.Errorf("transform: got %v, want %v", got, want)
	}
}

func TestCenter(t *testing.T) {
	b := NewAABB(mgl32.Vec3{2, 4, 6}, mgl32.Vec3{0, 0, 0})
	if c := b.Center(); c != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("center: got %v, want (1, 2, 3)", c)
	}
	if s := b.Size(); s != (mgl32.Vec3{2, 4, 6}) {
		t.Errorf("size: got %v, want (2, 4, 6)", s)
	}
}

func TestRotateDirIgnoresTranslation(t *testing.T) {
	m := mgl32.Translate3D(100, 100, 100).Mul4(mgl32.HomogRotate3DY(float32(math.Pi / 2)))
	got := RotateDir(m, mgl32.Vec3{0, 0, -1})

	// After 90 degree Y rotation, -Z becomes -X
	if !got.ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5) {
		t.Errorf("RotateDir: got %v, want (-1, 0, 0)", got)
	}
}

func TestNormalizeSafe(t *testing.T) {
	fallback := mgl32.Vec3{0, 1, 0}
	if got := NormalizeSafe(mgl32.Vec3{}, fallback); got != fallback {
		t.Errorf("zero vector: got %v, want fallback", got)
	}
	if got := NormalizeSafe(mgl32.Vec3{3, 0, 0}, fallback); got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("normalize: got %v", got)
	}
}
