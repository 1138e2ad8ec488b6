package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func placeCube(t *testing.T, s *Scene, parent *Node, x, y, z float32) (*Node, *ModelInstance) {
	t.Helper()
	n := mustTransformNode(t, s, parent)
	inst := NewModelInstance(unitCube())
	if err := s.AttachModel(n, inst); err != nil {
		t.Fatal(err)
	}
	if err := n.SetPose(translation(x, y, z)); err != nil {
		t.Fatal(err)
	}
	return n, inst
}

func TestCentroidTracksInstances(t *testing.T) {
	s, root := newTestScene(t)
	a, _ := placeCube(t, s, root, 2, 0, 0)
	placeCube(t, s, root, -2, 0, 0)
	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "centroid", s.Centroid(), mgl32.Vec3{})
	if s.CentroidCount() != 2 {
		t.Errorf("CentroidCount = %d, want 2", s.CentroidCount())
	}

	if err := a.SetPose(translation(4, 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyTransform(a); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "centroid after move", s.Centroid(), mgl32.Vec3{1, 1, 0})
	if s.CentroidCount() != 2 {
		t.Errorf("CentroidCount after move = %d, want 2", s.CentroidCount())
	}
}

func TestCentroidDoesNotDrift(t *testing.T) {
	s, root := newTestScene(t)
	a, _ := placeCube(t, s, root, 0, 0, 0)
	placeCube(t, s, root, 10, 10, 10)
	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		f := float32(i%17) * 0.37
		if err := a.SetPose(translation(f, -f, f*3)); err != nil {
			t.Fatal(err)
		}
		if err := s.ApplyTransform(a); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.SetPose(translation(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyTransform(a); err != nil {
		t.Fatal(err)
	}

	c := s.Centroid()
	for i := 0; i < 3; i++ {
		if math.Abs(float64(c[i])-5) > 1e-4 {
			t.Fatalf("centroid drifted to %v", c)
		}
	}
}

func TestDetachModelDropsContribution(t *testing.T) {
	s, root := newTestScene(t)
	_, inst := placeCube(t, s, root, 6, 0, 0)
	placeCube(t, s, root, 0, 0, 0)
	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}

	s.DetachModel(inst)
	if inst.Counted() {
		t.Error("detached instance still counted")
	}
	if s.CentroidCount() != 1 {
		t.Errorf("CentroidCount = %d, want 1", s.CentroidCount())
	}
	assertVec(t, "centroid", s.Centroid(), mgl32.Vec3{})
}

func TestInstanceBounds(t *testing.T) {
	s, root := newTestScene(t)
	_, inst := placeCube(t, s, root, 5, 0, 0)
	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}

	assertVec(t, "inst min", inst.BBox.Min, mgl32.Vec3{4, -1, -1})
	assertVec(t, "inst max", inst.BBox.Max, mgl32.Vec3{6, 1, 1})
	assertVec(t, "prim min", inst.Prims[0].BBox.Min, mgl32.Vec3{4, -1, -1})
	assertVec(t, "scene max", s.BBox().Max, mgl32.Vec3{6, 1, 1})
	assertVec(t, "instance center", inst.Center, mgl32.Vec3{5, 0, 0})
}

func TestSceneBoundsTightenOnFullSweep(t *testing.T) {
	s, root := newTestScene(t)
	a, _ := placeCube(t, s, root, 0, 0, 0)
	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}

	if err := a.SetPose(translation(10, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyTransform(a); err != nil {
		t.Fatal(err)
	}
	box := s.BBox()
	assertVec(t, "grown min", box.Min, mgl32.Vec3{-1, -1, -1})
	assertVec(t, "grown max", box.Max, mgl32.Vec3{11, 1, 1})

	if err := s.ApplyTransform(root); err != nil {
		t.Fatal(err)
	}
	box = s.BBox()
	assertVec(t, "tight min", box.Min, mgl32.Vec3{9, -1, -1})
	assertVec(t, "tight max", box.Max, mgl32.Vec3{11, 1, 1})
}

func TestRecomputeBoundsAfterRemoval(t *testing.T) {
	s, root := newTestScene(t)
	far, _ := placeCube(t, s, root, 20, 0, 0)
	placeCube(t, s, root, 0, 0, 0)
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveNode(far); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "max after removal", s.BBox().Max, mgl32.Vec3{1, 1, 1})
	if s.CentroidCount() != 1 {
		t.Errorf("CentroidCount = %d, want 1", s.CentroidCount())
	}
}
