package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posegraph/pkg/geom"
)

const eps = 1e-4

// fixedCamera is a camera with settable matrices and a change flag.
type fixedCamera struct {
	view, proj mgl32.Mat4
	changed    bool
}

func newFixedCamera() *fixedCamera {
	return &fixedCamera{
		view: mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		proj: mgl32.Perspective(mgl32.DegToRad(60), 4.0/3.0, 0.1, 100),
	}
}

func (c *fixedCamera) View() mgl32.Mat4       { return c.view }
func (c *fixedCamera) Projection() mgl32.Mat4 { return c.proj }
func (c *fixedCamera) Changed() bool          { return c.changed }
func (c *fixedCamera) ClearChanged()          { c.changed = false }

func (c *fixedCamera) moveTo(eye mgl32.Vec3) {
	c.view = mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.changed = true
}

func newTestScene(t *testing.T) (*Scene, *Node) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DefaultLight = false
	s := New(cfg)
	root, err := s.NewRoot()
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	return s, root
}

func mustTransformNode(t *testing.T, s *Scene, parent *Node) *Node {
	t.Helper()
	n, err := s.NewTransformNode(parent)
	if err != nil {
		t.Fatalf("NewTransformNode: %v", err)
	}
	return n
}

func mustNode(t *testing.T, s *Scene, parent *Node) *Node {
	t.Helper()
	n, err := s.NewNode(parent)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	return n
}

func unitCube() *Model {
	return NewModel("cube", &Primitive{
		Name: "body",
		BBox: geom.NewAABB(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}),
	})
}

func translation(x, y, z float32) Pose {
	p := IdentityPose()
	p.Translation = mgl32.Vec3{x, y, z}
	return p
}

func assertMat(t *testing.T, name string, got, want mgl32.Mat4) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("%s mismatch:\ngot  %v\nwant %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want mgl32.Vec3) {
	t.Helper()
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
