package scene

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPrepareAddsDefaultLight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLightDir = mgl32.Vec3{0, -4, 0}
	s := New(cfg)
	if _, err := s.NewRoot(); err != nil {
		t.Fatal(err)
	}
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	if s.LightCount() != 1 {
		t.Fatalf("LightCount = %d, want 1", s.LightCount())
	}
	l := s.FirstLight()
	if l.Type != LightDirectional {
		t.Errorf("default light type = %v", l.Type)
	}
	assertVec(t, "default light dir", l.Dir(), mgl32.Vec3{0, -1, 0})

	// A second Prepare must not stack another default light.
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	if s.LightCount() != 1 {
		t.Errorf("LightCount after second Prepare = %d", s.LightCount())
	}
}

func TestPrepareKeepsExistingLights(t *testing.T) {
	s := New(DefaultConfig())
	root, err := s.NewRoot()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AttachLight(root, NewLight(LightPoint)); err != nil {
		t.Fatal(err)
	}
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	if s.LightCount() != 1 {
		t.Errorf("LightCount = %d, want 1", s.LightCount())
	}
}

func TestPrepareWithoutRoot(t *testing.T) {
	s := New(DefaultConfig())
	if err := s.Prepare(); err != ErrNoRoot {
		t.Errorf("err = %v, want ErrNoRoot", err)
	}
	if _, err := s.Frame(); err != ErrNoRoot {
		t.Errorf("Frame err = %v, want ErrNoRoot", err)
	}
}

func TestFrameSweepsOnlyDirtySubtrees(t *testing.T) {
	s, root := newTestScene(t)
	left := mustTransformNode(t, s, root)
	mustTransformNode(t, s, left)
	right := mustTransformNode(t, s, root)
	mustTransformNode(t, s, right)
	mustTransformNode(t, s, right)

	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Visited != 6 {
		t.Errorf("first frame visited %d, want 6", st.Visited)
	}

	st, err = s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Visited != 0 || st.Roots != 0 {
		t.Errorf("idle frame did work: %+v", st)
	}

	if err := right.SetPose(translation(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	st, err = s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Roots != 1 || st.Visited != 3 {
		t.Errorf("frame after moving right: roots=%d visited=%d, want 1 and 3", st.Roots, st.Visited)
	}
}

func TestFrameCollapsesNestedDirtyNodes(t *testing.T) {
	s, root := newTestScene(t)
	a := mustTransformNode(t, s, root)
	b := mustTransformNode(t, s, a)
	c := mustTransformNode(t, s, b)
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}

	for _, n := range []*Node{c, a, b} {
		if err := n.SetPose(translation(0, 1, 0)); err != nil {
			t.Fatal(err)
		}
	}
	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Roots != 1 || st.Visited != 3 {
		t.Errorf("roots=%d visited=%d, want 1 and 3", st.Roots, st.Visited)
	}
	assertMat(t, "c.World", c.World(), mgl32.Translate3D(0, 3, 0))
}

func TestFrameRunsViewPassOnCameraChange(t *testing.T) {
	s, root := newTestScene(t)
	cam := newFixedCamera()
	slot := s.AddCamera(cam)
	n := mustTransformNode(t, s, root)
	if err := s.AttachModel(n, NewModelInstance(unitCube())); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachLight(mustTransformNode(t, s, root), NewLight(LightSpot)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}
	if slot.Changed() {
		t.Error("camera still marked changed after first frame")
	}

	cam.moveTo(mgl32.Vec3{0, 20, 1})
	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Visited != 0 {
		t.Errorf("camera move swept %d nodes", st.Visited)
	}
	if st.ViewUpdated != 2 {
		t.Errorf("ViewUpdated = %d, want 2", st.ViewUpdated)
	}
	f, _ := n.Transform().Final(slot)
	assertMat(t, "MV", f.MV, cam.view.Mul4(n.World()))
	if cam.Changed() {
		t.Error("camera change flag not cleared")
	}
}

func TestFrameInvalidateViewExplicitly(t *testing.T) {
	s, root := newTestScene(t)
	cam := &staticCamera{view: mgl32.Ident4(), proj: mgl32.Ident4()}
	slot := s.AddCamera(cam)
	n := mustTransformNode(t, s, root)
	if err := s.AttachModel(n, NewModelInstance(unitCube())); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}

	cam.view = mgl32.Translate3D(0, 0, -5)
	s.InvalidateView(slot)
	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.ViewUpdated != 1 {
		t.Errorf("ViewUpdated = %d, want 1", st.ViewUpdated)
	}
	f, _ := n.Transform().Final(slot)
	assertMat(t, "MV", f.MV, cam.view)
}

func TestFrameDropsDetachedDirtyNodes(t *testing.T) {
	s, root := newTestScene(t)
	a := mustTransformNode(t, s, root)
	if _, err := s.Frame(); err != nil {
		t.Fatal(err)
	}

	a.Detach()
	if err := a.SetPose(translation(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Visited != 0 {
		t.Errorf("detached node swept: visited=%d", st.Visited)
	}

	if err := root.AddChild(a); err != nil {
		t.Fatal(err)
	}
	st, err = s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Visited != 1 {
		t.Errorf("re-added node visited=%d, want 1", st.Visited)
	}
	assertMat(t, "a.World", a.World(), mgl32.Translate3D(1, 1, 1))
}

func TestFrameResolvesSkinsOnce(t *testing.T) {
	r := newSkinRig(t, DefaultConfig())
	st, err := r.s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Skins != 1 {
		t.Errorf("Skins = %d, want 1", st.Skins)
	}

	st, err = r.s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Skins != 0 {
		t.Errorf("idle frame resolved %d skins", st.Skins)
	}

	if err := r.joints[0].SetPose(translation(1, 1, 0)); err != nil {
		t.Fatal(err)
	}
	st, err = r.s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Skins != 1 {
		t.Errorf("Skins = %d after joint move", st.Skins)
	}
	assertMat(t, "joint 0", r.inst.Joints[0], mgl32.Translate3D(1, 0, 0))
}

func TestFirstFrameCountsResolvedSkins(t *testing.T) {
	r := newSkinRig(t, DefaultConfig())
	bare := mustNode(t, r.s, r.root)
	if err := r.s.AttachController(bare, &ControllerInstance{Skin: r.ci.Skin}); err != nil {
		t.Fatal(err)
	}

	st, err := r.s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	// The controller on bare has no model instance to write into.
	if st.Skins != 1 {
		t.Errorf("Skins = %d, want 1", st.Skins)
	}
}

func TestFrameStatsFPS(t *testing.T) {
	st := FrameStats{Elapsed: 10 * time.Millisecond}
	if fps := st.FPS(); fps < 99.9 || fps > 100.1 {
		t.Errorf("FPS = %v, want 100", fps)
	}
	if (FrameStats{}).FPS() != 0 {
		t.Error("zero elapsed should report 0 FPS")
	}
}

// staticCamera has no change tracking; callers use InvalidateView.
type staticCamera struct {
	view, proj mgl32.Mat4
}

func (c *staticCamera) View() mgl32.Mat4       { return c.view }
func (c *staticCamera) Projection() mgl32.Mat4 { return c.proj }
