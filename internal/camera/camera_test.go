package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/posegraph/pkg/geom"
)

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera(DefaultLens())
	c.SetOrbit(0, 0, 10)

	pos := c.Position()
	if !pos.ApproxEqualThreshold(mgl32.Vec3{0, 0, 10}, 1e-4) {
		t.Errorf("expected position (0,0,10), got %v", pos)
	}

	// The view matrix must map the center to a point straight ahead.
	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !p.Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 0, -10}, 1e-4) {
		t.Errorf("center in view space = %v, want (0,0,-10)", p.Vec3())
	}
}

func TestOrbitCameraChangeTracking(t *testing.T) {
	c := NewOrbitCamera(DefaultLens())
	if !c.Changed() {
		t.Error("new camera should report a change")
	}
	c.ClearChanged()

	c.SetCenter(c.Center())
	if c.Changed() {
		t.Error("setting the same center should not report a change")
	}

	c.HandleDrag(10, 0)
	if !c.Changed() {
		t.Error("drag should report a change")
	}
}

func TestOrbitCameraClamps(t *testing.T) {
	c := NewOrbitCamera(DefaultLens())
	c.SetOrbit(0, 10, 1e6)
	if c.Pitch() != c.MaxPitch {
		t.Errorf("pitch = %f, want %f", c.Pitch(), c.MaxPitch)
	}
	if c.Distance() != c.MaxDistance {
		t.Errorf("distance = %f, want %f", c.Distance(), c.MaxDistance)
	}

	c.HandleZoom(100)
	if c.Distance() != c.MinDistance {
		t.Errorf("distance after zoom = %f, want %f", c.Distance(), c.MinDistance)
	}
}

func TestOrbitCameraTween(t *testing.T) {
	c := NewOrbitCamera(DefaultLens())
	c.SetOrbit(0, 0, 10)
	c.ClearChanged()

	c.OrbitTo(1, 0.5, 20, 1, ease.Linear)
	if !c.Orbiting() {
		t.Fatal("expected an active orbit tween")
	}

	c.Update(0.5)
	if d := c.Distance(); d < 14.9 || d > 15.1 {
		t.Errorf("distance halfway = %f, want 15", d)
	}
	if !c.Changed() {
		t.Error("tween step should report a change")
	}

	c.Update(0.6)
	if c.Orbiting() {
		t.Error("tween should have finished")
	}
	if c.Yaw() != 1 || c.Distance() != 20 {
		t.Errorf("final yaw/distance = %f/%f", c.Yaw(), c.Distance())
	}
}

func TestOrbitCameraFitToBounds(t *testing.T) {
	c := NewOrbitCamera(DefaultLens())
	box := geom.NewAABB(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{30, 10, 10})
	c.FitToBounds(box)

	if !c.Center().ApproxEqualThreshold(mgl32.Vec3{10, 0, 0}, 1e-4) {
		t.Errorf("center = %v, want (10,0,0)", c.Center())
	}
	if c.Distance() <= box.Size().Len()/2 {
		t.Errorf("distance %f too close for box of size %v", c.Distance(), box.Size())
	}
}

func TestFollowCameraTracksTarget(t *testing.T) {
	target := mgl32.Vec3{1, 0, 1}
	c := NewFollowCamera(DefaultLens(), func() mgl32.Vec3 { return target })

	if !c.Changed() {
		t.Error("unseen camera should report a change")
	}
	c.ClearChanged()
	if c.Changed() {
		t.Error("camera changed without target motion")
	}

	target = mgl32.Vec3{5, 0, 1}
	if !c.Changed() {
		t.Error("target motion should report a change")
	}

	pos := c.Position()
	if pos.Y() <= target.Y() {
		t.Errorf("camera should sit above the target, got %v", pos)
	}

	c.ClearChanged()
	c.Yaw = 1
	if !c.Changed() {
		t.Error("yaw change should report a change")
	}
}
