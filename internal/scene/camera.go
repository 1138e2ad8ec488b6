package scene

import "github.com/go-gl/mathgl/mgl32"

// Camera supplies the view and projection used for camera-relative transforms.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

// ChangeTracker is implemented by cameras that can report parameter changes.
// Frame polls it to decide whether a view-only sweep is needed.
type ChangeTracker interface {
	Changed() bool
	ClearChanged()
}

// FinalTransform is the camera-relative state of a transform for one camera slot.
type FinalTransform struct {
	MV     mgl32.Mat4
	MVP    mgl32.Mat4
	Normal mgl32.Mat3

	valid bool
	full  bool // MVP and Normal were computed, not only MV
}

// Full reports whether MVP and Normal were computed along with MV.
func (f FinalTransform) Full() bool { return f.full }

// FinalFunc computes a camera-relative transform for a world matrix.
type FinalFunc func(cam Camera, world mgl32.Mat4, out *FinalTransform)

// CalcFinal computes model-view, model-view-projection and the normal matrix.
func CalcFinal(cam Camera, world mgl32.Mat4, out *FinalTransform) {
	out.MV = cam.View().Mul4(world)
	out.MVP = cam.Projection().Mul4(out.MV)
	out.Normal = out.MV.Mat3().Inv().Transpose()
	out.full = true
}

// CalcView computes only the model-view matrix. Used for light-only nodes.
func CalcView(cam Camera, world mgl32.Mat4, out *FinalTransform) {
	out.MV = cam.View().Mul4(world)
}

// CameraSlot is one camera observing the scene.
type CameraSlot struct {
	index   int
	cam     Camera
	changed bool
}

func (c *CameraSlot) Index() int     { return c.index }
func (c *CameraSlot) Camera() Camera { return c.cam }
func (c *CameraSlot) Changed() bool  { return c.changed }

// AddCamera registers a camera and returns its slot. Freed slot indices are reused.
func (s *Scene) AddCamera(cam Camera) *CameraSlot {
	slot := &CameraSlot{cam: cam, changed: true}
	for i, c := range s.cameras {
		if c == nil {
			slot.index = i
			s.cameras[i] = slot
			return slot
		}
	}
	slot.index = len(s.cameras)
	s.cameras = append(s.cameras, slot)
	return slot
}

// RemoveCamera unregisters a camera slot.
func (s *Scene) RemoveCamera(slot *CameraSlot) {
	if slot == nil || slot.index >= len(s.cameras) || s.cameras[slot.index] != slot {
		return
	}
	s.cameras[slot.index] = nil
	for len(s.cameras) > 0 && s.cameras[len(s.cameras)-1] == nil {
		s.cameras = s.cameras[:len(s.cameras)-1]
	}
}

// Cameras returns the active camera slots.
func (s *Scene) Cameras() []*CameraSlot {
	out := make([]*CameraSlot, 0, len(s.cameras))
	for _, c := range s.cameras {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// InvalidateView marks a camera as changed so the next frame refreshes
// camera-relative state.
func (s *Scene) InvalidateView(slot *CameraSlot) {
	if slot != nil {
		slot.changed = true
	}
}

// computeFinals runs fn for every active camera slot. Every slot is
// recomputed whenever a node is visited, not only the slot that changed.
func (s *Scene) computeFinals(t *Transform, fn FinalFunc) {
	for i, c := range s.cameras {
		if c == nil {
			continue
		}
		f := t.finalAt(i)
		fn(c.cam, t.world, f)
		f.valid = true
	}
}
