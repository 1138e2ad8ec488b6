package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posegraph/pkg/geom"
)

// Centroid returns the mean world-space center of all counted model instances.
func (s *Scene) Centroid() mgl32.Vec3 { return s.center }

// CentroidCount returns the number of model instances contributing to the centroid.
func (s *Scene) CentroidCount() int { return s.centerCount }

// BBox returns the running scene bounding box.
//
// The box grows as instances move and is rebuilt exactly on full sweeps and
// after detaches, so between those it may be larger than the tight bounds.
func (s *Scene) BBox() geom.AABB { return s.bbox }

// RecomputeBounds rebuilds the scene box from the current instance boxes
// without touching transforms.
func (s *Scene) RecomputeBounds() {
	s.bbox.Invalidate()
	s.arena.Each(func(n *Node) {
		for _, inst := range n.models {
			if len(inst.Prims) == 0 {
				s.bbox.Merge(inst.BBox)
				continue
			}
			for i := range inst.Prims {
				s.bbox.Merge(inst.Prims[i].BBox)
			}
		}
	})
	s.bboxStale = false
}

// updateInstance moves an instance's derived world-space state to world.
func (s *Scene) updateInstance(inst *ModelInstance, t *Transform) {
	w := t.world
	inst.trans = t

	if inst.Model.BBox.IsValid() {
		inst.BBox = inst.Model.BBox.Transform(w)
	} else {
		inst.BBox.Invalidate()
	}

	for i := range inst.Prims {
		p := &inst.Prims[i]
		p.BBox = p.Prim.BBox.Transform(w)
		inst.BBox.Merge(p.BBox)
		s.bbox.Merge(p.BBox)
	}
	if len(inst.Prims) == 0 {
		s.bbox.Merge(inst.BBox)
	}

	s.moveCenter(inst, geom.TransformPoint(w, inst.Model.Center))
}

// moveCenter replaces the instance's contribution to the running centroid.
// The sum is kept in float64 so repeated moves of the same instance do not drift.
func (s *Scene) moveCenter(inst *ModelInstance, c mgl32.Vec3) {
	if inst.counted {
		s.subCenter(inst.Center)
	} else {
		inst.counted = true
		s.centerCount++
	}
	inst.Center = c
	for i := 0; i < 3; i++ {
		s.centerSum[i] += float64(c[i])
	}
	s.updateMean()
}

func (s *Scene) dropCenter(inst *ModelInstance) {
	if !inst.counted {
		return
	}
	s.subCenter(inst.Center)
	inst.counted = false
	s.centerCount--
	if s.centerCount == 0 {
		s.centerSum = [3]float64{}
	}
	s.updateMean()
}

func (s *Scene) subCenter(c mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		s.centerSum[i] -= float64(c[i])
	}
}

func (s *Scene) updateMean() {
	if s.centerCount == 0 {
		s.center = mgl32.Vec3{}
		return
	}
	inv := 1 / float64(s.centerCount)
	s.center = mgl32.Vec3{
		float32(s.centerSum[0] * inv),
		float32(s.centerSum[1] * inv),
		float32(s.centerSum[2] * inv),
	}
}
