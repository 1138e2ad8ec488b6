package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posegraph/pkg/geom"
)

// Primitive is an immutable drawable part of a Model.
type Primitive struct {
	Name string
	BBox geom.AABB // asset space
}

// Model is a shared, immutable asset. The scene only reads it.
type Model struct {
	Name       string
	BBox       geom.AABB  // asset space
	Center     mgl32.Vec3 // asset space
	Primitives []*Primitive
}

// NewModel builds a model whose bounds and center are derived from its primitives.
func NewModel(name string, prims ...*Primitive) *Model {
	m := &Model{Name: name, BBox: geom.EmptyAABB(), Primitives: prims}
	for _, p := range prims {
		m.BBox.Merge(p.BBox)
	}
	if m.BBox.IsValid() {
		m.Center = m.BBox.Center()
	}
	return m
}

// PrimitiveInstance is the per-instance, world-space view of a Primitive.
type PrimitiveInstance struct {
	Prim *Primitive
	BBox geom.AABB // world space
}

// ModelInstance places a Model at a node.
type ModelInstance struct {
	Model  *Model
	Prims  []PrimitiveInstance
	BBox   geom.AABB  // world space
	Center mgl32.Vec3 // world space

	// Joints holds skinning matrices, allocated on first skin resolution.
	Joints []mgl32.Mat4
	// JointsToDraw holds raw joint world matrices when bone drawing is enabled.
	JointsToDraw []mgl32.Mat4

	Morph *MorphInstance

	node    *Node
	trans   *Transform
	counted bool // contributes to the scene centroid
}

// NewModelInstance creates an instance with one primitive instance per model primitive.
func NewModelInstance(m *Model) *ModelInstance {
	inst := &ModelInstance{
		Model: m,
		Prims: make([]PrimitiveInstance, len(m.Primitives)),
		BBox:  geom.EmptyAABB(),
	}
	for i, p := range m.Primitives {
		inst.Prims[i] = PrimitiveInstance{Prim: p, BBox: geom.EmptyAABB()}
	}
	return inst
}

// Node returns the node the instance is attached to.
func (mi *ModelInstance) Node() *Node { return mi.node }

// Transform returns the transform used at the last propagation.
func (mi *ModelInstance) Transform() *Transform { return mi.trans }

// Counted reports whether the instance contributes to the scene centroid.
func (mi *ModelInstance) Counted() bool { return mi.counted }
