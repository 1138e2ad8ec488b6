// Package scene maintains a hierarchical node graph and keeps its derived
// per-frame state current: world poses, camera-relative transforms, skin
// joint matrices, light directions, scene bounds and centroid.
//
// All operations run on the caller's goroutine. A sweep must finish before
// its results are read, and two sweeps must not run on overlapping subtrees.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/pkg/geom"
)

// Config contains scene construction options.
type Config struct {
	PageSize int // node slots per arena page
	MaxPages int // 0 means unlimited

	// DrawBones keeps a copy of raw joint world matrices for bone visualisation.
	DrawBones bool
	// DefaultLight adds a directional light during Prepare when the scene has none.
	DefaultLight    bool
	DefaultLightDir mgl32.Vec3

	Combine Combiner  // pose -> local matrix
	Final   FinalFunc // camera-relative transform for model nodes
	View    FinalFunc // camera-relative transform for light-only nodes

	Logger *zap.Logger
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:        DefaultPageSize,
		DefaultLight:    true,
		DefaultLightDir: DefaultLightDir,
		Combine:         CombineTRS,
		Final:           CalcFinal,
		View:            CalcView,
	}
}

// Scene owns a node graph and its aggregates.
type Scene struct {
	cfg   Config
	arena *Arena
	log   *zap.Logger

	root  *Node
	trans *Transform // scene-level transform above the root

	cameras []*CameraSlot

	lights         *Light
	lastLight      *Light
	lastLightIndex int
	lightCount     int

	skins        []*ControllerInstance
	skinsPending bool

	dirty     []*Node
	viewEpoch uint32

	centerSum   [3]float64
	centerCount int
	center      mgl32.Vec3
	bbox        geom.AABB
	bboxStale   bool

	prepared bool
}

// New creates an empty scene. Zero-valued collaborators in cfg fall back to
// the defaults.
func New(cfg Config) *Scene {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Combine == nil {
		cfg.Combine = def.Combine
	}
	if cfg.Final == nil {
		cfg.Final = def.Final
	}
	if cfg.View == nil {
		cfg.View = def.View
	}
	if cfg.DefaultLightDir == (mgl32.Vec3{}) {
		cfg.DefaultLightDir = def.DefaultLightDir
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Named("scene")
	}

	trans := newTransform()
	trans.explicit = true
	trans.flags = LocalValid

	return &Scene{
		cfg:   cfg,
		arena: NewArena(cfg.PageSize, cfg.MaxPages, cfg.Logger),
		log:   cfg.Logger,
		trans: trans,
		bbox:  geom.EmptyAABB(),
	}
}

// Arena returns the node arena backing the scene.
func (s *Scene) Arena() *Arena { return s.arena }

// Root returns the root node, or nil.
func (s *Scene) Root() *Node { return s.root }

// NewNode allocates a node without a transform and, if parent is not nil,
// appends it to parent's children.
func (s *Scene) NewNode(parent *Node) (*Node, error) {
	if parent != nil {
		if err := s.checkNode(parent); err != nil {
			return nil, err
		}
	}
	n, err := s.arena.Allocate()
	if err != nil {
		return nil, err
	}
	n.scene = s
	if parent != nil {
		if err := parent.AddChild(n); err != nil {
			s.arena.Free(n)
			return nil, err
		}
	}
	return n, nil
}

// NewTransformNode allocates a node that owns a transform.
func (s *Scene) NewTransformNode(parent *Node) (*Node, error) {
	n, err := s.NewNode(parent)
	if err != nil {
		return nil, err
	}
	n.MakeTransform()
	return n, nil
}

// SetRoot makes n the root of the scene. n must not have a parent.
func (s *Scene) SetRoot(n *Node) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	if n.parent != nil {
		return errors.Errorf("node %d has a parent and cannot be root", n.id)
	}
	s.root = n
	s.prepared = false
	s.invalidate(n)
	return nil
}

// NewRoot allocates a node with its own transform and makes it the root.
func (s *Scene) NewRoot() (*Node, error) {
	n, err := s.NewTransformNode(nil)
	if err != nil {
		return nil, err
	}
	if err := s.SetRoot(n); err != nil {
		return nil, err
	}
	return n, nil
}

// SceneTransform returns the transform applied above the root node.
func (s *Scene) SceneTransform() *Transform { return s.trans }

// SetSceneTransform replaces the scene-level matrix and invalidates the whole graph.
func (s *Scene) SetSceneTransform(m mgl32.Mat4) {
	s.trans.local = m
	s.trans.flags = LocalValid
	if s.root != nil {
		s.invalidate(s.root)
	}
}

func (s *Scene) checkNode(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if !n.Allocated() {
		return errors.Wrapf(ErrNodeFreed, "node %d", n.id)
	}
	if n.scene != s {
		return errors.Wrapf(ErrForeignNode, "node %d", n.id)
	}
	return nil
}

// invalidate marks n's world state stale together with every descendant,
// re-points shared transforms at their current owners, and queues n for
// the next frame.
func (s *Scene) invalidate(n *Node) {
	walk(n, func(d *Node) {
		if d.trans.IsOwned() {
			d.trans.Get().flags &^= WorldValid
			return
		}
		if d.parent != nil {
			d.trans = Shared(d.parent.trans.Get())
		} else {
			d.trans = Shared(s.trans)
		}
	})
	if n.flags&nodeQueued == 0 {
		n.flags |= nodeQueued
		s.dirty = append(s.dirty, n)
	}
}

// AttachModel adds a model instance to n. The instance starts counting
// toward the centroid on the next propagation.
func (s *Scene) AttachModel(n *Node, inst *ModelInstance) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	if inst.node != nil {
		return errors.Errorf("model instance %q already attached to node %d", inst.Model.Name, inst.node.id)
	}
	inst.node = n
	n.models = append(n.models, inst)
	s.invalidate(n)
	return nil
}

// DetachModel removes a model instance from its node and from the scene aggregates.
func (s *Scene) DetachModel(inst *ModelInstance) {
	n := inst.node
	if n == nil {
		return
	}
	for i, m := range n.models {
		if m == inst {
			n.models = append(n.models[:i], n.models[i+1:]...)
			break
		}
	}
	s.dropCenter(inst)
	inst.node = nil
	inst.trans = nil
	s.bboxStale = true
}

// AttachMorph puts a morph instance on n.
func (s *Scene) AttachMorph(n *Node, mi *MorphInstance) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	n.morph = mi
	mi.node = n
	s.invalidate(n)
	return nil
}

// RemoveNode detaches n and frees it together with its whole subtree,
// dropping model, light and controller attachments along the way.
func (s *Scene) RemoveNode(n *Node) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	n.Detach()

	var doomed []*Node
	walk(n, func(d *Node) { doomed = append(doomed, d) })

	for _, d := range doomed {
		for len(d.models) > 0 {
			s.DetachModel(d.models[len(d.models)-1])
		}
		if d.light != nil {
			s.RemoveLight(d.light)
		}
		if d.controller != nil {
			s.removeController(d.controller)
		}
		if d == s.root {
			s.root = nil
		}
		s.arena.Free(d)
	}

	s.log.Debug("subtree removed", zap.Uint32("node", uint32(n.id)), zap.Int("nodes", len(doomed)))
	return nil
}

// Each calls fn for every allocated node in arena order.
func (s *Scene) Each(fn func(*Node)) { s.arena.Each(fn) }
