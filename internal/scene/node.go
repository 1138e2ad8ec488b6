package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type nodeFlags uint8

const (
	nodeAllocated nodeFlags = 1 << iota
	nodeHasTransform
	nodeQueued // waiting in Scene.dirty for the next frame
)

// Node is a unit of the scene hierarchy.
//
// Nodes live in arena pages and are linked through parent, first-child and
// next-sibling pointers. A node without its own transform shares the
// transform of its nearest ancestor that has one.
type Node struct {
	id    NodeID
	page  *nodePage
	scene *Scene
	flags nodeFlags
	gen   uint32 // bumped on every allocation of the slot

	Name string

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	nextSibling *Node

	trans      TransformRef
	models     []*ModelInstance
	light      *Light
	controller *ControllerInstance
	morph      *MorphInstance
}

// ID returns the node's arena slot.
func (n *Node) ID() NodeID { return n.id }

// Allocated reports whether the slot currently holds a live node.
func (n *Node) Allocated() bool { return n.flags&nodeAllocated != 0 }

// HasTransform reports whether the node owns a transform.
func (n *Node) HasTransform() bool { return n.flags&nodeHasTransform != 0 }

func (n *Node) Parent() *Node      { return n.parent }
func (n *Node) FirstChild() *Node  { return n.firstChild }
func (n *Node) NextSibling() *Node { return n.nextSibling }

// Children returns the direct children in insertion order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		out = append(out, c)
	}
	return out
}

// Transform returns the node's effective transform, owned or shared.
// It may be nil before the node is linked or first propagated.
func (n *Node) Transform() *Transform { return n.trans.Get() }

// TransformRef returns the tagged reference to the effective transform.
func (n *Node) TransformRef() TransformRef { return n.trans }

// World returns the effective world matrix, or identity when none is set.
func (n *Node) World() mgl32.Mat4 {
	if t := n.trans.Get(); t != nil {
		return t.world
	}
	return mgl32.Ident4()
}

func (n *Node) Models() []*ModelInstance        { return n.models }
func (n *Node) Light() *Light                   { return n.light }
func (n *Node) Controller() *ControllerInstance { return n.controller }
func (n *Node) Morph() *MorphInstance           { return n.morph }

// MakeTransform gives the node a transform of its own with an identity pose.
// It is a no-op when the node already owns one.
func (n *Node) MakeTransform() *Transform {
	if n.trans.IsOwned() {
		return n.trans.Get()
	}
	t := newTransform()
	n.trans = Owned(t)
	n.flags |= nodeHasTransform
	if n.scene != nil {
		n.scene.invalidate(n)
	}
	return t
}

// SetPose replaces the pose of the node's own transform and queues it for propagation.
func (n *Node) SetPose(p Pose) error {
	if !n.trans.IsOwned() {
		return errors.Wrapf(ErrNoTransform, "node %d", n.id)
	}
	if n.scene == nil {
		return errors.Wrapf(ErrForeignNode, "node %d has no scene", n.id)
	}
	t := n.trans.Get()
	t.pose = p
	t.explicit = false
	t.flags &^= LocalValid
	n.scene.invalidate(n)
	return nil
}

// SetTranslation changes only the translation of the node's pose.
func (n *Node) SetTranslation(v mgl32.Vec3) error {
	if !n.trans.IsOwned() {
		return errors.Wrapf(ErrNoTransform, "node %d", n.id)
	}
	p := n.trans.Get().pose
	p.Translation = v
	return n.SetPose(p)
}

// SetRotation changes only the rotation of the node's pose.
func (n *Node) SetRotation(q mgl32.Quat) error {
	if !n.trans.IsOwned() {
		return errors.Wrapf(ErrNoTransform, "node %d", n.id)
	}
	p := n.trans.Get().pose
	p.Rotation = q
	return n.SetPose(p)
}

// SetLocal sets the local matrix directly, bypassing the pose combiner
// until the next SetPose.
func (n *Node) SetLocal(m mgl32.Mat4) error {
	if !n.trans.IsOwned() {
		return errors.Wrapf(ErrNoTransform, "node %d", n.id)
	}
	if n.scene == nil {
		return errors.Wrapf(ErrForeignNode, "node %d has no scene", n.id)
	}
	t := n.trans.Get()
	t.local = m
	t.explicit = true
	t.flags |= LocalValid
	n.scene.invalidate(n)
	return nil
}

// AddChild appends child as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	if !n.Allocated() || !child.Allocated() {
		return ErrNodeFreed
	}
	if child.scene != n.scene {
		return errors.Wrapf(ErrForeignNode, "node %d", child.id)
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return errors.Wrapf(ErrCycle, "node %d under %d", child.id, n.id)
		}
	}

	if child.parent != nil {
		child.parent.unlink(child)
	}

	child.parent = n
	if n.lastChild == nil {
		n.firstChild = child
	} else {
		n.lastChild.nextSibling = child
	}
	n.lastChild = child

	n.scene.invalidate(child)
	return nil
}

// Detach removes n from its parent. The subtree stays allocated and keeps
// its attachments; it is no longer reached by propagation until re-added.
func (n *Node) Detach() {
	if n.parent != nil {
		n.parent.unlink(n)
	}
}

func (n *Node) unlink(child *Node) {
	var prev *Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c == child {
			break
		}
		prev = c
	}
	if prev == nil {
		n.firstChild = child.nextSibling
	} else {
		prev.nextSibling = child.nextSibling
	}
	if n.lastChild == child {
		n.lastChild = prev
	}
	child.parent = nil
	child.nextSibling = nil
}

// walk visits start and its whole subtree depth-first, parents before
// children and siblings in insertion order. It follows only the node
// links, ascending through parent pointers when a branch is exhausted,
// and stops when the ascent returns to start.
func walk(start *Node, fn func(*Node)) {
	fn(start)
	n := start.firstChild
	for n != nil {
		fn(n)
		if n.firstChild != nil {
			n = n.firstChild
			continue
		}
		for n != start && n.nextSibling == nil {
			n = n.parent
		}
		if n == start {
			return
		}
		n = n.nextSibling
	}
}
