package scene

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ApplyTransform propagates poses through n's subtree, refreshing world
// matrices, camera-relative transforms, instance bounds, the centroid and
// light directions, then resolves skins.
//
// If an ancestor of n has a stale world matrix the sweep starts at the
// topmost such ancestor instead, so no node ends up valid under an invalid
// parent.
func (s *Scene) ApplyTransform(n *Node) error {
	start, err := s.sweepStart(n)
	if err != nil {
		return err
	}
	s.sweep(start)
	s.ResolveSkins()
	return nil
}

func (s *Scene) sweepStart(n *Node) (*Node, error) {
	if s.root == nil {
		return nil, ErrNoRoot
	}
	if err := s.checkNode(n); err != nil {
		return nil, err
	}

	top := n
	for top.parent != nil {
		top = top.parent
	}
	if top != s.root {
		return nil, errors.Wrapf(ErrDetached, "node %d", n.id)
	}
	if !s.trans.WorldValid() {
		return s.root, nil
	}

	start := n
	for p := n.parent; p != nil; p = p.parent {
		if t := p.trans.Get(); t == nil || !t.WorldValid() {
			start = p
		}
	}
	return start, nil
}

// sweep runs prepareNode over start's subtree and returns the number of
// nodes visited. A sweep from the root rebuilds the scene box from scratch.
func (s *Scene) sweep(start *Node) int {
	if !s.trans.WorldValid() {
		s.trans.world = s.trans.local
		s.trans.flags |= WorldValid
	}
	if start == s.root {
		s.bbox.Invalidate()
		s.bboxStale = false
	}

	visited := 0
	walk(start, func(n *Node) {
		s.prepareNode(n)
		visited++
	})

	s.log.Debug("transform sweep",
		zap.Uint32("start", uint32(start.id)),
		zap.Int("visited", visited),
		zap.Int("cameras", len(s.cameras)),
	)
	return visited
}

// prepareNode brings one node up to date. Its parent must already be valid.
func (s *Scene) prepareNode(n *Node) {
	parent := n.parent

	if !n.trans.IsOwned() {
		if parent != nil {
			n.trans = Shared(parent.trans.Get())
		} else {
			n.trans = Shared(s.trans)
		}
	}
	t := n.trans.Get()

	if !t.LocalValid() {
		t.combine(s.cfg.Combine)
	}

	if n.trans.IsOwned() {
		parentWorld := s.trans.world
		if parent != nil {
			parentWorld = parent.trans.Get().world
		}
		t.world = parentWorld.Mul4(t.local)
		t.flags |= WorldValid
	}

	n.flags &^= nodeQueued
	t.flags &^= ViewPending | viewFull

	finalComputed := false
	if len(n.models) > 0 {
		// Final transforms depend on camera state as well, so they are
		// recomputed on every visit even when the world matrix was valid.
		s.computeFinals(t, s.cfg.Final)
		finalComputed = true

		for _, inst := range n.models {
			s.updateInstance(inst, t)
			if n.morph != nil {
				n.morph.attachTo(inst)
			}
		}
	}

	if l := n.light; l != nil {
		if !finalComputed {
			s.computeFinals(t, s.cfg.View)
		}
		l.updateDirection(t.world)
	}
}
