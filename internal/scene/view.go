package scene

import "go.uber.org/zap"

// ApplyView refreshes camera-relative state after camera parameters changed
// while the hierarchy did not. Local and world matrices are left alone.
// Returns the number of transforms recomputed.
func (s *Scene) ApplyView() (int, error) {
	if s.root == nil {
		return 0, ErrNoRoot
	}
	s.markViewPending()
	return s.applyPendingViews(), nil
}

// markViewPending flags the transform of every model- or light-bearing node
// reachable from the root.
func (s *Scene) markViewPending() {
	walk(s.root, func(n *Node) {
		t := n.trans.Get()
		if t == nil {
			return
		}
		if len(n.models) > 0 {
			t.flags |= ViewPending | viewFull
		} else if n.light != nil {
			t.flags |= ViewPending
		}
	})
}

// applyPendingViews recomputes each pending transform once, however many
// nodes share it, and refreshes the lights that hang off it.
func (s *Scene) applyPendingViews() int {
	s.viewEpoch++
	updated := 0

	walk(s.root, func(n *Node) {
		if len(n.models) == 0 && n.light == nil {
			return
		}
		t := n.trans.Get()
		if t == nil {
			return
		}

		if t.ViewPending() {
			if t.flags&viewFull != 0 {
				s.computeFinals(t, s.cfg.Final)
			} else {
				s.computeFinals(t, s.cfg.View)
			}
			t.flags &^= ViewPending | viewFull
			t.epoch = s.viewEpoch
			updated++
		}

		if n.light != nil && t.epoch == s.viewEpoch {
			n.light.updateDirection(t.world)
		}
	})

	s.log.Debug("view sweep", zap.Int("updated", updated), zap.Int("cameras", len(s.cameras)))
	return updated
}
