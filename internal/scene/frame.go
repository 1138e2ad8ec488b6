package scene

import (
	"time"

	"go.uber.org/zap"
)

// FrameStats describes the work done by one Frame call.
type FrameStats struct {
	Roots       int // subtrees swept
	Visited     int // nodes prepared
	ViewUpdated int // transforms refreshed by the view pass
	Skins       int // controllers resolved
	Elapsed     time.Duration
}

// FPS approximates the frame rate the last frame's cost would allow.
func (st FrameStats) FPS() float64 {
	if st.Elapsed <= 0 {
		return 0
	}
	return 1 / st.Elapsed.Seconds()
}

// Prepare runs the first full propagation from the root. If the scene has no
// lights and the configuration asks for one, a default directional light is
// added first.
func (s *Scene) Prepare() error {
	_, _, err := s.prepare()
	return err
}

// prepare returns the number of nodes visited and skin controllers resolved.
func (s *Scene) prepare() (visited, skins int, err error) {
	if s.root == nil {
		return 0, 0, ErrNoRoot
	}
	if s.cfg.DefaultLight && s.lightCount == 0 {
		l := NewLight(LightDirectional)
		l.Name = "default"
		l.DefaultDir = s.cfg.DefaultLightDir
		s.AddLight(l)
		s.log.Info("added default light", zap.Any("dir", l.DefaultDir))
	}

	s.invalidate(s.root)
	visited = s.sweep(s.root)
	s.clearDirty()
	skins = s.ResolveSkins()
	s.clearCameraChanges()
	s.prepared = true

	s.log.Info("scene prepared",
		zap.Int("nodes", s.arena.Len()),
		zap.Int("visited", visited),
		zap.Int("lights", s.lightCount),
		zap.Int("cameras", len(s.cameras)),
	)
	return visited, skins, nil
}

// Frame brings the scene up to date for rendering. Dirty subtrees are swept,
// camera changes are pushed through a view pass, and skins are resolved
// once after all sweeps. The first call behaves like Prepare.
func (s *Scene) Frame() (FrameStats, error) {
	var st FrameStats
	begin := time.Now()

	if s.root == nil {
		return st, ErrNoRoot
	}

	if !s.prepared {
		visited, skins, err := s.prepare()
		if err != nil {
			return st, err
		}
		st.Roots = 1
		st.Visited = visited
		st.Skins = skins
		st.Elapsed = time.Since(begin)
		return st, nil
	}

	viewChanged := s.pollCameras()
	roots, full := s.dirtyRoots()

	if !full && s.bboxStale {
		s.RecomputeBounds()
	}
	if viewChanged && !full {
		s.markViewPending()
	}

	for _, r := range roots {
		st.Visited += s.sweep(r)
	}
	st.Roots = len(roots)
	s.clearDirty()

	if viewChanged && !full {
		st.ViewUpdated = s.applyPendingViews()
	}
	if st.Visited > 0 || s.skinsPending {
		st.Skins = s.ResolveSkins()
	}
	s.clearCameraChanges()

	st.Elapsed = time.Since(begin)
	if st.Visited > 0 || st.ViewUpdated > 0 {
		s.log.Debug("frame",
			zap.Int("roots", st.Roots),
			zap.Int("visited", st.Visited),
			zap.Int("view", st.ViewUpdated),
			zap.Int("skins", st.Skins),
			zap.Duration("elapsed", st.Elapsed),
		)
	}
	return st, nil
}

// pollCameras folds camera-side change notifications into the slots and
// reports whether any slot needs a view refresh.
func (s *Scene) pollCameras() bool {
	changed := false
	for _, slot := range s.cameras {
		if slot == nil {
			continue
		}
		if ct, ok := slot.cam.(ChangeTracker); ok && ct.Changed() {
			slot.changed = true
			ct.ClearChanged()
		}
		if slot.changed {
			changed = true
		}
	}
	return changed
}

func (s *Scene) clearCameraChanges() {
	for _, slot := range s.cameras {
		if slot != nil {
			slot.changed = false
		}
	}
}

// dirtyRoots reduces the dirty queue to the minimal set of sweep starts.
// Queued nodes under another queued node are covered by its sweep, and nodes
// no longer reachable from the root are dropped. full reports that the root
// itself must be swept.
func (s *Scene) dirtyRoots() (roots []*Node, full bool) {
	if !s.trans.WorldValid() {
		return []*Node{s.root}, true
	}

	seen := make(map[*Node]bool)
	for _, n := range s.dirty {
		if !n.Allocated() || n.flags&nodeQueued == 0 {
			continue
		}

		covered := false
		top := n
		for p := n.parent; p != nil; p = p.parent {
			if p.flags&nodeQueued != 0 {
				covered = true
			}
			top = p
		}
		if top != s.root {
			n.flags &^= nodeQueued
			continue
		}
		if covered {
			continue
		}

		start, err := s.sweepStart(n)
		if err != nil {
			continue
		}
		if start == s.root {
			return []*Node{s.root}, true
		}
		if !seen[start] {
			seen[start] = true
			roots = append(roots, start)
		}
	}
	return roots, false
}

func (s *Scene) clearDirty() {
	for _, n := range s.dirty {
		n.flags &^= nodeQueued
	}
	s.dirty = s.dirty[:0]
}
