package sim

import (
	"context"
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/scene"
)

// swing drives one value between two ends, reversing at each end or, when
// loop is set, restarting from the first.
type swing struct {
	from, to float32
	duration float32
	easeFn   ease.TweenFunc
	loop     bool
	tw       *gween.Tween
	apply    func(v float32) error
}

func newSwing(from, to, duration float32, easeFn ease.TweenFunc, loop bool, apply func(float32) error) *swing {
	return &swing{
		from:     from,
		to:       to,
		duration: duration,
		easeFn:   easeFn,
		loop:     loop,
		tw:       gween.New(from, to, duration, easeFn),
		apply:    apply,
	}
}

func (s *swing) step(dt float32) error {
	v, done := s.tw.Update(dt)
	if done {
		if !s.loop {
			s.from, s.to = s.to, s.from
		}
		s.tw = gween.New(s.from, s.to, s.duration, s.easeFn)
	}
	return s.apply(v)
}

// Summary accumulates frame statistics over a run.
type Summary struct {
	Frames      int
	Visited     int
	ViewUpdated int
	Skins       int
	Elapsed     time.Duration
}

// Add folds one frame into the summary.
func (s *Summary) Add(st scene.FrameStats) {
	s.Frames++
	s.Visited += st.Visited
	s.ViewUpdated += st.ViewUpdated
	s.Skins += st.Skins
	s.Elapsed += st.Elapsed
}

// AvgFrame returns the mean time spent in scene updates per frame.
func (s Summary) AvgFrame() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Frames)
}

// Step advances every animation by dt seconds and runs one scene frame.
func (d *Demo) Step(dt float32) (scene.FrameStats, error) {
	for _, sw := range d.swings {
		if err := sw.step(dt); err != nil {
			return scene.FrameStats{}, err
		}
	}

	d.Orbit.Update(dt)
	if !d.Orbit.Orbiting() && d.sim.TweenSeconds > 0 {
		d.Orbit.OrbitTo(d.Orbit.Yaw()+2*math.Pi, d.cam.Pitch, d.Orbit.Distance(), d.sim.TweenSeconds*8, ease.InOutSine)
	}

	return d.Scene.Frame()
}

// RunOptions control Run.
type RunOptions struct {
	// Frames to run; 0 runs until the context is done.
	Frames int
	// Pace sleeps between frames so they start at most once per Pace.
	Pace time.Duration
	// OnFrame is called on the running goroutine after every frame.
	OnFrame func(frame int, st scene.FrameStats)
}

// Run steps the demo with a fixed simulated timestep of simulation.frame_dt.
func (d *Demo) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	var sum Summary
	dt := float32(d.sim.FrameDT.Seconds())
	if dt <= 0 {
		dt = 1.0 / 60
	}

	var tick <-chan time.Time
	if opts.Pace > 0 {
		ticker := time.NewTicker(opts.Pace)
		defer ticker.Stop()
		tick = ticker.C
	}

	for frame := 0; opts.Frames <= 0 || frame < opts.Frames; frame++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return sum, nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return sum, nil
		}

		st, err := d.Step(dt)
		if err != nil {
			return sum, err
		}
		sum.Add(st)
		if opts.OnFrame != nil {
			opts.OnFrame(frame, st)
		}

		if frame%60 == 0 {
			d.log.Debug("frame",
				zap.Int("frame", frame),
				zap.Int("visited", st.Visited),
				zap.Int("view", st.ViewUpdated),
				zap.Int("skins", st.Skins),
				zap.Float64("fps", st.FPS()),
			)
		}
	}

	d.log.Info("simulation finished",
		zap.Int("frames", sum.Frames),
		zap.Int("visited", sum.Visited),
		zap.Duration("avg_frame", sum.AvgFrame()),
	)
	return sum, nil
}
