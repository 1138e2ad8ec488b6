// Package sim builds an animated demo scene and drives it frame by frame.
package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/Faultbox/posegraph/internal/camera"
	"github.com/Faultbox/posegraph/internal/config"
	"github.com/Faultbox/posegraph/internal/lighting"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/internal/scene"
	"github.com/Faultbox/posegraph/pkg/geom"
)

// Demo is an animated scene: a grid of bobbing crates, a swaying skinned
// joint chain with a spot light on its tip, and a lamp circling the grid.
// It is observed by an orbiting camera and a camera following the chain tip.
type Demo struct {
	Scene  *scene.Scene
	Orbit  *camera.OrbitCamera
	Follow *camera.FollowCamera

	Root  *scene.Node
	Grid  []*scene.Node
	Chain []*scene.Node
	Body  *scene.ModelInstance
	Lamp  *scene.Node

	swings []*swing
	cam    config.CameraConfig
	sim    config.SimulationConfig
	log    *zap.Logger
}

// SceneConfig maps the scene section of cfg onto scene construction options.
func SceneConfig(cfg *config.Config) scene.Config {
	sc := scene.DefaultConfig()
	sc.PageSize = cfg.Scene.PageSize
	sc.MaxPages = cfg.Scene.MaxPages
	sc.DrawBones = cfg.Scene.DrawBones
	sc.DefaultLight = cfg.Scene.DefaultLight
	sc.DefaultLightDir = lighting.SunlightDirection(cfg.Scene.SunLongitude, cfg.Scene.SunLatitude)
	sc.Logger = logger.Named("scene")
	return sc
}

// Lens maps the camera section of cfg onto a camera lens.
func Lens(cfg config.CameraConfig) camera.Lens {
	return camera.Lens{FovDeg: cfg.FovDeg, Aspect: cfg.Aspect, Near: cfg.Near, Far: cfg.Far}
}

// builder keeps the first error so scene assembly reads top to bottom.
type builder struct {
	s   *scene.Scene
	err error
}

func (b *builder) node(parent *scene.Node, name string, pose scene.Pose) *scene.Node {
	if b.err != nil {
		return nil
	}
	n, err := b.s.NewTransformNode(parent)
	if err != nil {
		b.err = errors.Wrapf(err, "creating %s", name)
		return nil
	}
	n.Name = name
	b.err = n.SetPose(pose)
	return n
}

// plain creates a node without a transform; it shares parent's.
func (b *builder) plain(parent *scene.Node, name string) *scene.Node {
	if b.err != nil {
		return nil
	}
	n, err := b.s.NewNode(parent)
	if err != nil {
		b.err = errors.Wrapf(err, "creating %s", name)
		return nil
	}
	n.Name = name
	return n
}

func (b *builder) model(n *scene.Node, m *scene.Model) *scene.ModelInstance {
	if b.err != nil {
		return nil
	}
	inst := scene.NewModelInstance(m)
	b.err = b.s.AttachModel(n, inst)
	return inst
}

func (b *builder) light(n *scene.Node, l *scene.Light) {
	if b.err != nil {
		return
	}
	b.err = b.s.AttachLight(n, l)
}

func at(x, y, z float32) scene.Pose {
	p := scene.IdentityPose()
	p.Translation = mgl32.Vec3{x, y, z}
	return p
}

func box(name string, min, max mgl32.Vec3) *scene.Model {
	return scene.NewModel(name, &scene.Primitive{Name: name, BBox: geom.NewAABB(min, max)})
}

// Build assembles the demo scene described by cfg and runs its first full
// propagation.
func Build(cfg *config.Config) (*Demo, error) {
	log := logger.Named("sim")
	s := scene.New(SceneConfig(cfg))
	b := &builder{s: s}
	d := &Demo{Scene: s, cam: cfg.Camera, sim: cfg.Simulation, log: log}

	root, err := s.NewRoot()
	if err != nil {
		return nil, err
	}
	root.Name = "root"
	d.Root = root

	half := mgl32.Vec3{0.5, 0.5, 0.5}
	crate := box("crate", half.Mul(-1), half)
	marker := box("marker", mgl32.Vec3{-0.1, 0.5, -0.1}, mgl32.Vec3{0.1, 0.8, 0.1})

	spacing := cfg.Simulation.Spacing
	g := cfg.Simulation.Grid
	extent := float32(g-1) * spacing / 2

	grid := b.node(root, "grid", scene.IdentityPose())
	for i := 0; i < g; i++ {
		for j := 0; j < g; j++ {
			x := float32(i)*spacing - extent
			z := float32(j)*spacing - extent
			n := b.node(grid, fmt.Sprintf("crate-%d-%d", i, j), at(x, 0, z))
			b.model(n, crate)
			if (i+j)%2 == 0 {
				b.model(b.plain(n, fmt.Sprintf("marker-%d-%d", i, j)), marker)
			}
			d.Grid = append(d.Grid, n)
		}
	}
	if b.err == nil && len(d.Grid) > 0 {
		breathe := &scene.Morph{Name: "breathe", Targets: 1, Weights: []float32{0}}
		b.err = s.AttachMorph(d.Grid[0], scene.NewMorphInstance(breathe))
	}

	d.buildChain(b, root, extent+spacing)

	pivot := b.node(root, "lamp-pivot", scene.IdentityPose())
	d.Lamp = b.node(pivot, "lamp", at(extent+2, 4, 0))
	b.light(d.Lamp, scene.NewPointLight(mgl32.Vec4{1, 0.9, 0.7, 1}, scene.Attenuation{Constant: 1, Linear: 0.1}))

	if b.err != nil {
		return nil, b.err
	}

	d.Orbit = camera.NewOrbitCamera(Lens(cfg.Camera))
	d.Orbit.SetOrbit(0, cfg.Camera.Pitch, cfg.Camera.Distance)
	s.AddCamera(d.Orbit)

	tip := root
	if len(d.Chain) > 0 {
		tip = d.Chain[len(d.Chain)-1]
	}
	d.Follow = camera.NewFollowCamera(Lens(cfg.Camera), func() mgl32.Vec3 {
		return tip.World().Col(3).Vec3()
	})
	s.AddCamera(d.Follow)

	d.buildSwings(pivot)

	if err := s.Prepare(); err != nil {
		return nil, err
	}
	d.Orbit.SetCenter(s.BBox().Center())

	log.Info("demo scene built",
		zap.Int("nodes", s.Arena().Len()),
		zap.Int("pages", s.Arena().PageCount()),
		zap.Int("crates", len(d.Grid)),
		zap.Int("joints", len(d.Chain)),
		zap.Int("lights", s.LightCount()),
	)
	return d, nil
}

// buildChain adds a rig at x holding a chain of joints one unit apart and a
// body skinned to them in that rest pose.
func (d *Demo) buildChain(b *builder, root *scene.Node, x float32) {
	joints := d.sim.Joints
	if joints == 0 || b.err != nil {
		return
	}

	rig := b.node(root, "rig", at(-x, 0, 0))
	parent := rig
	rest := mgl32.Translate3D(-x, 0, 0)
	invBind := make([]mgl32.Mat4, joints)
	for i := 0; i < joints; i++ {
		j := b.node(parent, fmt.Sprintf("joint-%d", i), at(0, 1, 0))
		rest = rest.Mul4(mgl32.Translate3D(0, 1, 0))
		invBind[i] = rest.Inv()
		d.Chain = append(d.Chain, j)
		parent = j
	}

	body := b.plain(rig, "body")
	d.Body = b.model(body, box("tentacle", mgl32.Vec3{-0.3, 0, -0.3}, mgl32.Vec3{0.3, float32(joints), 0.3}))
	if b.err != nil {
		return
	}

	sk, err := scene.NewSkin(d.Chain, invBind, mgl32.Ident4())
	if err != nil {
		b.err = err
		return
	}
	sk.Name = "tentacle"
	b.err = d.Scene.AttachController(body, &scene.ControllerInstance{Skin: sk})

	spot := scene.NewSpotLight(mgl32.Vec4{0.6, 0.8, 1, 1},
		scene.Attenuation{Constant: 1},
		scene.SpotCone{FalloffAngle: mgl32.DegToRad(30), FalloffExp: 2, CutoffCosine: float32(math.Cos(math.Pi / 6))})
	spot.Name = "tip"
	spot.DefaultDir = mgl32.Vec3{0, -1, 0}
	b.light(parent, spot)
}

// buildSwings sets up the tweens that animate the scene.
func (d *Demo) buildSwings(pivot *scene.Node) {
	dur := d.sim.TweenSeconds
	if dur <= 0 {
		dur = 1
	}

	for i, n := range d.Grid {
		n := n
		base := n.Transform().Pose().Translation
		sw := newSwing(0, 1, dur, ease.InOutSine, false, func(v float32) error {
			return n.SetTranslation(base.Add(mgl32.Vec3{0, v, 0}))
		})
		sw.tw.Update(dur * float32(i%4) / 4)
		d.swings = append(d.swings, sw)
	}

	for i, j := range d.Chain {
		j := j
		sw := newSwing(-0.35, 0.35, dur, ease.InOutQuad, false, func(v float32) error {
			return j.SetRotation(mgl32.QuatRotate(v, mgl32.Vec3{0, 0, 1}))
		})
		sw.tw.Update(dur * float32(i) / float32(len(d.Chain)+1))
		d.swings = append(d.swings, sw)
	}

	if pivot != nil {
		d.swings = append(d.swings, newSwing(0, 2*math.Pi, dur*4, ease.Linear, true, func(v float32) error {
			return pivot.SetRotation(mgl32.QuatRotate(v, mgl32.Vec3{0, 1, 0}))
		}))
	}
}
