// Package camera provides cameras that observe a scene graph.
//
// Both cameras report parameter changes through Changed/ClearChanged so a
// scene can refresh camera-relative transforms without re-propagating poses.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/posegraph/pkg/geom"
)

// Lens holds perspective projection parameters.
type Lens struct {
	FovDeg float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultLens returns a 60 degree 16:9 lens.
func DefaultLens() Lens {
	return Lens{FovDeg: 60, Aspect: 16.0 / 9.0, Near: 0.1, Far: 1000}
}

// Projection returns the perspective matrix for the lens.
func (l Lens) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(l.FovDeg), l.Aspect, l.Near, l.Far)
}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Lens Lens

	center    mgl32.Vec3
	distance  float32 // Distance from center
	rotationX float32 // Pitch (vertical angle, radians)
	rotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	orbit   *orbitTween
	changed bool
}

// orbitTween holds active tweens for yaw, pitch and distance.
type orbitTween struct {
	yaw, pitch, distance *gween.Tween
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera(lens Lens) *OrbitCamera {
	return &OrbitCamera{
		Lens:            lens,
		distance:        40.0,
		rotationX:       0.5,
		MinDistance:     1.0,
		MaxDistance:     5000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		changed:         true,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cx, sx := gomath.Cos(float64(c.rotationX)), gomath.Sin(float64(c.rotationX))
	cy, sy := gomath.Cos(float64(c.rotationY)), gomath.Sin(float64(c.rotationY))
	offset := mgl32.Vec3{
		c.distance * float32(cx*sy),
		c.distance * float32(sx),
		c.distance * float32(cx*cy),
	}
	return c.center.Add(offset)
}

// View returns the view matrix for this camera.
func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.center, mgl32.Vec3{0, 1, 0})
}

// Projection returns the projection matrix for this camera.
func (c *OrbitCamera) Projection() mgl32.Mat4 { return c.Lens.Projection() }

// Changed reports whether the view changed since ClearChanged.
func (c *OrbitCamera) Changed() bool { return c.changed }

// ClearChanged acknowledges the last change.
func (c *OrbitCamera) ClearChanged() { c.changed = false }

func (c *OrbitCamera) Center() mgl32.Vec3 { return c.center }
func (c *OrbitCamera) Distance() float32  { return c.distance }
func (c *OrbitCamera) Pitch() float32     { return c.rotationX }
func (c *OrbitCamera) Yaw() float32       { return c.rotationY }

// SetCenter sets the camera's center point.
func (c *OrbitCamera) SetCenter(p mgl32.Vec3) {
	if p != c.center {
		c.center = p
		c.changed = true
	}
}

// SetOrbit places the camera at the given yaw, pitch and distance, applying constraints.
func (c *OrbitCamera) SetOrbit(yaw, pitch, distance float32) {
	c.rotationY = yaw
	c.rotationX = clamp(pitch, c.MinPitch, c.MaxPitch)
	c.distance = clamp(distance, c.MinDistance, c.MaxDistance)
	c.changed = true
}

// HandleDrag updates rotation based on a pointer drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.SetOrbit(c.rotationY-deltaX*c.DragSensitivity, c.rotationX+deltaY*c.DragSensitivity, c.distance)
}

// HandleZoom updates distance based on a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.SetOrbit(c.rotationY, c.rotationX, c.distance-delta*c.distance*c.ZoomSensitivity)
}

// FitToBounds centers the camera on box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(box geom.AABB) {
	if !box.IsValid() {
		return
	}
	c.SetCenter(box.Center())

	size := box.Size().Len()
	fov := float64(mgl32.DegToRad(c.Lens.FovDeg))
	dist := size / 2 / float32(gomath.Tan(fov/2))
	c.SetOrbit(c.rotationY, c.rotationX, dist)
}

// OrbitTo starts a tween of yaw, pitch and distance towards the targets.
// The tween advances with Update. A nil easeFn means linear.
func (c *OrbitCamera) OrbitTo(yaw, pitch, distance, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	pitch = clamp(pitch, c.MinPitch, c.MaxPitch)
	distance = clamp(distance, c.MinDistance, c.MaxDistance)
	c.orbit = &orbitTween{
		yaw:      gween.New(c.rotationY, yaw, duration, easeFn),
		pitch:    gween.New(c.rotationX, pitch, duration, easeFn),
		distance: gween.New(c.distance, distance, duration, easeFn),
	}
}

// Orbiting reports whether an OrbitTo tween is in progress.
func (c *OrbitCamera) Orbiting() bool { return c.orbit != nil }

// Update advances an active orbit tween by dt seconds.
func (c *OrbitCamera) Update(dt float32) {
	if c.orbit == nil {
		return
	}
	yaw, yawDone := c.orbit.yaw.Update(dt)
	pitch, pitchDone := c.orbit.pitch.Update(dt)
	dist, distDone := c.orbit.distance.Update(dt)
	c.SetOrbit(yaw, pitch, dist)
	if yawDone && pitchDone && distDone {
		c.orbit = nil
	}
}

// FollowCamera trails a moving target from behind and above.
type FollowCamera struct {
	Lens Lens

	Yaw      float32 // Horizontal rotation around target (radians)
	Pitch    float32 // Vertical angle (radians)
	Distance float32
	// LookHeight raises the look-at point above the target origin.
	LookHeight float32

	// Target returns the followed point, typically a node's world origin.
	Target func() mgl32.Vec3

	lastTarget mgl32.Vec3
	lastOrbit  [3]float32
	seen       bool
}

// NewFollowCamera creates a follow camera trailing target.
func NewFollowCamera(lens Lens, target func() mgl32.Vec3) *FollowCamera {
	return &FollowCamera{
		Lens:       lens,
		Pitch:      0.85,
		Distance:   15,
		LookHeight: 1,
		Target:     target,
	}
}

// Position calculates the camera position for the current target.
func (c *FollowCamera) Position() mgl32.Vec3 {
	target := c.target()
	offsetY := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	horiz := c.Distance * float32(gomath.Cos(float64(c.Pitch)))
	offsetX := horiz * float32(gomath.Sin(float64(c.Yaw)))
	offsetZ := horiz * float32(gomath.Cos(float64(c.Yaw)))
	return mgl32.Vec3{target[0] - offsetX, target[1] + offsetY, target[2] - offsetZ}
}

// View returns the view matrix looking at the target.
func (c *FollowCamera) View() mgl32.Mat4 {
	look := c.target().Add(mgl32.Vec3{0, c.LookHeight, 0})
	return mgl32.LookAtV(c.Position(), look, mgl32.Vec3{0, 1, 0})
}

// Projection returns the projection matrix for this camera.
func (c *FollowCamera) Projection() mgl32.Mat4 { return c.Lens.Projection() }

// Changed reports whether the target or orbit moved since ClearChanged.
func (c *FollowCamera) Changed() bool {
	if !c.seen {
		return true
	}
	return c.target() != c.lastTarget || c.orbitState() != c.lastOrbit
}

// ClearChanged records the current target and orbit as seen.
func (c *FollowCamera) ClearChanged() {
	c.lastTarget = c.target()
	c.lastOrbit = c.orbitState()
	c.seen = true
}

func (c *FollowCamera) target() mgl32.Vec3 {
	if c.Target == nil {
		return mgl32.Vec3{}
	}
	return c.Target()
}

func (c *FollowCamera) orbitState() [3]float32 {
	return [3]float32{c.Yaw, c.Pitch, c.Distance}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
