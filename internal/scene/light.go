package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/Faultbox/posegraph/pkg/geom"
)

// LightType identifies the light model.
type LightType uint8

const (
	LightAmbient LightType = iota + 1
	LightDirectional
	LightPoint
	LightSpot
	LightCustom
)

func (t LightType) String() string {
	switch t {
	case LightAmbient:
		return "ambient"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	case LightCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// DefaultLightDir is the bind-space direction lights point along unless told otherwise.
var DefaultLightDir = mgl32.Vec3{0, 0, -1}

// Attenuation holds distance falloff factors for point and spot lights.
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// SpotCone holds the cone parameters of a spot light.
type SpotCone struct {
	FalloffAngle float32 // radians
	FalloffExp   float32
	CutoffCosine float32
}

// Light is a light source, optionally attached to a node.
type Light struct {
	Type        LightType
	Name        string
	Color       mgl32.Vec4
	Attenuation Attenuation
	Spot        SpotCone
	DefaultDir  mgl32.Vec3 // bind space, never modified by the scene

	node        *Node
	scene       *Scene
	dir         mgl32.Vec3
	index       int
	transformed bool
	disabled    bool
	prev, next  *Light
}

// NewLight returns an unattached light pointing along DefaultLightDir.
func NewLight(t LightType) *Light {
	return &Light{
		Type:       t,
		Color:      mgl32.Vec4{1, 1, 1, 1},
		DefaultDir: DefaultLightDir,
		dir:        DefaultLightDir,
		index:      -1,
	}
}

// NewPointLight returns a point light with the given color and attenuation.
func NewPointLight(color mgl32.Vec4, att Attenuation) *Light {
	l := NewLight(LightPoint)
	l.Color = color
	l.Attenuation = att
	return l
}

// NewSpotLight returns a spot light with the given color, attenuation and cone.
func NewSpotLight(color mgl32.Vec4, att Attenuation, cone SpotCone) *Light {
	l := NewLight(LightSpot)
	l.Color = color
	l.Attenuation = att
	l.Spot = cone
	return l
}

// Node returns the owning node, or nil for a free-standing light.
func (l *Light) Node() *Node { return l.node }

// Dir returns the world-space direction computed at the last propagation.
func (l *Light) Dir() mgl32.Vec3 { return l.dir }

// Index returns the light's stable index in its scene, or -1.
func (l *Light) Index() int { return l.index }

// Transformed reports whether the direction was refreshed since ClearTransformed.
// Consumers that cache GPU-facing light state use it to decide on re-upload.
func (l *Light) Transformed() bool { return l.transformed }

// ClearTransformed resets the transformed signal after the consumer has caught up.
func (l *Light) ClearTransformed() { l.transformed = false }

func (l *Light) Enabled() bool      { return !l.disabled }
func (l *Light) SetEnabled(on bool) { l.disabled = !on }
func (l *Light) Next() *Light       { return l.next }
func (l *Light) Prev() *Light       { return l.prev }

// LightDirection rotates a bind-space direction by the rotation part of
// world and normalizes it.
func LightDirection(world mgl32.Mat4, def mgl32.Vec3) mgl32.Vec3 {
	return geom.NormalizeSafe(geom.RotateDir(world, def), DefaultLightDir)
}

func (l *Light) updateDirection(world mgl32.Mat4) {
	l.dir = LightDirection(world, l.DefaultDir)
	l.transformed = true
}

// AddLight appends a light to the scene's light list and assigns it the
// next index. Indices are never reused within a scene.
func (s *Scene) AddLight(l *Light) {
	if l.scene == s {
		return
	}
	l.scene = s
	l.prev = s.lastLight
	l.next = nil
	if s.lastLight == nil {
		s.lights = l
	} else {
		s.lastLight.next = l
	}
	s.lastLight = l

	l.index = s.lastLightIndex
	s.lastLightIndex++
	s.lightCount++

	if l.node == nil {
		l.dir = geom.NormalizeSafe(l.DefaultDir, DefaultLightDir)
		l.transformed = true
	}
}

// AttachLight puts l on node n, replacing any light already there, and
// queues n so the light direction is computed on the next frame.
func (s *Scene) AttachLight(n *Node, l *Light) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	if l.node != nil && l.node != n {
		return errors.Errorf("light %q already attached to node %d", l.Name, l.node.id)
	}
	if old := n.light; old != nil && old != l {
		s.RemoveLight(old)
	}
	n.light = l
	l.node = n
	s.AddLight(l)
	s.invalidate(n)
	return nil
}

// RemoveLight unlinks l from the scene and from its node.
func (s *Scene) RemoveLight(l *Light) {
	if l == nil || l.scene != s {
		return
	}
	if l.prev == nil {
		s.lights = l.next
	} else {
		l.prev.next = l.next
	}
	if l.next == nil {
		s.lastLight = l.prev
	} else {
		l.next.prev = l.prev
	}
	if l.node != nil && l.node.light == l {
		l.node.light = nil
	}
	l.node, l.scene, l.prev, l.next = nil, nil, nil, nil
	l.index = -1
	s.lightCount--
}

// FirstLight returns the head of the scene's light list.
func (s *Scene) FirstLight() *Light { return s.lights }

// LightCount returns the number of lights in the scene.
func (s *Scene) LightCount() int { return s.lightCount }
