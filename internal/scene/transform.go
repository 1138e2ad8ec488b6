package scene

import "github.com/go-gl/mathgl/mgl32"

// TransformFlags hold the validity state of a Transform.
type TransformFlags uint8

const (
	// LocalValid is set once the local matrix reflects the current pose.
	LocalValid TransformFlags = 1 << iota
	// WorldValid is set once the world matrix reflects the current hierarchy.
	WorldValid
	// ViewPending marks a transform whose camera-relative state must be recomputed.
	ViewPending

	viewFull // the pending view refresh needs full final transforms
)

// Pose is the translation/rotation/scale source of a local matrix.
type Pose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityPose returns a pose that combines to the identity matrix.
func IdentityPose() Pose {
	return Pose{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Combiner builds a local matrix from a pose.
type Combiner func(p Pose) mgl32.Mat4

// CombineTRS returns Translate * Rotate * Scale.
func CombineTRS(p Pose) mgl32.Mat4 {
	t := mgl32.Translate3D(p.Translation[0], p.Translation[1], p.Translation[2])
	r := p.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// Transform is a local/world matrix pair with validity flags.
//
// A Transform has one owner node but may be shared by any number of
// descendants that have no transform of their own; see TransformRef.
type Transform struct {
	pose     Pose
	explicit bool // local was set directly; skip the combiner
	local    mgl32.Mat4
	world    mgl32.Mat4
	flags    TransformFlags
	final    []FinalTransform // indexed by camera slot
	epoch    uint32           // view pass that last refreshed final
}

func newTransform() *Transform {
	return &Transform{
		pose:  IdentityPose(),
		local: mgl32.Ident4(),
		world: mgl32.Ident4(),
	}
}

// Local returns the local matrix. It is only meaningful when LocalValid is set.
func (t *Transform) Local() mgl32.Mat4 { return t.local }

// World returns the world matrix. It is only meaningful when WorldValid is set.
func (t *Transform) World() mgl32.Mat4 { return t.world }

// Pose returns the pose the local matrix is combined from.
func (t *Transform) Pose() Pose { return t.pose }

// Flags returns the raw validity flags.
func (t *Transform) Flags() TransformFlags { return t.flags }

func (t *Transform) LocalValid() bool  { return t.flags&LocalValid != 0 }
func (t *Transform) WorldValid() bool  { return t.flags&WorldValid != 0 }
func (t *Transform) ViewPending() bool { return t.flags&ViewPending != 0 }

// Final returns the camera-relative transform computed for a camera slot.
func (t *Transform) Final(slot *CameraSlot) (FinalTransform, bool) {
	if slot == nil || slot.index >= len(t.final) || !t.final[slot.index].valid {
		return FinalTransform{}, false
	}
	return t.final[slot.index], true
}

func (t *Transform) finalAt(i int) *FinalTransform {
	if i >= len(t.final) {
		grown := make([]FinalTransform, i+1)
		copy(grown, t.final)
		t.final = grown
	}
	return &t.final[i]
}

func (t *Transform) combine(fn Combiner) {
	if !t.explicit {
		t.local = fn(t.pose)
	}
	t.flags |= LocalValid
}

// TransformRef is a node's reference to a Transform, tagged with whether
// the node owns it or shares its nearest ancestor's.
// A shared reference is read-only for the holder; its lifetime is the owner's.
type TransformRef struct {
	t     *Transform
	owned bool
}

// Owned returns a reference that owns t.
func Owned(t *Transform) TransformRef { return TransformRef{t: t, owned: true} }

// Shared returns a borrowed reference to t.
func Shared(t *Transform) TransformRef { return TransformRef{t: t} }

// Get returns the referenced transform, or nil.
func (r TransformRef) Get() *Transform { return r.t }

// IsOwned reports whether the holder owns the transform.
func (r TransformRef) IsOwned() bool { return r.owned && r.t != nil }

// IsShared reports whether the holder borrows an ancestor's transform.
func (r TransformRef) IsShared() bool { return !r.owned && r.t != nil }
