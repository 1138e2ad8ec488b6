package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Skin maps joint nodes to inverse bind poses. It is an immutable asset;
// the joint list holds weak references to nodes elsewhere in the graph.
type Skin struct {
	Name         string
	Joints       []*Node
	InvBindPoses []mgl32.Mat4
	BindShape    mgl32.Mat4
}

// NewSkin validates that every joint has an inverse bind pose.
// joints may be nil when every controller instance supplies its own list.
func NewSkin(joints []*Node, invBindPoses []mgl32.Mat4, bindShape mgl32.Mat4) (*Skin, error) {
	if joints != nil && len(joints) != len(invBindPoses) {
		return nil, errors.Wrapf(ErrJointCount, "%d joints, %d inverse bind poses", len(joints), len(invBindPoses))
	}
	return &Skin{
		Joints:       joints,
		InvBindPoses: invBindPoses,
		BindShape:    bindShape,
	}, nil
}

// JointCount returns the number of joints the skin binds.
func (sk *Skin) JointCount() int { return len(sk.InvBindPoses) }

// ControllerInstance binds a Skin to a model instance on a node.
type ControllerInstance struct {
	Skin *Skin
	// Joints overrides Skin.Joints for this instance when non-nil.
	Joints []*Node
	// Target receives the joint matrices. Defaults to the first model
	// instance on the controller's node.
	Target *ModelInstance

	node  *Node
	bound []jointRef
}

// jointRef pins a joint to the allocation it was bound to, so a slot the
// arena hands out again is not mistaken for the original joint.
type jointRef struct {
	node *Node
	gen  uint32
}

func (ci *ControllerInstance) target() *ModelInstance {
	if ci.Target != nil {
		return ci.Target
	}
	if ci.node != nil && len(ci.node.models) > 0 {
		return ci.node.models[0]
	}
	return nil
}

func (ci *ControllerInstance) joints() []*Node {
	if ci.Joints != nil {
		return ci.Joints
	}
	return ci.Skin.Joints
}

// bind records the allocation of each joint slot. Slots whose node pointer
// is unchanged keep their recorded allocation.
func (ci *ControllerInstance) bind() {
	joints := ci.joints()
	if len(ci.bound) != len(joints) {
		ci.bound = make([]jointRef, len(joints))
	}
	for i, j := range joints {
		b := &ci.bound[i]
		if j == b.node {
			continue
		}
		b.node, b.gen = j, 0
		if j != nil && j.Allocated() {
			b.gen = j.gen
		}
	}
}

// joint returns the i-th joint if it is still the allocation it was bound to.
func (ci *ControllerInstance) joint(i int) *Node {
	b := ci.bound[i]
	j := b.node
	if j == nil || !j.Allocated() || j.gen != b.gen || j.trans.Get() == nil {
		return nil
	}
	return j
}

// AttachController puts a skin controller on node n and registers it for resolution.
func (s *Scene) AttachController(n *Node, ci *ControllerInstance) error {
	if err := s.checkNode(n); err != nil {
		return err
	}
	if ci.Skin == nil {
		return errors.New("controller instance without skin")
	}
	if ci.Joints != nil && len(ci.Joints) != ci.Skin.JointCount() {
		return errors.Wrapf(ErrJointCount, "override has %d joints, skin has %d", len(ci.Joints), ci.Skin.JointCount())
	}
	if ci.node != nil && ci.node != n {
		return errors.Errorf("controller already attached to node %d", ci.node.id)
	}
	if old := n.controller; old != nil {
		s.removeController(old)
	}
	n.controller = ci
	ci.node = n
	ci.bind()
	s.skins = append(s.skins, ci)
	s.skinsPending = true
	return nil
}

func (s *Scene) removeController(ci *ControllerInstance) {
	for i, c := range s.skins {
		if c == ci {
			s.skins = append(s.skins[:i], s.skins[i+1:]...)
			break
		}
	}
	if ci.node != nil && ci.node.controller == ci {
		ci.node.controller = nil
	}
	ci.node = nil
}

// ResolveSkins recomputes the joint matrices of every registered controller:
//
//	joint[i] = jointWorld[i] * invBindPose[i] * bindShape
//
// A nil or freed joint keeps the matrix from the previous resolution
// (identity on first use), also after its slot is reused by another node.
// Returns the number of controllers resolved.
func (s *Scene) ResolveSkins() int {
	resolved := 0
	for _, ci := range s.skins {
		inst := ci.target()
		if inst == nil {
			continue
		}
		sk := ci.Skin
		count := sk.JointCount()

		if len(inst.Joints) != count {
			inst.Joints = identityMatrices(count)
		}
		if s.cfg.DrawBones && len(inst.JointsToDraw) != count {
			inst.JointsToDraw = identityMatrices(count)
		}

		ci.bind()
		for i := 0; i < count && i < len(ci.bound); i++ {
			j := ci.joint(i)
			if j == nil {
				continue
			}
			jw := j.trans.Get().world
			inst.Joints[i] = jw.Mul4(sk.InvBindPoses[i]).Mul4(sk.BindShape)
			if s.cfg.DrawBones {
				inst.JointsToDraw[i] = jw
			}
		}
		resolved++
	}
	s.skinsPending = false
	if resolved > 0 {
		s.log.Debug("skins resolved", zap.Int("controllers", resolved))
	}
	return resolved
}

func identityMatrices(n int) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, n)
	for i := range out {
		out[i] = mgl32.Ident4()
	}
	return out
}
