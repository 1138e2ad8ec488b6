package scene

import "github.com/pkg/errors"

var (
	// ErrArenaExhausted is returned when a new node page would exceed the arena's page limit.
	ErrArenaExhausted = errors.New("node arena exhausted")
	// ErrNoRoot is returned when propagation runs on a scene without a root node.
	ErrNoRoot = errors.New("scene has no root node")
	// ErrNilNode is returned when a nil node is passed where one is required.
	ErrNilNode = errors.New("nil node")
	// ErrNodeFreed is returned when a freed arena slot is used as a node.
	ErrNodeFreed = errors.New("node has been freed")
	// ErrForeignNode is returned when a node from another scene is passed in.
	ErrForeignNode = errors.New("node belongs to another scene")
	// ErrDetached is returned when propagation targets a node not reachable from the root.
	ErrDetached = errors.New("node is not attached to the scene root")
	// ErrCycle is returned when re-parenting would make a node its own ancestor.
	ErrCycle = errors.New("node hierarchy cycle")
	// ErrNoTransform is returned when a pose is set on a node without an owned transform.
	ErrNoTransform = errors.New("node has no transform of its own")
	// ErrJointCount is returned when skin joint and inverse bind pose counts differ.
	ErrJointCount = errors.New("skin joint count mismatch")
)
