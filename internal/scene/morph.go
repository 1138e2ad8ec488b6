package scene

// Morph is an immutable set of morph targets with default weights.
type Morph struct {
	Name    string
	Targets int
	Weights []float32
}

// MorphInstance carries per-node morph weights. During propagation it is
// attached to every model instance on its node.
type MorphInstance struct {
	Morph   *Morph
	Weights []float32

	node *Node
}

// NewMorphInstance copies the morph's default weights.
func NewMorphInstance(m *Morph) *MorphInstance {
	w := make([]float32, len(m.Weights))
	copy(w, m.Weights)
	return &MorphInstance{Morph: m, Weights: w}
}

func (mi *MorphInstance) attachTo(inst *ModelInstance) {
	inst.Morph = mi
}
