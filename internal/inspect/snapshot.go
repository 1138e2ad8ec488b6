package inspect

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/posegraph/internal/scene"
	"github.com/Faultbox/posegraph/pkg/geom"
)

// NodeInfo is the published state of one node.
type NodeInfo struct {
	ID            uint32     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Parent        *uint32    `json:"parent,omitempty"`
	Children      []uint32   `json:"children,omitempty"`
	OwnsTransform bool       `json:"owns_transform"`
	World         mgl32.Mat4 `json:"world"`
	Models        []string   `json:"models,omitempty"`
	Light         *uint32    `json:"light,omitempty"` // light index
	Skinned       bool       `json:"skinned,omitempty"`
	Morph         string     `json:"morph,omitempty"`

	bounds geom.AABB // union of the node's instance boxes
}

// CameraInfo is the published state of one camera slot.
type CameraInfo struct {
	Slot       int        `json:"slot"`
	View       mgl32.Mat4 `json:"view"`
	Projection mgl32.Mat4 `json:"projection"`
}

// Hit is a picking result.
type Hit struct {
	Node     uint32     `json:"node"`
	Name     string     `json:"name,omitempty"`
	Distance float32    `json:"distance"`
	Point    mgl32.Vec3 `json:"point"`
}

// LightInfo is the published state of one light.
type LightInfo struct {
	Index   int        `json:"index"`
	Name    string     `json:"name,omitempty"`
	Type    string     `json:"type"`
	Node    *uint32    `json:"node,omitempty"`
	Dir     mgl32.Vec3 `json:"dir"`
	Color   mgl32.Vec4 `json:"color"`
	Enabled bool       `json:"enabled"`
}

// FrameInfo carries the stats of the frame a snapshot was taken after.
type FrameInfo struct {
	Frame       int     `json:"frame"`
	Roots       int     `json:"roots"`
	Visited     int     `json:"visited"`
	ViewUpdated int     `json:"view_updated"`
	Skins       int     `json:"skins"`
	ElapsedUS   int64   `json:"elapsed_us"`
	FPS         float64 `json:"fps"`
}

// Snapshot is an immutable copy of scene state taken between frames.
type Snapshot struct {
	Frame         FrameInfo    `json:"frame"`
	Nodes         []NodeInfo   `json:"nodes"`
	Lights        []LightInfo  `json:"lights"`
	Cameras       []CameraInfo `json:"cameras"`
	Root          *uint32      `json:"root,omitempty"`
	Pages         int          `json:"pages"`
	PageSize      int          `json:"page_size"`
	Centroid      mgl32.Vec3   `json:"centroid"`
	CentroidCount int          `json:"centroid_count"`
	// Scene box corners, nil while no model instance has been placed.
	BBoxMin       *mgl32.Vec3  `json:"bbox_min,omitempty"`
	BBoxMax       *mgl32.Vec3  `json:"bbox_max,omitempty"`
}

// Camera returns the camera in the given slot.
func (s *Snapshot) Camera(slot int) (CameraInfo, bool) {
	for _, c := range s.Cameras {
		if c.Slot == slot {
			return c, true
		}
	}
	return CameraInfo{}, false
}

// Pick returns the nearest node whose model instances r hits.
func (s *Snapshot) Pick(r geom.Ray) (Hit, bool) {
	var best Hit
	found := false
	for _, n := range s.Nodes {
		t, ok := r.IntersectAABB(n.bounds)
		if !ok || (found && t >= best.Distance) {
			continue
		}
		best = Hit{Node: n.ID, Name: n.Name, Distance: t, Point: r.At(t)}
		found = true
	}
	return best, found
}

// Node returns the node with the given id.
func (s *Snapshot) Node(id uint32) (NodeInfo, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeInfo{}, false
}

func idOf(n *scene.Node) *uint32 {
	if n == nil {
		return nil
	}
	id := uint32(n.ID())
	return &id
}

// Capture copies the current state of sc. It must run on the goroutine that
// drives the scene.
func Capture(sc *scene.Scene, frame int, st scene.FrameStats) *Snapshot {
	snap := &Snapshot{
		Frame: FrameInfo{
			Frame:       frame,
			Roots:       st.Roots,
			Visited:     st.Visited,
			ViewUpdated: st.ViewUpdated,
			Skins:       st.Skins,
			ElapsedUS:   st.Elapsed.Microseconds(),
			FPS:         st.FPS(),
		},
		Root:          idOf(sc.Root()),
		Pages:         sc.Arena().PageCount(),
		PageSize:      sc.Arena().PageSize(),
		Centroid:      sc.Centroid(),
		CentroidCount: sc.CentroidCount(),
	}
	if box := sc.BBox(); box.IsValid() {
		snap.BBoxMin, snap.BBoxMax = &box.Min, &box.Max
	}

	sc.Each(func(n *scene.Node) {
		info := NodeInfo{
			ID:            uint32(n.ID()),
			Name:          n.Name,
			Parent:        idOf(n.Parent()),
			OwnsTransform: n.HasTransform(),
			World:         n.World(),
			Skinned:       n.Controller() != nil,
			bounds:        geom.EmptyAABB(),
		}
		for _, c := range n.Children() {
			info.Children = append(info.Children, uint32(c.ID()))
		}
		for _, m := range n.Models() {
			info.Models = append(info.Models, m.Model.Name)
			info.bounds.Merge(m.BBox)
		}
		if l := n.Light(); l != nil {
			idx := uint32(l.Index())
			info.Light = &idx
		}
		if mi := n.Morph(); mi != nil && mi.Morph != nil {
			info.Morph = mi.Morph.Name
		}
		snap.Nodes = append(snap.Nodes, info)
	})

	for _, slot := range sc.Cameras() {
		snap.Cameras = append(snap.Cameras, CameraInfo{
			Slot:       slot.Index(),
			View:       slot.Camera().View(),
			Projection: slot.Camera().Projection(),
		})
	}

	for l := sc.FirstLight(); l != nil; l = l.Next() {
		snap.Lights = append(snap.Lights, LightInfo{
			Index:   l.Index(),
			Name:    l.Name,
			Type:    l.Type.String(),
			Node:    idOf(l.Node()),
			Dir:     l.Dir(),
			Color:   l.Color,
			Enabled: l.Enabled(),
		})
	}
	return snap
}
