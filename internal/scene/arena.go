package scene

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of node slots per arena page when none is configured.
const DefaultPageSize = 64

// NodeID identifies an arena slot. It is stable for the life of the allocation.
type NodeID uint32

type nodePage struct {
	nodes []Node
	index int // position in Arena.pages
	used  int // high-water mark of slots handed out
	count int // slots currently allocated
}

// Arena hands out Node storage from fixed-size pages.
//
// Pages are never compacted or released, so a *Node stays valid until
// Free is called on it. Freed slots go on a free list and are reused
// before fresh slots are taken from the current page.
type Arena struct {
	pageSize int
	maxPages int
	pages    []*nodePage
	free     []*Node
	live     int
	log      *zap.Logger
}

// NewArena creates an arena with pageSize slots per page.
// maxPages <= 0 means no limit.
func NewArena(pageSize, maxPages int, log *zap.Logger) *Arena {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{
		pageSize: pageSize,
		maxPages: maxPages,
		log:      log,
	}
}

// Allocate returns a zeroed node marked as allocated.
func (a *Arena) Allocate() (*Node, error) {
	if n := len(a.free); n > 0 {
		node := a.free[n-1]
		a.free = a.free[:n-1]
		return a.claim(node), nil
	}

	var np *nodePage
	if len(a.pages) > 0 {
		np = a.pages[len(a.pages)-1]
	}

	if np == nil || np.used == len(np.nodes) {
		if a.maxPages > 0 && len(a.pages) >= a.maxPages {
			return nil, errors.Wrapf(ErrArenaExhausted, "%d pages of %d nodes", len(a.pages), a.pageSize)
		}
		np = &nodePage{
			nodes: make([]Node, a.pageSize),
			index: len(a.pages),
		}
		a.pages = append(a.pages, np)
		a.log.Debug("node page allocated", zap.Int("page", np.index), zap.Int("size", a.pageSize))
	}

	node := &np.nodes[np.used]
	node.page = np
	node.id = NodeID(np.index*a.pageSize + np.used)
	np.used++
	return a.claim(node), nil
}

func (a *Arena) claim(node *Node) *Node {
	id, page, gen := node.id, node.page, node.gen+1
	*node = Node{id: id, page: page, gen: gen, flags: nodeAllocated}
	page.count++
	a.live++
	return node
}

// Free releases the node's slot. Links and attachments are cleared; the
// caller is responsible for unlinking the node from the hierarchy first.
func (a *Arena) Free(node *Node) {
	if node == nil || !node.Allocated() {
		return
	}
	id, page, gen := node.id, node.page, node.gen
	*node = Node{id: id, page: page, gen: gen}
	page.count--
	a.live--
	a.free = append(a.free, node)
}

// Each calls fn for every allocated node, page by page in slot order.
func (a *Arena) Each(fn func(*Node)) {
	for _, np := range a.pages {
		if np.count == 0 {
			continue
		}
		for i := 0; i < np.used; i++ {
			if n := &np.nodes[i]; n.Allocated() {
				fn(n)
			}
		}
	}
}

// Node returns the allocated node in slot id, or nil.
func (a *Arena) Node(id NodeID) *Node {
	p, s := int(id)/a.pageSize, int(id)%a.pageSize
	if p >= len(a.pages) || s >= a.pages[p].used {
		return nil
	}
	if n := &a.pages[p].nodes[s]; n.Allocated() {
		return n
	}
	return nil
}

// PageCount returns the number of pages allocated so far.
func (a *Arena) PageCount() int { return len(a.pages) }

// PageSize returns the configured slots per page.
func (a *Arena) PageSize() int { return a.pageSize }

// Len returns the number of allocated nodes.
func (a *Arena) Len() int { return a.live }
