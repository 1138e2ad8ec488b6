package scene

import (
	"testing"

	"github.com/pkg/errors"
)

func TestArenaAllocateIDs(t *testing.T) {
	a := NewArena(4, 0, nil)

	for i := 0; i < 6; i++ {
		n, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate %d: %v", i, err)
		}
		if n.ID() != NodeID(i) {
			t.Errorf("node %d got id %d", i, n.ID())
		}
		if !n.Allocated() {
			t.Errorf("node %d not marked allocated", i)
		}
	}
	if a.PageCount() != 2 {
		t.Errorf("PageCount = %d, want 2", a.PageCount())
	}
	if a.Len() != 6 {
		t.Errorf("Len = %d, want 6", a.Len())
	}
}

func TestArenaReusesFreedSlot(t *testing.T) {
	a := NewArena(4, 0, nil)

	var nodes []*Node
	for i := 0; i < 4; i++ {
		n, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		nodes = append(nodes, n)
	}
	freed := nodes[1]
	a.Free(freed)
	if freed.Allocated() {
		t.Fatal("freed node still marked allocated")
	}

	n, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate after free: %v", err)
	}
	if n.ID() != 1 {
		t.Errorf("reused id = %d, want 1", n.ID())
	}
	if n != freed {
		t.Error("expected the freed slot to be handed out again")
	}
	if a.PageCount() != 1 {
		t.Errorf("PageCount = %d, want 1", a.PageCount())
	}
}

func TestArenaExhausted(t *testing.T) {
	a := NewArena(2, 1, nil)
	for i := 0; i < 2; i++ {
		if _, err := a.Allocate(); err != nil {
			t.Fatalf("Allocate %d: %v", i, err)
		}
	}
	_, err := a.Allocate()
	if errors.Cause(err) != ErrArenaExhausted {
		t.Fatalf("err = %v, want ErrArenaExhausted", err)
	}
}

func TestArenaHandlesStableAcrossPages(t *testing.T) {
	a := NewArena(2, 0, nil)
	first, _ := a.Allocate()
	first.Name = "first"
	for i := 0; i < 10; i++ {
		if _, err := a.Allocate(); err != nil {
			t.Fatalf("Allocate: %v", err)
		}
	}
	if a.Node(first.ID()) != first {
		t.Error("lookup by id returned a different node")
	}
	if first.Name != "first" {
		t.Errorf("first.Name = %q after growth", first.Name)
	}
}

func TestArenaEachSkipsFree(t *testing.T) {
	a := NewArena(4, 0, nil)
	var nodes []*Node
	for i := 0; i < 3; i++ {
		n, _ := a.Allocate()
		nodes = append(nodes, n)
	}
	a.Free(nodes[0])

	count := 0
	a.Each(func(n *Node) {
		if n == nodes[0] {
			t.Error("Each visited a freed node")
		}
		count++
	})
	if count != 2 {
		t.Errorf("Each visited %d nodes, want 2", count)
	}
}
