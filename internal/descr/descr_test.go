package descr

import "testing"

func TestFind(t *testing.T) {
	n := &Node{Name: "root", Children: []*Node{
		{Name: "stem", Value: "a"},
		{Name: "stem", Value: "b"},
		{Name: "gramm", Value: "N"},
	}}
	got := n.Find("stem")
	if len(got) != 2 {
		t.Fatalf("Find(stem) returned %d nodes, want 2", len(got))
	}
	if got[0].Value != "a" || got[1].Value != "b" {
		t.Errorf("Find(stem) = %v, %v; want a, b", got[0].Value, got[1].Value)
	}
	if n.Find("missing") != nil {
		t.Errorf("Find(missing) = non-nil, want nil")
	}
}

func TestFindFirst(t *testing.T) {
	n := &Node{Name: "root", Children: []*Node{
		{Name: "stem", Value: "a"},
		{Name: "stem", Value: "b"},
	}}
	if got := n.FindFirst("stem"); got == nil || got.Value != "a" {
		t.Errorf("FindFirst(stem) = %v, want value a", got)
	}
	if n.FindFirst("missing") != nil {
		t.Errorf("FindFirst(missing) = non-nil, want nil")
	}
}

func TestNilReceiver(t *testing.T) {
	var n *Node
	if n.Find("x") != nil {
		t.Error("Find on nil receiver should return nil")
	}
	if n.FindFirst("x") != nil {
		t.Error("FindFirst on nil receiver should return nil")
	}
	if n.Clone() != nil {
		t.Error("Clone on nil receiver should return nil")
	}
}

func TestClone(t *testing.T) {
	orig := &Node{Name: "root", Value: "v", Children: []*Node{
		{Name: "child", Value: "c"},
	}}
	clone := orig.Clone()
	clone.Children[0].Value = "mutated"
	if orig.Children[0].Value != "c" {
		t.Error("Clone did not deep-copy children; mutation leaked into original")
	}
	if clone.Name != orig.Name || clone.Value != orig.Value {
		t.Error("Clone did not preserve Name/Value")
	}
}
