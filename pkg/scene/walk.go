package scene

import "github.com/taigrr/marionette/pkg/math3d"

// Visit describes one node reached by Walk.
type Visit struct {
	Node   *Node
	Parent *Node
	Depth  int
	// Global is the node's transform accumulated from the root.
	Global math3d.Mat4
}

// Walk visits every node under root in pre-order, children in declaration
// order. It uses an explicit stack so arbitrarily deep hierarchies cannot
// exhaust the goroutine stack. Returning false from fn stops the walk.
func Walk(root *Node, fn func(Visit) bool) {
	if root == nil {
		return
	}

	stack := []Visit{{Node: root, Global: root.Transform}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(v) {
			return
		}

		// Push in reverse so the first child is visited first.
		for i := len(v.Node.Children) - 1; i >= 0; i-- {
			child := v.Node.Children[i]
			stack = append(stack, Visit{
				Node:   child,
				Parent: v.Node,
				Depth:  v.Depth + 1,
				Global: v.Global.Mul(child.Transform),
			})
		}
	}
}

// Find returns the first node named name in pre-order, or nil.
func Find(root *Node, name string) *Node {
	var found *Node
	Walk(root, func(v Visit) bool {
		if v.Node.Name == name {
			found = v.Node
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes under and including root.
func Count(root *Node) int {
	n := 0
	Walk(root, func(Visit) bool {
		n++
		return true
	})
	return n
}
