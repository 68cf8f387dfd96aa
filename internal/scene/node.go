package scene

import "assimp-media3d/internal/mathutil"

// Node is one element of the scene hierarchy.
// The tree is built through AddChild; nodes never appear twice.
type Node struct {
	Name      string
	Transform mathutil.Mat4 // relative to the parent
	Meshes    []int         // indices into Scene.Meshes
	Children  []*Node
	Parent    *Node
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: mathutil.Mat4Identity()}
}

// AddChild appends c to n and sets its parent.
func (n *Node) AddChild(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}

// Walk visits n and its descendants depth-first, parents before
// children. Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// WorldTransform chains the transforms from the root down to n.
func (n *Node) WorldTransform() mathutil.Mat4 {
	m := n.Transform
	for p := n.Parent; p != nil; p = p.Parent {
		m = mathutil.Mat4Mul(p.Transform, m)
	}
	return m
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	c := 0
	n.Walk(func(*Node, int) bool {
		c++
		return true
	})
	return c
}
