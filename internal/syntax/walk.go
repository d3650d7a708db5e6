package syntax

// Inspect traverses the tree rooted at n in depth-first pre-order. If f
// returns false the children of that node are skipped.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}

// Walk traverses the tree rooted at n in depth-first pre-order and stops at
// the first non-nil error returned by f.
func Walk(n *Node, f func(*Node) error) error {
	if n == nil {
		return nil
	}
	if err := f(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := Walk(c, f); err != nil {
			return err
		}
	}
	return nil
}
