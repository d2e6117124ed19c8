package rules

// Visitor receives the bottom-up traversal callbacks for one behavior
// over a rule tree. Operator callbacks are handed the already-computed
// results of their children; leaf callbacks are invoked directly.
// Callbacks must never inspect sibling nodes: all information flows
// through child results and the ambient record context.
type Visitor interface {
	IPv4(n IPv4Node, rec any) (any, error)
	IPv6(n IPv6Node, rec any) (any, error)
	Datetime(n DatetimeNode, rec any) (any, error)
	Integer(n IntegerNode, rec any) (any, error)
	Float(n FloatNode, rec any) (any, error)
	Constant(n ConstantNode, rec any) (any, error)
	Variable(n VariableNode, rec any) (any, error)
	List(n ListNode, items []any, rec any) (any, error)
	IPList(n IPListNode, items []any, rec any) (any, error)
	Logical(n LogicalNode, left, right any, rec any) (any, error)
	Comparison(n ComparisonNode, left, right any, rec any) (any, error)
	Math(n MathNode, left, right any, rec any) (any, error)
	Unary(n UnaryNode, operand any, rec any) (any, error)
}

func (n IPv4Node) Traverse(v Visitor, rec any) (any, error) {
	return v.IPv4(n, rec)
}

func (n IPv6Node) Traverse(v Visitor, rec any) (any, error) {
	return v.IPv6(n, rec)
}

func (n DatetimeNode) Traverse(v Visitor, rec any) (any, error) {
	return v.Datetime(n, rec)
}

func (n IntegerNode) Traverse(v Visitor, rec any) (any, error) {
	return v.Integer(n, rec)
}

func (n FloatNode) Traverse(v Visitor, rec any) (any, error) {
	return v.Float(n, rec)
}

func (n ConstantNode) Traverse(v Visitor, rec any) (any, error) {
	return v.Constant(n, rec)
}

func (n VariableNode) Traverse(v Visitor, rec any) (any, error) {
	return v.Variable(n, rec)
}

func (n ListNode) Traverse(v Visitor, rec any) (any, error) {
	items, err := traverseItems(n.Items, v, rec)
	if err != nil {
		return nil, err
	}
	return v.List(n, items, rec)
}

func (n IPListNode) Traverse(v Visitor, rec any) (any, error) {
	items, err := traverseItems(n.Items, v, rec)
	if err != nil {
		return nil, err
	}
	return v.IPList(n, items, rec)
}

func (n LogicalNode) Traverse(v Visitor, rec any) (any, error) {
	left, right, err := traversePair(n.Left, n.Right, v, rec)
	if err != nil {
		return nil, err
	}
	return v.Logical(n, left, right, rec)
}

func (n ComparisonNode) Traverse(v Visitor, rec any) (any, error) {
	left, right, err := traversePair(n.Left, n.Right, v, rec)
	if err != nil {
		return nil, err
	}
	return v.Comparison(n, left, right, rec)
}

func (n MathNode) Traverse(v Visitor, rec any) (any, error) {
	left, right, err := traversePair(n.Left, n.Right, v, rec)
	if err != nil {
		return nil, err
	}
	return v.Math(n, left, right, rec)
}

func (n UnaryNode) Traverse(v Visitor, rec any) (any, error) {
	operand, err := n.Operand.Traverse(v, rec)
	if err != nil {
		return nil, err
	}
	return v.Unary(n, operand, rec)
}

func traverseItems(items []Node, v Visitor, rec any) ([]any, error) {
	results := make([]any, len(items))
	for i, it := range items {
		r, err := it.Traverse(v, rec)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

func traversePair(left, right Node, v Visitor, rec any) (any, any, error) {
	l, err := left.Traverse(v, rec)
	if err != nil {
		return nil, nil, err
	}
	r, err := right.Traverse(v, rec)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}
