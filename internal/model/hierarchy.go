package model

// FamilyHierarchyNode 家族树节点，由成员列表派生，不持久化
type FamilyHierarchyNode struct {
	Person   Person                 `json:"person"`
	Children []*FamilyHierarchyNode `json:"children"`
}

// Walk 先序遍历
func (n *FamilyHierarchyNode) Walk(fn func(node *FamilyHierarchyNode, depth int)) {
	n.walk(fn, 0)
}

func (n *FamilyHierarchyNode) walk(fn func(node *FamilyHierarchyNode, depth int), depth int) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count 节点总数
func (n *FamilyHierarchyNode) Count() int {
	count := 0
	n.Walk(func(*FamilyHierarchyNode, int) { count++ })
	return count
}
