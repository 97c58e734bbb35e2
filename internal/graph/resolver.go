// Package graph 将扁平的成员列表解析为家族树。
//
// 父母、配偶关系都是按ID查找的弱引用：缺失或悬空的引用视为"未知"，
// 成环的数据通过祖先路径检测剪枝，不会导致无限递归。
package graph

import (
	"heritage_tree/internal/model"
)

// Index 成员索引：id -> 位置，parent id -> 子女位置（按存储顺序）
type Index struct {
	people   []model.Person
	byID     map[string]int
	children map[string][]int
}

// NewIndex 创建索引
func NewIndex(people []model.Person) *Index {
	idx := &Index{
		people:   people,
		byID:     make(map[string]int, len(people)),
		children: make(map[string][]int),
	}
	for i, p := range people {
		if _, exists := idx.byID[p.ID]; !exists {
			idx.byID[p.ID] = i
		}
		if p.FatherID != "" {
			idx.children[p.FatherID] = append(idx.children[p.FatherID], i)
		}
		if p.MotherID != "" && p.MotherID != p.FatherID {
			idx.children[p.MotherID] = append(idx.children[p.MotherID], i)
		}
	}
	return idx
}

// Get 按ID查找成员
func (idx *Index) Get(id string) (model.Person, bool) {
	i, ok := idx.byID[id]
	if !ok || id == "" {
		return model.Person{}, false
	}
	return idx.people[i], true
}

// Has 判断ID是否存在
func (idx *Index) Has(id string) bool {
	_, ok := idx.byID[id]
	return ok && id != ""
}

// Children 子女列表（按存储顺序）
func (idx *Index) Children(id string) []model.Person {
	list := idx.children[id]
	out := make([]model.Person, 0, len(list))
	for _, i := range list {
		out = append(out, idx.people[i])
	}
	return out
}

// Roots 没有父母信息的成员
func (idx *Index) Roots() []model.Person {
	var roots []model.Person
	for _, p := range idx.people {
		if p.IsRoot() {
			roots = append(roots, p)
		}
	}
	return roots
}

// Result 解析结果
type Result struct {
	Root       *model.FamilyHierarchyNode
	Suppressed []string // 因成环被剪掉的成员ID
	Excluded   int      // 与主根不相连、未出现在树中的成员数
}

// Resolve 选择主根并构建家族树。
// 主根为存储顺序中第一个没有父母的成员；没有这样的成员时回退到第一个成员。
func Resolve(people []model.Person) Result {
	if len(people) == 0 {
		return Result{}
	}
	idx := NewIndex(people)

	root := people[0]
	if roots := idx.Roots(); len(roots) > 0 {
		root = roots[0]
	}

	r := &resolver{idx: idx, path: make(map[string]bool), seen: make(map[string]bool)}
	node := r.build(root)

	excluded := 0
	for _, p := range people {
		if !r.seen[p.ID] {
			excluded++
		}
	}
	return Result{Root: node, Suppressed: r.suppressed, Excluded: excluded}
}

// BuildHierarchy 构建家族树，空列表返回 nil
func BuildHierarchy(people []model.Person) *model.FamilyHierarchyNode {
	return Resolve(people).Root
}

type resolver struct {
	idx        *Index
	path       map[string]bool
	seen       map[string]bool
	suppressed []string
}

func (r *resolver) build(p model.Person) *model.FamilyHierarchyNode {
	node := &model.FamilyHierarchyNode{Person: p, Children: []*model.FamilyHierarchyNode{}}
	r.seen[p.ID] = true
	r.path[p.ID] = true
	defer delete(r.path, p.ID)

	for _, c := range r.idx.Children(p.ID) {
		if r.path[c.ID] {
			r.suppressed = append(r.suppressed, c.ID)
			continue
		}
		node.Children = append(node.Children, r.build(c))
	}
	return node
}
