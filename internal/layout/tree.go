// Package layout 为家族树计算二维坐标。
//
// 算法为分层整齐树布局（Buchheim/Walker 改进算法，与 d3 的 tree() 一致）：
// 每个节点占用固定大小的槽位，兄弟节点从左到右互不重叠，父节点居中于子节点之上，
// 深度沿 y 轴向下增长，根节点位于 (0, 0)。结果只依赖输入，不含随机性。
package layout

import (
	"fmt"
	"math"

	"heritage_tree/internal/model"
)

// Config 布局配置
type Config struct {
	NodeWidth  float64 // 节点槽位宽度
	NodeHeight float64 // 层间距
	CardWidth  float64 // 卡片宽度，用于计算包围盒
	CardHeight float64 // 卡片高度
}

// DefaultConfig 默认布局配置
func DefaultConfig() Config {
	return Config{
		NodeWidth:  260,
		NodeHeight: 200,
		CardWidth:  200,
		CardHeight: 70,
	}
}

// Point 二维坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node 定位后的节点
type Node struct {
	X     float64                    `json:"x"`
	Y     float64                    `json:"y"`
	Depth int                        `json:"depth"`
	Data  *model.FamilyHierarchyNode `json:"-"`
}

// Person 节点对应的成员
func (n *Node) Person() model.Person {
	return n.Data.Person
}

// Edge 父节点到子节点的连线
type Edge struct {
	Source Point `json:"source"`
	Target Point `json:"target"`
}

// Path 竖直方向的三次贝塞尔曲线
func (e Edge) Path() string {
	my := (e.Source.Y + e.Target.Y) / 2
	return fmt.Sprintf("M%s,%sC%s,%s %s,%s %s,%s",
		num(e.Source.X), num(e.Source.Y),
		num(e.Source.X), num(my),
		num(e.Target.X), num(my),
		num(e.Target.X), num(e.Target.Y))
}

// Controls 贝塞尔曲线的两个控制点
func (e Edge) Controls() (Point, Point) {
	my := (e.Source.Y + e.Target.Y) / 2
	return Point{e.Source.X, my}, Point{e.Target.X, my}
}

func num(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

// Rect 矩形区域
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result 布局结果
type Result struct {
	Config Config  `json:"-"`
	Nodes  []*Node `json:"nodes"` // 先序
	Edges  []Edge  `json:"edges"`
}

// Bounds 未经视图变换的自然包围盒，包含卡片尺寸
func (r *Result) Bounds() Rect {
	if len(r.Nodes) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range r.Nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	hw, hh := r.Config.CardWidth/2, r.Config.CardHeight/2
	return Rect{
		X:      minX - hw,
		Y:      minY - hh,
		Width:  maxX - minX + 2*hw,
		Height: maxY - minY + 2*hh,
	}
}

// treeNode 布局过程中的辅助节点
type treeNode struct {
	data     *model.FamilyHierarchyNode
	parent   *treeNode
	children []*treeNode
	i        int // 在兄弟中的序号

	a      *treeNode // ancestor
	anc    *treeNode // default ancestor（仅父节点使用）
	thread *treeNode
	z      float64 // prelim
	m      float64 // mod
	c      float64 // change
	s      float64 // shift
	depth  int
}

// Tree 计算整棵树的坐标
func Tree(root *model.FamilyHierarchyNode, cfg Config) *Result {
	result := &Result{Config: cfg}
	if root == nil {
		return result
	}

	t := wrap(root)
	// 虚拟父节点，使根节点的兄弟/父节点访问统一
	top := &treeNode{children: []*treeNode{t}}
	top.a = top
	t.parent = top

	postOrder(t, firstWalk)
	top.m = -t.z
	preOrder(t, secondWalk)

	preOrder(t, func(v *treeNode) {
		n := &Node{
			X:     v.z * cfg.NodeWidth,
			Y:     float64(v.depth) * cfg.NodeHeight,
			Depth: v.depth,
			Data:  v.data,
		}
		result.Nodes = append(result.Nodes, n)
	})

	// 连线按先序生成，与节点顺序一致
	pos := make(map[*treeNode]Point)
	preOrder(t, func(v *treeNode) {
		pos[v] = Point{v.z * cfg.NodeWidth, float64(v.depth) * cfg.NodeHeight}
	})
	preOrder(t, func(v *treeNode) {
		for _, c := range v.children {
			result.Edges = append(result.Edges, Edge{Source: pos[v], Target: pos[c]})
		}
	})
	return result
}

func wrap(root *model.FamilyHierarchyNode) *treeNode {
	t := &treeNode{data: root}
	t.a = t
	stack := []*treeNode{t}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, c := range v.data.Children {
			w := &treeNode{data: c, parent: v, i: i, depth: v.depth + 1}
			w.a = w
			v.children = append(v.children, w)
		}
		stack = append(stack, v.children...)
	}
	return t
}

func postOrder(v *treeNode, fn func(*treeNode)) {
	for _, c := range v.children {
		postOrder(c, fn)
	}
	fn(v)
}

func preOrder(v *treeNode, fn func(*treeNode)) {
	fn(v)
	for _, c := range v.children {
		preOrder(c, fn)
	}
}

// separation 同一父节点的兄弟间隔 1 个槽位，其余间隔 2 个
func separation(a, b *treeNode) float64 {
	if a.parent == b.parent {
		return 1
	}
	return 2
}

func nextLeft(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[0]
	}
	return v.thread
}

func nextRight(v *treeNode) *treeNode {
	if len(v.children) > 0 {
		return v.children[len(v.children)-1]
	}
	return v.thread
}

func moveSubtree(wm, wp *treeNode, shift float64) {
	change := shift / float64(wp.i-wm.i)
	wp.c -= change
	wp.s += shift
	wm.c += change
	wp.z += shift
	wp.m += shift
}

func executeShifts(v *treeNode) {
	var shift, change float64
	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.z += shift
		w.m += shift
		change += w.c
		shift += w.s + change
	}
}

func nextAncestor(vim, v, ancestor *treeNode) *treeNode {
	if vim.a.parent == v.parent {
		return vim.a
	}
	return ancestor
}

func firstWalk(v *treeNode) {
	siblings := v.parent.children
	var w *treeNode
	if v.i > 0 {
		w = siblings[v.i-1]
	}
	if len(v.children) > 0 {
		executeShifts(v)
		midpoint := (v.children[0].z + v.children[len(v.children)-1].z) / 2
		if w != nil {
			v.z = w.z + separation(v, w)
			v.m = v.z - midpoint
		} else {
			v.z = midpoint
		}
	} else if w != nil {
		v.z = w.z + separation(v, w)
	}
	anc := v.parent.anc
	if anc == nil {
		anc = siblings[0]
	}
	v.parent.anc = apportion(v, w, anc)
}

func secondWalk(v *treeNode) {
	v.z += v.parent.m
	v.m += v.parent.m
}

func apportion(v, w, ancestor *treeNode) *treeNode {
	if w == nil {
		return ancestor
	}
	vip, vop := v, v
	vim := w
	vom := v.parent.children[0]
	sip, sop := vip.m, vop.m
	sim, som := vim.m, vom.m

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)
		if vim == nil || vip == nil {
			break
		}
		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.a = v
		shift := vim.z + sim - vip.z - sip + separation(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, ancestor), v, shift)
			sip += shift
			sop += shift
		}
		sim += vim.m
		sip += vip.m
		som += vom.m
		sop += vop.m
	}
	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.m += sim - sop
	}
	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.m += sip - som
		ancestor = v
	}
	return ancestor
}
