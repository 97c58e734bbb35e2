// Package render 将布局结果绘制为 SVG / PNG，并处理平移、缩放和点击选择。
package render

import (
	"heritage_tree/internal/layout"
	"heritage_tree/internal/model"
)

// Style 卡片样式
type Style struct {
	CardWidth    float64 // 卡片宽度
	CardHeight   float64 // 卡片高度
	CardRadius   float64 // 圆角
	AvatarOffset float64 // 头像中心相对卡片左边缘的距离
	AvatarRadius float64 // 头像外圈半径
	ClipRadius   float64 // 头像裁剪半径
	TextOffset   float64 // 文字相对卡片左边缘的距离
	NameBudget   int     // 名字最大字符数
	Background   string  // 导出背景色
	LinkColor    string  // 连线颜色
	ExportMargin float64 // 导出边距
}

// DefaultStyle 默认样式
func DefaultStyle() Style {
	return Style{
		CardWidth:    200,
		CardHeight:   70,
		CardRadius:   12,
		AvatarOffset: 35,
		AvatarRadius: 23,
		ClipRadius:   22,
		TextOffset:   70,
		NameBudget:   20,
		Background:   "#f8fafc",
		LinkColor:    "#cbd5e1",
		ExportMargin: 50,
	}
}

// 性别配色
const (
	ColorMale   = "#3b82f6"
	ColorFemale = "#f43f5e"
	ColorOther  = "#64748b"
)

// GenderColor 卡片边框颜色
func GenderColor(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return ColorMale
	case model.GenderFemale:
		return ColorFemale
	default:
		return ColorOther
	}
}

// TruncateName 超出字符预算的名字截断并加省略号
func TruncateName(name string, budget int) string {
	r := []rune(name)
	if budget <= 3 || len(r) <= budget {
		return name
	}
	return string(r[:budget-2]) + "..."
}

// Card 一个成员卡片
type Card struct {
	PersonID string  `json:"personId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Name     string  `json:"name"`
	Years    string  `json:"years"`
	Stroke   string  `json:"stroke"`
	Avatar   string  `json:"avatar"`
	Initials string  `json:"-"`
}

// Link 一条连线
type Link struct {
	Edge layout.Edge `json:"edge"`
	Path string      `json:"path"`
}

// Scene 矢量场景
type Scene struct {
	Style  Style       `json:"-"`
	Cards  []Card      `json:"cards"`
	Links  []Link      `json:"links"`
	Bounds layout.Rect `json:"bounds"`
	people map[string]model.Person
}

// BuildScene 根据布局结果构建场景
func BuildScene(result *layout.Result, style Style) *Scene {
	scene := &Scene{
		Style:  style,
		Bounds: result.Bounds(),
		people: make(map[string]model.Person, len(result.Nodes)),
	}
	for _, e := range result.Edges {
		scene.Links = append(scene.Links, Link{Edge: e, Path: e.Path()})
	}
	for _, n := range result.Nodes {
		p := n.Person()
		scene.people[p.ID] = p
		scene.Cards = append(scene.Cards, Card{
			PersonID: p.ID,
			X:        n.X,
			Y:        n.Y,
			Name:     TruncateName(p.FullName(), style.NameBudget),
			Years:    p.Lifespan(),
			Stroke:   GenderColor(p.Gender),
			Avatar:   p.Avatar(),
			Initials: initials(p),
		})
	}
	return scene
}

func initials(p model.Person) string {
	var out []rune
	for _, s := range []string{p.FirstName, p.LastName} {
		if r := []rune(s); len(r) > 0 {
			out = append(out, r[0])
		}
	}
	return string(out)
}

// HitTest 场景坐标下命中的卡片，后绘制的优先
func (s *Scene) HitTest(x, y float64) (*Card, bool) {
	hw, hh := s.Style.CardWidth/2, s.Style.CardHeight/2
	for i := len(s.Cards) - 1; i >= 0; i-- {
		c := &s.Cards[i]
		if x >= c.X-hw && x <= c.X+hw && y >= c.Y-hh && y <= c.Y+hh {
			return c, true
		}
	}
	return nil, false
}

// Person 场景中卡片对应的成员
func (s *Scene) Person(id string) (model.Person, bool) {
	p, ok := s.people[id]
	return p, ok
}
