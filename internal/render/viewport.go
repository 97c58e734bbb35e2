package render

import (
	"math"

	"heritage_tree/internal/layout"
	"heritage_tree/internal/model"
)

// DragThreshold 超过该距离（屏幕像素）的按下-移动视为拖拽，不再触发点击
const DragThreshold = 3.0

// wheelFactor 与浏览器滚轮增量对应的缩放系数
const wheelFactor = 0.002

// Viewport 交互层：平移、缩放与点击选择
type Viewport struct {
	scene     *Scene
	cfg       layout.ViewConfig
	transform layout.ViewTransform
	onSelect  func(model.Person)

	pressed  bool
	dragging bool
	start    layout.Point
	last     layout.Point
}

// NewViewport 创建视口，初始变换为首次取景
func NewViewport(scene *Scene, cfg layout.ViewConfig, viewportWidth float64, onSelect func(model.Person)) *Viewport {
	return &Viewport{
		scene:     scene,
		cfg:       cfg,
		transform: layout.InitialTransform(viewportWidth, cfg),
		onSelect:  onSelect,
	}
}

// Transform 当前视图变换
func (v *Viewport) Transform() layout.ViewTransform {
	return v.transform
}

// SetTransform 设置视图变换（缩放会被限制）
func (v *Viewport) SetTransform(t layout.ViewTransform) {
	v.transform = t.Clamped(v.cfg)
}

// PointerDown 按下
func (v *Viewport) PointerDown(x, y float64) {
	v.pressed = true
	v.dragging = false
	v.start = layout.Point{X: x, Y: y}
	v.last = v.start
}

// PointerMove 移动，按下状态下超过阈值后开始平移
func (v *Viewport) PointerMove(x, y float64) {
	if !v.pressed {
		return
	}
	if !v.dragging && math.Hypot(x-v.start.X, y-v.start.Y) > DragThreshold {
		v.dragging = true
	}
	if v.dragging {
		v.transform = v.transform.Translate(x-v.last.X, y-v.last.Y)
	}
	v.last = layout.Point{X: x, Y: y}
}

// PointerUp 抬起。未发生拖拽时视为点击，返回被选中的成员
func (v *Viewport) PointerUp(x, y float64) (model.Person, bool) {
	if !v.pressed {
		return model.Person{}, false
	}
	wasDrag := v.dragging
	v.pressed = false
	v.dragging = false
	if wasDrag {
		return model.Person{}, false
	}
	p, ok := v.Pick(x, y)
	if ok && v.onSelect != nil {
		v.onSelect(p)
	}
	return p, ok
}

// Wheel 滚轮缩放，以指针位置为中心
func (v *Viewport) Wheel(deltaY, x, y float64) {
	factor := math.Pow(2, -deltaY*wheelFactor)
	v.transform = v.transform.ScaleBy(factor, layout.Point{X: x, Y: y}, v.cfg)
}

// Pinch 双指缩放
func (v *Viewport) Pinch(factor, cx, cy float64) {
	v.transform = v.transform.ScaleBy(factor, layout.Point{X: cx, Y: cy}, v.cfg)
}

// Pick 屏幕坐标命中测试
func (v *Viewport) Pick(x, y float64) (model.Person, bool) {
	p := v.transform.Invert(layout.Point{X: x, Y: y})
	card, ok := v.scene.HitTest(p.X, p.Y)
	if !ok {
		return model.Person{}, false
	}
	return v.scene.Person(card.PersonID)
}
