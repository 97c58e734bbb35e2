package layout

import (
	"fmt"
	"math"
)

// ViewConfig 视图变换配置
type ViewConfig struct {
	MinScale     float64 // 最小缩放
	MaxScale     float64 // 最大缩放
	InitialScale float64 // 初始缩放
	TopOffset    float64 // 初始时根节点距视口顶部的距离
}

// DefaultViewConfig 默认视图配置
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		MinScale:     0.1,
		MaxScale:     3,
		InitialScale: 0.8,
		TopOffset:    80,
	}
}

// Clamp 将缩放比例限制在配置范围内
func (c ViewConfig) Clamp(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return c.MinScale
	}
	return math.Max(c.MinScale, math.Min(c.MaxScale, k))
}

// ViewTransform 平移 + 等比缩放的仿射变换，作用在布局之后
type ViewTransform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity 单位变换
var Identity = ViewTransform{K: 1}

// InitialTransform 首次渲染的取景：根节点水平居中并靠近视口顶部
func InitialTransform(viewportWidth float64, cfg ViewConfig) ViewTransform {
	return ViewTransform{
		X: viewportWidth / 2,
		Y: cfg.TopOffset,
		K: cfg.Clamp(cfg.InitialScale),
	}
}

// Apply 场景坐标 -> 屏幕坐标
func (t ViewTransform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert 屏幕坐标 -> 场景坐标
func (t ViewTransform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Translate 平移（屏幕像素）
func (t ViewTransform) Translate(dx, dy float64) ViewTransform {
	return ViewTransform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

// ScaleTo 以屏幕上某点为中心缩放到 k，该点下的场景位置保持不动
func (t ViewTransform) ScaleTo(k float64, center Point, cfg ViewConfig) ViewTransform {
	k = cfg.Clamp(k)
	p := t.Invert(center)
	return ViewTransform{
		X: center.X - p.X*k,
		Y: center.Y - p.Y*k,
		K: k,
	}
}

// ScaleBy 按倍数缩放
func (t ViewTransform) ScaleBy(factor float64, center Point, cfg ViewConfig) ViewTransform {
	return t.ScaleTo(t.K*factor, center, cfg)
}

// Clamped 返回缩放被限制后的变换
func (t ViewTransform) Clamped(cfg ViewConfig) ViewTransform {
	t.K = cfg.Clamp(t.K)
	return t
}

// String SVG transform 属性
func (t ViewTransform) String() string {
	return fmt.Sprintf("translate(%s,%s) scale(%s)", num(t.X), num(t.Y), num(t.K))
}
