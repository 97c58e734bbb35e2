package handler

import (
	"heritage_tree/internal/layout"
	"heritage_tree/internal/model"
	"heritage_tree/internal/service"
)

// LoginRequest 管理员登录
type LoginRequest struct {
	Key string `json:"key" binding:"required"`
}

// PickRequest 屏幕坐标选中成员
type PickRequest struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	TX    *float64 `json:"tx"`
	TY    *float64 `json:"ty"`
	K     *float64 `json:"k"`
	Width float64  `json:"width" binding:"omitempty,gt=0"`
}

// IngestRequest AI 解析自由文本
type IngestRequest struct {
	Text  string `json:"text" binding:"required"`
	Apply bool   `json:"apply"`
}

// PublishRequest 发布目标覆盖项
type PublishRequest struct {
	Host   string `json:"host" binding:"omitempty,url"`
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Path   string `json:"path"`
	Token  string `json:"token"`
}

// Target 转换为发布目标
func (r PublishRequest) Target() service.PublishTarget {
	return service.PublishTarget{
		Host:   r.Host,
		Owner:  r.Owner,
		Repo:   r.Repo,
		Branch: r.Branch,
		Path:   r.Path,
		Token:  r.Token,
	}
}

// TreeNode 布局节点
type TreeNode struct {
	ID     string       `json:"id"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Depth  int          `json:"depth"`
	Person model.Person `json:"person"`
}

// TreeEdge 布局连线
type TreeEdge struct {
	SourceID string       `json:"sourceId"`
	TargetID string       `json:"targetId"`
	Source   layout.Point `json:"source"`
	Target   layout.Point `json:"target"`
	Path     string       `json:"path"`
}

// TreeResponse 布局结果
type TreeResponse struct {
	Nodes      []TreeNode           `json:"nodes"`
	Edges      []TreeEdge           `json:"edges"`
	Bounds     layout.Rect          `json:"bounds"`
	Transform  layout.ViewTransform `json:"transform"`
	Suppressed []string             `json:"suppressed"`
	Excluded   int                  `json:"excluded"`
}
