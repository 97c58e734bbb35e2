package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"heritage_tree/internal/layout"
	"heritage_tree/internal/model"
	"heritage_tree/internal/render"
	"heritage_tree/internal/service"
)

const (
	defaultViewportWidth  = 1200
	defaultViewportHeight = 800
)

func floatQuery(c *gin.Context, key string, def float64) (float64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, false
	}
	return v, true
}

// viewTransform 请求中的视图变换，未指定时使用初始视图
func (h *Handler) viewTransform(c *gin.Context, width float64) layout.ViewTransform {
	k, ok := floatQuery(c, "k", 0)
	if !ok {
		return layout.InitialTransform(width, h.deps.View)
	}
	tx, _ := floatQuery(c, "tx", 0)
	ty, _ := floatQuery(c, "ty", 0)
	return layout.ViewTransform{X: tx, Y: ty, K: k}.Clamped(h.deps.View)
}

func (h *Handler) treeJSON(c *gin.Context) {
	width, _ := floatQuery(c, "width", defaultViewportWidth)
	tree := h.deps.People.Tree("json")

	resp := TreeResponse{
		Nodes:      make([]TreeNode, 0, len(tree.Layout.Nodes)),
		Edges:      make([]TreeEdge, 0, len(tree.Layout.Edges)),
		Bounds:     tree.Layout.Bounds(),
		Transform:  layout.InitialTransform(width, h.deps.View),
		Suppressed: tree.Hierarchy.Suppressed,
		Excluded:   tree.Hierarchy.Excluded,
	}
	if resp.Suppressed == nil {
		resp.Suppressed = []string{}
	}

	byNode := make(map[*model.FamilyHierarchyNode]*layout.Node, len(tree.Layout.Nodes))
	for _, n := range tree.Layout.Nodes {
		byNode[n.Data] = n
		resp.Nodes = append(resp.Nodes, TreeNode{ID: n.Person().ID, X: n.X, Y: n.Y, Depth: n.Depth, Person: n.Person()})
	}
	for _, n := range tree.Layout.Nodes {
		for _, child := range n.Data.Children {
			cn := byNode[child]
			e := layout.Edge{Source: layout.Point{X: n.X, Y: n.Y}, Target: layout.Point{X: cn.X, Y: cn.Y}}
			resp.Edges = append(resp.Edges, TreeEdge{
				SourceID: n.Person().ID,
				TargetID: child.Person.ID,
				Source:   e.Source,
				Target:   e.Target,
				Path:     e.Path(),
			})
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) treeSVG(c *gin.Context) {
	width, _ := floatQuery(c, "width", defaultViewportWidth)
	height, _ := floatQuery(c, "height", defaultViewportHeight)
	tree := h.deps.People.Tree("svg")

	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, tree.Scene, h.viewTransform(c, width), width, height); err != nil {
		h.fail(c, service.NewError(service.ErrInternal, "failed to render svg", err))
		return
	}
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", buf.Bytes())
}

func (h *Handler) treePNG(c *gin.Context) {
	tree := h.deps.People.Tree("png")

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, tree.Scene); err != nil {
		h.fail(c, service.NewError(service.ErrInternal, "failed to render png", err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+render.ExportFilename(time.Now())+`"`)
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) pick(c *gin.Context) {
	var req PickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	width := req.Width
	if width == 0 {
		width = defaultViewportWidth
	}

	tree := h.deps.People.Tree("pick")
	vp := render.NewViewport(tree.Scene, h.deps.View, width, nil)
	if req.K != nil {
		t := layout.ViewTransform{K: *req.K}
		if req.TX != nil {
			t.X = *req.TX
		}
		if req.TY != nil {
			t.Y = *req.TY
		}
		vp.SetTransform(t)
	}

	p, ok := vp.Pick(req.X, req.Y)
	if !ok {
		h.fail(c, service.NewError(service.ErrNotFound, "no person at this point", nil))
		return
	}
	c.JSON(http.StatusOK, p)
}
