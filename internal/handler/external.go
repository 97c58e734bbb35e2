package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"heritage_tree/internal/model"
	"heritage_tree/internal/service"
)

var errAINotConfigured = service.NewError(service.ErrExternal, "AI service is not configured", nil)

func (h *Handler) generateBio(c *gin.Context) {
	if h.deps.Bio == nil {
		h.fail(c, errAINotConfigured)
		return
	}
	profile, err := h.deps.People.Profile(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var updated model.Person
	err = h.deps.Inflight.Do(c.Request.Context(), service.ActionBio, func(ctx context.Context) error {
		bio := h.deps.Bio.GenerateBio(ctx, profile.Person, profile.FamilyContext())
		var err error
		updated, err = h.deps.People.SetBio(ctx, profile.Person.ID, bio)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) ingest(c *gin.Context) {
	if h.deps.Parser == nil {
		h.fail(c, errAINotConfigured)
		return
	}
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	var people []model.Person
	err := h.deps.Inflight.Do(c.Request.Context(), service.ActionIngest, func(ctx context.Context) error {
		var err error
		people, err = h.deps.Parser.ParseFamilyText(ctx, req.Text)
		if err != nil {
			return err
		}
		if req.Apply {
			return h.deps.People.Replace(ctx, people)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"people": people, "applied": req.Apply})
}

func (h *Handler) publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		h.badRequest(c, err)
		return
	}
	target := h.deps.PublishTarget.Merge(req.Target())

	data, err := service.ExportPeople(h.deps.People.List())
	if err != nil {
		h.fail(c, err)
		return
	}

	var sha string
	err = h.deps.Inflight.Do(c.Request.Context(), service.ActionPublish, func(ctx context.Context) error {
		var err error
		sha, err = h.deps.Publisher.Publish(ctx, target, data)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commit": sha})
}
