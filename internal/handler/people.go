package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heritage_tree/internal/middleware"
	"heritage_tree/internal/model"
	"heritage_tree/internal/service"
)

func (h *Handler) listPeople(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.People.Directory(c.Query("q")))
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.deps.People.Profile(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) addPerson(c *gin.Context) {
	var p model.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		h.badRequest(c, err)
		return
	}
	created, err := h.deps.People.Add(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updatePerson(c *gin.Context) {
	var p model.Person
	if err := c.ShouldBindJSON(&p); err != nil {
		h.badRequest(c, err)
		return
	}
	updated, err := h.deps.People.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deletePerson(c *gin.Context) {
	user, _ := middleware.GetUserFromContext(c)
	confirmed := c.Query("confirm") == "true"
	if err := h.deps.People.Delete(c.Request.Context(), c.Param("id"), user, confirmed); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) export(c *gin.Context) {
	data, err := service.ExportPeople(h.deps.People.List())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+service.BackupFilename(time.Now())+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) importPeople(c *gin.Context) {
	reader := c.Request.Body
	if h.deps.MaxImportSize > 0 {
		reader = http.MaxBytesReader(c.Writer, reader, h.deps.MaxImportSize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, service.NewError(service.ErrTooLarge, fmt.Sprintf("import exceeds %d bytes", tooLarge.Limit), err))
			return
		}
		h.badRequest(c, err)
		return
	}
	people, err := service.ParseImport(body)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.deps.People.Replace(c.Request.Context(), people); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(people)})
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	if h.deps.Uploads == nil {
		h.fail(c, service.NewError(service.ErrConfig, "uploads are not configured", nil))
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		h.fail(c, service.NewError(service.ErrValidation, "photo file is required", err))
		return
	}
	url, err := h.deps.Uploads.UploadPhoto(file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photoUrl": url})
}
