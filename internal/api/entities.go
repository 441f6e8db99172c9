package api

import (
	"context"
	"io"
	"net/http"

	"klaso-client/internal/model"
	"klaso-client/internal/repository"

	"github.com/gin-gonic/gin"
)

// Writer is the mutating half of an entity repository.
type Writer[T model.Entity, C any, U any] interface {
	Create(ctx context.Context, req C) (T, error)
	Update(ctx context.Context, id model.ID, req U) (T, error)
	Delete(ctx context.Context, id model.ID) error
}

func createHandler[T model.Entity, C any, U any](h *Handler, repo Writer[T, C, U]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req C
		if !h.bind(c, &req) {
			return
		}

		item, err := repo.Create(c.Request.Context(), req)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func updateHandler[T model.Entity, C any, U any](h *Handler, repo Writer[T, C, U]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req U
		if !h.bind(c, &req) {
			return
		}

		item, err := repo.Update(c.Request.Context(), model.ID(c.Param("id")), req)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func deleteHandler[T model.Entity, C any, U any](h *Handler, repo Writer[T, C, U]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), model.ID(c.Param("id"))); err != nil {
			h.respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// loadHandler reloads the collection scoped by the :id parameter.
func loadHandler[T any](h *Handler, load func(ctx context.Context, parentID model.ID) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := load(c.Request.Context(), model.ID(c.Param("id")))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// Snapshotter is a repository that can be watched.
type Snapshotter[T any] interface {
	Subscribe() (<-chan []T, func())
}

// streamHandler pushes every snapshot of a repository as a server-sent event
// until the client goes away.
func streamHandler[T any](repo Snapshotter[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshots, cancel := repo.Subscribe()
		defer cancel()

		// Subscribe always holds the current snapshot; send it before waiting.
		c.SSEvent("snapshot", <-snapshots)
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case snap, ok := <-snapshots:
				if !ok {
					return false
				}
				c.SSEvent("snapshot", snap)
				return true
			}
		})
	}
}

func (h *Handler) LoadEstablishments(c *gin.Context) {
	items, err := h.repos.Establishments.LoadOwned(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) LoadAttendances(c *gin.Context) {
	classroomID := model.ID(c.Param("id"))

	var (
		items []model.Attendance
		err   error
	)
	if raw := c.Query("date"); raw != "" {
		date, perr := model.ParseDate(raw)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		items, err = h.repos.Attendances.LoadOnDate(c.Request.Context(), classroomID, date)
	} else {
		items, err = h.repos.Attendances.Load(c.Request.Context(), classroomID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type bulkAttendanceRequest struct {
	Records []model.CreateAttendanceRequest `json:"records" validate:"required,min=1,dive"`
}

func (h *Handler) CreateAttendances(c *gin.Context) {
	var req bulkAttendanceRequest
	if !h.bind(c, &req) {
		return
	}

	created, err := h.repos.Attendances.CreateMany(c.Request.Context(), req.Records)
	if err != nil {
		status := statusOf(err)
		c.JSON(status, gin.H{"error": err.Error(), "created": created})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) SaveEvaluationGrades(c *gin.Context) {
	var req model.EvaluationGradesRequest
	if !h.bind(c, &req) {
		return
	}

	grades, err := h.repos.Evaluations.SaveGrades(c.Request.Context(), model.ID(c.Param("id")), req.Grades)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

func (h *Handler) EvaluationGrades(c *gin.Context) {
	grades, err := h.repos.Evaluations.GradesOf(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

func (h *Handler) StudentGrades(c *gin.Context) {
	grades, err := h.repos.Grades.LoadForStudent(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

func (h *Handler) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, h.repos.Students.Roster(model.ID(c.Param("id"))))
}

func (h *Handler) PreloadClassroom(c *gin.Context) {
	result, err := h.preload.LoadClassroom(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		c.JSON(statusOf(err), gin.H{"error": err.Error(), "loaded": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) PreloadEstablishment(c *gin.Context) {
	result, err := h.preload.LoadEstablishment(c.Request.Context(), model.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// registerEntity mounts the create, update and delete endpoints of one entity
// type under path, and its snapshot stream under /streams.
func registerEntity[T model.Entity, C any, U any](h *Handler, g *gin.RouterGroup, path string, repo *repository.Repository[T, C, U]) {
	g.POST(path, createHandler[T, C, U](h, repo))
	g.PUT(path+"/:id", updateHandler[T, C, U](h, repo))
	g.DELETE(path+"/:id", deleteHandler[T, C, U](h, repo))
	g.GET("/streams"+path, streamHandler[T](repo))
}
