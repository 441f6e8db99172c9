package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"klaso-client/internal/model"
	"klaso-client/internal/report"
	"klaso-client/internal/stats"
	"klaso-client/internal/storage"
	"klaso-client/pkg/errors"

	"github.com/gin-gonic/gin"
)

const defaultExportListLimit = 50

type classroomStatistics struct {
	ClassroomID    model.ID                `json:"classroomId"`
	Average        float64                 `json:"average"`
	AttendanceRate float64                 `json:"attendanceRate"`
	Rankings       []stats.Ranking         `json:"rankings"`
	Attendance     []model.AttendanceStats `json:"attendance"`
}

// ClassroomStatistics computes figures from the cached grades and attendance
// of a classroom; nothing is fetched.
func (h *Handler) ClassroomStatistics(c *gin.Context) {
	classroomID := model.ID(c.Param("id"))
	grades := h.repos.Grades.Snapshot()
	records := h.repos.Attendances.Snapshot()

	rankings := stats.Rank(stats.ClassroomAverages(grades, classroomID))
	for i := range rankings {
		rankings[i].Average = stats.Round2(rankings[i].Average)
	}

	c.JSON(http.StatusOK, classroomStatistics{
		ClassroomID:    classroomID,
		Average:        stats.Round2(stats.ClassroomAverage(grades, classroomID)),
		AttendanceRate: stats.ClassroomAttendanceRate(records, classroomID),
		Rankings:       rankings,
		Attendance:     stats.ClassroomAttendance(records, classroomID),
	})
}

func (h *Handler) StudentBulletin(c *gin.Context) {
	bulletin, err := h.reports.Bulletin(model.ID(c.Param("id")), c.Query("period"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulletin)
}

func (h *Handler) ClassSummary(c *gin.Context) {
	summary, err := h.reports.ClassSummary(model.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ImportGrades creates grades from an uploaded workbook.
func (h *Handler) ImportGrades(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Server.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}

	resp, err := h.importer.Import(c.Request.Context(), data, model.ID(c.Param("id")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info().
		Str("classroom_id", c.Param("id")).
		Str("filename", fileHeader.Filename).
		Int("created", resp.Created).
		Int("total", resp.Total).
		Msg("Grades imported")

	status := http.StatusCreated
	if len(resp.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

// CreateExport assembles the report from the cache, records it in the ledger
// and queues the workbook rendering.
func (h *Handler) CreateExport(c *gin.Context) {
	var req model.ExportRequest
	if !h.bind(c, &req) {
		return
	}

	draft, err := h.draftFor(req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	saved, err := report.NewSavedReport(h.session.Holder(), draft, now)
	if err != nil {
		h.respondError(c, err)
		return
	}

	export := &model.ReportExport{
		ID:         saved.ID,
		ReportType: saved.Type,
		Title:      saved.Title,
		CreatedBy:  saved.CreatedBy,
		Status:     model.ExportStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.ledger.InsertExport(c.Request.Context(), export); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.producer.EnqueueExportJob(c.Request.Context(), model.ExportJob{ExportID: saved.ID, Report: saved}); err != nil {
		msg := err.Error()
		if uerr := h.ledger.UpdateExportStatus(c.Request.Context(), saved.ID, model.ExportStatusFailed, nil, &msg); uerr != nil {
			h.log.Error().Err(uerr).Str("export_id", saved.ID).Msg("Failed to mark export as failed")
		}
		h.respondError(c, err)
		return
	}

	h.log.Info().Str("export_id", saved.ID).Str("type", string(saved.Type)).Msg("Export queued")
	c.JSON(http.StatusAccepted, gin.H{"id": saved.ID, "status": model.ExportStatusPending, "report": saved})
}

func (h *Handler) draftFor(req model.ExportRequest) (report.Draft, error) {
	draft := report.Draft{Title: req.Title, Type: req.Type, Period: req.Period}

	switch req.Type {
	case model.ReportTypeStudentBulletin:
		bulletin, err := h.reports.Bulletin(req.StudentID, req.Period)
		if err != nil {
			return draft, err
		}
		student, _ := h.repos.Students.CachedByID(req.StudentID)
		draft.StudentID = student.ID
		draft.ClassroomID = student.ClassroomID
		draft.Bulletin = &bulletin
	case model.ReportTypeClassSummary:
		summary, err := h.reports.ClassSummary(req.ClassroomID)
		if err != nil {
			return draft, err
		}
		draft.ClassroomID = req.ClassroomID
		draft.Summary = &summary
	default:
		return draft, fmt.Errorf("%w: unsupported report type %q", errors.ErrSchemaValidation, req.Type)
	}

	if classroom, ok := h.repos.Classrooms.CachedByID(draft.ClassroomID); ok {
		draft.AcademicYear = classroom.AcademicYear
	}
	return draft, nil
}

// ownExport loads an export of the signed-in user. Exports of other users
// are reported as missing.
func (h *Handler) ownExport(c *gin.Context) (*model.ReportExport, bool) {
	user, err := h.session.Holder().Require()
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}

	export, err := h.ledger.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if export.CreatedBy != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "export not found"})
		return nil, false
	}
	return export, true
}

func (h *Handler) ExportStatus(c *gin.Context) {
	export, ok := h.ownExport(c)
	if !ok {
		return
	}

	resp := model.ExportStatusResponse{
		ID:        export.ID,
		Status:    export.Status,
		UpdatedAt: export.UpdatedAt,
	}
	if export.S3Path != nil {
		resp.S3Path = *export.S3Path
	}
	if export.ErrorMessage != nil {
		resp.Error = *export.ErrorMessage
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListExports(c *gin.Context) {
	user, err := h.session.Holder().Require()
	if err != nil {
		h.respondError(c, err)
		return
	}

	limit := defaultExportListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	exports, err := h.ledger.ListExports(c.Request.Context(), user.ID, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exports)
}

func (h *Handler) DownloadExport(c *gin.Context) {
	export, ok := h.ownExport(c)
	if !ok {
		return
	}
	if export.Status != model.ExportStatusDone || export.S3Path == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "export is not ready", "status": export.Status})
		return
	}

	body, err := h.archive.Download(c.Request.Context(), *export.S3Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, storage.XLSXContentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s.xlsx"`, export.ID),
	})
}
