package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/login", handler.Login)
		auth.POST("/restore", handler.Restore)
		auth.POST("/logout", handler.Logout)
		auth.POST("/register", handler.Register)
		auth.POST("/forgot-password", handler.ForgotPassword)
		auth.POST("/reset-password", handler.ResetPassword)
		auth.GET("/me", handler.Me)

		repos := handler.repos
		registerEntity(handler, v1, "/establishments", repos.Establishments.Repository)
		registerEntity(handler, v1, "/classrooms", repos.Classrooms.Repository)
		registerEntity(handler, v1, "/students", repos.Students.Repository)
		registerEntity(handler, v1, "/grades", repos.Grades.Repository)
		registerEntity(handler, v1, "/attendances", repos.Attendances.Repository)
		registerEntity(handler, v1, "/evaluations", repos.Evaluations.Repository)

		v1.GET("/establishments", handler.LoadEstablishments)
		v1.GET("/establishments/:id/classrooms", loadHandler(handler, repos.Classrooms.Load))
		v1.POST("/establishments/:id/preload", handler.PreloadEstablishment)

		v1.GET("/classrooms/:id/students", loadHandler(handler, repos.Students.Load))
		v1.GET("/classrooms/:id/roster", handler.Roster)
		v1.GET("/classrooms/:id/grades", loadHandler(handler, repos.Grades.Load))
		v1.GET("/classrooms/:id/attendances", handler.LoadAttendances)
		v1.GET("/classrooms/:id/evaluations", loadHandler(handler, repos.Evaluations.Load))
		v1.POST("/classrooms/:id/preload", handler.PreloadClassroom)
		v1.POST("/classrooms/:id/grades/import", handler.ImportGrades)

		v1.GET("/students/:id/grades", handler.StudentGrades)
		v1.POST("/attendances/bulk", handler.CreateAttendances)
		v1.GET("/evaluations/:id/grades", handler.EvaluationGrades)
		v1.POST("/evaluations/:id/grades", handler.SaveEvaluationGrades)

		// Reports
		v1.GET("/classrooms/:id/statistics", handler.ClassroomStatistics)
		v1.GET("/classrooms/:id/summary", handler.ClassSummary)
		v1.GET("/students/:id/bulletin", handler.StudentBulletin)

		// Exports
		v1.POST("/exports", handler.CreateExport)
		v1.GET("/exports", handler.ListExports)
		v1.GET("/exports/:id", handler.ExportStatus)
		v1.GET("/exports/:id/download", handler.DownloadExport)
	}
}
