package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pudocs/dept-portal-api/internal/middleware"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/service"
)

// Registry bundles the handlers wired into the router.
type Registry struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Staff      *StaffHandler
	Notices    *NoticeHandler
	Exams      *ExamHandler
	Attendance *AttendanceHandler
	Fees       *FeeHandler
	Timetables *TimetableHandler
	Sync       *SyncHandler
	Exports    *ExportHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts every API route under the prefix group.
func RegisterRoutes(api *gin.RouterGroup, reg Registry, authSvc *service.AuthService) {
	office := middleware.RequireRoles(models.RoleOffice)
	staffOrOffice := middleware.RequireRoles(models.RoleStaff, models.RoleOffice)

	auth := api.Group("/auth")
	{
		auth.POST("/login", reg.Auth.Login)
		auth.POST("/manual-login", reg.Auth.ManualLogin)
		auth.POST("/register", reg.Auth.Register)

		protected := auth.Group("", middleware.JWT(authSvc))
		protected.POST("/manual-register", office, reg.Auth.RegisterManual)
		protected.PUT("/password", reg.Auth.ChangePassword)
		protected.POST("/logout", reg.Auth.Logout)
		protected.GET("/session", reg.Auth.Session)
	}

	secured := api.Group("", middleware.JWT(authSvc))

	students := secured.Group("/students")
	{
		students.GET("", reg.Students.List)
		students.GET("/:id", reg.Students.Get)
		students.POST("", office, reg.Students.Create)
		students.PUT("/:id", office, reg.Students.Update)
		students.DELETE("/:id", office, reg.Students.Delete)
	}

	staff := secured.Group("/staff")
	{
		staff.GET("", reg.Staff.List)
		staff.GET("/:id", reg.Staff.Get)
		staff.POST("", office, reg.Staff.Create)
		staff.PUT("/:id", office, reg.Staff.Update)
		staff.DELETE("/:id", office, reg.Staff.Delete)
	}

	notices := secured.Group("/notices")
	{
		notices.GET("", reg.Notices.ListNotices)
		notices.POST("", staffOrOffice, reg.Notices.CreateNotice)
		notices.POST("/:id/review", office, reg.Notices.ReviewNotice)
		notices.DELETE("/:id", office, reg.Notices.DeleteNotice)
	}

	events := secured.Group("/events")
	{
		events.GET("", reg.Notices.ListEvents)
		events.POST("", staffOrOffice, reg.Notices.CreateEvent)
		events.POST("/:id/review", office, reg.Notices.ReviewEvent)
		events.DELETE("/:id", office, reg.Notices.DeleteEvent)
	}

	exams := secured.Group("/exams")
	{
		exams.GET("", reg.Exams.List)
		exams.GET("/:id", reg.Exams.Get)
		exams.GET("/:id/eligibility", reg.Exams.Eligibility)
		exams.POST("", staffOrOffice, reg.Exams.Create)
		exams.PUT("/:id", staffOrOffice, reg.Exams.Update)
		exams.DELETE("/:id", office, reg.Exams.Delete)
	}

	results := secured.Group("/results")
	{
		results.POST("", staffOrOffice, reg.Exams.PublishResult)
		results.GET("/:register_number", reg.Exams.ListResults)
		results.GET("/:register_number/:exam_id", reg.Exams.GetResult)
	}

	attendance := secured.Group("/attendance")
	{
		attendance.GET("", reg.Attendance.List)
		attendance.POST("", staffOrOffice, reg.Attendance.Mark)
		attendance.GET("/summary/:register_number", reg.Attendance.StudentSummary)
		attendance.GET("/:date/:subject", reg.Attendance.Get)
	}

	fees := secured.Group("/fees")
	{
		fees.POST("", office, reg.Fees.Record)
		fees.GET("/student/:register_number", reg.Fees.ListByStudent)
		fees.GET("/:id", reg.Fees.Get)
	}

	timetables := secured.Group("/timetables")
	{
		timetables.GET("", reg.Timetables.Get)
		timetables.PUT("", staffOrOffice, reg.Timetables.Save)
		timetables.DELETE("", office, reg.Timetables.Delete)
	}

	sync := secured.Group("/sync")
	{
		sync.POST("", reg.Sync.Trigger)
		sync.GET("/status", reg.Sync.Status)
		sync.DELETE("", reg.Sync.Cancel)
	}

	if reg.Exports != nil {
		exports := secured.Group("/exports", office)
		exports.POST("/roster", reg.Exports.Roster)
		exports.POST("/marksheet/:register_number/:exam_id", reg.Exports.Marksheet)
	}

	if reg.Metrics != nil {
		secured.GET("/metrics/snapshot", office, reg.Metrics.Snapshot)
	}
}
