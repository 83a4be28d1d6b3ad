// Package transport exposes the dashboard API over HTTP: entity CRUD,
// connection status, financial reports, exports, transcript import and
// the assistant relay.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"botdesk/internal/assistant"
	"botdesk/internal/datasync"
	"botdesk/internal/domain/client"
	"botdesk/internal/domain/conversation"
	"botdesk/internal/domain/expense"
	"botdesk/internal/domain/project"
	"botdesk/internal/export"
	"botdesk/internal/report"
)

// Reminders runs the cutoff-reminder scan on demand.
type Reminders interface {
	CheckNow(ctx context.Context) int
}

// Assistant relays a dashboard message to the chatbot webhook.
type Assistant interface {
	Send(ctx context.Context, message string) (string, error)
}

// Server bundles the services the HTTP API fronts.
type Server struct {
	syncer        *datasync.Syncer
	projects      *project.Service
	clients       *client.Service
	expenses      *expense.Service
	conversations *conversation.Service
	assistant     Assistant
	reminders     Reminders
	logger        *slog.Logger
	now           func() time.Time
}

// Options configures a Server.
type Options struct {
	Syncer        *datasync.Syncer
	Projects      *project.Service
	Clients       *client.Service
	Expenses      *expense.Service
	Conversations *conversation.Service
	Assistant     Assistant
	Reminders     Reminders
	Logger        *slog.Logger
	Now           func() time.Time
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		syncer:        opts.Syncer,
		projects:      opts.Projects,
		clients:       opts.Clients,
		expenses:      opts.Expenses,
		conversations: opts.Conversations,
		assistant:     opts.Assistant,
		reminders:     opts.Reminders,
		logger:        logger,
		now:           now,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = corsOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/status", s.status)
		api.POST("/network", s.setNetwork)

		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.PUT("/projects/:id", s.updateProject)
		api.DELETE("/projects/:id", s.deleteProject)

		api.GET("/clients", s.listClients)
		api.GET("/clients/exists", s.clientExists)
		api.POST("/clients", s.createClient)
		api.PUT("/clients/:id", s.updateClient)
		api.DELETE("/clients/:id", s.deleteClient)

		api.GET("/expenses", s.listExpenses)
		api.POST("/expenses", s.createExpense)
		api.PUT("/expenses/:id", s.updateExpense)
		api.DELETE("/expenses/:id", s.deleteExpense)

		api.GET("/reports/expenses", s.expenseReport)
		api.GET("/reports/summary", s.financeSummary)

		api.GET("/export/projects.xlsx", s.exportProjectsXLSX)
		api.GET("/export/backup.json", s.exportBackup)
		api.GET("/export/report.pdf", s.exportReportPDF)
		api.GET("/export/analysis.docx", s.exportAnalysisDocx)
		api.POST("/import/backup", s.importBackup)

		api.GET("/conversations", s.listConversations)
		api.GET("/conversations/analysis", s.conversationAnalysis)
		api.POST("/import/conversations", s.importConversations)

		api.POST("/assistant/message", s.assistantMessage)
		api.POST("/reminders/check", s.checkReminders)
	}
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.syncer.Status())
}

func (s *Server) setNetwork(c *gin.Context) {
	var body struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "online flag is required")
		return
	}
	s.syncer.SetOnline(*body.Online)
	c.JSON(http.StatusOK, s.syncer.Status())
}

func (s *Server) listProjects(c *gin.Context) {
	c.JSON(http.StatusOK, s.projects.List(c.Request.Context()))
}

func (s *Server) createProject(c *gin.Context) {
	var p project.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid project payload")
		return
	}
	created, err := s.projects.Create(c.Request.Context(), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProject(c *gin.Context) {
	var p project.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid project payload")
		return
	}
	updated, err := s.projects.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		domainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listClients(c *gin.Context) {
	c.JSON(http.StatusOK, s.clients.List(c.Request.Context()))
}

func (s *Server) clientExists(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		badRequest(c, "name query parameter is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":   name,
		"exists": s.clients.ExistsByName(c.Request.Context(), name),
	})
}

func (s *Server) createClient(c *gin.Context) {
	var p client.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid client payload")
		return
	}
	created, err := s.clients.Create(c.Request.Context(), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateClient(c *gin.Context) {
	var p client.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid client payload")
		return
	}
	updated, err := s.clients.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteClient(c *gin.Context) {
	if err := s.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		domainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listExpenses(c *gin.Context) {
	c.JSON(http.StatusOK, s.expenses.List(c.Request.Context()))
}

func (s *Server) createExpense(c *gin.Context) {
	var p expense.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid expense payload")
		return
	}
	created, err := s.expenses.Create(c.Request.Context(), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateExpense(c *gin.Context) {
	var p expense.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid expense payload")
		return
	}
	updated, err := s.expenses.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteExpense(c *gin.Context) {
	if err := s.expenses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		domainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) expenseReport(c *gin.Context) {
	year, ok := s.yearParam(c)
	if !ok {
		return
	}
	months := s.expenses.Allocation(c.Request.Context(), year)
	c.JSON(http.StatusOK, gin.H{
		"year":   year,
		"months": months,
		"total":  expense.AnnualTotal(months),
	})
}

func (s *Server) financeSummary(c *gin.Context) {
	year, month, ok := s.monthParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	summary := report.Summarize(
		s.projects.List(ctx), s.expenses.List(ctx), year, month, s.now())
	c.JSON(http.StatusOK, summary)
}

func (s *Server) exportProjectsXLSX(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="proyectos.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.ProjectsXLSX(c.Writer, s.projects.List(c.Request.Context())); err != nil {
		s.logger.Error("spreadsheet export failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (s *Server) exportBackup(c *gin.Context) {
	ctx := c.Request.Context()
	c.Header("Content-Disposition", `attachment; filename="respaldo.json"`)
	c.Header("Content-Type", "application/json")
	err := export.WriteBackup(c.Writer,
		s.projects.List(ctx), s.clients.List(ctx), s.expenses.List(ctx), s.now())
	if err != nil {
		s.logger.Error("backup export failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (s *Server) exportReportPDF(c *gin.Context) {
	year, month, ok := s.monthParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	summary := report.Summarize(
		s.projects.List(ctx), s.expenses.List(ctx), year, month, s.now())
	months := s.expenses.Allocation(ctx, year)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="reporte-%d-%02d.pdf"`, year, month))
	c.Header("Content-Type", "application/pdf")
	if err := export.ReportPDF(c.Writer, summary, months); err != nil {
		s.logger.Error("pdf export failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func (s *Server) exportAnalysisDocx(c *gin.Context) {
	analysis, err := s.conversations.Analysis(c.Request.Context())
	if err != nil {
		s.logger.Error("analysis export failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analisis-conversaciones.docx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	if err := export.AnalysisDocx(c.Writer, analysis); err != nil {
		s.logger.Error("docx export failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// importBackup restores a previously exported backup: every record in
// the payload is upserted through the normal write path, so remote and
// snapshot stay consistent with the restored state.
func (s *Server) importBackup(c *gin.Context) {
	backup, err := export.ReadBackup(c.Request.Body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	restored := s.syncer.Restore(ctx, backup.Projects, backup.Clients, backup.Expenses)
	c.JSON(http.StatusOK, gin.H{
		"projects": len(backup.Projects),
		"clients":  len(backup.Clients),
		"expenses": len(backup.Expenses),
		"restored": restored,
	})
}

func (s *Server) listConversations(c *gin.Context) {
	conversations, err := s.conversations.List(c.Request.Context())
	if err != nil {
		s.logger.Error("conversation list failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (s *Server) conversationAnalysis(c *gin.Context) {
	analysis, err := s.conversations.Analysis(c.Request.Context())
	if err != nil {
		s.logger.Error("conversation analysis failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// importConversations accepts the transcript CSV either as a multipart
// "file" part or as the raw request body.
func (s *Server) importConversations(c *gin.Context) {
	body := c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		body = file
	}

	imported, skipped, err := s.conversations.Import(c.Request.Context(), body)
	if err != nil {
		if errors.Is(err, conversation.ErrMissingColumns) {
			badRequest(c, err.Error())
			return
		}
		s.logger.Error("conversation import failed", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skippedRows": skipped})
}

func (s *Server) assistantMessage(c *gin.Context) {
	var body struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "message is required")
		return
	}

	reply, err := s.assistant.Send(c.Request.Context(), body.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrNoEndpoint) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		s.logger.Warn("assistant relay failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (s *Server) checkReminders(c *gin.Context) {
	sent := s.reminders.CheckNow(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

func (s *Server) yearParam(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return s.now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 2000 || year > 2200 {
		badRequest(c, "invalid year")
		return 0, false
	}
	return year, true
}

func (s *Server) monthParams(c *gin.Context) (int, int, bool) {
	year, ok := s.yearParam(c)
	if !ok {
		return 0, 0, false
	}
	raw := c.Query("month")
	if raw == "" {
		return year, int(s.now().Month()), true
	}
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		badRequest(c, "invalid month")
		return 0, 0, false
	}
	return year, month, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// domainError maps service-layer errors onto HTTP statuses. Validation
// failures are the caller's fault; a missing record is 404; anything
// else is a server error.
func domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, datasync.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, datasync.ErrMissingID):
		badRequest(c, "identifier is required")
	case errors.Is(err, project.ErrEmptyName),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, project.ErrNegativePrice),
		errors.Is(err, project.ErrInvalidDate),
		errors.Is(err, client.ErrEmptyName),
		errors.Is(err, expense.ErrEmptyName),
		errors.Is(err, expense.ErrInvalidCategory),
		errors.Is(err, expense.ErrInvalidRecurrence):
		badRequest(c, err.Error())
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
