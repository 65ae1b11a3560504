package handlers

import (
	"log"
	"net/http"
	"strconv"

	"cleancity/config"
	"cleancity/database"
	"cleancity/llm"
	"cleancity/models"

	"github.com/gin-gonic/gin"
)

// Fallback replies when no model credential is configured or the call fails.
const (
	chatFallbackReply = "I can help you report issues. Just ask!"
	chatOfflineReply  = "System Offline."
)

// Handlers holds all HTTP handlers
type Handlers struct {
	db     *database.Database
	config *config.Config
	chat   llm.Client
}

// NewHandlers creates a new handlers instance. chat may be nil when no
// provider credential is configured.
func NewHandlers(db *database.Database, cfg *config.Config, chat llm.Client) *Handlers {
	return &Handlers{
		db:     db,
		config: cfg,
		chat:   chat,
	}
}

// CreateReport persists a submitted report and acknowledges with the
// storage id and the client-generated complaint id.
func (h *Handlers) CreateReport(c *gin.Context) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid report payload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Save Failed"})
		return
	}

	seq, err := h.db.CreateReport(c.Request.Context(), &req)
	if err != nil {
		log.Printf("Failed to save report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Save Failed"})
		return
	}

	c.JSON(http.StatusCreated, models.CreateReportResponse{
		Message:     "Saved",
		ID:          seq,
		ComplaintID: req.ComplaintID,
	})
}

// ListReports returns all reports, newest first. Store failures are
// swallowed into an empty list so the dashboard always renders.
func (h *Handlers) ListReports(c *gin.Context) {
	reports, err := h.db.ListReports(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list reports: %v", err)
		c.JSON(http.StatusOK, []models.Report{})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// UpdateReport applies a partial field merge. There is no existence check:
// an id matching no record still reports success.
func (h *Handlers) UpdateReport(c *gin.Context) {
	var upd models.ReportUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		log.Printf("Invalid update payload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error"})
		return
	}

	seq, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A malformed id behaves like a nonexistent one.
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		return
	}

	if err := h.db.UpdateReport(c.Request.Context(), seq, &upd); err != nil {
		log.Printf("Failed to update report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// DeleteReport permanently removes a report.
func (h *Handlers) DeleteReport(c *gin.Context) {
	seq, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if err := h.db.DeleteReport(c.Request.Context(), seq); err != nil {
		if err == database.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		log.Printf("Failed to delete report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete Error"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Permanently deleted"})
}

// Vote increments a report's vote counter. Voting on a nonexistent id is a
// silent no-op success.
func (h *Handlers) Vote(c *gin.Context) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid vote payload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Voting failed"})
		return
	}

	seq, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		return
	}

	if err := h.db.Vote(c.Request.Context(), seq, req.Type); err != nil {
		log.Printf("Failed to vote on report %d: %v", seq, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Voting failed"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// UpsertUser creates a profile on first sign-in or refreshes it afterwards.
func (h *Handlers) UpsertUser(c *gin.Context) {
	var req models.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Invalid user payload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User creation failed"})
		return
	}

	user, created, err := h.db.UpsertUser(c.Request.Context(), &req)
	if err != nil {
		log.Printf("Failed to upsert user %s: %v", req.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User creation failed"})
		return
	}

	status := http.StatusOK
	message := "User updated"
	if created {
		status = http.StatusCreated
		message = "User created"
	}

	c.JSON(status, models.UpsertUserResponse{
		Success: true,
		User:    user,
		Message: message,
	})
}

// GetUser fetches a profile by external identity id.
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.db.GetUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		if err == database.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Failed to fetch user %s: %v", c.Param("uid"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// IsAdmin reports whether a profile holds the admin role. Any failure
// reads as false.
func (h *Handlers) IsAdmin(c *gin.Context) {
	isAdmin, err := h.db.IsAdmin(c.Request.Context(), c.Param("uid"))
	if err != nil {
		log.Printf("Failed to check admin role for %s: %v", c.Param("uid"), err)
		c.JSON(http.StatusOK, models.IsAdminResponse{IsAdmin: false})
		return
	}

	c.JSON(http.StatusOK, models.IsAdminResponse{IsAdmin: isAdmin})
}

// MakeAdmin promotes a profile to the admin role. The endpoint performs no
// authorization check; front it with infrastructure auth in production.
func (h *Handlers) MakeAdmin(c *gin.Context) {
	if err := h.db.PromoteUser(c.Request.Context(), c.Param("uid")); err != nil {
		if err == database.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Failed to promote user %s: %v", c.Param("uid"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to promote user"})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "User promoted to admin"})
}

// Chat relays a message to the configured text-generation model and returns
// its reply verbatim, degrading to a static fallback.
func (h *Handlers) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, models.ChatResponse{Reply: chatOfflineReply})
		return
	}

	if h.chat == nil {
		c.JSON(http.StatusOK, models.ChatResponse{Reply: chatFallbackReply})
		return
	}

	reply, err := h.chat.Reply(req.Message)
	if err != nil {
		log.Printf("Chat relay via %s failed: %v", h.chat.SourceName(), err)
		c.JSON(http.StatusOK, models.ChatResponse{Reply: chatOfflineReply})
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Reply: reply})
}

// Leaderboard returns the top reporters.
func (h *Handlers) Leaderboard(c *gin.Context) {
	records, err := h.db.GetTopScores(c.Request.Context(), h.config.LeaderboardSize)
	if err != nil {
		log.Printf("Failed to get leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leaderboard"})
		return
	}

	c.JSON(http.StatusOK, models.LeaderboardResponse{Records: records})
}
