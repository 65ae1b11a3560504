package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report statuses as stored and served on the wire.
const (
	StatusReceived   = "Received"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// LatLng is a report location. Reports submitted without a usable GPS fix
// carry no location at all.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Report is a citizen-submitted civic issue record.
type Report struct {
	Seq          int64     `json:"id"`
	Category     string    `json:"category"`
	Location     *LatLng   `json:"location,omitempty"`
	Image        string    `json:"image"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	ComplaintID  string    `json:"complaintId"`
	ContactName  string    `json:"contactName,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Description  string    `json:"description,omitempty"`
	Upvotes      int       `json:"upvotes"`
	Downvotes    int       `json:"downvotes"`
	UserID       string    `json:"userId,omitempty"`
}

// CreateReportRequest is the report submission payload. The complaint id is
// client-generated; the storage id and timestamp are server-assigned.
type CreateReportRequest struct {
	Category     string  `json:"category"`
	Location     *LatLng `json:"location"`
	Image        string  `json:"image"`
	Status       string  `json:"status"`
	ComplaintID  string  `json:"complaintId"`
	ContactName  string  `json:"contactName"`
	ContactPhone string  `json:"contactPhone"`
	Description  string  `json:"description"`
	UserID       string  `json:"userId"`
}

// CreateReportResponse acknowledges a stored report.
type CreateReportResponse struct {
	Message     string `json:"message"`
	ID          int64  `json:"id"`
	ComplaintID string `json:"complaintId"`
}

// ReportUpdate is a partial field merge. Nil fields are left untouched.
// Status values are deliberately not validated against the enum; see the
// notes in DESIGN.md.
type ReportUpdate struct {
	Category     *string `json:"category"`
	Status       *string `json:"status"`
	Description  *string `json:"description"`
	ContactName  *string `json:"contactName"`
	ContactPhone *string `json:"contactPhone"`
	Image        *string `json:"image"`
	Location     *LatLng `json:"location"`
}

// VoteRequest carries a vote type, "up" or "down". Anything else counts as
// "down".
type VoteRequest struct {
	Type string `json:"type"`
}

// UserProfile is an identity-provider-linked profile.
type UserProfile struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// UpsertUserRequest creates or refreshes a profile after a sign-in.
type UpsertUserRequest struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UpsertUserResponse returns the stored profile plus whether it was created.
type UpsertUserResponse struct {
	Success bool         `json:"success"`
	User    *UserProfile `json:"user"`
	Message string       `json:"message"`
}

// IsAdminResponse is the role check result.
type IsAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// SuccessResponse is the generic mutation acknowledgment.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ChatRequest is a chatbot message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the relayed model reply, or a static fallback.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ScoreRecord is one leaderboard row.
type ScoreRecord struct {
	Place   int             `json:"place"`
	Title   string          `json:"title"`
	Reports int             `json:"reports"`
	Points  decimal.Decimal `json:"points"`
}

// LeaderboardResponse lists the top reporters.
type LeaderboardResponse struct {
	Records []ScoreRecord `json:"records"`
}
