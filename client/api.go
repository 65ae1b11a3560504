// Package client is the CleanCity application shell: a typed REST client,
// the view/state machinery driving the capture-classify-submit flow, and
// the map view model. Camera, classifier and geolocation are supplied by
// the embedder as black boxes.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cleancity/models"
)

const (
	ReportsEndpoint     = "/api/reports"
	UsersEndpoint       = "/api/users"
	ChatEndpoint        = "/api/chat"
	LeaderboardEndpoint = "/api/leaderboard"
)

// Client is a typed client for the CleanCity REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (c *Client) postJSON(path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(path, resp, out)
}

func (c *Client) do(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(path, resp, out)
}

func decodeResponse(path string, resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s (status %d)", path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// CreateReport submits a report and returns the server acknowledgment.
func (c *Client) CreateReport(req *models.CreateReportRequest) (*models.CreateReportResponse, error) {
	var out models.CreateReportResponse
	if err := c.postJSON(ReportsEndpoint, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports fetches all reports, newest first.
func (c *Client) ListReports() ([]models.Report, error) {
	var out []models.Report
	if err := c.do(http.MethodGet, ReportsEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReport applies a partial field merge to a report.
func (c *Client) UpdateReport(id int64, upd *models.ReportUpdate) error {
	return c.do(http.MethodPut, fmt.Sprintf("%s/%d", ReportsEndpoint, id), upd, nil)
}

// DeleteReport permanently removes a report.
func (c *Client) DeleteReport(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("%s/%d", ReportsEndpoint, id), nil, nil)
}

// Vote casts an "up" or "down" vote on a report.
func (c *Client) Vote(id int64, voteType string) error {
	return c.postJSON(fmt.Sprintf("%s/%d/vote", ReportsEndpoint, id),
		models.VoteRequest{Type: voteType}, nil)
}

// UpsertUser creates or refreshes a profile after a sign-in.
func (c *Client) UpsertUser(req *models.UpsertUserRequest) (*models.UpsertUserResponse, error) {
	var out models.UpsertUserResponse
	if err := c.postJSON(UsersEndpoint, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a profile by external identity id.
func (c *Client) GetUser(uid string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(http.MethodGet, UsersEndpoint+"/"+uid, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsAdmin checks a profile's role.
func (c *Client) IsAdmin(uid string) (bool, error) {
	var out models.IsAdminResponse
	if err := c.do(http.MethodGet, UsersEndpoint+"/"+uid+"/isAdmin", nil, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

// MakeAdmin promotes a profile to the admin role.
func (c *Client) MakeAdmin(uid string) error {
	return c.do(http.MethodPut, UsersEndpoint+"/"+uid+"/makeAdmin", nil, nil)
}

// Chat relays a message to the chatbot.
func (c *Client) Chat(message string) (string, error) {
	var out models.ChatResponse
	if err := c.postJSON(ChatEndpoint, models.ChatRequest{Message: message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Leaderboard fetches the top reporters.
func (c *Client) Leaderboard() ([]models.ScoreRecord, error) {
	var out models.LeaderboardResponse
	if err := c.do(http.MethodGet, LeaderboardEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}
