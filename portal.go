package portalclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Submission is one e-invoice submission as reported by the portal backend.
type Submission struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Recipient string    `json:"recipient"`
	Total     string    `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionPage is a cursor-paginated slice of submissions.
type SubmissionPage struct {
	Items      []Submission `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// SubmissionInput describes a new e-invoice submission. The document itself
// is referenced, not embedded; the portal stores business entities, not
// this client.
type SubmissionInput struct {
	Recipient   string `json:"recipient"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	DocumentRef string `json:"document_ref"`
}

// Connection is a third-party ERP connection.
type Connection struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Status      string    `json:"status"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ListSubmissions fetches one page of e-invoice submissions. Pass an empty
// cursor for the first page.
func (c *Client) ListSubmissions(ctx context.Context, cursor string) (SubmissionPage, error) {
	path := "/v1/submissions"
	if cursor != "" {
		path += "?cursor=" + url.QueryEscape(cursor)
	}
	var page SubmissionPage
	if err := c.getJSON(ctx, path, &page); err != nil {
		return SubmissionPage{}, err
	}
	return page, nil
}

// GetSubmission fetches a single submission by ID.
func (c *Client) GetSubmission(ctx context.Context, id string) (Submission, error) {
	if id == "" {
		return Submission{}, errors.New("submission id required")
	}
	var sub Submission
	if err := c.getJSON(ctx, "/v1/submissions/"+url.PathEscape(id), &sub); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// CreateSubmission submits a new e-invoice. An Idempotency-Key accompanies
// the call so a replay after a credential refresh cannot double-submit.
func (c *Client) CreateSubmission(ctx context.Context, in SubmissionInput) (Submission, error) {
	header := http.Header{}
	header.Set("Idempotency-Key", uuid.NewString())

	var sub Submission
	if err := c.postJSON(ctx, "/v1/submissions", in, &sub, header); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// ListConnections fetches the configured ERP connections.
func (c *Client) ListConnections(ctx context.Context) ([]Connection, error) {
	var out struct {
		Items []Connection `json:"items"`
	}
	if err := c.getJSON(ctx, "/v1/connections", &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// DisconnectConnection tears down an ERP connection on the backend.
func (c *Client) DisconnectConnection(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("connection id required")
	}
	return c.postJSON(ctx, "/v1/connections/"+url.PathEscape(id)+"/disconnect", struct{}{}, nil, nil)
}
