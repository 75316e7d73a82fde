// Package googletasks implements service.Remote using the Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todolist/internal/config"
	"todolist/internal/service"
)

const (
	// PageSize is the number of tasks or lists per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Remote using Google Tasks API.
type Client struct {
	svc *tasks.Service
}

var _ service.Remote = (*Client)(nil)

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}

	// Token source refreshes on its own.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithEndpoint creates a client talking to endpoint with httpClient (for
// testing).
func NewWithEndpoint(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	svc, err := tasks.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(endpoint))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// FindOrCreateList implements service.Remote.
func (c *Client) FindOrCreateList(ctx context.Context, title string) (service.RemoteList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.RemoteList{}, errors.New("list title required")
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var found *tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if found == nil && strings.EqualFold(strings.TrimSpace(list.Title), title) {
				found = list
			}
		}
		return nil
	})
	if err != nil {
		return service.RemoteList{}, wrapError(err)
	}
	if found != nil {
		return service.RemoteList{ID: found.Id, Title: found.Title}, nil
	}

	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.RemoteList{}, wrapError(err)
	}
	return service.RemoteList{ID: created.Id, Title: created.Title}, nil
}

// ListTasks implements service.Remote. Completed and hidden tasks are
// included; subtasks are flattened into the parent list order.
func (c *Client) ListTasks(ctx context.Context, listID string) ([]service.RemoteTask, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var all []*tasks.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			all = append(all, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	// Position is a zero-padded string, so lexical order is list order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].Position < all[j].Position })

	result := make([]service.RemoteTask, 0, len(all))
	for _, task := range all {
		if task.Deleted {
			continue
		}
		result = append(result, service.RemoteTask{
			ID:        task.Id,
			Title:     task.Title,
			Notes:     task.Notes,
			Completed: task.Status == statusCompleted,
		})
	}
	return result, nil
}

// ReplaceTasks implements service.Remote. The API inserts at the top of the
// list, so tasks are inserted last to first.
func (c *Client) ReplaceTasks(ctx context.Context, listID string, want []service.RemoteTask) error {
	existing, err := c.ListTasks(ctx, listID)
	if err != nil {
		return err
	}

	for _, task := range existing {
		if err := c.deleteTask(ctx, listID, task.ID); err != nil {
			return err
		}
	}

	for i := len(want) - 1; i >= 0; i-- {
		if err := c.insertTask(ctx, listID, want[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func (c *Client) insertTask(ctx context.Context, listID string, t service.RemoteTask) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	status := statusNeedsAction
	if t.Completed {
		status = statusCompleted
	}
	_, err := c.svc.Tasks.Insert(listID, &tasks.Task{
		Title:  t.Title,
		Notes:  t.Notes,
		Status: status,
	}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: todolist login)")
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
		return err
	}

	// Token refresh failures surface as plain errors from the oauth2 transport.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("token expired or revoked (run: todolist login)")
	}

	return err
}
