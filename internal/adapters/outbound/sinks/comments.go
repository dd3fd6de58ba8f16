package sinks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// CommentOptions locate the pull request thread a report comment belongs to.
type CommentOptions struct {
	// BaseURL of the REST API, e.g. https://api.github.com.
	BaseURL string
	// Repo in "owner/name" form.
	Repo string
	Token string
	// Issue is the pull request number; PR comments live on the issue.
	Issue int
	Mode  domain.CommentMode
	// NoLGTM removes a previously posted comment instead of replacing it
	// with a "no issues" body when the report is clean.
	NoLGTM bool
}

// CommentSink maintains a single report comment on a pull request thread.
// In update mode the previous run's comment is edited in place; in create
// mode every run posts a fresh comment.
type CommentSink struct {
	client *http.Client
	opts   CommentOptions
	log    *log.Logger
}

func NewComments(client *http.Client, opts CommentOptions, logger *log.Logger) *CommentSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &CommentSink{client: client, opts: opts, log: logger}
}

func (s *CommentSink) Name() string { return "thread-comment" }

type issueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

func (s *CommentSink) Write(report *domain.Report) error {
	existing, err := s.findExisting()
	if err != nil {
		return err
	}

	if report.Passed && len(report.Diagnostics) == 0 && s.opts.NoLGTM {
		if existing != nil {
			return s.deleteComment(existing.ID)
		}
		return nil
	}

	body := markdownReport(report)
	if s.opts.Mode == domain.CommentsUpdate && existing != nil {
		return s.updateComment(existing.ID, body)
	}
	return s.createComment(body)
}

// findExisting scans the thread for a comment carrying the report marker.
func (s *CommentSink) findExisting() (*issueComment, error) {
	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments?per_page=100", s.opts.BaseURL, s.opts.Repo, s.opts.Issue)
	resp, err := s.do(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("listing comments", resp)
	}

	var comments []issueComment
	if err := json.NewDecoder(resp.Body).Decode(&comments); err != nil {
		return nil, fmt.Errorf("decoding comment list: %w", err)
	}
	for i := range comments {
		if strings.Contains(comments[i].Body, commentMarker) {
			return &comments[i], nil
		}
	}
	return nil, nil
}

func (s *CommentSink) createComment(body string) error {
	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", s.opts.BaseURL, s.opts.Repo, s.opts.Issue)
	resp, err := s.do(http.MethodPost, url, map[string]string{"body": body})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return apiError("creating comment", resp)
	}
	s.log.Debug("posted thread comment", "issue", s.opts.Issue)
	return nil
}

func (s *CommentSink) updateComment(id int64, body string) error {
	url := fmt.Sprintf("%s/repos/%s/issues/comments/%d", s.opts.BaseURL, s.opts.Repo, id)
	resp, err := s.do(http.MethodPatch, url, map[string]string{"body": body})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("updating comment", resp)
	}
	s.log.Debug("updated thread comment", "id", id)
	return nil
}

func (s *CommentSink) deleteComment(id int64) error {
	url := fmt.Sprintf("%s/repos/%s/issues/comments/%d", s.opts.BaseURL, s.opts.Repo, id)
	resp, err := s.do(http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return apiError("deleting comment", resp)
	}
	s.log.Debug("removed stale thread comment", "id", id)
	return nil
}

func (s *CommentSink) do(method, url string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

func apiError(action string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: %s: %s", action, resp.Status, strings.TrimSpace(string(raw)))
}
