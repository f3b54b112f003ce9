package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"blog-comment-api/internal/metrics"
	"blog-comment-api/internal/reconciler"
	"blog-comment-api/internal/tree"
)

// commentClient is the HTTP implementation of reconciler.CommentAPI. It
// speaks the comment endpoints of the blog API and translates transport
// failures and server rejections into the error kinds the reconciler
// distinguishes between.
type commentClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewCommentClient creates a new comment API client. authToken may be empty
// for anonymous viewing; mutating calls will then be rejected by the server.
func NewCommentClient(baseURL string, authToken string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) reconciler.CommentAPI {
	return &commentClient{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

type listCommentsWire struct {
	Comments   []*tree.Comment       `json:"comments"`
	Pagination reconciler.Pagination `json:"pagination"`
}

type contentWire struct {
	Content string `json:"content"`
}

type likeWire struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type deleteWire struct {
	Deleted string `json:"deleted"`
}

type errorWire struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListComments fetches one flat page of an article's comments.
func (c *commentClient) ListComments(ctx context.Context, articleID int64, page, limit int, sortBy, order string) (*reconciler.ListResult, error) {
	path := fmt.Sprintf("/articles/%d/comments?page=%d&limit=%d&sort=%s&order=%s",
		articleID, page, limit, sortBy, order)

	var wire listCommentsWire
	if err := c.do(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	return &reconciler.ListResult{
		Comments:   wire.Comments,
		Pagination: wire.Pagination,
	}, nil
}

// CreateComment posts a new root-level comment on an article.
func (c *commentClient) CreateComment(ctx context.Context, articleID int64, content string) (*tree.Comment, error) {
	path := fmt.Sprintf("/articles/%d/comments", articleID)

	var comment tree.Comment
	if err := c.do(ctx, http.MethodPost, path, contentWire{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreateReply posts a reply under an existing comment.
func (c *commentClient) CreateReply(ctx context.Context, parentCommentID int64, content string) (*tree.Comment, error) {
	path := fmt.Sprintf("/comments/%d/replies", parentCommentID)

	var comment tree.Comment
	if err := c.do(ctx, http.MethodPost, path, contentWire{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike flips the viewer's like on a comment and returns the
// authoritative state.
func (c *commentClient) ToggleLike(ctx context.Context, commentID int64) (*reconciler.LikeResult, error) {
	path := fmt.Sprintf("/comments/%d/like", commentID)

	var wire likeWire
	if err := c.do(ctx, http.MethodPost, path, nil, &wire); err != nil {
		return nil, err
	}
	return &reconciler.LikeResult{Liked: wire.Liked, Likes: wire.Likes}, nil
}

// DeleteComment removes a comment and reports which policy applied.
func (c *commentClient) DeleteComment(ctx context.Context, commentID int64) (*reconciler.DeleteResult, error) {
	path := fmt.Sprintf("/comments/%d", commentID)

	var wire deleteWire
	if err := c.do(ctx, http.MethodDelete, path, nil, &wire); err != nil {
		return nil, err
	}
	return &reconciler.DeleteResult{Soft: wire.Deleted == "soft"}, nil
}

// EditComment replaces a comment's content.
func (c *commentClient) EditComment(ctx context.Context, commentID int64, content string) (*tree.Comment, error) {
	path := fmt.Sprintf("/comments/%d", commentID)

	var comment tree.Comment
	if err := c.do(ctx, http.MethodPut, path, contentWire{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// do performs one request and decodes the response into out. Transport
// failures come back as KindNetwork, non-2xx responses as
// KindServerRejection carrying the server's message.
func (c *commentClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	url := c.baseURL + path

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return reconciler.NewError(reconciler.KindNetwork, "failed to encode request body", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return reconciler.NewError(reconciler.KindNetwork, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(url, method, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Warn("Comment API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return reconciler.NewError(reconciler.KindNetwork, "comment API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var serverErr errorWire
		message := fmt.Sprintf("comment API returned status %d", resp.StatusCode)
		if decodeErr := json.NewDecoder(resp.Body).Decode(&serverErr); decodeErr == nil && serverErr.Error.Message != "" {
			message = serverErr.Error.Message
		}
		c.logger.Warn("Comment API rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return reconciler.NewError(reconciler.KindServerRejection, message, nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return reconciler.NewError(reconciler.KindNetwork, "failed to decode response body", err)
		}
	}
	return nil
}
