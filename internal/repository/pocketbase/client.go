package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BloggingApp/blog-gateway/internal/metrics"
	"github.com/BloggingApp/blog-gateway/internal/model"
	"github.com/BloggingApp/blog-gateway/internal/repository"
	"go.uber.org/zap"
)

const backendName = "pocketbase"

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func newClient(baseURL string, timeout time.Duration, logger *zap.Logger) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// listParams mirrors the list query of the records API.
type listParams struct {
	Page      int
	PerPage   int
	Sort      string
	Filter    string
	Expand    string
	Fields    string
	SkipTotal bool
}

func (p listParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(p.PerPage))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Filter != "" {
		q.Set("filter", p.Filter)
	}
	if p.Expand != "" {
		q.Set("expand", p.Expand)
	}
	if p.Fields != "" {
		q.Set("fields", p.Fields)
	}
	if p.SkipTotal {
		q.Set("skipTotal", "1")
	}
	return q
}

type listResult[T any] struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	Items      []T   `json:"items"`
}

type apiError struct {
	Code    int                      `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]apiFieldError `json:"data"`
}

type apiFieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// filterEq builds an "a="x" && b="y"" filter from field/value pairs.
func filterEq(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s=%s", pairs[i], quote(pairs[i+1])))
	}
	return strings.Join(parts, " && ")
}

func quote(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

func recordsPath(collection string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/records"
}

func recordPath(collection string, id string) string {
	return recordsPath(collection) + "/" + url.PathEscape(id)
}

func list[T any](ctx context.Context, c *client, auth *model.Session, op string, collection string, params listParams) (*listResult[T], error) {
	var result listResult[T]
	if err := c.do(ctx, auth, op, http.MethodGet, recordsPath(collection), params.values(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) do(ctx context.Context, auth *model.Session, op string, method string, path string, query url.Values, body interface{}, out interface{}) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, auth, method, path, query, body, out)

	metrics.StoreRequests.WithLabelValues(backendName, op, strconv.Itoa(status)).Inc()
	metrics.StoreDuration.WithLabelValues(backendName, op).Observe(time.Since(start).Seconds())

	return err
}

func (c *client) roundTrip(ctx context.Context, auth *model.Session, method string, path string, query url.Values, body interface{}, out interface{}) (int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reqBody = bytes.NewReader(bodyJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth.IsValid() {
		req.Header.Set("Authorization", auth.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Sugar().Warnf("record store request %s %s failed: %s", method, path, err.Error())
		return repository.StatusUnreachable, repository.NewUnreachable(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, repository.NewUnreachable(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, decodeError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return resp.StatusCode, nil
}

func decodeError(status int, body []byte) *repository.StoreError {
	storeErr := &repository.StoreError{Status: status, Message: http.StatusText(status)}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return storeErr
	}

	if apiErr.Message != "" {
		storeErr.Message = apiErr.Message
	}
	if len(apiErr.Data) > 0 {
		storeErr.Fields = make(map[string]string, len(apiErr.Data))
		for field, fieldErr := range apiErr.Data {
			storeErr.Fields[field] = fieldErr.Code
		}
	}

	return storeErr
}
