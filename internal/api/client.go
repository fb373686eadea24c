package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sitemaster/dpr/internal/domain"
)

// ListQuery selects one page of records.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	ProjectID string
	// Status restricts the page to one canonical status bucket. Empty means all.
	Status domain.Status
}

// RecordPage is one page of records as returned by the backend.
type RecordPage struct {
	Records []*domain.Record
	Total   int
	Page    int
	Limit   int
}

// DataSource is the backend the DPR screens read from and write to.
type DataSource interface {
	ListRecords(ctx context.Context, q ListQuery) (*RecordPage, error)
	GetRecord(ctx context.Context, id string) (*domain.Record, error)

	// UpdateStatus appends one history entry to the record and moves its
	// current status.
	UpdateStatus(ctx context.Context, recordID string, update domain.StatusUpdate) error

	// StatusCounts returns record counts keyed by the backend's status spelling.
	StatusCounts(ctx context.Context) (map[string]int, error)
}

// httpSource implements DataSource against the DPR REST API.
type httpSource struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a DataSource that talks to the backend at cfg.BaseURL.
func NewClient(cfg Config, observer Observer) DataSource {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpSource{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpSource) ListRecords(ctx context.Context, q ListQuery) (*RecordPage, error) {
	params := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = c.cfg.PageSize
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.ProjectID != "" {
		params.Set("projectId", q.ProjectID)
	}
	if q.Status != "" {
		params.Set("cardStatus", q.Status.WireValue())
	}

	body, err := c.call(ctx, "list", http.MethodGet, "/dpr/dpr?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecordPage(body)
}

func (c *httpSource) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	body, err := c.call(ctx, "get", http.MethodGet, "/dpr/dpr/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

func (c *httpSource) UpdateStatus(ctx context.Context, recordID string, update domain.StatusUpdate) error {
	req := updateRequest{
		ProjectID:      update.ProjectID,
		ActivityID:     update.ActivityID,
		TodaysProgress: update.TodaysProgress,
		Date:           update.Date.UTC().Format(time.RFC3339),
		Remarks:        update.Remarks,
		Status:         update.Status.WireValue(),
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling update: %w", err)
	}
	_, err = c.call(ctx, "update_status", http.MethodPatch, "/dpr/"+url.PathEscape(recordID)+"/updateStatus", data, withoutRetry())
	return err
}

func (c *httpSource) StatusCounts(ctx context.Context) (map[string]int, error) {
	body, err := c.call(ctx, "status_counts", http.MethodGet, "/dpr/dpr-status", nil)
	if err != nil {
		return nil, err
	}
	return decodeStatusCounts(body)
}

type callOption func(*callSettings)

type callSettings struct {
	retry bool
}

// withoutRetry sends the request exactly once. The status update appends a
// history entry, so a 5xx or a dropped connection may still have written it.
func withoutRetry() callOption {
	return func(s *callSettings) { s.retry = false }
}

// call performs one logical request, retrying transient failures unless
// withoutRetry is given. 4xx responses are returned immediately.
func (c *httpSource) call(ctx context.Context, op, method, path string, payload []byte, opts ...callOption) ([]byte, error) {
	start := time.Now()
	settings := callSettings{retry: true}
	for _, opt := range opts {
		opt(&settings)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var (
		body    []byte
		lastErr error
		tries   int
	)
	attempts := 1
	if settings.retry {
		attempts += c.cfg.MaxRetries
	}
	for i := 0; i < attempts; i++ {
		tries++
		body, lastErr = c.doRequest(ctx, method, path, payload)
		if lastErr == nil || !retryable(lastErr) || ctx.Err() != nil {
			break
		}
	}

	err := c.classify(ctx, lastErr, tries)
	c.observer.OnRequestComplete(RequestEvent{
		Op:        op,
		Method:    method,
		Path:      path,
		Attempts:  tries,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *httpSource) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.AuthToken != "" {
		httpReq.Header.Set("x-auth-token", c.cfg.AuthToken)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.Unmarshal(respBody, &env)
		return nil, &StatusError{Code: httpResp.StatusCode, Message: env.text()}
	}
	return respBody, nil
}

// classify maps the last attempt's failure onto the package sentinels.
func (c *httpSource) classify(ctx context.Context, err error, tries int) error {
	if err == nil {
		return nil
	}
	var se *StatusError
	switch {
	case errors.As(err, &se) && se.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	case errors.As(err, &se) && se.Code < 500:
		return fmt.Errorf("%w: %w", ErrRejected, se)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return ctx.Err()
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case tries == 1:
		return err
	default:
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrRejected):
		return "REJECTED"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}
