package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/polls-client/pkg/pagination"
)

// Poll is a single record from the polls listing. Fields are passed through
// untouched; "id" and "question" are typical but not required.
type Poll map[string]any

// FetchPolls fetches one page of polls starting at offset skip.
//
// A 404 yields ErrNotFound, any other non-2xx an *HTTPError, and a network
// failure a *TransportError. Nothing is retried.
func (c *Client) FetchPolls(ctx context.Context, skip, limit int) ([]Poll, error) {
	if skip < 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: skip=%d limit=%d", ErrInvalidPageRequest, skip, limit)
	}

	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(ctx, http.MethodGet, pollsEndpoint, query, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, c.fail(pollsEndpoint, ErrNotFound)
	case !isSuccess(resp.StatusCode):
		return nil, c.fail(pollsEndpoint, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Body})
	}

	var polls []Poll
	if err := json.Unmarshal(resp.Body, &polls); err != nil {
		return nil, c.fail(pollsEndpoint, fmt.Errorf("decode polls response: %w", err))
	}
	if polls == nil {
		polls = []Poll{}
	}

	return polls, nil
}

// FetchPage implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, skip, limit int) ([]Poll, error) {
	return c.FetchPolls(ctx, skip, limit)
}

// FetchAllPolls drains the whole polls collection in pages of batchSize.
// A batchSize of 0 uses the configured default. Errors from any page abort
// the drain and are returned unchanged.
func (c *Client) FetchAllPolls(ctx context.Context, batchSize int) ([]Poll, error) {
	if batchSize == 0 {
		batchSize = c.config.DefaultBatchSize
	}
	return pagination.Drain[Poll](ctx, c, batchSize)
}
