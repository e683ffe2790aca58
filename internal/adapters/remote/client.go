// Package remote implements the consumed surfaces of the access-control and
// billing services over their JSON HTTP APIs. Each call is all-or-nothing and
// bounded by the client's fixed timeout; there is no retry. Failures are
// classified into domain error kinds so the orchestrator never inspects
// transport detail.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M04-account-provisioning-service/internal/domain"
)

type baseClient struct {
	baseURL string
	http    *http.Client
}

// doJSON performs one JSON request/response cycle. 404 means the referenced
// entity does not exist; every other failure, timeouts included, is the
// dependency being unavailable.
func (c *baseClient) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrDependencyUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", domain.ErrReferenceNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: %s %s returned %d: %s",
			domain.ErrDependencyUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s %s response: %v", domain.ErrDependencyUnavailable, method, path, err)
		}
	}
	return nil
}
