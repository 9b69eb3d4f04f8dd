package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lightdance/showcompiler/internal/httputil"
	"github.com/lightdance/showcompiler/internal/show"
)

// Client downloads artifacts from a running show compiler.
type Client struct {
	hc      httputil.HTTPClient
	baseURL string
}

// NewClient returns a client for the server at baseURL.
func NewClient(hc httputil.HTTPClient, baseURL string) *Client {
	return &Client{hc: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// StatusError is a non-200 reply. Msg is the server's "err" field.
type StatusError struct {
	StatusCode int
	Msg        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Msg)
}

// Fetch compiles artifact (ControlArtifact or FrameArtifact) for req and
// returns the raw file bytes.
func (c *Client) Fetch(ctx context.Context, artifact string, req *show.Request) ([]byte, error) {
	var path string
	switch artifact {
	case ControlArtifact:
		path = "/api/control_dat"
	case FrameArtifact:
		path = "/api/frame_dat"
	default:
		return nil, fmt.Errorf("unknown artifact %q", artifact)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	u := c.baseURL + path + "?" + url.Values{"format": {FormatBinary}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", artifact, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", artifact, err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb httputil.ErrorBody
		if json.Unmarshal(buf, &eb) != nil || eb.Err == "" {
			eb.Err = strings.TrimSpace(string(buf))
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Msg: eb.Err}
	}
	return buf, nil
}
