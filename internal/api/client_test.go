package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightdance/showcompiler/internal/httputil"
	"github.com/lightdance/showcompiler/internal/show"
)

func maskShowRequest() *show.Request {
	return &show.Request{
		Dancer: "2_feng",
		Fibers: map[string]int{},
		LEDs:   map[string]show.LEDPart{"mask_LED": {ID: 0, Len: 28}},
	}
}

func TestClientFetchAgainstServer(t *testing.T) {
	s := setupTestServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := NewClient(httputil.NewStandardClient(srv.Client()), srv.URL+"/")
	ctx := context.Background()

	control, err := c.Fetch(ctx, ControlArtifact, maskShowRequest())
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0, 0, 0, 1, 28}, fengStarts()...), control)

	frames, err := c.Fetch(ctx, FrameArtifact, maskShowRequest())
	require.NoError(t, err)
	assert.Len(t, frames, 2+3*(4+1+3*28+4))

	req := maskShowRequest()
	req.Dancer = "nobody"
	_, err = c.Fetch(ctx, FrameArtifact, req)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Dancer not found.", se.Msg)
}

func TestClientFetchRequestShape(t *testing.T) {
	m := httputil.NewMockHTTPClient().AddResponse(http.StatusOK, []byte{0, 0})
	c := NewClient(m, "http://show.local")

	buf, err := c.Fetch(context.Background(), FrameArtifact, maskShowRequest())
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, buf)

	require.Equal(t, 1, m.RequestCount())
	req := m.Requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/frame_dat", req.URL.Path)
	assert.Equal(t, FormatBinary, req.URL.Query().Get("format"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(m.Bodies[0], &sent))
	assert.JSONEq(t, `{"mask_LED":{"id":0,"len":28}}`, string(sent["LEDPARTS"]))
	assert.JSONEq(t, `"2_feng"`, string(sent["dancer"]))
}

func TestClientFetchErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewClient(httputil.NewMockHTTPClient(), "http://show.local").Fetch(ctx, "effects.dat", maskShowRequest())
	assert.EqualError(t, err, `unknown artifact "effects.dat"`)

	m := httputil.NewMockHTTPClient().AddErrorResponse(errors.New("connection refused"))
	_, err = NewClient(m, "http://show.local").Fetch(ctx, ControlArtifact, maskShowRequest())
	assert.ErrorContains(t, err, "connection refused")

	m = httputil.NewMockHTTPClient().AddResponse(http.StatusBadGateway, []byte("upstream down\n"))
	_, err = NewClient(m, "http://show.local").Fetch(ctx, ControlArtifact, maskShowRequest())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "upstream down", se.Msg)
	assert.EqualError(t, err, "server returned 502: upstream down")
}
