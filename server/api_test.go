package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealthEndpoint(t *testing.T) {
	a := newAPI(NewStore(nil), discardLogger(), "demo-user")
	srv := httptest.NewServer(a.router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.OK)
}

// apiClient drives the HTTP surface end to end against a real database.
type apiClient struct {
	t    *testing.T
	base string
	user string
}

func (c *apiClient) do(method, path string, body any) (int, map[string]json.RawMessage) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-User-Id", c.user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var envelope map[string]json.RawMessage
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func dataField(t *testing.T, env map[string]json.RawMessage, key string) json.RawMessage {
	t.Helper()
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env["data"], &data))
	return data[key]
}

func TestAPI_BoardLifecycle(t *testing.T) {
	s := testStore(t)
	a := newAPI(s, discardLogger(), "demo-user")
	srv := httptest.NewServer(a.router())
	defer srv.Close()
	c := &apiClient{t: t, base: srv.URL, user: testActor(t, s)}

	status, env := c.do("POST", "/api/boards", map[string]any{"title": "Board"})
	require.Equal(t, 200, status)
	var board Board
	require.NoError(t, json.Unmarshal(dataField(t, env, "board"), &board))
	require.NotEmpty(t, board.ID)

	status, env = c.do("POST", "/api/boards/"+board.ID+"/lists", map[string]any{"title": "To do"})
	require.Equal(t, 200, status)
	var list List
	require.NoError(t, json.Unmarshal(dataField(t, env, "list"), &list))
	assert.Equal(t, board.ID, list.BoardID)

	status, env = c.do("POST", "/api/lists/"+list.ID+"/cards", map[string]any{"title": "Card", "description": "d"})
	require.Equal(t, 200, status)
	var card Card
	require.NoError(t, json.Unmarshal(dataField(t, env, "card"), &card))
	assert.Equal(t, int64(1000), card.Position)

	// Clearing a description sends an explicit null.
	status, env = c.do("PATCH", "/api/cards/"+card.ID, map[string]any{"description": nil})
	require.Equal(t, 200, status)
	require.NoError(t, json.Unmarshal(dataField(t, env, "card"), &card))
	assert.Nil(t, card.Description)

	status, env = c.do("GET", "/api/boards/"+board.ID+"/activity", nil)
	require.Equal(t, 200, status)
	var events []ActivityEvent
	require.NoError(t, json.Unmarshal(dataField(t, env, "events"), &events))
	// BOARD_CREATED, LIST_CREATED, CARD_CREATED, CARD_UPDATED.
	require.Len(t, events, 4)
	assert.Equal(t, EventCardUpdated, events[0].Type)

	status, env = c.do("POST", "/api/activity/"+events[0].ID+"/undo", nil)
	require.Equal(t, 200, status)
	var undoEv ActivityEvent
	require.NoError(t, json.Unmarshal(dataField(t, env, "activityEvent"), &undoEv))
	assert.Equal(t, EventUndo, undoEv.Type)

	// A repeat undo maps to the conflict envelope.
	status, env = c.do("POST", "/api/activity/"+events[0].ID+"/undo", nil)
	require.Equal(t, 409, status)
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env["error"], &apiErr))
	assert.Equal(t, codeAlreadyUndone, apiErr.Code)
}

func TestAPI_ValidationAndAccessErrors(t *testing.T) {
	s := testStore(t)
	a := newAPI(s, discardLogger(), "demo-user")
	srv := httptest.NewServer(a.router())
	defer srv.Close()
	owner := &apiClient{t: t, base: srv.URL, user: testActor(t, s)}
	stranger := &apiClient{t: t, base: srv.URL, user: testActor(t, s)}

	status, env := owner.do("POST", "/api/boards", map[string]any{"title": ""})
	assert.Equal(t, 400, status)
	var apiErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(env["error"], &apiErr))
	assert.Equal(t, "VALIDATION", apiErr.Code)

	status, env = owner.do("POST", "/api/boards", map[string]any{"title": "B"})
	require.Equal(t, 200, status)
	var board Board
	require.NoError(t, json.Unmarshal(dataField(t, env, "board"), &board))

	status, _ = stranger.do("GET", "/api/boards/"+board.ID, nil)
	assert.Equal(t, 404, status)

	status, env = stranger.do("POST", "/api/boards/"+board.ID+"/lists", map[string]any{"title": "L"})
	assert.Equal(t, 403, status)
	require.NoError(t, json.Unmarshal(env["error"], &apiErr))
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	status, _ = owner.do("GET", "/api/boards/"+board.ID+"/activity?limit=0", nil)
	assert.Equal(t, 400, status)

	status, _ = owner.do("GET", "/api/boards/"+board.ID+"/activity?limit=201", nil)
	assert.Equal(t, 400, status)
}
