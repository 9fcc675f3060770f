package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 50, normalizeLimit(0))
	assert.Equal(t, 50, normalizeLimit(-3))
	assert.Equal(t, 1, normalizeLimit(1))
	assert.Equal(t, 200, normalizeLimit(200))
	assert.Equal(t, 200, normalizeLimit(5000))
}

func TestDecodePayload_CardMoved(t *testing.T) {
	raw := json.RawMessage(`{"cardId":"c1","from":{"listId":"l1","index":0,"position":1000},"to":{"listId":"l2","index":1,"position":2000}}`)
	p, err := decodePayload(EventCardMoved, raw)
	require.NoError(t, err)

	moved, ok := p.(CardMovedPayload)
	require.True(t, ok)
	assert.Equal(t, "c1", moved.CardID)
	assert.Equal(t, "l1", moved.From.ListID)
	assert.Equal(t, 0, moved.From.Index)
	assert.Equal(t, int64(2000), moved.To.Position)
}

func TestDecodePayload_ListDeleted(t *testing.T) {
	raw := json.RawMessage(`{"list":{"id":"l1","boardId":"b1","title":"Done","position":3000},"cards":[{"id":"c1","listId":"l1","title":"x","position":1000}]}`)
	p, err := decodePayload(EventListDeleted, raw)
	require.NoError(t, err)

	del, ok := p.(ListDeletedPayload)
	require.True(t, ok)
	assert.Equal(t, "b1", del.List.BoardID)
	require.Len(t, del.Cards, 1)
	assert.Equal(t, "c1", del.Cards[0].ID)
}

func TestDecodePayload_ListsReordered(t *testing.T) {
	raw := json.RawMessage(`{"boardId":"b1","before":["l1","l2"],"after":["l2","l1"]}`)
	p, err := decodePayload(EventListsReordered, raw)
	require.NoError(t, err)

	re, ok := p.(ListsReorderedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"l1", "l2"}, re.Before)
}

func TestDecodePayload_MissingFields(t *testing.T) {
	cases := []struct {
		typ EventType
		raw string
	}{
		{EventCardMoved, `{}`},
		{EventCardMoved, `{"cardId":"c1"}`},
		{EventCardUpdated, `{"cardId":"c1","after":{"id":"c1"}}`},
		{EventCardDeleted, `{"card":{"id":"c1"}}`},
		{EventListDeleted, `{"list":{"id":"l1"}}`},
		{EventListsReordered, `{"boardId":"b1"}`},
		{EventUndo, `{}`},
		{EventCardCreated, `null`},
		{EventListCreated, `not json`},
	}
	for _, c := range cases {
		_, err := decodePayload(c.typ, json.RawMessage(c.raw))
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "type %s raw %s", c.typ, c.raw)
	}
}

func TestDecodePayload_UnknownType(t *testing.T) {
	_, err := decodePayload(EventType("SOMETHING_ELSE"), json.RawMessage(`{}`))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, codeNotUndoable, ce.Code)
}

func TestPayloadRoundTrip_CamelCase(t *testing.T) {
	ev := CardMovedPayload{
		CardID: "c1",
		From:   MoveEndpoint{ListID: "l1", Index: 2, Position: 3000},
		To:     MoveEndpoint{ListID: "l2", Index: 0, Position: 1000},
	}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cardId"`)
	assert.Contains(t, string(raw), `"listId"`)

	p, err := decodePayload(EventCardMoved, raw)
	require.NoError(t, err)
	assert.Equal(t, ev, p)
}
