package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

type EventType string

const (
	EventBoardCreated   EventType = "BOARD_CREATED"
	EventListCreated    EventType = "LIST_CREATED"
	EventListUpdated    EventType = "LIST_UPDATED"
	EventListDeleted    EventType = "LIST_DELETED"
	EventListsReordered EventType = "LISTS_REORDERED"
	EventCardCreated    EventType = "CARD_CREATED"
	EventCardUpdated    EventType = "CARD_UPDATED"
	EventCardDeleted    EventType = "CARD_DELETED"
	EventCardMoved      EventType = "CARD_MOVED"
	EventUndo           EventType = "UNDO"
)

// ActivityEvent is the append-only record of one past mutation. It is
// immutable except for UndoneAt, which transitions null to non-null
// exactly once via claimUndone.
type ActivityEvent struct {
	ID          string          `json:"id"`
	BoardID     string          `json:"boardId"`
	ActorUserID string          `json:"actorUserId"`
	Type        EventType       `json:"type"`
	PayloadJSON json.RawMessage `json:"payloadJson"`
	CreatedAt   time.Time       `json:"createdAt"`
	UndoneAt    *time.Time      `json:"undoneAt"`
}

// newEventID returns a ULID. Lexicographic id order follows creation
// order, which keeps the (created_at desc, id desc) feed cursor stable
// when events share a timestamp.
func newEventID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// appendEvent writes one activity row inside the caller's transaction.
// The payload captures enough "before" state to reverse the mutation.
func appendEvent(ctx context.Context, q dbtx, boardID, actorID string, t EventType, payload any) (ActivityEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ActivityEvent{}, err
	}
	ev := ActivityEvent{
		ID:          newEventID(),
		BoardID:     boardID,
		ActorUserID: actorID,
		Type:        t,
		PayloadJSON: raw,
	}
	err = q.QueryRowContext(ctx,
		`insert into activity_events(id, board_id, actor_user_id, type, payload_json)
		 values($1,$2,$3,$4,$5) returning created_at`,
		ev.ID, ev.BoardID, ev.ActorUserID, string(ev.Type), string(raw)).
		Scan(&ev.CreatedAt)
	return ev, err
}

// claimUndone marks an event undone only if it is not already. The
// affected-row count is the whole concurrency story: under a race
// exactly one caller sees true.
func claimUndone(ctx context.Context, q dbtx, eventID string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`update activity_events set undone_at=now() where id=$1 and undone_at is null`, eventID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func eventByID(ctx context.Context, q dbtx, eventID string) (ActivityEvent, error) {
	var ev ActivityEvent
	var payload string
	var typ string
	err := q.QueryRowContext(ctx,
		`select id, board_id, actor_user_id, type, payload_json, created_at, undone_at
		 from activity_events where id=$1`, eventID).
		Scan(&ev.ID, &ev.BoardID, &ev.ActorUserID, &typ, &payload, &ev.CreatedAt, &ev.UndoneAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ActivityEvent{}, ErrNotFound
	}
	ev.Type = EventType(typ)
	ev.PayloadJSON = json.RawMessage(payload)
	return ev, err
}

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultActivityLimit
	}
	if limit > maxActivityLimit {
		return maxActivityLimit
	}
	return limit
}

// ActivityByBoard pages the board feed newest-first by
// (created_at desc, id desc). The cursor is the id of the last event of
// the previous page; an unknown cursor is ignored rather than erroring.
func (s *Store) ActivityByBoard(ctx context.Context, actorID, boardID, cursor string, limit int) ([]ActivityEvent, string, error) {
	if err := requireMember(ctx, s.db, boardID, actorID); err != nil {
		return nil, "", err
	}
	limit = normalizeLimit(limit)

	query := `select id, board_id, actor_user_id, type, payload_json, created_at, undone_at
		 from activity_events where board_id=$1`
	args := []any{boardID}
	if cursor != "" {
		var curAt time.Time
		var curID string
		err := s.db.QueryRowContext(ctx,
			`select id, created_at from activity_events where id=$1`, cursor).Scan(&curID, &curAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// stale cursor, start from the top
		case err != nil:
			return nil, "", err
		default:
			query += ` and (created_at < $2 or (created_at = $2 and id < $3))`
			args = append(args, curAt, curID)
		}
	}
	query += ` order by created_at desc, id desc limit ` + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	var out []ActivityEvent
	for rows.Next() {
		var ev ActivityEvent
		var payload, typ string
		if err := rows.Scan(&ev.ID, &ev.BoardID, &ev.ActorUserID, &typ, &payload, &ev.CreatedAt, &ev.UndoneAt); err != nil {
			return nil, "", err
		}
		ev.Type = EventType(typ)
		ev.PayloadJSON = json.RawMessage(payload)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// ClearActivity drops a board's whole feed. Cleared events can no longer
// be undone.
func (s *Store) ClearActivity(ctx context.Context, actorID, boardID string) error {
	if err := requireMember(ctx, s.db, boardID, actorID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `delete from activity_events where board_id=$1`, boardID)
	return err
}

// --- Payload union ---
//
// One variant per event type, parsed and validated when an event is
// loaded for undo. The shapes below are the internal contract between
// the mutation handlers and the undo engine.

type eventPayload interface {
	eventType() EventType
}

type BoardCreatedPayload struct {
	Board Board `json:"board"`
}

type ListCreatedPayload struct {
	List List `json:"list"`
}

type ListUpdatedPayload struct {
	ListID string `json:"listId"`
	Before List   `json:"before"`
	After  List   `json:"after"`
}

type ListDeletedPayload struct {
	List  List   `json:"list"`
	Cards []Card `json:"cards"`
}

// ListsReorderedPayload records a bulk reorder as the full id sequence
// before and after, so undo can reapply Before wholesale.
type ListsReorderedPayload struct {
	BoardID string   `json:"boardId"`
	Before  []string `json:"before"`
	After   []string `json:"after"`
}

type CardCreatedPayload struct {
	Card Card `json:"card"`
}

type CardUpdatedPayload struct {
	CardID string `json:"cardId"`
	Before Card   `json:"before"`
	After  Card   `json:"after"`
}

type CardDeletedPayload struct {
	Card Card `json:"card"`
}

type MoveEndpoint struct {
	ListID   string `json:"listId"`
	Index    int    `json:"index"`
	Position int64  `json:"position"`
}

type CardMovedPayload struct {
	CardID string       `json:"cardId"`
	From   MoveEndpoint `json:"from"`
	To     MoveEndpoint `json:"to"`
}

type UndoPayload struct {
	UndoneEventID   string    `json:"undoneEventId"`
	UndoneEventType EventType `json:"undoneEventType"`
}

func (BoardCreatedPayload) eventType() EventType   { return EventBoardCreated }
func (ListCreatedPayload) eventType() EventType    { return EventListCreated }
func (ListUpdatedPayload) eventType() EventType    { return EventListUpdated }
func (ListDeletedPayload) eventType() EventType    { return EventListDeleted }
func (ListsReorderedPayload) eventType() EventType { return EventListsReordered }
func (CardCreatedPayload) eventType() EventType    { return EventCardCreated }
func (CardUpdatedPayload) eventType() EventType    { return EventCardUpdated }
func (CardDeletedPayload) eventType() EventType    { return EventCardDeleted }
func (CardMovedPayload) eventType() EventType      { return EventCardMoved }
func (UndoPayload) eventType() EventType           { return EventUndo }

// decodePayload parses a stored payload into its typed variant and
// validates the fields undo depends on. A payload missing a required id
// is a ValidationError: there is no other source of "before" state.
func decodePayload(t EventType, raw json.RawMessage) (eventPayload, error) {
	missing := invalidf("missing payload for %s event", t)
	switch t {
	case EventBoardCreated:
		var p BoardCreatedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Board.ID == "" {
			return nil, missing
		}
		return p, nil
	case EventListCreated:
		var p ListCreatedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.List.ID == "" {
			return nil, missing
		}
		return p, nil
	case EventListUpdated:
		var p ListUpdatedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Before.ID == "" {
			return nil, missing
		}
		return p, nil
	case EventListDeleted:
		var p ListDeletedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.List.ID == "" || p.List.BoardID == "" {
			return nil, missing
		}
		return p, nil
	case EventListsReordered:
		var p ListsReorderedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || len(p.Before) == 0 {
			return nil, missing
		}
		return p, nil
	case EventCardCreated:
		var p CardCreatedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Card.ID == "" {
			return nil, missing
		}
		return p, nil
	case EventCardUpdated:
		var p CardUpdatedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Before.ID == "" {
			return nil, missing
		}
		return p, nil
	case EventCardDeleted:
		var p CardDeletedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Card.ID == "" || p.Card.ListID == "" {
			return nil, missing
		}
		return p, nil
	case EventCardMoved:
		var p CardMovedPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.CardID == "" || p.From.ListID == "" {
			return nil, missing
		}
		return p, nil
	case EventUndo:
		var p UndoPayload
		if err := json.Unmarshal(raw, &p); err != nil || p.UndoneEventID == "" {
			return nil, missing
		}
		return p, nil
	default:
		return nil, conflict(codeNotUndoable, "event type "+string(t)+" not undoable")
	}
}
