package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UndoResult distinguishes a performed reversal from the benign race
// outcome where someone else already claimed the event, so the boundary
// layer can pick the right response without inspecting internals.
type UndoResult struct {
	AlreadyUndone bool
	Event         ActivityEvent
}

// UndoEvent reverses a past mutation against the current database state.
// This is best-effort structural reversal, not a point-in-time rollback:
// the stored payload supplies the "before" picture, and each reversal
// re-validates its preconditions against what exists now.
//
// The undone flag is claimed with a conditional update inside the same
// transaction as the reversal, so a reversal that fails (conflict,
// missing row) rolls the claim back and leaves the event undoable.
func (s *Store) UndoEvent(ctx context.Context, actorID, eventID string) (UndoResult, error) {
	ev, err := eventByID(ctx, s.db, eventID)
	if err != nil {
		return UndoResult{}, err
	}
	if err := requireMember(ctx, s.db, ev.BoardID, actorID); err != nil {
		return UndoResult{}, err
	}
	if ev.UndoneAt != nil {
		return UndoResult{AlreadyUndone: true}, nil
	}

	var res UndoResult
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		claimed, err := claimUndone(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !claimed {
			res.AlreadyUndone = true
			return nil
		}
		payload, err := decodePayload(ev.Type, ev.PayloadJSON)
		if err != nil {
			return err
		}
		if err := applyReversal(ctx, tx, payload); err != nil {
			return err
		}
		res.Event, err = appendEvent(ctx, tx, ev.BoardID, actorID, EventUndo,
			UndoPayload{UndoneEventID: ev.ID, UndoneEventType: ev.Type})
		return err
	})
	if err != nil {
		return UndoResult{}, err
	}
	return res, nil
}

// applyReversal dispatches on the decoded payload variant. Every event
// type has a branch here; the non-undoable ones reject explicitly.
func applyReversal(ctx context.Context, tx *sql.Tx, payload eventPayload) error {
	switch p := payload.(type) {
	case CardCreatedPayload:
		// The card may have been deleted since; identical end state either way.
		_, err := tx.ExecContext(ctx, `delete from cards where id=$1`, p.Card.ID)
		return err

	case CardUpdatedPayload:
		res, err := tx.ExecContext(ctx,
			`update cards set title=$1, description=$2, position=$3 where id=$4`,
			p.Before.Title, p.Before.Description, p.Before.Position, p.Before.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil

	case CardDeletedPayload:
		if _, err := getList(ctx, tx, p.Card.ListID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return conflict(codeListGone, "list no longer exists")
			}
			return err
		}
		_, err := tx.ExecContext(ctx,
			`insert into cards(id, list_id, title, description, position) values($1,$2,$3,$4,$5)`,
			p.Card.ID, p.Card.ListID, p.Card.Title, p.Card.Description, p.Card.Position)
		return err

	case CardMovedPayload:
		return reverseCardMove(ctx, tx, p)

	case ListCreatedPayload:
		var count int
		if err := tx.QueryRowContext(ctx,
			`select count(*) from cards where list_id=$1`, p.List.ID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return conflict(codeListNotEmpty, "list has cards; cannot undo create safely")
		}
		_, err := tx.ExecContext(ctx, `delete from lists where id=$1`, p.List.ID)
		return err

	case ListUpdatedPayload:
		res, err := tx.ExecContext(ctx,
			`update lists set title=$1, position=$2 where id=$3`,
			p.Before.Title, p.Before.Position, p.Before.ID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil

	case ListDeletedPayload:
		var one int
		err := tx.QueryRowContext(ctx, `select 1 from lists where id=$1`, p.List.ID).Scan(&one)
		if err == nil {
			return conflict(codeListExists, "list already exists")
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`insert into lists(id, board_id, title, position) values($1,$2,$3,$4)`,
			p.List.ID, p.List.BoardID, p.List.Title, p.List.Position); err != nil {
			return err
		}
		for _, c := range p.Cards {
			if _, err := tx.ExecContext(ctx,
				`insert into cards(id, list_id, title, description, position) values($1,$2,$3,$4,$5)`,
				c.ID, p.List.ID, c.Title, c.Description, c.Position); err != nil {
				return err
			}
		}
		return nil

	case ListsReorderedPayload:
		current, err := listIDsByBoard(ctx, tx, p.BoardID)
		if err != nil {
			return err
		}
		if !isPermutation(current, p.Before) {
			return conflict(codeReorderStale, "board lists changed since the reorder")
		}
		return applyListPositions(ctx, tx, positionsForIDs(p.Before))

	case BoardCreatedPayload, UndoPayload:
		return conflict(codeNotUndoable, "event type not undoable")

	default:
		return conflict(codeNotUndoable, "event type not undoable")
	}
}

// reverseCardMove replays the forward move algorithm with the payload's
// recorded origin list and index as the target.
func reverseCardMove(ctx context.Context, tx *sql.Tx, p CardMovedPayload) error {
	card, err := getCard(ctx, tx, p.CardID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return conflict(codeCardGone, "card no longer exists")
		}
		return err
	}
	if _, err := getList(ctx, tx, p.From.ListID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return conflict(codeListGone, "original list no longer exists")
		}
		return err
	}

	sourceIDs, err := cardIDsByList(ctx, tx, card.ListID)
	if err != nil {
		return err
	}
	sameList := card.ListID == p.From.ListID
	destIDs := sourceIDs
	if !sameList {
		if destIDs, err = cardIDsByList(ctx, tx, p.From.ListID); err != nil {
			return err
		}
	}

	nextSource, _, idx := removeOne(sourceIDs, func(id string) bool { return id == p.CardID })
	if idx < 0 {
		return fmt.Errorf("%w: card %s not in ordering of its list %s", ErrInternal, p.CardID, card.ListID)
	}

	index := p.From.Index
	if index < 0 {
		index = 0
	}
	if index > len(destIDs) {
		index = len(destIDs)
	}

	var nextDest []string
	if sameList {
		nextSource = insertAt(nextSource, index, p.CardID)
		nextDest = nextSource
	} else {
		nextDest = insertAt(destIDs, index, p.CardID)
	}

	if err := applyCardPositions(ctx, tx, positionsForIDs(nextSource)); err != nil {
		return err
	}
	if !sameList {
		return applyCardPositionsToList(ctx, tx, p.From.ListID, positionsForIDs(nextDest))
	}
	return nil
}
