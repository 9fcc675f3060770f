package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CardPatch carries the optional fields of a card update. SetDescription
// distinguishes "clear the description" (true with nil Description) from
// "leave it alone" (false).
type CardPatch struct {
	Title          *string
	Description    *string
	SetDescription bool
	Position       *int64
}

// CreateCard inserts a card at the tail of its list's ordering.
func (s *Store) CreateCard(ctx context.Context, actorID, listID, title string, description *string) (Card, ActivityEvent, error) {
	c := Card{ID: uuid.NewString(), ListID: listID, Title: title, Description: description}
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		list, err := getList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if err := requireMember(ctx, tx, list.BoardID, actorID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`select coalesce(max(position),0)+$1 from cards where list_id=$2`, int64(posStep), listID).
			Scan(&c.Position); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`insert into cards(id, list_id, title, description, position) values($1,$2,$3,$4,$5)`,
			c.ID, c.ListID, c.Title, c.Description, c.Position); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, list.BoardID, actorID, EventCardCreated, CardCreatedPayload{Card: c})
		return err
	})
	if err != nil {
		return Card{}, ActivityEvent{}, err
	}
	return c, ev, nil
}

// UpdateCard patches title/description/position in place, snapshotting
// the before row for undo.
func (s *Store) UpdateCard(ctx context.Context, actorID, cardID string, patch CardPatch) (Card, ActivityEvent, error) {
	var after Card
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		before, err := getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		list, err := getList(ctx, tx, before.ListID)
		if err != nil {
			return err
		}
		if err := requireMember(ctx, tx, list.BoardID, actorID); err != nil {
			return err
		}
		after = before
		if patch.Title != nil {
			after.Title = *patch.Title
		}
		if patch.SetDescription {
			after.Description = patch.Description
		}
		if patch.Position != nil {
			after.Position = *patch.Position
		}
		if _, err := tx.ExecContext(ctx,
			`update cards set title=$1, description=$2, position=$3 where id=$4`,
			after.Title, after.Description, after.Position, cardID); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, list.BoardID, actorID, EventCardUpdated,
			CardUpdatedPayload{CardID: cardID, Before: before, After: after})
		return err
	})
	if err != nil {
		return Card{}, ActivityEvent{}, err
	}
	return after, ev, nil
}

// DeleteCard removes one card, snapshotting the full row for undo.
func (s *Store) DeleteCard(ctx context.Context, actorID, cardID string) (ActivityEvent, error) {
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		card, err := getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		list, err := getList(ctx, tx, card.ListID)
		if err != nil {
			return err
		}
		if err := requireMember(ctx, tx, list.BoardID, actorID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `delete from cards where id=$1`, cardID); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, list.BoardID, actorID, EventCardDeleted, CardDeletedPayload{Card: card})
		return err
	})
	if err != nil {
		return ActivityEvent{}, err
	}
	return ev, nil
}

// MoveCard removes the card from its source list's id ordering, inserts
// it into the destination ordering at the (clamped) target index, and
// recomputes dense positions for every affected list. Same destination
// list means reorder in place.
func (s *Store) MoveCard(ctx context.Context, actorID, cardID, toListID string, toIndex int) (Card, ActivityEvent, error) {
	var after Card
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		card, err := getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		fromList, err := getList(ctx, tx, card.ListID)
		if err != nil {
			return err
		}
		toList, err := getList(ctx, tx, toListID)
		if err != nil {
			return err
		}
		if toList.BoardID != fromList.BoardID {
			return conflict(codeCrossBoard, "cannot move a card across boards")
		}
		if err := requireMember(ctx, tx, fromList.BoardID, actorID); err != nil {
			return err
		}

		sourceIDs, err := cardIDsByList(ctx, tx, fromList.ID)
		if err != nil {
			return err
		}
		sameList := fromList.ID == toList.ID
		destIDs := sourceIDs
		if !sameList {
			if destIDs, err = cardIDsByList(ctx, tx, toList.ID); err != nil {
				return err
			}
		}

		nextSource, _, fromIndex := removeOne(sourceIDs, func(id string) bool { return id == cardID })
		if fromIndex < 0 {
			return fmt.Errorf("%w: card %s not in ordering of its list %s", ErrInternal, cardID, fromList.ID)
		}

		bound := len(destIDs)
		if sameList {
			bound = len(nextSource)
		}
		if toIndex < 0 {
			toIndex = 0
		}
		if toIndex > bound {
			toIndex = bound
		}

		var nextDest []string
		if sameList {
			nextSource = insertAt(nextSource, toIndex, cardID)
			nextDest = nextSource
		} else {
			nextDest = insertAt(destIDs, toIndex, cardID)
		}

		if err := applyCardPositions(ctx, tx, positionsForIDs(nextSource)); err != nil {
			return err
		}
		if !sameList {
			if err := applyCardPositionsToList(ctx, tx, toList.ID, positionsForIDs(nextDest)); err != nil {
				return err
			}
		}

		if after, err = getCard(ctx, tx, cardID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: card %s vanished during move", ErrInternal, cardID)
			}
			return err
		}
		ev, err = appendEvent(ctx, tx, fromList.BoardID, actorID, EventCardMoved, CardMovedPayload{
			CardID: cardID,
			From:   MoveEndpoint{ListID: fromList.ID, Index: fromIndex, Position: card.Position},
			To:     MoveEndpoint{ListID: after.ListID, Index: toIndex, Position: after.Position},
		})
		return err
	})
	if err != nil {
		return Card{}, ActivityEvent{}, err
	}
	return after, ev, nil
}
