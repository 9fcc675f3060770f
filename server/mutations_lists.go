package main

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ListPatch carries the optional fields of a list update; nil means
// "leave unchanged".
type ListPatch struct {
	Title    *string
	Position *int64
}

// CreateList inserts a list at the tail of its board's ordering.
func (s *Store) CreateList(ctx context.Context, actorID, boardID, title string) (List, ActivityEvent, error) {
	l := List{ID: uuid.NewString(), BoardID: boardID, Title: title}
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMember(ctx, tx, boardID, actorID); err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`select coalesce(max(position),0)+$1 from lists where board_id=$2`, int64(posStep), boardID).
			Scan(&l.Position); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`insert into lists(id, board_id, title, position) values($1,$2,$3,$4)`,
			l.ID, l.BoardID, l.Title, l.Position); err != nil {
			return err
		}
		var err error
		ev, err = appendEvent(ctx, tx, boardID, actorID, EventListCreated, ListCreatedPayload{List: l})
		return err
	})
	if err != nil {
		return List{}, ActivityEvent{}, err
	}
	return l, ev, nil
}

// UpdateList patches title and/or position in place and records the
// before/after rows so the patch can be reversed.
func (s *Store) UpdateList(ctx context.Context, actorID, boardID, listID string, patch ListPatch) (List, ActivityEvent, error) {
	var after List
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMember(ctx, tx, boardID, actorID); err != nil {
			return err
		}
		before, err := getListInBoard(ctx, tx, boardID, listID)
		if err != nil {
			return err
		}
		after = before
		if patch.Title != nil {
			after.Title = *patch.Title
		}
		if patch.Position != nil {
			after.Position = *patch.Position
		}
		if _, err := tx.ExecContext(ctx,
			`update lists set title=$1, position=$2 where id=$3`,
			after.Title, after.Position, listID); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, boardID, actorID, EventListUpdated,
			ListUpdatedPayload{ListID: listID, Before: before, After: after})
		return err
	})
	if err != nil {
		return List{}, ActivityEvent{}, err
	}
	return after, ev, nil
}

// DeleteList removes a list and, via the store's cascade, its cards. The
// payload snapshots the list and every card in position order, which is
// the only way the deletion can later be reversed.
func (s *Store) DeleteList(ctx context.Context, actorID, boardID, listID string) (ActivityEvent, error) {
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMember(ctx, tx, boardID, actorID); err != nil {
			return err
		}
		list, err := getListInBoard(ctx, tx, boardID, listID)
		if err != nil {
			return err
		}
		cards, err := cardsByList(ctx, tx, listID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `delete from lists where id=$1`, listID); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, boardID, actorID, EventListDeleted,
			ListDeletedPayload{List: list, Cards: cards})
		return err
	})
	if err != nil {
		return ActivityEvent{}, err
	}
	return ev, nil
}

// ReorderLists applies a caller-supplied full ordering of a board's
// lists. The sequence must be exactly a permutation of the board's
// current list ids; anything else is rejected before any write.
func (s *Store) ReorderLists(ctx context.Context, actorID, boardID string, listIDs []string) (ActivityEvent, error) {
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMember(ctx, tx, boardID, actorID); err != nil {
			return err
		}
		existing, err := listIDsByBoard(ctx, tx, boardID)
		if err != nil {
			return err
		}
		if !isPermutation(existing, listIDs) {
			return invalidf("reorder must name every list of the board exactly once")
		}
		if err := applyListPositions(ctx, tx, positionsForIDs(listIDs)); err != nil {
			return err
		}
		ev, err = appendEvent(ctx, tx, boardID, actorID, EventListsReordered,
			ListsReorderedPayload{BoardID: boardID, Before: existing, After: listIDs})
		return err
	})
	if err != nil {
		return ActivityEvent{}, err
	}
	return ev, nil
}
