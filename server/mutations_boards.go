package main

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CreateBoard creates a board with the actor as OWNER and records
// BOARD_CREATED, all in one transaction.
func (s *Store) CreateBoard(ctx context.Context, actorID, title string) (Board, ActivityEvent, error) {
	b := Board{ID: uuid.NewString(), Title: title}
	var ev ActivityEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`insert into boards(id, title) values($1,$2) returning created_at`, b.ID, b.Title).
			Scan(&b.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`insert into board_members(board_id, user_id, role) values($1,$2,$3)`,
			b.ID, actorID, RoleOwner); err != nil {
			return err
		}
		var err error
		ev, err = appendEvent(ctx, tx, b.ID, actorID, EventBoardCreated, BoardCreatedPayload{Board: b})
		return err
	})
	if err != nil {
		return Board{}, ActivityEvent{}, err
	}
	return b, ev, nil
}
