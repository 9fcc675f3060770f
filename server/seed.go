package main

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// seedDemo creates the demo user's starter board with three lists and a
// few cards. Idempotent: a user that already has boards is left alone.
// Seeded rows get no activity events; the feed starts with real actions.
func seedDemo(ctx context.Context, s *Store, userID string) error {
	if _, err := s.EnsureUser(ctx, userID); err != nil {
		return err
	}
	boards, err := s.BoardsByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(boards) > 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		boardID := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`insert into boards(id, title) values($1,$2)`, boardID, "Demo Board"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`insert into board_members(board_id, user_id, role) values($1,$2,$3)`,
			boardID, userID, RoleOwner); err != nil {
			return err
		}

		lists := []struct {
			title string
			pos   int64
		}{
			{"To do", 1000},
			{"Doing", 2000},
			{"Done", 3000},
		}
		listIDs := make([]string, len(lists))
		for i, l := range lists {
			listIDs[i] = uuid.NewString()
			if _, err := tx.ExecContext(ctx,
				`insert into lists(id, board_id, title, position) values($1,$2,$3,$4)`,
				listIDs[i], boardID, l.title, l.pos); err != nil {
				return err
			}
		}

		cards := []struct {
			list  int
			title string
			pos   int64
		}{
			{0, "Try dragging this card", 1000},
			{0, "Open the activity feed", 2000},
			{1, "Undo something", 1000},
		}
		for _, c := range cards {
			if _, err := tx.ExecContext(ctx,
				`insert into cards(id, list_id, title, position) values($1,$2,$3,$4)`,
				uuid.NewString(), listIDs[c.list], c.title, c.pos); err != nil {
				return err
			}
		}
		return nil
	})
}
