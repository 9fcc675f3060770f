package main

import (
	"context"
	"database/sql"
	"errors"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// dbtx is the subset of *sql.DB and *sql.Tx the query helpers need, so
// the same code runs inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside one transaction. Any error aborts the whole
// transaction; no partial state is ever persisted.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// EnsureUser upserts the demo user for an actor id taken from the
// trusted X-User-Id header. There is no real authentication here.
func (s *Store) EnsureUser(ctx context.Context, id string) (User, error) {
	name := "User " + id
	if id == "demo-user" {
		name = "Demo User"
	}
	var u User
	err := s.db.QueryRowContext(ctx,
		`insert into users(id, name) values($1,$2)
		 on conflict (id) do update set id = excluded.id
		 returning id, name`, id, name).
		Scan(&u.ID, &u.Name)
	return u, err
}

func isMember(ctx context.Context, q dbtx, boardID, userID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`select 1 from board_members where board_id=$1 and user_id=$2`, boardID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// requireMember gates every mutation and the undo engine: the actor must
// be a member of the board owning the target entity.
func requireMember(ctx context.Context, q dbtx, boardID, userID string) error {
	ok, err := isMember(ctx, q, boardID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// IsMember is the exported membership check used outside transactions,
// e.g. to gate joining a board's broadcast room.
func (s *Store) IsMember(ctx context.Context, boardID, userID string) (bool, error) {
	return isMember(ctx, s.db, boardID, userID)
}

func (s *Store) BoardsByUser(ctx context.Context, userID string) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`select b.id, b.title, b.created_at from boards b
		 join board_members m on m.board_id = b.id
		 where m.user_id=$1 order by b.created_at desc, b.id desc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Title, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBoard is member-scoped: a board the user cannot see reads as absent.
func (s *Store) GetBoard(ctx context.Context, userID, boardID string) (Board, error) {
	var b Board
	err := s.db.QueryRowContext(ctx,
		`select b.id, b.title, b.created_at from boards b
		 join board_members m on m.board_id = b.id
		 where b.id=$1 and m.user_id=$2`, boardID, userID).
		Scan(&b.ID, &b.Title, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	return b, err
}

func (s *Store) ListsByBoard(ctx context.Context, actorID, boardID string) ([]List, error) {
	if err := requireMember(ctx, s.db, boardID, actorID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, title, position from lists where board_id=$1 order by position, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []List
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CardsByList returns the owning board id alongside the cards so the
// boundary layer can report scope without a second lookup.
func (s *Store) CardsByList(ctx context.Context, actorID, listID string) (string, []Card, error) {
	l, err := getList(ctx, s.db, listID)
	if err != nil {
		return "", nil, err
	}
	if err := requireMember(ctx, s.db, l.BoardID, actorID); err != nil {
		return "", nil, err
	}
	cards, err := cardsByList(ctx, s.db, listID)
	if err != nil {
		return "", nil, err
	}
	return l.BoardID, cards, nil
}

func getList(ctx context.Context, q dbtx, listID string) (List, error) {
	var l List
	err := q.QueryRowContext(ctx,
		`select id, board_id, title, position from lists where id=$1`, listID).
		Scan(&l.ID, &l.BoardID, &l.Title, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrNotFound
	}
	return l, err
}

func getListInBoard(ctx context.Context, q dbtx, boardID, listID string) (List, error) {
	var l List
	err := q.QueryRowContext(ctx,
		`select id, board_id, title, position from lists where id=$1 and board_id=$2`, listID, boardID).
		Scan(&l.ID, &l.BoardID, &l.Title, &l.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, ErrNotFound
	}
	return l, err
}

func getCard(ctx context.Context, q dbtx, cardID string) (Card, error) {
	var c Card
	var desc sql.NullString
	err := q.QueryRowContext(ctx,
		`select id, list_id, title, description, position from cards where id=$1`, cardID).
		Scan(&c.ID, &c.ListID, &c.Title, &desc, &c.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return c, err
}

func cardsByList(ctx context.Context, q dbtx, listID string) ([]Card, error) {
	rows, err := q.QueryContext(ctx,
		`select id, list_id, title, description, position from cards where list_id=$1 order by position, id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Card
	for rows.Next() {
		var c Card
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.ListID, &c.Title, &desc, &c.Position); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = &desc.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func cardIDsByList(ctx context.Context, q dbtx, listID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`select id from cards where list_id=$1 order by position, id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func listIDsByBoard(ctx context.Context, q dbtx, boardID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`select id from lists where board_id=$1 order by position, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func applyCardPositions(ctx context.Context, q dbtx, ps []idPosition) error {
	for _, p := range ps {
		if _, err := q.ExecContext(ctx, `update cards set position=$1 where id=$2`, p.Position, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// applyCardPositionsToList also re-parents each card, used for the
// destination side of a cross-list move.
func applyCardPositionsToList(ctx context.Context, q dbtx, listID string, ps []idPosition) error {
	for _, p := range ps {
		if _, err := q.ExecContext(ctx, `update cards set list_id=$1, position=$2 where id=$3`, listID, p.Position, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func applyListPositions(ctx context.Context, q dbtx, ps []idPosition) error {
	for _, p := range ps {
		if _, err := q.ExecContext(ctx, `update lists set position=$1 where id=$2`, p.Position, p.ID); err != nil {
			return err
		}
	}
	return nil
}

const schema = `
create table if not exists users(
    id text primary key,
    name text not null default '',
    created_at timestamptz not null default now()
);
create table if not exists boards(
    id text primary key,
    title text not null check (length(title) > 0),
    created_at timestamptz not null default now()
);
create table if not exists board_members(
    board_id text not null references boards(id) on delete cascade,
    user_id text not null references users(id) on delete cascade,
    role text not null default 'MEMBER' check (role in ('OWNER','MEMBER')),
    created_at timestamptz not null default now(),
    primary key(board_id, user_id)
);
create table if not exists lists(
    id text primary key,
    board_id text not null references boards(id) on delete cascade,
    title text not null check (length(title) > 0),
    position bigint not null default 1000,
    created_at timestamptz not null default now()
);
create index if not exists lists_board_idx on lists(board_id);
create table if not exists cards(
    id text primary key,
    list_id text not null references lists(id) on delete cascade,
    title text not null check (length(title) > 0),
    description text,
    position bigint not null default 1000,
    created_at timestamptz not null default now()
);
create index if not exists cards_list_idx on cards(list_id);
create table if not exists activity_events(
    id text primary key,
    board_id text not null references boards(id) on delete cascade,
    actor_user_id text not null,
    type text not null,
    payload_json text not null default 'null',
    created_at timestamptz not null default now(),
    undone_at timestamptz
);
create index if not exists activity_board_idx on activity_events(board_id, created_at desc, id desc);
`
