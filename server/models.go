package main

import "time"

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// BoardMember links a user to a board.
type BoardMember struct {
	BoardID string `json:"boardId"`
	UserID  string `json:"userId"`
	Role    string `json:"role"`
}

const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

type List struct {
	ID       string `json:"id"`
	BoardID  string `json:"boardId"`
	Title    string `json:"title"`
	Position int64  `json:"position"`
}

type Card struct {
	ID          string  `json:"id"`
	ListID      string  `json:"listId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Position    int64   `json:"position"`
}
