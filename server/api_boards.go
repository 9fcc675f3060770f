package main

import "net/http"

func (a *api) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := a.store.BoardsByUser(r.Context(), actorID(r))
	if err != nil {
		a.fail(w, "list boards", err)
		return
	}
	if boards == nil {
		boards = []Board{}
	}
	writeOK(w, 200, boards)
}

func (a *api) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &req); err != nil || !validTitle(req.Title, maxBoardTitleLen) {
		writeAPIError(w, 400, "VALIDATION", "invalid board title")
		return
	}
	b, ev, err := a.store.CreateBoard(r.Context(), actorID(r), req.Title)
	if err != nil {
		a.fail(w, "create board", err)
		return
	}
	writeOK(w, 200, map[string]any{"board": b, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"board": b})
}

func (a *api) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := a.store.GetBoard(r.Context(), actorID(r), chiParam(r, "boardID"))
	if err != nil {
		a.fail(w, "get board", err)
		return
	}
	writeOK(w, 200, b)
}

// handleBoardEvents joins the board's broadcast room over SSE. Only
// members may join.
func (a *api) handleBoardEvents(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	ok, err := a.store.IsMember(r.Context(), boardID, actorID(r))
	if err != nil {
		a.fail(w, "events access check", err)
		return
	}
	if !ok {
		writeAPIError(w, 403, "FORBIDDEN", "not a board member")
		return
	}
	a.bus.ServeSSE(w, r, boardID)
}
