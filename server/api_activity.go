package main

import (
	"net/http"
	"strconv"
)

func (a *api) handleActivity(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxActivityLimit {
			writeAPIError(w, 400, "VALIDATION", "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	events, next, err := a.store.ActivityByBoard(r.Context(), actorID(r), boardID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		a.fail(w, "activity feed", err)
		return
	}
	if events == nil {
		events = []ActivityEvent{}
	}
	var nextCursor any
	if next != "" {
		nextCursor = next
	}
	writeOK(w, 200, map[string]any{"events": events, "nextCursor": nextCursor})
}

func (a *api) handleClearActivity(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	if err := a.store.ClearActivity(r.Context(), actorID(r), boardID); err != nil {
		a.fail(w, "clear activity", err)
		return
	}
	writeOK(w, 200, map[string]any{"cleared": true})
	a.bus.Publish(boardID, "board:activity_cleared", map[string]any{"boardId": boardID})
}

func (a *api) handleUndo(w http.ResponseWriter, r *http.Request) {
	eventID := chiParam(r, "eventID")
	res, err := a.store.UndoEvent(r.Context(), actorID(r), eventID)
	if err != nil {
		a.fail(w, "undo event", err)
		return
	}
	if res.AlreadyUndone {
		writeAPIError(w, 409, codeAlreadyUndone, "event already undone")
		return
	}
	writeOK(w, 200, map[string]any{"activityEvent": res.Event})
	a.bus.emitActivity(res.Event, map[string]any{"undoneEventId": eventID})
}
