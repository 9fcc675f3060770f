package main

import "net/http"

func (a *api) handleListsByBoard(w http.ResponseWriter, r *http.Request) {
	lists, err := a.store.ListsByBoard(r.Context(), actorID(r), chiParam(r, "boardID"))
	if err != nil {
		a.fail(w, "lists by board", err)
		return
	}
	if lists == nil {
		lists = []List{}
	}
	writeOK(w, 200, lists)
}

func (a *api) handleCreateList(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &req); err != nil || !validTitle(req.Title, maxListTitleLen) {
		writeAPIError(w, 400, "VALIDATION", "invalid list title")
		return
	}
	l, ev, err := a.store.CreateList(r.Context(), actorID(r), boardID, req.Title)
	if err != nil {
		a.fail(w, "create list", err)
		return
	}
	writeOK(w, 200, map[string]any{"list": l, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"list": l})
}

func (a *api) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	listID := chiParam(r, "listID")
	var req struct {
		Title    *string `json:"title"`
		Position *int64  `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeAPIError(w, 400, "VALIDATION", "invalid payload")
		return
	}
	if req.Title != nil && !validTitle(*req.Title, maxListTitleLen) {
		writeAPIError(w, 400, "VALIDATION", "invalid list title")
		return
	}
	l, ev, err := a.store.UpdateList(r.Context(), actorID(r), boardID, listID, ListPatch{Title: req.Title, Position: req.Position})
	if err != nil {
		a.fail(w, "update list", err)
		return
	}
	writeOK(w, 200, map[string]any{"list": l, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"list": l})
}

func (a *api) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	listID := chiParam(r, "listID")
	ev, err := a.store.DeleteList(r.Context(), actorID(r), boardID, listID)
	if err != nil {
		a.fail(w, "delete list", err)
		return
	}
	writeOK(w, 200, map[string]any{"deletedListId": listID, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"deletedListId": listID})
}

func (a *api) handleReorderLists(w http.ResponseWriter, r *http.Request) {
	boardID := chiParam(r, "boardID")
	var req struct {
		ListIDs []string `json:"listIds"`
	}
	if err := readJSON(w, r, &req); err != nil || len(req.ListIDs) == 0 {
		writeAPIError(w, 400, "VALIDATION", "listIds must be a non-empty array")
		return
	}
	ev, err := a.store.ReorderLists(r.Context(), actorID(r), boardID, req.ListIDs)
	if err != nil {
		a.fail(w, "reorder lists", err)
		return
	}
	writeOK(w, 200, map[string]any{"listIds": req.ListIDs, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"listIds": req.ListIDs})
}
