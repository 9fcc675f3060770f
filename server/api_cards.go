package main

import (
	"encoding/json"
	"net/http"
)

func (a *api) handleCardsByList(w http.ResponseWriter, r *http.Request) {
	listID := chiParam(r, "listID")
	boardID, cards, err := a.store.CardsByList(r.Context(), actorID(r), listID)
	if err != nil {
		a.fail(w, "cards by list", err)
		return
	}
	if cards == nil {
		cards = []Card{}
	}
	writeOK(w, 200, map[string]any{"boardId": boardID, "listId": listID, "cards": cards})
}

func (a *api) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	listID := chiParam(r, "listID")
	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	if err := readJSON(w, r, &req); err != nil || !validTitle(req.Title, maxCardTitleLen) {
		writeAPIError(w, 400, "VALIDATION", "invalid card title")
		return
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		writeAPIError(w, 400, "VALIDATION", "description too long")
		return
	}
	c, ev, err := a.store.CreateCard(r.Context(), actorID(r), listID, req.Title, req.Description)
	if err != nil {
		a.fail(w, "create card", err)
		return
	}
	writeOK(w, 200, map[string]any{"card": c, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"card": c})
}

func (a *api) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID := chiParam(r, "cardID")
	// Description is decoded raw so "description": null (clear) is
	// distinguishable from the key being absent (leave unchanged).
	var req struct {
		Title       *string         `json:"title"`
		Description json.RawMessage `json:"description"`
		Position    *int64          `json:"position"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeAPIError(w, 400, "VALIDATION", "invalid payload")
		return
	}
	if req.Title != nil && !validTitle(*req.Title, maxCardTitleLen) {
		writeAPIError(w, 400, "VALIDATION", "invalid card title")
		return
	}
	patch := CardPatch{Title: req.Title, Position: req.Position}
	if len(req.Description) > 0 {
		patch.SetDescription = true
		if string(req.Description) != "null" {
			var d string
			if err := json.Unmarshal(req.Description, &d); err != nil || len(d) > maxDescriptionLen {
				writeAPIError(w, 400, "VALIDATION", "invalid description")
				return
			}
			patch.Description = &d
		}
	}
	c, ev, err := a.store.UpdateCard(r.Context(), actorID(r), cardID, patch)
	if err != nil {
		a.fail(w, "update card", err)
		return
	}
	writeOK(w, 200, map[string]any{"card": c, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"card": c})
}

func (a *api) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID := chiParam(r, "cardID")
	ev, err := a.store.DeleteCard(r.Context(), actorID(r), cardID)
	if err != nil {
		a.fail(w, "delete card", err)
		return
	}
	writeOK(w, 200, map[string]any{"deletedCardId": cardID, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"deletedCardId": cardID})
}

func (a *api) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	cardID := chiParam(r, "cardID")
	var req struct {
		ToListID string `json:"toListId"`
		ToIndex  *int   `json:"toIndex"`
	}
	if err := readJSON(w, r, &req); err != nil || req.ToListID == "" || req.ToIndex == nil || *req.ToIndex < 0 {
		writeAPIError(w, 400, "VALIDATION", "toListId and a non-negative toIndex are required")
		return
	}
	c, ev, err := a.store.MoveCard(r.Context(), actorID(r), cardID, req.ToListID, *req.ToIndex)
	if err != nil {
		a.fail(w, "move card", err)
		return
	}
	writeOK(w, 200, map[string]any{"card": c, "activityEvent": ev})
	a.bus.emitActivity(ev, map[string]any{"card": c})
}
