package api

import (
	"net/http"
	"strconv"

	"github.com/dailyworkspace/daybook/internal/types"
)

// listLists serves GET /api/lists?kanban=true|false&include_archived=true.
func (s *Server) listLists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter types.ListFilter
	if raw := q.Get("kanban"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid kanban filter", raw)
			return
		}
		filter.Kanban = &b
	}
	if raw := q.Get("include_archived"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid include_archived", raw)
			return
		}
		filter.IncludeArchived = b
	}
	lists, err := s.store.ListLists(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if lists == nil {
		lists = []*types.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

type listWithEntries struct {
	List    *types.List        `json:"list"`
	Entries []*types.NoteEntry `json:"entries"`
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	list, err := s.store.GetList(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.store.GetListEntries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*types.NoteEntry{}
	}
	writeJSON(w, http.StatusOK, listWithEntries{List: list, Entries: entries})
}

// createList decodes the flat list shape, so is_kanban/kanban_order choose the kind.
func (s *Server) createList(w http.ResponseWriter, r *http.Request) {
	var list types.List
	if !decodeJSON(w, r, &list) {
		return
	}
	list.ID = 0
	if err := s.store.CreateList(r.Context(), &list); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &list)
}

type listUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	OrderIndex  *int    `json:"order_index"`
	IsArchived  *bool   `json:"is_archived"`
	IsKanban    *bool   `json:"is_kanban"`
	KanbanOrder *int    `json:"kanban_order"`
}

// updateList applies a partial update through the membership enforcer, so
// turning a list into a Kanban column keeps single-column membership.
func (s *Server) updateList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req listUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	list, err := s.store.GetList(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	setIf(&list.Name, req.Name)
	setIf(&list.Description, req.Description)
	setIf(&list.Color, req.Color)
	setIf(&list.OrderIndex, req.OrderIndex)
	setIf(&list.IsArchived, req.IsArchived)
	isKanban, order := list.IsKanban(), list.KanbanOrder()
	setIf(&isKanban, req.IsKanban)
	setIf(&order, req.KanbanOrder)
	list.Kind = types.KindFromFlags(isKanban, order)

	if err := s.members.UpdateList(ctx, list); err != nil {
		writeError(w, err)
		return
	}
	list, err = s.store.GetList(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// deleteList removes the list and its memberships. Entries are kept.
func (s *Server) deleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteList(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "list deleted"})
}

type reorderRequest struct {
	Lists   []types.OrderUpdate `json:"lists,omitempty"`
	Entries []types.OrderUpdate `json:"entries,omitempty"`
}

func (s *Server) reorderLists(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.members.ReorderLists(r.Context(), req.Lists); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "lists reordered"})
}

func (s *Server) reorderListEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.members.ReorderListEntries(r.Context(), id, req.Entries); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "entries reordered"})
}

// addListEntry serves POST /api/lists/{id}/entries/{entryID}?order_index=N.
func (s *Server) addListEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	order := 0
	if raw := r.URL.Query().Get("order_index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "invalid order_index", raw)
			return
		}
		order = n
	}
	res, err := s.members.AddEntryToList(r.Context(), id, entryID, order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) removeListEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entryID, ok := pathID(w, r, "entryID")
	if !ok {
		return
	}
	if err := s.members.RemoveEntryFromList(r.Context(), id, entryID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "entry removed from list"})
}

func (s *Server) kanbanBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.members.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if board == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) initKanban(w http.ResponseWriter, r *http.Request) {
	cols, err := s.members.InitializeKanban(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cols)
}

func (s *Server) reorderKanban(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.members.ReorderKanban(r.Context(), req.Lists); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message{Message: "kanban columns reordered"})
}
