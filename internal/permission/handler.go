package permission

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/transport"

	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{Search: q.Get("search")}
	if v := q.Get("is_active"); v != "" {
		active := v == "true" || v == "1"
		params.Active = &active
	}
	if v := q.Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	params.ModeSelect = q.Get("mode") == "select"

	perms, total, err := h.Service.List(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if params.ModeSelect {
		options := make([]SelectOption, 0, len(perms))
		for _, p := range perms {
			options = append(options, SelectOption{Label: p.Name, Value: p.ID})
		}
		h.WriteJSON(w, http.StatusOK, SelectResponse{Data: options})
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{
		Offset: params.Offset,
		Limit:  params.Limit,
		Total:  total,
		Data:   perms,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	found, err := h.Service.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var dto PermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) OnOff(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var dto OnOffDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.Service.SetActive(id, *dto.IsActive)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) SetFunctions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	var dto SetFunctionsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.Service.SetFunctions(id, dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) SetForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var dto SetGrantsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	granted, err := h.Service.SetForUser(userID, dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Data: granted})
}

func (h *Handler) SetForGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var dto SetGrantsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	granted, err := h.Service.SetForGroup(groupID, dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Data: granted})
}

func (h *Handler) GrantedToUser(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.GrantedToUser, "invalid user id")
}

func (h *Handler) GrantedToGroup(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.GrantedToGroup, "invalid group id")
}

func (h *Handler) AvailableForUser(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.AvailableForUser, "invalid user id")
}

func (h *Handler) AvailableForGroup(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.AvailableForGroup, "invalid group id")
}

func (h *Handler) grants(w http.ResponseWriter, r *http.Request, load func(int64) ([]*Permission, error), badID string) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, badID)
		return
	}

	perms, err := load(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Data: perms})
}

func (h *Handler) ListFunctions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := FunctionListParams{Search: q.Get("search")}
	if v := q.Get("available"); v != "" {
		available := v == "true" || v == "1"
		params.Available = &available
	}
	if v := q.Get("permission"); v != "" {
		if permID, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.Permission = &permID
		}
	}
	if v := q.Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}
	if v := q.Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}

	fns, total, err := h.Service.ListFunctions(params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionListResponse{
		Offset: params.Offset,
		Limit:  params.Limit,
		Total:  total,
		Data:   fns,
	})
}

func (h *Handler) GetFunction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid function id")
		return
	}

	fn, err := h.Service.GetFunction(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, fn)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		h.WriteError(w, http.StatusBadRequest, vErr.Msg)
		return
	}
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.Logger.Error("permission handler error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
