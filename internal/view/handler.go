package view

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

	views, total, err := h.Service.List(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if params.ModeSelect {
		options := make([]SelectOption, 0, len(views))
		for _, v := range views {
			options = append(options, SelectOption{Label: v.Name, Value: v.ID})
		}
		h.WriteJSON(w, http.StatusOK, SelectResponse{Data: options})
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{
		Offset: params.Offset,
		Limit:  params.Limit,
		Total:  total,
		Data:   views,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid view id")
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
	var dto ViewDTO
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
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid view id")
		return
	}

	var dto ViewDTO
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
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid view id")
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

func (h *Handler) SetForUser(w http.ResponseWriter, r *http.Request) {
	h.setGrants(w, r, h.Service.SetForUser, "invalid user id")
}

func (h *Handler) SetForApp(w http.ResponseWriter, r *http.Request) {
	h.setGrants(w, r, h.Service.SetForApp, "invalid app id")
}

func (h *Handler) setGrants(w http.ResponseWriter, r *http.Request, set func(int64, SetGrantsDTO) ([]*View, error), badID string) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, badID)
		return
	}

	var dto SetGrantsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	granted, err := set(id, dto)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Data: granted})
}

func (h *Handler) GrantedToUser(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.GrantedToUser, "invalid user id")
}

func (h *Handler) GrantedToApp(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.GrantedToApp, "invalid app id")
}

func (h *Handler) AvailableForUser(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.AvailableForUser, "invalid user id")
}

func (h *Handler) AvailableForApp(w http.ResponseWriter, r *http.Request) {
	h.grants(w, r, h.Service.AvailableForApp, "invalid app id")
}

func (h *Handler) grants(w http.ResponseWriter, r *http.Request, load func(int64) ([]*View, error), badID string) {
	id, err := pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, badID)
		return
	}

	views, err := load(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GrantsResponse{Data: views})
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
	h.Logger.Error("view handler error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
