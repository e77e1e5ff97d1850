package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/api/validate"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/services"
	"github.com/baharkarakas/asso-backend/internal/uploads"
)

type EventHandler struct {
	Svc   *services.EventService
	Files *uploads.Store
}

func NewEventHandler(svc *services.EventService, files *uploads.Store) *EventHandler {
	return &EventHandler{Svc: svc, Files: files}
}

type eventReq struct {
	Title           optString `json:"title"`
	Description     optString `json:"description"`
	Date            optTime   `json:"date"`
	Time            optString `json:"time"`
	Location        optString `json:"location"`
	MaxParticipants optInt    `json:"max_participants"`
	Status          optString `json:"status"`
}

func (req eventReq) check() error {
	var bound *validate.ErrField
	if n := req.MaxParticipants.Ptr(); n != nil {
		bound = validate.MinInt("max_participants", int64(*n), 1)
	}
	return validate.Collect(
		validate.OneOf("status", req.Status.Val,
			string(models.EventUpcoming), string(models.EventOngoing),
			string(models.EventFinished), string(models.EventCancelled)),
		bound,
	)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventReq
	fh, err := bind(w, r, &req, "image")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		validate.Required("title", req.Title.Val),
		validate.Required("description", req.Description.Val),
		validate.Required("location", req.Location.Val),
		required("date", req.Date.Set),
	); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := req.check(); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	image, err := saveUpload(h.Files, fh)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	ev, err := h.Svc.Create(r.Context(), auth.FromContext(r.Context()), services.EventInput{
		Title:           req.Title.Val,
		Description:     req.Description.Val,
		Date:            req.Date.Val,
		Time:            req.Time.Val,
		Location:        req.Location.Val,
		Image:           image,
		MaxParticipants: req.MaxParticipants.Ptr(),
		Status:          models.EventStatus(req.Status.Val),
	})
	if err != nil {
		_ = h.Files.Remove(image)
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, ev)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.List(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ev)
}

// Update treats max_participants null or "" as removing the bound.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventReq
	fh, err := bind(w, r, &req, "image")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := req.check(); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	image, err := saveUpload(h.Files, fh)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	patch := services.EventPatch{
		Title:           req.Title.Ptr(),
		Description:     req.Description.Ptr(),
		Date:            req.Date.Ptr(),
		Time:            req.Time.Ptr(),
		Location:        req.Location.Ptr(),
		MaxParticipants: req.MaxParticipants.Ptr(),
		Unbounded:       req.MaxParticipants.Set && req.MaxParticipants.Null,
	}
	if req.Status.Val != "" {
		st := models.EventStatus(req.Status.Val)
		patch.Status = &st
	}
	if image != "" {
		patch.Image = &image
	}
	ev, err := h.Svc.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		_ = h.Files.Remove(image)
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ev)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "event deleted")
}

func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Svc.Join(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ev)
}

func (h *EventHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Svc.Leave(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ev)
}
