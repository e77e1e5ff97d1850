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

type PostHandler struct {
	Svc   *services.PostService
	Files *uploads.Store
}

func NewPostHandler(svc *services.PostService, files *uploads.Store) *PostHandler {
	return &PostHandler{Svc: svc, Files: files}
}

type postReq struct {
	Title    optString `json:"title"`
	Content  optString `json:"content"`
	Category optString `json:"category"`
}

func (req postReq) check() error {
	return validate.Collect(validate.OneOf("category", req.Category.Val,
		string(models.CategoryNews), string(models.CategoryAnnouncement)))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postReq
	fh, err := bind(w, r, &req, "image")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		validate.Required("title", req.Title.Val),
		validate.Required("content", req.Content.Val),
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
	p, err := h.Svc.Create(r.Context(), auth.FromContext(r.Context()), services.PostInput{
		Title:    req.Title.Val,
		Content:  req.Content.Val,
		Category: models.PostCategory(req.Category.Val),
		Image:    image,
	})
	if err != nil {
		_ = h.Files.Remove(image)
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, p)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Svc.List(r.Context())
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, p)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req postReq
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
	patch := services.PostPatch{Title: req.Title.Ptr(), Content: req.Content.Ptr()}
	if req.Category.Val != "" {
		c := models.PostCategory(req.Category.Val)
		patch.Category = &c
	}
	if image != "" {
		patch.Image = &image
	}
	p, err := h.Svc.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		_ = h.Files.Remove(image)
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, p)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "post deleted")
}
