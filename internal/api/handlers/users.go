package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/api/validate"
	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/services"
	"github.com/baharkarakas/asso-backend/internal/uploads"
)

type UserHandler struct {
	Svc   *services.UserService
	Files *uploads.Store
}

func NewUserHandler(svc *services.UserService, files *uploads.Store) *UserHandler {
	return &UserHandler{Svc: svc, Files: files}
}

type registerReq struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		validate.Required("name", req.Name),
		validate.Required("nickname", req.Nickname),
		validate.Required("email", req.Email),
		validate.MinLen("password", req.Password, 8),
	); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	u, err := h.Svc.Register(r.Context(), services.RegisterInput(req))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	s, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, s)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(validate.Required("refresh_token", req.RefreshToken)); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	s, err := h.Svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, s)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.Get(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, u)
}

type updateUserReq struct {
	Name     optString `json:"name"`
	Nickname optString `json:"nickname"`
	Email    optString `json:"email"`
	Role     optString `json:"role"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		validate.OneOf("role", req.Role.Val, string(models.RoleMember), string(models.RoleAdmin)),
	); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	patch := services.UserPatch{
		Name:     req.Name.Ptr(),
		Nickname: req.Nickname.Ptr(),
		Email:    req.Email.Ptr(),
	}
	if req.Role.Set && req.Role.Val != "" {
		role := models.Role(req.Role.Val)
		patch.Role = &role
	}
	u, err := h.Svc.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "user deleted")
}

// ProfilePicture expects a multipart body with the image under "profile_pic".
func (h *UserHandler) ProfilePicture(w http.ResponseWriter, r *http.Request) {
	var ignored struct{}
	fh, err := bind(w, r, &ignored, "profile_pic")
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if fh == nil {
		httpx.WriteErr(w, r, apperr.New(apperr.Validation, "profile_pic: required"))
		return
	}
	path, err := saveUpload(h.Files, fh)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	u, err := h.Svc.SetProfilePicture(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), path)
	if err != nil {
		_ = h.Files.Remove(path)
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, u)
}
