package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/infrastructure/storage"
	"github.com/baechuer/account-service/internal/logger"
	"github.com/baechuer/account-service/internal/transport/http/dto"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

const (
	ProfileImageField = "profileImage"

	// multipart headers and boundaries on top of the file itself
	multipartOverhead = 64 << 10
	multipartMemory   = 1 << 20
)

type AccountHandler struct {
	svc           *account.Service
	maxUploadSize int64
}

func NewAccountHandler(svc *account.Service, maxUploadSize int64) *AccountHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = account.DefaultMaxUploadSize
	}
	return &AccountHandler{svc: svc, maxUploadSize: maxUploadSize}
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		middleware.SignupsTotal.WithLabelValues("invalid").Inc()
		response.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Signup(r.Context(), account.SignupInput{
		Email:        req.Email,
		Phone:        req.Phone,
		Name:         req.Name,
		Password:     req.Password,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		middleware.SignupsTotal.WithLabelValues(signupStatus(err)).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.SignupsTotal.WithLabelValues("success").Inc()

	logger.WithCtx(r.Context()).Info().
		Str("account_id", p.ID).
		Msg("account_signed_up")

	response.Created(w, dto.FromProfile(p))
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.LoginIdentifier(), req.Password)
	if err != nil {
		status := "error"
		if domain.Is(err, "invalid_credentials") {
			status = "invalid_credentials"
		}
		middleware.LoginAttemptsTotal.WithLabelValues(status).Inc()
		response.WriteError(w, r, err)
		return
	}
	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

	response.OK(w, dto.FromLoginResult(res))
}

func (h *AccountHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAdminRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}

	caller := middleware.IdentityFromContext(r.Context())

	// The service validates input after the policy check.
	req.Normalize()
	p, err := h.svc.CreateAdmin(r.Context(), caller, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("account_id", p.ID).
		Str("actor_id", caller.AccountID).
		Msg("admin_created")

	response.Created(w, dto.FromProfile(p))
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListAccounts(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	out := dto.FromProfiles(ps)
	response.OK(w, dto.ListAccountsResponse{Accounts: out, Count: len(out)})
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Me(r.Context(), middleware.IdentityFromContext(r.Context()))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.FromProfile(p))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetAccount(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.FromProfile(p))
}

func (h *AccountHandler) ModifyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	p, err := h.svc.ModifyProfile(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), domain.AccountPatch{
		Name:         req.Name,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.FromProfile(p))
}

// UploadProfileImage handles multipart/form-data with the file under "profileImage".
// The content type is sniffed from the bytes; the client-declared type is ignored.
func (h *AccountHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	// Authorize before reading the body.
	if _, err := h.svc.Guard().OwnerOrAdmin(r.Context(), caller, targetID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteError(w, r, domain.ErrFileTooLarge(h.maxUploadSize))
			return
		}
		response.WriteError(w, r, domain.ErrFileRequired())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, fh, err := r.FormFile(ProfileImageField)
	if err != nil {
		response.WriteError(w, r, domain.ErrFileRequired())
		return
	}
	defer f.Close()

	contentType, body, err := storage.Sniff(f)
	if err != nil {
		response.WriteError(w, r, domain.ErrFileRequired())
		return
	}

	p, err := h.svc.UploadProfileImage(r.Context(), caller, targetID, body, account.FileMeta{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.OK(w, dto.FromProfile(p))
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), middleware.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

func signupStatus(err error) string {
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return "conflict"
	case domain.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}
