package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/blob"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/mw"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
)

const (
	msgUploadFailed = "Failed to upload the logo."
	maxUploadBody   = 2 * domain.MaxLogoBytes
)

type sessionResponse struct {
	State   string    `json:"state"`
	Email   string    `json:"email"`
	Name    string    `json:"name,omitempty"`
	Expires time.Time `json:"expires"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type urlResponse struct {
	URL string `json:"url"`
}

type faviconRequest struct {
	ApplyURL string `json:"applyUrl"`
}

// AdminSession describes the signed-in admin.
func AdminSession(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := mw.AdminSession(r.Context())
		if !ok {
			respond.Error(w, d.Logger, &domain.ErrAuthentication{Reason: "admin session required"})
			return
		}
		respond.JSON(w, http.StatusOK, sessionResponse{
			State:   string(session.State),
			Email:   session.Email,
			Name:    session.Name,
			Expires: session.Expires,
		})
	}
}

func CreateJob(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := domain.JobInput{}
		if err := readAndValidateBody(r, jobInputSchema, &in); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		id, err := d.Jobs.Create(r.Context(), in)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusCreated, createdResponse{ID: id})
	}
}

// UpdateJob fully replaces the listing; omitted optional fields are cleared.
func UpdateJob(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := domain.JobInput{}
		if err := readAndValidateBody(r, jobInputSchema, &in); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		if err := d.Jobs.Update(r.Context(), chi.URLParam(r, "id"), in); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteJob(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Jobs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadLogo stores a multipart "file" image and returns its public URL.
// Size and type are checked before anything reaches the object store.
func UploadLogo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Oversized files still parse so the size check below can name the limit.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respond.Error(w, d.Logger, domain.NewErrValidation(domain.MsgLogoTooLarge))
				return
			}
			respond.Error(w, d.Logger, domain.NewErrValidation("Could not read the uploaded file."))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			respond.Error(w, d.Logger, domain.NewErrValidation("Please choose an image file."))
			return
		}
		defer func() { _ = file.Close() }()

		// The declared Content-Type is client input; the bytes decide.
		contentType, err := sniffContentType(file)
		if err != nil {
			respond.Error(w, d.Logger, domain.NewErrValidation("Could not read the uploaded file."))
			return
		}
		if err := domain.ValidateLogoFile(header.Size, contentType); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		company := strings.TrimSpace(r.FormValue("company"))
		key := blob.LogoKey(company, d.Now())
		url, err := d.Blobs.Upload(r.Context(), key, contentType, file)
		if err != nil {
			d.Logger.Error("logo upload failed",
				logger.String("key", key),
				logger.Error(err))
			respond.Error(w, d.Logger, &domain.ErrTransientBackend{Op: "upload logo", Message: msgUploadFailed, Err: err})
			return
		}

		d.Logger.Info("logo uploaded", logger.String("url", url))
		respond.JSON(w, http.StatusCreated, urlResponse{URL: url})
	}
}

// sniffContentType detects the type from the first 512 bytes and rewinds file.
func sniffContentType(file multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// ResolveFavicon derives the favicon of the apply URL's site and checks it loads.
func ResolveFavicon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := faviconRequest{}
		if err := readAndValidateBody(r, faviconRequestSchema, &req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		url, err := d.Favicons.Resolve(r.Context(), req.ApplyURL)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, urlResponse{URL: url})
	}
}
