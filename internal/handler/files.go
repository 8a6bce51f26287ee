package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/filebox/internal/admission"
	"github.com/filebox/internal/media"
	"github.com/filebox/internal/model"
	"github.com/filebox/internal/session"
	"github.com/filebox/internal/store"
)

// multipart parts beyond this size spill to temporary files
const maxMemory = 32 << 20

type fileStore interface {
	List(ctx context.Context) ([]model.StoredFile, error)
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Delete(ctx context.Context, filename string) error
	Open(ctx context.Context, filename string) (*os.File, os.FileInfo, error)
}

type dashboardPageData struct {
	Flashes     []string
	Listing     model.Listing
	Accept      string
	MaxUploadMB int64
}

// FilesHandler serves the dashboard and the upload, download and delete actions.
type FilesHandler struct {
	BaseHandler
	files          fileStore
	maxUploadBytes int64
	stripMetadata  bool
}

func NewFilesHandler(base BaseHandler, files fileStore, maxUploadBytes int64, stripMetadata bool) *FilesHandler {
	return &FilesHandler{
		BaseHandler:    base,
		files:          files,
		maxUploadBytes: maxUploadBytes,
		stripMetadata:  stripMetadata,
	}
}

// Dashboard lists the stored files grouped by category.
func (h *FilesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	exts := admission.Extensions()
	accept := make([]string, len(exts))
	for i, ext := range exts {
		accept[i] = "." + ext
	}

	sess := session.FromContext(r.Context())
	data := dashboardPageData{
		Flashes:     h.popFlashes(w, r, sess),
		Listing:     model.Partition(files),
		Accept:      strings.Join(accept, ","),
		MaxUploadMB: h.maxUploadBytes >> 20,
	}
	h.render(w, r, http.StatusOK, "dashboard.html", data)
}

// Upload stores the file posted in the "file" form field.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	if r.ContentLength > h.maxUploadBytes {
		h.flashRedirect(w, r, sess, "File is too large.", "/")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.flashRedirect(w, r, sess, "File is too large.", "/")
			return
		}
		h.flashRedirect(w, r, sess, "No file part in the request.", "/")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted with nothing selected arrives as a plain
		// value with an empty filename.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			h.flashRedirect(w, r, sess, "No file selected.", "/")
			return
		}
		h.flashRedirect(w, r, sess, "No file part in the request.", "/")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.flashRedirect(w, r, sess, "No file selected.", "/")
		return
	}
	if !admission.IsAllowed(header.Filename) {
		h.flashRedirect(w, r, sess, "File type not allowed.", "/")
		return
	}

	var content io.Reader = file
	if h.stripMetadata && model.CategoryOf(header.Filename) == model.CategoryImage {
		content, err = media.StripReader(file)
		if err != nil {
			h.logError(r, err)
			h.flashRedirect(w, r, sess, "Upload failed.", "/")
			return
		}
	}

	name, err := h.files.Save(r.Context(), header.Filename, content)
	if err != nil {
		if errors.Is(err, store.ErrInvalidName) {
			h.flashRedirect(w, r, sess, "Invalid file name.", "/")
			return
		}
		h.logError(r, err)
		h.flashRedirect(w, r, sess, "Upload failed.", "/")
		return
	}

	h.Logger.Info("files: uploaded", "name", name, "size", header.Size)
	h.flashRedirect(w, r, sess, "File uploaded successfully.", "/")
}

// Download sends a stored file as an attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "attachment")
}

// View sends a stored file inline so the dashboard can embed images and video.
func (h *FilesHandler) View(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "inline")
}

func (h *FilesHandler) serve(w http.ResponseWriter, r *http.Request, disposition string) {
	name := filenameParam(r)

	f, info, err := h.files.Open(r.Context(), name)
	if err != nil {
		sess := session.FromContext(r.Context())
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
			h.flashRedirect(w, r, sess, "File not found.", "/")
			return
		}
		h.serverError(w, r, err)
		return
	}
	defer f.Close()

	contentType, err := detectContentType(f, name)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// Delete removes a stored file.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	name := filenameParam(r)

	if err := h.files.Delete(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
			h.flashRedirect(w, r, sess, "File not found.", "/")
			return
		}
		h.logError(r, err)
		h.flashRedirect(w, r, sess, "File could not be deleted.", "/")
		return
	}

	h.Logger.Info("files: deleted", "name", name)
	h.flashRedirect(w, r, sess, "File deleted.", "/")
}

func filenameParam(r *http.Request) string {
	name := chi.URLParam(r, "filename")
	// chi matches against RawPath when the request path carried escapes that
	// Path cannot represent, leaving the parameter encoded.
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
	}
	return name
}

// detectContentType prefers the registered type for the extension and falls
// back to sniffing the content. f is rewound before returning.
func detectContentType(f io.ReadSeeker, name string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct, nil
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
