package httpadapter

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) adminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rt.svc.Admin.Users(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (rt *Router) adminBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := rt.svc.Admin.Businesses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, businesses)
}

func (rt *Router) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Admin.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// adminExport renders into memory first so a failed export still gets a
// JSON error instead of a truncated workbook.
func (rt *Router) adminExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.svc.Admin.ExportBusinesses(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="businesses.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) uploadLibraryDocument(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	meta := domain.Document{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	doc, err := rt.svc.Library.Upload(r.Context(), mustPrincipal(r), meta, upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) listLibraryDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.svc.Library.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) libraryDownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := rt.svc.Library.DownloadURL(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url, "expires_in": 300})
}

func (rt *Router) deleteLibraryDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Library.Delete(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}
