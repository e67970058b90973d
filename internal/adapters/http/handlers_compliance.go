package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

const uploadFormOverhead = 1 << 20

func (rt *Router) complianceScore(w http.ResponseWriter, r *http.Request) {
	score, err := rt.svc.Compliance.Score(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (rt *Router) listItems(w http.ResponseWriter, r *http.Request) {
	filter, err := itemFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.svc.Compliance.ListItems(r.Context(), mustPrincipal(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func itemFilterFromQuery(r *http.Request) (domain.ItemFilter, error) {
	q := r.URL.Query()
	filter := domain.ItemFilter{Category: strings.TrimSpace(q.Get("category"))}
	if raw := strings.TrimSpace(q.Get("item_type")); raw != "" {
		filter.ItemType = domain.ItemType(raw)
		if !filter.ItemType.Valid() {
			return domain.ItemFilter{}, domain.NewError(domain.ErrInvalidInput, "list items", "unknown item_type "+raw)
		}
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := domain.ParseItemStatus(raw)
		if err != nil {
			return domain.ItemFilter{}, err
		}
		filter.Status = status
	}
	return filter, nil
}

func (rt *Router) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := rt.svc.Compliance.GetItem(r.Context(), mustPrincipal(r), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) updateItem(w http.ResponseWriter, r *http.Request) {
	var req itemUpdateRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	update, err := req.update()
	if err != nil {
		writeError(w, r, err)
		return
	}
	item, err := rt.svc.Compliance.UpdateItem(r.Context(), mustPrincipal(r), chi.URLParam(r, "itemID"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) acknowledgeItem(w http.ResponseWriter, r *http.Request) {
	item, err := rt.svc.Compliance.AcknowledgeItem(r.Context(), mustPrincipal(r), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item acknowledged",
		"item_id": item.ID,
		"item":    item,
	})
}

func (rt *Router) uploadItemFile(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	item, err := rt.svc.Compliance.AttachFile(r.Context(), mustPrincipal(r), chi.URLParam(r, "itemID"), upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (rt *Router) itemFileURL(w http.ResponseWriter, r *http.Request) {
	url, err := rt.svc.Compliance.FileDownloadURL(r.Context(), mustPrincipal(r), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url, "expires_in": 300})
}

func (rt *Router) complianceCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := rt.svc.Compliance.Categories(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (rt *Router) complianceTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.ItemTypes())
}

// readUpload extracts the multipart "file" field. The body is capped just
// above the upload limit so oversized files fail before they are buffered.
func readUpload(w http.ResponseWriter, r *http.Request) (ports.Upload, func(), error) {
	const op = "read upload"
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadBytes+uploadFormOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ports.Upload{}, nil, domain.NewError(domain.ErrInvalidInput, op, "file exceeds 20 MiB")
		}
		return ports.Upload{}, nil, domain.WrapError(domain.ErrInvalidInput, op, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return ports.Upload{}, nil, domain.NewError(domain.ErrInvalidInput, op, "multipart field 'file' is required")
	}
	cleanup := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ports.Upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, cleanup, nil
}
