package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 20 << 20
	// DownloadURLTTL bounds the lifetime of presigned download links.
	DownloadURLTTL = 300 * time.Second
	// PrivateDocumentPrefix namespaces uploaded objects.
	PrivateDocumentPrefix = "private-documents/"
)

// Document is an operator-managed file in the private library.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"storage_key"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadPolicy restricts accepted content types by extension.
type UploadPolicy struct {
	types map[string]string
}

var (
	// LibraryUploads is accepted by the operator document library.
	LibraryUploads = UploadPolicy{types: map[string]string{
		"application/pdf": "pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"text/plain": "txt",
	}}
	// EvidenceUploads is accepted as compliance item evidence.
	EvidenceUploads = UploadPolicy{types: map[string]string{
		"application/pdf": "pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
		"text/plain": "txt",
		"image/png":  "png",
		"image/jpeg": "jpg",
	}}
)

// Check validates an upload and returns the object extension.
func (p UploadPolicy) Check(fileName, contentType string, size int64) (string, error) {
	const op = "check upload"
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	defaultExt, ok := p.types[mediaType]
	if !ok {
		return "", NewError(ErrInvalidInput, op, "unsupported file type "+contentType)
	}
	if size > MaxUploadBytes {
		return "", NewError(ErrInvalidInput, op, "file exceeds 20 MiB")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		ext = defaultExt
	}
	return ext, nil
}

// ObjectKey places an object under the private namespace.
func ObjectKey(id, ext string) string {
	if ext == "" {
		ext = "bin"
	}
	return PrivateDocumentPrefix + strings.ReplaceAll(id, "-", "") + "." + ext
}
