package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/ports"
)

// DocumentLibraryUseCase manages the operator document library.
type DocumentLibraryUseCase struct {
	documents ports.DocumentRepository
	storage   ports.ObjectStorage
	now       func() time.Time
}

func NewDocumentLibraryUseCase(documents ports.DocumentRepository, storage ports.ObjectStorage) *DocumentLibraryUseCase {
	return &DocumentLibraryUseCase{
		documents: documents,
		storage:   storage,
		now:       utcNow,
	}
}

func (uc *DocumentLibraryUseCase) Upload(ctx context.Context, principal domain.Principal, meta domain.Document, upload ports.Upload) (*domain.Document, error) {
	const op = "upload document"
	ext, err := domain.LibraryUploads.Check(upload.FileName, upload.ContentType, upload.Size)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	key := domain.ObjectKey(id, ext)
	if err := uc.storage.Put(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		return nil, domain.WrapError(domain.ErrUpstream, op, err)
	}

	doc := &domain.Document{
		ID:          id,
		Title:       strings.TrimSpace(meta.Title),
		Description: meta.Description,
		Category:    meta.Category,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
		SizeBytes:   upload.Size,
		StorageKey:  key,
		UploadedBy:  principal.ID,
		CreatedAt:   uc.now(),
	}
	if doc.Title == "" {
		doc.Title = upload.FileName
	}
	if err := uc.documents.Create(ctx, doc); err != nil {
		if delErr := uc.storage.Delete(ctx, key); delErr != nil {
			slog.Warn("orphaned_object", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	return doc, nil
}

func (uc *DocumentLibraryUseCase) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := uc.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *DocumentLibraryUseCase) DownloadURL(ctx context.Context, documentID string) (string, error) {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	url, err := uc.storage.PresignGet(ctx, doc.StorageKey, domain.DownloadURLTTL)
	if err != nil {
		return "", domain.WrapError(domain.ErrUpstream, "presign document", err)
	}
	return url, nil
}

// Delete removes the object first, then its metadata.
func (uc *DocumentLibraryUseCase) Delete(ctx context.Context, documentID string) error {
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StorageKey); err != nil {
		return domain.WrapError(domain.ErrUpstream, "delete document object", err)
	}
	return uc.documents.Delete(ctx, doc.ID)
}
