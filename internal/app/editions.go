package app

import (
	"context"
	"time"

	"epaperadmin/internal/util"
	"epaperadmin/pkg/domain"
	"epaperadmin/pkg/store"
)

// CreateEdition inserts a draft edition. The pdf/thumbnail paths come
// from the upload pipeline; this side only records them.
func (a *App) CreateEdition(cmd CreateEdition) (domain.Edition, error) {
	if cmd.Title == "" {
		return domain.Edition{}, domain.Validationf("edition title is required")
	}
	pub := cmd.PublicationDate
	if pub.IsZero() {
		pub = time.Now().UTC().Truncate(24 * time.Hour)
	}
	now := time.Now().UTC()
	ed := domain.Edition{
		Title:           cmd.Title,
		Slug:            util.Slugify(cmd.Title),
		Description:     cmd.Description,
		PublicationDate: pub,
		PDFPath:         cmd.PDFPath,
		ThumbnailPath:   cmd.ThumbnailPath,
		TotalPages:      cmd.TotalPages,
		Status:          domain.StatusDraft,
		Category:        cmd.Category,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	id, err := a.store.CreateEdition(ed)
	if err != nil {
		return domain.Edition{}, err
	}
	ed.ID = id
	if len(cmd.CategoryIDs) > 0 {
		if err := a.store.SetEditionCategories(id, cmd.CategoryIDs); err != nil {
			return domain.Edition{}, err
		}
	}
	return ed, nil
}

// UpdateEdition rewrites an edition's editable fields. Views and status
// are untouched; status changes go through SetEditionStatus.
func (a *App) UpdateEdition(cmd UpdateEdition) (domain.Edition, error) {
	if cmd.Title == "" {
		return domain.Edition{}, domain.Validationf("edition title is required")
	}
	existing, ok, err := a.store.GetEdition(cmd.ID)
	if err != nil {
		return domain.Edition{}, err
	}
	if !ok {
		return domain.Edition{}, domain.NotFound("edition", cmd.ID)
	}
	pub := cmd.PublicationDate
	if pub.IsZero() {
		pub = existing.PublicationDate
	}
	pdfPath := cmd.PDFPath
	if pdfPath == "" {
		pdfPath = existing.PDFPath
	}
	thumbPath := cmd.ThumbnailPath
	if thumbPath == "" {
		thumbPath = existing.ThumbnailPath
	}
	totalPages := cmd.TotalPages
	if totalPages == 0 {
		totalPages = existing.TotalPages
	}
	ed := domain.Edition{
		ID:              cmd.ID,
		Title:           cmd.Title,
		Slug:            util.Slugify(cmd.Title),
		Description:     cmd.Description,
		PublicationDate: pub,
		PDFPath:         pdfPath,
		ThumbnailPath:   thumbPath,
		TotalPages:      totalPages,
		Views:           existing.Views,
		Status:          existing.Status,
		Category:        cmd.Category,
		CreatedAt:       existing.CreatedAt,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := a.store.UpdateEdition(ed); err != nil {
		return domain.Edition{}, err
	}
	if cmd.CategoryIDs != nil {
		if err := a.store.SetEditionCategories(cmd.ID, cmd.CategoryIDs); err != nil {
			return domain.Edition{}, err
		}
	}
	return ed, nil
}

// SetEditionStatus moves an edition through its lifecycle.
func (a *App) SetEditionStatus(id int64, status domain.EditionStatus) error {
	if !domain.ValidEditionStatus(status) {
		return domain.Validationf("invalid edition status %q", status)
	}
	return a.store.SetEditionStatus(id, status)
}

// DeleteEdition removes the edition with its clips and category links,
// then cleans up stored files. The row delete commits first; file
// cleanup afterwards is best effort and failures are only logged.
func (a *App) DeleteEdition(ctx context.Context, id int64) error {
	edition, ok, err := a.store.GetEdition(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("edition", id)
	}
	clips, err := a.store.ListClipsByEdition(id)
	if err != nil {
		return err
	}
	if err := a.store.DeleteEdition(id); err != nil {
		return err
	}
	logger := util.LoggerFromContext(ctx)
	if a.objects != nil {
		for _, key := range []string{edition.PDFPath, edition.ThumbnailPath} {
			if key == "" {
				continue
			}
			if err := a.objects.Delete(ctx, key); err != nil {
				logger.Warn("edition asset cleanup failed", "edition_id", id, "key", key, "err", err)
			}
		}
	}
	for _, clip := range clips {
		if err := a.files.Delete(clip.FilePath); err != nil {
			logger.Warn("clip file cleanup failed", "clip_id", clip.ID, "path", clip.FilePath, "err", err)
		}
	}
	return nil
}

// ListEditions returns editions newest first.
func (a *App) ListEditions(f store.EditionFilter) ([]domain.Edition, error) {
	return a.store.ListEditions(f)
}

// GetEdition returns one edition.
func (a *App) GetEdition(id int64) (domain.Edition, bool, error) {
	return a.store.GetEdition(id)
}

// RecordEditionView bumps the monotonic view counter.
func (a *App) RecordEditionView(id int64) error {
	if id <= 0 {
		return domain.Validationf("invalid edition id")
	}
	return a.store.IncrementEditionViews(id)
}
