package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"epaperadmin/internal/util"
	"epaperadmin/pkg/domain"
)

// CreateClip records a cropped region of an edition page. The crop
// image itself is written by the caller; we only track its path.
func (a *App) CreateClip(cmd CreateClip) (domain.Clip, error) {
	if cmd.Title == "" {
		return domain.Clip{}, domain.Validationf("clip title is required")
	}
	if cmd.FilePath == "" {
		return domain.Clip{}, domain.Validationf("clip file path is required")
	}
	if _, ok, err := a.store.GetEdition(cmd.EditionID); err != nil {
		return domain.Clip{}, err
	} else if !ok {
		return domain.Clip{}, domain.NotFound("edition", cmd.EditionID)
	}
	clip := domain.Clip{
		EditionID:   cmd.EditionID,
		ImageID:     uuid.NewString(),
		Title:       cmd.Title,
		Description: cmd.Description,
		FilePath:    cmd.FilePath,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := a.store.CreateClip(clip)
	if err != nil {
		return domain.Clip{}, err
	}
	clip.ID = id
	return clip, nil
}

// DeleteClip removes a single clip. The crop file goes first; if the
// filesystem refuses, the row stays so the clip remains recoverable.
func (a *App) DeleteClip(id int64) error {
	clip, ok, err := a.store.GetClip(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("clip", id)
	}
	if err := a.files.Delete(clip.FilePath); err != nil {
		return err
	}
	return a.store.DeleteClip(id)
}

// BulkDeleteClips removes a batch of clips in one pass. File removal
// fans out concurrently; rows for clips whose files could not be
// removed are kept, and the returned message reports the actual count.
func (a *App) BulkDeleteClips(ctx context.Context, ids []int64) (domain.Result, error) {
	if len(ids) == 0 {
		return domain.Result{}, domain.Validationf("no clips selected")
	}
	clips, err := a.store.GetClipsByIDs(ids)
	if err != nil {
		return domain.Result{}, err
	}
	logger := util.LoggerFromContext(ctx)

	var mu sync.Mutex
	deletable := make([]int64, 0, len(clips))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, clip := range clips {
		clip := clip
		g.Go(func() error {
			if err := a.files.Delete(clip.FilePath); err != nil {
				logger.Warn("clip file delete failed", "clip_id", clip.ID, "path", clip.FilePath, "err", err)
				return nil
			}
			mu.Lock()
			deletable = append(deletable, clip.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var deleted int64
	if len(deletable) > 0 {
		deleted, err = a.store.DeleteClips(deletable)
		if err != nil {
			return domain.Result{}, err
		}
	}
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("Deleted %d of %d clips", deleted, len(ids)),
	}, nil
}

// ListClipsByEdition returns an edition's clips, newest first.
func (a *App) ListClipsByEdition(editionID int64) ([]domain.Clip, error) {
	return a.store.ListClipsByEdition(editionID)
}
