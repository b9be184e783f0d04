package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"epaperadmin/pkg/domain"
)

func TestCreateClipAssignsImageID(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")

	clip, err := a.CreateClip(CreateClip{
		EditionID: ed.ID,
		Title:     "Headline crop",
		FilePath:  "clips/headline.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if clip.ImageID == "" {
		t.Fatal("image id not assigned")
	}

	clips, err := a.ListClipsByEdition(ed.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clips) != 1 || clips[0].ImageID != clip.ImageID {
		t.Fatalf("list after create = %+v", clips)
	}
}

func TestCreateClipValidation(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")

	if _, err := a.CreateClip(CreateClip{EditionID: ed.ID, FilePath: "clips/x.png"}); err == nil {
		t.Fatal("missing title accepted")
	}
	if _, err := a.CreateClip(CreateClip{EditionID: ed.ID, Title: "x"}); err == nil {
		t.Fatal("missing file path accepted")
	}
	_, err := a.CreateClip(CreateClip{EditionID: 999, Title: "x", FilePath: "clips/x.png"})
	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("want NotFoundError for absent edition, got %v", err)
	}
}

func TestDeleteClipRemovesFileFirst(t *testing.T) {
	a, _, files := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")

	clip, err := a.CreateClip(CreateClip{EditionID: ed.ID, Title: "crop", FilePath: "clips/crop.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := files.Save(clip.FilePath, strings.NewReader("bytes")); err != nil {
		t.Fatalf("save file: %v", err)
	}

	if err := a.DeleteClip(clip.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if files.Exists(clip.FilePath) {
		t.Fatal("file survived delete")
	}
	clips, _ := a.ListClipsByEdition(ed.ID)
	if len(clips) != 0 {
		t.Fatalf("row survived delete: %+v", clips)
	}
}

func TestDeleteClipMissing(t *testing.T) {
	a, _, _ := newTestApp(t)

	err := a.DeleteClip(55)
	var nferr *domain.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

func TestBulkDeleteClips(t *testing.T) {
	a, _, files := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")

	var ids []int64
	for i := 0; i < 4; i++ {
		path := fmt.Sprintf("clips/bulk-%d.png", i)
		clip, err := a.CreateClip(CreateClip{EditionID: ed.ID, Title: fmt.Sprintf("crop %d", i), FilePath: path})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if err := files.Save(path, strings.NewReader("bytes")); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		ids = append(ids, clip.ID)
	}

	res, err := a.BulkDeleteClips(context.Background(), ids)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Message != "Deleted 4 of 4 clips" {
		t.Fatalf("message = %q", res.Message)
	}
	for i := 0; i < 4; i++ {
		if files.Exists(fmt.Sprintf("clips/bulk-%d.png", i)) {
			t.Fatalf("file %d survived", i)
		}
	}
	clips, _ := a.ListClipsByEdition(ed.ID)
	if len(clips) != 0 {
		t.Fatalf("rows survived: %+v", clips)
	}
}

func TestBulkDeleteClipsSkipsUnknownIDs(t *testing.T) {
	a, _, _ := newTestApp(t)
	ed := seedEdition(t, a, "Clip Host")

	clip, err := a.CreateClip(CreateClip{EditionID: ed.ID, Title: "only", FilePath: "clips/only.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := a.BulkDeleteClips(context.Background(), []int64{clip.ID, 9998, 9999})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if res.Message != "Deleted 1 of 3 clips" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestBulkDeleteClipsEmptySelection(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, err := a.BulkDeleteClips(context.Background(), nil)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}
