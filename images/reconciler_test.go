package images

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
)

type fakeBlobStore struct {
	uploads     []string // object paths in call order
	deletes     []string
	failUploads map[string]error
}

func (f *fakeBlobStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	if err := f.failUploads[objectPath]; err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, objectPath)
	return "https://blob.test/v0/b/bkt/o/" + url.PathEscape(objectPath) + "?alt=media", nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, imageURL string) error {
	f.deletes = append(f.deletes, imageURL)
	return nil
}

func staged(name string) *StagedFile {
	return &StagedFile{
		Name:        name,
		Reader:      strings.NewReader("img-bytes"),
		Size:        9,
		ContentType: "image/jpeg",
	}
}

func TestResolveMainImageNoStagedFile(t *testing.T) {
	for _, prev := range []string{"", "url_A"} {
		blobs := &fakeBlobStore{}
		rec := &Reconciler{Blobs: blobs}

		ref, cleanup, err := rec.ResolveMainImage(context.Background(), prev, nil)
		if err != nil {
			t.Fatalf("ResolveMainImage(%q, nil): %v", prev, err)
		}
		if ref != prev {
			t.Errorf("ref = %q, want %q", ref, prev)
		}
		if len(cleanup) != 0 || len(blobs.uploads) != 0 || len(blobs.deletes) != 0 {
			t.Errorf("expected no side effects, got cleanup=%v uploads=%v deletes=%v",
				cleanup, blobs.uploads, blobs.deletes)
		}
	}
}

func TestResolveMainImageSupersedesPrevious(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	ref, cleanup, err := rec.ResolveMainImage(context.Background(), "url_A", staged("new.jpg"))
	if err != nil {
		t.Fatalf("ResolveMainImage: %v", err)
	}
	if ref == "" || ref == "url_A" {
		t.Errorf("ref = %q, want fresh URL distinct from url_A", ref)
	}
	if len(blobs.uploads) != 1 || blobs.uploads[0] != "events/main/new.jpg" {
		t.Errorf("uploads = %v, want one upload under events/main/", blobs.uploads)
	}
	if len(cleanup) != 1 || cleanup[0] != "url_A" {
		t.Errorf("cleanup = %v, want [url_A]", cleanup)
	}
	// Deletions are the caller's job, scheduled for after persistence.
	if len(blobs.deletes) != 0 {
		t.Errorf("reconciler deleted blobs itself: %v", blobs.deletes)
	}
}

func TestResolveMainImageFirstUpload(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	ref, cleanup, err := rec.ResolveMainImage(context.Background(), "", staged("first.jpg"))
	if err != nil {
		t.Fatalf("ResolveMainImage: %v", err)
	}
	if ref == "" {
		t.Error("expected a retrieval URL")
	}
	if len(cleanup) != 0 {
		t.Errorf("cleanup = %v, want none", cleanup)
	}
}

func TestResolveMainImageUploadFailure(t *testing.T) {
	blobs := &fakeBlobStore{failUploads: map[string]error{
		"events/main/bad.jpg": errors.New("boom"),
	}}
	rec := &Reconciler{Blobs: blobs}

	ref, cleanup, err := rec.ResolveMainImage(context.Background(), "url_A", staged("bad.jpg"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if ref != "" || cleanup != nil {
		t.Errorf("ref=%q cleanup=%v, want empty results on failure", ref, cleanup)
	}
}

func TestResolveGalleryOrderPreservation(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	refs, cleanup, err := rec.ResolveGallery(context.Background(),
		[]string{"a", "b", "c"},
		map[int]*StagedFile{1: staged("newb.jpg")})
	if err != nil {
		t.Fatalf("ResolveGallery: %v", err)
	}
	if len(refs) != 3 || refs[0] != "a" || refs[2] != "c" {
		t.Fatalf("refs = %v, want untouched slots preserved in place", refs)
	}
	if refs[1] == "b" || refs[1] == "" {
		t.Errorf("refs[1] = %q, want fresh URL at slot 1", refs[1])
	}
	if len(cleanup) != 1 || cleanup[0] != "b" {
		t.Errorf("cleanup = %v, want replaced ref [b]", cleanup)
	}
}

func TestResolveGalleryDropsEmptySlots(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	refs, cleanup, err := rec.ResolveGallery(context.Background(),
		[]string{"a", "b", ""}, nil)
	if err != nil {
		t.Fatalf("ResolveGallery: %v", err)
	}
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "b" {
		t.Errorf("refs = %v, want [a b] with the empty slot elided", refs)
	}
	if len(cleanup) != 0 || len(blobs.uploads) != 0 {
		t.Errorf("expected no side effects, got cleanup=%v uploads=%v", cleanup, blobs.uploads)
	}
}

func TestResolveGalleryAppendsBeyondEnd(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	refs, _, err := rec.ResolveGallery(context.Background(),
		[]string{"a"},
		map[int]*StagedFile{3: staged("late.jpg")})
	if err != nil {
		t.Fatalf("ResolveGallery: %v", err)
	}
	// Intermediate slots stay empty and are dropped.
	if len(refs) != 2 || refs[0] != "a" || refs[1] == "" {
		t.Errorf("refs = %v, want [a <newURL>]", refs)
	}
}

func TestResolveGalleryUploadsInSlotOrder(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	refs, _, err := rec.ResolveGallery(context.Background(), nil, map[int]*StagedFile{
		2: staged("c.jpg"),
		0: staged("a.jpg"),
		1: staged("b.jpg"),
	})
	if err != nil {
		t.Fatalf("ResolveGallery: %v", err)
	}

	want := []string{"events/a.jpg", "events/b.jpg", "events/c.jpg"}
	if len(blobs.uploads) != len(want) {
		t.Fatalf("uploads = %v, want %v", blobs.uploads, want)
	}
	for i := range want {
		if blobs.uploads[i] != want[i] {
			t.Errorf("uploads[%d] = %q, want %q (sequential, slot order)", i, blobs.uploads[i], want[i])
		}
	}
	if len(refs) != 3 {
		t.Errorf("refs = %v, want 3 entries", refs)
	}
}

func TestResolveGalleryUploadFailureIsFatal(t *testing.T) {
	blobs := &fakeBlobStore{failUploads: map[string]error{
		"events/bad.jpg": errors.New("boom"),
	}}
	rec := &Reconciler{Blobs: blobs}

	refs, cleanup, err := rec.ResolveGallery(context.Background(),
		[]string{"a"},
		map[int]*StagedFile{0: staged("bad.jpg")})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if refs != nil || cleanup != nil {
		t.Errorf("refs=%v cleanup=%v, want nil results on failure", refs, cleanup)
	}
}

func TestResolveGalleryNoChanges(t *testing.T) {
	blobs := &fakeBlobStore{}
	rec := &Reconciler{Blobs: blobs}

	refs, cleanup, err := rec.ResolveGallery(context.Background(),
		[]string{"a", "b"}, map[int]*StagedFile{})
	if err != nil {
		t.Fatalf("ResolveGallery: %v", err)
	}
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "b" {
		t.Errorf("refs = %v, want [a b]", refs)
	}
	if len(cleanup) != 0 || len(blobs.uploads) != 0 {
		t.Errorf("expected no side effects, got cleanup=%v uploads=%v", cleanup, blobs.uploads)
	}
}
