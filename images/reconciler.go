// Package images resolves staged file selections against a record's persisted
// image references: which objects to upload, which superseded objects to
// delete once the record is saved, and the final reference values to persist.
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	storage "github.com/phillip/events-console-go/storage"
)

// Object namespaces in the blob store. Main images live under events/main/,
// gallery images directly under events/.
const (
	MainPrefix    = "events/main/"
	GalleryPrefix = "events/"
)

// ErrUploadFailed marks a failed upload. It is fatal to the surrounding save:
// a record must never be persisted pointing at an object that was not written.
var ErrUploadFailed = errors.New("image upload failed")

// StagedFile is a locally selected file pending upload.
type StagedFile struct {
	Name        string
	Reader      io.Reader
	Size        int64
	ContentType string
}

// Reconciler performs uploads through the blob store and reports superseded
// references for the caller to delete after the record is persisted. The
// reconciler itself never deletes anything.
type Reconciler struct {
	Blobs storage.BlobStore
}

// ResolveMainImage resolves the main-image slot. With no staged file the
// previous reference is returned untouched. A staged file is uploaded under
// the main namespace and replaces the previous reference, which — if present —
// is returned as cleanup for post-persist deletion. The old main image is
// always superseded, never retained.
func (r *Reconciler) ResolveMainImage(ctx context.Context, prevRef string, staged *StagedFile) (ref string, cleanup []string, err error) {
	if staged == nil {
		return prevRef, nil, nil
	}

	url, err := r.upload(ctx, MainPrefix+staged.Name, staged)
	if err != nil {
		return "", nil, err
	}

	if prevRef != "" {
		cleanup = append(cleanup, prevRef)
	}
	return url, cleanup, nil
}

// ResolveGallery resolves the ordered gallery list against a sparse map of
// staged files keyed by slot index. Staged slots are uploaded sequentially in
// ascending slot order; untouched slots keep their reference and position. A
// staged index beyond the end of the list extends it. Slots left empty (added
// but never staged) are dropped, so the returned list never contains an empty
// entry. Replaced references are returned as cleanup.
func (r *Reconciler) ResolveGallery(ctx context.Context, prevRefs []string, staged map[int]*StagedFile) (refs []string, cleanup []string, err error) {
	refs = append([]string(nil), prevRefs...)

	slots := make([]int, 0, len(staged))
	for i, f := range staged {
		if i < 0 || f == nil {
			continue
		}
		slots = append(slots, i)
	}
	sort.Ints(slots)

	for _, i := range slots {
		url, err := r.upload(ctx, GalleryPrefix+staged[i].Name, staged[i])
		if err != nil {
			return nil, nil, err
		}

		if i < len(refs) {
			if refs[i] != "" {
				cleanup = append(cleanup, refs[i])
			}
			refs[i] = url
			continue
		}
		for len(refs) < i {
			refs = append(refs, "")
		}
		refs = append(refs, url)
	}

	// Drop unresolved placeholder slots; a persisted list never holds one.
	final := refs[:0]
	for _, ref := range refs {
		if ref != "" {
			final = append(final, ref)
		}
	}
	return final, cleanup, nil
}

func (r *Reconciler) upload(ctx context.Context, objectPath string, f *StagedFile) (string, error) {
	url, err := r.Blobs.Upload(ctx, objectPath, f.Reader, f.Size, f.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUploadFailed, f.Name, err)
	}
	return url, nil
}
