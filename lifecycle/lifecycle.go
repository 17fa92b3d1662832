// Package lifecycle sequences event-record saves and deletes around the image
// reconciler: uploads before persistence, superseded-blob deletions after.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	images "github.com/phillip/events-console-go/images"
	models "github.com/phillip/events-console-go/models"
	storage "github.com/phillip/events-console-go/storage"
	store "github.com/phillip/events-console-go/store"
)

// ErrPersistFailed marks a failed record-store write. Fatal to the flow.
var ErrPersistFailed = errors.New("could not persist event")

// ValidationError reports a missing or malformed submission field. The
// operation is not attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Draft carries one submission of the event form: field edits plus staged
// image selections. A Draft is a value — flows read it, never mutate it.
type Draft struct {
	ProgramType       models.ProgramType
	Title             string
	Description       string
	Partner           string
	EventVenue        string
	EventDate         string // ISO date
	BeneficiaryCount  *int
	BeneficiaryNote   string
	ContributionValue string
	ContributionNote  string

	// MainImage is the staged main-image selection, nil when unchanged.
	MainImage *images.StagedFile
	// Gallery maps gallery slot index to a staged file. Slots absent from
	// the map are unchanged.
	Gallery map[int]*images.StagedFile
	// GalleryRefs is the submitted gallery list for updates: previous
	// references in display order, with "" marking an added-but-empty slot.
	// Nil means "use the stored list as-is".
	GalleryRefs []string
}

// Service runs the create, update and delete flows for event records.
type Service struct {
	records store.RecordStore
	blobs   storage.BlobStore
	rec     *images.Reconciler
}

func NewService(records store.RecordStore, blobs storage.BlobStore) *Service {
	return &Service{
		records: records,
		blobs:   blobs,
		rec:     &images.Reconciler{Blobs: blobs},
	}
}

// Create validates the draft, uploads its images and inserts a new record
// with a server-assigned creation timestamp. A create requires a staged main
// image and at least one staged gallery image.
func (s *Service) Create(ctx context.Context, d Draft) (*models.Event, error) {
	if err := validateCreate(d); err != nil {
		return nil, err
	}

	mainRef, mainCleanup, err := s.rec.ResolveMainImage(ctx, "", d.MainImage)
	if err != nil {
		return nil, err
	}
	galleryRefs, galleryCleanup, err := s.rec.ResolveGallery(ctx, d.GalleryRefs, d.Gallery)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event := &models.Event{
		ProgramType:       d.ProgramType.String(),
		Title:             d.Title,
		Description:       d.Description,
		Partner:           d.Partner,
		EventVenue:        d.EventVenue,
		EventDate:         d.EventDate,
		BeneficiaryCount:  d.BeneficiaryCount,
		BeneficiaryNote:   d.BeneficiaryNote,
		ContributionValue: d.ContributionValue,
		ContributionNote:  d.ContributionNote,
		MainImage:         mainRef,
		Images:            galleryRefs,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := s.records.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	s.deleteBlobs(ctx, append(mainCleanup, galleryCleanup...))
	return event, nil
}

// Update loads the record, resolves staged images against its current
// references and rewrites it in place. Superseded blobs are deleted only
// after the updated record is persisted.
func (s *Service) Update(ctx context.Context, id string, d Draft) (*models.Event, error) {
	existing, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(d); err != nil {
		return nil, err
	}

	mainRef, mainCleanup, err := s.rec.ResolveMainImage(ctx, existing.MainImage, d.MainImage)
	if err != nil {
		return nil, err
	}

	prevRefs := d.GalleryRefs
	if prevRefs == nil {
		prevRefs = existing.Images
	}
	galleryRefs, galleryCleanup, err := s.rec.ResolveGallery(ctx, prevRefs, d.Gallery)
	if err != nil {
		return nil, err
	}

	updated := *existing
	applyFields(&updated, d)
	updated.MainImage = mainRef
	updated.Images = galleryRefs
	updated.UpdatedAt = time.Now()

	if err := s.records.Update(ctx, id, &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	s.deleteBlobs(ctx, append(mainCleanup, galleryCleanup...))
	return &updated, nil
}

// Delete reads the record to discover its blob references, deletes every blob
// best-effort, then deletes the document. A missing record is a benign no-op
// reported via store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.records.Get(ctx, id)
	if err != nil {
		return err
	}

	refs := append([]string{existing.MainImage}, existing.Images...)
	s.deleteBlobs(ctx, refs)

	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

// RemoveGalleryImage deletes a single gallery image immediately: the blob is
// removed best-effort, the entry is dropped from the list (shifting later
// entries up) and the record is persisted at once. This is a direct action,
// not a staged edit deferred to form submission.
func (s *Service) RemoveGalleryImage(ctx context.Context, id string, index int) (*models.Event, error) {
	existing, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(existing.Images) {
		return nil, &ValidationError{Field: "index", Reason: "gallery index out of range"}
	}

	s.deleteBlobs(ctx, []string{existing.Images[index]})

	updated := *existing
	updated.Images = append(append([]string(nil), existing.Images[:index]...), existing.Images[index+1:]...)
	updated.UpdatedAt = time.Now()

	if err := s.records.Update(ctx, id, &updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return &updated, nil
}

// deleteBlobs removes superseded objects best-effort. Failures (including
// malformed URLs) are logged and never abort the surrounding flow.
func (s *Service) deleteBlobs(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, ref); err != nil {
			log.Printf("lifecycle: delete blob %s: %v", ref, err)
		}
	}
}

func applyFields(event *models.Event, d Draft) {
	if !d.ProgramType.IsZero() {
		event.ProgramType = d.ProgramType.String()
	}
	if d.Title != "" {
		event.Title = d.Title
	}
	if d.Description != "" {
		event.Description = d.Description
	}
	if d.Partner != "" {
		event.Partner = d.Partner
	}
	if d.EventVenue != "" {
		event.EventVenue = d.EventVenue
	}
	if d.EventDate != "" {
		event.EventDate = d.EventDate
	}
	if d.BeneficiaryCount != nil {
		event.BeneficiaryCount = d.BeneficiaryCount
	}
	if d.BeneficiaryNote != "" {
		event.BeneficiaryNote = d.BeneficiaryNote
	}
	if d.ContributionValue != "" {
		event.ContributionValue = d.ContributionValue
	}
	if d.ContributionNote != "" {
		event.ContributionNote = d.ContributionNote
	}
}

func validateCreate(d Draft) error {
	if d.ProgramType.IsZero() {
		return &ValidationError{Field: "program_type", Reason: "required"}
	}
	required := []struct{ field, value string }{
		{"title", d.Title},
		{"description", d.Description},
		{"partner", d.Partner},
		{"event_venue", d.EventVenue},
		{"contribution_value", d.ContributionValue},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Field: f.field, Reason: "required"}
		}
	}
	if err := validateDate(d.EventDate, true); err != nil {
		return err
	}
	if d.MainImage == nil {
		return &ValidationError{Field: "main_image", Reason: "a main image is required"}
	}
	if countStaged(d.Gallery) == 0 {
		return &ValidationError{Field: "images", Reason: "at least one gallery image is required"}
	}
	return nil
}

func validateUpdate(d Draft) error {
	return validateDate(d.EventDate, false)
}

func validateDate(date string, required bool) error {
	if date == "" {
		if required {
			return &ValidationError{Field: "event_date", Reason: "required"}
		}
		return nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &ValidationError{Field: "event_date", Reason: "invalid date, use YYYY-MM-DD"}
	}
	return nil
}

func countStaged(gallery map[int]*images.StagedFile) int {
	n := 0
	for _, f := range gallery {
		if f != nil {
			n++
		}
	}
	return n
}
