package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/events-console-go/config"
	images "github.com/phillip/events-console-go/images"
	lifecycle "github.com/phillip/events-console-go/lifecycle"
	models "github.com/phillip/events-console-go/models"
	store "github.com/phillip/events-console-go/store"
	utils "github.com/phillip/events-console-go/utils"
)

const eventsCollection = "events"

func eventRecords(cfg *config.Config) *store.MongoRecordStore {
	return store.NewMongoRecordStore(cfg.MongoClient, cfg.DBName, eventsCollection)
}

func eventService(cfg *config.Config) *lifecycle.Service {
	return lifecycle.NewService(eventRecords(cfg), cfg.Blobs)
}

// ---------------- CREATE ----------------
func CreateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Bind form fields ---
		var input struct {
			ProgramType       string `form:"program_type" binding:"required"`
			CustomProgramType string `form:"custom_program_type"`
			Title             string `form:"title" binding:"required"`
			Description       string `form:"description" binding:"required"`
			Partner           string `form:"partner" binding:"required"`
			EventVenue        string `form:"event_venue" binding:"required"`
			EventDate         string `form:"event_date" binding:"required"`
			BeneficiaryCount  *int   `form:"beneficiary_count"`
			BeneficiaryNote   string `form:"beneficiary_note"`
			ContributionValue string `form:"contribution_value" binding:"required"`
			ContributionNote  string `form:"contribution_note"`
		}

		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		program, err := models.ResolveProgramType(input.ProgramType, input.CustomProgramType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// --- Staged files ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}

		var closers []multipart.File
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()

		var mainImage *images.StagedFile
		gallery := map[int]*images.StagedFile{}
		if form != nil {
			if headers := form.File["main_image"]; len(headers) > 0 {
				staged, f, err := openStaged(headers[0])
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file", "file": headers[0].Filename})
					return
				}
				closers = append(closers, f)
				mainImage = staged
			}
			for i, header := range form.File["images"] { // key must be "images"
				staged, f, err := openStaged(header)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file", "file": header.Filename})
					return
				}
				closers = append(closers, f)
				gallery[i] = staged
			}
		}

		draft := lifecycle.Draft{
			ProgramType:       program,
			Title:             input.Title,
			Description:       input.Description,
			Partner:           input.Partner,
			EventVenue:        input.EventVenue,
			EventDate:         input.EventDate,
			BeneficiaryCount:  input.BeneficiaryCount,
			BeneficiaryNote:   input.BeneficiaryNote,
			ContributionValue: input.ContributionValue,
			ContributionNote:  input.ContributionNote,
			MainImage:         mainImage,
			Gallery:           gallery,
		}

		event, err := eventService(cfg).Create(c.Request.Context(), draft)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

// ---------------- LIST ----------------
func ListEvents(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := eventRecords(cfg).ListOrdered(c.Request.Context(), "created_at", true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch events"})
			return
		}

		if q := strings.ToLower(c.Query("q")); q != "" {
			filtered := events[:0]
			for _, ev := range events {
				if strings.Contains(strings.ToLower(ev.Title), q) {
					filtered = append(filtered, ev)
				}
			}
			events = filtered
		}

		if len(events) == 0 {
			c.JSON(http.StatusOK, []models.Event{})
			return
		}

		// --- Pick the most recently updated event ---
		latest := events[0]
		for _, ev := range events {
			if ev.UpdatedAt.After(latest.UpdatedAt) {
				latest = ev
			}
		}

		// --- Generate ETag from latest event ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, events)
	}
}

// ---------------- GET ----------------
func GetEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		event, err := eventRecords(cfg).Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch event"})
			return
		}

		etag := utils.GenerateETag(event.ID, event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, event)
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		// --- Bind input (form-data for mixed text + file upload) ---
		var input struct {
			ProgramType       string `form:"program_type"`
			CustomProgramType string `form:"custom_program_type"`
			Title             string `form:"title"`
			Description       string `form:"description"`
			Partner           string `form:"partner"`
			EventVenue        string `form:"event_venue"`
			EventDate         string `form:"event_date"`
			BeneficiaryCount  *int   `form:"beneficiary_count"`
			BeneficiaryNote   string `form:"beneficiary_note"`
			ContributionValue string `form:"contribution_value"`
			ContributionNote  string `form:"contribution_note"`
		}

		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var program models.ProgramType
		if input.ProgramType != "" {
			resolved, err := models.ResolveProgramType(input.ProgramType, input.CustomProgramType)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			program = resolved
		}

		// --- Gallery slots: existing refs (empty string = added empty slot) ---
		var galleryRefs []string
		if refs, ok := c.GetPostFormArray("images"); ok {
			galleryRefs = refs
		}

		// --- Staged files: optional main_image plus sparse image_<slot> keys ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}

		var closers []multipart.File
		defer func() {
			for _, f := range closers {
				f.Close()
			}
		}()

		var mainImage *images.StagedFile
		gallery := map[int]*images.StagedFile{}
		if form != nil {
			if headers := form.File["main_image"]; len(headers) > 0 {
				staged, f, err := openStaged(headers[0])
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file", "file": headers[0].Filename})
					return
				}
				closers = append(closers, f)
				mainImage = staged
			}
			for key, headers := range form.File {
				slot, ok := gallerySlot(key)
				if !ok || len(headers) == 0 {
					continue
				}
				staged, f, err := openStaged(headers[0])
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file", "file": headers[0].Filename})
					return
				}
				closers = append(closers, f)
				gallery[slot] = staged
			}
		}

		draft := lifecycle.Draft{
			ProgramType:       program,
			Title:             input.Title,
			Description:       input.Description,
			Partner:           input.Partner,
			EventVenue:        input.EventVenue,
			EventDate:         input.EventDate,
			BeneficiaryCount:  input.BeneficiaryCount,
			BeneficiaryNote:   input.BeneficiaryNote,
			ContributionValue: input.ContributionValue,
			ContributionNote:  input.ContributionNote,
			MainImage:         mainImage,
			Gallery:           gallery,
			GalleryRefs:       galleryRefs,
		}

		event, err := eventService(cfg).Update(c.Request.Context(), id, draft)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event updated successfully",
			"event":   event,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		if err := eventService(cfg).Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "event deleted successfully",
			"id":      id,
		})
	}
}

// ---------------- DELETE SINGLE IMAGE ----------------
// Immediate-effect operation: the gallery image is removed from storage and
// the record right away, independent of any pending form edits.
func DeleteEventImage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image index"})
			return
		}

		event, err := eventService(cfg).RemoveGalleryImage(c.Request.Context(), id, index)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "image deleted successfully",
			"event":   event,
		})
	}
}

func openStaged(header *multipart.FileHeader) (*images.StagedFile, multipart.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &images.StagedFile{
		Name:        header.Filename,
		Reader:      f,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}, f, nil
}

// gallerySlot parses multipart keys of the form "image_<slot>".
func gallerySlot(key string) (int, bool) {
	rest, found := strings.CutPrefix(key, "image_")
	if !found {
		return 0, false
	}
	slot, err := strconv.Atoi(rest)
	if err != nil || slot < 0 {
		return 0, false
	}
	return slot, true
}

func respondError(c *gin.Context, err error) {
	var vErr *lifecycle.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "event does not exist"})
	case errors.Is(err, images.ErrUploadFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
