package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/prodkart/backend/internal/auth"
	"github.com/prodkart/backend/internal/metrics"
	"github.com/prodkart/backend/internal/store"
	"github.com/prodkart/backend/internal/uploader"
	"github.com/prodkart/backend/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// fileSlots are the required attachment fields, in form order.
var fileSlots = []string{"prodImg1", "prodImg2", "prodImg3", "prodImg4", "prodVideo"}

const thumbnailWidth = 320

// AssetUploader pushes a staged local file to remote storage and can remove
// a stored object again when a submission has to be rolled back.
type AssetUploader interface {
	Upload(ctx context.Context, localPath, slot string) (uploader.Asset, error)
	Remove(ctx context.Context, key string) error
}

// Thumbnailer downscales image bytes; the default implementation is bimg.
type Thumbnailer func(data []byte, width int) ([]byte, error)

type SubmissionHandler struct {
	store     store.SubmissionStore
	uploads   AssetUploader
	secret    string
	uploadDir string
	thumb     Thumbnailer
}

func NewSubmissionHandler(st store.SubmissionStore, up AssetUploader, secret, uploadDir string, thumb Thumbnailer) *SubmissionHandler {
	if thumb == nil {
		thumb = uploader.Thumbnail
	}
	return &SubmissionHandler{store: st, uploads: up, secret: secret, uploadDir: uploadDir, thumb: thumb}
}

// AddData handles POST /api/add/v1/addData. The pipeline is validate →
// stage → upload → persist → respond; the five attachment uploads run in
// parallel and persistence only starts after every one has resolved. On any
// upload failure nothing is persisted and the remote copies that did land
// are deleted again.
func (h *SubmissionHandler) AddData(w http.ResponseWriter, r *http.Request) {
	if !auth.SecretEqual(r.FormValue("apiKey"), h.secret) {
		writeMessage(w, http.StatusUnauthorized, "Invalid API key", false)
		return
	}

	if r.MultipartForm == nil {
		writeMessage(w, http.StatusBadRequest, "Multipart form data is required", false)
		return
	}
	for _, slot := range fileSlots {
		if len(r.MultipartForm.File[slot]) == 0 {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("%s file is required", slot), false)
			return
		}
	}

	staged := make(map[string]string, len(fileSlots)+1)
	for _, slot := range fileSlots {
		path, err := h.stageFile(r, slot)
		if err != nil {
			log.WithError(err).WithField("slot", slot).Error("Failed to stage attachment")
			h.discardStaged(staged)
			writeMessage(w, http.StatusInternalServerError, "Error adding data", false)
			return
		}
		staged[slot] = path
	}

	slots := fileSlots
	if path, ok := h.stageThumbnail(staged["prodImg1"]); ok {
		staged["thumbnail"] = path
		slots = append(append([]string{}, fileSlots...), "thumbnail")
	}

	// Join-all fan-out: every upload resolves (and removes its staged file)
	// before the step completes, even when one of them fails.
	assets := make([]uploader.Asset, len(slots))
	var g errgroup.Group
	for i, slot := range slots {
		g.Go(func() error {
			asset, err := h.uploads.Upload(r.Context(), staged[slot], slot)
			if err != nil {
				metrics.UploadsTotal.WithLabelValues(slot, "error").Inc()
				return fmt.Errorf("upload %s: %w", slot, err)
			}
			metrics.UploadsTotal.WithLabelValues(slot, "ok").Inc()
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Submission upload failed")
		h.rollbackRemote(r.Context(), assets)
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		writeMessage(w, http.StatusInternalServerError, "Error adding data", false)
		return
	}

	bySlot := make(map[string]uploader.Asset, len(slots))
	for i, slot := range slots {
		bySlot[slot] = assets[i]
	}
	receipts, err := json.Marshal(bySlot)
	if err != nil {
		log.WithError(err).Error("Failed to encode upload receipts")
	}

	sub := &models.Submission{
		UserName:     r.FormValue("userName"),
		UserEmail:    r.FormValue("userEmail"),
		Ingredients:  r.FormValue("ingredients"),
		Size:         r.FormValue("size"),
		Cost:         r.FormValue("prodCost"),
		Server:       r.FormValue("prodServer"),
		Description:  r.FormValue("prodDescription"),
		Image1URL:    bySlot["prodImg1"].URL,
		Image2URL:    bySlot["prodImg2"].URL,
		Image3URL:    bySlot["prodImg3"].URL,
		Image4URL:    bySlot["prodImg4"].URL,
		VideoURL:     bySlot["prodVideo"].URL,
		ThumbnailURL: bySlot["thumbnail"].URL,
		Assets:       receipts,
	}
	if err := h.store.Create(r.Context(), sub); err != nil {
		log.WithError(err).Error("Failed to create submission record")
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		writeMessage(w, http.StatusInternalServerError, "Something went wrong", false)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	writeMessage(w, http.StatusCreated, "Data added successfully", true)
}

// stageFile writes one attachment to the upload directory under a unique
// name and returns its path.
func (h *SubmissionHandler) stageFile(r *http.Request, slot string) (string, error) {
	file, header, err := r.FormFile(slot)
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", slot, err)
	}
	defer file.Close()

	dstPath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s%s", slot, uuid.New().String(), filepath.Ext(header.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("save %s: %w", header.Filename, err)
	}
	return dstPath, nil
}

// stageThumbnail renders a downscaled copy of the primary image next to the
// staged originals. Best effort: a failure is logged and the submission
// proceeds without a thumbnail.
func (h *SubmissionHandler) stageThumbnail(imagePath string) (string, bool) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		log.WithError(err).Warn("Failed to read primary image for thumbnail")
		return "", false
	}
	thumb, err := h.thumb(data, thumbnailWidth)
	if err != nil {
		log.WithError(err).Warn("Failed to generate thumbnail")
		return "", false
	}
	path := filepath.Join(h.uploadDir, fmt.Sprintf("thumb_%s%s", uuid.New().String(), filepath.Ext(imagePath)))
	if err := os.WriteFile(path, thumb, 0o644); err != nil {
		log.WithError(err).Warn("Failed to write thumbnail")
		return "", false
	}
	return path, true
}

func (h *SubmissionHandler) discardStaged(staged map[string]string) {
	for _, path := range staged {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("path", path).Warn("Failed to remove staged file")
		}
	}
}

// rollbackRemote deletes the remote copies of the uploads that succeeded
// before another slot failed.
func (h *SubmissionHandler) rollbackRemote(ctx context.Context, assets []uploader.Asset) {
	for _, asset := range assets {
		if asset.Key == "" {
			continue
		}
		if err := h.uploads.Remove(ctx, asset.Key); err != nil {
			log.WithError(err).WithField("key", asset.Key).Warn("Failed to roll back uploaded asset")
		}
	}
}
