package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complaintdesk/models"
	"complaintdesk/repository"
	"complaintdesk/service"
)

// maxAttachmentSize caps uploads at 10 MB
const maxAttachmentSize = 10 << 20

// AttachmentHandler handles complaint file attachments
type AttachmentHandler struct {
	complaintService *service.ComplaintService
	attachmentRepo   *repository.AttachmentRepository
	uploadBasePath   string
	log              *zap.SugaredLogger
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(
	complaintService *service.ComplaintService,
	attachmentRepo *repository.AttachmentRepository,
	uploadBasePath string,
	log *zap.SugaredLogger,
) *AttachmentHandler {
	if uploadBasePath == "" {
		uploadBasePath = "uploads"
	}
	return &AttachmentHandler{
		complaintService: complaintService,
		attachmentRepo:   attachmentRepo,
		uploadBasePath:   uploadBasePath,
		log:              log,
	}
}

// UploadAttachment handles POST /api/complaints/{id}/attachments.
// Expects a multipart form with a "file" field. Stored files get a random
// name; the original name is kept in the attachment record only.
func (h *AttachmentHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.complaintService.Get(complaintID, actor); err != nil {
		respondWithServiceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentSize)
	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "A file field is required")
		return
	}
	defer file.Close()

	attachmentDir := filepath.Join(h.uploadBasePath, "attachments")
	if err := os.MkdirAll(attachmentDir, 0755); err != nil {
		h.log.Errorw("failed to create attachment directory", "dir", attachmentDir, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to save attachment")
		return
	}

	storedName := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(header.Filename))
	storedPath := filepath.Join(attachmentDir, storedName)

	out, err := os.Create(storedPath)
	if err != nil {
		h.log.Errorw("failed to create attachment file", "path", storedPath, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to save attachment")
		return
	}
	size, err := io.Copy(out, file)
	out.Close()
	if err != nil {
		os.Remove(storedPath)
		h.log.Errorw("failed to write attachment file", "path", storedPath, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal error", "Failed to save attachment")
		return
	}

	attachment := &models.ComplaintAttachment{
		ComplaintID:  complaintID,
		FileName:     header.Filename,
		FilePath:     filepath.Join("attachments", storedName),
		FileType:     header.Header.Get("Content-Type"),
		FileSize:     size,
		UploadedByID: actor.UserID,
	}
	if err := h.attachmentRepo.CreateAttachment(attachment); err != nil {
		os.Remove(storedPath)
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, attachment)
}

// ListAttachments handles GET /api/complaints/{id}/attachments
func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	complaintID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.complaintService.Get(complaintID, actor); err != nil {
		respondWithServiceError(w, err)
		return
	}

	attachments, err := h.attachmentRepo.ListByComplaint(complaintID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if attachments == nil {
		attachments = []models.ComplaintAttachment{}
	}
	respondWithJSON(w, http.StatusOK, attachments)
}

// DownloadAttachment handles GET /api/attachments/{id}
func (h *AttachmentHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	attachmentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	attachment, err := h.attachmentRepo.GetAttachmentByID(attachmentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if _, err := h.complaintService.Get(attachment.ComplaintID, actor); err != nil {
		respondWithServiceError(w, err)
		return
	}

	fullPath := filepath.Join(h.uploadBasePath, attachment.FilePath)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	if attachment.FileType != "" {
		w.Header().Set("Content-Type", attachment.FileType)
	}
	http.ServeFile(w, r, fullPath)
}

// DeleteAttachment handles DELETE /api/attachments/{id}
func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	attachmentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	attachment, err := h.attachmentRepo.GetAttachmentByID(attachmentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if _, err := h.complaintService.Get(attachment.ComplaintID, actor); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if !actor.IsAdmin() && attachment.UploadedByID != actor.UserID {
		respondWithError(w, http.StatusForbidden, "Forbidden", "Only the uploader or an admin can delete an attachment")
		return
	}

	if err := h.attachmentRepo.DeleteAttachment(attachmentID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	if err := os.Remove(filepath.Join(h.uploadBasePath, attachment.FilePath)); err != nil && !os.IsNotExist(err) {
		h.log.Warnw("failed to remove attachment file", "path", attachment.FilePath, "error", err)
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
