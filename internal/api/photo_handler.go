package api

import (
	"net/http"

	"alcyxob/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type PhotoHandler struct {
	photoService service.PhotoService
}

func NewPhotoHandler(photoService service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"min=0"`
	ContentType string `json:"contentType" binding:"required"`
}

// RequestUploadURL godoc
// @Summary Get a presigned URL to upload a progress photo
// @Description The client PUTs the file to uploadUrl and then confirms with objectKey.
// @Tags Photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body UploadURLRequest true "Image content type"
// @Success 200 {object} service.UploadURLResponse
// @Router /records/{id}/photos/upload-url [post]
func (h *PhotoHandler) RequestUploadURL(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	resp, err := h.photoService.RequestUploadURL(c.Request.Context(), userID, recordID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PhotoHandler) ConfirmUpload(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	photo, err := h.photoService.ConfirmUpload(c.Request.Context(), userID, recordID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// ListPhotos returns the record's photos with short-lived download URLs.
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	photos, err := h.photoService.ListPhotos(c.Request.Context(), userID, recordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}
