package handlers

import (
	"net/http"
	"strings"
	"time"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/s3"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

const maxPhotoSize = 10 << 20

type ArretHandler struct {
	Store  *store.Store
	Photos s3.PhotoStore
}

type ArretRequest struct {
	OperationID *string    `json:"operationId"`
	Motif       string     `json:"motif" binding:"required"`
	DateDebut   time.Time  `json:"dateDebut" binding:"required"`
	DateFin     *time.Time `json:"dateFin"`
}

func (req *ArretRequest) apply(c *gin.Context, s *store.Store, a *models.Arret) error {
	if req.DateFin != nil && req.DateFin.Before(req.DateDebut) {
		return invalid("dateFin must not be before dateDebut")
	}
	if req.OperationID != nil && *req.OperationID != "" {
		ok, err := s.Operations.Exists(c.Request.Context(), *req.OperationID)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("unknown operation %q", *req.OperationID)
		}
	}
	a.OperationID, a.Motif, a.DateDebut, a.DateFin = req.OperationID, req.Motif, req.DateDebut, req.DateFin
	return nil
}

func (h *ArretHandler) ListArrets(c *gin.Context) { listAll(c, h.Store.Arrets) }

func (h *ArretHandler) GetArret(c *gin.Context) { getByID(c, h.Store.Arrets) }

func (h *ArretHandler) CreateArret(c *gin.Context) {
	var req ArretRequest
	if !bind(c, &req) {
		return
	}
	var a models.Arret
	if err := req.apply(c, h.Store, &a); err != nil {
		respondError(c, err)
		return
	}
	create(c, h.Store.Arrets, &a)
}

func (h *ArretHandler) UpdateArret(c *gin.Context) {
	var req ArretRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Arrets, func(a *models.Arret) error {
		return req.apply(c, h.Store, a)
	})
}

func (h *ArretHandler) DeleteArret(c *gin.Context) { deleteByID(c, h.Store.Arrets) }

// UploadPhoto stores the multipart "photo" file and records its URL on the arret.
func (h *ArretHandler) UploadPhoto(c *gin.Context) {
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}
	ctx := c.Request.Context()
	a, err := h.Store.Arrets.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize)
	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image uploads are accepted"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read the uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.Photos.UploadFile(ctx, file, s3.ObjectKey("arrets/"+a.ID, header.Filename), contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	a.PhotoURL = url
	if err := h.Store.Arrets.Update(ctx, a); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
