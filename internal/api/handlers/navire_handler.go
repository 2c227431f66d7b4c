package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"port-ops-api-server/internal/api/middleware"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type NavireHandler struct {
	Store   *store.Store
	Cleanup *services.Cleanup
}

type NavireRequest struct {
	Nom          string  `json:"nom" binding:"required"`
	Matricule    string  `json:"matricule" binding:"required"`
	ConteneureID *string `json:"conteneureId"`
}

func (h *NavireHandler) ListNavires(c *gin.Context) { listAll(c, h.Store.Navires) }

func (h *NavireHandler) GetNavire(c *gin.Context) { getByID(c, h.Store.Navires) }

func (h *NavireHandler) GetNavireByMatricule(c *gin.Context) {
	n, err := h.Store.NavireByMatricule(c.Request.Context(), c.Param("matricule"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// GetNavireConteneures lists the containers currently aboard the ship.
func (h *NavireHandler) GetNavireConteneures(c *gin.Context) {
	ctx := c.Request.Context()
	n, err := h.Store.Navires.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.Store.ConteneuresOf(ctx, n.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *NavireHandler) CreateNavire(c *gin.Context) {
	var req NavireRequest
	if !bind(c, &req) {
		return
	}
	n := models.Navire{
		Nom:          strings.TrimSpace(req.Nom),
		Matricule:    strings.TrimSpace(req.Matricule),
		ConteneureID: req.ConteneureID,
	}
	create(c, h.Store.Navires, &n)
}

func (h *NavireHandler) UpdateNavire(c *gin.Context) {
	var req NavireRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	n, err := h.Store.Navires.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	previous := n.Matricule
	n.Nom = strings.TrimSpace(req.Nom)
	n.Matricule = strings.TrimSpace(req.Matricule)
	n.ConteneureID = req.ConteneureID
	if err := h.Store.UpdateNavire(ctx, n, previous); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNavire unloads the ship's containers and removes its escales first.
func (h *NavireHandler) DeleteNavire(c *gin.Context) {
	removal, err := h.Cleanup.DeleteNavire(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Navire deleted successfully", "removal": removal})
}

type EscaleHandler struct {
	Store *store.Store
}

type EscaleRequest struct {
	NomNavire       string    `json:"nomNavire"`
	MatriculeNavire string    `json:"matriculeNavire" binding:"required"`
	DateArrivee     time.Time `json:"dateArrivee" binding:"required"`
	DateDepart      time.Time `json:"dateDepart" binding:"required"`
}

// apply validates the window and the ship reference, then copies the request onto e.
func (req *EscaleRequest) apply(c *gin.Context, s *store.Store, e *models.Escale) error {
	if !req.DateDepart.After(req.DateArrivee) {
		return invalid("dateDepart must be after dateArrivee")
	}
	n, err := s.NavireByMatricule(c.Request.Context(), req.MatriculeNavire)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("unknown navire matricule %q", req.MatriculeNavire)
	}
	if err != nil {
		return err
	}
	e.MatriculeNavire = n.Matricule
	e.NomNavire = req.NomNavire
	if e.NomNavire == "" {
		e.NomNavire = n.Nom
	}
	e.DateArrivee = req.DateArrivee
	e.DateDepart = req.DateDepart
	return nil
}

func (h *EscaleHandler) ListEscales(c *gin.Context) { listAll(c, h.Store.Escales) }

func (h *EscaleHandler) GetEscale(c *gin.Context) { getByID(c, h.Store.Escales) }

// GetActiveEscales lists ships in port right now.
func (h *EscaleHandler) GetActiveEscales(c *gin.Context) {
	items, err := h.Store.ActiveEscales(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *EscaleHandler) CreateEscale(c *gin.Context) {
	var req EscaleRequest
	if !bind(c, &req) {
		return
	}
	var e models.Escale
	if err := req.apply(c, h.Store, &e); err != nil {
		respondError(c, err)
		return
	}
	create(c, h.Store.Escales, &e)
}

func (h *EscaleHandler) UpdateEscale(c *gin.Context) {
	var req EscaleRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Escales, func(e *models.Escale) error {
		return req.apply(c, h.Store, e)
	})
}

func (h *EscaleHandler) DeleteEscale(c *gin.Context) { deleteByID(c, h.Store.Escales) }
