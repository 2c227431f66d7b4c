package handlers

import (
	"regexp"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

// ResourceHandler serves the shift and engin lookup tables.
type ResourceHandler struct {
	Store *store.Store
}

var clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ShiftRequest struct {
	Nom        string `json:"nom" binding:"required"`
	HeureDebut string `json:"heureDebut"`
	HeureFin   string `json:"heureFin"`
}

func (req *ShiftRequest) apply(s *models.Shift) error {
	for _, v := range []string{req.HeureDebut, req.HeureFin} {
		if v != "" && !clockTime.MatchString(v) {
			return invalid("%q is not a HH:MM time", v)
		}
	}
	s.Nom, s.HeureDebut, s.HeureFin = req.Nom, req.HeureDebut, req.HeureFin
	return nil
}

type EnginRequest struct {
	Nom  string `json:"nom" binding:"required"`
	Type string `json:"type"`
	Etat string `json:"etat"`
}

func (h *ResourceHandler) ListShifts(c *gin.Context) { listAll(c, h.Store.Shifts) }

func (h *ResourceHandler) GetShift(c *gin.Context) { getByID(c, h.Store.Shifts) }

func (h *ResourceHandler) CreateShift(c *gin.Context) {
	var req ShiftRequest
	if !bind(c, &req) {
		return
	}
	var s models.Shift
	if err := req.apply(&s); err != nil {
		respondError(c, err)
		return
	}
	create(c, h.Store.Shifts, &s)
}

func (h *ResourceHandler) UpdateShift(c *gin.Context) {
	var req ShiftRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Shifts, req.apply)
}

func (h *ResourceHandler) DeleteShift(c *gin.Context) { deleteByID(c, h.Store.Shifts) }

func (h *ResourceHandler) ListEngins(c *gin.Context) { listAll(c, h.Store.Engins) }

func (h *ResourceHandler) GetEngin(c *gin.Context) { getByID(c, h.Store.Engins) }

func (h *ResourceHandler) CreateEngin(c *gin.Context) {
	var req EnginRequest
	if !bind(c, &req) {
		return
	}
	create(c, h.Store.Engins, &models.Engin{Nom: req.Nom, Type: req.Type, Etat: req.Etat})
}

func (h *ResourceHandler) UpdateEngin(c *gin.Context) {
	var req EnginRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Engins, func(e *models.Engin) error {
		e.Nom, e.Type, e.Etat = req.Nom, req.Type, req.Etat
		return nil
	})
}

func (h *ResourceHandler) DeleteEngin(c *gin.Context) { deleteByID(c, h.Store.Engins) }
