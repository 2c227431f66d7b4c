package handlers

import (
	"fmt"
	"net/http"
	"time"

	"port-ops-api-server/internal/api/middleware"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type OperationHandler struct {
	Store *store.Store
}

type OperationRequest struct {
	ShiftID      *string    `json:"shiftId"`
	EscaleID     *string    `json:"escaleId"`
	EquipeID     *string    `json:"equipeId"`
	ConteneurIDs string     `json:"conteneurIds"`
	EnginIDs     string     `json:"enginIds"`
	DateDebut    *time.Time `json:"dateDebut"`
	DateFin      *time.Time `json:"dateFin"`
	Status       string     `json:"status"`
	Type         string     `json:"type" binding:"required"`
}

func (req *OperationRequest) apply(o *models.Operation) error {
	if !models.TypeOperation(req.Type).Valid() {
		return invalid("type must be %s or %s", models.Chargement, models.Dechargement)
	}
	status := req.Status
	if status == "" {
		status = string(models.EnCours)
	}
	if !models.StatusOperation(status).Valid() {
		return invalid("status must be one of %s, %s, %s", models.EnCours, models.Termine, models.Annule)
	}
	if req.DateDebut != nil && req.DateFin != nil && req.DateFin.Before(*req.DateDebut) {
		return invalid("dateFin must not be before dateDebut")
	}
	o.ShiftID, o.EscaleID, o.EquipeID = req.ShiftID, req.EscaleID, req.EquipeID
	o.ConteneurIDs, o.EnginIDs = req.ConteneurIDs, req.EnginIDs
	o.DateDebut, o.DateFin = req.DateDebut, req.DateFin
	o.Status, o.Type = status, req.Type
	return nil
}

func (h *OperationHandler) ListOperations(c *gin.Context) { listAll(c, h.Store.Operations) }

func (h *OperationHandler) GetOperation(c *gin.Context) { getByID(c, h.Store.Operations) }

func (h *OperationHandler) GetOperationsByEscale(c *gin.Context) {
	items, err := h.Store.OperationsOf(c.Request.Context(), c.Param("escaleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *OperationHandler) CreateOperation(c *gin.Context) {
	var req OperationRequest
	if !bind(c, &req) {
		return
	}
	var o models.Operation
	if err := req.apply(&o); err != nil {
		respondError(c, err)
		return
	}
	create(c, h.Store.Operations, &o)
}

func (h *OperationHandler) UpdateOperation(c *gin.Context) {
	var req OperationRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Operations, req.apply)
}

func (h *OperationHandler) DeleteOperation(c *gin.Context) { deleteByID(c, h.Store.Operations) }

type OperationConteneureHandler struct {
	Store     *store.Store
	Movements *services.Movements
}

type OperationConteneureRequest struct {
	OperationID   string     `json:"operationId" binding:"required"`
	ConteneureID  string     `json:"conteneureId" binding:"required"`
	TypeOperation string     `json:"typeOperation" binding:"required"`
	DateOperation *time.Time `json:"dateOperation"`
}

// apply checks both references exist. Status is only changed by complete and cancel.
func (req *OperationConteneureRequest) apply(c *gin.Context, s *store.Store, l *models.OperationConteneure) error {
	if !models.TypeOperation(req.TypeOperation).Valid() {
		return invalid("typeOperation must be %s or %s", models.Chargement, models.Dechargement)
	}
	ctx := c.Request.Context()
	if ok, err := s.Operations.Exists(ctx, req.OperationID); err != nil {
		return err
	} else if !ok {
		return invalid("unknown operation %q", req.OperationID)
	}
	if ok, err := s.Conteneures.Exists(ctx, req.ConteneureID); err != nil {
		return err
	} else if !ok {
		return invalid("unknown conteneure %q", req.ConteneureID)
	}
	l.OperationID = req.OperationID
	l.ConteneureID = req.ConteneureID
	l.TypeOperation = models.TypeOperation(req.TypeOperation)
	if req.DateOperation != nil {
		l.DateOperation = *req.DateOperation
	} else if l.DateOperation.IsZero() {
		l.DateOperation = time.Now()
	}
	return nil
}

func (h *OperationConteneureHandler) ListOperationConteneures(c *gin.Context) {
	if opID := c.Query("operationId"); opID != "" {
		items, err := h.Store.LinesOf(c.Request.Context(), opID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}
	listAll(c, h.Store.OperationConteneures)
}

func (h *OperationConteneureHandler) GetOperationConteneure(c *gin.Context) {
	getByID(c, h.Store.OperationConteneures)
}

func (h *OperationConteneureHandler) CreateOperationConteneure(c *gin.Context) {
	var req OperationConteneureRequest
	if !bind(c, &req) {
		return
	}
	l := models.OperationConteneure{Status: models.EnCours}
	if err := req.apply(c, h.Store, &l); err != nil {
		respondError(c, err)
		return
	}
	create(c, h.Store.OperationConteneures, &l)
}

func (h *OperationConteneureHandler) UpdateOperationConteneure(c *gin.Context) {
	var req OperationConteneureRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.OperationConteneures, func(l *models.OperationConteneure) error {
		if l.Status != models.EnCours {
			return fmt.Errorf("%w: operation conteneure %s is %s and can no longer be edited", store.ErrInvalidState, l.ID, l.Status)
		}
		return req.apply(c, h.Store, l)
	})
}

func (h *OperationConteneureHandler) DeleteOperationConteneure(c *gin.Context) {
	deleteByID(c, h.Store.OperationConteneures)
}

// CompleteOperationConteneure moves the container and records the history row.
func (h *OperationConteneureHandler) CompleteOperationConteneure(c *gin.Context) {
	line, mv, err := h.Movements.Complete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operationConteneure": line, "conteneure": mv.Conteneure, "historique": mv.Historique})
}

func (h *OperationConteneureHandler) CancelOperationConteneure(c *gin.Context) {
	line, err := h.Movements.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}
