package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"port-ops-api-server/internal/api/middleware"
	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type ConteneureHandler struct {
	Store     *store.Store
	Movements *services.Movements
}

type ConteneureRequest struct {
	Nom           string              `json:"nom" binding:"required"`
	TypeConteneur models.LocationKind `json:"typeConteneur"`
	NavireID      *string             `json:"navireId"`
	DateAjout     *time.Time          `json:"dateAjout"`
}

// location resolves the requested location. typeConteneur may be omitted,
// in which case the presence of navireId decides.
func (req *ConteneureRequest) location() (models.Location, error) {
	aboard := req.NavireID != nil && *req.NavireID != ""
	switch req.TypeConteneur {
	case "":
	case models.OnLand:
		if aboard {
			return models.Location{}, invalid("a container on land cannot reference a navire")
		}
	case models.OnShip:
		if !aboard {
			return models.Location{}, invalid("navireId is required for a container aboard a ship")
		}
	default:
		return models.Location{}, invalid("typeConteneur must be %s or %s", models.OnLand, models.OnShip)
	}
	if aboard {
		return models.Aboard(*req.NavireID), nil
	}
	return models.Land(), nil
}

func (h *ConteneureHandler) checkNavire(c *gin.Context, loc models.Location) error {
	if loc.Kind != models.OnShip {
		return nil
	}
	ok, err := h.Store.Navires.Exists(c.Request.Context(), loc.NavireID)
	if err != nil {
		return err
	}
	if !ok {
		return invalid("unknown navire %q", loc.NavireID)
	}
	return nil
}

func (h *ConteneureHandler) ListConteneures(c *gin.Context) { listAll(c, h.Store.Conteneures) }

func (h *ConteneureHandler) GetConteneure(c *gin.Context) { getByID(c, h.Store.Conteneures) }

func (h *ConteneureHandler) GetConteneuresOnLand(c *gin.Context) {
	items, err := h.Store.ConteneuresOnLand(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetHistorique returns every recorded move of the container, oldest first.
func (h *ConteneureHandler) GetHistorique(c *gin.Context) {
	items, err := h.Store.HistoriqueOf(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ConteneureHandler) CreateConteneure(c *gin.Context) {
	var req ConteneureRequest
	if !bind(c, &req) {
		return
	}
	loc, err := req.location()
	if err == nil {
		err = h.checkNavire(c, loc)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	item := models.Conteneure{Nom: strings.TrimSpace(req.Nom), DateAjout: time.Now()}
	if req.DateAjout != nil {
		item.DateAjout = *req.DateAjout
	}
	item.SetLocation(loc)
	create(c, h.Store.Conteneures, &item)
}

// UpdateConteneure renames the container. It moves only when the body names a
// location; the move is recorded in the history with the rename in one transaction.
func (h *ConteneureHandler) UpdateConteneure(c *gin.Context) {
	var req ConteneureRequest
	if !bind(c, &req) {
		return
	}

	var to *models.Location
	if req.TypeConteneur != "" || req.NavireID != nil {
		loc, err := req.location()
		if err == nil {
			err = h.checkNavire(c, loc)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		to = &loc
	}

	item, err := h.Movements.Edit(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c), to, func(item *models.Conteneure) {
		item.Nom = strings.TrimSpace(req.Nom)
		if req.DateAjout != nil {
			item.DateAjout = *req.DateAjout
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ConteneureHandler) DeleteConteneure(c *gin.Context) { deleteByID(c, h.Store.Conteneures) }

func (h *ConteneureHandler) AssignToNavire(c *gin.Context) {
	mv, err := h.Movements.Assign(c.Request.Context(), c.Param("id"), c.Param("navireId"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mv)
}

func (h *ConteneureHandler) UnassignFromNavire(c *gin.Context) {
	mv, err := h.Movements.Unassign(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mv)
}

type TypeConteneurHandler struct {
	Store *store.Store
}

type TypeConteneurRequest struct {
	Nom         string `json:"nom" binding:"required"`
	Description string `json:"description"`
}

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, invalid("%s must be a positive integer", name)
	}
	return uint(v), nil
}

func (h *TypeConteneurHandler) ListTypeConteneurs(c *gin.Context) { listAll(c, h.Store.TypeConteneurs) }

func (h *TypeConteneurHandler) GetTypeConteneur(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := h.Store.TypeConteneurs.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *TypeConteneurHandler) CreateTypeConteneur(c *gin.Context) {
	var req TypeConteneurRequest
	if !bind(c, &req) {
		return
	}
	create(c, h.Store.TypeConteneurs, &models.TypeConteneur{Nom: req.Nom, Description: req.Description})
}

func (h *TypeConteneurHandler) UpdateTypeConteneur(c *gin.Context) {
	var req TypeConteneurRequest
	if !bind(c, &req) {
		return
	}
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	item, err := h.Store.TypeConteneurs.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	item.Nom, item.Description = req.Nom, req.Description
	if err := h.Store.TypeConteneurs.Update(ctx, item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *TypeConteneurHandler) DeleteTypeConteneur(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.TypeConteneurs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}
