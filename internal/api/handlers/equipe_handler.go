package handlers

import (
	"net/http"

	"port-ops-api-server/internal/models"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type EquipeHandler struct {
	Store *store.Store
}

type EquipeRequest struct {
	Nom string `json:"nom" binding:"required"`
}

type MemberRequest struct {
	Matricule string `json:"matricule" binding:"required"`
}

func (h *EquipeHandler) ListEquipes(c *gin.Context) { listAll(c, h.Store.Equipes) }

func (h *EquipeHandler) GetEquipe(c *gin.Context) { getByID(c, h.Store.Equipes) }

func (h *EquipeHandler) CreateEquipe(c *gin.Context) {
	var req EquipeRequest
	if !bind(c, &req) {
		return
	}
	e := models.Equipe{Nom: req.Nom, Personnels: []models.Personnel{}, Soustraiteures: []models.Soustraiteure{}}
	create(c, h.Store.Equipes, &e)
}

func (h *EquipeHandler) UpdateEquipe(c *gin.Context) {
	var req EquipeRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Equipes, func(e *models.Equipe) error {
		e.Nom = req.Nom
		return nil
	})
}

func (h *EquipeHandler) DeleteEquipe(c *gin.Context) {
	if err := h.Store.DeleteEquipe(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// respondEquipe answers with the equipe and its members after a membership change.
func (h *EquipeHandler) respondEquipe(c *gin.Context, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	e, err := h.Store.Equipes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EquipeHandler) ListPersonnel(c *gin.Context) {
	e, err := h.Store.Equipes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e.Personnels)
}

// AddPersonnel takes the matricule from the path or, when absent, from the body.
func (h *EquipeHandler) AddPersonnel(c *gin.Context) {
	matricule := c.Param("matricule")
	if matricule == "" {
		var req MemberRequest
		if !bind(c, &req) {
			return
		}
		matricule = req.Matricule
	}
	h.respondEquipe(c, h.Store.AddPersonnel(c.Request.Context(), c.Param("id"), matricule))
}

func (h *EquipeHandler) RemovePersonnel(c *gin.Context) {
	h.respondEquipe(c, h.Store.RemovePersonnel(c.Request.Context(), c.Param("id"), c.Param("matricule")))
}

func (h *EquipeHandler) ListSoustraiteurs(c *gin.Context) {
	e, err := h.Store.Equipes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e.Soustraiteures)
}

func (h *EquipeHandler) AddSoustraiteur(c *gin.Context) {
	matricule := c.Param("matricule")
	if matricule == "" {
		var req MemberRequest
		if !bind(c, &req) {
			return
		}
		matricule = req.Matricule
	}
	h.respondEquipe(c, h.Store.AddSoustraiteure(c.Request.Context(), c.Param("id"), matricule))
}

func (h *EquipeHandler) RemoveSoustraiteur(c *gin.Context) {
	h.respondEquipe(c, h.Store.RemoveSoustraiteure(c.Request.Context(), c.Param("id"), c.Param("matricule")))
}

type PersonnelHandler struct {
	Store *store.Store
}

type PersonnelRequest struct {
	Nom        string `json:"nom" binding:"required"`
	Prenom     string `json:"prenom"`
	Fonction   string `json:"fonction"`
	Contact    string `json:"contact"`
	Entreprise string `json:"entreprise"`
}

func (h *PersonnelHandler) ListPersonnels(c *gin.Context) { listAll(c, h.Store.Personnels) }

func (h *PersonnelHandler) GetPersonnel(c *gin.Context) { getByID(c, h.Store.Personnels) }

func (h *PersonnelHandler) CreatePersonnel(c *gin.Context) {
	var req PersonnelRequest
	if !bind(c, &req) {
		return
	}
	create(c, h.Store.Personnels, &models.Personnel{Nom: req.Nom, Prenom: req.Prenom, Fonction: req.Fonction, Contact: req.Contact})
}

func (h *PersonnelHandler) UpdatePersonnel(c *gin.Context) {
	var req PersonnelRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Personnels, func(p *models.Personnel) error {
		p.Nom, p.Prenom, p.Fonction, p.Contact = req.Nom, req.Prenom, req.Fonction, req.Contact
		return nil
	})
}

func (h *PersonnelHandler) DeletePersonnel(c *gin.Context) {
	if err := h.Store.DeletePersonnel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

func (h *PersonnelHandler) ListSoustraiteures(c *gin.Context) { listAll(c, h.Store.Soustraiteures) }

func (h *PersonnelHandler) GetSoustraiteure(c *gin.Context) { getByID(c, h.Store.Soustraiteures) }

func (h *PersonnelHandler) CreateSoustraiteure(c *gin.Context) {
	var req PersonnelRequest
	if !bind(c, &req) {
		return
	}
	create(c, h.Store.Soustraiteures, &models.Soustraiteure{
		Nom: req.Nom, Prenom: req.Prenom, Fonction: req.Fonction, Contact: req.Contact, Entreprise: req.Entreprise,
	})
}

func (h *PersonnelHandler) UpdateSoustraiteure(c *gin.Context) {
	var req PersonnelRequest
	if !bind(c, &req) {
		return
	}
	update(c, h.Store.Soustraiteures, func(s *models.Soustraiteure) error {
		s.Nom, s.Prenom, s.Fonction, s.Contact, s.Entreprise = req.Nom, req.Prenom, req.Fonction, req.Contact, req.Entreprise
		return nil
	})
}

func (h *PersonnelHandler) DeleteSoustraiteure(c *gin.Context) {
	if err := h.Store.DeleteSoustraiteure(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}
