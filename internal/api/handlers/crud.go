package handlers

import (
	"net/http"

	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

func listAll[T any](c *gin.Context, repo *store.Repository[T]) {
	items, err := repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func getByID[T any](c *gin.Context, repo *store.Repository[T]) {
	item, err := repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func deleteByID[T any](c *gin.Context, repo *store.Repository[T]) {
	if err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

func create[T any](c *gin.Context, repo *store.Repository[T], item *T) {
	if err := repo.Create(c.Request.Context(), item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// update loads the row, lets apply copy the request onto it, then saves it.
func update[T any](c *gin.Context, repo *store.Repository[T], apply func(*T) error) {
	ctx := c.Request.Context()
	item, err := repo.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := apply(item); err != nil {
		respondError(c, err)
		return
	}
	if err := repo.Update(ctx, item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
