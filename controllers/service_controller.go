package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
)

var serviceFilters = []utils.Filter{
	utils.ContainsFilter("name", "services.name"),
	utils.ContainsFilter("description", "services.description"),
}

var serviceOrdering = utils.Ordering{
	Fields: map[string]string{
		"id":   "services.id",
		"name": "services.name",
	},
	Default: "services.id ASC",
}

func catalogService() *services.CatalogService {
	return services.NewCatalogService(config.GetDB())
}

// ListServices handles GET /api/v1/management/services
func ListServices(c *gin.Context) {
	page := utils.ParsePage(c)
	scopes, queryType := utils.FilterScopes(c, serviceFilters)

	list, total, err := catalogService().List(c.Request.Context(), serviceOrdering.Clause(c.Query("ordering")), page, scopes...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondList(c, list, page.Paginate(total), queryType)
}

// CreateService handles POST /api/v1/management/services
func CreateService(c *gin.Context) {
	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	service, err := catalogService().Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, service)
}

// QuickCreateService handles POST /api/v1/management/services/quick.
// It is called from the shop form and answers with the bare {name, description, pk} on success.
func QuickCreateService(c *gin.Context) {
	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	service, err := catalogService().Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        service.Name,
		"description": service.Description,
		"pk":          service.ID,
	})
}

// GetService handles GET /api/v1/management/services/:id
func GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	service, err := catalogService().Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, service)
}

// UpdateService handles PUT /api/v1/management/services/:id
func UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ServiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	service, err := catalogService().Update(c.Request.Context(), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, service)
}

// DeleteService handles DELETE /api/v1/management/services/:id - removes its prices and their orders too
func DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := catalogService().Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
