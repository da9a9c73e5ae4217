package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
)

var clientFilters = []utils.Filter{
	utils.ContainsFilter("name", "users.first_name", "users.last_name"),
	utils.ContainsFilter("city", "user_profiles.city"),
	utils.ContainsFilter("province", "user_profiles.province"),
	utils.ContainsFilter("barangay", "user_profiles.barangay"),
}

// ListClients handles GET /api/v1/management/clients
func ListClients(c *gin.Context) {
	page := utils.ParsePage(c)
	scopes, queryType := utils.FilterScopes(c, clientFilters)

	clients, total, err := services.NewClientService(config.GetDB()).List(c.Request.Context(), page, scopes...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondList(c, clients, page.Paginate(total), queryType)
}
