package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
)

// shopFilters are applied in precedence order; only the first one present counts
var shopFilters = []utils.Filter{
	utils.ContainsFilter("name", "laundry_shops.name"),
	utils.ContainsFilter("city", "laundry_shops.city"),
	utils.ContainsFilter("province", "laundry_shops.province"),
	utils.ContainsFilter("barangay", "laundry_shops.barangay"),
}

var shopOrdering = utils.Ordering{
	Fields: map[string]string{
		"id":            "laundry_shops.id",
		"name":          "laundry_shops.name",
		"city":          "laundry_shops.city",
		"province":      "laundry_shops.province",
		"creation_date": "laundry_shops.creation_date",
	},
	Default: "laundry_shops.name ASC",
}

func shopService() *services.ShopService {
	return services.NewShopService(config.GetDB(), services.GetImageService(), metrics.Default())
}

// ListShops handles GET /api/v1/management/shops
func ListShops(c *gin.Context) {
	page := utils.ParsePage(c)
	scopes, queryType := utils.FilterScopes(c, shopFilters)

	shops, total, err := shopService().List(c.Request.Context(), shopOrdering.Clause(c.Query("ordering")), page, scopes...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondList(c, shops, page.Paginate(total), queryType)
}

// CreateShop handles POST /api/v1/management/shops - saves a shop and its price set together
func CreateShop(c *gin.Context) {
	var req services.ShopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	shop, err := shopService().Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, shop)
}

// GetShop handles GET /api/v1/management/shops/:id
func GetShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	shop, err := shopService().Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, shop)
}

// UpdateShop handles PUT /api/v1/management/shops/:id
func UpdateShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ShopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	shop, err := shopService().Update(c.Request.Context(), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, shop)
}

// DeleteShop handles DELETE /api/v1/management/shops/:id
func DeleteShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := shopService().Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// UploadShopLogo handles POST /api/v1/management/shops/:id/logo - multipart field "logo"
func UploadShopLogo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "A logo file is required", err.Error())
		return
	}

	shop, err := shopService().SetLogo(c.Request.Context(), id, fileHeader)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, shop)
}
