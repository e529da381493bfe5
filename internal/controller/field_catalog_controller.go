package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"log-query-translator/internal/dto"
	"log-query-translator/internal/model"
	"log-query-translator/internal/repository"
	"log-query-translator/internal/service"
	"log-query-translator/internal/store"
)

type FieldCatalogController struct {
	catalogService service.FieldCatalogService
}

func NewFieldCatalogController(catalogService service.FieldCatalogService) *FieldCatalogController {
	return &FieldCatalogController{
		catalogService: catalogService,
	}
}

func RegisterFieldCatalogRoutes(router *gin.Engine, controller *FieldCatalogController) {
	fields := router.Group("/indices-fields")
	{
		fields.GET("", controller.GetFields)
		fields.POST("/refresh", controller.RefreshFields)
	}
}

// GetFields godoc
// @Summary      Discovered index fields
// @Description  Returns the field catalog used when FIELDS_AUTODISCOVER is enabled and a request carries no indicesFields.
// @Tags         fields
// @Produce      json
// @Success      200 {object} dto.FieldCatalogResponse
// @Failure      404 {object} model.Response "No catalog loaded yet"
// @Router       /indices-fields [get]
func (c *FieldCatalogController) GetFields(ctx *gin.Context) {
	catalog, err := c.catalogService.Current(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrCatalogNotLoaded) {
			ctx.JSON(http.StatusNotFound, model.NewResponse("Field catalog not loaded yet", nil))
			return
		}
		ctx.JSON(http.StatusInternalServerError, model.NewResponse("Internal server error", nil))
		return
	}
	ctx.JSON(http.StatusOK, toCatalogResponse(catalog))
}

// RefreshFields godoc
// @Summary      Refresh discovered index fields
// @Description  Reads the index mappings for the configured pattern now instead of waiting for the schedule.
// @Tags         fields
// @Produce      json
// @Success      200 {object} dto.FieldCatalogResponse
// @Failure      502 {object} model.Response "Field discovery failed"
// @Failure      503 {object} model.Response "Field discovery not configured"
// @Router       /indices-fields/refresh [post]
func (c *FieldCatalogController) RefreshFields(ctx *gin.Context) {
	catalog, err := c.catalogService.Refresh(ctx.Request.Context())
	if err != nil {
		zerolog.Ctx(ctx.Request.Context()).Error().Err(err).Msg("Field catalog refresh failed")
		if errors.Is(err, repository.ErrDiscoveryDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, model.NewResponse(err.Error(), nil))
			return
		}
		ctx.JSON(http.StatusBadGateway, model.NewResponse("Field discovery failed: "+err.Error(), nil))
		return
	}
	ctx.JSON(http.StatusOK, toCatalogResponse(catalog))
}

func toCatalogResponse(catalog *model.FieldCatalog) dto.FieldCatalogResponse {
	fields := make(map[string]string, len(catalog.Fields))
	for _, f := range catalog.Fields {
		fields[f.Name] = f.Type
	}
	return dto.FieldCatalogResponse{
		IndexPattern: catalog.IndexPattern,
		Fields:       fields,
		FieldCount:   len(catalog.Fields),
		UpdatedAt:    catalog.UpdatedAt.Format(time.RFC3339),
	}
}
