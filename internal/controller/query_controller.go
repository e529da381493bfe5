package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"log-query-translator/internal/dto"
	"log-query-translator/internal/metrics"
	"log-query-translator/internal/service"
)

const serviceName = "log-query-translator"

type QueryController struct {
	translationService service.TranslationService
}

func NewQueryController(translationService service.TranslationService) *QueryController {
	return &QueryController{
		translationService: translationService,
	}
}

func RegisterQueryRoutes(router *gin.Engine, controller *QueryController) {
	router.POST("/translate-query", controller.TranslateQuery)
	router.POST("/fix-query", controller.FixQuery)
	router.GET("/health", controller.Health)
}

// TranslateQuery godoc
// @Summary      Translate a natural language question into an Elasticsearch query
// @Description  Runs the analysis, translation and optimization stages. When the optimization stage yields no usable JSON the translated query is returned instead.
// @Tags         query
// @Accept       json
// @Produce      json
// @Param        request body dto.QueryRequest true "Question, index pattern and optional field context"
// @Success      200 {object} dto.QueryResponse "Translated query"
// @Failure      400 {object} dto.ErrorResponse "Invalid request body"
// @Failure      500 {object} dto.ErrorResponse "Model call failed or no query could be extracted"
// @Router       /translate-query [post]
func (c *QueryController) TranslateQuery(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx, service.EndpointTranslate)
	if !ok {
		return
	}

	resp, err := c.translationService.TranslateQuery(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Error translating query: " + err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// FixQuery godoc
// @Summary      Repair an Elasticsearch query that failed
// @Description  additional_context must carry DslQuery (the failing query) and ErrorMessage (the error it produced). When the repaired query cannot be read, a safe match_all query with size 1 is returned.
// @Tags         query
// @Accept       json
// @Produce      json
// @Param        request body dto.QueryRequest true "Failing query and its error in additional_context"
// @Success      200 {object} dto.QueryResponse "Repaired query or the safe default"
// @Failure      400 {object} dto.ErrorResponse "Invalid body, or DslQuery / ErrorMessage missing"
// @Failure      500 {object} dto.ErrorResponse "Model call failed"
// @Router       /fix-query [post]
func (c *QueryController) FixQuery(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx, service.EndpointFix)
	if !ok {
		return
	}

	resp, err := c.translationService.FixQuery(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMalformedInput) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Error fixing query: " + err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Health godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Router       /health [get]
func (c *QueryController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Service: serviceName})
}

func bindQueryRequest(ctx *gin.Context, endpoint string) (dto.QueryRequest, bool) {
	var req dto.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		zerolog.Ctx(ctx.Request.Context()).Warn().Err(err).Msg("Invalid query request body")
		metrics.RecordRequest(endpoint, "rejected")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body: " + err.Error()})
		return req, false
	}
	req.Normalize()
	if req.NaturalLanguageQuery == "" {
		metrics.RecordRequest(endpoint, "rejected")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "natural_language_query must not be empty"})
		return req, false
	}
	return req, true
}
