package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"log-query-translator/internal/dto"
)

const (
	serviceName        = "query-bridge"
	healthCheckTimeout = 10 * time.Second
)

// forwardRequest mirrors dto.QueryRequest without omitempty, so the upstream
// always sees every key.
type forwardRequest struct {
	NaturalLanguageQuery string                     `json:"natural_language_query"`
	IndexPattern         string                     `json:"index_pattern"`
	TimeRange            map[string]string          `json:"time_range"`
	AdditionalContext    map[string]json.RawMessage `json:"additional_context"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	Service           string `json:"service"`
	TranslatorService any    `json:"translator_service" swaggertype:"object"`
}

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.POST("/proxy-query", h.ProxyQuery)
	router.GET("/health", h.Health)
}

// ProxyQuery godoc
// @Summary      Forward a question to the translation service
// @Description  Missing additional_context is sent as an empty object. The upstream status and JSON body are passed through unchanged.
// @Tags         bridge
// @Accept       json
// @Produce      json
// @Param        request body dto.QueryRequest true "Question to translate"
// @Success      200 {object} dto.QueryResponse
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse "Translation service unreachable"
// @Router       /proxy-query [post]
func (h *Handler) ProxyQuery(ctx *gin.Context) {
	logger := zerolog.Ctx(ctx.Request.Context())

	var req dto.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}
	if req.IndexPattern == "" {
		req.IndexPattern = dto.DefaultIndexPattern
	}
	if req.AdditionalContext == nil {
		req.AdditionalContext = map[string]json.RawMessage{}
	}

	body, err := json.Marshal(forwardRequest{
		NaturalLanguageQuery: req.NaturalLanguageQuery,
		IndexPattern:         req.IndexPattern,
		TimeRange:            req.TimeRange,
		AdditionalContext:    req.AdditionalContext,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Error encoding request: " + err.Error()})
		return
	}

	status, respBody, err := h.client.Forward(ctx.Request.Context(), body)
	if err != nil {
		logger.Error().Err(err).Msg("Translation service call failed")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "Error communicating with translation service: " + err.Error()})
		return
	}
	ctx.Data(status, "application/json", respBody)
}

// Health godoc
// @Summary      Bridge and translation service health
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *Handler) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthCheckTimeout)
	defer cancel()

	upstream, err := h.client.Health(checkCtx)
	if err != nil {
		zerolog.Ctx(ctx.Request.Context()).Warn().Err(err).Msg("Translation service health check failed")
		ctx.JSON(http.StatusOK, HealthResponse{Status: "degraded", Service: serviceName, TranslatorService: "unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: serviceName, TranslatorService: upstream})
}
