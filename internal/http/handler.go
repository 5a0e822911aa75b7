package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/marketplace-service/internal/http/middleware"
	"github.com/nurpe/marketplace-service/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	payments  *service.PaymentService
	deposits  *service.DepositService
	reports   *service.ReportService
	log       zerolog.Logger
}

func NewHandler(
	contracts *service.ContractService,
	payments *service.PaymentService,
	deposits *service.DepositService,
	reports *service.ReportService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts: contracts,
		payments:  payments,
		deposits:  deposits,
		reports:   reports,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:job_id/pay", h.payJob)
	protected.POST("/balances/deposit", h.deposit)

	admin := protected.Group("/admin")
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/best-clients/export", h.exportBestClients)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	jobID, err := uuid.Parse(strings.TrimSpace(c.Param("job_id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	if err := h.payments.Pay(c.Request.Context(), principal, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type depositRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	result, err := h.deposits.Deposit(c.Request.Context(), principal, *req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) bestProfession(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	best, err := h.reports.BestProfession(c.Request.Context(), window)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (h *Handler) bestClients(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	clients, err := h.reports.BestClients(c.Request.Context(), window, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) exportBestClients(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	format := service.ExportFormat(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "xlsx"))))

	result, err := h.reports.ExportClientsReport(c.Request.Context(), service.ExportReportInput{
		Window: window,
		Limit:  limit,
		Format: format,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var limitErr *service.DepositLimitError
	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"amount":      limitErr.Amount,
			"unpaidTotal": limitErr.UnpaidTotal,
		})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseWindow(c *gin.Context) (service.ReportWindow, error) {
	start, _, err := parseDate(c.Query("start"))
	if err != nil {
		return service.ReportWindow{}, errors.New("invalid start")
	}
	end, dateOnly, err := parseDate(c.Query("end"))
	if err != nil {
		return service.ReportWindow{}, errors.New("invalid end")
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return service.ReportWindow{Start: start, End: end}, nil
}

// parseLimit returns 0 for an absent limit. Bounds are checked by the report
// service, except that an explicit zero is refused here since 0 means default.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", service.ErrInvalidInput)
	}
	if limit == 0 {
		return 0, fmt.Errorf("%w: limit must be positive", service.ErrInvalidInput)
	}
	return limit, nil
}

// parseDate reports whether raw carried only a calendar date.
func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, service.ErrInvalidInput
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, true, nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, false, nil
		}
	}
	return time.Time{}, false, service.ErrInvalidInput
}
