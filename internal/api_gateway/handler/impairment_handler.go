package handler

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/impairment-ledger/internal/api_gateway/middleware"
	"github.com/impairment-ledger/internal/api_gateway/service"
	"github.com/impairment-ledger/internal/domain/impairment"
)

// ImpairmentHandler handles HTTP requests for impairment operations
type ImpairmentHandler struct {
	impairmentService service.ImpairmentService
	validate          *validator.Validate
	logger            *slog.Logger
}

// NewImpairmentHandler creates a new impairment handler
func NewImpairmentHandler(logger *slog.Logger, impairmentService service.ImpairmentService) *ImpairmentHandler {
	return &ImpairmentHandler{
		impairmentService: impairmentService,
		validate:          newValidator(),
		logger:            logger,
	}
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Action dispatches a discriminated action request
func (h *ImpairmentHandler) Action(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	periodEnd, err := impairment.ParsePeriodEnd(req.PeriodEnd)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	switch req.Action {
	case ActionGetSettings:
		h.getSettings(c)
	case ActionUpdateSettings:
		var params SettingsParams
		if !h.bindParams(c, req.Params, &params) {
			return
		}
		h.updateSettings(c, params)
	case ActionGetLock:
		var params LockParams
		if !h.bindParams(c, req.Params, &params) {
			return
		}
		h.getLock(c, impairment.CalcType(params.Module), periodEnd)
	case ActionSetLock:
		var params LockParams
		if !h.bindParams(c, req.Params, &params) {
			return
		}
		if params.Locked == nil {
			RespondWithDomainError(c, h.logger, impairment.ErrValidation{Field: "locked", Reason: "is required"})
			return
		}
		h.setLock(c, impairment.CalcType(params.Module), periodEnd, *params.Locked)
	default:
		// preview_<type> or post_<type>
		op, typ, _ := strings.Cut(req.Action, "_")
		calcType, err := impairment.ParseCalcType(typ)
		if err != nil {
			RespondWithDomainError(c, h.logger, err)
			return
		}
		var params CalculationParams
		if !h.bindParams(c, req.Params, &params) {
			return
		}
		if op == "post" {
			h.post(c, calcType, periodEnd, params)
		} else {
			h.preview(c, calcType, periodEnd, params)
		}
	}
}

// Preview computes a calculation for the type in the path
func (h *ImpairmentHandler) Preview(c *gin.Context) {
	calcType, periodEnd, params, ok := h.bindCalculationRequest(c)
	if !ok {
		return
	}
	h.preview(c, calcType, periodEnd, params)
}

// Post books a calculation for the type in the path
func (h *ImpairmentHandler) Post(c *gin.Context) {
	calcType, periodEnd, params, ok := h.bindCalculationRequest(c)
	if !ok {
		return
	}
	h.post(c, calcType, periodEnd, params)
}

// GetSettings returns the tenant's ECL settings
func (h *ImpairmentHandler) GetSettings(c *gin.Context) {
	h.getSettings(c)
}

// UpdateSettings replaces the tenant's ECL settings
func (h *ImpairmentHandler) UpdateSettings(c *gin.Context) {
	var params SettingsParams
	if err := c.ShouldBindJSON(&params); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&params); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	h.updateSettings(c, params)
}

// GetLock returns the lock state for ?module=&period_end=
func (h *ImpairmentHandler) GetLock(c *gin.Context) {
	module, err := impairment.ParseCalcType(c.Query("module"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	periodEnd, err := impairment.ParsePeriodEnd(c.Query("period_end"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	h.getLock(c, module, periodEnd)
}

// SetLock sets or clears a period lock
func (h *ImpairmentHandler) SetLock(c *gin.Context) {
	var req SetLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	periodEnd, err := impairment.ParsePeriodEnd(req.PeriodEnd)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	h.setLock(c, impairment.CalcType(req.Module), periodEnd, *req.Locked)
}

// GetCalculation returns the posted calculation for the type in the path and ?period_end=
func (h *ImpairmentHandler) GetCalculation(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	calcType, err := impairment.ParseCalcType(c.Param("type"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	periodEnd, err := impairment.ParsePeriodEnd(c.Query("period_end"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	posted, err := h.impairmentService.GetCalculation(c.Request.Context(), impairment.Key{TenantID: tenantID, CalcType: calcType, PeriodEnd: periodEnd})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	response, err := mapCalculationToResponse(posted)
	if err != nil {
		h.logger.Error("Stored calculation result is unreadable", "calculation_id", posted.Calculation.ID.String(), "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, response)
}

func (h *ImpairmentHandler) preview(c *gin.Context, calcType impairment.CalcType, periodEnd time.Time, params CalculationParams) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	key := impairment.Key{TenantID: tenantID, CalcType: calcType, PeriodEnd: periodEnd}

	preview, err := h.impairmentService.Preview(c.Request.Context(), key, params.estimates())
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, preview)
}

func (h *ImpairmentHandler) post(c *gin.Context, calcType impairment.CalcType, periodEnd time.Time, params CalculationParams) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	result, err := h.impairmentService.Post(c.Request.Context(), &service.PostCommand{
		Key:           impairment.Key{TenantID: tenantID, CalcType: calcType, PeriodEnd: periodEnd},
		Estimates:     params.estimates(),
		Preview:       params.Preview,
		PostedBy:      middleware.GetUserID(c),
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, result)
}

func (h *ImpairmentHandler) getSettings(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settings, err := h.impairmentService.GetSettings(c.Request.Context(), tenantID)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, mapSettingsToResponse(settings))
}

func (h *ImpairmentHandler) updateSettings(c *gin.Context, params SettingsParams) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	settings, err := h.impairmentService.UpdateSettings(c.Request.Context(), &impairment.Settings{
		TenantID:   tenantID,
		Rate0To30:  *params.ECL0To30,
		Rate31To60: *params.ECL31To60,
		Rate61To90: *params.ECL61To90,
		Rate90Plus: *params.ECL90Plus,
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, mapSettingsToResponse(settings))
}

func (h *ImpairmentHandler) getLock(c *gin.Context, module impairment.CalcType, periodEnd time.Time) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	lock, err := h.impairmentService.GetLock(c.Request.Context(), tenantID, module, periodEnd)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, mapLockToResponse(lock))
}

func (h *ImpairmentHandler) setLock(c *gin.Context, module impairment.CalcType, periodEnd time.Time, locked bool) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	lock, err := h.impairmentService.SetLock(c.Request.Context(), &impairment.PeriodLock{
		TenantID:  tenantID,
		Module:    module,
		PeriodEnd: periodEnd,
		Locked:    locked,
		UpdatedBy: middleware.GetUserID(c),
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}
	RespondOK(c, mapLockToResponse(lock))
}

// bindCalculationRequest reads the path type and a {period_end, params} body
func (h *ImpairmentHandler) bindCalculationRequest(c *gin.Context) (impairment.CalcType, time.Time, CalculationParams, bool) {
	var params CalculationParams

	calcType, err := impairment.ParseCalcType(c.Param("type"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return "", time.Time{}, params, false
	}

	var req struct {
		PeriodEnd string          `json:"period_end"`
		Params    json.RawMessage `json:"params,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return "", time.Time{}, params, false
	}
	periodEnd, err := impairment.ParsePeriodEnd(req.PeriodEnd)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return "", time.Time{}, params, false
	}
	if !h.bindParams(c, req.Params, &params) {
		return "", time.Time{}, params, false
	}
	return calcType, periodEnd, params, true
}

// bindParams decodes and validates action params; absent params decode to the zero value
func (h *ImpairmentHandler) bindParams(c *gin.Context, raw json.RawMessage, dst interface{}) bool {
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, dst); err != nil {
			RespondWithDomainError(c, h.logger, impairment.ErrValidation{Field: "params", Reason: "is malformed"})
			return false
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return false
	}
	return true
}

// tenant returns the caller's tenant or responds 401
func (h *ImpairmentHandler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		RespondWithDomainError(c, h.logger, impairment.ErrNotAuthenticated)
		return uuid.Nil, false
	}
	return tenantID, true
}
