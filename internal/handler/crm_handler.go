package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilov-labs/leads-crm-api/internal/dto"
	"github.com/akilov-labs/leads-crm-api/internal/repository"
	"github.com/akilov-labs/leads-crm-api/internal/service"
)

// CRMHandler exposes the sales-pipeline endpoints.
type CRMHandler struct {
	service *service.LeadsService
}

// NewCRMHandler creates a new handler instance.
func NewCRMHandler(service *service.LeadsService) *CRMHandler {
	return &CRMHandler{service: service}
}

// Snapshot handles GET /crm requests.
func (h *CRMHandler) Snapshot(c echo.Context) error {
	snapshot, err := h.service.GetSnapshot(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load crm snapshot")
	}
	return Success(c, http.StatusOK, "crm snapshot retrieved", snapshot)
}

// Dispatch handles POST /crm requests, routed on the op field.
func (h *CRMHandler) Dispatch(c echo.Context) error {
	var req dto.CRMOpRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	switch req.Op {
	case dto.OpAddOrUpdateLead:
		lead, err := h.service.UpsertLead(ctx, req.Lead)
		if err != nil {
			return leadError(c, err, "failed to save lead")
		}
		return Success(c, http.StatusOK, "lead saved", lead)

	case dto.OpSetStage:
		lead, err := h.service.SetStage(ctx, req.LeadID, req.Stage)
		if err != nil {
			return leadError(c, err, "failed to update stage")
		}
		return Success(c, http.StatusOK, "stage updated", lead)

	case dto.OpAddNote:
		lead, err := h.service.AddNote(ctx, req.LeadID, req.Note)
		if err != nil {
			return leadError(c, err, "failed to add note")
		}
		return Success(c, http.StatusOK, "note added", lead)

	case dto.OpDeleteLead:
		if err := h.service.DeleteLead(ctx, req.LeadID); err != nil {
			return leadError(c, err, "failed to delete lead")
		}
		return Success(c, http.StatusOK, "lead deleted", nil)

	case dto.OpSetWorking:
		entry, err := h.service.SetWorking(ctx, req)
		if err != nil {
			return leadError(c, err, "failed to update working entry")
		}
		return Success(c, http.StatusOK, "working entry saved", entry)

	default:
		return Error(c, http.StatusBadRequest, "unknown op")
	}
}

// leadError maps service failures onto envelope statuses.
func leadError(c echo.Context, err error, fallback string) error {
	var valErr service.ValidationError
	if errors.As(err, &valErr) {
		return Error(c, http.StatusBadRequest, valErr.Message)
	}
	if errors.Is(err, repository.ErrLeadNotFound) {
		return Error(c, http.StatusNotFound, "lead not found")
	}
	return Error(c, http.StatusInternalServerError, fallback)
}
