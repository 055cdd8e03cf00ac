package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/novacoeur/lovepage-api/app/dto"
	businessflow "github.com/novacoeur/lovepage-api/business_flow"
	"github.com/novacoeur/lovepage-api/utils"
)

// LovePageHandlerInterface defines the contract for love page handlers
type LovePageHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	QuickCreate(c fiber.Ctx) error
	ExportClient(c fiber.Ctx) error
}

// LovePageHandler implements LovePageHandlerInterface
type LovePageHandler struct {
	flow      businessflow.LovePageFlow
	validator *validator.Validate
}

func NewLovePageHandler(flow businessflow.LovePageFlow) LovePageHandlerInterface {
	return &LovePageHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ErrorResponse standard JSON error
func (h *LovePageHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *LovePageHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns all non-deleted pages, newest first
func (h *LovePageHandler) List(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/pages")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.ListPages(ctx, metadata)
	if err != nil {
		log.Println("List love pages failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list love pages", "LIST_PAGES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Love pages retrieved", res)
}

// Get returns one page by id
func (h *LovePageHandler) Get(c fiber.Ctx) error {
	id, err := h.pageID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page id", "INVALID_PAGE_ID", nil)
	}

	ctx, cancel := h.requestContext(c, "/api/pages/:id")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.GetPage(ctx, id, metadata)
	if err != nil {
		if businessflow.IsPageNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Love page not found", "PAGE_NOT_FOUND", nil)
		}
		log.Println("Get love page failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load love page", "GET_PAGE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Love page retrieved", res)
}

// Create persists a new page via the explicit CRUD path
func (h *LovePageHandler) Create(c fiber.Ctx) error {
	var req dto.CreateLovePageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateStruct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err)
	}

	ctx, cancel := h.requestContext(c, "/api/pages")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.CreatePage(ctx, &req, metadata)
	if err != nil {
		if businessflow.IsValidation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "PAGE_VALIDATION_FAILED", nil)
		}
		log.Println("Create love page failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create love page", "PAGE_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Love page created", res)
}

// Update merges a partial patch over an existing page
func (h *LovePageHandler) Update(c fiber.Ctx) error {
	id, err := h.pageID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page id", "INVALID_PAGE_ID", nil)
	}

	var req dto.UpdateLovePageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateStruct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err)
	}

	ctx, cancel := h.requestContext(c, "/api/pages/:id")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.UpdatePage(ctx, id, &req, metadata)
	if err != nil {
		if businessflow.IsPageNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Love page not found", "PAGE_NOT_FOUND", nil)
		}
		if businessflow.IsValidation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "PAGE_VALIDATION_FAILED", nil)
		}
		log.Println("Update love page failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update love page", "PAGE_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Love page updated", res)
}

// Delete soft-deletes a page
func (h *LovePageHandler) Delete(c fiber.Ctx) error {
	id, err := h.pageID(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page id", "INVALID_PAGE_ID", nil)
	}

	ctx, cancel := h.requestContext(c, "/api/pages/:id")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.DeletePage(ctx, id, metadata)
	if err != nil {
		if businessflow.IsPageNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Love page not found", "PAGE_NOT_FOUND", nil)
		}
		log.Println("Delete love page failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete love page", "PAGE_DELETE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Love page deleted", res)
}

// QuickCreate runs the bundled create-record-and-generate-QR operation
func (h *LovePageHandler) QuickCreate(c fiber.Ctx) error {
	var req dto.QuickCreateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateStruct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err)
	}

	ctx, cancel := h.requestContext(c, "/api/create-love-page")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.QuickCreate(ctx, &req, metadata)
	if err != nil {
		if businessflow.IsValidation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "PAGE_VALIDATION_FAILED", nil)
		}
		log.Println("Quick create failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create love page", "PAGE_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Love page created", res)
}

// ExportClient returns the client handover bundle
func (h *LovePageHandler) ExportClient(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("pageId"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page id", "INVALID_PAGE_ID", nil)
	}

	ctx, cancel := h.requestContext(c, "/api/export-client/:pageId")
	defer cancel()

	metadata := clientMetadata(c)
	res, err := h.flow.ExportClient(ctx, id, metadata)
	if err != nil {
		if businessflow.IsPageNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Love page not found", "PAGE_NOT_FOUND", nil)
		}
		log.Println("Export client failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export client", "EXPORT_CLIENT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Client exported", res)
}

func (h *LovePageHandler) pageID(c fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (h *LovePageHandler) validateStruct(req any) []string {
	if err := h.validator.Struct(req); err != nil {
		var messages []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			messages = append(messages, getValidationErrorMessage(fieldErr))
		}
		return messages
	}
	return nil
}

func (h *LovePageHandler) requestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	return ctx, cancel
}
