package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/novacoeur/lovepage-api/app/dto"
	"github.com/novacoeur/lovepage-api/app/services"
)

// QRCodeHandlerInterface defines the contract for QR artifact handlers
type QRCodeHandlerInterface interface {
	Download(c fiber.Ctx) error
}

// QRCodeHandler serves generated QR PNG artifacts
type QRCodeHandler struct {
	qr services.QRCodeService
}

func NewQRCodeHandler(qr services.QRCodeService) QRCodeHandlerInterface {
	return &QRCodeHandler{qr: qr}
}

// Download streams the PNG for a page as a file attachment
func (h *QRCodeHandler) Download(c fiber.Ctx) error {
	pageID, err := strconv.ParseInt(c.Params("pageId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid page id",
			Error:   dto.ErrorDetail{Code: "INVALID_PAGE_ID"},
		})
	}

	if !h.qr.Exists(pageID) {
		return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
			Success: false,
			Message: "QR code not found",
			Error:   dto.ErrorDetail{Code: "QRCODE_NOT_FOUND"},
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("qrcode_%d.png", pageID)))
	return c.SendFile(h.qr.ArtifactPath(pageID))
}
