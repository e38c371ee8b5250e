package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/primefinance/backend/internal/services"
)

type VoucherHandler struct {
	service   *services.VoucherService
	validator *services.ValidationHelper
}

func NewVoucherHandler(service *services.VoucherService) *VoucherHandler {
	return &VoucherHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// IssueVoucherRequest asks for a deposit voucher.
type IssueVoucherRequest struct {
	AccountID string          `json:"accountId" validate:"required"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
}

// IssueVoucherResponse carries the voucher and its QR image.
type IssueVoucherResponse struct {
	Success bool              `json:"success"`
	Voucher *services.Voucher `json:"voucher"`
	QRImage string            `json:"qrImage"` // base64 PNG
}

// RedeemVoucherRequest carries a scanned voucher code.
type RedeemVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

// IssueVoucher generates a deposit voucher
// @Summary Issue deposit voucher
// @Description Generate a one-time QR voucher that deposits the amount into the account when redeemed
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IssueVoucherRequest true "Voucher request"
// @Success 201 {object} IssueVoucherResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /vouchers [post]
func (h *VoucherHandler) IssueVoucher(w http.ResponseWriter, r *http.Request) {
	var req IssueVoucherRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	voucher, qrImage, err := h.service.Issue(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		sendVoucherError(w, err)
		return
	}

	services.SendJSON(w, http.StatusCreated, IssueVoucherResponse{
		Success: true,
		Voucher: voucher,
		QRImage: qrImage,
	})
}

// RedeemVoucher redeems a scanned voucher
// @Summary Redeem deposit voucher
// @Description Claim a voucher and credit its amount. Each voucher can be redeemed once.
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RedeemVoucherRequest true "Scanned code"
// @Success 200 {object} services.Voucher
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse "Voucher belongs to another user"
// @Failure 404 {object} services.ErrorResponse "Invalid or expired voucher"
// @Router /vouchers/redeem [post]
func (h *VoucherHandler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	var req RedeemVoucherRequest
	if err := services.DecodeJSON(w, r, &req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	voucher, err := h.service.Redeem(r.Context(), req.Code)
	if err != nil {
		sendVoucherError(w, err)
		return
	}

	services.SendJSON(w, http.StatusOK, voucher)
}

func sendVoucherError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrVoucherNotFound):
		services.SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
	case errors.Is(err, services.ErrVoucherOwner):
		services.SendErrorResponse(w, err.Error(), http.StatusForbidden, nil)
	default:
		services.SendLedgerError(w, err)
	}
}
