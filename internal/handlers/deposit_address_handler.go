package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"sync"

	"github.com/skip2/go-qrcode"
	"github.com/snapedit/backend/internal/logger"
	"github.com/snapedit/backend/internal/services"
)

const qrSize = 256

// DepositAddressResponse tells users where to send funds before submitting a deposit request
// @Description Deposit address with a scannable QR code
type DepositAddressResponse struct {
	Address string `json:"address" example:"0x1234...AbCdEfG...5678"`
	Network string `json:"network" example:"USDT (ERC-20)"`
	QRImage string `json:"qrImage"` // base64 PNG
}

type DepositAddressHandler struct {
	address string
	network string

	once sync.Once
	png  []byte
	err  error
}

func NewDepositAddressHandler(address, network string) *DepositAddressHandler {
	return &DepositAddressHandler{address: address, network: network}
}

// qrPNG renders the address once; it never changes while the process runs.
func (h *DepositAddressHandler) qrPNG() ([]byte, error) {
	h.once.Do(func() {
		qr, err := qrcode.New(h.address, qrcode.Medium)
		if err != nil {
			h.err = err
			return
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, qr.Image(qrSize)); err != nil {
			h.err = err
			return
		}
		h.png = buf.Bytes()
	})
	return h.png, h.err
}

// GetAddress returns the deposit address
// @Summary Deposit address
// @Description Address and network to pay to before submitting a deposit request
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DepositAddressResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /deposits/address [get]
func (h *DepositAddressHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	img, err := h.qrPNG()
	if err != nil {
		lg := logger.FromContext(r.Context())
		lg.Error().Err(err).Msg("QR generation failed")
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DepositAddressResponse{
		Address: h.address,
		Network: h.network,
		QRImage: base64.StdEncoding.EncodeToString(img),
	})
}

// GetQRCode streams the deposit address QR code
// @Summary Deposit address QR code
// @Tags account
// @Produce png
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /deposits/address.png [get]
func (h *DepositAddressHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	img, err := h.qrPNG()
	if err != nil {
		lg := logger.FromContext(r.Context())
		lg.Error().Err(err).Msg("QR generation failed")
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(img)
}
