package qrcode

import (
	"fmt"

	"kiosk/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	loginURL             string
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance. botUsername is the
// Telegram bot the login widget belongs to; the encoded deep link opens a chat
// with it.
func NewQRCodeService(botUsername string, size int, errorCorrectionLevel string) (service.QRCodeService, error) {
	if botUsername == "" {
		return nil, fmt.Errorf("telegram bot username must be provided")
	}

	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		loginURL:             fmt.Sprintf("https://t.me/%s?start=login", botUsername),
		size:                 size,
		errorCorrectionLevel: level,
	}, nil
}

// GenerateLoginQR renders the Telegram login deep link as a PNG image.
func (s *qrcodeService) GenerateLoginQR() ([]byte, error) {
	qrCode, err := qrcode.New(s.loginURL, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// Generate PNG image
	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
