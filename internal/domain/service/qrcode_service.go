package service

// QRCodeService defines the interface for QR code generation services
type QRCodeService interface {
	// GenerateLoginQR renders the Telegram login deep link as a PNG QR code,
	// so a reader on the web client can bootstrap the widget login by phone.
	GenerateLoginQR() ([]byte, error)
}
