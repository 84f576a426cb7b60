package authkit

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const qrCodeSizePx = 256

// renderQRCode encodes the otpauth provisioning URL as a PNG suitable for
// authenticator-app enrollment.
func renderQRCode(provisioningURL string) ([]byte, error) {
	if provisioningURL == "" {
		return nil, errors.Join(ErrQRGeneration, errors.New("empty provisioning url"))
	}
	png, err := qrcode.Encode(provisioningURL, qrcode.Medium, qrCodeSizePx)
	if err != nil {
		return nil, errors.Join(ErrQRGeneration, err)
	}
	return png, nil
}
