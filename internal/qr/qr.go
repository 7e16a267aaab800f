// Package qr renders loyalty-point QR codes. The encoded payload matches
// what customer apps have always scanned from the dashboard screen.
package qr

import (
	"encoding/json"
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	MinSize     = 64
	MaxSize     = 1024
	DefaultSize = 250
)

type payload struct {
	QRID   string `json:"qrId"`
	Type   string `json:"type"`
	Points int    `json:"points"`
}

// RenderPoints encodes a point-issuance payload as a PNG of size x size
// pixels. Size is clamped into the supported range; zero means default.
func RenderPoints(qrID string, points, size int) ([]byte, error) {
	if qrID == "" {
		return nil, errors.New("qr id is required")
	}
	if points <= 0 {
		return nil, errors.New("points must be positive")
	}
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize {
		size = MinSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	content, err := json.Marshal(payload{QRID: qrID, Type: "points", Points: points})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(content), qrcode.Medium, size)
}
