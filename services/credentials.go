package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"math/big"
	"time"

	"bace/models"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrSize = 300
)

var qrForeground = color.RGBA{R: 0x1e, G: 0x40, B: 0xaf, A: 0xff}

// ImageStore is where rendered QR images are kept.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// Credentials produces the access code and QR image for a subscriber. It
// never touches the subscriber record.
type Credentials struct {
	images ImageStore
	now    func() time.Time
}

func NewCredentials(images ImageStore) *Credentials {
	return &Credentials{images: images, now: time.Now}
}

// QRPayload is the text encoded in a subscriber's QR image.
func QRPayload(email, code4 string) string {
	return email + ":" + code4
}

// GenerateCode4 returns a uniformly random code in [1000, 9999].
func GenerateCode4() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

// RenderQR encodes payload as a PNG image.
func RenderQR(payload string) ([]byte, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	q.ForegroundColor = qrForeground
	q.BackgroundColor = color.White

	png, err := q.PNG(qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}

// Generate creates a new code and stores its QR image.
func (c *Credentials) Generate(ctx context.Context, sub *models.Subscriber) (models.Credentials, error) {
	code, err := GenerateCode4()
	if err != nil {
		return models.Credentials{}, err
	}

	png, err := RenderQR(QRPayload(sub.Email, code))
	if err != nil {
		return models.Credentials{}, err
	}

	name, err := c.store(ctx, sub.ID, png)
	if err != nil {
		return models.Credentials{}, err
	}

	return models.Credentials{
		Code4:     code,
		QRCode:    c.images.URL(name),
		QRDataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		QRFile:    name,
	}, nil
}

// store writes the image under a timestamped name. Names are never reused, so
// a taken name moves the timestamp forward.
func (c *Credentials) store(ctx context.Context, subscriberID string, png []byte) (string, error) {
	ts := c.now().UnixMilli()
	for attempt := 0; attempt < 20; attempt++ {
		name := fmt.Sprintf("qrcode-%s-%d.png", subscriberID, ts+int64(attempt))
		err := c.images.Save(ctx, name, bytes.NewReader(png))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to store qr code: %w", err)
		}
	}
	return "", fmt.Errorf("failed to store qr code: no free file name for %s", subscriberID)
}

// Discard removes the image of credentials that were never persisted.
func (c *Credentials) Discard(ctx context.Context, creds models.Credentials) error {
	if creds.QRFile == "" {
		return nil
	}
	return c.images.Delete(ctx, creds.QRFile)
}
