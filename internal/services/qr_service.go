package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrLabelSize = 256

// QRService renders scannable labels that point at a product's buy endpoint.
type QRService struct {
	catalog   *CatalogService
	publicURL string
}

// ProductLabel is a rendered label. Image is a base64 encoded PNG.
type ProductLabel struct {
	ProductID string `json:"product_id"`
	Content   string `json:"qrCode"`
	Image     string `json:"qrImage"`
}

func NewQRService(catalog *CatalogService, publicURL string) *QRService {
	return &QRService{
		catalog:   catalog,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *QRService) GenerateProductLabel(ctx context.Context, productID string) (*ProductLabel, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Deleted {
		return nil, fmt.Errorf("no product %s available to purchase: %w", productID, ErrProductUnavailable)
	}

	content := fmt.Sprintf("%s/api/v1/product/buy/%s", s.publicURL, product.ID)

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(qrLabelSize)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return &ProductLabel{
		ProductID: product.ID,
		Content:   content,
		Image:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
