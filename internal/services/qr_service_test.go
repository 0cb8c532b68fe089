package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService_GenerateProductLabel(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	service := NewQRService(engine.Catalog, "https://vend.example.com/")
	ctx := context.Background()

	product, err := engine.CreateProduct(ctx, "Cola", 10, 3, "bob")
	require.NoError(t, err)

	t.Run("renders label", func(t *testing.T) {
		label, err := service.GenerateProductLabel(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://vend.example.com/api/v1/product/buy/"+product.ID, label.Content)

		raw, err := base64.StdEncoding.DecodeString(label.Image)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, qrLabelSize, img.Bounds().Dx())
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := service.GenerateProductLabel(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted product", func(t *testing.T) {
		require.NoError(t, engine.SoftDeleteProduct(ctx, product.ID, "bob"))
		_, err := service.GenerateProductLabel(ctx, product.ID)
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})
}
