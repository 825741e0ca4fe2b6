// Package preview renders inline previews for catalog assets: images are
// decoded and downscaled to a bounding box, audio and JSON pass through
// untouched. Payloads are base64 so they can ride inside JSON responses.
package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"asset-explorer/internal/assetkinds"
	"asset-explorer/internal/catalog"
)

// DefaultMaxDimension bounds the longer edge of image previews.
const DefaultMaxDimension = 512

// Preview is an inline representation of an asset.
type Preview struct {
	AssetID    string `json:"assetId"`
	MimeType   string `json:"mimeType"`
	DataBase64 string `json:"dataBase64"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// Build produces a preview for asset from its raw bytes. Images larger
// than maxDimension on either edge are scaled down and re-encoded as PNG;
// smaller images, audio and JSON keep their original bytes. Other asset
// kinds are not previewable.
func Build(asset *catalog.Record, data []byte, maxDimension int) (*Preview, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	switch {
	case asset.IsImage:
		return buildImage(asset, data, maxDimension)
	case asset.IsAudio, assetkinds.IsJSON(asset.Extension):
		return &Preview{
			AssetID:    asset.AssetID,
			MimeType:   assetkinds.MimeType(asset.Extension),
			DataBase64: base64.StdEncoding.EncodeToString(data),
		}, nil
	default:
		return nil, fmt.Errorf("asset %s is not previewable", asset.AssetID)
	}
}

func buildImage(asset *catalog.Record, data []byte, maxDimension int) (*Preview, error) {
	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", asset.AssetID, err)
	}

	bounds := decoded.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return &Preview{
			AssetID:    asset.AssetID,
			MimeType:   assetkinds.MimeType(asset.Extension),
			DataBase64: base64.StdEncoding.EncodeToString(data),
			Width:      width,
			Height:     height,
		}, nil
	}

	scaled := imaging.Fit(decoded, maxDimension, maxDimension, imaging.Lanczos)
	encoded, err := encodePNG(scaled)
	if err != nil {
		return nil, err
	}
	return &Preview{
		AssetID:    asset.AssetID,
		MimeType:   "image/png",
		DataBase64: base64.StdEncoding.EncodeToString(encoded),
		Width:      scaled.Bounds().Dx(),
		Height:     scaled.Bounds().Dy(),
	}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
