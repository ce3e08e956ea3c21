package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"path/filepath"
	"strings"

	"buildhub/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// MaxImageSize is the largest upload accepted by ReadImage
const MaxImageSize = 10 << 20

// ImageUploader stores images and returns their public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, file *FileData, subfolder string) (string, error)
}

type CloudinaryClient struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// FileData is an uploaded file held in memory
type FileData struct {
	Data     []byte
	Filename string
	MimeType string
}

func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if !cfg.CloudinaryEnabled() {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryClient{cld: cld, folder: cfg.CloudinaryFolder}, nil
}

// UploadImage re-encodes JPEG and PNG files as JPEG at quality 80, then
// uploads them under folder/subfolder. The returned URL asks Cloudinary for
// WebP delivery.
func (c *CloudinaryClient) UploadImage(ctx context.Context, file *FileData, subfolder string) (string, error) {
	data, err := compressImage(file.Data, file.Filename)
	if err != nil {
		data = file.Data
	}

	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       uuid.New().String(),
		Folder:         path.Join(c.folder, subfolder),
		Transformation: "q_auto,f_webp,w_1600",
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	return strings.Replace(result.SecureURL, "/upload/", "/upload/f_webp,q_auto,w_1600/", 1), nil
}

func compressImage(data []byte, filename string) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("error encoding compressed image: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadImage reads an uploaded image, rejecting files that are too large or
// not an image type we accept.
func ReadImage(r io.Reader, filename string) (*FileData, error) {
	mimeType, ok := imageMimeType(filename)
	if !ok {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image exceeds %d MB", MaxImageSize>>20)
	}

	return &FileData{Data: data, Filename: filename, MimeType: mimeType}, nil
}

func imageMimeType(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	case ".webp":
		return "image/webp", true
	case ".gif":
		return "image/gif", true
	}
	return "", false
}
