package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryHost uploads through the Cloudinary upload API.
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryHost(cloudName, apiKey, apiSecret string) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &CloudinaryHost{cld: cld}, nil
}

func (h *CloudinaryHost) Name() string { return "cloudinary" }

func (h *CloudinaryHost) Upload(ctx context.Context, f File, key string) (Asset, error) {
	res, err := h.cld.Upload.Upload(ctx, bytes.NewReader(f.Data), uploader.UploadParams{
		PublicID:       key,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
	})
	if err != nil {
		return Asset{}, err
	}
	if res.Error.Message != "" {
		return Asset{}, errors.New(res.Error.Message)
	}
	kind := res.ResourceType
	if kind == "" {
		kind = f.Kind()
	}
	return Asset{URL: res.SecureURL, PublicID: res.PublicID, Kind: kind}, nil
}

func (h *CloudinaryHost) Delete(ctx context.Context, a Asset) error {
	kind := a.Kind
	if kind == "" {
		kind = KindImage
	}
	res, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     a.PublicID,
		ResourceType: kind,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	// "not found" means there is nothing left to clean up
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", a.PublicID, res.Result)
	}
	return nil
}
