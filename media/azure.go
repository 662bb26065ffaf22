package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureHost stores blobs in a public-read container.
type AzureHost struct {
	client    *azblob.Client
	container string
	baseURL   string
}

// NewAzureHost connects with a storage connection string and makes sure the container exists.
func NewAzureHost(ctx context.Context, connection, container string) (*AzureHost, error) {
	client, err := azblob.NewClientFromConnectionString(connection, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	_, err = client.CreateContainer(ctx, container, &azblob.CreateContainerOptions{
		Access: to.Ptr(azblob.PublicAccessTypeBlob),
	})
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("create container %s: %w", container, err)
	}
	return &AzureHost{
		client:    client,
		container: container,
		baseURL:   strings.TrimRight(client.URL(), "/") + "/" + container,
	}, nil
}

func (h *AzureHost) Name() string { return "azure" }

func (h *AzureHost) Upload(ctx context.Context, f File, key string) (Asset, error) {
	name := key + f.Extension()
	_, err := h.client.UploadBuffer(ctx, h.container, name, f.Data, &azblob.UploadBufferOptions{
		BlockSize:   4 * 1024 * 1024,
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(f.MediaType)},
	})
	if err != nil {
		return Asset{}, fmt.Errorf("upload blob %s: %w", name, err)
	}
	return Asset{URL: h.baseURL + "/" + name, PublicID: name, Kind: f.Kind()}, nil
}

func (h *AzureHost) Delete(ctx context.Context, a Asset) error {
	_, err := h.client.DeleteBlob(ctx, h.container, a.PublicID, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("delete blob %s: %w", a.PublicID, err)
	}
	return nil
}
