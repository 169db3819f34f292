package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const expiresMetadataKey = "expires"

type BlobCache struct {
	containerClient *azblob.Client
	container       string
}

var _ Cache = (*BlobCache)(nil)

// NewBlobCache uses the shared key when one is given and falls back to the default Azure
// credential chain (managed identity, workload identity, az cli) otherwise.
func NewBlobCache(accountName, accountKey, container string) (*BlobCache, error) {
	if accountName == "" {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT_NAME could not be found")
	}
	// The service URL for blob endpoints is usually in the form: http(s)://<account>.blob.core.windows.net/
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	var (
		client *azblob.Client
		err    error
	)
	if accountKey != "" {
		cred, credErr := azblob.NewSharedKeyCredential(accountName, accountKey)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", credErr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	} else {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobCache{
		containerClient: client,
		container:       container,
	}, nil
}

func blobExpired(metadata map[string]*string, now time.Time) bool {
	for k, v := range metadata {
		if !strings.EqualFold(k, expiresMetadataKey) || v == nil {
			continue
		}
		expires, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			return false
		}
		return now.After(expires)
	}
	return false
}

func (fc *BlobCache) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := fc.containerClient.DownloadStream(ctx, fc.container, key, &azblob.DownloadStreamOptions{})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		slog.ErrorContext(ctx, "failed to download blob", "key", key, "error", err)
		return nil, err
	}
	if blobExpired(stream.Metadata, time.Now()) {
		_ = stream.Body.Close()
		return nil, ErrNotFound
	}
	return stream.Body, nil
}

func (fc *BlobCache) Exists(ctx context.Context, key string) (bool, error) {
	blob := fc.containerClient.ServiceClient().NewContainerClient(fc.container).NewBlobClient(key)
	props, err := blob.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return !blobExpired(props.Metadata, time.Now()), nil
}

func (fc *BlobCache) Put(ctx context.Context, key, value string, opts PutOptions) error {
	uploadOpts := &azblob.UploadStreamOptions{}
	if opts.TTL > 0 {
		expires := time.Now().Add(opts.TTL).UTC().Format(time.RFC3339)
		uploadOpts.Metadata = map[string]*string{expiresMetadataKey: to.Ptr(expires)}
	}
	_, err := fc.containerClient.UploadStream(ctx, fc.container, key, strings.NewReader(value), uploadOpts)
	return err
}
