package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

const copyPollInterval = 500 * time.Millisecond

// AzureBlobStore is the BlobStore on an Azure Storage account. SAS URLs are
// signed with the account key from the connection string.
type AzureBlobStore struct {
	client *azblob.Client
}

func NewAzureBlobStore(connectionString string) (*AzureBlobStore, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("azure connection string is not configured")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return &AzureBlobStore{client: client}, nil
}

// EnsureContainers creates the given containers when they do not exist.
func (s *AzureBlobStore) EnsureContainers(ctx context.Context, names ...string) error {
	for _, name := range names {
		_, err := s.client.CreateContainer(ctx, name, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return fmt.Errorf("create container %s: %w", name, err)
		}
	}
	return nil
}

func (s *AzureBlobStore) blobClient(container, name string) *blob.Client {
	return s.client.ServiceClient().NewContainerClient(container).NewBlobClient(name)
}

func notFound(err error, container, name string) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("%w: %s/%s", ErrBlobNotFound, container, name)
	}
	return err
}

func (s *AzureBlobStore) Upload(ctx context.Context, container, name string, r io.Reader) error {
	if _, err := cleanName(name); err != nil {
		return err
	}
	if _, err := s.client.UploadStream(ctx, container, name, r, nil); err != nil {
		return fmt.Errorf("upload %s/%s: %w", container, name, err)
	}
	return nil
}

func (s *AzureBlobStore) Download(ctx context.Context, container, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, notFound(err, container, name)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", container, name, err)
	}
	return data, nil
}

func (s *AzureBlobStore) List(ctx context.Context, container, prefix string) ([]BlobInfo, error) {
	pager := s.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	var out []BlobInfo
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("list %s/%s: %w", container, prefix, err)
		}
		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := BlobInfo{Name: *item.Name}
			if p := item.Properties; p != nil {
				if p.LastModified != nil {
					info.LastModified = p.LastModified.UTC()
				}
				if p.ContentLength != nil {
					info.Size = *p.ContentLength
				}
			}
			out = append(out, info)
		}
	}
	return out, nil
}

func (s *AzureBlobStore) Delete(ctx context.Context, container, name string) error {
	if _, err := s.client.DeleteBlob(ctx, container, name, nil); err != nil {
		return notFound(err, container, name)
	}
	return nil
}

// Move copies the blob server side, waits for the copy to finish and deletes
// the source.
func (s *AzureBlobStore) Move(ctx context.Context, container, from, to string) error {
	src := s.blobClient(container, from)
	dst := s.blobClient(container, to)

	srcURL, err := src.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(time.Hour), nil)
	if err != nil {
		return fmt.Errorf("sign copy source: %w", err)
	}
	resp, err := dst.StartCopyFromURL(ctx, srcURL, nil)
	if err != nil {
		return notFound(err, container, from)
	}

	status := resp.CopyStatus
	for status != nil && *status == blob.CopyStatusTypePending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(copyPollInterval):
		}
		props, err := dst.GetProperties(ctx, nil)
		if err != nil {
			return fmt.Errorf("poll copy of %s: %w", to, err)
		}
		status = props.CopyStatus
	}
	if status != nil && *status != blob.CopyStatusTypeSuccess {
		return fmt.Errorf("copy %s to %s ended with status %s", from, to, *status)
	}

	if _, err := src.Delete(ctx, nil); err != nil {
		return notFound(err, container, from)
	}
	return nil
}

func (s *AzureBlobStore) UploadURL(_ context.Context, container, name string, ttl time.Duration) (string, error) {
	perms := sas.BlobPermissions{Create: true, Write: true}
	u, err := s.blobClient(container, name).GetSASURL(perms, time.Now().Add(ttl), nil)
	if err != nil {
		return "", fmt.Errorf("sign upload url: %w", err)
	}
	return u, nil
}

func (s *AzureBlobStore) ReadURL(_ context.Context, container, name string, ttl time.Duration) (string, error) {
	u, err := s.blobClient(container, name).GetSASURL(sas.BlobPermissions{Read: true}, time.Now().Add(ttl), nil)
	if err != nil {
		return "", fmt.Errorf("sign read url: %w", err)
	}
	return u, nil
}
