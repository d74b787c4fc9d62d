// Package minio implements the key vault on an S3-compatible object store,
// one object per username. It is an alternative to the file backend for
// deployments where key files must not live on the service host.
package minio

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/kpisystems/credvault/internal/crypto"
	"github.com/kpisystems/credvault/internal/model"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return w.c.GetObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

var _ model.KeyVault = (*Vault)(nil)

// Vault stores one key object per username. Object contents use the same
// encoding as the file backend so either can read what the other wrote
// when pointed at the same data.
type Vault struct {
	api       minioAPI
	bucket    string
	keyPrefix string
}

// NewVault creates a Vault using a real *minio.Client instance.
func NewVault(ctx context.Context, client *minio.Client, bucket, keyPrefix string) (*Vault, error) {
	return NewVaultWithAPI(ctx, minioClientWrapper{c: client}, bucket, keyPrefix)
}

// NewVaultWithAPI allows injecting a mockable API (used in tests).
func NewVaultWithAPI(ctx context.Context, api minioAPI, bucket, keyPrefix string) (*Vault, error) {
	v := &Vault{
		api:       api,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}

	if err := v.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return v, nil
}

func (v *Vault) ensureBucketExists(ctx context.Context) error {
	exists, err := v.api.BucketExists(ctx, v.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := v.api.MakeBucket(ctx, v.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Store uploads the key for username, replacing any previous object.
func (v *Vault) Store(ctx context.Context, username string, key []byte) error {
	encoded := []byte(base64.StdEncoding.EncodeToString(key))
	_, err := v.api.PutObject(ctx, v.bucket, v.objectName(username), bytes.NewReader(encoded), int64(len(encoded)), minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload key object: %w", err)
	}
	return nil
}

// Load downloads the key for username. It returns ErrNotFound when no
// object exists and ErrDecode when the object contents are not a valid key.
func (v *Vault) Load(ctx context.Context, username string) ([]byte, error) {
	obj, err := v.api.GetObject(ctx, v.bucket, v.objectName(username), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get key object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read key object: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrDecode, err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", model.ErrDecode, len(key), crypto.KeySize)
	}

	return key, nil
}

// Remove deletes the key object for username. A missing object is
// reported as (false, nil), not as an error.
func (v *Vault) Remove(ctx context.Context, username string) (bool, error) {
	_, err := v.api.StatObject(ctx, v.bucket, v.objectName(username), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat key object: %w", err)
	}

	if err := v.api.RemoveObject(ctx, v.bucket, v.objectName(username), minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to delete key object: %w", err)
	}
	return true, nil
}

func (v *Vault) objectName(username string) string {
	return v.keyPrefix + username
}
