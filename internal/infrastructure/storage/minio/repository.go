package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/pkg/errors"
)

const contentTypeJSON = "application/json"

// ObjectStore keeps one object per key in the client's bucket, under the
// configured object prefix.
type ObjectStore struct {
	client *Client
	prefix string
	logger logging.Logger
}

func NewObjectStore(client *Client, log logging.Logger) *ObjectStore {
	return &ObjectStore{client: client, prefix: client.config.ObjectPrefix, logger: log}
}

func (s *ObjectStore) Name() string { return "minio" }

func (s *ObjectStore) objectName(key string) string {
	return s.prefix + key + ".json"
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// Get downloads the object for key. A missing object yields an
// ErrCodeStorageKeyNotFound error.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.client.isClosed() {
		return nil, ErrClientClosed
	}
	name := s.objectName(key)
	obj, err := s.client.GetAPI().GetObject(ctx, s.client.Bucket(), name, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.New(errors.ErrCodeStorageKeyNotFound, "object not found").WithDetail(name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "download failed").WithDetail(name)
	}
	defer obj.Close()

	// The SDK defers the request until the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, errors.New(errors.ErrCodeStorageKeyNotFound, "object not found").WithDetail(name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "download failed").WithDetail(name)
	}
	return data, nil
}

// Put uploads data as the object for key, replacing any previous version.
func (s *ObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}
	name := s.objectName(key)
	opts := minio.PutObjectOptions{ContentType: contentTypeJSON}
	if _, err := s.client.GetAPI().PutObject(ctx, s.client.Bucket(), name, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "upload failed").WithDetail(name)
	}
	return nil
}

// Delete removes the object for key. Removing a missing object succeeds.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	name := s.objectName(key)
	if err := s.client.GetAPI().RemoveObject(ctx, s.client.Bucket(), name, minio.RemoveObjectOptions{}); err != nil && !isNoSuchKey(err) {
		return errors.Wrap(err, errors.ErrCodeStorage, "delete failed").WithDetail(name)
	}
	return nil
}

func (s *ObjectStore) Ping(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *ObjectStore) Close() error {
	return s.client.Close()
}

//Personal.AI order the ending
