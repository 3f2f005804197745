package build

import (
	"bytes"
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// OutputStore persists built files. Paths are slash-separated and relative
// to the store's root.
type OutputStore interface {
	Put(ctx context.Context, name string, body []byte) error
}

// DiskStore writes build output under a local directory.
type DiskStore struct {
	root string
}

// NewDiskStore creates a DiskStore rooted at dir.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{root: dir}, nil
}

// Put writes one output file, creating parent directories as needed.
func (s *DiskStore) Put(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, body, 0644)
}

// s3PutAPI is the slice of the S3 client the store needs.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads build output to an S3 bucket for static hosting.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := build.NewS3Store(s3.NewFromConfig(cfg), "my-site", "")
type S3Store struct {
	client s3PutAPI
	bucket string
	prefix string
}

// NewS3Store creates an S3Store. prefix is prepended to every object key,
// e.g. "preview/".
func NewS3Store(client s3PutAPI, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads one output file.
func (s *S3Store) Put(ctx context.Context, name string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeFor(name)),
	})
	return err
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
