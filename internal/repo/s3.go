package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func init() {
	if err := RegisterFactory("s3", s3Factory{}); err != nil {
		panic(err)
	}
}

type s3Factory struct{}

// Create builds an S3Repo from a URL of the form
// s3://bucket/prefix?endpoint=HOST&region=REGION&ssl=true. Credentials come
// from S3_ACCESS_KEY / S3_SECRET_KEY in the environment.
func (s3Factory) Create(_ context.Context, u *url.URL) (Accessor, error) {
	return NewS3Repo(S3Config{
		Endpoint:  u.Query().Get("endpoint"),
		Region:    u.Query().Get("region"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    u.Host,
		Prefix:    strings.Trim(u.Path, "/"),
		UseSSL:    u.Query().Get("ssl") == "true",
	})
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3Repo serves a repository stored in an S3-compatible bucket, optionally
// under a key prefix.
type S3Repo struct {
	client   *minio.Client
	bucket   string
	prefix   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewS3Repo(cfg S3Config) (*S3Repo, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Repo{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		region: region,
	}, nil
}

func (s *S3Repo) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Repo) List(ctx context.Context, kind string) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, wrapErr("list", kind, err)
	}

	prefix := s.key(kind) + "/"
	names := make([]string, 0, 32)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, wrapErr("list", kind, obj.Err)
		}
		if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	sort.Strings(names)
	return names, nil
}

func (s *S3Repo) Read(ctx context.Context, path string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, wrapErr("read", path, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapErr("read", path, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, wrapErr("read", path, ErrNotFound)
		}
		return nil, wrapErr("read", path, err)
	}
	return data, nil
}

func (s *S3Repo) Write(ctx context.Context, path string, data []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return wrapErr("write", path, err)
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.client.PutObject(ctx, s.bucket, s.key(path), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return wrapErr("write", path, err)
}

func (s *S3Repo) Delete(ctx context.Context, path string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return wrapErr("delete", path, err)
	}
	err := s.client.RemoveObject(ctx, s.bucket, s.key(path), minio.RemoveObjectOptions{})
	return wrapErr("delete", path, err)
}

func (s *S3Repo) key(path string) string {
	normalized := strings.TrimLeft(strings.TrimSpace(path), "/")
	if s.prefix == "" {
		return normalized
	}
	return s.prefix + "/" + normalized
}
