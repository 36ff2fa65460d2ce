package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxAssetSize bounds how much a remote source may return.
const MaxAssetSize = 256 << 20

var (
	ErrNoSource      = errors.New("no dictionary source configured")
	ErrNoS3Endpoint  = errors.New("s3 source requires an endpoint")
	ErrFetch         = errors.New("fetching dictionary asset")
	ErrAssetTooLarge = errors.New("dictionary asset exceeds the size limit")
)

// Source fetches the raw bytes of a dictionary asset. The name is used for
// logging and to detect the asset format from its extension.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// FileSource reads an asset from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource downloads an asset with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Name() string { return s.URL }

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, s.URL, resp.Status)
	}
	return readLimited(resp.Body)
}

// S3Options configures access to an S3 compatible object store.
type S3Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// S3Source reads an asset from an object store bucket.
type S3Source struct {
	client *minio.Client
	Bucket string
	Key    string
}

// NewS3Source creates a minio client for the given endpoint.
func NewS3Source(opts S3Options, bucket, key string) (*S3Source, error) {
	if opts.Endpoint == "" {
		return nil, ErrNoS3Endpoint
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client for %s: %w", opts.Endpoint, err)
	}
	return &S3Source{client: client, Bucket: bucket, Key: key}, nil
}

func (s *S3Source) Name() string { return "s3://" + s.Bucket + "/" + s.Key }

func (s *S3Source) Fetch(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.Bucket, s.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, s.Name(), err)
	}
	defer obj.Close()
	data, err := readLimited(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if len(data) > MaxAssetSize {
		return nil, ErrAssetTooLarge
	}
	return data, nil
}

// ParseSource maps a source location to a Source:
// http(s)://host/path, s3://bucket/key or a filesystem path.
func ParseSource(loc string, s3 S3Options) (Source, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, ErrNoSource
	}
	u, err := url.Parse(loc)
	if err != nil || len(u.Scheme) <= 1 {
		return FileSource{Path: loc}, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return HTTPSource{URL: loc}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 source %q: want s3://bucket/key", loc)
		}
		return NewS3Source(s3, u.Host, key)
	case "file":
		return FileSource{Path: u.Path}, nil
	}
	return FileSource{Path: loc}, nil
}
