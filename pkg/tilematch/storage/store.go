// Package storage opens the reference file and publishes exports across
// local disk, S3 and MinIO.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations return an error that satisfies `errors.Is(err, ErrNotFound)`.
var ErrNotFound = os.ErrNotExist

// xlsxContentType is the media type of published workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store reads reference objects and receives published files.
type Store interface {
	// Open opens an object for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Put uploads the local file at localPath as name.
	Put(ctx context.Context, name, localPath string) error
}

// Config holds connection settings for remote stores.
type Config struct {
	S3    S3Config    `yaml:"s3"`
	Minio MinioConfig `yaml:"minio"`
}

// S3Config configures the AWS S3 client. Credentials come from the default
// AWS chain (environment, shared config, instance role).
type S3Config struct {
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// MinioConfig configures a MinIO or other S3-compatible endpoint.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Scheme identifies a store type.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// Location is a parsed storage URI.
type Location struct {
	Scheme Scheme
	// Bucket is empty for local files.
	Bucket string
	// Key is the object key, or the filesystem path for local files.
	Key string
}

func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return l.Key
	}
	return string(l.Scheme) + "://" + path.Join(l.Bucket, l.Key)
}

// ParseLocation parses s3://bucket/key, minio://bucket/key, file:///path
// or a plain filesystem path.
func ParseLocation(uri string) (Location, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"), strings.HasPrefix(uri, "minio://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("invalid storage uri %q: %w", uri, err)
		}
		if u.Host == "" {
			return Location{}, fmt.Errorf("storage uri %q has no bucket", uri)
		}
		return Location{
			Scheme: Scheme(u.Scheme),
			Bucket: u.Host,
			Key:    strings.TrimPrefix(u.Path, "/"),
		}, nil
	case strings.HasPrefix(uri, "file://"):
		return Location{Scheme: SchemeFile, Key: strings.TrimPrefix(uri, "file://")}, nil
	case strings.Contains(uri, "://"):
		return Location{}, fmt.Errorf("unsupported storage scheme in %q", uri)
	default:
		return Location{Scheme: SchemeFile, Key: uri}, nil
	}
}

// NewStore returns the store serving loc's scheme and bucket.
// Local stores are rooted at root.
func NewStore(ctx context.Context, loc Location, root string, cfg Config) (Store, error) {
	switch loc.Scheme {
	case SchemeFile:
		return NewLocalStore(root), nil
	case SchemeS3:
		return NewS3Store(ctx, loc.Bucket, cfg.S3)
	case SchemeMinio:
		return NewMinioStore(loc.Bucket, cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", loc.Scheme)
	}
}

// Open opens the object at uri for reading.
func Open(ctx context.Context, uri string, cfg Config) (io.ReadCloser, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}
	if loc.Key == "" {
		return nil, fmt.Errorf("storage uri %q has no object key", uri)
	}
	store, err := NewStore(ctx, loc, "", cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, loc.Key)
}

// Publish copies the local file into the directory or key prefix at
// destURI, keeping its base name. It returns the destination location.
func Publish(ctx context.Context, localPath, destURI string, cfg Config) (string, error) {
	loc, err := ParseLocation(destURI)
	if err != nil {
		return "", err
	}

	base := filepath.Base(localPath)
	root, name := "", path.Join(loc.Key, base)
	if loc.Scheme == SchemeFile {
		root, name = loc.Key, base
	}

	store, err := NewStore(ctx, loc, root, cfg)
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, name, localPath); err != nil {
		return "", err
	}

	if loc.Scheme == SchemeFile {
		return filepath.Join(root, name), nil
	}
	return Location{Scheme: loc.Scheme, Bucket: loc.Bucket, Key: name}.String(), nil
}
