// Package s3 implements the source store on an S3-compatible bucket prefix.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"leakloader/internal/source/core"
)

// Store implements core.Store over one bucket prefix. Artifact names map to
// object keys by joining the configured prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds explicit construction parameters. Credentials come from the
// SDK default chain (environment, shared config, instance role).
type Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string // optional custom endpoint (e.g. MinIO)
	PathStyle bool
}

// New creates an S3 source store from cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 source: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3 source: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverS3 }

func (s *Store) keyFor(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *Store) Open(ctx context.Context, name string) (core.Info, io.ReadCloser, error) {
	key := s.keyFor(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isMissing(err) {
			return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return core.Info{}, nil, err
	}
	return infoFrom(name, out.ContentLength, out.LastModified), out.Body, nil
}

func (s *Store) Stat(ctx context.Context, name string) (core.Info, error) {
	key := s.keyFor(name)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isMissing(err) {
			return core.Info{}, fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return core.Info{}, err
	}
	return infoFrom(name, out.ContentLength, out.LastModified), nil
}

func (s *Store) Put(ctx context.Context, name string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	key := s.keyFor(name)
	if !opts.Overwrite {
		if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err == nil {
			return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, name)
		}
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}); err != nil {
		return core.Info{}, err
	}
	return s.Stat(ctx, name)
}

func (s *Store) List(ctx context.Context) ([]core.Info, error) {
	listPrefix := s.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}
	var infos []core.Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &listPrefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), listPrefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			infos = append(infos, core.Info{Name: name, Size: size, LastModified: aws.ToTime(obj.LastModified)})
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// isMissing reports whether err is the SDK's not-found shape for Get/Head.
// HeadObject yields types.NotFound, GetObject types.NoSuchKey; bare 404
// responses from S3-compatible servers arrive as plain response errors.
func isMissing(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == 404
}

func infoFrom(name string, contentLength *int64, lastModified *time.Time) core.Info {
	var size int64
	if contentLength != nil {
		size = *contentLength
	}
	lm := time.Now().UTC()
	if lastModified != nil {
		lm = *lastModified
	}
	return core.Info{Name: name, Size: size, LastModified: lm}
}
