// Package publish uploads a built site to an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Fatimaq07/Humans-WInning-AI/internal/config"
)

// ErrNoBucket is returned when publish.bucket is not configured.
var ErrNoBucket = errors.New("publish: bucket is required")

const uploadWorkers = 8

// Putter is the slice of the S3 API the publisher needs.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Publisher struct {
	client Putter
	bucket string
	prefix string
	log    *zap.Logger
}

// New builds a publisher on the default AWS credential chain. Static keys
// in cfg take precedence; Endpoint and PathStyle target MinIO and other
// S3-compatible stores. Extra load options are applied last.
func New(ctx context.Context, cfg config.PublishConfig, log *zap.Logger, opts ...func(*awsconfig.LoadOptions) error) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	loadOpts = append(loadOpts, opts...)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("publish: loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

// NewWithClient builds a publisher on an existing client.
func NewWithClient(client Putter, bucket, prefix string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

// Key maps a slash-separated path relative to the output directory to its
// object key.
func (p *Publisher) Key(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

// Publish uploads every regular file under dir and returns how many were
// sent. The first failed upload cancels the rest.
func (p *Publisher) Publish(ctx context.Context, dir string) (int, error) {
	var files []string
	err := filepath.WalkDir(dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, name)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("publish: walking %s: %w", dir, err)
	}

	p.log.Info("starting publish",
		zap.String("bucket", p.bucket),
		zap.String("prefix", p.prefix),
		zap.Int("files", len(files)),
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadWorkers)
	for _, name := range files {
		g.Go(func() error {
			rel, err := filepath.Rel(dir, name)
			if err != nil {
				return err
			}
			return p.upload(ctx, name, p.Key(filepath.ToSlash(rel)))
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	p.log.Info("publish completed", zap.Int("files", len(files)))
	return len(files), nil
}

func (p *Publisher) upload(ctx context.Context, name, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(ContentType(name)),
		CacheControl: aws.String(cacheControl(name)),
	})
	if err != nil {
		return fmt.Errorf("publish: uploading %s: %w", key, err)
	}
	p.log.Debug("uploaded", zap.String("key", key))
	return nil
}

// ContentType guesses the MIME type from the file extension.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// cacheControl makes browsers revalidate HTML on every visit.
func cacheControl(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".html") {
		return "no-cache"
	}
	return "public, max-age=3600"
}
