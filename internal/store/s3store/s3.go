// Package s3store implements an AWS S3 storage backend.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/discochess/marlinflow/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// api is the subset of the S3 client the store uses.
type api interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store is an AWS S3 storage backend.
type Store struct {
	client api
	bucket string
	prefix string
}

type settings struct {
	prefix   string
	region   string
	endpoint string
}

// Option configures a Store.
type Option func(*settings)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = strings.Trim(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *settings) { s.region = region }
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *settings) { s.endpoint = endpoint }
}

// New creates a new S3 store using the AWS default credential chain.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	var st settings
	for _, opt := range opts {
		opt(&st)
	}

	var loadOpts []func(*config.LoadOptions) error
	if st.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(st.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if st.endpoint != "" {
			o.BaseEndpoint = aws.String(st.endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: bucketName, prefix: st.prefix}, nil
}

// Open returns a reader for the named object.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// Check for cancellation before starting.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return result.Body, nil
}

// Create spools the object to a local temp file; Commit uploads it with a
// single PutObject so a failed run never leaves a partial object.
func (s *Store) Create(ctx context.Context, name string) (store.Object, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	spool, err := os.CreateTemp("", "marlinflow-s3-*")
	if err != nil {
		return nil, fmt.Errorf("creating spool file: %w", err)
	}

	return &object{ctx: ctx, store: s, key: s.key(name), spool: spool}, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// key returns the full object key for a name.
func (s *Store) key(name string) string {
	return s.prefix + strings.TrimPrefix(name, "/")
}

type object struct {
	ctx   context.Context
	store *Store
	key   string
	spool *os.File
	size  int64
	done  bool
}

func (o *object) Write(p []byte) (int, error) {
	if o.done {
		return 0, store.ErrFinished
	}
	n, err := o.spool.Write(p)
	o.size += int64(n)
	return n, err
}

func (o *object) Commit() error {
	if o.done {
		return store.ErrFinished
	}
	o.done = true
	defer o.cleanup()

	if _, err := o.spool.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding spool file: %w", err)
	}

	_, err := o.store.client.PutObject(o.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(o.store.bucket),
		Key:           aws.String(o.key),
		Body:          o.spool,
		ContentLength: aws.Int64(o.size),
		ContentType:   aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("uploading object: %w", err)
	}
	return nil
}

func (o *object) Abort() error {
	if o.done {
		return nil
	}
	o.done = true
	o.cleanup()
	return nil
}

func (o *object) cleanup() {
	o.spool.Close()
	os.Remove(o.spool.Name())
}
