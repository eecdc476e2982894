// Package source opens analyzer inputs from the local filesystem or S3.
package source

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

// S3API defines the S3 operations used by Opener.
type S3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// Opener opens input locations. S3 locations require an S3 client.
type Opener struct {
	s3 S3API
}

// New creates an Opener backed by the given session. A nil session disables S3.
func New(sess *session.Session) *Opener {
	if sess == nil {
		return &Opener{}
	}
	return &Opener{s3: s3.New(sess)}
}

// NewWithDeps creates an Opener with an explicit S3 client (for testing).
func NewWithDeps(client S3API) *Opener {
	return &Opener{s3: client}
}

// Open returns a reader for location, a local path or an s3://bucket/key URL.
// Locations ending in .gz are decompressed. A missing input yields an error
// wrapping types.ErrInputNotFound.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if types.IsS3URL(location) {
		rc, err = o.openS3(ctx, location)
	} else {
		rc, err = openFile(location)
	}
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(location, ".gz") {
		return rc, nil
	}

	gr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	return &gzipReadCloser{Reader: gr, underlying: rc}, nil
}

func openFile(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, fmt.Errorf("no input path given: %w", types.ErrInputNotFound)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, types.ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (o *Opener) openS3(ctx context.Context, location string) (io.ReadCloser, error) {
	if o.s3 == nil {
		return nil, fmt.Errorf("S3 input %s requires an AWS session", location)
	}

	obj, err := types.ParseS3URL(location)
	if err != nil {
		return nil, fmt.Errorf("parse S3 URL: %w", err)
	}

	slog.Debug("fetching object", "bucket", obj.Bucket, "key", obj.Key)

	resp, err := o.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", obj, types.ErrInputNotFound)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	return resp.Body, nil
}

func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
		return true
	}
	return false
}

type gzipReadCloser struct {
	*gzip.Reader
	underlying io.Closer
}

func (g *gzipReadCloser) Close() error {
	gerr := g.Reader.Close()
	if err := g.underlying.Close(); err != nil {
		return err
	}
	return gerr
}
