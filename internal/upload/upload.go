// Package upload copies finished artifacts to S3.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
	"golang.org/x/sync/errgroup"
)

const maxConcurrency = 10

// S3API defines the S3 operations used by Uploader.
type S3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Uploader puts local files under an S3 prefix.
type Uploader struct {
	s3 S3API
}

// New creates an Uploader from an AWS session.
func New(sess *session.Session) *Uploader {
	return &Uploader{s3: s3.New(sess)}
}

// NewWithDeps creates an Uploader with an explicit S3 client (for testing).
func NewWithDeps(client S3API) *Uploader {
	return &Uploader{s3: client}
}

// Dir uploads every regular file below dir to url (s3://bucket/prefix), keeping
// relative paths. It returns the uploaded object locations.
func (u *Uploader) Dir(ctx context.Context, dir, url string) ([]string, error) {
	dest, err := types.ParseS3URL(url)
	if err != nil {
		return nil, fmt.Errorf("parse upload URL: %w", err)
	}

	var files []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	keys := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, file := range files {
		file := file
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return nil, err
		}
		obj := types.S3ObjectInfo{Bucket: dest.Bucket, Key: path.Join(dest.Key, filepath.ToSlash(rel))}
		keys[i] = obj.String()

		g.Go(func() error {
			return u.putFile(ctx, file, obj)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("artifacts uploaded", "destination", url, "files", len(files))
	return keys, nil
}

func (u *Uploader) putFile(ctx context.Context, file string, obj types.S3ObjectInfo) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(file))); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.s3.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", obj, err)
	}
	return nil
}
