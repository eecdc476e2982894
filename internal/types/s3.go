package types

import (
	"fmt"
	"strings"
)

// S3ObjectInfo identifies an S3 object by bucket and key.
type S3ObjectInfo struct {
	Bucket string
	Key    string
}

// String returns the object as an s3:// URL.
func (o S3ObjectInfo) String() string {
	return "s3://" + o.Bucket + "/" + o.Key
}

// IsS3URL reports whether location refers to S3.
func IsS3URL(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// ParseS3URL splits an s3://bucket/key URL. The key may be empty or a prefix.
func ParseS3URL(url string) (S3ObjectInfo, error) {
	if !IsS3URL(url) {
		return S3ObjectInfo{}, fmt.Errorf("must start with s3://")
	}

	path := strings.TrimPrefix(url, "s3://")
	idx := strings.Index(path, "/")
	if idx == -1 {
		return S3ObjectInfo{}, fmt.Errorf("missing path separator")
	}
	if idx == 0 {
		return S3ObjectInfo{}, fmt.Errorf("missing bucket name")
	}

	return S3ObjectInfo{Bucket: path[:idx], Key: path[idx+1:]}, nil
}
