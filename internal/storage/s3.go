// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage publishes the generated Tabler tree to an S3-compatible
// bucket so it can be served from a CDN. It wraps the AWS SDK v2 and is
// configured for path-style access (required by CEPH/Hetzner).
package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// cacheControl is sent with every published object. Bundle URLs carry a
// content fingerprint, so a day of caching is safe.
const cacheControl = "public, max-age=86400"

// objectAPI is the subset of *s3.Client used by the publisher.
type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads files to one public bucket.
type Client struct {
	s3        objectAPI
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for published files
}

// PublishStats counts the outcome of a Publish run.
type PublishStats struct {
	Uploaded int
	Skipped  int
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// run without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Publish uploads every file below dir to the bucket under keyPrefix,
// keeping the relative layout. Objects whose ETag already matches the
// file's MD5 are skipped. ".gz" files are stored with the media type of
// the uncompressed file and Content-Encoding: gzip.
func (c *Client) Publish(ctx context.Context, dir, keyPrefix string) (PublishStats, error) {
	var stats PublishStats

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(keyPrefix, filepath.ToSlash(rel))

		uploaded, err := c.publishFile(ctx, p, key)
		if err != nil {
			return err
		}
		if uploaded {
			stats.Uploaded++
		} else {
			stats.Skipped++
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("publish %s: %w", dir, err)
	}

	slog.Info("assets published",
		"bucket", c.bucket,
		"prefix", keyPrefix,
		"uploaded", stats.Uploaded,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// publishFile uploads one file unless the stored object is identical.
func (c *Client) publishFile(ctx context.Context, file, key string) (bool, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return false, err
	}
	sum := md5.Sum(data)
	etag := hex.EncodeToString(sum[:])

	head, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		if strings.Trim(aws.ToString(head.ETag), `"`) == etag {
			slog.Debug("object unchanged", "key", key)
			return false, nil
		}
	case !isNotFound(err):
		return false, fmt.Errorf("s3 head %s/%s: %w", c.bucket, key, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String(cacheControl),
		ACL:           s3types.ObjectCannedACLPublicRead,
	}
	typeName := key
	if strings.HasSuffix(key, ".gz") {
		typeName = strings.TrimSuffix(key, ".gz")
		input.ContentEncoding = aws.String("gzip")
	}
	if ct := mime.TypeByExtension(path.Ext(typeName)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return false, fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	slog.Debug("object uploaded", "key", key, "bytes", len(data))
	return true, nil
}

// isNotFound reports whether err is the 404 answer of HeadObject.
func isNotFound(err error) bool {
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}

// FileURL returns the public URL for a published key.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *Client) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// Bucket returns the name of the target bucket.
func (c *Client) Bucket() string {
	return c.bucket
}
