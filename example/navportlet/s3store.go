//go:build s3example
// +build s3example

// This file provides an S3-backed article store for the demo.
// It is excluded from regular builds because it requires AWS
// credentials at runtime. Build with:
//
//	go build -tags s3example ./example/navportlet
//
// Articles are JSON documents under the configured prefix, one object
// per article, keyed by slug (e.g. "articles/streaming-ssr.json").

package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// newStore builds the client from environment variables only. For real
// credential chains, load an aws.Config via the aws-sdk-go-v2/config
// module and use s3.NewFromConfig instead.
func newStore(latency time.Duration) Store {
	bucket := os.Getenv("NAVPORTLET_BUCKET")
	if bucket == "" {
		slog.Error("NAVPORTLET_BUCKET must be set for the s3example build")
		os.Exit(1)
	}
	prefix := os.Getenv("NAVPORTLET_PREFIX")
	if prefix == "" {
		prefix = "articles/"
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	return &s3Store{
		client: s3.New(s3.Options{Region: region}),
		bucket: bucket,
		prefix: prefix,
	}
}

// s3Store reads article JSON documents from an S3 bucket.
type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func (s *s3Store) Get(ctx context.Context, slug string) (Article, error) {
	key := s.prefix + slug + ".json"
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Article{}, notFoundError{slug: slug}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Article{}, err
	}
	var a Article
	if err := json.Unmarshal(data, &a); err != nil {
		return Article{}, err
	}
	return a, nil
}

func (s *s3Store) Recent(ctx context.Context, n int) ([]Article, error) {
	articles, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(articles) > n {
		articles = articles[:n]
	}
	return articles, nil
}

func (s *s3Store) ByAuthor(ctx context.Context, author string) ([]Article, error) {
	articles, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	var out []Article
	for _, a := range articles {
		if a.Author == author {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *s3Store) list(ctx context.Context) ([]Article, error) {
	var articles []Article
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, ".json") {
				continue
			}
			slug := strings.TrimSuffix(strings.TrimPrefix(*obj.Key, s.prefix), ".json")
			a, err := s.Get(ctx, slug)
			if err != nil {
				continue
			}
			articles = append(articles, a)
		}
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})
	return articles, nil
}
