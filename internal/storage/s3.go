package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/osint/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	reportPrefix      = "reports/"
	reportExtension   = ".jsonld"
	reportContentType = "application/ld+json"
)

// ErrNoBucket is returned when the archive is used without AWS_BUCKET.
var ErrNoBucket = errors.New("no report archive bucket configured")

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithBaseEndpoint(endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// Archive keeps a copy of every report document in a bucket, one object per
// run under reports/<run id>.jsonld.
type Archive struct {
	client objectAPI
	bucket string
}

// NewArchive creates an archive on bucket.
func NewArchive(client objectAPI, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// ReportKey is the object key of a run's report document.
func ReportKey(runID string) string {
	return reportPrefix + runID + reportExtension
}

func (a *Archive) check() error {
	if a == nil || a.client == nil || a.bucket == "" {
		return ErrNoBucket
	}
	return nil
}

// PutReport uploads a report document and returns its key.
func (a *Archive) PutReport(ctx context.Context, runID string, document []byte) (string, error) {
	if err := a.check(); err != nil {
		return "", err
	}
	key := ReportKey(runID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document),
		ContentType: aws.String(reportContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %w", err)
	}

	return key, nil
}

// GetReport downloads the report document of a run.
func (a *Archive) GetReport(ctx context.Context, runID string) ([]byte, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(ReportKey(runID)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get report from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read report contents: %w", err)
	}
	return buf.Bytes(), nil
}

// DeleteReport removes the archived document of a run.
func (a *Archive) DeleteReport(ctx context.Context, runID string) error {
	if err := a.check(); err != nil {
		return err
	}
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(ReportKey(runID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete report from S3: %w", err)
	}

	return nil
}

// ListReports returns the run ids of all archived reports.
func (a *Archive) ListReports(ctx context.Context) ([]string, error) {
	if err := a.check(); err != nil {
		return nil, err
	}

	var ids []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(reportPrefix),
	}

	for {
		listOutput, err := a.client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", err)
		}

		for _, obj := range listOutput.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, reportExtension) {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(*obj.Key, reportPrefix), reportExtension)
			ids = append(ids, id)
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return ids, nil
}

// GenerateDownloadLink presigns a short-lived link to a run's report using
// AWS_PUBLIC_ENDPOINT as host.
func GenerateDownloadLink(ctx context.Context, baseClient *s3.Client, bucket string, runID string) (string, error) {
	publicEndpoint := util.GetEnv("AWS_PUBLIC_ENDPOINT")

	publicURL, err := url.Parse(publicEndpoint)
	if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
		return "", fmt.Errorf("invalid AWS_PUBLIC_ENDPOINT: %s", publicEndpoint)
	}
	prefix := strings.TrimSuffix(publicURL.Path, "/")
	publicBaseEndpoint := fmt.Sprintf("%s://%s", publicURL.Scheme, publicURL.Host)

	// The signature must match the Host header clients send to the public endpoint.
	presignClientS3 := s3.NewFromConfig(
		aws.Config{
			Region:      baseClient.Options().Region,
			Credentials: baseClient.Options().Credentials,
			HTTPClient:  baseClient.Options().HTTPClient,
		},
		func(o *s3.Options) {
			o.BaseEndpoint = aws.String(publicBaseEndpoint)
			o.UsePathStyle = true
		},
	)

	out, err := s3.NewPresignClient(presignClientS3).PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(ReportKey(runID)),
		},
		s3.WithPresignExpires(15*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}

	if prefix != "" {
		signedURL, parseErr := url.Parse(out.URL)
		if parseErr != nil {
			return "", fmt.Errorf("failed to parse presigned url: %w", parseErr)
		}
		signedURL.Path = prefix + signedURL.Path
		return signedURL.String(), nil
	}

	return out.URL, nil
}
