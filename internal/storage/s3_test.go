package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"
)

type memObjects struct {
	objects     map[string][]byte
	contentType map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func (m *memObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*in.Key] = data
	m.contentType[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *memObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for _, key := range []string{"reports/a.jsonld", "reports/b.jsonld", "reports/notes.txt"} {
		if _, ok := m.objects[key]; ok {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestArchiveRoundTrip(t *testing.T) {
	objects := newMemObjects()
	a := NewArchive(objects, "reports-bucket")
	ctx := context.Background()

	key, err := a.PutReport(ctx, "a", []byte(`{"@type":"Report"}`))
	if err != nil {
		t.Fatalf("PutReport failed: %v", err)
	}
	if key != "reports/a.jsonld" || objects.contentType[key] != "application/ld+json" {
		t.Fatalf("unexpected key %q or content type %q", key, objects.contentType[key])
	}

	got, err := a.GetReport(ctx, "a")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if string(got) != `{"@type":"Report"}` {
		t.Fatalf("unexpected document %s", got)
	}

	objects.objects["reports/notes.txt"] = []byte("x")
	if _, err := a.PutReport(ctx, "b", []byte(`{}`)); err != nil {
		t.Fatalf("PutReport failed: %v", err)
	}
	ids, err := a.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if err := a.DeleteReport(ctx, "a"); err != nil {
		t.Fatalf("DeleteReport failed: %v", err)
	}
	if _, err := a.GetReport(ctx, "a"); err == nil {
		t.Fatalf("expected error for deleted report")
	}
}

func TestArchiveWithoutBucket(t *testing.T) {
	var a *Archive
	if _, err := a.PutReport(context.Background(), "a", nil); !errors.Is(err, ErrNoBucket) {
		t.Fatalf("expected ErrNoBucket, got %v", err)
	}
	if _, err := NewArchive(newMemObjects(), "").ListReports(context.Background()); !errors.Is(err, ErrNoBucket) {
		t.Fatalf("expected ErrNoBucket, got %v", err)
	}
}
