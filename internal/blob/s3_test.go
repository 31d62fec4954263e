package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	pages   [][]types.Object
	listErr error

	objects map[string][]byte
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	idx := 0
	if params.ContinuationToken != nil {
		idx = int((*params.ContinuationToken)[0] - '0')
	}

	out := &s3.ListObjectsV2Output{Contents: f.pages[idx]}
	if idx+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(string(rune('0' + idx + 1)))
	}

	return out, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.objects[*params.Bucket+"/"+*params.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreList(t *testing.T) {
	client := &fakeS3{
		pages: [][]types.Object{
			{
				{Key: aws.String("data/a"), Size: aws.Int64(1)},
				{Key: aws.String("data/b"), Size: aws.Int64(2)},
			},
			{
				{Key: aws.String("data/c"), Size: aws.Int64(3)},
			},
		},
	}

	objects, err := NewS3Store(client).List(context.Background(), Location{Bucket: "bucket", Key: "data/"})
	require.NoError(t, err)

	assert.Equal(t, []Object{
		{Key: "data/a", Size: 1},
		{Key: "data/b", Size: 2},
		{Key: "data/c", Size: 3},
	}, objects)
}

func TestS3StoreListError(t *testing.T) {
	client := &fakeS3{listErr: errors.New("unreachable")}

	_, err := NewS3Store(client).List(context.Background(), Location{Bucket: "bucket"})
	assert.Error(t, err)
}

func TestS3StoreGetPut(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(client)

	loc := Location{Bucket: "bucket", Key: "conf/job.conf"}

	_, err := store.Get(context.Background(), loc)
	assert.Error(t, err)

	require.NoError(t, store.Put(context.Background(), loc, []byte("body")))

	b, err := store.Get(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "body", string(b))
}

func TestParseURI(t *testing.T) {
	testcases := []struct {
		desc    string
		uri     string
		want    Location
		wantErr bool
	}{
		{desc: "object", uri: "s3://bucket/conf/job.conf", want: Location{Bucket: "bucket", Key: "conf/job.conf"}},
		{desc: "bucket only", uri: "s3://bucket/", want: Location{Bucket: "bucket"}},
		{desc: "wrong scheme", uri: "gs://bucket/key", wantErr: true},
		{desc: "empty bucket", uri: "s3:///key", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := ParseURI(tc.uri)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.uri, got.String())
		})
	}
}
