package artifact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/gcsblob" // GCS driver
	_ "gocloud.dev/blob/s3blob"  // S3 driver
)

// Open returns a reader over one artifact, local or remote.
// The caller owns the returned closer.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if isRemote(path) {
		return openRemote(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	return f, nil
}

// openRemote reads an artifact out of a bucket by URL.
func openRemote(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse artifact URL %s: %w", rawURL, err)
	}

	bucketURL := fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, fmt.Errorf("artifact URL %s has no object key", rawURL)
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}

	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
	}

	return &bucketReader{Reader: r, bucket: bucket}, nil
}

// bucketReader closes the bucket along with the object reader.
type bucketReader struct {
	*blob.Reader
	bucket *blob.Bucket
}

func (r *bucketReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.bucket.Close(); err == nil {
		err = cerr
	}
	return err
}
