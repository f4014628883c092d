package export

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/storage"
)

// Uploader mirrors exported artifacts to a Cloud Storage bucket. The
// bucket name travels with each call since it comes from the session's
// Settings; an empty bucket means no mirroring and is decided by the
// caller.
type Uploader struct {
	client *storage.Client
}

func NewUploader(ctx context.Context) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Uploader{client: client}, nil
}

func (u *Uploader) Close() {
	if u.client == nil {
		return
	}
	if err := u.client.Close(); err != nil {
		log.Printf("Error closing storage client: %v", err)
	}
}

// Upload writes data to bucket under objectName.
func (u *Uploader) Upload(ctx context.Context, bucket, objectName, contentType string, data []byte) error {
	w := u.client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object %s to bucket %s: %w", objectName, bucket, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s in bucket %s: %w", objectName, bucket, err)
	}
	return nil
}

// Mirror uploads both artifacts of a generated document under their base
// names. Mirroring is best-effort: a failed upload is logged by the
// caller, never fails document generation.
func (u *Uploader) Mirror(ctx context.Context, bucket, baseName, document string, ledgerJSON []byte) error {
	if err := u.Upload(ctx, bucket, baseName+".md", "text/markdown", []byte(document)); err != nil {
		return err
	}
	return u.Upload(ctx, bucket, baseName+".json", "application/json", ledgerJSON)
}
