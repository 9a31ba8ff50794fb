package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

// Load resolves a catalog from a URI. Supported forms: empty (built-in
// catalog), a local file path, or a gs://bucket/object URI. The returned
// catalog is always validated.
func Load(ctx context.Context, uri string) (*Catalog, error) {
	if uri == "" {
		c := Default()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("Load: built-in catalog invalid: %w", err)
		}
		return c, nil
	}
	if strings.HasPrefix(uri, "gs://") {
		return LoadGCS(ctx, uri)
	}
	return LoadFile(uri)
}

// LoadFile reads and validates a catalog from a local JSON file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: reading %s: %w", path, err)
	}
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: %s: %w", path, err)
	}
	return c, nil
}

// LoadGCS downloads and validates a catalog from a gs://bucket/object URI.
func LoadGCS(ctx context.Context, uri string) (*Catalog, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadGCS: creating storage client: %w", err)
	}
	defer client.Close()
	return LoadGCSWithClient(ctx, client, uri)
}

// LoadGCSWithClient is like LoadGCS but reuses an existing storage client.
func LoadGCSWithClient(ctx context.Context, client *storage.Client, uri string) (*Catalog, error) {
	bucket, object, err := splitGCSURI(uri)
	if err != nil {
		return nil, fmt.Errorf("LoadGCSWithClient: %w", err)
	}

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadGCSWithClient: opening gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("LoadGCSWithClient: reading gs://%s/%s: %w", bucket, object, err)
	}
	c, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("LoadGCSWithClient: gs://%s/%s: %w", bucket, object, err)
	}
	return c, nil
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI %q, expected gs://bucket/object", uri)
	}
	return parts[0], parts[1], nil
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return &c, nil
}
