package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/config"
)

type recordingStorage struct {
	keys []string
}

func (r *recordingStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	return nil, nil
}

func (r *recordingStorage) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (r *recordingStorage) UploadFile(ctx context.Context, key, srcPath string) error {
	r.keys = append(r.keys, key)
	return nil
}

func TestUploadDirPreservesLayout(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"data_analysis_blueprint.md",
		filepath.Join("2024-2025", "lot_summary.csv"),
		filepath.Join("2024-2025", "famus_report_2024-2025.xlsx"),
	}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := &recordingStorage{}
	n, err := UploadDir(context.Background(), store, dir, "reports")
	if err != nil {
		t.Fatalf("UploadDir: %v", err)
	}
	if n != len(files) {
		t.Fatalf("uploaded %d files, want %d", n, len(files))
	}

	sort.Strings(store.keys)
	want := []string{
		"reports/2024-2025/famus_report_2024-2025.xlsx",
		"reports/2024-2025/lot_summary.csv",
		"reports/data_analysis_blueprint.md",
	}
	for i, k := range want {
		if store.keys[i] != k {
			t.Errorf("key[%d] = %q, want %q", i, store.keys[i], k)
		}
	}
}

func configStorage(endpoint, accessKey, secretKey, bucket string) config.StorageConfig {
	return config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(configStorage("", "ak", "sk", "bucket"))
	if err == nil {
		t.Error("expected error for missing endpoint")
	}
	_, err = NewMinioClient(configStorage("localhost:9000", "", "", "bucket"))
	if err == nil {
		t.Error("expected error for missing credentials")
	}
	_, err = NewMinioClient(configStorage("localhost:9000", "ak", "sk", ""))
	if err == nil {
		t.Error("expected error for missing bucket")
	}
}
