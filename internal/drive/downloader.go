package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DownloadOptions controls how extracts are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader wraps Service to pull raw extracts from a specific folder.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolderCSV downloads all non-trashed CSV and XLSX files from the
// given Drive folder into DownloadDir and returns local CSV paths.
//
//   - CSV files are downloaded directly.
//   - XLSX files are downloaded to a temporary .xlsx, then the first sheet
//     is converted to CSV in DownloadDir and the temporary .xlsx is removed.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListFiles(opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		switch ext {
		case ".csv":
			localPath := filepath.Join(opts.DownloadDir, f.Name)
			if err := d.downloadTo(f.ID, localPath); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
			}
			localPaths = append(localPaths, localPath)
		case ".xlsx":
			tmpPath := filepath.Join(opts.DownloadDir, f.Name)
			if err := d.downloadTo(f.ID, tmpPath); err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
			}

			csvName := strings.TrimSuffix(f.Name, ext) + ".csv"
			csvPath := filepath.Join(opts.DownloadDir, csvName)
			if err := convertXLSXToCSV(tmpPath, csvPath); err != nil {
				return nil, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
			}
			_ = os.Remove(tmpPath)
			localPaths = append(localPaths, csvPath)
		}
	}

	return localPaths, nil
}

func (d *Downloader) downloadTo(fileID, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	defer out.Close()
	return d.service.DownloadFile(fileID, out)
}
