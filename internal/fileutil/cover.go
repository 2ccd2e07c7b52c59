package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// covers wider than this get resized down before saving
const defaultMaxCoverWidth = 1000

// CoverDownloadOptions holds options for downloading a cover image.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// OutputDir is the directory where the cover will be saved
	OutputDir string
	// Source and ExternalID name the file: <source>_<id>.jpg
	Source     string
	ExternalID string
	// MaxWidth caps the stored width; zero means the default
	MaxWidth int
	// UpdateCovers forces re-downloading even if the cover exists
	UpdateCovers bool
}

// CoverDownloadResult holds the result of a cover download.
type CoverDownloadResult struct {
	Downloaded bool
	LocalPath  string
	Filename   string
}

// DownloadCover fetches a cover image, resizes it down to MaxWidth when
// wider and saves it as JPEG. An existing file short-circuits unless
// UpdateCovers is set; an empty URL is a silent no-op.
func DownloadCover(ctx context.Context, opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, nil
	}

	filename := SanitizeFilename(fmt.Sprintf("%s_%s.jpg", opts.Source, opts.ExternalID))
	localPath := filepath.Join(opts.OutputDir, filename)
	result := &CoverDownloadResult{LocalPath: localPath, Filename: filename}

	if FileExists(localPath) && !opts.UpdateCovers {
		slog.Debug("cover already exists, skipping download", "path", localPath)
		return result, nil
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxCoverWidth
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}
	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("downloaded cover", "path", localPath)
	result.Downloaded = true
	return result, nil
}
