package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HubScheme prefixes dataset paths hosted on the HuggingFace hub:
	// hf://<owner>/<repo>/<file within the repo>
	HubScheme = "hf://"

	// DefaultHubURL is the HuggingFace endpoint
	DefaultHubURL = "https://huggingface.co"

	// Default cache directory (similar to Python's datasets library)
	DefaultCacheDir = "~/.cache/huggingface/datasets"
)

// DownloadConfig configures dataset downloading
type DownloadConfig struct {
	CacheDir      string
	ForceDownload bool
	Token         string // HuggingFace token for private datasets
	HubURL        string
	Client        *http.Client
}

// Downloader handles downloading and caching datasets from HuggingFace
type Downloader struct {
	config DownloadConfig
}

// NewDownloader creates a new dataset downloader
func NewDownloader(config DownloadConfig) *Downloader {
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}
	if config.HubURL == "" {
		config.HubURL = DefaultHubURL
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	// Expand ~ to home directory
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}

	return &Downloader{
		config: config,
	}
}

// IsHubPath reports whether path names a dataset file on the hub
func IsHubPath(path string) bool {
	return strings.HasPrefix(path, HubScheme)
}

// splitHubPath splits hf://owner/repo/file into "owner/repo" and "file"
func splitHubPath(path string) (string, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(path, HubScheme), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid hub path %q (expected %sowner/repo/file)", path, HubScheme)
	}
	return parts[0] + "/" + parts[1], parts[2], nil
}

// Resolve returns a local path for datasetPath, downloading hub files into the cache
func (d *Downloader) Resolve(ctx context.Context, datasetPath string) (string, error) {
	if !IsHubPath(datasetPath) {
		return datasetPath, nil
	}

	repo, filename, err := splitHubPath(datasetPath)
	if err != nil {
		return "", err
	}
	return d.DownloadDataset(ctx, repo, filename)
}

// DownloadDataset downloads one file of a hub dataset repository and
// returns the path to the cached copy
func (d *Downloader) DownloadDataset(ctx context.Context, repo, filename string) (string, error) {
	cachedPath := d.GetCachePath(repo, filename)
	if err := os.MkdirAll(filepath.Dir(cachedPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Check if file already exists in cache
	if !d.config.ForceDownload {
		if _, err := os.Stat(cachedPath); err == nil {
			slog.Info("Using cached dataset", "path", cachedPath)
			return cachedPath, nil
		}
	}

	slog.Info("Downloading dataset from HuggingFace", "repo", repo, "file", filename)

	url := fmt.Sprintf("%s/datasets/%s/resolve/main/%s", strings.TrimRight(d.config.HubURL, "/"), repo, filename)
	if err := d.downloadFile(ctx, url, cachedPath); err != nil {
		return "", fmt.Errorf("failed to download dataset: %w", err)
	}

	slog.Info("Dataset downloaded successfully", "path", cachedPath)
	return cachedPath, nil
}

// downloadFile streams url into destPath through a temporary file
func (d *Downloader) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Add HuggingFace token if provided
	if d.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.Token)
	}

	resp, err := d.config.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("download failed: %w", err)
	}

	slog.Debug("Download complete", "bytes", written, "expected", resp.ContentLength)

	// Move temp file to final location
	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// GetCachePath returns the path where a dataset file would be cached
func (d *Downloader) GetCachePath(repo, filename string) string {
	return filepath.Join(d.config.CacheDir, filepath.FromSlash(repo), filepath.FromSlash(filename))
}

// ClearCache removes the cached files of a repository
func (d *Downloader) ClearCache(repo string) error {
	cacheDir := filepath.Join(d.config.CacheDir, filepath.FromSlash(repo))
	slog.Info("Clearing cache", "path", cacheDir)
	return os.RemoveAll(cacheDir)
}
