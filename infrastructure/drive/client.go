package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"geoclip-service/domain/storage"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// GetFile fetches file metadata
func (s *GoogleDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	return s.service.Files.Get(fileID).
		Fields(googleapi.Field(fields)).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// DownloadFile opens the file content for reading
func (s *GoogleDriveService) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := s.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Client implements storage.Downloader using Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// Credentials selects how the client authenticates. A service account
// credentials file takes precedence over an API key; an API key is enough
// for files shared with "anyone with the link".
type Credentials struct {
	CredentialsFile string
	APIKey          string
}

// NewClient creates a new Google Drive client
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, creds Credentials, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	// If no custom drive service was provided, create a real one
	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, creds)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, creds Credentials) (*GoogleDriveService, error) {
	var clientOpt option.ClientOption

	switch {
	case creds.CredentialsFile != "":
		b, err := os.ReadFile(creds.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}

		config, err := google.JWTConfigFromJSON(b, drive.DriveReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse credentials: %w", err)
		}
		clientOpt = option.WithHTTPClient(config.Client(ctx))

	case creds.APIKey != "":
		clientOpt = option.WithAPIKey(creds.APIKey)

	default:
		return nil, fmt.Errorf("google credentials_file or api_key is required to download sources")
	}

	srv, err := drive.NewService(ctx, clientOpt)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Download implements storage.Downloader. The file is written to a
// temporary name next to destPath and renamed once complete, so an
// interrupted download never leaves a truncated video in place.
func (c *Client) Download(ctx context.Context, fileID string, destPath string) (int64, error) {
	meta, err := c.driveService.GetFile(ctx, fileID, "id, name, size, mimeType")
	if err != nil {
		return 0, fmt.Errorf("failed to get file metadata: %w", err)
	}

	body, err := c.driveService.DownloadFile(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", meta.Name, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("failed to write %s: %w", meta.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to write %s: %w", meta.Name, err)
	}

	if meta.Size > 0 && n != meta.Size {
		return n, fmt.Errorf("incomplete download of %s: got %d of %d bytes", meta.Name, n, meta.Size)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return n, fmt.Errorf("failed to move download into place: %w", err)
	}

	return n, nil
}

// Ensure Client implements storage.Downloader
var _ storage.Downloader = (*Client)(nil)
