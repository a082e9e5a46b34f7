//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geoclip-service/cmd"
	"geoclip-service/domain/source"
	"geoclip-service/infrastructure/drive"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"

	"github.com/cucumber/godog"
	drivev3 "google.golang.org/api/drive/v3"
)

// mockDriveService implements drive.DriveService for testing
type mockDriveService struct {
	files     map[string]string
	downloads []string
}

func (m *mockDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drivev3.File, error) {
	content, ok := m.files[fileID]
	if !ok {
		return nil, fmt.Errorf("googleapi: Error 404: File not found: %s", fileID)
	}
	return &drivev3.File{Id: fileID, Name: fileID + ".mp4", Size: int64(len(content))}, nil
}

func (m *mockDriveService) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	m.downloads = append(m.downloads, fileID)
	return io.NopCloser(strings.NewReader(m.files[fileID])), nil
}

type downloadContext struct {
	tempDir string
	sources []source.Source
	service *mockDriveService
	output  *bytes.Buffer
	err     error
}

var SharedDownloadContext = &downloadContext{}

func InitializeDownloadScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "download-test-*")
		if err != nil {
			return c, err
		}
		SharedDownloadContext = &downloadContext{
			tempDir: tempDir,
			service: &mockDriveService{files: make(map[string]string)},
			output:  &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedDownloadContext.tempDir != "" {
			os.RemoveAll(SharedDownloadContext.tempDir)
		}
		SharedDownloadContext = &downloadContext{}
		return c, nil
	})

	ctx.Step(`^Google Drive holds file "([^"]*)" with content "([^"]*)"$`, googleDriveHoldsFileWithContent)
	ctx.Step(`^source "([^"]*)" is configured with drive file "([^"]*)"$`, sourceIsConfiguredWithDriveFile)
	ctx.Step(`^source "([^"]*)" is configured without a drive file$`, sourceIsConfiguredWithoutADriveFile)
	ctx.Step(`^the video for source "([^"]*)" already exists locally$`, theVideoForSourceAlreadyExistsLocally)
	ctx.Step(`^I run the download command$`, iRunTheDownloadCommand)
	ctx.Step(`^the video for source "([^"]*)" should contain "([^"]*)"$`, theVideoForSourceShouldContain)
	ctx.Step(`^drive file "([^"]*)" should not have been downloaded$`, driveFileShouldNotHaveBeenDownloaded)
	ctx.Step(`^the download should succeed$`, theDownloadShouldSucceed)
	ctx.Step(`^the download should fail with "([^"]*)"$`, theDownloadShouldFailWith)
}

func localVideoPath(id string) string {
	return filepath.Join(SharedDownloadContext.tempDir, "videos", id+".mp4")
}

func googleDriveHoldsFileWithContent(fileID, content string) error {
	SharedDownloadContext.service.files[fileID] = content
	return nil
}

func sourceIsConfiguredWithDriveFile(id, fileID string) error {
	tc := SharedDownloadContext
	tc.sources = append(tc.sources, source.Source{
		ID:              id,
		VideoPath:       localVideoPath(id),
		CoordinatesPath: id + ".csv",
		DriveFileID:     fileID,
	})
	return nil
}

func sourceIsConfiguredWithoutADriveFile(id string) error {
	return sourceIsConfiguredWithDriveFile(id, "")
}

func theVideoForSourceAlreadyExistsLocally(id string) error {
	path := localVideoPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("local copy"), 0644)
}

func iRunTheDownloadCommand() error {
	tc := SharedDownloadContext
	catalog, err := source.NewCatalog(tc.sources...)
	if err != nil {
		return err
	}
	client, err := drive.NewClient(context.Background(), drive.Credentials{}, drive.WithDriveService(tc.service))
	if err != nil {
		return err
	}
	tc.err = cmd.RunDownloadWithDependencies(context.Background(), catalog, filesystem.NewChecker(), client, logging.Discard(), tc.output)
	return nil
}

func theVideoForSourceShouldContain(id, content string) error {
	data, err := os.ReadFile(localVideoPath(id))
	if err != nil {
		return err
	}
	if string(data) != content {
		return fmt.Errorf("expected %q, got %q", content, data)
	}
	return nil
}

func driveFileShouldNotHaveBeenDownloaded(fileID string) error {
	for _, id := range SharedDownloadContext.service.downloads {
		if id == fileID {
			return fmt.Errorf("drive file %q was downloaded", fileID)
		}
	}
	return nil
}

func theDownloadShouldSucceed() error {
	if SharedDownloadContext.err != nil {
		return fmt.Errorf("download failed: %v", SharedDownloadContext.err)
	}
	return nil
}

func theDownloadShouldFailWith(fragment string) error {
	err := SharedDownloadContext.err
	if err == nil {
		return fmt.Errorf("expected an error containing %q, got none", fragment)
	}
	if !strings.Contains(err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %v", fragment, err)
	}
	return nil
}
