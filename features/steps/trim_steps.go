//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"geoclip-service/application/trim"
	"geoclip-service/cmd"
	"geoclip-service/domain/source"
	"geoclip-service/domain/video"
	"geoclip-service/infrastructure/coordlog"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"

	"github.com/cucumber/godog"
)

// mockExtractor records calls to Extract and writes a placeholder clip
type mockExtractor struct {
	calls     []extractCall
	failError error
}

type extractCall struct {
	req        *video.ClipRequest
	outputPath string
}

func (m *mockExtractor) Extract(ctx context.Context, req *video.ClipRequest, outputPath string) error {
	m.calls = append(m.calls, extractCall{req: req, outputPath: outputPath})
	if m.failError != nil {
		return m.failError
	}
	return os.WriteFile(outputPath, []byte("clip"), 0644)
}

// trimContext holds test state for trim scenarios
type trimContext struct {
	tempDir   string
	sources   []source.Source
	extractor *mockExtractor
	output    *bytes.Buffer
	err       error
}

// SharedTrimContext is reset before each scenario via Before hook
var SharedTrimContext *trimContext

func InitializeTrimScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "trim-test-*")
		if err != nil {
			return c, err
		}
		SharedTrimContext = &trimContext{
			tempDir:   tempDir,
			extractor: &mockExtractor{},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedTrimContext != nil && SharedTrimContext.tempDir != "" {
			os.RemoveAll(SharedTrimContext.tempDir)
		}
		SharedTrimContext = nil
		return c, nil
	})

	ctx.Step(`^source "([^"]*)" has a video and the coordinate log:$`, sourceHasAVideoAndTheCoordinateLog)
	ctx.Step(`^source "([^"]*)" has a coordinate log but no video$`, sourceHasACoordinateLogButNoVideo)
	ctx.Step(`^ffmpeg fails with "([^"]*)"$`, ffmpegFailsWith)
	ctx.Step(`^ffmpeg times out$`, ffmpegTimesOut)
	ctx.Step(`^I trim source "([^"]*)" from \(([-\d.]+), ([-\d.]+)\) to \(([-\d.]+), ([-\d.]+)\)$`, iTrimSourceFromTo)
	ctx.Step(`^a clip should be created for seconds ([\d.]+) to ([\d.]+)$`, aClipShouldBeCreatedForSecondsTo)
	ctx.Step(`^the trim should be rejected with "([^"]*)"$`, theTrimShouldBeRejectedWith)
	ctx.Step(`^the trim should fail with "([^"]*)"$`, theTrimShouldFailWith)
	ctx.Step(`^the trim should fail with a server error$`, theTrimShouldFailWithAServerError)
	ctx.Step(`^ffmpeg should not have been called$`, ffmpegShouldNotHaveBeenCalled)
}

func sourceHasAVideoAndTheCoordinateLog(id string, log *godog.DocString) error {
	tc := SharedTrimContext
	videoPath := filepath.Join(tc.tempDir, id+".mp4")
	logPath := filepath.Join(tc.tempDir, id+".csv")

	if err := os.WriteFile(videoPath, []byte("source video"), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(logPath, []byte(log.Content+"\n"), 0644); err != nil {
		return err
	}

	tc.sources = append(tc.sources, source.Source{ID: id, VideoPath: videoPath, CoordinatesPath: logPath})
	return nil
}

func sourceHasACoordinateLogButNoVideo(id string) error {
	tc := SharedTrimContext
	logPath := filepath.Join(tc.tempDir, id+".csv")
	if err := os.WriteFile(logPath, []byte("lat,lon,timestamp_sec\n1,1,1\n2,2,2\n"), 0644); err != nil {
		return err
	}
	tc.sources = append(tc.sources, source.Source{
		ID:              id,
		VideoPath:       filepath.Join(tc.tempDir, "missing.mp4"),
		CoordinatesPath: logPath,
	})
	return nil
}

func ffmpegFailsWith(diagnostic string) error {
	SharedTrimContext.extractor.failError = &video.ProcessError{ExitCode: 1, Diagnostic: diagnostic}
	return nil
}

func ffmpegTimesOut() error {
	SharedTrimContext.extractor.failError = video.ErrExtractTimeout
	return nil
}

func iTrimSourceFromTo(id, startLat, startLon, endLat, endLon string) error {
	tc := SharedTrimContext

	catalog, err := source.NewCatalog(tc.sources...)
	if err != nil {
		return err
	}
	store, err := filesystem.NewClipStore(filepath.Join(tc.tempDir, "trimmed"))
	if err != nil {
		return err
	}

	input := trim.Input{Source: id}
	for dst, raw := range map[*float64]string{
		&input.StartLat: startLat, &input.StartLon: startLon,
		&input.EndLat: endLat, &input.EndLon: endLon,
	} {
		if *dst, err = strconv.ParseFloat(raw, 64); err != nil {
			return err
		}
	}

	tc.err = cmd.RunTrimWithDependencies(context.Background(), cmd.TrimDependencies{
		Catalog:     catalog,
		LogReader:   coordlog.NewReader(),
		Extractor:   tc.extractor,
		FileChecker: filesystem.NewChecker(),
		Store:       store,
		Logger:      logging.Discard(),
	}, input, tc.output)
	return nil
}

func aClipShouldBeCreatedForSecondsTo(start, end float64) error {
	tc := SharedTrimContext
	if tc.err != nil {
		return fmt.Errorf("trim failed: %v", tc.err)
	}
	if len(tc.extractor.calls) != 1 {
		return fmt.Errorf("expected 1 ffmpeg call, got %d", len(tc.extractor.calls))
	}

	call := tc.extractor.calls[0]
	if call.req.Interval.StartSec != start || call.req.Interval.EndSec != end {
		return fmt.Errorf("expected interval %v-%v, got %s", start, end, call.req.Interval)
	}
	if _, err := os.Stat(call.outputPath); err != nil {
		return fmt.Errorf("clip not written: %v", err)
	}
	if !strings.Contains(tc.output.String(), "Successfully created: "+call.outputPath) {
		return fmt.Errorf("unexpected output:\n%s", tc.output.String())
	}
	return nil
}

func theTrimShouldBeRejectedWith(message string) error {
	var clientErr *trim.ClientInputError
	if !errors.As(SharedTrimContext.err, &clientErr) {
		return fmt.Errorf("expected a client input error, got %v", SharedTrimContext.err)
	}
	if clientErr.Message != message {
		return fmt.Errorf("expected %q, got %q", message, clientErr.Message)
	}
	return nil
}

func theTrimShouldFailWith(message string) error {
	var procErr *trim.ProcessingError
	if !errors.As(SharedTrimContext.err, &procErr) {
		return fmt.Errorf("expected a processing error, got %v", SharedTrimContext.err)
	}
	if procErr.Message != message {
		return fmt.Errorf("expected %q, got %q", message, procErr.Message)
	}
	return nil
}

func theTrimShouldFailWithAServerError() error {
	err := SharedTrimContext.err
	if err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	var clientErr *trim.ClientInputError
	if errors.As(err, &clientErr) {
		return fmt.Errorf("expected a server error, got client error %v", err)
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalled() error {
	if n := len(SharedTrimContext.extractor.calls); n != 0 {
		return fmt.Errorf("expected no ffmpeg calls, got %d", n)
	}
	return nil
}
