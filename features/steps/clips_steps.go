//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geoclip-service/cmd"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"

	"github.com/cucumber/godog"
)

type clipsContext struct {
	dir    string
	output *bytes.Buffer
	err    error
}

var SharedClipsContext = &clipsContext{}

func InitializeClipsScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "clips-test-*")
		if err != nil {
			return c, err
		}
		SharedClipsContext = &clipsContext{dir: dir, output: &bytes.Buffer{}}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedClipsContext.dir != "" {
			os.RemoveAll(SharedClipsContext.dir)
		}
		SharedClipsContext = &clipsContext{}
		return c, nil
	})

	ctx.Step(`^the trimmed directory contains "([^"]*)"$`, theTrimmedDirectoryContains)
	ctx.Step(`^I count the clips$`, iCountTheClips)
	ctx.Step(`^I purge the clips$`, iPurgeTheClips)
	ctx.Step(`^I purge the clips and decline the confirmation$`, iPurgeTheClipsAndDeclineTheConfirmation)
	ctx.Step(`^the clips output should contain "([^"]*)"$`, theClipsOutputShouldContain)
	ctx.Step(`^the trimmed directory should be empty$`, theTrimmedDirectoryShouldBeEmpty)
	ctx.Step(`^the trimmed directory should still contain (\d+) files$`, theTrimmedDirectoryShouldStillContainFiles)
}

func theTrimmedDirectoryContains(list string) error {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if err := os.WriteFile(filepath.Join(SharedClipsContext.dir, name), []byte("clip"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func iCountTheClips() error {
	tc := SharedClipsContext
	store, err := filesystem.NewClipStore(tc.dir)
	if err != nil {
		return err
	}
	tc.err = cmd.RunClipsCountWithDependencies(context.Background(), store, logging.Discard(), tc.output)
	return nil
}

func runPurge(prompter cmd.Prompter, force bool) error {
	tc := SharedClipsContext
	store, err := filesystem.NewClipStore(tc.dir)
	if err != nil {
		return err
	}
	tc.err = cmd.RunClipsPurgeWithDependencies(context.Background(), store, logging.Discard(), prompter, force, tc.output)
	return nil
}

func iPurgeTheClips() error {
	return runPurge(NewMockPrompter(nil, nil), true)
}

func iPurgeTheClipsAndDeclineTheConfirmation() error {
	return runPurge(NewMockPrompter(nil, []bool{false}), false)
}

func theClipsOutputShouldContain(fragment string) error {
	tc := SharedClipsContext
	if tc.err != nil {
		return fmt.Errorf("command failed: %v", tc.err)
	}
	if !strings.Contains(tc.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", fragment, tc.output.String())
	}
	return nil
}

func theTrimmedDirectoryShouldBeEmpty() error {
	return theTrimmedDirectoryShouldStillContainFiles(0)
}

func theTrimmedDirectoryShouldStillContainFiles(n int) error {
	entries, err := os.ReadDir(SharedClipsContext.dir)
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("expected %d files, found %d", n, len(entries))
	}
	return nil
}
