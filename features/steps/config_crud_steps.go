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
	"geoclip-service/infrastructure/config"

	"github.com/cucumber/godog"
)

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigCrudContext = &configCrudContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if SharedConfigCrudContext.tempDir != "" {
			os.RemoveAll(SharedConfigCrudContext.tempDir)
		}
		SharedConfigCrudContext = &configCrudContext{}
		return c, nil
	})

	// Background
	ctx.Step(`^a config file exists with the default sources$`, aConfigFileExistsWithTheDefaultSources)

	ctx.Step(`^I run config add source with key "([^"]*)" video "([^"]*)" and coordinates "([^"]*)"$`, iRunConfigAddSource)
	ctx.Step(`^I run config update source "([^"]*)" with video "([^"]*)"$`, iRunConfigUpdateSourceWithVideo)
	ctx.Step(`^I run config remove source "([^"]*)"$`, iRunConfigRemoveSource)
	ctx.Step(`^I run config list sources$`, iRunConfigListSources)
	ctx.Step(`^the saved config should have source "([^"]*)" with video "([^"]*)"$`, theSavedConfigShouldHaveSourceWithVideo)
	ctx.Step(`^the saved config should not have source "([^"]*)"$`, theSavedConfigShouldNotHaveSource)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, theConfigOutputShouldContain)
}

func aConfigFileExistsWithTheDefaultSources() error {
	tc := SharedConfigCrudContext
	tc.config = config.Default()
	return config.Save(tc.config, tc.configPath)
}

func iRunConfigAddSource(key, videoPath, coordinates string) error {
	tc := SharedConfigCrudContext
	tc.err = cmd.RunConfigAddWithDependencies(tc.config, tc.configPath, "source", key, videoPath, coordinates, "", tc.output)
	return nil
}

func iRunConfigUpdateSourceWithVideo(key, videoPath string) error {
	tc := SharedConfigCrudContext
	tc.err = cmd.RunConfigUpdateWithDependencies(tc.config, tc.configPath, "source", key, videoPath, "", "", tc.output)
	return nil
}

func iRunConfigRemoveSource(key string) error {
	tc := SharedConfigCrudContext
	tc.err = cmd.RunConfigRemoveWithDependencies(tc.config, tc.configPath, "source", key, tc.output)
	return nil
}

func iRunConfigListSources() error {
	tc := SharedConfigCrudContext
	tc.err = cmd.RunConfigListWithDependencies(tc.config, tc.configPath, "sources", tc.output)
	return nil
}

func reloadCrudConfig() (*config.Config, error) {
	tc := SharedConfigCrudContext
	if tc.err != nil {
		return nil, fmt.Errorf("command failed: %v", tc.err)
	}
	return config.Load(tc.configPath)
}

func theSavedConfigShouldHaveSourceWithVideo(key, videoPath string) error {
	cfg, err := reloadCrudConfig()
	if err != nil {
		return err
	}
	sc, ok := cfg.Sources[key]
	if !ok {
		return fmt.Errorf("source %q not found in saved config", key)
	}
	if sc.Video != videoPath {
		return fmt.Errorf("expected video %q, got %q", videoPath, sc.Video)
	}
	return nil
}

func theSavedConfigShouldNotHaveSource(key string) error {
	cfg, err := reloadCrudConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Sources[key]; ok {
		return fmt.Errorf("source %q should have been removed", key)
	}
	return nil
}

func theConfigCommandShouldFailWith(fragment string) error {
	tc := SharedConfigCrudContext
	if tc.err == nil {
		return fmt.Errorf("expected an error containing %q, got none", fragment)
	}
	if !strings.Contains(tc.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %v", fragment, tc.err)
	}
	return nil
}

func theConfigOutputShouldContain(fragment string) error {
	tc := SharedConfigCrudContext
	if !strings.Contains(tc.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", fragment, tc.output.String())
	}
	return nil
}
