//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geoclip-service/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	loadErr    error
}

// SharedConfigContext is reset before each scenario via After hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext.tempDir = tempDir
		return c, nil
	})

	// Reset context after each scenario
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		for _, restore := range restoreEnv {
			restore()
		}
		restoreEnv = nil
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a configuration file with content:$`, aConfigurationFileWithContent)
	ctx.Step(`^no configuration file exists$`, noConfigurationFileExists)
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, theEnvironmentVariableIs)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^the trimmed directory should be "([^"]*)"$`, theTrimmedDirectoryShouldBe)
	ctx.Step(`^the listen address should be "([^"]*)"$`, theListenAddressShouldBe)
	ctx.Step(`^the extraction timeout should be "([^"]*)"$`, theExtractionTimeoutShouldBe)
	ctx.Step(`^source "([^"]*)" should use video "([^"]*)" and coordinates "([^"]*)"$`, sourceShouldUseVideoAndCoordinates)
	ctx.Step(`^loading should fail with an error containing "([^"]*)"$`, loadingShouldFailWithAnErrorContaining)
}

func aConfigurationFileWithContent(content *godog.DocString) error {
	tc := SharedConfigContext
	tc.configPath = filepath.Join(tc.tempDir, "config.yaml")
	return os.WriteFile(tc.configPath, []byte(content.Content), 0644)
}

func noConfigurationFileExists() error {
	tc := SharedConfigContext
	tc.configPath = filepath.Join(tc.tempDir, "missing.yaml")
	return nil
}

func theEnvironmentVariableIs(name, value string) error {
	prev, had := os.LookupEnv(name)
	if err := os.Setenv(name, value); err != nil {
		return err
	}
	restoreEnv = append(restoreEnv, func() {
		if had {
			os.Setenv(name, prev)
		} else {
			os.Unsetenv(name)
		}
	})
	return nil
}

// restoreEnv undoes environment changes made during a scenario
var restoreEnv []func()

func iLoadTheConfiguration() error {
	tc := SharedConfigContext
	tc.cfg, tc.loadErr = config.Load(tc.configPath)
	return nil
}

func loadedConfig() (*config.Config, error) {
	tc := SharedConfigContext
	if tc.loadErr != nil {
		return nil, fmt.Errorf("config failed to load: %v", tc.loadErr)
	}
	return tc.cfg, nil
}

func theTrimmedDirectoryShouldBe(expected string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.TrimmedDirectory != expected {
		return fmt.Errorf("expected trimmed directory %q, got %q", expected, cfg.Paths.TrimmedDirectory)
	}
	return nil
}

func theListenAddressShouldBe(expected string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	if cfg.Server.Address != expected {
		return fmt.Errorf("expected address %q, got %q", expected, cfg.Server.Address)
	}
	return nil
}

func theExtractionTimeoutShouldBe(expected string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	if cfg.FFmpeg.Timeout.String() != expected {
		return fmt.Errorf("expected timeout %s, got %s", expected, cfg.FFmpeg.Timeout)
	}
	return nil
}

func sourceShouldUseVideoAndCoordinates(id, videoPath, coordinates string) error {
	cfg, err := loadedConfig()
	if err != nil {
		return err
	}
	sc, ok := cfg.Sources[id]
	if !ok {
		return fmt.Errorf("source %q not configured", id)
	}
	if sc.Video != videoPath || sc.Coordinates != coordinates {
		return fmt.Errorf("source %q = %+v", id, sc)
	}
	return nil
}

func loadingShouldFailWithAnErrorContaining(fragment string) error {
	tc := SharedConfigContext
	if tc.loadErr == nil {
		return fmt.Errorf("expected load error, got none")
	}
	if !strings.Contains(tc.loadErr.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got %v", fragment, tc.loadErr)
	}
	return nil
}
