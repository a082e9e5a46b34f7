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

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	if response == "<default>" {
		return defaultValue, nil
	}
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command accepting the defaults$`, iRunTheSetupCommandAcceptingTheDefaults)
	ctx.Step(`^I run the setup command with inputs:$`, iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command and decline to overwrite$`, iRunTheSetupCommandAndDeclineToOverwrite)
	ctx.Step(`^a config file should exist$`, aConfigFileShouldExist)
	ctx.Step(`^the config should have trimmed_directory "([^"]*)"$`, theConfigShouldHaveTrimmedDirectory)
	ctx.Step(`^the config should have sources "([^"]*)"$`, theConfigShouldHaveSources)
	ctx.Step(`^the setup should be cancelled$`, theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, theExistingConfigShouldBeUnchanged)
}

func noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	return os.MkdirAll(filepath.Dir(SharedSetupContext.configPath), 0755)
}

func aConfigFileAlreadyExistsForSetup() error {
	s := SharedSetupContext
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `paths:
  trimmed_directory: "/original/trimmed"
sources:
  L2:
    video: "L2.mp4"
    coordinates: "coordinates.csv"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func iRunTheSetupCommandAcceptingTheDefaults() error {
	s := SharedSetupContext
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, nil), s.configPath, s.output)
	return nil
}

// The table lists input answers in prompt order; "yes"/"no" rows answer confirmations
func iRunTheSetupCommandWithInputs(table *godog.Table) error {
	s := SharedSetupContext

	var inputs []string
	var confirms []bool
	for _, row := range table.Rows[1:] {
		kind, value := row.Cells[0].Value, row.Cells[1].Value
		if kind == "confirm" {
			confirms = append(confirms, value == "yes")
			continue
		}
		inputs = append(inputs, value)
	}

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms), s.configPath, s.output)
	return nil
}

func iRunTheSetupCommandAndDeclineToOverwrite() error {
	s := SharedSetupContext
	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, []bool{false}), s.configPath, s.output)
	return nil
}

func aConfigFileShouldExist() error {
	s := SharedSetupContext
	if s.err != nil {
		return fmt.Errorf("setup failed: %v", s.err)
	}
	if _, err := os.Stat(s.configPath); err != nil {
		return fmt.Errorf("config file not created: %v", err)
	}
	return nil
}

func loadSetupConfig() (*config.Config, error) {
	return config.Load(SharedSetupContext.configPath)
}

func theConfigShouldHaveTrimmedDirectory(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.TrimmedDirectory != expected {
		return fmt.Errorf("expected trimmed_directory %q, got %q", expected, cfg.Paths.TrimmedDirectory)
	}
	return nil
}

func theConfigShouldHaveSources(expected string) error {
	cfg, err := loadSetupConfig()
	if err != nil {
		return err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	if got := strings.Join(catalog.IDs(), ","); got != expected {
		return fmt.Errorf("expected sources %q, got %q", expected, got)
	}
	return nil
}

func theSetupShouldBeCancelled() error {
	s := SharedSetupContext
	if s.err != nil {
		return fmt.Errorf("unexpected error: %v", s.err)
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected cancellation message, got:\n%s", s.output.String())
	}
	return nil
}

func theExistingConfigShouldBeUnchanged() error {
	s := SharedSetupContext
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config file was modified")
	}
	return nil
}
