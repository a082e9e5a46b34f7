//go:build integration

package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"geoclip-service/application/housekeeping"
	"geoclip-service/infrastructure/filesystem"
	"geoclip-service/infrastructure/logging"
	"geoclip-service/infrastructure/web"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
)

type videoContext struct {
	dir      string
	store    *filesystem.ClipStore
	recorder *httptest.ResponseRecorder
}

var SharedVideoContext = &videoContext{}

func InitializeVideoScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "video-test-*")
		if err != nil {
			return c, err
		}
		store, err := filesystem.NewClipStore(dir)
		if err != nil {
			return c, err
		}
		SharedVideoContext = &videoContext{dir: dir, store: store}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedVideoContext.dir != "" {
			os.RemoveAll(SharedVideoContext.dir)
		}
		SharedVideoContext = &videoContext{}
		return c, nil
	})

	ctx.Step(`^a stored clip "([^"]*)" of (\d+) bytes$`, aStoredClipOfBytes)
	ctx.Step(`^I request "([^"]*)"$`, iRequest)
	ctx.Step(`^I request "([^"]*)" with range "([^"]*)"$`, iRequestWithRange)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, theResponseHeaderShouldBe)
	ctx.Step(`^the response body should be bytes (\d+) to (\d+) of the clip$`, theResponseBodyShouldBeBytesToOfTheClip)
}

// clipByte is the content of every stored clip at offset i
func clipByte(i int) byte {
	return byte(i % 253)
}

func aStoredClipOfBytes(name string, size int) error {
	data := make([]byte, size)
	for i := range data {
		data[i] = clipByte(i)
	}
	return os.WriteFile(SharedVideoContext.store.Path(name), data, 0644)
}

func serve(req *http.Request) {
	gin.SetMode(gin.TestMode)
	logger := logging.Discard()
	tc := SharedVideoContext

	router := web.NewRouter(web.Dependencies{
		Housekeeper: housekeeping.NewService(tc.store, logger),
		ClipStore:   tc.store,
		Logger:      logger,
	}, web.RouterConfig{})

	tc.recorder = httptest.NewRecorder()
	router.ServeHTTP(tc.recorder, req)
}

func iRequest(path string) error {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	serve(req)
	return nil
}

func iRequestWithRange(path, rangeHeader string) error {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", rangeHeader)
	serve(req)
	return nil
}

func theResponseStatusShouldBe(status int) error {
	if got := SharedVideoContext.recorder.Code; got != status {
		return fmt.Errorf("expected status %d, got %d", status, got)
	}
	return nil
}

func theResponseHeaderShouldBe(name, value string) error {
	if got := SharedVideoContext.recorder.Header().Get(name); got != value {
		return fmt.Errorf("expected %s %q, got %q", name, value, got)
	}
	return nil
}

func theResponseBodyShouldBeBytesToOfTheClip(start, end int) error {
	body := SharedVideoContext.recorder.Body.Bytes()
	if len(body) != end-start+1 {
		return fmt.Errorf("expected %d bytes, got %d", end-start+1, len(body))
	}
	for i, b := range body {
		if b != clipByte(start+i) {
			return fmt.Errorf("byte %d differs", start+i)
		}
	}
	if got := SharedVideoContext.recorder.Header().Get("Content-Length"); got != strconv.Itoa(len(body)) {
		return fmt.Errorf("Content-Length %q does not match body", got)
	}
	return nil
}
