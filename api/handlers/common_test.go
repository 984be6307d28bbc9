// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/catalog"
	"github.com/meghashyamc/vidcat/services/index"
	"github.com/meghashyamc/vidcat/services/search"
	"github.com/meghashyamc/vidcat/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedIDs      []string
	expectedResponse map[string]any
}

type testServer struct {
	router   *gin.Engine
	catalog  *catalog.Service
	searchDB searchdb.DB
	kvDB     kvdb.DB
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	tempDir := t.TempDir()
	t.Setenv("ENV", "test")
	t.Setenv("DB_ENGINE", config.EngineBleve)
	t.Setenv("STORAGE_PATH", tempDir)
	t.Setenv("KVDB_PATH", filepath.Join(tempDir, "vidcat.db"))

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()
	ctx, cancel := context.WithCancel(context.Background())

	searchDB, err := searchdb.New(ctx, testLogger, cfg)
	assert.NoError(err, "could not create search database")

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	catalogService := catalog.New(testLogger, kvDB, searchDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	searchService := search.New(testLogger, searchDB, cfg)
	SetupSearch(router, testLogger, searchService, validator)
	SetupBrowse(router, testLogger, searchService, validator)
	SetupVideos(router, testLogger, catalogService, validator)
	SetupIndex(router, testLogger, index.New(ctx, testLogger, searchDB, kvDB))

	t.Cleanup(func() {
		cancel()
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, catalog: catalogService, searchDB: searchDB, kvDB: kvDB}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// assertContains checks that every key in expected is present in actual with
// the same value, descending into nested objects.
func assertContains(assert *require.Assertions, expected map[string]any, actual map[string]any, path string) {
	for key, expectedValue := range expected {
		actualValue, exists := actual[key]
		assert.True(exists, fmt.Sprintf("expected field %s%s not found", path, key))

		if expectedMap, ok := expectedValue.(map[string]any); ok {
			actualMap, ok := actualValue.(map[string]any)
			assert.True(ok, fmt.Sprintf("field %s%s is not an object", path, key))
			assertContains(assert, expectedMap, actualMap, path+key+".")
			continue
		}
		assert.Equal(expectedValue, actualValue, fmt.Sprintf("field %s%s mismatch", path, key))
	}
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &responseMap), "could not unmarshal response %s", w.Body.String())
	return responseMap
}
