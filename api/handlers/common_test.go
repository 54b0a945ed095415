// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/schoolfinder/config"
	"github.com/meghashyamc/schoolfinder/db/catalog"
	"github.com/meghashyamc/schoolfinder/db/kvdb"
	"github.com/meghashyamc/schoolfinder/db/searchdb"
	"github.com/meghashyamc/schoolfinder/db/seed"
	"github.com/meghashyamc/schoolfinder/logger"
	"github.com/meghashyamc/schoolfinder/services/listing"
	"github.com/meghashyamc/schoolfinder/services/search"
	"github.com/meghashyamc/schoolfinder/services/suggest"
	"github.com/meghashyamc/schoolfinder/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

type testCase struct {
	name           string
	requestBody    map[string]any
	queryParams    map[string]string
	expectedStatus int
	check          func(assert *require.Assertions, body []byte)
}

type testServer struct {
	router  *gin.Engine
	store   *kvdb.BoltDB
	suggest *suggest.Service
	seeded  []catalog.Establishment
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
	t.Helper()

	t.Setenv("ENV", "test")
	t.Setenv("KVDB_PATH", filepath.Join(t.TempDir(), "catalog.db"))

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()
	ctx, cancel := context.WithCancel(context.Background())

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() { assert.NoError(kvDB.Close(), "could not close kv database") })

	searchDB, err := searchdb.Open(testLogger, "")
	assert.NoError(err, "could not create search database")
	t.Cleanup(func() { assert.NoError(searchDB.Close(), "could not close search database") })

	seeded, err := seed.Load(ctx, kvDB, seed.Records)
	assert.NoError(err, "could not seed catalog")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	suggestService := suggest.New(ctx, testLogger, searchDB, kvDB)
	assert.NoError(suggestService.Rebuild(ctx), "could not build suggestions")
	t.Cleanup(cancel)

	listingService := listing.New(testLogger, kvDB, suggestService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, search.New(testLogger, kvDB), validator)
	SetupEstablishments(router, testLogger, listingService)
	SetupReviews(router, testLogger, listingService, validator)
	SetupRegistration(router, testLogger, listingService, validator)
	SetupAutocomplete(router, testLogger, suggestService)
	SetupAdmin(router.Group("/admin"), testLogger, listingService, validator)

	return &testServer{router: router, store: kvDB, suggest: suggestService, seeded: seeded}
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

type testFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func makeMultipartRequest(router *gin.Engine, assert *require.Assertions, endpoint string, fields map[string][]string, file *testFile) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, values := range fields {
		for _, value := range values {
			assert.NoError(writer.WriteField(key, value))
		}
	}
	if file != nil {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + file.field + `"; filename="` + file.name + `"`}
		header["Content-Type"] = []string{file.contentType}
		part, err := writer.CreatePart(header)
		assert.NoError(err)
		_, err = part.Write(file.data)
		assert.NoError(err)
	}
	assert.NoError(writer.Close())

	req, err := http.NewRequest(http.MethodPost, endpoint, body)
	assert.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](assert *require.Assertions, body []byte) T {
	var value T
	assert.NoError(json.Unmarshal(body, &value), "could not decode response: %s", string(body))
	return value
}

func runTestCases(t *testing.T, router *gin.Engine, method string, endpoint string, testCases []testCase) {
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(router, assert, method, endpoint, defaultTestRequestHeaders, tc.requestBody, tc.queryParams)
			assert.Equal(tc.expectedStatus, w.Code, w.Body.String())
			if tc.check != nil {
				tc.check(assert, w.Body.Bytes())
			}
		})
	}
}
