package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kerneltest/internal/model"
	"kerneltest/internal/service"
	serviceMocks "kerneltest/internal/service/mocks"
	"kerneltest/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	t.Run("healthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(db, stubPinger{}))
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("database down", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(db))
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("object store down", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(db, stubPinger{err: errors.New("bucket missing")}))
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListResults(t *testing.T) {
	mockSvc := new(serviceMocks.MockResultService)
	app := fiber.New()
	app.Get("/api/results", ListResults(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.ResultListResult{
			Items: []model.TestRun{{ID: uuid.New().String(), Tester: "pingou"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, service.ListFilter{Limit: 10, Offset: 0, Kernel: "3.14.8-200.fc20.x86_64"}).
			Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/results?limit=10&offset=0&kernel=3.14.8-200.fc20.x86_64", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ResultListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("fedora filter", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.MatchedBy(func(f service.ListFilter) bool {
			return f.Fedora != nil && *f.Fedora == 20 && f.Release == "" && f.Limit == 10
		})).Return(&service.ResultListResult{Items: []model.TestRun{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results?fedora=20", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid fedora", func(t *testing.T) {
		for _, q := range []string{"f20", "-1"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results?fedora="+q, nil))

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body errorPayload
			json.NewDecoder(resp.Body).Decode(&body)
			assert.Equal(t, "INVALID_FEDORA", body.Error.Code)
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/results?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/results?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.ListFilter{Limit: 10}).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetResult(t *testing.T) {
	mockSvc := new(serviceMocks.MockResultService)
	app := fiber.New()
	app.Get("/api/results/:id", GetResult(mockSvc))

	tests := []struct {
		name     string
		id       string
		run      *model.TestRun
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "success", id: uuid.New().String(), run: &model.TestRun{Tester: "pingou"}, wantCode: http.StatusOK},
		{name: "invalid id", id: "not-a-uuid", err: service.ErrInvalidID, wantCode: http.StatusBadRequest, wantErr: "INVALID_ID"},
		{name: "not found", id: uuid.New().String(), err: service.ErrNotFound, wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "service error", id: uuid.New().String(), err: errors.New("db error"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.run != nil {
				tt.run.ID = tt.id
				mockSvc.On("Get", mock.Anything, tt.id).Return(tt.run, nil).Once()
			} else {
				mockSvc.On("Get", mock.Anything, tt.id).Return(nil, tt.err).Once()
			}

			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results/"+tt.id, nil))

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantErr != "" {
				var body errorPayload
				json.NewDecoder(resp.Body).Decode(&body)
				assert.Equal(t, tt.wantErr, body.Error.Code)
			} else {
				var run model.TestRun
				json.NewDecoder(resp.Body).Decode(&run)
				assert.Equal(t, tt.id, run.ID)
			}
		})
	}
	mockSvc.AssertExpectations(t)
}

func TestResultLog(t *testing.T) {
	mockSvc := new(serviceMocks.MockResultService)
	app := fiber.New()
	app.Get("/api/results/:id/log", ResultLog(mockSvc))
	id := uuid.New().String()

	t.Run("streams the log", func(t *testing.T) {
		mockSvc.On("OpenLog", mock.Anything, id).
			Return(io.NopCloser(strings.NewReader(validLog)), storage.ObjectInfo{Size: int64(len(validLog))}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results/"+id+"/log", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get("Content-Type"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, validLog, string(body))
	})

	t.Run("object missing", func(t *testing.T) {
		mockSvc.On("OpenLog", mock.Anything, id).Return(nil, storage.ObjectInfo{}, service.ErrLogNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results/"+id+"/log", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "LOG_NOT_FOUND", body.Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestResultLogURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockResultService)
	app := fiber.New()
	app.Get("/api/results/:id/log-url", ResultLogURL(mockSvc))
	id := uuid.New().String()

	mockSvc.On("LogURL", mock.Anything, id).Return("http://minio:9000/kerneltest-logs/logs/x.log?X-Amz-Signature=abc", 15*time.Minute, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/results/"+id+"/log-url", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "http://minio:9000/kerneltest-logs/logs/x.log?X-Amz-Signature=abc", body["url"])
	assert.Equal(t, float64(900), body["expires_in"])
	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockResultService)
	RegisterRoutes(app, Deps{
		UploadDeps: UploadDeps{Results: mockSvc},
		Sessions:   NewSessionStore(session.Config{}),
		UserHeader: "X-Remote-User",
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("root goes to the upload form", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/upload/", resp.Header.Get("Location"))
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/big", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("secret internals") })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/big", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "secret internals")
}
