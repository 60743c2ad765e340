package httpapi_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofiber/fiber/v2"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/httpapi"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/bulk"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/observability/testdoubles"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      map[string]any    `json:"data"`
	Error     *httpapi.APIError `json:"error"`
	RequestID string            `json:"request_id"`
}

type testAPI struct {
	app   *fiber.App
	clock *rental.ManualClock
}

func givenAPI(t *testing.T, obs httpapi.Observability) testAPI {
	t.Helper()

	engine, clock := GivenEngine(t)

	handlers, err := httpapi.NewHandlers(engine, bulk.NewCoordinator(engine), clock, obs,
		shell.WithBaseDelay(time.Millisecond))
	require.NoError(t, err, "building the handlers failed")

	return testAPI{
		app:   httpapi.NewServer(handlers).App(),
		clock: clock,
	}
}

func (api testAPI) call(t *testing.T, method, path string, body any) (int, envelope, *http.Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := jsoniter.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, jsoniter.Unmarshal(raw, &env), string(raw))

	return resp.StatusCode, env, resp
}

func Test_Server_FullRentalScenario(t *testing.T) {
	// setup
	api := givenAPI(t, httpapi.Observability{})

	// arrange
	status, _, _ := api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": "catan", "name": "Catan", "quantity": 1})
	require.Equal(t, http.StatusCreated, status)

	// act
	reserveStatus, reserved, _ := api.call(t, http.MethodPost, "/api/v1/items/catan/reservations", map[string]any{"userId": "A"})
	outOfStockStatus, outOfStock, _ := api.call(t, http.MethodPost, "/api/v1/items/catan/reservations", map[string]any{"userId": "B"})
	_, reservedStatus, _ := api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)

	holdID, _ := reserved.Data["holdId"].(string)
	convertStatus, _, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/convert", map[string]any{"actor": StaffActor})
	_, rentedStatus, _ := api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)
	returnStatus, _, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/return", map[string]any{"actor": StaffActor})
	secondReturnStatus, secondReturn, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/return", map[string]any{"actor": StaffActor})
	_, availableStatus, _ := api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)

	// assert
	assert.Equal(t, http.StatusCreated, reserveStatus)
	assert.NotEmpty(t, holdID)

	assert.Equal(t, http.StatusConflict, outOfStockStatus)
	assert.False(t, outOfStock.Success)
	require.NotNil(t, outOfStock.Error)
	assert.Equal(t, httpapi.CodeOutOfStock, outOfStock.Error.Code)

	assert.Equal(t, "RESERVED", reservedStatus.Data["status"])
	assert.InDelta(t, 0, reservedStatus.Data["availableCount"], 0)

	assert.Equal(t, http.StatusOK, convertStatus)
	assert.Equal(t, "RENTED", rentedStatus.Data["status"])

	assert.Equal(t, http.StatusOK, returnStatus)
	assert.Equal(t, http.StatusOK, secondReturnStatus)
	assert.True(t, secondReturn.Success)
	assert.Equal(t, true, secondReturn.Data["idempotent"])

	assert.Equal(t, "AVAILABLE", availableStatus.Data["status"])
	assert.InDelta(t, 1, availableStatus.Data["availableCount"], 0)
}

func Test_Server_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "holder with user and guest",
			method:         http.MethodPost,
			path:           "/api/v1/items/catan/reservations",
			body:           map[string]any{"userId": "A", "guestName": "Dana"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpapi.CodeInvalidHolder,
		},
		{
			name:           "unknown item",
			method:         http.MethodPost,
			path:           "/api/v1/items/unknown/reservations",
			body:           map[string]any{"userId": "A"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   httpapi.CodeNotFound,
		},
		{
			name:           "unknown hold",
			method:         http.MethodPost,
			path:           "/api/v1/holds/nope/convert",
			body:           map[string]any{"actor": StaffActor},
			expectedStatus: http.StatusNotFound,
			expectedCode:   httpapi.CodeNotFound,
		},
		{
			name:           "direct loan without actor",
			method:         http.MethodPost,
			path:           "/api/v1/items/catan/loans",
			body:           map[string]any{"guestName": "Dana"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpapi.CodeBadRequest,
		},
		{
			name:           "invalid manual status",
			method:         http.MethodPut,
			path:           "/api/v1/items/catan/manual-status",
			body:           map[string]any{"status": "BROKEN", "actor": StaffActor},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpapi.CodeBadRequest,
		},
		{
			name:           "invalid audit limit",
			method:         http.MethodGet,
			path:           "/api/v1/items/catan/audit?limit=-1",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   httpapi.CodeBadRequest,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/v1/nothing",
			expectedStatus: http.StatusNotFound,
			expectedCode:   httpapi.CodeNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			api := givenAPI(t, httpapi.Observability{})
			status, _, _ := api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": "catan", "name": "Catan", "quantity": 1})
			require.Equal(t, http.StatusCreated, status)

			// act
			status, env, _ := api.call(t, tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.expectedCode, env.Error.Code)
		})
	}
}

func Test_Server_ReservationExpiresBeforeConversion(t *testing.T) {
	// setup
	api := givenAPI(t, httpapi.Observability{})

	// arrange
	api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": "azul", "name": "Azul", "quantity": 1})
	_, reserved, _ := api.call(t, http.MethodPost, "/api/v1/items/azul/reservations", map[string]any{"guestName": "Dana"})
	holdID, _ := reserved.Data["holdId"].(string)
	api.clock.Advance(31 * time.Minute)

	// act
	status, env, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/convert", map[string]any{"actor": StaffActor})
	_, available, _ := api.call(t, http.MethodGet, "/api/v1/items/azul/status", nil)

	// assert
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, httpapi.CodeReservationExpired, env.Error.Code)
	assert.Equal(t, "AVAILABLE", available.Data["status"])
}

func Test_Server_ConvertingAClosedReservationFails(t *testing.T) {
	testCases := []struct {
		name  string
		close func(t *testing.T, api testAPI, holdID string)
	}{
		{
			name: "cancelled by the holder",
			close: func(t *testing.T, api testAPI, holdID string) {
				status, _, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/cancel", map[string]any{"actor": StaffActor})
				require.Equal(t, http.StatusOK, status)
			},
		},
		{
			name: "reclaimed and reserved by someone else",
			close: func(t *testing.T, api testAPI, _ string) {
				api.clock.Advance(31 * time.Minute)
				status, _, _ := api.call(t, http.MethodPost, "/api/v1/items/catan/reservations", map[string]any{"userId": "bob"})
				require.Equal(t, http.StatusCreated, status)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			api := givenAPI(t, httpapi.Observability{})

			// arrange
			api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": "catan", "name": "Catan", "quantity": 1})
			_, reserved, _ := api.call(t, http.MethodPost, "/api/v1/items/catan/reservations", map[string]any{"userId": "alice"})
			holdID, _ := reserved.Data["holdId"].(string)
			require.NotEmpty(t, holdID)
			tc.close(t, api, holdID)
			_, before, _ := api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)

			// act
			status, env, _ := api.call(t, http.MethodPost, "/api/v1/holds/"+holdID+"/convert", map[string]any{"actor": StaffActor})
			_, after, _ := api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)

			// assert
			assert.Equal(t, http.StatusConflict, status)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, httpapi.CodeHoldClosed, env.Error.Code)
			assert.Equal(t, before.Data["status"], after.Data["status"])
			assert.Equal(t, before.Data["availableCount"], after.Data["availableCount"])
		})
	}
}

func Test_Server_HolderEndpoints(t *testing.T) {
	// setup
	api := givenAPI(t, httpapi.Observability{})

	// arrange
	for _, id := range []string{"catan", "azul"} {
		api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": id, "name": id, "quantity": 1})
		api.call(t, http.MethodPost, "/api/v1/items/"+id+"/loans", map[string]any{"guestName": "Dana", "actor": StaffActor})
	}

	// act
	_, holds, _ := api.call(t, http.MethodGet, "/api/v1/holders/holds?guestName=dana", nil)
	returnStatus, returned, _ := api.call(t, http.MethodPost, "/api/v1/holders/return-all", map[string]any{"guestName": "DANA", "actor": StaffActor})
	againStatus, again, _ := api.call(t, http.MethodPost, "/api/v1/holders/return-all", map[string]any{"guestName": "Dana", "actor": StaffActor})

	// assert
	assert.InDelta(t, 2, holds.Data["loans"], 0)
	assert.Equal(t, http.StatusOK, returnStatus)
	assert.Equal(t, []any{"azul", "catan"}, returned.Data["succeeded"])
	assert.Equal(t, http.StatusOK, againStatus)
	assert.Equal(t, true, again.Data["idempotent"])
}

func Test_Server_RequestIDIsEchoed(t *testing.T) {
	// setup
	api := givenAPI(t, httpapi.Observability{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(httpapi.HeaderRequestID, "req-42")

	// act
	resp, err := api.app.Test(req, -1)

	// assert
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get(httpapi.HeaderRequestID))
}

func Test_Server_HandlersAreObserved(t *testing.T) {
	// setup
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	api := givenAPI(t, httpapi.Observability{Metrics: metrics, Tracing: tracing})

	// act
	api.call(t, http.MethodPost, "/api/v1/items", map[string]any{"id": "catan", "name": "Catan", "quantity": 1})
	api.call(t, http.MethodGet, "/api/v1/items/catan/status", nil)

	// assert
	assert.True(t, metrics.HasCounter(shell.CommandHandlerCallsMetric).WithLabel(shell.LogAttrCommandType, "RegisterItem").Assert())
	assert.True(t, metrics.HasCounter(shell.QueryHandlerCallsMetric).WithLabel(shell.LogAttrQueryType, "ItemStatus").Assert())
	assert.True(t, tracing.HasSpan(shell.SpanNameCommandHandle).Assert())
}

func Test_StatusAndCode(t *testing.T) {
	testCases := []struct {
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{rental.ErrOutOfStock, http.StatusConflict, httpapi.CodeOutOfStock},
		{errors.Join(rental.ErrDuplicateHold, errors.New("unique violation")), http.StatusConflict, httpapi.CodeDuplicateHold},
		{rental.ErrWrongKind, http.StatusConflict, httpapi.CodeWrongKind},
		{rental.ErrItemWithdrawn, http.StatusConflict, httpapi.CodeItemWithdrawn},
		{rental.ErrAlreadyClosed, http.StatusConflict, httpapi.CodeHoldClosed},
		{rental.ErrHoldNotFound, http.StatusNotFound, httpapi.CodeNotFound},
		{rental.ErrInvalidHolder, http.StatusBadRequest, httpapi.CodeInvalidHolder},
		{rental.ErrTransient, http.StatusInternalServerError, httpapi.CodeInternal},
		{context.DeadlineExceeded, http.StatusInternalServerError, httpapi.CodeInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			// act
			status, code := httpapi.StatusAndCode(tc.err)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
			assert.Equal(t, tc.expectedCode, code)
		})
	}
}
