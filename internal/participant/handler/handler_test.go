package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"participant-service/internal/participant/models"
	"participant-service/internal/participant/service"
	"participant-service/internal/participant/store"
)

// newTestRouter wires the real service over the in-memory store; handler tests
// exercise the full decode-validate-orchestrate-translate path.
func newTestRouter(t *testing.T) (chi.Router, *store.InMemory) {
	t.Helper()

	mem := store.NewInMemory()
	age18, age65 := 18, 65
	mem.SeedProgram(models.ProgramType{Code: "GOLD", Name: "Gold Program", EligibilityAge: &age18})
	mem.SeedProgram(models.ProgramType{Code: "SENIOR", Name: "Senior Program", EligibilityAge: &age65})

	log := slog.New(slog.DiscardHandler)
	svc := service.New(mem, log)
	router := chi.NewRouter()
	New(svc, log, nil, nil).Register(router)
	return router, mem
}

func doJSON(t *testing.T, router chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validRequest(email string) models.ParticipantRequest {
	return models.ParticipantRequest{
		FirstName:        "Mark",
		LastName:         "Lindros",
		Email:            email,
		DOB:              models.NewDate(1990, time.May, 15),
		EnrollmentStatus: "ACTIVE",
	}
}

func createParticipant(t *testing.T, router chi.Router, email string) models.ParticipantResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/participants", validRequest(email))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.ParticipantResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreateParticipant(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("creates with 201 and echoes the projection", func(t *testing.T) {
		resp := createParticipant(t, router, "mlindros@gmail.com")
		assert.NotZero(t, resp.ParticipantID)
		assert.Equal(t, "Mark", resp.FirstName)
		assert.Equal(t, "1990-05-15", resp.DOB.String())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		createParticipant(t, router, "dup@example.com")
		rec := doJSON(t, router, http.MethodPost, "/api/participants", validRequest("dup@example.com"))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EMAIL_EXISTS", decodeError(t, rec).Status)
	})

	t.Run("validation failures are 400", func(t *testing.T) {
		req := validRequest("bad@example.com")
		req.Email = "not-an-email"
		rec := doJSON(t, router, http.MethodPost, "/api/participants", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Status)

		req = validRequest("future@example.com")
		req.DOB = models.NewDate(2100, time.January, 1)
		rec = doJSON(t, router, http.MethodPost, "/api/participants", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/participants", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetParticipant(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createParticipant(t, router, "get@example.com")

	t.Run("round-trips the created projection", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.ParticipantResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, created, resp)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "RECORD_NOT_FOUND", decodeError(t, rec).Status)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListParticipants(t *testing.T) {
	router, _ := newTestRouter(t)
	createParticipant(t, router, "one@example.com")
	createParticipant(t, router, "two@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/participants", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []models.ParticipantResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}

func TestUpdateParticipant(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createParticipant(t, router, "update@example.com")

	t.Run("updates with 200", func(t *testing.T) {
		req := validRequest("update@example.com")
		req.FirstName = "Eric"
		rec := doJSON(t, router, http.MethodPut, "/api/participants/1", req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.ParticipantResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, created.ParticipantID, resp.ParticipantID)
		assert.Equal(t, "Eric", resp.FirstName)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/participants/999", validRequest("ghost@example.com"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteParticipant(t *testing.T) {
	router, _ := newTestRouter(t)
	createParticipant(t, router, "delete@example.com")

	rec := doJSON(t, router, http.MethodDelete, "/api/participants/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/participants/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnroll(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createParticipant(t, router, "enroll@example.com")

	enrollReq := models.EnrollmentRequest{ParticipantID: created.ParticipantID, ProgramCode: "GOLD", UserID: "u1"}

	t.Run("first enroll succeeds with the status string", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", enrollReq)
		require.Equal(t, http.StatusOK, rec.Code)

		var status string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
		assert.Equal(t, "SUCCESS", status)
	})

	t.Run("second enroll is 409 ALREADY_ENROLLED", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", enrollReq)
		assert.Equal(t, http.StatusConflict, rec.Code)
		errResp := decodeError(t, rec)
		assert.Equal(t, "ALREADY_ENROLLED", errResp.Status)
		assert.False(t, errResp.Time.IsZero())
	})

	t.Run("ineligible age is 403", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", models.EnrollmentRequest{
			ParticipantID: created.ParticipantID, ProgramCode: "SENIOR", UserID: "u1",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "INELIGIBLE_AGE", decodeError(t, rec).Status)
	})

	t.Run("unknown participant is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", models.EnrollmentRequest{
			ParticipantID: 999, ProgramCode: "GOLD", UserID: "u1",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "RECORD_NOT_FOUND", decodeError(t, rec).Status)
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", models.EnrollmentRequest{
			ParticipantID: created.ParticipantID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestActiveEnrollments(t *testing.T) {
	router, _ := newTestRouter(t)
	created := createParticipant(t, router, "active@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/participants/enrollments", models.EnrollmentRequest{
		ParticipantID: created.ParticipantID, ProgramCode: "GOLD", UserID: "u1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("returns the enriched projection", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/1/enrollments/active", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []models.EnrollmentResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "GOLD", resp[0].ProgramCode)
		assert.Equal(t, "Gold Program", resp[0].ProgramName)
		require.NotNil(t, resp[0].EligibilityAge)
		assert.Equal(t, 18, *resp[0].EligibilityAge)
	})

	t.Run("unknown participant is 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/999/enrollments/active", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchByStatus(t *testing.T) {
	router, _ := newTestRouter(t)
	createParticipant(t, router, "search@example.com")

	t.Run("matches by substring", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/search?status=act", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []models.ParticipantResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 1)
	})

	t.Run("empty result is 200 with empty list", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/search?status=archived", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []models.ParticipantResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Empty(t, resp)
	})

	t.Run("missing status parameter is 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/participants/search", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
