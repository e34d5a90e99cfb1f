package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/imperium/internal/adapters/api"
	empireCommands "github.com/andrescamacho/imperium/internal/application/empire/commands"
	"github.com/andrescamacho/imperium/internal/application/mediator"
	"github.com/andrescamacho/imperium/internal/application/production"
	productionCommands "github.com/andrescamacho/imperium/internal/application/production/commands"
	"github.com/andrescamacho/imperium/internal/domain/ledger"
	"github.com/andrescamacho/imperium/internal/domain/queue"
	"github.com/andrescamacho/imperium/internal/domain/shared"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
	"github.com/andrescamacho/imperium/test/helpers"
)

const jwtSecret = "0123456789abcdef0123456789abcdef"

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons"`
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serverConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:            8080,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		RateLimit:       config.RateLimitConfig{Requests: 1000, Burst: 1000},
	}
}

func headerAuth() config.AuthConfig {
	return config.AuthConfig{Mode: "header", Header: "X-Actor"}
}

func newServer(med mediator.Mediator) *api.Server {
	return api.NewServer(med, serverConfig(), headerAuth(), "", nil)
}

func do(t *testing.T, s *api.Server, method, path, actor string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(helpers.NewMockMediator()), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMissingActorIsUnauthenticated(t *testing.T) {
	med := helpers.NewMockMediator()
	rec := do(t, newServer(med), http.MethodGet, "/api/v1/empire", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, rec).Code)
	assert.Empty(t, med.Requests())
}

func TestStartDispatchesTrackFromPath(t *testing.T) {
	med := helpers.NewMockMediator()
	med.On(&productionCommands.StartProductionCommand{}, &productionCommands.StartProductionResponse{
		Entry: &production.EntryView{ID: "e-1", Track: "defenses", Status: "pending", ChargedAmount: 150},
	}, nil)

	rec := do(t, newServer(med), http.MethodPost, "/api/v1/defenses/start", "alice", map[string]interface{}{
		"locationCoord": "A01:02:03:04",
		"itemKey":       "laser_turret",
		"requestToken":  "tok-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Entry production.EntryView `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "e-1", body.Entry.ID)
	assert.Equal(t, int64(150), body.Entry.ChargedAmount)

	cmd, ok := med.LastRequest().(*productionCommands.StartProductionCommand)
	require.True(t, ok)
	assert.Equal(t, "alice", cmd.Actor)
	assert.Equal(t, shared.TrackDefenses, cmd.Track)
	assert.Equal(t, "A01:02:03:04", cmd.Location)
	assert.Equal(t, "laser_turret", cmd.ItemKey)
	assert.Equal(t, "tok-1", cmd.RequestToken)
}

func TestStartRejectsMalformedBody(t *testing.T) {
	med := helpers.NewMockMediator()
	rec := do(t, newServer(med), http.MethodPost, "/api/v1/technology/start", "alice", map[string]interface{}{
		"locationCoord": "A01:02:03:04",
		"targetLevel":   -1,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.NotEmpty(t, body.Reasons)
	assert.Empty(t, med.Requests())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		reasons []string
	}{
		{"already in progress", queue.NewAlreadyInProgressError(shared.TrackTechnology, "energy_technology", "k"), http.StatusConflict, "ALREADY_IN_PROGRESS", nil},
		{"prerequisites", queue.NewPrerequisitesNotMetError([]string{"requires technology energy_technology level 1 (have 0)"}), http.StatusBadRequest, "PREREQUISITES_NOT_MET", []string{"requires technology energy_technology level 1 (have 0)"}},
		{"insufficient funds", ledger.NewInsufficientFundsError(300, 100), http.StatusBadRequest, "INSUFFICIENT_FUNDS", nil},
		{"invalid location", shared.NewInvalidLocationError("nowhere"), http.StatusBadRequest, "INVALID_LOCATION", nil},
		{"not owned", shared.NewNotOwnedError("A01:02:03:04"), http.StatusNotFound, "NOT_OWNED", nil},
		{"not found", shared.NewNotFoundError("empire", "alice"), http.StatusNotFound, "NOT_FOUND", nil},
		{"system failure", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			med := helpers.NewMockMediator()
			med.On(&productionCommands.StartProductionCommand{}, nil, tt.err)

			rec := do(t, newServer(med), http.MethodPost, "/api/v1/technology/start", "alice", map[string]interface{}{
				"locationCoord": "A01:02:03:04",
				"itemKey":       "energy_technology",
			})

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			if tt.reasons != nil {
				assert.Equal(t, tt.reasons, body.Reasons)
			}
			if tt.status == http.StatusBadRequest {
				assert.NotEmpty(t, body.Reasons)
			}
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "disk on fire")
			}
		})
	}
}

func TestCancelMapsStateErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"finished", queue.NewInvalidStateError("e-1", queue.StatusCompleted, "cannot cancel"), "INVALID_STATE"},
		{"locked", queue.NewNotCancellableYetError("e-1", shared.TrackDefenses), "NOT_CANCELLABLE_YET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			med := helpers.NewMockMediator()
			med.On(&productionCommands.CancelProductionCommand{}, nil, tt.err)

			rec := do(t, newServer(med), http.MethodDelete, "/api/v1/defenses/queue/e-1", "alice", nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)

			cmd := med.LastRequest().(*productionCommands.CancelProductionCommand)
			assert.Equal(t, "e-1", cmd.EntryID)
			assert.Equal(t, shared.TrackDefenses, cmd.Track)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	authCfg := config.AuthConfig{Mode: "jwt", JWTSecret: jwtSecret, Issuer: "imperium-auth"}

	sign := func(secret, issuer, subject string, expires time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
		})
		signed, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"valid", sign(jwtSecret, "imperium-auth", "alice", time.Now().Add(time.Hour)), http.StatusOK},
		{"wrong secret", sign("another-secret-another-secret-xx", "imperium-auth", "alice", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"wrong issuer", sign(jwtSecret, "someone-else", "alice", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", sign(jwtSecret, "imperium-auth", "alice", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"no subject", sign(jwtSecret, "imperium-auth", "", time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			med := helpers.NewMockMediator()
			med.On(&productionCommands.CancelProductionCommand{}, &production.CancelResult{CancelledID: "e-1"}, nil)
			s := api.NewServer(med, serverConfig(), authCfg, "", nil)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/technology/queue/e-1", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice", med.LastRequest().(*productionCommands.CancelProductionCommand).Actor)
			}
		})
	}
}

func TestRateLimitIsPerActor(t *testing.T) {
	med := helpers.NewMockMediator()
	med.On(&productionCommands.CancelProductionCommand{}, &production.CancelResult{CancelledID: "e-1"}, nil)
	cfg := serverConfig()
	cfg.RateLimit = config.RateLimitConfig{Requests: 0.001, Burst: 1}
	s := api.NewServer(med, cfg, headerAuth(), "", nil)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/api/v1/units/queue/e-1", "alice", nil).Code)

	limited := do(t, s, http.MethodDelete, "/api/v1/units/queue/e-1", "alice", nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/api/v1/units/queue/e-1", "bob", nil).Code)
}

func TestEndToEndStartListCancel(t *testing.T) {
	app := helpers.NewTestApp(t)
	app.SeedEmpire(t, "alice", 500, []string{"A01:02:03:04"},
		empireCommands.StartingAsset{Location: "A01:02:03:04", ItemKey: helpers.ResearchLab, Level: 1})
	s := newServer(app.Mediator)

	rec := do(t, s, http.MethodPost, "/api/v1/technology/start", "alice", map[string]interface{}{
		"locationCoord": "A01:02:03:04",
		"itemKey":       helpers.EnergyTech,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var started struct {
		Entry production.EntryView `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, int64(300), started.Entry.ChargedAmount)

	rec = do(t, s, http.MethodPost, "/api/v1/technology/start", "alice", map[string]interface{}{
		"locationCoord": "A01:02:03:04",
		"itemKey":       helpers.EnergyTech,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/technology/queue?location=A01:02:03:04", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Queue []production.EntryView `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Queue, 1)
	assert.Equal(t, started.Entry.ID, listed.Queue[0].ID)

	rec = do(t, s, http.MethodDelete, "/api/v1/technology/queue/"+started.Entry.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cancelled production.CancelResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.Equal(t, int64(300), cancelled.RefundedAmount)

	rec = do(t, s, http.MethodGet, "/api/v1/empire/credits/history?limit=2", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Balance      int64 `json:"balance"`
		Transactions []struct {
			Type   string `json:"type"`
			Amount int64  `json:"amount"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Equal(t, int64(500), hist.Balance)
	require.Len(t, hist.Transactions, 2)
	assert.Equal(t, "research-refund", hist.Transactions[0].Type)
	assert.Equal(t, "research-charge", hist.Transactions[1].Type)

	rec = do(t, s, http.MethodGet, "/api/v1/empire", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credits":500`)

	rec = do(t, s, http.MethodGet, "/api/v1/empire", "mallory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
