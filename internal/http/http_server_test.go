package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/otp-2025.net/internal/adapter/crypto"
	"gitlab.com/otp-2025.net/internal/adapter/logging"
	"gitlab.com/otp-2025.net/internal/adapter/memory/outcomeport"
	"gitlab.com/otp-2025.net/internal/config"
	auth2 "gitlab.com/otp-2025.net/internal/core/services/auth"
	"gitlab.com/otp-2025.net/internal/core/services/outcome"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/handlers/outcomes"
	"gitlab.com/otp-2025.net/internal/handlers/pool"
	"gitlab.com/otp-2025.net/internal/metrics"
)

type fakePool struct {
	units []domain.UnitInfo
}

func (f fakePool) Direction() domain.Direction    { return domain.DirectionEncrypt }
func (f fakePool) Capacity() int                  { return 5 }
func (f fakePool) ActiveUnits() []domain.UnitInfo { return f.units }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.NewNopLogger()

	hash, err := bcrypt.GenerateFromPassword([]byte("pa55"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	jwtCfg := &config.JwtConfig{Secret: "test-secret", TokenTTL: time.Minute}
	adminCfg := &config.AdminConfig{Addr: "127.0.0.1:0", Username: "admin", PasswordHash: string(hash)}
	jwtService := crypto.NewJWTService(jwtCfg)

	repo := outcomeport.NewOutcomeRepository(10)
	outcomeService := outcome.NewOutcomeService(logger, repo)
	outcomeService.Record(context.Background(), &domain.UnitOutcome{UnitID: uuid.New(), Status: domain.UnitStatusCompleted})
	outcomeService.Record(context.Background(), &domain.UnitOutcome{UnitID: uuid.New(), Status: domain.UnitStatusRejected})

	reg := prometheus.NewRegistry()
	m, err := metrics.NewPoolMetrics(reg, domain.DirectionEncrypt)
	if err != nil {
		t.Fatalf("NewPoolMetrics: %v", err)
	}
	m.UnitStarted()

	provider := NewServiceProvider(
		outcomeService,
		auth2.NewLocalAuthService(adminCfg, jwtCfg, jwtService, logger),
		jwtService,
		fakePool{units: []domain.UnitInfo{{ID: uuid.New(), Direction: domain.DirectionEncrypt, AcceptedAt: time.Now()}}},
	)
	s := NewServer(adminCfg.Addr, "otp_enc_d", *provider, reg, logger)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/token", "", `{"username":"admin","password":"pa55"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d: %s", rec.Code, rec.Body)
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "otp_enc_d") {
		t.Fatalf("unexpected healthz response %d: %s", rec.Code, rec.Body)
	}
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/auth/token", "", `{"username":"admin","password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/auth/token", "", `{`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/pool", "/api/outcomes", "/api/outcomes/stats"} {
		if rec := do(t, s, http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
		if rec := do(t, s, http.MethodGet, path, "garbage", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 for a bad token, got %d", path, rec.Code)
		}
	}
}

func TestPoolAndOutcomes(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s)

	rec := do(t, s, http.MethodGet, "/api/pool", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pool: status %d: %s", rec.Code, rec.Body)
	}
	var snapshot pool.PoolResponse
	_ = json.NewDecoder(rec.Body).Decode(&snapshot)
	if snapshot.Daemon != "otp_enc_d" || snapshot.Capacity != 5 || snapshot.Active != 1 {
		t.Fatalf("unexpected pool snapshot %+v", snapshot)
	}

	rec = do(t, s, http.MethodGet, "/api/outcomes?limit=1", token, "")
	var list outcomes.ListOutcomesResponse
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || len(list.Outcomes) != 1 || list.Outcomes[0].Status != domain.UnitStatusRejected {
		t.Fatalf("unexpected outcomes %d %+v", rec.Code, list)
	}

	if rec := do(t, s, http.MethodGet, "/api/outcomes?limit=x", token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/outcomes/stats", token, "")
	var stats outcomes.StatsResponse
	_ = json.NewDecoder(rec.Body).Decode(&stats)
	if stats.Completed != 1 || stats.Rejected != 1 || stats.Total != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "otp_units_active") {
		t.Fatalf("unexpected metrics response %d", rec.Code)
	}
}

func TestStartAndStop(t *testing.T) {
	s := newTestServer(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + s.ListenAddr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
