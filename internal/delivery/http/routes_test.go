package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/weatherwatch/backend/internal/alerts"
	"github.com/weatherwatch/backend/internal/cache"
	"github.com/weatherwatch/backend/internal/provider"
	"github.com/weatherwatch/backend/internal/repository/postgres"
	"github.com/weatherwatch/backend/internal/service"
)

const moscowPayload = `{
	"coord": {"lat": 55.75, "lon": 37.62},
	"weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
	"main": {"temp": 21.5, "feels_like": 20.9, "temp_min": 19.0, "temp_max": 23.0, "pressure": 1012, "humidity": 57},
	"wind": {"speed": 3.4, "deg": 180},
	"visibility": 10000,
	"sys": {"sunrise": 1700000000, "sunset": 1700040000},
	"name": "Moscow"
}`

type testEnv struct {
	app  *fiber.App
	repo *postgres.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	upstream := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Query().Get("q") == "Moscow" {
			w.Write([]byte(moscowPayload))
			return
		}
		nethttp.Error(w, `{"cod":"404","message":"city not found"}`, nethttp.StatusNotFound)
	}))
	t.Cleanup(upstream.Close)

	repo := postgres.NewMemoryRepository()
	fetcher := provider.NewOpenWeatherClient("test-key").WithBaseURL(upstream.URL)

	worker := alerts.NewWorker(repo)
	worker.Start()
	t.Cleanup(worker.Stop)

	authSvc := service.NewAuthService(repo, "test-secret", 30*time.Minute)
	weatherSvc := service.NewWeatherService(cache.New(30*time.Minute), fetcher, repo, worker)
	alertSvc := service.NewAlertService(repo, repo)
	locationSvc := service.NewLocationService(repo)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": message})
		},
	})
	SetupRoutes(app, NewHandler(authSvc, weatherSvc, alertSvc, locationSvc, repo), authSvc)

	return &testEnv{app: app, repo: repo}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*nethttp.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		json.Unmarshal(raw, &decoded)
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, decoded
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	resp, _ := e.request(t, nethttp.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@test.example",
		"password": "testpassword",
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}

	resp, body := e.request(t, nethttp.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "testpassword",
	})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("login returned no access token")
	}
	return token
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "test_user")

	resp, body := env.request(t, nethttp.MethodGet, "/api/v1/auth/me", token, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	if body["username"] != "test_user" {
		t.Errorf("me returned username %v, want test_user", body["username"])
	}

	// Wrong password is rejected.
	resp, _ = env.request(t, nethttp.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "test_user",
		"password": "wrong",
	})
	if resp.StatusCode != nethttp.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}

	// Duplicate registration is rejected.
	resp, _ = env.request(t, nethttp.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "test_user",
		"email":    "other@test.example",
		"password": "pw",
	})
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{nethttp.MethodGet, "/api/v1/auth/me"},
		{nethttp.MethodGet, "/api/v1/locations"},
		{nethttp.MethodGet, "/api/v1/alerts"},
		{nethttp.MethodGet, "/api/v1/alerts/notifications"},
		{nethttp.MethodGet, "/api/v1/weather/Moscow"},
		{nethttp.MethodGet, "/api/v1/weather/Moscow/history"},
	}
	for _, p := range paths {
		resp, _ := env.request(t, p.method, p.path, "", nil)
		if resp.StatusCode != nethttp.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestLocationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "loc_user")

	resp, _ := env.request(t, nethttp.MethodPost, "/api/v1/locations?location=Moscow", token, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("save status = %d, want 200", resp.StatusCode)
	}

	// Saving the same location twice is rejected.
	resp, _ = env.request(t, nethttp.MethodPost, "/api/v1/locations?location=Moscow", token, nil)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("duplicate save status = %d, want 400", resp.StatusCode)
	}

	resp, _ = env.request(t, nethttp.MethodGet, "/api/v1/locations", token, nil)
	raw, _ := io.ReadAll(resp.Body)
	var locations []string
	if err := json.Unmarshal(raw, &locations); err != nil {
		t.Fatalf("failed to decode locations: %v", err)
	}
	if len(locations) != 1 || locations[0] != "Moscow" {
		t.Errorf("locations = %v, want [Moscow]", locations)
	}

	resp, _ = env.request(t, nethttp.MethodDelete, "/api/v1/locations?location=Moscow", token, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}

	// Deleting again reports the missing row.
	resp, _ = env.request(t, nethttp.MethodDelete, "/api/v1/locations?location=Moscow", token, nil)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("second delete status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateAlertValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alert_user")

	resp, _ := env.request(t, nethttp.MethodPost, "/api/v1/alerts", token, map[string]any{
		"location":    "Moscow",
		"column_name": "humidity",
		"comparator":  "==",
		"number":      75,
	})
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("invalid comparator status = %d, want 400", resp.StatusCode)
	}

	resp, _ = env.request(t, nethttp.MethodPost, "/api/v1/alerts", token, map[string]any{
		"location":    "Moscow",
		"column_name": "wind_speed",
		"comparator":  ">=",
		"number":      75,
	})
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Errorf("invalid column status = %d, want 400", resp.StatusCode)
	}

	resp, _ = env.request(t, nethttp.MethodPost, "/api/v1/alerts", token, map[string]any{
		"location":    "Moscow",
		"column_name": "humidity",
		"comparator":  ">=",
		"number":      75,
	})
	if resp.StatusCode != nethttp.StatusOK {
		t.Errorf("valid alert status = %d, want 200", resp.StatusCode)
	}
}

func TestGetWeatherCachesAndLogsHistory(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "weather_user")

	resp, first := env.request(t, nethttp.MethodGet, "/api/v1/weather/Moscow", token, nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("weather status = %d, want 200", resp.StatusCode)
	}
	for _, field := range []string{"location", "main_weather", "icon", "description",
		"temperature", "pressure", "humidity", "wind_speed", "sunrise", "sunset", "timestamp"} {
		if _, ok := first[field]; !ok {
			t.Errorf("response missing field %q", field)
		}
	}

	// Second request inside the freshness window is served from cache:
	// identical capture timestamp, still a single history row.
	_, second := env.request(t, nethttp.MethodGet, "/api/v1/weather/Moscow", token, nil)
	if first["timestamp"] != second["timestamp"] {
		t.Error("second request re-fetched instead of serving from cache")
	}

	resp, _ = env.request(t, nethttp.MethodGet, "/api/v1/weather/Moscow/history", token, nil)
	raw, _ := io.ReadAll(resp.Body)
	var history []map[string]any
	if err := json.Unmarshal(raw, &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}

func TestGetWeatherUnknownLocation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "lost_user")

	resp, _ := env.request(t, nethttp.MethodGet, "/api/v1/weather/Bebraversity", token, nil)
	if resp.StatusCode != nethttp.StatusBadGateway {
		t.Fatalf("unknown location status = %d, want 502", resp.StatusCode)
	}

	// The failure leaves no partial state behind.
	resp, _ = env.request(t, nethttp.MethodGet, "/api/v1/weather/Bebraversity/history", token, nil)
	raw, _ := io.ReadAll(resp.Body)
	var history []map[string]any
	if err := json.Unmarshal(raw, &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d after failed fetch, want 0", len(history))
	}
}

func TestNotificationFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "notify_user")

	resp, _ := env.request(t, nethttp.MethodPost, "/api/v1/alerts", token, map[string]any{
		"location":    "Moscow",
		"column_name": "humidity",
		"comparator":  ">=",
		"number":      50,
	})
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("alert create status = %d, want 200", resp.StatusCode)
	}

	if resp, _ := env.request(t, nethttp.MethodGet, "/api/v1/weather/Moscow", token, nil); resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("weather status = %d, want 200", resp.StatusCode)
	}

	user, err := env.repo.GetUserByUsername(context.Background(), "notify_user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The worker evaluates asynchronously; poll until the firing lands.
	deadline := time.Now().Add(2 * time.Second)
	for {
		ns, err := env.repo.ListNotificationsByUser(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ns) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 notification before timeout, have %d", len(ns))
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, _ = env.request(t, nethttp.MethodGet, "/api/v1/alerts/notifications", token, nil)
	raw, _ := io.ReadAll(resp.Body)
	var ns []map[string]any
	if err := json.Unmarshal(raw, &ns); err != nil {
		t.Fatalf("failed to decode notifications: %v", err)
	}
	if len(ns) != 1 {
		t.Fatalf("notifications length = %d, want 1", len(ns))
	}
	if got := fmt.Sprintf("%v", ns[0]["actual_number"]); got != "57" {
		t.Errorf("actual_number = %v, want 57", ns[0]["actual_number"])
	}
}
