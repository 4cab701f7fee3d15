package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"bistroboard/internal/config"
	"bistroboard/internal/db"
	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/migrate"
	"bistroboard/internal/repo"
	"bistroboard/internal/usecase"
)

const testJWTSecret = "server-test-secret"

type testServer struct {
	URL    string
	Repo   repo.Repo
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := repo.Repo{DB: conn}
	ctx := context.Background()
	ts := time.Now().UTC().Format(time.RFC3339)
	if err := store.InsertRestaurant(ctx, domain.Restaurant{
		ID:   "rest-1",
		Name: "Chez Test",
		AutoReply: domain.AutoReplySettings{
			Mode: domain.ReplyModeTemplate,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}); err != nil {
		t.Fatalf("insert restaurant: %v", err)
	}
	if err := store.UpsertCatalogItem(ctx, domain.CatalogItem{
		ID: "item-1", RestaurantID: "rest-1", Name: "Margherita", UpdatedAt: ts,
	}); err != nil {
		t.Fatalf("insert catalog item: %v", err)
	}
	svc := usecase.New(store, events.Writer{DB: conn, Now: time.Now}, config.Default("rest-1"))
	handler, err := New(Config{
		Service:  svc,
		Repo:     store,
		BasePath: "/v0",
		Auth:     AuthConfig{JWTSecret: testJWTSecret},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Repo:   store,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwtClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authHeaders(t *testing.T, subject string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + signToken(t, subject)}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

type errEnvelope struct {
	Error struct {
		Kind    string `json:"kind"`
		Code    string `json:"code"`
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, data []byte) errEnvelope {
	t.Helper()
	var env errEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal error envelope: %v (%s)", err, string(data))
	}
	return env
}

func TestImageApprovalFlow(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	headers := authHeaders(t, "op-1")

	createRes, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/restaurants/rest-1/images", map[string]any{
		"catalog_item_id": "item-1",
		"mode":            "direct_upload",
		"source_url":      "https://cdn.example.test/upload.png",
	}, headers)
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create image status %d: %s", createRes.StatusCode, string(data))
	}
	var job domain.ImageJob
	if err := json.Unmarshal(data, &job); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}
	if job.Status != domain.ImageReadyForApproval {
		t.Fatalf("direct upload should be ready for approval, got %s", job.Status)
	}

	approveRes, approveBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/images/"+job.ID+"/approve", nil, headers)
	if approveRes.StatusCode != http.StatusOK {
		t.Fatalf("approve status %d: %s", approveRes.StatusCode, string(approveBody))
	}
	var approved domain.ImageJob
	_ = json.Unmarshal(approveBody, &approved)
	if approved.Status != domain.ImageApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "op-1" {
		t.Fatalf("approved_by should record the JWT subject: %+v", approved.ApprovedBy)
	}

	applyRes, applyBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/images/"+job.ID+"/apply", nil, headers)
	if applyRes.StatusCode != http.StatusOK {
		t.Fatalf("apply status %d: %s", applyRes.StatusCode, string(applyBody))
	}
	var applied domain.ImageJob
	_ = json.Unmarshal(applyBody, &applied)
	if applied.Status != domain.ImageAppliedToCatalog {
		t.Fatalf("expected applied_to_catalog, got %s", applied.Status)
	}

	catRes, catBody := doJSON(t, client, http.MethodGet, srv.URL+"/v0/restaurants/rest-1/catalog", nil, headers)
	if catRes.StatusCode != http.StatusOK {
		t.Fatalf("list catalog status %d: %s", catRes.StatusCode, string(catBody))
	}
	var items []domain.CatalogItem
	if err := json.Unmarshal(catBody, &items); err != nil {
		t.Fatalf("unmarshal catalog: %v", err)
	}
	if len(items) != 1 || items[0].ImageURL == nil || *items[0].ImageURL != "https://cdn.example.test/upload.png" {
		t.Fatalf("catalog image not applied: %+v", items)
	}
}

func TestBusinessRuleConflict(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	headers := authHeaders(t, "op-1")

	_, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/restaurants/rest-1/images", map[string]any{
		"catalog_item_id": "item-1",
		"mode":            "direct_upload",
		"source_url":      "https://cdn.example.test/one.png",
	}, headers)
	var job domain.ImageJob
	if err := json.Unmarshal(data, &job); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}

	if res, body := doJSON(t, client, http.MethodPost, srv.URL+"/v0/images/"+job.ID+"/approve", nil, headers); res.StatusCode != http.StatusOK {
		t.Fatalf("first approve: %d %s", res.StatusCode, string(body))
	}
	res, body := doJSON(t, client, http.MethodPost, srv.URL+"/v0/images/"+job.ID+"/approve", nil, headers)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", res.StatusCode, string(body))
	}
	env := decodeError(t, body)
	if env.Error.Kind != "business_rule" || env.Error.Code != "IMAGE_CANNOT_APPROVE" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}
}

func TestValidationAndNotFoundEnvelopes(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	headers := authHeaders(t, "op-1")

	createRes, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/restaurants/rest-1/actions", map[string]any{
		"title": "Answer reviews",
		"type":  "reply_reviews",
	}, headers)
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create action: %d %s", createRes.StatusCode, string(data))
	}
	var action domain.Action
	_ = json.Unmarshal(data, &action)

	res, body := doJSON(t, client, http.MethodPost, srv.URL+"/v0/actions/"+action.ID+"/discard", map[string]any{
		"reason": "",
	}, headers)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", res.StatusCode, string(body))
	}
	env := decodeError(t, body)
	if env.Error.Kind != "validation" || env.Error.Field != "reason" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}

	res, body = doJSON(t, client, http.MethodGet, srv.URL+"/v0/reports/nope", nil, headers)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", res.StatusCode, string(body))
	}
	env = decodeError(t, body)
	if env.Error.Kind != "not_found" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, body := doJSON(t, client, http.MethodGet, srv.URL+"/v0/restaurants/rest-1", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d %s", res.StatusCode, string(body))
	}
	env := decodeError(t, body)
	if env.Error.Kind != "unauthorized" {
		t.Fatalf("unexpected envelope: %+v", env.Error)
	}

	res, body = doJSON(t, client, http.MethodGet, srv.URL+"/v0/restaurants/rest-1", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d %s", res.StatusCode, string(body))
	}

	// Health stays open for probes.
	res, body = doJSON(t, client, http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health should not require auth: %d %s", res.StatusCode, string(body))
	}
}

func TestAPIKeyAuthRecordsActor(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	rawKey := "bb_test_key_123"
	if err := srv.Repo.InsertAPIKey(context.Background(), domain.APIKey{
		ID:        "key-1",
		ActorID:   "integration-bot",
		Name:      "ci",
		KeyHash:   repo.HashAPIKey(rawKey),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		t.Fatalf("insert api key: %v", err)
	}
	headers := map[string]string{"X-Api-Key": rawKey}

	createRes, data := doJSON(t, client, http.MethodPost, srv.URL+"/v0/restaurants/rest-1/actions", map[string]any{
		"title": "Update menu photos",
		"type":  "update_images",
	}, headers)
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create action: %d %s", createRes.StatusCode, string(data))
	}
	var action domain.Action
	_ = json.Unmarshal(data, &action)

	doneRes, doneBody := doJSON(t, client, http.MethodPost, srv.URL+"/v0/actions/"+action.ID+"/done", map[string]any{
		"evidence": "https://example.test/proof",
	}, headers)
	if doneRes.StatusCode != http.StatusOK {
		t.Fatalf("mark done: %d %s", doneRes.StatusCode, string(doneBody))
	}
	var done domain.Action
	_ = json.Unmarshal(doneBody, &done)
	if done.Status != domain.ActionDone {
		t.Fatalf("expected done, got %s", done.Status)
	}
	if done.DoneBy == nil || *done.DoneBy != "integration-bot" {
		t.Fatalf("done_by should record the API key actor: %+v", done.DoneBy)
	}
}
