package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/simplycomply/compliance-api/internal/catalog"
	"github.com/simplycomply/compliance-api/internal/core/domain"
	"github.com/simplycomply/compliance-api/internal/core/usecase"
	"github.com/simplycomply/compliance-api/internal/infrastructure/auth"
	"github.com/simplycomply/compliance-api/internal/infrastructure/repository/memory"
	"github.com/simplycomply/compliance-api/internal/infrastructure/storage/localfs"
)

const (
	testAdminEmail    = "ops@simplycomply.test"
	testAdminPassword = "operator-pass"
)

type gatewayFake struct{}

func (gatewayFake) CreateCheckoutSession(_ context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	return domain.CheckoutSession{URL: "https://checkout.test/cs_1", SessionID: "cs_1"}, nil
}

func (gatewayFake) GetCheckoutStatus(_ context.Context, sessionID string) (domain.CheckoutStatus, error) {
	return domain.CheckoutStatus{SessionID: sessionID, Status: "open", PaymentStatus: domain.PaymentUnpaid}, nil
}

func (gatewayFake) ParseWebhook(_ context.Context, _ []byte, signature string) (domain.WebhookEvent, error) {
	if signature != "good" {
		return domain.WebhookEvent{}, domain.NewError(domain.ErrUnauthorized, "verify webhook", "signature mismatch")
	}
	return domain.WebhookEvent{EventType: "checkout.session.completed", SessionID: "cs_unknown", PaymentStatus: domain.PaymentUnpaid}, nil
}

func newTestHandler(t *testing.T, opts Options) http.Handler {
	t.Helper()
	repos := memory.New()
	cat := catalog.Default()
	storage, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	tokens, err := auth.NewTokenIssuer("router-test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	adminHash, err := hasher.Hash(testAdminPassword)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	seeder := usecase.NewItemSeeder(cat, repos.Items, repos.Requirements, nil)
	engine := usecase.NewScoreEngine(repos.Businesses, repos.Items, repos.Scores, nil, nil)
	lifecycle := usecase.NewLifecycleCoordinator(seeder, engine, repos.Items, repos.Employees, repos.Requirements, nil, nil)

	svc := Services{
		Accounts:      usecase.NewAccountUseCase(repos.Users, tokens, hasher, usecase.AdminCredentials{Email: testAdminEmail, PasswordHash: adminHash}),
		Businesses:    usecase.NewBusinessUseCase(repos.Businesses, lifecycle),
		Compliance:    usecase.NewComplianceUseCase(repos.Businesses, repos.Items, repos.Notifications, storage, lifecycle, engine),
		Employees:     usecase.NewEmployeeUseCase(repos.Businesses, repos.Employees, repos.Requirements, cat, lifecycle),
		Insights:      usecase.NewInsightsUseCase(repos.Businesses, repos.Items, repos.Employees, repos.Requirements),
		Notifications: usecase.NewNotificationUseCase(repos.Notifications),
		Subscriptions: usecase.NewSubscriptionUseCase(repos.Businesses, repos.Transactions, repos.Notifications, gatewayFake{}, nil),
		Admin:         usecase.NewAdminUseCase(repos.Users, repos.Businesses, repos.Scores, repos.Transactions, nil),
		Library:       usecase.NewDocumentLibraryUseCase(repos.Documents, storage),
		Catalog:       cat,
	}
	return NewRouter(svc, opts).Handler()
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res := httptest.NewRecorder()
	c.handler.ServeHTTP(res, req)
	return res
}

func (c *apiClient) decode(res *httptest.ResponseRecorder, wantStatus int, dst any) {
	c.t.Helper()
	if res.Code != wantStatus {
		c.t.Fatalf("status = %d, want %d, body = %s", res.Code, wantStatus, res.Body.String())
	}
	if dst == nil {
		return
	}
	if err := json.Unmarshal(res.Body.Bytes(), dst); err != nil {
		c.t.Fatalf("decode response: %v, body = %s", err, res.Body.String())
	}
}

func signup(t *testing.T, handler http.Handler, email string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, handler: handler}
	var session domain.Session
	c.decode(c.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":     email,
		"password":  "s3cret-pass",
		"full_name": "Test Owner",
	}), http.StatusOK, &session)
	if session.AccessToken == "" || session.TokenType != "bearer" {
		t.Fatalf("unexpected session %+v", session)
	}
	c.token = session.AccessToken
	return c
}

func createOfficeBusiness(c *apiClient) domain.Business {
	var business domain.Business
	c.decode(c.do(http.MethodPost, "/api/business", map[string]string{
		"name":      "Acme Lettings",
		"industry":  "Professional services",
		"sector":    "office",
		"size":      "micro",
		"uk_nation": "England",
	}), http.StatusOK, &business)
	return business
}

func TestOwnerChecklistFlow(t *testing.T) {
	c := signup(t, newTestHandler(t, Options{}), "owner@example.com")

	res := c.do(http.MethodGet, "/api/business", nil)
	if res.Code != http.StatusOK || strings.TrimSpace(res.Body.String()) != "null" {
		t.Fatalf("GET /api/business without business = %d %s", res.Code, res.Body.String())
	}

	business := createOfficeBusiness(c)
	if business.SubscriptionStatus != domain.SubscriptionInactive {
		t.Fatalf("new business subscription = %q", business.SubscriptionStatus)
	}
	c.decode(c.do(http.MethodPost, "/api/business", map[string]string{
		"name": "Second", "industry": "x", "sector": "office", "size": "micro", "uk_nation": "Wales",
	}), http.StatusConflict, nil)

	var items []domain.ComplianceItem
	c.decode(c.do(http.MethodGet, "/api/compliance/items", nil), http.StatusOK, &items)
	if len(items) != 9 {
		t.Fatalf("seeded items = %d, want 9", len(items))
	}

	var score domain.ComplianceScore
	c.decode(c.do(http.MethodGet, "/api/compliance/score", nil), http.StatusOK, &score)
	if score.ScorePercent != 0 || score.RequiredTotal != 9 {
		t.Fatalf("initial score = %+v", score)
	}

	var updated domain.ComplianceItem
	c.decode(c.do(http.MethodPut, "/api/compliance/items/"+items[0].ID, map[string]any{"is_acknowledged": true}), http.StatusOK, &updated)
	if updated.Status != domain.ItemStatusAcknowledged || updated.NextReviewDue == nil {
		t.Fatalf("acknowledged item = %+v", updated)
	}

	c.decode(c.do(http.MethodGet, "/api/compliance/score", nil), http.StatusOK, &score)
	if score.CompletedTotal != 1 || score.ScorePercent != 11 {
		t.Fatalf("score after acknowledge = %+v", score)
	}

	var notes []domain.Notification
	c.decode(c.do(http.MethodGet, "/api/notifications", nil), http.StatusOK, &notes)
	if len(notes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notes))
	}

	var stats domain.DashboardStats
	c.decode(c.do(http.MethodGet, "/api/dashboard/stats", nil), http.StatusOK, &stats)
	if !stats.HasBusiness || stats.TotalDocuments != 9 || stats.Completed != 1 {
		t.Fatalf("dashboard = %+v", stats)
	}

	filtered := []domain.ComplianceItem{}
	c.decode(c.do(http.MethodGet, "/api/compliance/items?status=acknowledged", nil), http.StatusOK, &filtered)
	if len(filtered) != 1 || filtered[0].ID != items[0].ID {
		t.Fatalf("status filter returned %+v", filtered)
	}
}

func TestUpdateItemRejectsUnknownAndDerivedStatus(t *testing.T) {
	c := signup(t, newTestHandler(t, Options{}), "owner@example.com")
	createOfficeBusiness(c)
	var items []domain.ComplianceItem
	c.decode(c.do(http.MethodGet, "/api/compliance/items", nil), http.StatusOK, &items)

	for _, status := range []string{"finished", "overdue"} {
		var body map[string]string
		c.decode(c.do(http.MethodPut, "/api/compliance/items/"+items[0].ID, map[string]any{"status": status}), http.StatusBadRequest, &body)
		if body["detail"] == "" {
			t.Fatalf("status %q: expected detail message", status)
		}
	}
	c.decode(c.do(http.MethodGet, "/api/compliance/items/missing-id", nil), http.StatusNotFound, nil)
	c.decode(c.do(http.MethodGet, "/api/compliance/items?item_type=brochure", nil), http.StatusBadRequest, nil)
}

func TestItemFileUpload(t *testing.T) {
	c := signup(t, newTestHandler(t, Options{}), "owner@example.com")
	createOfficeBusiness(c)
	var items []domain.ComplianceItem
	c.decode(c.do(http.MethodGet, "/api/compliance/items", nil), http.StatusOK, &items)

	res := c.upload("/api/compliance/items/"+items[0].ID+"/file", "policy.pdf", "application/pdf", []byte("%PDF-1.4"), nil)
	var item domain.ComplianceItem
	c.decode(res, http.StatusOK, &item)
	if item.Status != domain.ItemStatusUploaded || item.FileURL == nil || !strings.HasPrefix(*item.FileURL, "private-documents/") {
		t.Fatalf("uploaded item = %+v", item)
	}

	var link map[string]any
	c.decode(c.do(http.MethodGet, "/api/compliance/items/"+items[0].ID+"/file", nil), http.StatusOK, &link)
	if url, _ := link["url"].(string); !strings.HasPrefix(url, "file://") {
		t.Fatalf("download link = %+v", link)
	}

	c.decode(c.upload("/api/compliance/items/"+items[1].ID+"/file", "run.exe", "application/x-msdownload", []byte("MZ"), nil), http.StatusBadRequest, nil)
}

func (c *apiClient) upload(path, fileName, contentType string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		c.t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)
	res := httptest.NewRecorder()
	c.handler.ServeHTTP(res, req)
	return res
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	handler := newTestHandler(t, Options{})
	anon := &apiClient{t: t, handler: handler}
	anon.decode(anon.do(http.MethodGet, "/api/auth/me", nil), http.StatusUnauthorized, nil)

	forged := &apiClient{t: t, handler: handler, token: "not-a-jwt"}
	forged.decode(forged.do(http.MethodGet, "/api/dashboard/stats", nil), http.StatusUnauthorized, nil)

	anon.decode(anon.do(http.MethodGet, "/api/reference/nations", nil), http.StatusOK, nil)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	handler := newTestHandler(t, Options{})
	owner := signup(t, handler, "owner@example.com")
	createOfficeBusiness(owner)
	owner.decode(owner.do(http.MethodGet, "/api/admin/stats", nil), http.StatusForbidden, nil)

	admin := &apiClient{t: t, handler: handler}
	admin.decode(admin.do(http.MethodPost, "/api/admin/login", map[string]string{"email": testAdminEmail, "password": "wrong"}), http.StatusUnauthorized, nil)
	var session domain.Session
	admin.decode(admin.do(http.MethodPost, "/api/admin/login", map[string]string{"email": testAdminEmail, "password": testAdminPassword}), http.StatusOK, &session)
	admin.token = session.AccessToken

	var stats domain.AdminStats
	admin.decode(admin.do(http.MethodGet, "/api/admin/stats", nil), http.StatusOK, &stats)
	if stats.TotalUsers != 1 || stats.TotalBusinesses != 1 {
		t.Fatalf("admin stats = %+v", stats)
	}

	var doc domain.Document
	admin.decode(admin.upload("/api/admin/documents", "handbook.txt", "text/plain", []byte("rules"), map[string]string{"title": "Staff handbook"}), http.StatusOK, &doc)
	if doc.Title != "Staff handbook" || !strings.HasSuffix(doc.StorageKey, ".txt") {
		t.Fatalf("library document = %+v", doc)
	}
	admin.decode(admin.do(http.MethodDelete, "/api/admin/documents/"+doc.ID, nil), http.StatusOK, nil)
	admin.decode(admin.do(http.MethodGet, "/api/admin/documents/"+doc.ID+"/download", nil), http.StatusNotFound, nil)
}

func TestSignupValidation(t *testing.T) {
	c := &apiClient{t: t, handler: newTestHandler(t, Options{})}
	var body map[string]string
	c.decode(c.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": "not-an-email", "password": "s3cret-pass", "full_name": "X"}), http.StatusBadRequest, &body)
	if !strings.Contains(body["detail"], "email: email") {
		t.Fatalf("detail = %q", body["detail"])
	}
	signup(t, c.handler, "dup@example.com")
	c.decode(c.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": "DUP@example.com", "password": "s3cret-pass", "full_name": "X"}), http.StatusConflict, nil)
}

func TestStripeWebhookAlwaysAcknowledges(t *testing.T) {
	handler := newTestHandler(t, Options{})
	for signature, wantStatus := range map[string]string{"bad": "error", "good": "success"} {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook/stripe", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", signature)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("signature %q: status = %d", signature, res.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode webhook response: %v", err)
		}
		if body["status"] != wantStatus {
			t.Fatalf("signature %q: body = %+v", signature, body)
		}
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := map[error]int{
		domain.ErrInvalidInput:  http.StatusBadRequest,
		domain.ErrUnauthorized:  http.StatusUnauthorized,
		domain.ErrForbidden:     http.StatusForbidden,
		domain.ErrNotFound:      http.StatusNotFound,
		domain.ErrConflict:      http.StatusConflict,
		domain.ErrUpstream:      http.StatusBadGateway,
		domain.ErrTemporary:     http.StatusServiceUnavailable,
		errors.New("boom"):      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		err := domain.WrapError(kind, "op", errors.New("cause"))
		if got := mapErrorToHTTPStatus(err); got != want {
			t.Fatalf("mapErrorToHTTPStatus(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	handler := newTestHandler(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("request id header = %q", res.Header().Get(requestIDHeader))
	}
}
