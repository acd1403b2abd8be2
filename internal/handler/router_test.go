package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/makeapi/makeapi-bff-go/internal/config"
	"github.com/makeapi/makeapi-bff-go/internal/domain"
	"github.com/makeapi/makeapi-bff-go/internal/handler"
	"github.com/makeapi/makeapi-bff-go/internal/infra/cache"
	"github.com/makeapi/makeapi-bff-go/internal/infra/memstore"
	"github.com/makeapi/makeapi-bff-go/internal/infra/observability"
	"github.com/makeapi/makeapi-bff-go/internal/service"

	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	cfg := &config.Config{
		CookieMaxAge: 7 * 24 * time.Hour,
		StaticDir:    "",
	}

	authSvc := service.NewAuthService(store, cache.New[*domain.Identity](time.Minute), "", "test-secret", metrics, logger)
	registrySvc := service.NewRegistryService(store, store, metrics, logger)
	itemsSvc := service.NewItemsService(store, store, metrics, logger)
	formSvc := service.NewFormService(store, itemsSvc, logger)

	return handler.NewRouter(authSvc, registrySvc, itemsSvc, formSvc, cfg, metrics, logger)
}

func doJSON(router http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginCookie(t *testing.T, router http.Handler) *http.Cookie {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"demo@makeapi.dev","password":"senha123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.AuthCookieName {
			return c
		}
	}
	t.Fatal("login did not set the auth cookie")
	return nil
}

func TestHealthz(t *testing.T) {
	rec := doJSON(newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	rec := doJSON(newTestRouter(t), http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	rec := doJSON(newTestRouter(t), http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestLogin_SetsHttpOnlyCookie(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"demo@makeapi.dev","password":"senha123"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var grant domain.TokenGrant
	if err := json.Unmarshal(rec.Body.Bytes(), &grant); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if grant.AccessToken == "" {
		t.Error("expected access_token in the body")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected exactly one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != handler.AuthCookieName || c.Value != grant.AccessToken {
		t.Errorf("cookie should carry the access token")
	}
	if !c.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Error("cookie must be SameSite=Lax")
	}
	if c.Secure {
		t.Error("cookie must not be Secure outside production")
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"demo@makeapi.dev","password":""}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(router, http.MethodPost, "/api/auth/login",
		`{"email":"demo@makeapi.dev","password":"errada"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", rec.Code)
	}

	cookie := loginCookie(t, router)
	rec = doJSON(router, http.MethodGet, "/api/me", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Success bool             `json:"success"`
		User    *domain.Identity `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !body.Success || body.User == nil {
		t.Fatal("expected success with a user")
	}
	if body.User.Name != "Demo" {
		t.Errorf("expected derived name Demo, got %q", body.User.Name)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	router := newTestRouter(t)
	cookie := loginCookie(t, router)

	rec := doJSON(router, http.MethodPost, "/api/auth/logout", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Error("logout must expire the auth cookie")
	}
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@b.c","password":"123"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@b.c","password":"123456"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp domain.RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Error("expected success with a token in the body")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("register must not set a session cookie")
	}
}

func TestEndpointsCRUD(t *testing.T) {
	router := newTestRouter(t)
	cookie := loginCookie(t, router)

	rec := doJSON(router, http.MethodGet, "/api/endpoints", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/api/endpoints",
		`{"title":"Livros","campos":[{"title":"titulo","tipo":"string","mult":false}]}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("create without cookie: expected 401, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPost, "/api/endpoints",
		`{"title":"Livros","campos":[{"title":"titulo","tipo":"string","mult":false}]}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Success bool            `json:"success"`
		Data    domain.Endpoint `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	rec = doJSON(router, http.MethodGet, "/api/endpoints/"+created.Data.ID, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodDelete, "/api/endpoints/"+created.Data.ID, "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
}

func TestGetEndpoint_AttachesItems(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/endpoints/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Data domain.Endpoint `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(body.Data.Items) != 2 {
		t.Errorf("expected 2 items on Produtos, got %d", len(body.Data.Items))
	}
}

func TestItemOwnershipMismatchIs404(t *testing.T) {
	router := newTestRouter(t)

	// Item 1 belongs to endpoint 1, not endpoint 2.
	rec := doJSON(router, http.MethodGet, "/api/endpoints/2/items/1", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEditItemForm(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/endpoints/1/items/1/form", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data service.FormView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(body.Data.Values) != 4 {
		t.Errorf("expected the full schema as key set, got %d keys", len(body.Data.Values))
	}
	if body.Data.Values["nome"] != "iPhone 15" {
		t.Errorf("unexpected nome: %v", body.Data.Values["nome"])
	}
}

func TestItemUpdateAcceptsValuesOrData(t *testing.T) {
	router := newTestRouter(t)
	cookie := loginCookie(t, router)

	rec := doJSON(router, http.MethodPut, "/api/endpoints/1/items/1",
		`{"values":{"nome":"iPhone 15 Pro","descricao":"","preco":5999,"imagem":""}}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("values shape: expected 200, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodPut, "/api/endpoints/1/items/1",
		`{"data":{"nome":"iPhone 15 Ultra","descricao":"","preco":6999,"imagem":""}}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("data shape: expected 200, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodGet, "/api/endpoints/1/items/1", "", nil)
	var body struct {
		Data domain.EndpointItem `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Data.Data["nome"] != "iPhone 15 Ultra" {
		t.Errorf("update did not stick: %v", body.Data.Data["nome"])
	}
}

func TestRouteGuard(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/home", "", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect without session, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Fhome" {
		t.Errorf("unexpected redirect target: %s", loc)
	}

	cookie := loginCookie(t, router)

	rec = doJSON(router, http.MethodGet, "/login", "", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/home" {
		t.Errorf("authenticated /login should bounce to /home, got %d %s",
			rec.Code, rec.Header().Get("Location"))
	}

	// Stale cookie still redirects: presence is not a session.
	stale := &http.Cookie{Name: handler.AuthCookieName, Value: "stale-token"}
	rec = doJSON(router, http.MethodGet, "/create", "", stale)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("stale cookie must not pass the guard, got %d", rec.Code)
	}
}

func TestUnknownAPIRouteIsJSON404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("expected JSON 404, got %s", ct)
	}
}
