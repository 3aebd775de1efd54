package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
	"github.com/mmynk/shoplist/internal/storage/sqlite"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  storage.Store
	jwt    *auth.JWTManager
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	} `json:"meta"`
}

type listBody struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	OwnerUserID string   `json:"ownerUserId"`
	Members     []string `json:"members"`
	Items       []struct {
		ItemID string `json:"itemId"`
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	engine := New(Deps{
		Store:         store,
		JWTManager:    jwtManager,
		Authenticator: auth.NewPasswordAuthenticator(store),
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &testServer{t: t, engine: engine, store: store, jwt: jwtManager}
}

func (s *testServer) do(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("Failed to decode %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, env
}

// expect asserts the status code and, when msg is set, that the message contains it.
func (s *testServer) expect(rec *httptest.ResponseRecorder, env envelope, status int, msg string) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	if msg != "" && !strings.Contains(env.Message, msg) {
		s.t.Fatalf("message = %q, want it to contain %q", env.Message, msg)
	}
}

// register creates a user and returns its token and id.
func (s *testServer) register(userName, name string) (string, string) {
	s.t.Helper()
	body := fmt.Sprintf(`{"userName":%q,"password":"secret1","name":%q}`, userName, name)
	rec, _ := s.do(http.MethodPost, "/user/register", "", body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d (body %s)", userName, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		s.t.Fatalf("Failed to decode token: %v", err)
	}
	claims, err := s.jwt.Validate(resp.Token)
	if err != nil {
		s.t.Fatalf("issued token is invalid: %v", err)
	}
	return resp.Token, claims.UserID
}

func (s *testServer) createList(token, name string) listBody {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/shoppingList", token, fmt.Sprintf(`{"name":%q}`, name))
	s.expect(rec, env, http.StatusCreated, "Shopping list created successfully")
	return decodeList(s.t, env)
}

func decodeList(t *testing.T, env envelope) listBody {
	t.Helper()
	var list listBody
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("Failed to decode list %s: %v", env.Data, err)
	}
	return list
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com", "Alice")

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"duplicate username", "/user/register", `{"userName":"alice@example.com","password":"secret1","name":"Alice"}`, http.StatusBadRequest, "Username already taken"},
		{"register missing fields", "/user/register", `{"userName":"bob@example.com"}`, http.StatusUnauthorized, "Username, name and password have to be specified"},
		{"register empty body", "/user/register", ``, http.StatusUnauthorized, "Username, name and password have to be specified"},
		{"login empty body", "/user/login", ``, http.StatusUnauthorized, "Username and password have to be specified"},
		{"register bad email", "/user/register", `{"userName":"bob","password":"secret1","name":"Bob"}`, http.StatusBadRequest, "Invalid input data"},
		{"register short password", "/user/register", `{"userName":"bob@example.com","password":"123","name":"Bob"}`, http.StatusBadRequest, "Invalid input data"},
		{"register unknown field", "/user/register", `{"userName":"bob@example.com","password":"secret1","name":"Bob","role":"admin"}`, http.StatusBadRequest, "Invalid input data"},
		{"login ok", "/user/login", `{"userName":"alice@example.com","password":"secret1"}`, http.StatusOK, ""},
		{"login wrong password", "/user/login", `{"userName":"alice@example.com","password":"wrong12"}`, http.StatusUnauthorized, "Invalid password"},
		{"login unknown user", "/user/login", `{"userName":"nobody@example.com","password":"secret1"}`, http.StatusNotFound, "User not found"},
		{"login missing fields", "/user/login", `{}`, http.StatusUnauthorized, "Username and password have to be specified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := s.do(http.MethodPost, tt.path, "", tt.body)
			s.expect(rec, env, tt.wantStatus, tt.wantMsg)
		})
	}

	t.Run("isAdmin in body is ignored", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/user/register", "",
			`{"userName":"eve@example.com","password":"secret1","name":"Eve","isAdmin":true}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
		user, err := s.store.GetUserByUserName(context.Background(), "eve@example.com")
		if err != nil {
			t.Fatalf("GetUserByUserName failed: %v", err)
		}
		if user.IsAdmin {
			t.Error("registration must not grant admin")
		}
	})
}

func TestAuthGate(t *testing.T) {
	s := newTestServer(t)
	_, aliceID := s.register("alice@example.com", "Alice")

	rec, env := s.do(http.MethodGet, "/shoppingList", "", "")
	s.expect(rec, env, http.StatusUnauthorized, `Missing header "Authorization".`)

	rec, env = s.do(http.MethodGet, "/shoppingList", "garbage", "")
	s.expect(rec, env, http.StatusUnauthorized, "Wrong authorization.")

	expired, err := auth.NewJWTManager(testSecret, -time.Minute).Generate(&models.User{ID: aliceID, UserName: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	rec, env = s.do(http.MethodGet, "/shoppingList", expired, "")
	s.expect(rec, env, http.StatusUnauthorized, "Token is expired.")
}

func TestListRoundTripAndAccess(t *testing.T) {
	s := newTestServer(t)
	alice, aliceID := s.register("alice@example.com", "Alice")
	bob, _ := s.register("bob@example.com", "Bob")

	created := s.createList(alice, "Groceries")

	rec, env := s.do(http.MethodGet, "/shoppingList/"+created.ID, alice, "")
	s.expect(rec, env, http.StatusOK, "")
	got := decodeList(t, env)
	if got.ID != created.ID || got.Name != "Groceries" || got.OwnerUserID != aliceID {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Members == nil || len(got.Members) != 0 || got.Items == nil || len(got.Items) != 0 {
		t.Errorf("expected empty members and items, got %+v", got)
	}

	rec, env = s.do(http.MethodGet, "/shoppingList/"+created.ID, bob, "")
	s.expect(rec, env, http.StatusForbidden, "requires member privileges.")

	rec, env = s.do(http.MethodGet, "/shoppingList/does-not-exist", alice, "")
	s.expect(rec, env, http.StatusNotFound, "Shopping list not found")

	rec, env = s.do(http.MethodPost, "/shoppingList", alice, `{"name":"ab"}`)
	s.expect(rec, env, http.StatusBadRequest, "Invalid input data")

	rec, env = s.do(http.MethodDelete, "/shoppingList/"+created.ID, bob, "")
	s.expect(rec, env, http.StatusForbidden, "requires owner privileges.")

	rec, env = s.do(http.MethodDelete, "/shoppingList/"+created.ID, alice, "")
	s.expect(rec, env, http.StatusOK, "Shopping list deleted successfully")

	rec, env = s.do(http.MethodGet, "/shoppingList/"+created.ID, alice, "")
	s.expect(rec, env, http.StatusNotFound, "Shopping list not found")
}

func TestMembers(t *testing.T) {
	s := newTestServer(t)
	alice, aliceID := s.register("alice@example.com", "Alice")
	bob, bobID := s.register("bob@example.com", "Bob")
	carol, carolID := s.register("carol@example.com", "Carol")
	list := s.createList(alice, "Party")
	base := "/shoppingList/" + list.ID + "/members"

	rec, env := s.do(http.MethodPost, base, alice, fmt.Sprintf(`{"members":%q}`, aliceID))
	s.expect(rec, env, http.StatusBadRequest, "Owner cannot be added as a member.")

	rec, env = s.do(http.MethodPost, base, alice, `{"members":"ghost"}`)
	s.expect(rec, env, http.StatusBadRequest, "User does not exist.")

	for _, id := range []string{bobID, carolID, bobID} {
		rec, env = s.do(http.MethodPost, base, alice, fmt.Sprintf(`{"members":%q}`, id))
		s.expect(rec, env, http.StatusCreated, "Member added successfully to the list!")
	}
	if members := decodeList(t, env).Members; len(members) != 2 || members[0] != bobID || members[1] != carolID {
		t.Errorf("members = %v, want [bob carol]", members)
	}

	rec, env = s.do(http.MethodPost, base, bob, fmt.Sprintf(`{"members":%q}`, carolID))
	s.expect(rec, env, http.StatusForbidden, "requires owner privileges.")

	rec, env = s.do(http.MethodGet, "/shoppingList/"+list.ID, bob, "")
	s.expect(rec, env, http.StatusOK, "")

	rec, env = s.do(http.MethodDelete, base+"/"+carolID, bob, "")
	s.expect(rec, env, http.StatusForbidden, "Forbidden: Members can only remove themselves.")

	rec, env = s.do(http.MethodDelete, base+"/"+bobID, bob, "")
	s.expect(rec, env, http.StatusOK, "Member deleted successfully!")

	rec, env = s.do(http.MethodGet, "/shoppingList/"+list.ID, bob, "")
	s.expect(rec, env, http.StatusForbidden, "requires member privileges.")

	rec, env = s.do(http.MethodDelete, base+"/"+carolID, alice, "")
	s.expect(rec, env, http.StatusOK, "Member deleted successfully!")

	rec, env = s.do(http.MethodDelete, base+"/"+carolID, alice, "")
	s.expect(rec, env, http.StatusBadRequest, "Member is not in the list.")

	rec, env = s.do(http.MethodDelete, base+"/"+carolID, carol, "")
	s.expect(rec, env, http.StatusForbidden, "requires member privileges.")
}

func TestItems(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@example.com", "Alice")
	list := s.createList(alice, "Weekly")
	base := "/shoppingList/" + list.ID + "/items"

	rec, env := s.do(http.MethodPost, base, alice, `{"name":"Milk"}`)
	s.expect(rec, env, http.StatusCreated, "Item added successfully to the list!")
	items := decodeList(t, env).Items
	if len(items) != 1 || items[0].Name != "Milk" || items[0].Status != "UNSOLVED" {
		t.Fatalf("unexpected items: %+v", items)
	}
	milk := items[0].ItemID

	for range 2 {
		rec, env = s.do(http.MethodPatch, base+"/"+milk, alice, `{"status":"SOLVED"}`)
		s.expect(rec, env, http.StatusOK, "Item updated successfully!")
		if got := decodeList(t, env).Items[0].Status; got != "SOLVED" {
			t.Errorf("status = %s, want SOLVED", got)
		}
	}

	rec, env = s.do(http.MethodPatch, base+"/"+milk, alice, `{"status":"DONE"}`)
	s.expect(rec, env, http.StatusBadRequest, "Invalid input data")

	rec, env = s.do(http.MethodPatch, base+"/nope", alice, `{"status":"SOLVED"}`)
	s.expect(rec, env, http.StatusBadRequest, "Item does not exist.")

	rec, env = s.do(http.MethodPatch, "/shoppingList/missing/items/"+milk, alice, `{"status":"SOLVED"}`)
	s.expect(rec, env, http.StatusNotFound, "Shopping list not found")

	rec, env = s.do(http.MethodDelete, base+"/"+milk, alice, "")
	s.expect(rec, env, http.StatusOK, "Item deleted successfully!")
	if n := len(decodeList(t, env).Items); n != 0 {
		t.Errorf("expected no items, got %d", n)
	}

	rec, env = s.do(http.MethodDelete, base+"/"+milk, alice, "")
	s.expect(rec, env, http.StatusBadRequest, "Item does not exist.")
}

func TestListPagingAndAdmin(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@example.com", "Alice")
	bob, _ := s.register("bob@example.com", "Bob")
	root, _ := s.register("root@example.com", "Root")
	if err := s.store.SetAdmin(context.Background(), "root@example.com", true); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}

	var first listBody
	for i := range 3 {
		l := s.createList(alice, fmt.Sprintf("List %d", i))
		if i == 0 {
			first = l
		}
	}
	s.createList(bob, "Bob list")

	count := func(env envelope) int {
		var lists []listBody
		if err := json.Unmarshal(env.Data, &lists); err != nil {
			t.Fatalf("Failed to decode lists: %v", err)
		}
		return len(lists)
	}

	rec, env := s.do(http.MethodGet, "/shoppingList?limit=2", alice, "")
	s.expect(rec, env, http.StatusOK, "")
	if count(env) != 2 || env.Meta == nil || env.Meta.Page != 1 || env.Meta.Limit != 2 {
		t.Errorf("page 1: %d lists, meta %+v", count(env), env.Meta)
	}

	rec, env = s.do(http.MethodGet, "/shoppingList?page=2&limit=2", alice, "")
	s.expect(rec, env, http.StatusOK, "")
	if count(env) != 1 {
		t.Errorf("page 2: got %d lists, want 1", count(env))
	}

	rec, env = s.do(http.MethodGet, "/shoppingList?page=abc&limit=-1", alice, "")
	s.expect(rec, env, http.StatusOK, "")
	if env.Meta == nil || env.Meta.Page != 1 || env.Meta.Limit != 10 {
		t.Errorf("defaults not applied: %+v", env.Meta)
	}

	rec, env = s.do(http.MethodGet, "/shoppingList?page=4611686018427387905&limit=4", alice, "")
	s.expect(rec, env, http.StatusOK, "")
	if count(env) != 0 || env.Meta == nil || env.Meta.Page != 4611686018427387905 {
		t.Errorf("huge page: %d lists, meta %+v", count(env), env.Meta)
	}

	rec, env = s.do(http.MethodGet, "/shoppingList?limit=1000", alice, "")
	s.expect(rec, env, http.StatusOK, "")
	if env.Meta == nil || env.Meta.Limit != 100 {
		t.Errorf("limit not capped: %+v", env.Meta)
	}

	rec, env = s.do(http.MethodGet, "/shoppingList", root, "")
	s.expect(rec, env, http.StatusOK, "")
	if count(env) != 4 {
		t.Errorf("admin sees %d lists, want 4", count(env))
	}

	rec, env = s.do(http.MethodGet, "/shoppingList/"+first.ID, root, "")
	s.expect(rec, env, http.StatusOK, "")

	rec, env = s.do(http.MethodDelete, "/shoppingList/"+first.ID, root, "")
	s.expect(rec, env, http.StatusOK, "Shopping list deleted successfully")
}

func TestDeletedUserToken(t *testing.T) {
	s := newTestServer(t)
	alice, _ := s.register("alice@example.com", "Alice")
	list := s.createList(alice, "Groceries")

	ghost, err := s.jwt.Generate(&models.User{ID: "deleted-user", UserName: "ghost@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	rec, env := s.do(http.MethodGet, "/shoppingList/"+list.ID, ghost, "")
	s.expect(rec, env, http.StatusUnauthorized, "Wrong authorization.")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shoplist_http_requests_total") {
		t.Error("request counter not exported")
	}
}
