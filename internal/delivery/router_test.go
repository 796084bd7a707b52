package delivery

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grouporder/internal/domain"
	"grouporder/internal/feed"
	"grouporder/internal/repository"
	"grouporder/internal/session"
	"grouporder/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status  string            `json:"Status"`
	Message string            `json:"Message"`
	Data    json.RawMessage   `json:"Data"`
	Errors  map[string]string `json:"Errors"`
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore(logger)
	changes := feed.NewLocalFeed(logger)
	router := NewRouter(UseCases{
		Auth:    usecase.NewAuthUseCase(store, session.NewMemoryStore(time.Hour), changes, logger),
		Catalog: usecase.NewCatalogUseCase(store, changes, logger),
		Orders:  usecase.NewOrderUseCase(store, changes, "http://localhost:3000", logger),
	}, logger)
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) decode(env envelope, target interface{}) {
	s.t.Helper()
	require.NoError(s.t, json.Unmarshal(env.Data, target))
}

// login registers a user and returns its token and id.
func (s *testServer) login(email string) (string, string) {
	s.t.Helper()
	creds := map[string]string{"email": email, "password": "Secret123"}
	code, _ := s.do(http.MethodPost, "/auth/register", "", creds)
	require.Equal(s.t, http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/auth/login", "", creds)
	require.Equal(s.t, http.StatusOK, code)
	var resp loginResponse
	s.decode(env, &resp)
	return resp.Token, resp.User.ID
}

func (s *testServer) create(path, token string, body interface{}) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, path, token, body)
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var created struct {
		ID string `json:"id"`
	}
	s.decode(env, &created)
	return created.ID
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Success", env.Status)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Fail", env.Status)

	code, _ = s.do(http.MethodGet, "/orders", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.login("alice@example.com")

	code, env := s.do(http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	var me domain.User
	s.decode(env, &me)
	assert.Equal(t, userID, me.ID)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = s.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_ValidationErrorsCarryFields(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login("alice@example.com")

	code, env := s.do(http.MethodPost, "/items", token, map[string]interface{}{"price": -1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "is required", env.Errors["name"])
	assert.Equal(t, "cannot be negative", env.Errors["price"])
	assert.Equal(t, "is required", env.Errors["shop_id"])
}

func TestRouter_BindingRulesCarryFields(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]string{"password": "is required"}, env.Errors)

	ownerToken, _ := s.login("owner@example.com")
	_, guestID := s.login("guest@example.com")
	shopID := s.create("/shops", ownerToken, map[string]string{"name": "Cafe", "phone": "555-0100"})
	orderID := s.create("/orders", ownerToken, map[string]string{"name": "Friday", "shop_id": shopID})

	code, env = s.do(http.MethodPut, "/orders/"+orderID+"/participants", ownerToken, participantsRequest{UserIDs: []string{guestID}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPut, "/orders/"+orderID+"/participants", ownerToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]string{"user_ids": "is required"}, env.Errors)

	code, env = s.do(http.MethodGet, "/orders/"+orderID+"/participants", ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	var listed participantsResponse
	s.decode(env, &listed)
	assert.Contains(t, listed.UserIDs, guestID, "a rejected body leaves participants untouched")

	code, env = s.do(http.MethodPut, "/orders/"+orderID+"/participants", ownerToken, participantsRequest{UserIDs: []string{}})
	require.Equal(t, http.StatusOK, code, env.Message)
	s.decode(env, &listed)
	assert.NotContains(t, listed.UserIDs, guestID)
	assert.Equal(t, []string{guestID}, listed.Delta.ToRemove)
}

func TestRouter_GroupOrderFlow(t *testing.T) {
	s := newTestServer(t)
	ownerToken, _ := s.login("owner@example.com")
	guestToken, guestID := s.login("guest@example.com")
	outsiderToken, _ := s.login("outsider@example.com")

	shopID := s.create("/shops", ownerToken, map[string]string{"name": "Cafe", "phone": "555-0100"})
	categoryID := s.create("/categories", ownerToken, map[string]string{"name": "Drinks"})
	latteID := s.create("/items", ownerToken, map[string]interface{}{"name": "Latte", "price": 15000, "shop_id": shopID, "category_id": categoryID})
	cakeID := s.create("/items", ownerToken, map[string]interface{}{"name": "Cake", "price": 70000, "shop_id": shopID, "category_id": categoryID})
	orderID := s.create("/orders", ownerToken, map[string]string{"name": "Friday", "shop_id": shopID})

	code, env := s.do(http.MethodPut, "/orders/"+orderID+"/participants", ownerToken, participantsRequest{UserIDs: []string{guestID}})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(http.MethodPut, "/orders/"+orderID+"/participants", guestToken, participantsRequest{UserIDs: []string{}})
	assert.Equal(t, http.StatusForbidden, code)

	for _, step := range []struct {
		token, item string
	}{
		{ownerToken, latteID},
		{guestToken, latteID},
		{guestToken, cakeID},
		{guestToken, cakeID},
	} {
		code, env := s.do(http.MethodPost, "/orders/"+orderID+"/selections/"+step.item, step.token, nil)
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	code, _ = s.do(http.MethodPost, "/orders/"+orderID+"/selections/"+latteID, outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/orders/"+orderID+"/selections/"+latteID, ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/orders/"+orderID+"/selections/"+latteID, ownerToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/orders/"+orderID+"/selections/"+latteID, ownerToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/orders/"+orderID+"/summary", guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	var summary SummaryView
	s.decode(env, &summary)
	assert.Equal(t, int64(100000), summary.GrandTotal)
	assert.Equal(t, "100,000", summary.GrandTotalText)
	require.Len(t, summary.Participants, 2)
	assert.Equal(t, "owner@example.com", summary.Participants[0].Email)
	assert.Equal(t, int64(15000), summary.Participants[0].Subtotal)
	assert.Equal(t, "85,000", summary.Participants[1].SubtotalText)

	code, env = s.do(http.MethodGet, "/orders/"+orderID+"/share", guestToken, nil)
	require.Equal(t, http.StatusOK, code)
	var share shareLinkResponse
	s.decode(env, &share)
	assert.Equal(t, "http://localhost:3000/#/order/"+orderID, share.URL)

	code, env = s.do(http.MethodGet, "/orders", outsiderToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = s.do(http.MethodGet, "/orders/"+orderID+"/summary", outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(http.MethodDelete, "/orders/"+orderID, guestToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, "/orders/"+orderID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/orders/"+orderID, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_CategoryInUseConflicts(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login("owner@example.com")

	shopID := s.create("/shops", token, map[string]string{"name": "Cafe", "phone": "1"})
	categoryID := s.create("/categories", token, map[string]string{"name": "Drinks"})
	s.create("/items", token, map[string]interface{}{"name": "Tea", "price": 100, "shop_id": shopID, "category_id": categoryID})

	code, _ := s.do(http.MethodDelete, "/categories/"+categoryID, token, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/categories", token, map[string]string{"name": "Drinks"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestRouter_StreamSummary(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login("owner@example.com")
	shopID := s.create("/shops", token, map[string]string{"name": "Cafe", "phone": "1"})
	categoryID := s.create("/categories", token, map[string]string{"name": "Drinks"})
	itemID := s.create("/items", token, map[string]interface{}{"name": "Tea", "price": 2500, "shop_id": shopID, "category_id": categoryID})
	orderID := s.create("/orders", token, map[string]string{"name": "Friday", "shop_id": shopID})

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/orders/"+orderID+"/summary/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := make(chan SummaryView, 4)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var view SummaryView
			if json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &view) == nil {
				events <- view
			}
		}
	}()

	next := func() SummaryView {
		select {
		case v, ok := <-events:
			require.True(t, ok, "stream closed")
			return v
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for event")
			return SummaryView{}
		}
	}

	assert.Equal(t, int64(0), next().GrandTotal)

	code, _ := s.do(http.MethodPost, "/orders/"+orderID+"/selections/"+itemID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2,500", next().GrandTotalText)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "85,000", FormatAmount(85000))
	assert.Equal(t, "1,234,567", FormatAmount(1234567))
}
