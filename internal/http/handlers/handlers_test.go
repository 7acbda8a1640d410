package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardmarket-backend/internal/data/repos"
	"github.com/yungbote/cardmarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/cardmarket-backend/internal/domain"
	"github.com/yungbote/cardmarket-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardmarket-backend/internal/services"
)

type env struct {
	db     *gorm.DB
	engine *gin.Engine
}

// newEnv wires real services over a private sqlite store. The X-Test-User header
// stands in for the auth middleware.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	cardRepo := repos.NewCardRepo(db, log)
	offerRepo := repos.NewTradeOfferRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)

	market := NewMarketplaceHandler(log, services.NewMarketplaceService(db, log, userRepo, cardRepo, nil, nil))
	cards := NewCardHandler(log, services.NewCardService(db, log, userRepo, cardRepo, nil, nil))
	trades := NewTradeHandler(log, services.NewTradeService(db, log, userRepo, cardRepo, offerRepo, nil, nil))
	users := NewUserHandler(log, services.NewUserService(db, log, userRepo, tokenRepo, cardRepo, offerRepo))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			id, _ := uuid.Parse(raw)
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id}))
		}
		c.Next()
	})
	r.GET("/api/marketplace", market.Browse)
	r.POST("/api/marketplace/listings", market.ListForSale)
	r.DELETE("/api/marketplace/listings/:card_id", market.Unlist)
	r.POST("/api/marketplace/purchases", market.Purchase)
	r.GET("/api/cards/:id", cards.Get)
	r.POST("/api/cards/transfer", cards.Transfer)
	r.GET("/api/users/:username/cards", cards.ListByUser)
	r.GET("/api/users/:username/cards/unlisted", cards.ListUnlistedByUser)
	r.POST("/api/trades", trades.Create)
	r.GET("/api/trades", trades.List)
	r.GET("/api/trades/:id", trades.Get)
	r.POST("/api/trades/:id/actions", trades.Respond)
	r.GET("/api/me", users.GetMe)
	r.DELETE("/api/me", users.DeleteMe)
	r.GET("/healthcheck", NewHealthHandler(db).HealthCheck)
	return &env{db: db, engine: r}
}

func (e *env) do(t *testing.T, method, path string, as *types.User, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-Test-User", as.ID.String())
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (e *env) seedUser(t *testing.T, name string, balance int64) *types.User {
	return testutil.SeedUser(t, context.Background(), e.db, name, balance)
}

func (e *env) seedCard(t *testing.T, owner *types.User, name string, price int64) *types.Card {
	return testutil.SeedCard(t, context.Background(), e.db, owner.ID, name, price)
}

func TestMarketplaceFlow(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 100)
	b := e.seedUser(t, "bob", 100)
	x := e.seedCard(t, a, "Card X", types.NotForSale)

	rec, body := e.do(t, http.MethodPost, "/api/marketplace/listings", a, gin.H{"card_id": x.ID, "price": 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	if card := body["card"].(map[string]any); card["price"].(float64) != 40 || card["for_sale"] != true {
		t.Fatalf("list: card %v", card)
	}

	rec, body = e.do(t, http.MethodGet, "/api/marketplace?name=card", nil, nil)
	if rec.Code != http.StatusOK || len(body["cards"].([]any)) != 1 {
		t.Fatalf("browse: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = e.do(t, http.MethodPost, "/api/marketplace/purchases", b, gin.H{"card_id": x.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("purchase: %d %s", rec.Code, rec.Body.String())
	}
	if body["new_balance"].(float64) != 60 || body["message"] == "" {
		t.Fatalf("purchase: body %v", body)
	}
	card := body["card"].(map[string]any)
	if card["owner"] != b.ID.String() || card["price"].(float64) != -1 {
		t.Fatalf("purchase: card %v", card)
	}

	rec, body = e.do(t, http.MethodPost, "/api/marketplace/purchases", b, gin.H{"card_id": x.ID})
	if rec.Code != http.StatusConflict || errorCode(body) != "not_for_sale" {
		t.Fatalf("repurchase: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMarketplaceErrors(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 100)
	b := e.seedUser(t, "bob", 5)
	x := e.seedCard(t, a, "Card X", 50)

	cases := []struct {
		name   string
		method string
		path   string
		as     *types.User
		body   any
		status int
		code   string
	}{
		{"zero price", http.MethodPost, "/api/marketplace/listings", a, gin.H{"card_id": x.ID, "price": 0}, http.StatusBadRequest, "invalid_price"},
		{"missing price", http.MethodPost, "/api/marketplace/listings", a, gin.H{"card_id": x.ID}, http.StatusBadRequest, "invalid_request"},
		{"bad card id", http.MethodPost, "/api/marketplace/listings", a, gin.H{"card_id": "nope", "price": 3}, http.StatusBadRequest, "invalid_request"},
		{"not owner lists", http.MethodPost, "/api/marketplace/listings", b, gin.H{"card_id": x.ID, "price": 3}, http.StatusForbidden, "not_owner"},
		{"not owner unlists", http.MethodDelete, "/api/marketplace/listings/" + x.ID.String(), b, nil, http.StatusForbidden, "not_owner"},
		{"unknown card", http.MethodPost, "/api/marketplace/purchases", b, gin.H{"card_id": uuid.New()}, http.StatusNotFound, "not_found"},
		{"own card", http.MethodPost, "/api/marketplace/purchases", a, gin.H{"card_id": x.ID}, http.StatusForbidden, "already_owned"},
		{"insufficient funds", http.MethodPost, "/api/marketplace/purchases", b, gin.H{"card_id": x.ID}, http.StatusConflict, "insufficient_funds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := e.do(t, tc.method, tc.path, tc.as, tc.body)
			if rec.Code != tc.status || errorCode(body) != tc.code {
				t.Fatalf("got %d %s, want %d %s", rec.Code, rec.Body.String(), tc.status, tc.code)
			}
		})
	}
}

func TestCardEndpoints(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 0)
	e.seedUser(t, "bob", 0)
	x := e.seedCard(t, a, "Card X", 7)
	e.seedCard(t, a, "Card Y", types.NotForSale)

	rec, body := e.do(t, http.MethodGet, "/api/cards/"+x.ID.String(), nil, nil)
	if rec.Code != http.StatusOK || body["card"].(map[string]any)["owner_username"] != "alice" {
		t.Fatalf("get card: %d %s", rec.Code, rec.Body.String())
	}
	rec, body = e.do(t, http.MethodGet, "/api/users/alice/cards/unlisted", nil, nil)
	if rec.Code != http.StatusOK || len(body["cards"].([]any)) != 1 {
		t.Fatalf("unlisted: %d %s", rec.Code, rec.Body.String())
	}
	rec, body = e.do(t, http.MethodGet, "/api/users/alice/cards", nil, nil)
	if rec.Code != http.StatusOK || len(body["cards"].([]any)) != 2 {
		t.Fatalf("all cards: %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := e.do(t, http.MethodGet, "/api/users/nobody/cards", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: %d", rec.Code)
	}

	rec, body = e.do(t, http.MethodPost, "/api/cards/transfer", a, gin.H{"card_id": x.ID, "recipient_username": "alice"})
	if rec.Code != http.StatusForbidden || errorCode(body) != "self_transfer" {
		t.Fatalf("self transfer: %d %s", rec.Code, rec.Body.String())
	}
	rec, body = e.do(t, http.MethodPost, "/api/cards/transfer", a, gin.H{"card_id": x.ID, "recipient_username": "bob"})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer: %d %s", rec.Code, rec.Body.String())
	}
	if card := body["card"].(map[string]any); card["price"].(float64) != -1 {
		t.Fatalf("transfer must delist: %v", card)
	}
}

func TestTradeEndpoints(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 0)
	b := e.seedUser(t, "bob", 0)
	c := e.seedUser(t, "carol", 0)
	p := e.seedCard(t, a, "P", types.NotForSale)
	q := e.seedCard(t, b, "Q", types.NotForSale)

	rec, body := e.do(t, http.MethodPost, "/api/trades", a, gin.H{
		"recipient_username": "bob",
		"sender_card_id":     p.ID,
		"recipient_card_id":  q.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	trade := body["trade"].(map[string]any)
	if trade["status"] != "pending" || trade["sender_username"] != "alice" || trade["recipient_card_name"] != "Q" {
		t.Fatalf("create: trade %v", trade)
	}
	id := trade["id"].(string)

	if rec, body := e.do(t, http.MethodGet, "/api/trades/"+id, c, nil); rec.Code != http.StatusForbidden || errorCode(body) != "forbidden" {
		t.Fatalf("outsider get: %d %s", rec.Code, rec.Body.String())
	}
	if rec, body := e.do(t, http.MethodPost, "/api/trades/"+id+"/actions", b, gin.H{"action": "steal"}); rec.Code != http.StatusBadRequest || errorCode(body) != "invalid_action" {
		t.Fatalf("bad action: %d %s", rec.Code, rec.Body.String())
	}
	if rec, body := e.do(t, http.MethodPost, "/api/trades/"+id+"/actions", a, gin.H{"action": "accept"}); rec.Code != http.StatusForbidden || errorCode(body) != "forbidden" {
		t.Fatalf("sender accept: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = e.do(t, http.MethodPost, "/api/trades/"+id+"/actions", b, gin.H{"action": "accept"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	if trade := body["trade"].(map[string]any); trade["status"] != "accepted" {
		t.Fatalf("accept: trade %v", trade)
	}

	rec, body = e.do(t, http.MethodPost, "/api/trades/"+id+"/actions", a, gin.H{"action": "cancel"})
	if rec.Code != http.StatusConflict || errorCode(body) != "invalid_transition" {
		t.Fatalf("cancel accepted: %d %s", rec.Code, rec.Body.String())
	}

	rec, body = e.do(t, http.MethodGet, "/api/trades?status=accepted", a, nil)
	if rec.Code != http.StatusOK || len(body["trades"].([]any)) != 1 {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	if rec, _ := e.do(t, http.MethodGet, "/api/trades?status=weird", a, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("list bad status: %d", rec.Code)
	}
}

func TestStaleTradeReturnsCanceledOffer(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 0)
	b := e.seedUser(t, "bob", 0)
	c := e.seedUser(t, "carol", 0)
	p := e.seedCard(t, a, "P", types.NotForSale)
	q := e.seedCard(t, b, "Q", types.NotForSale)
	offer := testutil.SeedOffer(t, context.Background(), e.db, a, b, p, q, types.TradePending)

	if rec, _ := e.do(t, http.MethodPost, "/api/cards/transfer", a, gin.H{"card_id": p.ID, "recipient_username": c.Username}); rec.Code != http.StatusOK {
		t.Fatalf("transfer: %d", rec.Code)
	}
	rec, body := e.do(t, http.MethodPost, "/api/trades/"+offer.ID.String()+"/actions", b, gin.H{"action": "accept"})
	if rec.Code != http.StatusConflict || errorCode(body) != "stale_ownership" {
		t.Fatalf("stale accept: %d %s", rec.Code, rec.Body.String())
	}
	if trade, _ := body["trade"].(map[string]any); trade == nil || trade["status"] != "canceled" {
		t.Fatalf("stale accept: trade %v", body["trade"])
	}
}

func TestMeEndpoints(t *testing.T) {
	e := newEnv(t)
	a := e.seedUser(t, "alice", 12)

	rec, body := e.do(t, http.MethodGet, "/api/me", a, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}
	me := body["me"].(map[string]any)
	if me["username"] != "alice" || me["account_balance"].(float64) != 12 {
		t.Fatalf("me: %v", me)
	}
	if _, ok := me["password"]; ok {
		t.Fatalf("me leaks password hash")
	}

	if rec, _ := e.do(t, http.MethodDelete, "/api/me", a, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete me: %d", rec.Code)
	}
	if rec, _ := e.do(t, http.MethodGet, "/api/me", a, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("me after delete: %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}
