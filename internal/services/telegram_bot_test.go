package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecanteen/internal/models"
)

type fakeTelegram struct {
	mu       sync.Mutex
	messages []map[string]string
	failSend bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Kitchen","username":"kitchen_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.failSend {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		_ = r.ParseForm()
		f.mu.Lock()
		f.messages = append(f.messages, map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		})
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 10, "date": 0, "chat": map[string]any{"id": 42, "type": "group"}},
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifier("TOKEN", srv.URL+"/bot%s/%s", 42, srv.Client())
	require.NoError(t, err)
	return n
}

func TestTelegramNotifierSendsOrder(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	err := n.NotifyNewOrder(context.Background(), &models.Order{
		OrderNumber:  "ORD000007",
		CustomerName: "Ada <Admin>",
		Items:        []models.OrderItem{{Name: "Samosa", Price: 20, Quantity: 3}},
		Total:        60,
	})
	require.NoError(t, err)

	require.Len(t, fake.messages, 1)
	msg := fake.messages[0]
	assert.Equal(t, "42", msg["chat_id"])
	assert.Equal(t, "HTML", msg["parse_mode"])
	assert.Contains(t, msg["text"], "ORD000007")
	assert.Contains(t, msg["text"], "3 x Samosa  60.00")
	assert.Contains(t, msg["text"], "Ada &lt;Admin&gt;")
}

func TestTelegramNotifierSurfacesAPIError(t *testing.T) {
	n := newTestNotifier(t, &fakeTelegram{failSend: true})

	err := n.NotifyNewOrder(context.Background(), &models.Order{OrderNumber: "ORD000001"})
	assert.Error(t, err)
}

func TestNewOrderNotifierWithoutTokenIsNoop(t *testing.T) {
	n, err := NewOrderNotifier("", 0)
	require.NoError(t, err)
	assert.NoError(t, n.NotifyNewOrder(context.Background(), &models.Order{}))
}
