package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"employee-management-system/internal/database"
	"employee-management-system/internal/logging"
	"employee-management-system/internal/mailer"
	"employee-management-system/internal/model"
	"employee-management-system/internal/service"
	"employee-management-system/internal/store"
	"employee-management-system/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(ctx context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

var resetLink = regexp.MustCompile(`/reset-password/([0-9a-f]+)`)

func (o *outbox) lastToken(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	match := resetLink.FindStringSubmatch(o.sent[len(o.sent)-1].HTML)
	require.Len(t, match, 2)
	return match[1]
}

type testServer struct {
	app        *fiber.App
	mail       *outbox
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	log := logging.Discard()
	tokens := util.NewTokenService("test-secret")
	mail := &outbox{}
	users := service.NewUserService(store.NewUserStore(db), tokens, mail, "http://localhost:5173", log)
	audit := service.NewAuditLog(db)
	employees := service.NewEmployeeService(store.NewEmployeeStore(db), nil, audit, nil, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	New(users, employees, audit, log).SetupRoutes(app)

	admin, err := users.Register(context.Background(), model.RegisterInput{
		Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	return &testServer{app: app, mail: mail, adminToken: admin.Token}
}

// do sends a JSON request and decodes the JSON response into out when out is
// not nil.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) registerEmployee(t *testing.T, email string) string {
	t.Helper()
	var resp model.AuthResponse
	status := s.do(t, http.MethodPost, "/api/users/register", "", fiber.Map{
		"name": "Staff", "email": email, "password": "secret123",
	}, &resp)
	require.Equal(t, fiber.StatusCreated, status)
	return resp.Token
}
