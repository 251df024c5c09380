// Package testutil provides the shared test harness: an in-memory database
// with the full schema, a router with real auth middleware, and in-memory
// doubles for the external collaborators (artifact store, mailer, renderer).
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emberwatch/emberwatch/internal/access"
	fraentity "github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/middleware"
	procentity "github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/mailer"
)

const JWTSecret = "emberwatch-test-jwt-secret"

// TestEnv holds test environment resources.
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// SetupTestDB opens an isolated in-memory database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&fraentity.User{},
		&access.Permission{},
		&fraentity.Customer{},
		&fraentity.BillingAddress{},
		&fraentity.Requirement{},
		&fraentity.RequirementDefect{},
		&fraentity.RequirementImage{},
		&fraentity.STW{},
		&fraentity.STWDefect{},
		&fraentity.Report{},
		&fraentity.Quotation{},
		&fraentity.Invoice{},
		&fraentity.RateCatalogItem{},
		&procentity.Vendor{},
		&procentity.InventoryLocation{},
		&procentity.PurchaseOrder{},
		&procentity.PurchaseOrderItem{},
		&procentity.PurchaseOrderInvoice{},
		&procentity.PurchaseOrderReceivedInventory{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group behind the real JWT middleware.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid signed token for the given principal.
func GenerateTestToken(userID, name, email, role string) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "emberwatch",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        fmt.Sprintf("test-jti-%d", now.UnixNano()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user.
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Admin", "admin@test.com", "admin")
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON envelope into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a user row.
func SeedTestUser(t *testing.T, db *gorm.DB, id, name, email, role string) *fraentity.User {
	t.Helper()
	user := &fraentity.User{
		ID:     id,
		Name:   name,
		Email:  email,
		Role:   role,
		Active: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedPermission grants (role, module, action) with the given scope.
func SeedPermission(t *testing.T, db *gorm.DB, role, module, action, scope string) {
	t.Helper()
	perm := &access.Permission{
		ID:     fmt.Sprintf("perm-%s-%s-%s", role, module, action),
		Role:   role,
		Module: module,
		Action: action,
		Scope:  scope,
	}
	if err := db.Create(perm).Error; err != nil {
		t.Fatalf("Failed to seed permission: %v", err)
	}
}

// GrantAll grants every module/action pair to a role with the given scope.
func GrantAll(t *testing.T, db *gorm.DB, role, scope string) {
	t.Helper()
	modules := []string{
		access.ModuleRequirement, access.ModuleDefect, access.ModuleReport,
		access.ModuleSTW, access.ModuleQuotation, access.ModuleInvoice,
		access.ModuleCustomer, access.ModuleRateCatalog,
		access.ModuleVendor, access.ModulePurchaseOrder,
	}
	actions := []string{
		access.ActionList, access.ActionView, access.ActionCreate,
		access.ActionUpdate, access.ActionDelete, access.ActionApprove,
	}
	for _, m := range modules {
		for _, a := range actions {
			SeedPermission(t, db, role, m, a, scope)
		}
	}
}

// MemStore is an in-memory ArtifactStore double. It records uploads and
// deletes so tests can assert on artifact lifecycles.
type MemStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string

	// UploadErr, when set, fails the next Upload.
	UploadErr error
}

func NewMemStore() *MemStore {
	return &MemStore{Objects: make(map[string][]byte)}
}

func (s *MemStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		err := s.UploadErr
		s.UploadErr = nil
		return "", err
	}
	s.Objects[key] = data
	return key, nil
}

func (s *MemStore) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Objects[key]; !ok {
		return "", fmt.Errorf("no such object: %s", key)
	}
	return "https://storage.test/" + key + "?signed=1", nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

// Keys returns the stored object keys.
func (s *MemStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	return keys
}

// StubNotifier records sent messages; Err, when set, fails every Send.
type StubNotifier struct {
	mu   sync.Mutex
	Sent []mailer.Message
	Err  error
}

func (n *StubNotifier) Send(ctx context.Context, msg mailer.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, msg)
	return nil
}

// SentCount returns the number of delivered messages.
func (n *StubNotifier) SentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Sent)
}

// StubRenderer returns deterministic bytes derived from the template name
// and data, so content-hash comparisons behave like the real renderer.
type StubRenderer struct {
	// Err, when set, fails every Render.
	Err error
}

func (r *StubRenderer) Render(templateName string, data interface{}) ([]byte, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append([]byte(templateName+"\n"), payload...), nil
}
