//go:build unit

package handler

import (
	"context"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"linklyst/internal/service"
	"linklyst/internal/session"
	"net/http"
)

// mockSessionManager is a hand-rolled mock for the session.Manager
// interface. It records writes so tests can assert on them.
type mockSessionManager struct {
	values       map[string]interface{}
	renewed      bool
	destroyed    bool
	removed      []string
	renewTokenFn func(ctx context.Context) error
}

var _ session.Manager = (*mockSessionManager)(nil)

func newMockSessionManager() *mockSessionManager {
	return &mockSessionManager{values: make(map[string]interface{})}
}

func (m *mockSessionManager) LoadAndSave(next http.Handler) http.Handler { return next }

func (m *mockSessionManager) Put(ctx context.Context, key string, val interface{}) {
	m.values[key] = val
}

func (m *mockSessionManager) GetString(ctx context.Context, key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockSessionManager) GetInt64(ctx context.Context, key string) int64 {
	n, _ := m.values[key].(int64)
	return n
}

func (m *mockSessionManager) PopString(ctx context.Context, key string) string {
	s, _ := m.values[key].(string)
	delete(m.values, key)
	return s
}

func (m *mockSessionManager) RenewToken(ctx context.Context) error {
	m.renewed = true
	if m.renewTokenFn != nil {
		return m.renewTokenFn(ctx)
	}
	return nil
}

func (m *mockSessionManager) Destroy(ctx context.Context) error {
	m.destroyed = true
	return nil
}

func (m *mockSessionManager) Remove(ctx context.Context, key string) {
	m.removed = append(m.removed, key)
	delete(m.values, key)
}

// mockIdentityServicer covers the slice of service.IdentityServicer the
// auth handler touches.
type mockIdentityServicer struct {
	user     *data.User
	loginErr error
}

var _ service.IdentityServicer = (*mockIdentityServicer)(nil)

func (m *mockIdentityServicer) Register(ctx context.Context, email, username, password string) (*data.User, error) {
	return m.user, m.loginErr
}

func (m *mockIdentityServicer) Login(ctx context.Context, email, password string) (*data.User, error) {
	return m.user, m.loginErr
}

func (m *mockIdentityServicer) LoginWithGoogle(ctx context.Context, googleID, email, name string) (*data.User, error) {
	return m.user, m.loginErr
}

func (m *mockIdentityServicer) CurrentUser(ctx context.Context, userID int64) (*data.User, error) {
	return m.user, nil
}

func (m *mockIdentityServicer) CheckTrialExpiration(ctx context.Context, user *data.User) bool {
	return false
}

func (m *mockIdentityServicer) ProfileOf(ctx context.Context, userID int64) (*data.Profile, error) {
	return nil, nil
}

func (m *mockIdentityServicer) UpdateProfile(ctx context.Context, userID int64, in service.ProfileInput) error {
	return nil
}

// mockClickServicer stubs click recording for the redirect handler.
type mockClickServicer struct {
	target    string
	err       error
	recorded  []int64
	referrers []string
}

var _ service.ClickServicer = (*mockClickServicer)(nil)

func (m *mockClickServicer) RecordClick(ctx context.Context, linkID int64, referrer string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.recorded = append(m.recorded, linkID)
	m.referrers = append(m.referrers, referrer)
	return m.target, nil
}

func (m *mockClickServicer) UserAnalytics(ctx context.Context, userID int64) *service.AnalyticsSummary {
	return &service.AnalyticsSummary{}
}

func (m *mockClickServicer) PublicStats(ctx context.Context, username string) ([]service.LinkStat, error) {
	return nil, m.err
}

// mockPublicServicer records cache invalidations.
type mockPublicServicer struct {
	profile     *service.PublicProfile
	err         error
	invalidated []int64
}

var _ service.PublicServicer = (*mockPublicServicer)(nil)

func (m *mockPublicServicer) AssembleProfile(ctx context.Context, username string) (*service.PublicProfile, error) {
	return m.profile, m.err
}

func (m *mockPublicServicer) CategoryContent(ctx context.Context, categoryID int64) (*service.PublicCategory, error) {
	return nil, m.err
}

func (m *mockPublicServicer) SubcategoryLinks(ctx context.Context, subcategoryID int64) ([]*data.Link, error) {
	return nil, m.err
}

func (m *mockPublicServicer) InvalidateUser(ctx context.Context, userID int64) {
	m.invalidated = append(m.invalidated, userID)
}

// mockHierarchyServicer stubs the hierarchy operations. Only reorder is
// exercised directly; the rest return zero values.
type mockHierarchyServicer struct {
	reordered  [][]int64
	reorderErr error
}

var _ service.HierarchyServicer = (*mockHierarchyServicer)(nil)

func (m *mockHierarchyServicer) CreateCategory(ctx context.Context, userID int64, in service.CategoryInput) (*data.Category, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) UpdateCategory(ctx context.Context, userID, id int64, in service.CategoryInput) (*data.Category, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) DeleteCategory(ctx context.Context, userID, id int64) error {
	return nil
}

func (m *mockHierarchyServicer) GetCategory(ctx context.Context, userID, id int64) (*data.Category, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) ListCategories(ctx context.Context, userID int64) ([]*data.Category, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) CategoryContents(ctx context.Context, userID, categoryID int64) (*service.CategoryContents, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) CreateSubcategory(ctx context.Context, userID, categoryID int64, in service.CategoryInput) (*data.Subcategory, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) UpdateSubcategory(ctx context.Context, userID, id int64, in service.CategoryInput) (*data.Subcategory, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) DeleteSubcategory(ctx context.Context, userID, id int64) error {
	return nil
}

func (m *mockHierarchyServicer) GetSubcategory(ctx context.Context, userID, id int64) (*data.Subcategory, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) SubcategoryLinks(ctx context.Context, userID, subcategoryID int64) (*data.Subcategory, []*data.Link, error) {
	return nil, nil, nil
}

func (m *mockHierarchyServicer) CreateLink(ctx context.Context, userID int64, parent service.ParentRef, in service.LinkInput) (*data.Link, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) UpdateLink(ctx context.Context, userID, id int64, in service.LinkInput) (*data.Link, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) DeleteLink(ctx context.Context, userID, id int64) (service.ParentRef, error) {
	return service.ParentRef{}, nil
}

func (m *mockHierarchyServicer) GetLink(ctx context.Context, userID, id int64) (*data.Link, error) {
	return nil, nil
}

func (m *mockHierarchyServicer) ReorderLinks(ctx context.Context, userID int64, ids []int64) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.reordered = append(m.reordered, ids)
	return nil
}

// discardLogger swallows all output.
type discardLogger struct{}

var _ logger.Logger = discardLogger{}

func (discardLogger) Debug(string)        {}
func (discardLogger) Info(string)         {}
func (discardLogger) Warn(string)         {}
func (discardLogger) Error(error, string) {}
func (discardLogger) Fatal(error, string) {}

func (l discardLogger) With(map[string]interface{}) logger.Logger { return l }
