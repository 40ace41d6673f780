//go:build unit

package service

import (
	"context"
	"linklyst/internal/data"
	"linklyst/internal/logger"
	"time"
)

// Hand-rolled fakes for the repository interfaces. Each records calls and
// serves canned data so service behavior can be pinned down without a
// database.

type mockUserRepository struct {
	users      map[int64]*data.User
	createErr  error
	getErr     error
	nextID     int64
	created    []*data.User
	statusSets int
	lastStatus string
	lastActive bool
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*data.User), nextID: 1}
}

func (m *mockUserRepository) add(u *data.User) *data.User {
	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepository) Create(ctx context.Context, user *data.User) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.add(user)
	m.created = append(m.created, user)
	return user.ID, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*data.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*data.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*data.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*data.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) LinkGoogleID(ctx context.Context, userID int64, googleID string) error {
	if u, ok := m.users[userID]; ok {
		u.GoogleID = &googleID
	}
	return nil
}

func (m *mockUserRepository) SetAccountStatus(ctx context.Context, userID int64, isActive, isTrial bool, status string) error {
	m.statusSets++
	m.lastStatus = status
	m.lastActive = isActive
	if u, ok := m.users[userID]; ok {
		u.IsActive = isActive
		u.IsTrial = isTrial
		u.SubscriptionStatus = status
	}
	return nil
}

func (m *mockUserRepository) SetTrialWindow(ctx context.Context, userID int64, end time.Time) error {
	if u, ok := m.users[userID]; ok {
		u.TrialEnd = &end
		u.IsTrial = true
		u.IsActive = true
		u.SubscriptionStatus = data.StatusTrial
	}
	return nil
}

func (m *mockUserRepository) ListTrialUsers(ctx context.Context) ([]*data.User, error) {
	var out []*data.User
	for _, u := range m.users {
		if u.IsTrial {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockProfileRepository struct {
	profiles  map[int64]*data.Profile
	createErr error
	updated   int
}

var _ ProfileRepository = (*mockProfileRepository)(nil)

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[int64]*data.Profile)}
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *data.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *mockProfileRepository) GetByUserID(ctx context.Context, userID int64) (*data.Profile, error) {
	return m.profiles[userID], nil
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *data.Profile) error {
	m.updated++
	m.profiles[profile.UserID] = profile
	return nil
}

type mockCategoryRepository struct {
	categories map[int64]*data.Category
	nextID     int64
	insertErr  error
	updateErr  error
	cascades   []int64
	countErr   error
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int64]*data.Category), nextID: 1}
}

func (m *mockCategoryRepository) add(c *data.Category) *data.Category {
	if c.ID == 0 {
		c.ID = m.nextID
		m.nextID++
	}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryRepository) Insert(ctx context.Context, category *data.Category) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.add(category)
	return category.ID, nil
}

func (m *mockCategoryRepository) GetOwned(ctx context.Context, id, userID int64) (*data.Category, error) {
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return c, nil
}

func (m *mockCategoryRepository) GetActive(ctx context.Context, id int64) (*data.Category, error) {
	c, ok := m.categories[id]
	if !ok || !c.IsActive {
		return nil, nil
	}
	return c, nil
}

func (m *mockCategoryRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*data.Category, error) {
	var out []*data.Category
	for _, c := range m.categories {
		if c.UserID == userID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, c := range m.categories {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *data.Category) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) DeleteCascade(ctx context.Context, id, userID int64) error {
	m.cascades = append(m.cascades, id)
	delete(m.categories, id)
	return nil
}

type mockSubcategoryRepository struct {
	subs      map[int64]*data.Subcategory
	nextID    int64
	insertErr error
	cascades  []int64
	countErr  error
}

var _ SubcategoryRepository = (*mockSubcategoryRepository)(nil)

func newMockSubcategoryRepository() *mockSubcategoryRepository {
	return &mockSubcategoryRepository{subs: make(map[int64]*data.Subcategory), nextID: 1}
}

func (m *mockSubcategoryRepository) add(s *data.Subcategory) *data.Subcategory {
	if s.ID == 0 {
		s.ID = m.nextID
		m.nextID++
	}
	m.subs[s.ID] = s
	return s
}

func (m *mockSubcategoryRepository) Insert(ctx context.Context, sub *data.Subcategory) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.add(sub)
	return sub.ID, nil
}

func (m *mockSubcategoryRepository) GetOwned(ctx context.Context, id, userID int64) (*data.Subcategory, error) {
	s, ok := m.subs[id]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	return s, nil
}

func (m *mockSubcategoryRepository) GetActive(ctx context.Context, id int64) (*data.Subcategory, error) {
	s, ok := m.subs[id]
	if !ok || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

func (m *mockSubcategoryRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]*data.Subcategory, error) {
	var out []*data.Subcategory
	for _, s := range m.subs {
		if s.CategoryID == categoryID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSubcategoryRepository) CountActiveByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, s := range m.subs {
		if s.CategoryID == categoryID && s.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockSubcategoryRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, s := range m.subs {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockSubcategoryRepository) Update(ctx context.Context, sub *data.Subcategory) error {
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockSubcategoryRepository) DeleteCascade(ctx context.Context, id, userID int64) error {
	m.cascades = append(m.cascades, id)
	delete(m.subs, id)
	return nil
}

type mockLinkRepository struct {
	links      map[int64]*data.Link
	order      []int64
	nextID     int64
	insertErr  error
	countErr   error
	reordered  []int64
	reorderErr error
	deleted    []int64
}

var _ LinkRepository = (*mockLinkRepository)(nil)

func newMockLinkRepository() *mockLinkRepository {
	return &mockLinkRepository{links: make(map[int64]*data.Link), nextID: 1}
}

func (m *mockLinkRepository) add(l *data.Link) *data.Link {
	if l.ID == 0 {
		l.ID = m.nextID
		m.nextID++
	}
	m.links[l.ID] = l
	m.order = append(m.order, l.ID)
	return l
}

func (m *mockLinkRepository) Insert(ctx context.Context, link *data.Link) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.add(link)
	return link.ID, nil
}

func (m *mockLinkRepository) GetOwned(ctx context.Context, id, userID int64) (*data.Link, error) {
	l, ok := m.links[id]
	if !ok || l.UserID != userID {
		return nil, nil
	}
	return l, nil
}

func (m *mockLinkRepository) GetByID(ctx context.Context, id int64) (*data.Link, error) {
	return m.links[id], nil
}

func (m *mockLinkRepository) ListOwnedByCategory(ctx context.Context, categoryID, userID int64) ([]*data.Link, error) {
	var out []*data.Link
	for _, id := range m.order {
		l := m.links[id]
		if l != nil && l.UserID == userID && l.CategoryID != nil && *l.CategoryID == categoryID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLinkRepository) ListOwnedBySubcategory(ctx context.Context, subcategoryID, userID int64) ([]*data.Link, error) {
	var out []*data.Link
	for _, id := range m.order {
		l := m.links[id]
		if l != nil && l.UserID == userID && l.SubcategoryID != nil && *l.SubcategoryID == subcategoryID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLinkRepository) ListPublicByCategory(ctx context.Context, categoryID int64) ([]*data.Link, error) {
	var out []*data.Link
	for _, id := range m.order {
		l := m.links[id]
		if l != nil && l.CategoryID != nil && *l.CategoryID == categoryID && l.IsActive && l.IsPublic {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLinkRepository) ListPublicBySubcategory(ctx context.Context, subcategoryID int64) ([]*data.Link, error) {
	var out []*data.Link
	for _, id := range m.order {
		l := m.links[id]
		if l != nil && l.SubcategoryID != nil && *l.SubcategoryID == subcategoryID && l.IsActive && l.IsPublic {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLinkRepository) CountBySubcategory(ctx context.Context, subcategoryID int64) (int64, error) {
	var n int64
	for _, l := range m.links {
		if l.SubcategoryID != nil && *l.SubcategoryID == subcategoryID {
			n++
		}
	}
	return n, nil
}

func (m *mockLinkRepository) CountPublicBySubcategory(ctx context.Context, subcategoryID int64) (int64, error) {
	var n int64
	for _, l := range m.links {
		if l.SubcategoryID != nil && *l.SubcategoryID == subcategoryID && l.IsActive && l.IsPublic {
			n++
		}
	}
	return n, nil
}

func (m *mockLinkRepository) ListByUser(ctx context.Context, userID int64) ([]*data.Link, error) {
	var out []*data.Link
	for _, id := range m.order {
		l := m.links[id]
		if l != nil && l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLinkRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, l := range m.links {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *mockLinkRepository) Update(ctx context.Context, link *data.Link) error {
	m.links[link.ID] = link
	return nil
}

func (m *mockLinkRepository) Delete(ctx context.Context, id, userID int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.links, id)
	return nil
}

func (m *mockLinkRepository) Reorder(ctx context.Context, userID int64, ids []int64) error {
	if m.reorderErr != nil {
		return m.reorderErr
	}
	m.reordered = ids
	return nil
}

type mockClickRepository struct {
	inserted  []int64
	insertErr error
	counts    map[int64]int64
	countsErr error
	total     int64
	totalErr  error
}

var _ ClickRepository = (*mockClickRepository)(nil)

func (m *mockClickRepository) Insert(ctx context.Context, linkID int64, referrer *string) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, linkID)
	return nil
}

func (m *mockClickRepository) CountsByUser(ctx context.Context, userID int64) (map[int64]int64, error) {
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	return m.counts, nil
}

func (m *mockClickRepository) TotalByUser(ctx context.Context, userID int64) (int64, error) {
	if m.totalErr != nil {
		return 0, m.totalErr
	}
	return m.total, nil
}

// noopLogger satisfies logger.Logger for tests that don't assert on logs.
type noopLogger struct{}

var _ logger.Logger = noopLogger{}

func (noopLogger) Debug(string)        {}
func (noopLogger) Info(string)         {}
func (noopLogger) Warn(string)         {}
func (noopLogger) Error(error, string) {}
func (noopLogger) Fatal(error, string) {}

func (l noopLogger) With(map[string]interface{}) logger.Logger { return l }
