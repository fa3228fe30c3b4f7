package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"santafe-store/internal/domain"
	"santafe-store/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[uuid.UUID]*domain.User),
	}
}

func (m *mockUserRepository) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range m.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.emailTaken(user.Email, uuid.Nil) {
		return repository.ErrUserAlreadyExists
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.ID]; !exists {
		return repository.ErrUserNotFound
	}
	if m.emailTaken(user.Email, user.ID) {
		return repository.ErrUserAlreadyExists
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) UpsertAdmin(ctx context.Context, user *domain.User) error {
	for id, u := range m.users {
		if u.Email == user.Email {
			u.PasswordHash = user.PasswordHash
			u.IsAdmin = true
			user.ID = id
			return nil
		}
	}
	stored := *user
	stored.IsAdmin = true
	m.users[user.ID] = &stored
	return nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository(names ...string) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
	for _, name := range names {
		c := &domain.Category{ID: uuid.New(), Name: name}
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepository) byName(name string) *domain.Category {
	for _, c := range m.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if m.byName(category.Name) != nil {
		return repository.ErrCategoryAlreadyExists
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

type mockProductRepository struct {
	products   map[uuid.UUID]*domain.Product
	categories *mockCategoryRepository
	lastFilter domain.ProductFilter
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	return &mockProductRepository{
		products:   make(map[uuid.UUID]*domain.Product),
		categories: categories,
	}
}

func (m *mockProductRepository) resolveCategory(product *domain.Product) error {
	product.CategoryName = nil
	if !product.CategoryID.Valid {
		return nil
	}
	c, ok := m.categories.categories[product.CategoryID.UUID]
	if !ok {
		return repository.ErrUnknownCategory
	}
	name := c.Name
	product.CategoryName = &name
	return nil
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := m.resolveCategory(product); err != nil {
		return err
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	if err := m.resolveCategory(product); err != nil {
		return err
	}
	if product.ImageURL == nil {
		product.ImageURL = existing.ImageURL
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.lastFilter = filter
	out := []*domain.Product{}
	for _, p := range m.products {
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// mockOrderRepository keeps orders only when every line references a known
// product, mirroring the transactional insert
type mockOrderRepository struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*domain.Order
	users    *mockUserRepository
	products *mockProductRepository
	failWith error
}

func newMockOrderRepository(users *mockUserRepository, products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		users:    users,
		products: products,
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}

	for i, item := range order.Items {
		if _, ok := m.products.products[item.ProductID.UUID]; !ok {
			return fmt.Errorf("item %d: %w", i+1, repository.ErrUnknownProduct)
		}
	}

	for i, item := range order.Items {
		item.OrderID = order.ID
		item.LineNo = i + 1
	}

	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	detail := &domain.OrderDetail{
		ID:               order.ID,
		UserID:           order.UserID,
		Total:            order.Total,
		NotificationSent: order.NotificationSent,
		CreatedAt:        order.CreatedAt,
	}
	if owner, ok := m.users.users[order.UserID]; ok {
		detail.UserName = owner.Name
		detail.UserEmail = owner.Email
	}
	for _, item := range order.Items {
		line := &domain.OrderItemDetail{OrderItem: *item}
		if p, ok := m.products.products[item.ProductID.UUID]; ok {
			name := p.Name
			line.ProductName = &name
			line.ImageURL = p.ImageURL
		}
		detail.Items = append(detail.Items, line)
	}
	return detail, nil
}

func (m *mockOrderRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type mockImageStore struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{saved: make(map[string][]byte)}
}

func (m *mockImageStore) Save(ctx context.Context, name string, contentType string, r io.Reader, size int64) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved[name] = data
	return "/uploads/" + name, nil
}

func (m *mockImageStore) Delete(ctx context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}
