package transport

import (
	"context"
	"net/http"
	"time"

	"santafe-store/internal/config"
	"santafe-store/internal/domain"
	"santafe-store/internal/middleware"
	"santafe-store/internal/service"
	"santafe-store/internal/session"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeUserService keeps accounts in memory with plain-text passwords
type fakeUserService struct {
	users     map[uuid.UUID]*domain.User
	passwords map[string]string
	lastInput service.UpdateUserInput
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		users:     make(map[uuid.UUID]*domain.User),
		passwords: make(map[string]string),
	}
}

func (f *fakeUserService) add(name, email, password string, admin bool) *domain.User {
	u := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		IsAdmin:   admin,
		CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	f.passwords[email] = password
	return u
}

func (f *fakeUserService) Register(_ context.Context, input service.RegisterInput) (*domain.User, error) {
	if _, exists := f.passwords[input.Email]; exists {
		return nil, &service.Error{Kind: service.KindConflict, Message: "email already registered"}
	}
	u := f.add(input.Name, input.Email, input.Password, false)
	u.Phone = input.Phone
	u.Address = input.Address
	return u, nil
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email && f.passwords[u.Email] == password {
			return u, nil
		}
	}
	return nil, &service.Error{Kind: service.KindUnauthenticated, Message: service.ErrInvalidCredentials.Error()}
}

func (f *fakeUserService) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "user not found"}
	}
	return u, nil
}

func (f *fakeUserService) Update(_ context.Context, caller domain.Identity, targetID uuid.UUID, input service.UpdateUserInput) (*domain.User, error) {
	f.lastInput = input
	if !caller.CanAccess(targetID) {
		return nil, &service.Error{Kind: service.KindForbidden, Message: "access denied"}
	}
	u, ok := f.users[targetID]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "user not found"}
	}
	u.Name = input.Name
	u.Email = input.Email
	return u, nil
}

// fakeCatalogService records the last filter and product input it was given
type fakeCatalogService struct {
	products   map[uuid.UUID]*domain.Product
	lastFilter domain.ProductFilter
	lastInput  service.ProductInput
	fail       error
}

func newFakeCatalogService() *fakeCatalogService {
	return &fakeCatalogService{products: make(map[uuid.UUID]*domain.Product)}
}

func (f *fakeCatalogService) ListCategories(context.Context) ([]*domain.Category, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return []*domain.Category{{ID: uuid.New(), Name: "Notebooks"}}, nil
}

func (f *fakeCatalogService) ListProducts(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	f.lastFilter = filter
	out := make([]*domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalogService) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "product not found"}
	}
	return p, nil
}

func (f *fakeCatalogService) CreateProduct(_ context.Context, _ domain.Identity, input service.ProductInput) (*domain.Product, error) {
	f.lastInput = input
	p := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeCatalogService) UpdateProduct(_ context.Context, _ domain.Identity, id uuid.UUID, input service.ProductInput) (*domain.Product, error) {
	f.lastInput = input
	p, ok := f.products[id]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "product not found"}
	}
	p.Name = input.Name
	p.Price = input.Price
	return p, nil
}

func (f *fakeCatalogService) DeleteProduct(_ context.Context, _ domain.Identity, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return &service.Error{Kind: service.KindNotFound, Message: "product not found"}
	}
	delete(f.products, id)
	return nil
}

// fakeOrderService stores placed orders keyed by id
type fakeOrderService struct {
	orders    map[uuid.UUID]*domain.OrderDetail
	lastLines []service.OrderLine
	lastTotal decimal.Decimal
}

func newFakeOrderService() *fakeOrderService {
	return &fakeOrderService{orders: make(map[uuid.UUID]*domain.OrderDetail)}
}

func (f *fakeOrderService) Create(_ context.Context, caller domain.Identity, lines []service.OrderLine, total decimal.Decimal) (*service.PlacedOrder, error) {
	f.lastLines = lines
	f.lastTotal = total

	order := &domain.OrderDetail{ID: uuid.New(), UserID: caller.UserID, Total: total, CreatedAt: time.Now()}
	for i, l := range lines {
		order.Items = append(order.Items, &domain.OrderItemDetail{OrderItem: domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			LineNo:    i + 1,
			ProductID: uuid.NullUUID{UUID: l.ProductID, Valid: true},
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
		}})
	}
	f.orders[order.ID] = order
	return &service.PlacedOrder{ID: order.ID, CreatedAt: order.CreatedAt}, nil
}

func (f *fakeOrderService) Get(_ context.Context, caller domain.Identity, id uuid.UUID) (*domain.OrderDetail, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "order not found"}
	}
	if !caller.CanAccess(order.UserID) {
		return nil, &service.Error{Kind: service.KindForbidden, Message: "access denied"}
	}
	return order, nil
}

type fakeHealth map[string]string

func (f fakeHealth) Health(context.Context) map[string]string { return f }

type testApp struct {
	router  http.Handler
	users   *fakeUserService
	catalog *fakeCatalogService
	orders  *fakeOrderService
}

// newTestApp mounts every handler behind a memory-backed session manager
func newTestApp() *testApp {
	logger := zap.NewNop()
	sessions := session.NewManager(memstore.New(), config.SessionConfig{
		CookieName:  "session_id",
		IdleTimeout: time.Hour,
		Lifetime:    24 * time.Hour,
	}, false)

	app := &testApp{
		users:   newFakeUserService(),
		catalog: newFakeCatalogService(),
		orders:  newFakeOrderService(),
	}

	guards := Guards{
		Authenticated: middleware.RequireAuthenticated(sessions, logger),
		Admin:         middleware.RequireAdmin(sessions, logger),
		RateLimit:     func(next http.Handler) http.Handler { return next },
	}

	r := chi.NewRouter()
	r.Use(sessions.LoadAndSave)

	auth := NewAuthHandler(app.users, sessions, logger)
	auth.RegisterRoutes(r, guards)
	NewUserHandler(app.users, auth, logger).RegisterRoutes(r, guards)
	NewCatalogHandler(app.catalog, 1<<20, logger).RegisterRoutes(r, guards)
	NewOrderHandler(app.orders, logger).RegisterRoutes(r, guards)
	NewHealthHandler(fakeHealth{"status": "up"}).RegisterRoutes(r)

	app.router = r
	return app
}
