package transport

import (
	"net/http"
	"time"

	"santafe-store/internal/domain"
	"santafe-store/internal/middleware"
	"santafe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserProfile is the public view of a user; the password hash never leaves
// the service layer
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Address   *string   `json:"address"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

// ProductView renders a product with prices fixed to cents
type ProductView struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	CategoryID   uuid.NullUUID `json:"category_id"`
	CategoryName *string       `json:"category_name"`
	Description  string        `json:"description"`
	Price        string        `json:"price"`
	Stock        int           `json:"stock"`
	ImageURL     *string       `json:"image_url"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func newProductView(p *domain.Product) ProductView {
	return ProductView{
		ID:           p.ID,
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Description:  p.Description,
		Price:        money(p.Price),
		Stock:        p.Stock,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// OrderItemView is one line of a retrieved order
type OrderItemView struct {
	ID          uuid.UUID     `json:"id"`
	LineNo      int           `json:"line_no"`
	ProductID   uuid.NullUUID `json:"product_id"`
	ProductName *string       `json:"product_name"`
	ImageURL    *string       `json:"image_url"`
	Quantity    int           `json:"quantity"`
	UnitPrice   string        `json:"unit_price"`
	Subtotal    string        `json:"subtotal"`
}

// OrderView is a retrieved order with its owner and lines
type OrderView struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	UserName         string          `json:"user_name"`
	UserEmail        string          `json:"user_email"`
	Total            string          `json:"total"`
	NotificationSent bool            `json:"notification_sent"`
	CreatedAt        time.Time       `json:"created_at"`
	Items            []OrderItemView `json:"items"`
}

func newOrderView(o *domain.OrderDetail) OrderView {
	view := OrderView{
		ID:               o.ID,
		UserID:           o.UserID,
		UserName:         o.UserName,
		UserEmail:        o.UserEmail,
		Total:            money(o.Total),
		NotificationSent: o.NotificationSent,
		CreatedAt:        o.CreatedAt,
		Items:            make([]OrderItemView, 0, len(o.Items)),
	}

	for _, item := range o.Items {
		view.Items = append(view.Items, OrderItemView{
			ID:          item.ID,
			LineNo:      item.LineNo,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Subtotal:    money(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}

	return view
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// idParam parses the {id} URL parameter, answering 400 when it is not a UUID
func idParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithErrorCode(w, http.StatusBadRequest, service.KindInvalidInput.String(), "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// identity returns the caller placed in context by the session middleware
func identity(r *http.Request) domain.Identity {
	id, _ := middleware.GetIdentity(r.Context())
	return id
}
