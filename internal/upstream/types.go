package upstream

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the wire enumeration for the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func ParseOrderStatus(value string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, true
	case StatusPreparing:
		return StatusPreparing, true
	case StatusReady:
		return StatusReady, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

type OrderOption struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

type OrderItem struct {
	ID           string        `json:"id"`
	MenuItemID   int64         `json:"menuItemId"`
	MenuItemName string        `json:"menuItemName"`
	Quantity     int           `json:"quantity"`
	BasePrice    float64       `json:"basePrice"`
	FinalPrice   float64       `json:"finalPrice"`
	Notes        string        `json:"notes"`
	Options      []OrderOption `json:"options"`
}

type OrderUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order carries server-supplied values only; money fields are displayed as
// received and never recomputed here.
type Order struct {
	ID           string      `json:"id"`
	OrderNumber  string      `json:"orderNumber"`
	Status       OrderStatus `json:"status"`
	Type         OrderType   `json:"type"`
	Items        []OrderItem `json:"items"`
	User         OrderUser   `json:"user"`
	TotalAmount  float64     `json:"totalAmount"`
	FinalAmount  float64     `json:"finalAmount"`
	Notes        string      `json:"notes"`
	EarnedPoints int         `json:"earnedPoints"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// DisplayNumber falls back to the id suffix when the server issued no order
// number, matching how the dashboard has always labeled orders.
func (o Order) DisplayNumber() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

func (o Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// Validate is the decode gate for order payloads. Upstream data that fails
// here never reaches the local view.
func (o Order) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("order id is empty")
	}
	if _, ok := ParseOrderStatus(string(o.Status)); !ok {
		return fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	if o.FinalAmount > o.TotalAmount {
		return fmt.Errorf("order %s: finalAmount %.2f exceeds totalAmount %.2f", o.ID, o.FinalAmount, o.TotalAmount)
	}
	for i, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("order %s: item %d has quantity %d", o.ID, i, item.Quantity)
		}
	}
	return nil
}

type MenuItemOption struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Category   string  `json:"category"`
	IsDefault  bool    `json:"isDefault"`
	IsRequired bool    `json:"isRequired"`
	MenuItemID int64   `json:"menuItemId"`
}

type MenuItem struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Price       float64          `json:"price"`
	Points      int              `json:"points"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Options     []MenuItemOption `json:"options"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PromotionType string

const (
	PromotionDiscountPercentage PromotionType = "DISCOUNT_PERCENTAGE"
	PromotionDiscountAmount     PromotionType = "DISCOUNT_AMOUNT"
	PromotionBuyXGetY           PromotionType = "BUY_X_GET_Y"
)

type Promotion struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Type        PromotionType `json:"type"`
	Value       float64       `json:"value"`
	MinAmount   *float64      `json:"minAmount,omitempty"`
	MaxAmount   *float64      `json:"maxAmount,omitempty"`
	BuyQuantity *int          `json:"buyQuantity,omitempty"`
	GetQuantity *int          `json:"getQuantity,omitempty"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	IsActive    bool          `json:"isActive"`
	MaxUses     *int          `json:"maxUses,omitempty"`
	UsedCount   int           `json:"usedCount"`
	IsPersonal  bool          `json:"isPersonal"`
	UserID      string        `json:"userId,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Points    int       `json:"points"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type FreeProduct struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	MenuItemID int64     `json:"menuItemId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
}

type Comment struct {
	ID         int64     `json:"id"`
	MenuItemID int64     `json:"menuItemId"`
	Text       string    `json:"text"`
	UserName   string    `json:"userName"`
	CreatedAt  time.Time `json:"createdAt"`
}

type BlogCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type BlogPost struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	CategoryID string    `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type QRCode struct {
	QRID   string `json:"qrId"`
	Points int    `json:"points"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
