package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client talks to the coffee-shop platform API on behalf of the dashboard.
// It holds the service's own upstream token and re-authenticates once when
// the token is rejected; a second rejection surfaces as unauthenticated.
type Client struct {
	baseURL  string
	email    string
	password string
	http     *http.Client
	logger   *zap.Logger

	mu    sync.RWMutex
	token string
}

type Options struct {
	BaseURL  string
	Email    string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		email:    opts.Email,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout},
		logger:   log,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Authenticate signs the service in with its configured operator account and
// stores the issued token. Non-admin accounts are rejected.
func (c *Client) Authenticate(ctx context.Context) error {
	result, err := c.Login(ctx, c.email, c.password)
	if err != nil {
		return err
	}
	c.setToken(result.Token)
	return nil
}

// Login verifies operator credentials against the platform. The platform
// issues tokens to any account; the admin check here mirrors what the
// dashboard has always enforced before letting anyone in.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var envelope struct {
		Data LoginResult `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &envelope, false); err != nil {
		return LoginResult{}, err
	}
	if !envelope.Data.User.IsAdmin {
		return LoginResult{}, UnauthenticatedError("account has no admin access")
	}
	return envelope.Data, nil
}

// --- Orders ---

func (c *Client) ListAdminOrders(ctx context.Context) ([]Order, error) {
	var payload struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/order/admin/all", nil, &payload, true); err != nil {
		return nil, err
	}
	for _, order := range payload.Orders {
		if err := order.Validate(); err != nil {
			return nil, DecodeError("order list failed validation", err)
		}
	}
	return payload.Orders, nil
}

func (c *Client) GetAdminOrder(ctx context.Context, orderID string) (Order, error) {
	var order Order
	path := "/order/admin/details/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &order, true); err != nil {
		return Order{}, err
	}
	if err := order.Validate(); err != nil {
		return Order{}, DecodeError("order detail failed validation", err)
	}
	return order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error {
	body := map[string]string{"status": string(status)}
	path := "/order/admin/update/" + url.PathEscape(orderID)
	return c.do(ctx, http.MethodPatch, path, body, nil, true)
}

// --- Menu ---

type MenuItemInput struct {
	Name        string           `json:"name"`
	Price       float64          `json:"price"`
	Points      int              `json:"points"`
	Description string           `json:"description"`
	Image       string           `json:"image,omitempty"`
	Category    string           `json:"category"`
	Options     []MenuItemOption `json:"options,omitempty"`
}

func (c *Client) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &items, true); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	var item MenuItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/menu/%d", id), nil, &item, true); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, input MenuItemInput) (MenuItem, error) {
	var item MenuItem
	if err := c.do(ctx, http.MethodPost, "/menu", input, &item, true); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, id int64, input MenuItemInput) (MenuItem, error) {
	var item MenuItem
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/menu/%d", id), input, &item, true); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/menu/%d", id), nil, nil, true)
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/category", nil, &categories, true); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPost, "/category", map[string]string{"name": name}, &category, true); err != nil {
		return Category{}, err
	}
	return category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, name string) (Category, error) {
	var category Category
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/category/%d", id), map[string]string{"name": name}, &category, true); err != nil {
		return Category{}, err
	}
	return category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/category/%d", id), nil, nil, true)
}

// --- Promotions ---

type PromotionInput struct {
	Code        string        `json:"code"`
	Type        PromotionType `json:"type"`
	Value       float64       `json:"value"`
	MinAmount   *float64      `json:"minAmount,omitempty"`
	MaxAmount   *float64      `json:"maxAmount,omitempty"`
	BuyQuantity *int          `json:"buyQuantity,omitempty"`
	GetQuantity *int          `json:"getQuantity,omitempty"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
	MaxUses     *int          `json:"maxUses,omitempty"`
	IsPersonal  bool          `json:"isPersonal,omitempty"`
	UserID      string        `json:"userId,omitempty"`
}

func (c *Client) CreatePromotion(ctx context.Context, input PromotionInput) (Promotion, error) {
	var promo Promotion
	if err := c.do(ctx, http.MethodPost, "/promotion", input, &promo, true); err != nil {
		return Promotion{}, err
	}
	return promo, nil
}

func (c *Client) ListActivePromotions(ctx context.Context) ([]Promotion, error) {
	var promos []Promotion
	if err := c.do(ctx, http.MethodGet, "/promotion/active", nil, &promos, true); err != nil {
		return nil, err
	}
	return promos, nil
}

func (c *Client) PromotionSummary(ctx context.Context) (json.RawMessage, error) {
	var summary json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/promotion/summary", nil, &summary, true); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) DeletePromotion(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/promotion/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) ListPersonalPromotions(ctx context.Context, userID string) ([]Promotion, error) {
	var promos []Promotion
	if err := c.do(ctx, http.MethodGet, "/promotion/personal/"+url.PathEscape(userID), nil, &promos, true); err != nil {
		return nil, err
	}
	return promos, nil
}

func (c *Client) CheckPromotionUsage(ctx context.Context, code string) (json.RawMessage, error) {
	var usage json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/promotion/check-usage", map[string]string{"code": code}, &usage, true); err != nil {
		return nil, err
	}
	return usage, nil
}

// --- Users ---

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var payload struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/all", nil, &payload, true); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(id), nil, &user, true); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]any) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(id), fields, &user, true); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) GetUserPoints(ctx context.Context, id string) (int, error) {
	var payload struct {
		Points int `json:"points"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(id)+"/points", nil, &payload, true); err != nil {
		return 0, err
	}
	return payload.Points, nil
}

// --- Free products ---

type FreeProductInput struct {
	UserID     string    `json:"userId"`
	MenuItemID int64     `json:"menuItemId"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
}

func (c *Client) AssignFreeProduct(ctx context.Context, input FreeProductInput) (FreeProduct, error) {
	var fp FreeProduct
	if err := c.do(ctx, http.MethodPost, "/free-products", input, &fp, true); err != nil {
		return FreeProduct{}, err
	}
	return fp, nil
}

func (c *Client) ListFreeProducts(ctx context.Context) ([]FreeProduct, error) {
	var fps []FreeProduct
	if err := c.do(ctx, http.MethodGet, "/free-products", nil, &fps, true); err != nil {
		return nil, err
	}
	return fps, nil
}

func (c *Client) DeleteFreeProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/free-products/"+url.PathEscape(id), nil, nil, true)
}

// --- Comments ---

func (c *Client) ListMenuItemComments(ctx context.Context, menuItemID int64) ([]Comment, error) {
	var comments []Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/comment/menu-item/%d", menuItemID), nil, &comments, true); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comment/%d", commentID), nil, nil, true)
}

// --- Blog ---

type BlogPostInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Image      string `json:"image,omitempty"`
	CategoryID string `json:"categoryId"`
}

func (c *Client) ListBlogCategories(ctx context.Context) ([]BlogCategory, error) {
	var categories []BlogCategory
	if err := c.do(ctx, http.MethodGet, "/blog/categories", nil, &categories, true); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) CreateBlogCategory(ctx context.Context, name, description string) (BlogCategory, error) {
	body := map[string]string{"name": name, "description": description}
	var category BlogCategory
	if err := c.do(ctx, http.MethodPost, "/blog/categories", body, &category, true); err != nil {
		return BlogCategory{}, err
	}
	return category, nil
}

func (c *Client) DeleteBlogCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/blog/categories/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) ListBlogPosts(ctx context.Context) ([]BlogPost, error) {
	var posts []BlogPost
	if err := c.do(ctx, http.MethodGet, "/blog/posts", nil, &posts, true); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetBlogPost(ctx context.Context, id string) (BlogPost, error) {
	var post BlogPost
	if err := c.do(ctx, http.MethodGet, "/blog/posts/"+url.PathEscape(id), nil, &post, true); err != nil {
		return BlogPost{}, err
	}
	return post, nil
}

func (c *Client) CreateBlogPost(ctx context.Context, input BlogPostInput) (BlogPost, error) {
	var post BlogPost
	if err := c.do(ctx, http.MethodPost, "/blog/posts", input, &post, true); err != nil {
		return BlogPost{}, err
	}
	return post, nil
}

func (c *Client) UpdateBlogPost(ctx context.Context, id string, input BlogPostInput) (BlogPost, error) {
	var post BlogPost
	if err := c.do(ctx, http.MethodPut, "/blog/posts/"+url.PathEscape(id), input, &post, true); err != nil {
		return BlogPost{}, err
	}
	return post, nil
}

func (c *Client) DeleteBlogPost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/blog/posts/"+url.PathEscape(id), nil, nil, true)
}

// --- QR ---

func (c *Client) GenerateQR(ctx context.Context, points int) (QRCode, error) {
	var qr QRCode
	if err := c.do(ctx, http.MethodPost, "/qr/generate", map[string]int{"points": points}, &qr, true); err != nil {
		return QRCode{}, err
	}
	return qr, nil
}

// --- transport ---

func (c *Client) do(ctx context.Context, method, path string, body any, out any, authed bool) error {
	err := c.doOnce(ctx, method, path, body, out, authed)
	if err == nil || !authed || !IsUnauthenticated(err) || c.email == "" {
		return err
	}

	// Token rejected; sign in again and retry once.
	c.logger.Info("upstream token rejected, re-authenticating")
	if authErr := c.Authenticate(ctx); authErr != nil {
		return authErr
	}
	return c.doOnce(ctx, method, path, body, out, authed)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NetworkError(method+" "+path+" failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NetworkError("read response for "+path, err)
	}

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp.StatusCode, path, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return DecodeError("decode response for "+path, err)
	}
	return nil
}

func (c *Client) mapStatus(status int, path string, body []byte) error {
	message := upstreamMessage(body)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message == "" {
			message = "upstream rejected credentials"
		}
		return UnauthenticatedError(message)
	case http.StatusNotFound:
		if message == "" {
			message = path + " not found"
		}
		return NotFoundError(message)
	case http.StatusConflict:
		if message == "" {
			message = "upstream reported a conflict"
		}
		return ConflictError(message)
	default:
		if message == "" {
			message = fmt.Sprintf("upstream returned %d for %s", status, path)
		}
		return UpstreamError(message, status)
	}
}

// upstreamMessage pulls the error text out of the platform's error body,
// which uses either {"error": "..."} or {"message": "..."}.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
