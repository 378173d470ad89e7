package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"pricetrack/middleware"
	"pricetrack/models"
	"pricetrack/repository"
	"pricetrack/scraper"

	"github.com/gorilla/mux"
)

// ProductStore is the product persistence used by the API
type ProductStore interface {
	Create(ctx context.Context, p *models.TrackedProduct) error
	GetProductForUser(ctx context.Context, userID, id int) (*models.TrackedProduct, error)
	ListByUser(ctx context.Context, userID int, active bool) ([]models.TrackedProduct, error)
	Deactivate(ctx context.Context, userID, id int) error
	PriceHistory(ctx context.Context, productID int) ([]models.PriceSample, error)
}

// CategoryStore is the user category persistence used by the API
type CategoryStore interface {
	Create(ctx context.Context, c *models.ProductCategory) error
	GetForUser(ctx context.Context, userID, id int) (*models.ProductCategory, error)
	ListByUser(ctx context.Context, userID int) ([]models.ProductCategory, error)
}

// PriceUpdater refreshes a single product
type PriceUpdater interface {
	Update(ctx context.Context, product *models.TrackedProduct) (bool, error)
}

// CategoryBrowser lists products for a search category
type CategoryBrowser interface {
	ResolveCategory(ctx context.Context, category string) []scraper.CategoryProduct
}

type Handlers struct {
	products   ProductStore
	categories CategoryStore
	updater    PriceUpdater
	browser    CategoryBrowser
	maxBody    int64
}

func NewHandlers(products ProductStore, categories CategoryStore, updater PriceUpdater, browser CategoryBrowser, maxBody int64) *Handlers {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Handlers{
		products:   products,
		categories: categories,
		updater:    updater,
		browser:    browser,
		maxBody:    maxBody,
	}
}

// RegisterRoutes mounts the user API under /api/v1
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.UserMiddleware)

	api.HandleFunc("/products", h.TrackProduct).Methods("POST")
	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", h.GetProductDetails).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", h.UntrackProduct).Methods("DELETE")
	api.HandleFunc("/products/{id:[0-9]+}/check", h.CheckPriceNow).Methods("POST")
	api.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	api.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/browse/{category}", h.BrowseCategory).Methods("GET")
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "pricetrack",
	})
}

// TrackProduct starts tracking a URL and runs a first price check
func (h *Handlers) TrackProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req models.TrackProductRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if !validProductURL(req.URL) {
		writeError(w, http.StatusBadRequest, "A valid http(s) product URL is required")
		return
	}
	if !req.TargetPrice.IsPositive() {
		writeError(w, http.StatusBadRequest, "Target price must be greater than zero")
		return
	}
	if req.CategoryID != nil {
		if _, err := h.categories.GetForUser(r.Context(), userID, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "Unknown category")
				return
			}
			log.Printf("Failed to look up category %d: %v", *req.CategoryID, err)
			writeError(w, http.StatusInternalServerError, "Failed to add product")
			return
		}
	}

	product := &models.TrackedProduct{
		UserID:      userID,
		CategoryID:  req.CategoryID,
		URL:         req.URL,
		TargetPrice: req.TargetPrice,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		log.Printf("Failed to add product to track: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to add product")
		return
	}

	response := map[string]interface{}{"product": product}
	updated, err := h.updater.Update(r.Context(), product)
	switch {
	case err != nil:
		log.Printf("Failed to get initial price for %s: %v", product.URL, err)
		response["warning"] = "Product added, but the page could not be fetched: " + err.Error()
	case !updated:
		response["warning"] = "Product added, but the current price could not be found. Try again later."
	default:
		response["message"] = "Product added successfully"
	}

	writeJSON(w, http.StatusCreated, response)
}

// ListProducts returns the user's tracked products
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	active := true
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		active = v
	}

	products, err := h.products.ListByUser(r.Context(), userID, active)
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get tracked products")
		return
	}
	if products == nil {
		products = []models.TrackedProduct{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetProductDetails returns a product with its price history
func (h *Handlers) GetProductDetails(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	history, err := h.products.PriceHistory(r.Context(), product.ID)
	if err != nil {
		log.Printf("Failed to get price history for %d: %v", product.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}
	if history == nil {
		history = []models.PriceSample{}
	}

	writeJSON(w, http.StatusOK, models.ProductDetails{
		Product:                   product,
		History:                   history,
		TargetReached:             product.TargetReached(),
		PriceDifference:           product.PriceDifference(),
		PriceDifferencePercentage: product.PriceDifferencePercentage(),
	})
}

// UntrackProduct stops tracking a product; its history is kept
func (h *Handlers) UntrackProduct(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.products.Deactivate(r.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Printf("Failed to untrack product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to untrack product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product is no longer being tracked"})
}

// CheckPriceNow refreshes one product immediately
func (h *Handlers) CheckPriceNow(w http.ResponseWriter, r *http.Request) {
	product, ok := h.loadProduct(w, r)
	if !ok {
		return
	}

	updated, err := h.updater.Update(r.Context(), product)
	if err != nil {
		log.Printf("Failed to check price for %s: %v", product.URL, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	response := map[string]interface{}{
		"updated": updated,
		"product": product,
	}
	if updated {
		response["message"] = "Price updated"
	} else {
		response["message"] = "Could not retrieve the current price"
	}
	writeJSON(w, http.StatusOK, response)
}

// Dashboard returns active products grouped by the user's categories
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	categories, err := h.categories.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list categories: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	products, err := h.products.ListByUser(r.Context(), userID, true)
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, buildDashboard(categories, products))
}

func buildDashboard(categories []models.ProductCategory, products []models.TrackedProduct) models.Dashboard {
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	byCategory := make(map[int][]models.TrackedProduct, len(categories))
	known := make(map[int]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	dashboard := models.Dashboard{
		Categories:    make([]models.CategoryGroup, 0, len(categories)),
		Uncategorized: []models.TrackedProduct{},
	}
	for _, p := range products {
		if p.CategoryID != nil && known[*p.CategoryID] {
			byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
			continue
		}
		dashboard.Uncategorized = append(dashboard.Uncategorized, p)
	}
	for i := range categories {
		group := byCategory[categories[i].ID]
		if group == nil {
			group = []models.TrackedProduct{}
		}
		dashboard.Categories = append(dashboard.Categories, models.CategoryGroup{
			Category: &categories[i],
			Products: group,
		})
	}
	return dashboard
}

// CreateCategory creates a product category for the user
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req models.CreateCategoryRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	category := &models.ProductCategory{UserID: userID, Name: req.Name, Description: req.Description}
	if err := h.categories.Create(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Category already exists")
			return
		}
		log.Printf("Failed to create category: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// ListCategories returns the user's categories
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	categories, err := h.categories.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to list categories: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get categories")
		return
	}
	if categories == nil {
		categories = []models.ProductCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// BrowseCategory lists up to the configured number of products for a category
func (h *Handlers) BrowseCategory(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Error browsing category %q: %v", category, rec)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to fetch products",
				"details": "an unexpected error occurred",
			})
		}
	}()

	products := h.browser.ResolveCategory(r.Context(), category)
	if products == nil {
		products = []scraper.CategoryProduct{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// loadProduct resolves {id} to a product owned by the caller, writing the
// error response itself when it cannot
func (h *Handlers) loadProduct(w http.ResponseWriter, r *http.Request) (*models.TrackedProduct, bool) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return nil, false
	}

	product, err := h.products.GetProductForUser(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return nil, false
		}
		log.Printf("Failed to get product %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to get product")
		return nil, false
	}
	return product, true
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func validProductURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
