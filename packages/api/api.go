// Package api serves the extraction pipeline and tracker store over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"pricealert/packages/domain"
)

// UserHeader carries the caller's user id, set by the fronting gateway.
const UserHeader = "X-User-ID"

type Extractor interface {
	Run(ctx context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error)
}

type ResultCache interface {
	Get(ctx context.Context, rawURL string) (*domain.ExtractionResult, bool, error)
	Set(ctx context.Context, rawURL string, res *domain.ExtractionResult) error
}

type TrackerStore interface {
	CreateTracker(ctx context.Context, t *domain.Tracker) error
	ListTrackers(ctx context.Context, userID int64) ([]domain.Tracker, error)
	UpdateTracker(ctx context.Context, t *domain.Tracker) error
	DeleteTracker(ctx context.Context, id, userID int64) error
}

type Handler struct {
	extractor Extractor
	cache     ResultCache
	trackers  TrackerStore
}

// NewHandler accepts nil cache and trackers; the matching features are then off.
func NewHandler(extractor Extractor, cache ResultCache, trackers TrackerStore) *Handler {
	return &Handler{extractor: extractor, cache: cache, trackers: trackers}
}

func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			slog.Error("Request error", "path", c.Path(), "status", code, "error", err)
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New())
	h.SetupRoutes(app)
	return app
}

func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.health)
	app.Post("/get-price", h.getPrice)

	if h.trackers != nil {
		trackers := app.Group("/api/trackers", requireUser)
		trackers.Get("/", h.listTrackers)
		trackers.Post("/", h.createTracker)
		trackers.Put("/", h.updateTracker)
		trackers.Delete("/:id", h.deleteTracker)
	}
}

func (h *Handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) getPrice(c *fiber.Ctx) error {
	var req domain.ExtractionRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "URL is required"})
	}
	ctx := c.UserContext()
	rawURL := strings.TrimSpace(req.URL)

	if h.cache != nil {
		res, hit, err := h.cache.Get(ctx, rawURL)
		if err != nil {
			slog.Warn("Result cache lookup failed", "url", rawURL, "error", err)
		} else if hit {
			return c.JSON(res)
		}
	}

	res, err := h.extractor.Run(ctx, domain.ExtractionRequest{URL: rawURL})
	if err != nil {
		status := domain.StatusCode(err)
		slog.Info("Extraction failed", "url", rawURL, "status", status, "error", err)
		return c.Status(status).JSON(fiber.Map{"error": errorMessage(err)})
	}

	if h.cache != nil && !res.TestMode {
		if err := h.cache.Set(ctx, rawURL, res); err != nil {
			slog.Warn("Result cache store failed", "url", rawURL, "error", err)
		}
	}
	return c.JSON(res)
}

// errorMessage is the user-facing text for a pipeline failure. Transport
// errors are passed through as the client reported them.
func errorMessage(err error) string {
	var statusErr *domain.HTTPStatusError
	var fetchErr *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		return "Invalid URL format"
	case errors.Is(err, domain.ErrPriceNotFound):
		return "Could not find price on this page"
	case errors.As(err, &statusErr):
		return "Failed to fetch page (Status: " + strconv.Itoa(statusErr.Status) + ")"
	case errors.As(err, &fetchErr) && fetchErr.Err != nil:
		return fetchErr.Err.Error()
	default:
		return err.Error()
	}
}

func requireUser(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Get(UserHeader), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not logged in"})
	}
	c.Locals("user_id", id)
	return c.Next()
}

func userID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("user_id").(int64)
	return id
}

type createTrackerRequest struct {
	URL            string  `json:"url"`
	ProductName    string  `json:"productName"`
	CurrentPrice   float64 `json:"currentPrice"`
	TargetPrice    float64 `json:"targetPrice"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
}

type updateTrackerRequest struct {
	ID             int64   `json:"id"`
	ProductName    string  `json:"productName"`
	CurrentPrice   float64 `json:"currentPrice"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currencySymbol"`
}

func (h *Handler) listTrackers(c *fiber.Ctx) error {
	trackers, err := h.trackers.ListTrackers(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	for i := range trackers {
		if trackers[i].ProductName == "" {
			trackers[i].ProductName = "Product"
		}
	}
	if trackers == nil {
		trackers = []domain.Tracker{}
	}
	return c.JSON(trackers)
}

func (h *Handler) createTracker(c *fiber.Ctx) error {
	var req createTrackerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "URL is required"})
	}
	if req.TargetPrice <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "targetPrice must be positive"})
	}
	if req.Currency == "" {
		req.Currency, req.CurrencySymbol = "USD", "$"
	}

	t := &domain.Tracker{
		UserID:         userID(c),
		URL:            strings.TrimSpace(req.URL),
		ProductName:    req.ProductName,
		CurrentPrice:   req.CurrentPrice,
		TargetPrice:    req.TargetPrice,
		Currency:       req.Currency,
		CurrencySymbol: req.CurrencySymbol,
	}
	if err := h.trackers.CreateTracker(c.UserContext(), t); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": t.ID, "message": "Tracker created"})
}

func (h *Handler) updateTracker(c *fiber.Ctx) error {
	var req updateTrackerRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	if req.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tracker id is required"})
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.CurrencySymbol == "" {
		req.CurrencySymbol = "$"
	}

	err := h.trackers.UpdateTracker(c.UserContext(), &domain.Tracker{
		ID:             req.ID,
		UserID:         userID(c),
		ProductName:    req.ProductName,
		CurrentPrice:   req.CurrentPrice,
		Currency:       req.Currency,
		CurrencySymbol: req.CurrencySymbol,
	})
	if errors.Is(err, domain.ErrTrackerNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tracker not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Tracker updated"})
}

func (h *Handler) deleteTracker(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tracker id is required"})
	}
	err = h.trackers.DeleteTracker(c.UserContext(), int64(id), userID(c))
	if errors.Is(err, domain.ErrTrackerNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tracker not found"})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Tracker deleted"})
}
