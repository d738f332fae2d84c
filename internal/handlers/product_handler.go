package handlers

import (
	"errors"
	"fmt"

	"productsapi/internal/middleware"
	"productsapi/internal/models"
	"productsapi/internal/repositories"
	"productsapi/internal/services"
	"productsapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Response messages.
const (
	MsgProductNotFound = "Prodcuto no encontrado"
	MsgProductDeleted  = "Producto Eliminado"

	MsgInvalidID           = "ID no valido"
	MsgEmptyName           = "El nombre de Producto no puede ir vacio"
	MsgInvalidValue        = "Valor no valido"
	MsgInvalidPrice        = "Precio no valido"
	MsgInvalidAvailability = "Valor para disponibilidad no valido"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

func idRule() fiber.Handler {
	return validation.Param("id").IsInt().WithMessage(MsgInvalidID).Handler()
}

func nameRule() fiber.Handler {
	return validation.Body("name").NotEmpty().WithMessage(MsgEmptyName).Handler()
}

func priceRule() fiber.Handler {
	return validation.Body("price").
		IsNumeric().WithMessage(MsgInvalidValue).
		NotEmpty().WithMessage(MsgEmptyName).
		Gt(0).WithMessage(MsgInvalidPrice).
		Handler()
}

func availabilityRule() fiber.Handler {
	return validation.Body("availability").IsBoolean().WithMessage(MsgInvalidAvailability).Handler()
}

// RegisterRoutes registers the product routes under /products.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")

	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleGetProductByID)
	productRoutes.Post("/",
		nameRule(),
		priceRule(),
		middleware.HandleInputErrors,
		h.HandleCreateProduct)
	// PUT replaces every mutable field.
	productRoutes.Put("/:id",
		idRule(),
		nameRule(),
		priceRule(),
		availabilityRule(),
		middleware.HandleInputErrors,
		h.HandleUpdateProduct)
	// PATCH only flips availability.
	productRoutes.Patch("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleUpdateAvailability)
	productRoutes.Delete("/:id",
		idRule(),
		middleware.HandleInputErrors,
		h.HandleDeleteProduct)
}

// HandleGetProducts lists every product.
// @Summary List products
// @Description Returns every product ordered by descending ID
// @Tags Products
// @Produce json
// @Success 200 {object} models.DataResponse{data=[]models.Product}
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.respondError(c, err, "list products")
	}
	return c.JSON(models.DataResponse{Data: products})
}

// HandleGetProductByID returns one product.
// @Summary Get a product
// @Description Returns a product by its ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.DataResponse{data=models.Product}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return idError(c, err)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "get product")
	}
	return c.JSON(models.DataResponse{Data: product})
}

// HandleCreateProduct creates a product.
// @Summary Create a product
// @Description Creates a product; availability defaults to true
// @Tags Products
// @Accept json
// @Produce json
// @Param product body models.ProductInput true "Product data"
// @Success 201 {object} models.DataResponse{data=models.Product}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err, "create product")
	}
	return c.Status(fiber.StatusCreated).JSON(models.DataResponse{Data: product})
}

// HandleUpdateProduct replaces a product.
// @Summary Update a product
// @Description Replaces name, price and availability of a product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body models.ProductInput true "Product data"
// @Success 200 {object} models.DataResponse{data=models.Product}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return idError(c, err)
	}
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, input)
	if err != nil {
		return h.respondError(c, err, "update product")
	}
	return c.JSON(models.DataResponse{Data: product})
}

// HandleUpdateAvailability flips the availability of a product.
// @Summary Toggle availability
// @Description Flips the availability of a product; the body is ignored
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.DataResponse{data=models.Product}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products/{id} [patch]
func (h *ProductHandler) HandleUpdateAvailability(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return idError(c, err)
	}
	product, err := h.service.ToggleAvailability(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "toggle availability")
	}
	return c.JSON(models.DataResponse{Data: product})
}

// HandleDeleteProduct deletes a product.
// @Summary Delete a product
// @Description Permanently deletes a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.DataResponse{data=string}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return idError(c, err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.respondError(c, err, "delete product")
	}
	return c.JSON(models.DataResponse{Data: MsgProductDeleted})
}

// productID reads the already validated id. Digits that overflow still fail;
// ids below 1 are never assigned and report ErrProductNotFound.
func productID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, fmt.Errorf("product with ID %d: %w", id, repositories.ErrProductNotFound)
	}
	return uint(id), nil
}

func idError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: MsgProductNotFound})
	}
	return invalidID(c)
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
		Errors: []models.FieldError{{Type: "field", Value: c.Params("id"), Msg: MsgInvalidID, Path: "id", Location: validation.LocationParams}},
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
		Errors: []models.FieldError{{Type: "field", Msg: err.Error(), Location: validation.LocationBody}},
	})
}

func (h *ProductHandler) respondError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: MsgProductNotFound})
	case errors.Is(err, services.ErrInvalidProduct):
		return invalidBody(c, err)
	default:
		h.logger.Error("failed to "+op, zap.Error(err), zap.String("request_id", requestID(c)))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "Could not " + op})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
