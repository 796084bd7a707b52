package delivery

import (
	"net/http"

	"grouporder/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	useCase domain.CatalogUseCase
	log     *logrus.Logger
}

func NewCatalogHandler(uc domain.CatalogUseCase, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	shops := router.Group("/shops")
	{
		shops.POST("", h.CreateShop)
		shops.GET("", h.ListShops)
		shops.GET("/:id", h.GetShop)
		shops.PATCH("/:id", h.UpdateShop)
		shops.DELETE("/:id", h.DeleteShop)
	}
	categories := router.Group("/categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.PATCH("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
	items := router.Group("/items")
	{
		items.POST("", h.CreateItem)
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItem)
		items.PATCH("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)
	}
}

// --- Shops ---

func (h *CatalogHandler) CreateShop(c *gin.Context) {
	var shop domain.Shop
	if !bindJSON(c, h.log, &shop, "create shop") {
		return
	}
	shop.ID = ""
	created, err := h.useCase.CreateShop(c.Request.Context(), &shop)
	if err != nil {
		FailWithError(c, h.log, "Failed to create shop", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Shop created successfully", created)
}

func (h *CatalogHandler) GetShop(c *gin.Context) {
	shop, err := h.useCase.GetShop(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve shop", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Shop retrieved successfully", shop)
}

func (h *CatalogHandler) UpdateShop(c *gin.Context) {
	var shop domain.Shop
	if !bindJSON(c, h.log, &shop, "update shop") {
		return
	}
	shop.ID = c.Param("id")
	updated, err := h.useCase.UpdateShop(c.Request.Context(), &shop)
	if err != nil {
		FailWithError(c, h.log, "Failed to update shop", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Shop updated successfully", updated)
}

func (h *CatalogHandler) DeleteShop(c *gin.Context) {
	if err := h.useCase.DeleteShop(c.Request.Context(), c.Param("id")); err != nil {
		FailWithError(c, h.log, "Failed to delete shop", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Shop deleted successfully", nil)
}

func (h *CatalogHandler) ListShops(c *gin.Context) {
	shops, err := h.useCase.ListShops(c.Request.Context())
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve shops", err)
		return
	}
	h.log.Infof("Retrieved %d shops", len(shops))
	SuccessResponse(c, http.StatusOK, "Shops retrieved successfully", shops)
}

// --- Categories ---

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var category domain.Category
	if !bindJSON(c, h.log, &category, "create category") {
		return
	}
	category.ID = ""
	created, err := h.useCase.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		FailWithError(c, h.log, "Failed to create category", err)
		return
	}
	h.log.Infof("Category created successfully: ID %s, Name %s", created.ID, created.Name)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.useCase.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var category domain.Category
	if !bindJSON(c, h.log, &category, "update category") {
		return
	}
	category.ID = c.Param("id")
	updated, err := h.useCase.UpdateCategory(c.Request.Context(), &category)
	if err != nil {
		FailWithError(c, h.log, "Failed to update category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.useCase.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		FailWithError(c, h.log, "Failed to delete category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve categories", err)
		return
	}
	if len(categories) == 0 {
		SuccessResponse(c, http.StatusOK, "No categories found", []domain.Category{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// --- Items ---

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var item domain.Item
	if !bindJSON(c, h.log, &item, "create item") {
		return
	}
	item.ID = ""
	created, err := h.useCase.CreateItem(c.Request.Context(), &item)
	if err != nil {
		FailWithError(c, h.log, "Failed to create item", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Item created successfully", created)
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.useCase.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item retrieved successfully", item)
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var item domain.Item
	if !bindJSON(c, h.log, &item, "update item") {
		return
	}
	item.ID = c.Param("id")
	updated, err := h.useCase.UpdateItem(c.Request.Context(), &item)
	if err != nil {
		FailWithError(c, h.log, "Failed to update item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item updated successfully", updated)
}

func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.useCase.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		FailWithError(c, h.log, "Failed to delete item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item deleted successfully", nil)
}

func (h *CatalogHandler) ListItems(c *gin.Context) {
	filter := domain.ItemFilter{
		ShopID:     c.Query("shop_id"),
		CategoryID: c.Query("category_id"),
	}
	items, err := h.useCase.ListItems(c.Request.Context(), filter)
	if err != nil {
		FailWithError(c, h.log, "Failed to retrieve items", err)
		return
	}
	h.log.Debugf("Retrieved %d items for filter %+v", len(items), filter)
	SuccessResponse(c, http.StatusOK, "Items retrieved successfully", items)
}
