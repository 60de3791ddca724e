package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/pagination"
	"tally/internal/services"
)

// ShoppingListHandler handles shopping list and item requests.
type ShoppingListHandler struct {
	shoppingListService services.ShoppingListServicer
	auditService        services.AuditServicer
}

// NewShoppingListHandler creates a new ShoppingListHandler.
func NewShoppingListHandler(shoppingListService services.ShoppingListServicer, auditService services.AuditServicer) *ShoppingListHandler {
	return &ShoppingListHandler{shoppingListService: shoppingListService, auditService: auditService}
}

// CreateShoppingListRequest represents the request payload for creating a list.
type CreateShoppingListRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	FamilyID    *string  `json:"family_id" binding:"omitempty,uuid"`
	SharedWith  []string `json:"shared_with" binding:"omitempty,dive,email"`
}

// UpdateShoppingListRequest represents the request payload for updating a list.
type UpdateShoppingListRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	SharedWith  []string `json:"shared_with" binding:"omitempty,dive,email"`
}

// AddItemRequest represents the request payload for adding a list item.
type AddItemRequest struct {
	Name     string              `json:"name" binding:"required,min=1,max=100"`
	Quantity string              `json:"quantity" binding:"max=50"`
	Note     string              `json:"note" binding:"max=255"`
	Priority models.ItemPriority `json:"priority" binding:"omitempty,item_priority"`
}

// UpdateItemRequest represents the request payload for updating a list item.
type UpdateItemRequest struct {
	Name     *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Quantity *string              `json:"quantity" binding:"omitempty,max=50"`
	Note     *string              `json:"note" binding:"omitempty,max=255"`
	Priority *models.ItemPriority `json:"priority" binding:"omitempty,item_priority"`
}

// PurchaseItemRequest represents the request payload for marking an item purchased.
// When create_transaction is true, category_id and amount are required and an
// expense transaction is recorded and linked to the item.
type PurchaseItemRequest struct {
	CreateTransaction bool            `json:"create_transaction"`
	CategoryID        string          `json:"category_id" binding:"omitempty,uuid"`
	Amount            decimal.Decimal `json:"amount"`
}

// CreateList handles the creation of a new shopping list.
// @Summary     Create a shopping list
// @Description Create a shopping list, optionally attached to a family or shared by email
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateShoppingListRequest true "List details"
// @Success     201 {object} models.ShoppingList "List created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "Family not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists [post]
func (h *ShoppingListHandler) CreateList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	list, err := h.shoppingListService.CreateList(userID, req.Name, req.Description, req.FamilyID, req.SharedWith)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SHOPPING_LIST", "shopping_list", list.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"shopping_list": list})
}

// GetLists handles listing shopping lists visible to the user.
// @Summary     Get shopping lists
// @Description Get a paginated list of shopping lists the user owns, is shared on, or can see via family membership
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.ShoppingList] "Paginated lists"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists [get]
func (h *ShoppingListHandler) GetLists(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.shoppingListService.GetVisibleLists(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetList handles retrieving a shopping list with its items.
// @Summary     Get shopping list by ID
// @Description Get a shopping list and its items
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Shopping list ID"
// @Success     200 {object} models.ShoppingList "List details"
// @Failure     400 {object} ErrorResponse "Invalid list ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "List not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id} [get]
func (h *ShoppingListHandler) GetList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := h.shoppingListService.GetListByID(userID, listID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shopping_list": list})
}

// UpdateList handles updating a shopping list.
// @Summary     Update shopping list
// @Description Update a shopping list's name, description, and sharing
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Shopping list ID"
// @Param       request body UpdateShoppingListRequest true "Updated fields"
// @Success     200 {object} models.ShoppingList "Updated list"
// @Failure     400 {object} ErrorResponse "Invalid input or list ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id} [put]
func (h *ShoppingListHandler) UpdateList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	list, err := h.shoppingListService.UpdateList(userID, listID, req.Name, req.Description, req.SharedWith)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SHOPPING_LIST", "shopping_list", listID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"shopping_list": list})
}

// DeleteList handles deleting a shopping list and its items.
// @Summary     Delete shopping list
// @Description Delete a shopping list and all of its items
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Shopping list ID"
// @Success     200 {object} MessageResponse "List deleted"
// @Failure     400 {object} ErrorResponse "Invalid list ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id} [delete]
func (h *ShoppingListHandler) DeleteList(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shoppingListService.DeleteList(userID, listID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SHOPPING_LIST", "shopping_list", listID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Shopping list deleted successfully"})
}

// AddItem handles adding an item to a shopping list.
// @Summary     Add list item
// @Description Add an item to a shopping list
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Shopping list ID"
// @Param       request body AddItemRequest true "Item details"
// @Success     201 {object} models.ShoppingListItem "Item added"
// @Failure     400 {object} ErrorResponse "Invalid input or list ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id}/items [post]
func (h *ShoppingListHandler) AddItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.shoppingListService.AddItem(userID, listID, req.Name, req.Quantity, req.Note, req.Priority)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_LIST_ITEM", "shopping_list_item", item.ID, c.ClientIP(),
		map[string]interface{}{"list_id": listID, "name": req.Name})

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// UpdateItem handles updating a shopping list item.
// @Summary     Update list item
// @Description Update a shopping list item's fields
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Shopping list ID"
// @Param       itemId  path string            true "Item ID"
// @Param       request body UpdateItemRequest true "Updated fields"
// @Success     200 {object} models.ShoppingListItem "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input or IDs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List or item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id}/items/{itemId} [put]
func (h *ShoppingListHandler) UpdateItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.shoppingListService.UpdateItem(userID, listID, itemID, req.Name, req.Quantity, req.Note, req.Priority)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_LIST_ITEM", "shopping_list_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// RemoveItem handles removing an item from a shopping list.
// @Summary     Remove list item
// @Description Remove an item from a shopping list
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id     path string true "Shopping list ID"
// @Param       itemId path string true "Item ID"
// @Success     200 {object} MessageResponse "Item removed"
// @Failure     400 {object} ErrorResponse "Invalid IDs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List or item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id}/items/{itemId} [delete]
func (h *ShoppingListHandler) RemoveItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.shoppingListService.RemoveItem(userID, listID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REMOVE_LIST_ITEM", "shopping_list_item", itemID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Item removed successfully"})
}

// PurchaseItem handles marking an item as purchased, optionally recording a
// linked expense transaction.
// @Summary     Mark item purchased
// @Description Mark an item purchased; optionally record a linked expense transaction
// @Tags        shopping-lists
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Shopping list ID"
// @Param       itemId  path string              true "Item ID"
// @Param       request body PurchaseItemRequest true "Purchase options"
// @Success     200 {object} models.ShoppingListItem "Purchased item"
// @Failure     400 {object} ErrorResponse "Invalid input or IDs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Missing family permission"
// @Failure     404 {object} ErrorResponse "List or item not found"
// @Failure     409 {object} ErrorResponse "Item already purchased"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /shopping-lists/{id}/items/{itemId}/purchase [post]
func (h *ShoppingListHandler) PurchaseItem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	listID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	itemID, err := parsePathID(c, "itemId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PurchaseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if req.CreateTransaction && req.CategoryID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required when create_transaction is true"))
		return
	}

	item, err := h.shoppingListService.MarkItemPurchased(userID, listID, itemID, services.PurchaseOptions{
		CreateTransaction: req.CreateTransaction,
		CategoryID:        req.CategoryID,
		Amount:            req.Amount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "PURCHASE_LIST_ITEM", "shopping_list_item", itemID, c.ClientIP(),
		map[string]interface{}{"list_id": listID, "create_transaction": req.CreateTransaction})

	c.JSON(http.StatusOK, gin.H{"item": item})
}
