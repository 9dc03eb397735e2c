package controller

import (
	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/api/dto"
	"item_taxonomy_v1_202603/internal/service"
)

type ItemTypeController struct {
	itemTypeSvc *service.ItemTypeService
}

func NewItemTypeController(itemTypeSvc *service.ItemTypeService) *ItemTypeController {
	return &ItemTypeController{itemTypeSvc: itemTypeSvc}
}

// CreateItemType 新建物料类型
// @Summary 新建物料类型
// @Tags ItemType
// @Param body body dto.SaveItemTypeReq true "类型信息"
// @Router /api/item-types [post]
func (ctrl *ItemTypeController) CreateItemType(c *gin.Context) {
	var req dto.SaveItemTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	itemType, err := ctrl.itemTypeSvc.Create(c.Request.Context(), toSaveItemTypeReq(&req, operator(c)))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, itemType)
}

// UpdateItemType 更新物料类型，编码不可改
// @Summary 更新物料类型
// @Tags ItemType
// @Router /api/item-types/{code} [put]
func (ctrl *ItemTypeController) UpdateItemType(c *gin.Context) {
	var req dto.SaveItemTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	itemType, err := ctrl.itemTypeSvc.Update(c.Request.Context(), c.Param("code"), toSaveItemTypeReq(&req, operator(c)))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, itemType)
}

// DeactivateItemType 停用物料类型
// @Summary 停用物料类型，仍被引用时拒绝
// @Tags ItemType
// @Router /api/item-types/{code}/deactivate [post]
func (ctrl *ItemTypeController) DeactivateItemType(c *gin.Context) {
	if err := ctrl.itemTypeSvc.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// GetItemType 单个查询
// @Summary 物料类型详情
// @Tags ItemType
// @Router /api/item-types/{code} [get]
func (ctrl *ItemTypeController) GetItemType(c *gin.Context) {
	itemType, err := ctrl.itemTypeSvc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, itemType)
}

// ListItemTypes 全量列表
// @Summary 物料类型列表
// @Tags ItemType
// @Param include_inactive query bool false "是否含停用"
// @Router /api/item-types [get]
func (ctrl *ItemTypeController) ListItemTypes(c *gin.Context) {
	list, err := ctrl.itemTypeSvc.List(c.Request.Context(), c.Query("include_inactive") != "true")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, list)
}

func toSaveItemTypeReq(req *dto.SaveItemTypeReq, operator string) *service.SaveItemTypeReq {
	return &service.SaveItemTypeReq{
		Code:                req.Code,
		Name:                req.Name,
		Description:         req.Description,
		AllowPurchase:       req.AllowPurchase,
		AllowSale:           req.AllowSale,
		TrackInventory:      req.TrackInventory,
		RequireQualityCheck: req.RequireQualityCheck,
		DefaultUOM:          req.DefaultUOM,
		SortOrder:           req.SortOrder,
		Operator:            operator,
	}
}
