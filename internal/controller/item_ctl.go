package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/api/dto"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/internal/service"
)

type ItemController struct {
	itemSvc *service.ItemService
}

func NewItemController(itemSvc *service.ItemService) *ItemController {
	return &ItemController{itemSvc: itemSvc}
}

// CreateItem 物料建档并签发编码
// @Summary 建档，返回 SKU/UID，序列号降级时带 warnings
// @Tags Item
// @Param body body dto.CreateItemReq true "物料信息"
// @Router /api/items [post]
func (ctrl *ItemController) CreateItem(c *gin.Context) {
	var req dto.CreateItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := ctrl.itemSvc.CreateItem(c.Request.Context(), &service.CreateItemReq{
		Name:         req.Name,
		ItemTypeCode: req.ItemTypeCode,
		NodeLevel:    req.NodeLevel,
		NodeCode:     req.NodeCode,
		ColourName:   req.ColourName,
		SizeName:     req.SizeName,
		CreatedBy:    operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{"code": 0, "message": "success", "data": item}
	if item.SequenceDegraded {
		resp["warnings"] = []string{"DEGRADED_SEQUENCE"}
	}
	c.JSON(200, resp)
}

// UpdateSelection 定稿前改选分类或变体
// @Summary 改选并重算 SKU，UID 不变
// @Tags Item
// @Router /api/items/{id}/selection [put]
func (ctrl *ItemController) UpdateSelection(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 id"})
		return
	}

	var req dto.UpdateSelectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	item, err := ctrl.itemSvc.UpdateSelection(c.Request.Context(), id, &service.UpdateSelectionReq{
		NodeLevel:  req.NodeLevel,
		NodeCode:   req.NodeCode,
		ColourName: req.ColourName,
		SizeName:   req.SizeName,
		UpdatedBy:  operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

// FinalizeItem 定稿
// @Summary 定稿后编码冻结
// @Tags Item
// @Router /api/items/{id}/finalize [post]
func (ctrl *ItemController) FinalizeItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 id"})
		return
	}

	item, err := ctrl.itemSvc.Finalize(c.Request.Context(), id, operator(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

// GetItemByUID UID 精确查找
// @Summary 按 UID 查物料
// @Tags Item
// @Router /api/items/uid/{uid} [get]
func (ctrl *ItemController) GetItemByUID(c *gin.Context) {
	item, err := ctrl.itemSvc.GetByUID(c.Request.Context(), c.Param("uid"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, item)
}

// ListItems 物料列表
// @Summary 分页查询物料
// @Tags Item
// @Router /api/items [get]
func (ctrl *ItemController) ListItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := ctrl.itemSvc.List(c.Request.Context(), repository.ItemFilter{
		ItemTypeCode: c.Query("item_type_code"),
		NodeCode:     c.Query("node_code"),
		Keyword:      c.Query("keyword"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"code":      0,
		"message":   "success",
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListDegradedItems 降级序列号物料，人工复核入口
// @Summary 降级物料列表
// @Tags Item
// @Router /api/items/degraded [get]
func (ctrl *ItemController) ListDegradedItems(c *gin.Context) {
	items, err := ctrl.itemSvc.ListDegraded(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, items)
}

// PreviewSKU SKU 预览，不落库不占号
// @Summary SKU 预览
// @Tags Item
// @Param body body dto.PreviewSKUReq true "预览参数"
// @Router /api/items/preview-sku [post]
func (ctrl *ItemController) PreviewSKU(c *gin.Context) {
	var req dto.PreviewSKUReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sku, err := ctrl.itemSvc.PreviewSKU(c.Request.Context(), req.ItemTypeCode, req.NodeLevel, req.NodeCode, req.ColourName, req.SizeName, req.Sequence)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"sku": sku})
}
