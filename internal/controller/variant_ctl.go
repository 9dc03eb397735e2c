package controller

import (
	"strings"

	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/api/dto"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/service"
)

type VariantController struct {
	variantSvc *service.VariantService
}

func NewVariantController(variantSvc *service.VariantService) *VariantController {
	return &VariantController{variantSvc: variantSvc}
}

// ListGroups 某类型下的变体组列表
// @Summary 变体组列表
// @Tags Variant
// @Param type path string true "变体类型 COLOUR/SIZE/UOM/BRAND/SUPPLIER"
// @Router /api/variants/{type} [get]
func (ctrl *VariantController) ListGroups(c *gin.Context) {
	groups, err := ctrl.variantSvc.ListGroups(c.Request.Context(), variantTypeParam(c), c.Query("include_inactive") != "true")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, groups)
}

// GetGroup 单个变体组
// @Summary 变体组详情
// @Tags Variant
// @Router /api/variants/{type}/{group_code} [get]
func (ctrl *VariantController) GetGroup(c *gin.Context) {
	group, err := ctrl.variantSvc.GetGroup(c.Request.Context(), variantTypeParam(c), c.Param("group_code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, group)
}

// SaveGroup 创建或全量替换变体组
// @Summary 保存变体组，成员整体替换
// @Tags Variant
// @Param body body dto.SaveVariantGroupReq true "变体组内容"
// @Router /api/variants/{type} [post]
func (ctrl *VariantController) SaveGroup(c *gin.Context) {
	var req dto.SaveVariantGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := ctrl.variantSvc.SaveGroup(c.Request.Context(), &service.SaveVariantGroupReq{
		VariantType:  variantTypeParam(c),
		GroupCode:    req.GroupCode,
		GroupName:    req.GroupName,
		Description:  req.Description,
		Members:      req.Members,
		DisplayOrder: req.DisplayOrder,
		Operator:     operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, group)
}

func variantTypeParam(c *gin.Context) model.VariantType {
	return model.VariantType(strings.ToUpper(c.Param("type")))
}
