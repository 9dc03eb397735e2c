package controller

import (
	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/api/dto"
	"item_taxonomy_v1_202603/internal/service"
)

type SpecController struct {
	specSvc *service.SpecService
}

func NewSpecController(specSvc *service.SpecService) *SpecController {
	return &SpecController{specSvc: specSvc}
}

// GetSpecConfig 读取节点规格配置
// @Summary 节点规格配置，未配置时 strict=true 报 404，否则回默认配置
// @Tags Specification
// @Param node_code path string true "节点编码"
// @Param strict query bool false "未配置时是否报错"
// @Router /api/specifications/{node_code} [get]
func (ctrl *SpecController) GetSpecConfig(c *gin.Context) {
	ctx := c.Request.Context()
	nodeCode := c.Param("node_code")

	if c.Query("strict") == "true" {
		cfg, err := ctrl.specSvc.GetConfigStrict(ctx, nodeCode)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, cfg)
		return
	}

	cfg, err := ctrl.specSvc.GetConfig(ctx, nodeCode)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cfg)
}

// SetSpecConfig 全量替换节点规格配置
// @Summary 保存规格配置，整体替换不做合并
// @Tags Specification
// @Param body body dto.SetSpecConfigReq true "配置内容"
// @Router /api/specifications/{node_code} [put]
func (ctrl *SpecController) SetSpecConfig(c *gin.Context) {
	var req dto.SetSpecConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := ctrl.specSvc.SetConfig(c.Request.Context(), &service.SetSpecConfigReq{
		NodeLevel:    req.NodeLevel,
		NodeCode:     c.Param("node_code"),
		Dimensions:   req.Dimensions,
		CustomFields: req.CustomFields,
		UpdatedBy:    operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cfg)
}

// DeleteSpecConfig 删除节点规格配置
// @Summary 删除配置，之后读取回到默认
// @Tags Specification
// @Router /api/specifications/{node_code} [delete]
func (ctrl *SpecController) DeleteSpecConfig(c *gin.Context) {
	if err := ctrl.specSvc.DeleteConfig(c.Request.Context(), c.Param("node_code")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ResolveEffective 生效配置解析
// @Summary 按最深选中节点解析生效配置，不合并祖先
// @Tags Specification
// @Router /api/specifications/{node_code}/effective [get]
func (ctrl *SpecController) ResolveEffective(c *gin.Context) {
	cfg, err := ctrl.specSvc.ResolveEffective(c.Request.Context(), c.Param("node_code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cfg)
}
