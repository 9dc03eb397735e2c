package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"item_taxonomy_v1_202603/internal/api/dto"
	"item_taxonomy_v1_202603/internal/hierarchy"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/internal/service"
)

type NodeController struct {
	taxonomySvc *service.TaxonomyService
}

func NewNodeController(taxonomySvc *service.TaxonomyService) *NodeController {
	return &NodeController{taxonomySvc: taxonomySvc}
}

// ==================== 写接口 ====================

// CreateNode 创建分类节点
// @Summary 创建分类节点
// @Tags Taxonomy
// @Param body body dto.CreateNodeReq true "节点信息"
// @Success 200 {object} dto.NodeResp
// @Router /api/taxonomy/nodes [post]
func (ctrl *NodeController) CreateNode(c *gin.Context) {
	var req dto.CreateNodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	node, err := ctrl.taxonomySvc.CreateNode(c.Request.Context(), &service.CreateNodeReq{
		Level:           req.Level,
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		CategoryCode:    req.CategoryCode,
		SubCategoryCode: req.SubCategoryCode,
		DivisionCode:    req.DivisionCode,
		ClassCode:       req.ClassCode,
		ItemTypeCode:    req.ItemTypeCode,
		LevelNames:      req.LevelNames,
		SkuCategoryCode: req.SkuCategoryCode,
		SortOrder:       req.SortOrder,
		CreatedBy:       operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, toNodeResp(node, nil))
}

// UpdateNode 更新分类节点
// @Summary 原地更新节点，level_names 会回写到 Level 1 祖先
// @Tags Taxonomy
// @Param level path int true "层级"
// @Param code path string true "编码"
// @Router /api/taxonomy/nodes/{level}/{code} [put]
func (ctrl *NodeController) UpdateNode(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req dto.UpdateNodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	node, err := ctrl.taxonomySvc.UpdateNode(c.Request.Context(), level, c.Param("code"), &service.UpdateNodeReq{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		LevelNames:  req.LevelNames,
		UpdatedBy:   operator(c),
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, toNodeResp(node, nil))
}

// MoveNode 移动节点到新的父节点下
// @Summary 移动节点，dry_run 时只校验不落库
// @Tags Taxonomy
// @Param body body dto.MoveNodeReq true "移动目标"
// @Router /api/taxonomy/nodes/{level}/{code}/move [post]
func (ctrl *NodeController) MoveNode(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req dto.MoveNodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.DryRun {
		if err := ctrl.taxonomySvc.CanMove(ctx, level, c.Param("code"), req.TargetParentCode); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"movable": true})
		return
	}

	node, err := ctrl.taxonomySvc.MoveNode(ctx, level, c.Param("code"), req.TargetParentCode)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, toNodeResp(node, nil))
}

// DeactivateNode 停用节点
// @Summary 停用节点，cascade 时连带整棵子树
// @Tags Taxonomy
// @Router /api/taxonomy/nodes/{level}/{code}/deactivate [post]
func (ctrl *NodeController) DeactivateNode(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req dto.DeactivateNodeReq
	// body 可以省略，默认不级联
	_ = c.ShouldBindJSON(&req)

	if err := ctrl.taxonomySvc.DeactivateNode(c.Request.Context(), level, c.Param("code"), req.Cascade); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ReactivateNode 重新启用节点
// @Summary 重新启用节点，父节点停用中时拒绝
// @Tags Taxonomy
// @Router /api/taxonomy/nodes/{level}/{code}/reactivate [post]
func (ctrl *NodeController) ReactivateNode(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := ctrl.taxonomySvc.ReactivateNode(c.Request.Context(), level, c.Param("code")); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ==================== 查询接口 ====================

// ListNodes 节点列表
// @Summary 分页查询节点
// @Tags Taxonomy
// @Param level query int false "层级"
// @Param parent_code query string false "父编码"
// @Param keyword query string false "名称/编码搜索"
// @Param include_inactive query bool false "是否含停用"
// @Router /api/taxonomy/nodes [get]
func (ctrl *NodeController) ListNodes(c *gin.Context) {
	level, _ := strconv.Atoi(c.Query("level"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	nodes, total, err := ctrl.taxonomySvc.Query(c.Request.Context(), repository.NodeFilter{
		Level:           level,
		ParentCode:      c.Query("parent_code"),
		Keyword:         c.Query("keyword"),
		IncludeInactive: c.Query("include_inactive") == "true",
		Page:            page,
		PageSize:        pageSize,
	})
	if err != nil {
		fail(c, err)
		return
	}

	respList := make([]dto.NodeResp, 0, len(nodes))
	for i := range nodes {
		respList = append(respList, *toNodeResp(&nodes[i], nil))
	}
	c.JSON(200, dto.NodeListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetNode 节点详情（含完整路径）
// @Summary 节点详情
// @Tags Taxonomy
// @Router /api/taxonomy/nodes/{level}/{code} [get]
func (ctrl *NodeController) GetNode(c *gin.Context) {
	level, err := levelParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	node, path, err := ctrl.taxonomySvc.GetNode(c.Request.Context(), level, c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, toNodeResp(node, path))
}

// GetTree 整棵层级树
// @Summary 层级树
// @Tags Taxonomy
// @Param include_inactive query bool false "是否含停用"
// @Router /api/taxonomy/tree [get]
func (ctrl *NodeController) GetTree(c *gin.Context) {
	tree, err := ctrl.taxonomySvc.Tree(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, tree)
}

// GetDropdown 级联下拉选项
// @Summary 某层级的下拉选项，按父编码过滤
// @Tags Taxonomy
// @Param level query int true "层级"
// @Param parent_code query string false "父编码"
// @Router /api/taxonomy/dropdown [get]
func (ctrl *NodeController) GetDropdown(c *gin.Context) {
	level, err := strconv.Atoi(c.Query("level"))
	if err != nil || level < model.LevelCategory || level > model.MaxLevel {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 level"})
		return
	}
	options, err := ctrl.taxonomySvc.Dropdown(c.Request.Context(), level, c.Query("parent_code"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, options)
}

// ==================== 辅助 ====================

func levelParam(c *gin.Context) (int, error) {
	return strconv.Atoi(c.Param("level"))
}

func toNodeResp(node *model.TaxonomyNode, path []model.PathEntry) *dto.NodeResp {
	resp := &dto.NodeResp{
		ID:              node.ID,
		Level:           node.Level,
		Code:            node.Code,
		Name:            node.Name,
		Description:     node.Description,
		ParentCode:      node.ParentCode,
		CategoryCode:    node.CategoryCode,
		SubCategoryCode: node.SubCategoryCode,
		DivisionCode:    node.DivisionCode,
		ClassCode:       node.ClassCode,
		ItemTypeCode:    node.ItemTypeCode,
		SkuCategoryCode: node.SkuCategoryCode,
		SortOrder:       node.SortOrder,
		IsActive:        node.IsActive,
		ChildCount:      node.ChildCount,
	}
	if len(node.LevelNames) > 0 {
		names := make(map[string]string, len(node.LevelNames))
		for k, v := range node.LevelNames {
			if s, ok := v.(string); ok {
				names[k] = s
			}
		}
		resp.LevelNames = names
	}
	if len(path) > 0 {
		resp.Path = path
		resp.PathText = hierarchy.PathName(path)
	}
	return resp
}
