package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/hierarchy"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
)

// 编码格式：2-4 位字母数字，入库前统一大写
var codePattern = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)

// 并发冲突时 level_names 回写的重试次数
const writeThroughRetries = 3

// ==================== 请求结构 ====================

// CreateNodeReq 创建节点请求
// Level ≥ 2 时祖先链必须给全（1..level-1 每一级）
type CreateNodeReq struct {
	Level       int
	Code        string
	Name        string
	Description string

	// 祖先链
	CategoryCode    string
	SubCategoryCode string
	DivisionCode    string
	ClassCode       string

	// 仅 Level 1
	ItemTypeCode string
	LevelNames   map[string]string

	// 仅 Level 5，不填时按名称派生
	SkuCategoryCode string

	SortOrder int
	CreatedBy string
}

// UpdateNodeReq 更新节点请求，nil 字段不动
type UpdateNodeReq struct {
	Name        *string
	Description *string
	SortOrder   *int

	// 任意层级都可以改，非根节点会回写到 Level 1 祖先
	LevelNames map[string]string

	UpdatedBy string
}

// DropdownOption 下拉选项
type DropdownOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TreeNode 层级树节点
type TreeNode struct {
	Level      int         `json:"level"`
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	SortOrder  int         `json:"sort_order"`
	IsActive   bool        `json:"is_active"`
	ChildCount int         `json:"child_count"`
	Children   []*TreeNode `json:"children"`
}

// ==================== 服务 ====================

// TaxonomyService 分类树编排服务
type TaxonomyService struct {
	nodeRepo     repository.NodeRepository
	itemTypeRepo repository.ItemTypeRepository
	itemRepo     repository.ItemRepository
	log          *zap.Logger
}

func NewTaxonomyService(
	nodeRepo repository.NodeRepository,
	itemTypeRepo repository.ItemTypeRepository,
	itemRepo repository.ItemRepository,
	log *zap.Logger,
) *TaxonomyService {
	return &TaxonomyService{
		nodeRepo:     nodeRepo,
		itemTypeRepo: itemTypeRepo,
		itemRepo:     itemRepo,
		log:          log,
	}
}

// lookup 供 hierarchy 包回溯祖先用
func (s *TaxonomyService) lookup(ctx context.Context) hierarchy.NodeLookup {
	return func(level int, code string) (*model.TaxonomyNode, error) {
		return s.nodeRepo.GetByLevelCode(ctx, level, code)
	}
}

// ==================== 创建 ====================

// CreateNode 创建分类节点
// Level 1 必须带物料类型和层级命名；Level ≥ 2 必须给全祖先链
func (s *TaxonomyService) CreateNode(ctx context.Context, req *CreateNodeReq) (*model.TaxonomyNode, error) {
	if req.Level < model.LevelCategory || req.Level > model.MaxLevel {
		return nil, apperr.NewValidationError("level", "层级必须在 1-%d 之间，当前 %d", model.MaxLevel, req.Level)
	}

	code, err := normalizeCode("code", req.Code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.NewValidationError("name", "名称不能为空")
	}

	node := &model.TaxonomyNode{
		Level:       req.Level,
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	node.CreatedBy = req.CreatedBy
	node.UpdatedBy = req.CreatedBy

	if req.Level == model.LevelCategory {
		if err := s.fillRootFields(ctx, node, req); err != nil {
			return nil, err
		}
	} else {
		if err := s.fillChainFields(ctx, node, req); err != nil {
			return nil, err
		}
	}

	if req.Level == model.LevelSubClass {
		sku := strings.ToUpper(strings.TrimSpace(req.SkuCategoryCode))
		if sku == "" {
			sku = codegen.CategoryCodeFromName(node.Name)
		}
		node.SkuCategoryCode = sku
	}

	// 同级唯一（编码已大写，等值即不区分大小写）
	existing, err := s.nodeRepo.GetByLevelCode(ctx, node.Level, node.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewConflictError(node.Level, node.Code, node.ParentCode,
			"编码 "+node.Code+" 在该层级已存在")
	}

	err = s.nodeRepo.Transaction(ctx, func(txRepo repository.NodeRepository) error {
		if err := txRepo.Create(ctx, node); err != nil {
			return err
		}
		if node.ParentCode == "" {
			return nil
		}
		parent, err := txRepo.GetByLevelCode(ctx, node.Level-1, node.ParentCode)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperr.NewOrphanedNodeError(node.Level, node.Code, node.ParentCode)
		}
		return txRepo.UpdateFields(ctx, parent.ID, map[string]interface{}{
			"child_count": gorm.Expr("child_count + 1"),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("分类节点已创建",
		zap.Int("level", node.Level),
		zap.String("code", node.Code),
		zap.String("parent_code", node.ParentCode))
	return node, nil
}

// fillRootFields Level 1 专属字段校验
func (s *TaxonomyService) fillRootFields(ctx context.Context, node *model.TaxonomyNode, req *CreateNodeReq) error {
	itemTypeCode := strings.ToUpper(strings.TrimSpace(req.ItemTypeCode))
	if itemTypeCode == "" {
		return apperr.NewValidationError("item_type_code", "Level 1 节点必须指定物料类型")
	}
	itemType, err := s.itemTypeRepo.GetByCode(ctx, itemTypeCode)
	if err != nil {
		return err
	}
	if itemType == nil || !itemType.IsActive {
		return apperr.NewValidationError("item_type_code", "物料类型 %s 不存在或已停用", itemTypeCode)
	}
	node.ItemTypeCode = itemTypeCode

	if len(req.LevelNames) == 0 {
		return apperr.NewValidationError("level_names", "Level 1 节点必须提供层级命名")
	}
	names := make(map[string]interface{}, len(req.LevelNames))
	for k, v := range req.LevelNames {
		names[k] = v
	}
	node.LevelNames = names
	return nil
}

// fillChainFields 校验祖先链完整并填冗余编码
func (s *TaxonomyService) fillChainFields(ctx context.Context, node *model.TaxonomyNode, req *CreateNodeReq) error {
	chain := []struct {
		level int
		field string
		code  string
	}{
		{model.LevelCategory, "category_code", req.CategoryCode},
		{model.LevelSubCategory, "sub_category_code", req.SubCategoryCode},
		{model.LevelDivision, "division_code", req.DivisionCode},
		{model.LevelClass, "class_code", req.ClassCode},
	}

	for _, link := range chain[:node.Level-1] {
		code, err := normalizeCode(link.field, link.code)
		if err != nil {
			return apperr.NewValidationError(link.field,
				"Level %d 节点的祖先链不完整：缺少 L%d 编码", node.Level, link.level)
		}
		ancestor, err2 := s.nodeRepo.GetByLevelCode(ctx, link.level, code)
		if err2 != nil {
			return err2
		}
		if ancestor == nil {
			return apperr.NewValidationError(link.field, "祖先节点 %s (L%d) 不存在", code, link.level)
		}
		if !ancestor.IsActive {
			return apperr.NewValidationError(link.field, "祖先节点 %s (L%d) 已停用", code, link.level)
		}

		switch link.level {
		case model.LevelCategory:
			node.CategoryCode = code
		case model.LevelSubCategory:
			node.SubCategoryCode = code
		case model.LevelDivision:
			node.DivisionCode = code
		case model.LevelClass:
			node.ClassCode = code
		}
		if link.level == node.Level-1 {
			node.ParentCode = code
		}
	}
	return nil
}

// ==================== 更新 ====================

// UpdateNode 原地更新节点
// 非根节点改 level_names 时回写 Level 1 祖先，乐观锁冲突自动重试
func (s *TaxonomyService) UpdateNode(ctx context.Context, level int, code string, req *UpdateNodeReq) (*model.TaxonomyNode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	for attempt := 0; attempt < writeThroughRetries; attempt++ {
		node, err := s.nodeRepo.GetByLevelCode(ctx, level, code)
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nil, apperr.NewNotFoundError("分类节点", code)
		}

		fields := map[string]interface{}{"updated_by": req.UpdatedBy}
		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return nil, apperr.NewValidationError("name", "名称不能为空")
			}
			fields["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.SortOrder != nil {
			fields["sort_order"] = *req.SortOrder
		}

		conflicted := false
		err = s.nodeRepo.Transaction(ctx, func(txRepo repository.NodeRepository) error {
			rows, err := txRepo.UpdateWithVersion(ctx, node, fields)
			if err != nil {
				return err
			}
			if rows == 0 {
				conflicted = true
				return nil
			}

			if len(req.LevelNames) == 0 {
				return nil
			}
			ok, err := s.writeThroughLevelNames(ctx, txRepo, node, req.LevelNames, req.UpdatedBy)
			if err != nil {
				return err
			}
			if !ok {
				conflicted = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if conflicted {
			continue // 整体重试到收敛
		}

		return s.nodeRepo.GetByLevelCode(ctx, level, code)
	}

	return nil, apperr.NewConflictError(level, code, "", "并发更新冲突，请重试")
}

// writeThroughLevelNames 把层级命名写到 Level 1 祖先（本节点是根就写自己）
// 返回 false 表示乐观锁落败，由外层整体重试
func (s *TaxonomyService) writeThroughLevelNames(
	ctx context.Context,
	txRepo repository.NodeRepository,
	node *model.TaxonomyNode,
	levelNames map[string]string,
	updatedBy string,
) (bool, error) {
	root := node
	if node.Level > model.LevelCategory {
		var err error
		root, err = txRepo.GetByLevelCode(ctx, model.LevelCategory, node.CategoryCode)
		if err != nil {
			return false, err
		}
		if root == nil {
			return false, apperr.NewOrphanedNodeError(node.Level, node.Code, node.CategoryCode)
		}
	}

	names := make(datatypes.JSONMap, len(levelNames))
	for k, v := range levelNames {
		names[k] = v
	}

	rows, err := txRepo.UpdateWithVersion(ctx, root, map[string]interface{}{
		"level_names": names,
		"updated_by":  updatedBy,
	})
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ==================== 移动 ====================

// MoveNode 把节点挂到新的父节点下
// 校验与落库在同一个事务里，乐观锁兜底并发移动
// 失败时不会留下半套状态；后代节点不需要任何改写
func (s *TaxonomyService) MoveNode(ctx context.Context, level int, code, targetParentCode string) (*model.TaxonomyNode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	targetParentCode = strings.ToUpper(strings.TrimSpace(targetParentCode))

	dragged, err := s.nodeRepo.GetByLevelCode(ctx, level, code)
	if err != nil {
		return nil, err
	}
	if dragged == nil {
		return nil, apperr.NewNotFoundError("分类节点", code)
	}
	if dragged.IsRoot() {
		return nil, apperr.NewInvalidMoveError(apperr.MoveRuleRootImmovable, code, targetParentCode,
			"Level 1 节点 "+code+" 不可移动")
	}

	// 目标必须正好浅一级
	target, err := s.nodeRepo.GetByLevelCode(ctx, level-1, targetParentCode)
	if err != nil {
		return nil, err
	}
	if target == nil {
		// 同码自移需要先于 NotFound 报出来
		if strings.EqualFold(code, targetParentCode) {
			return nil, apperr.NewInvalidMoveError(apperr.MoveRuleSelfMove, code, targetParentCode,
				"节点 "+code+" 不能移动到自身")
		}
		return nil, apperr.NewNotFoundError("目标父节点", targetParentCode)
	}
	if !target.IsActive {
		return nil, apperr.NewValidationError("target_parent_code",
			"目标父节点 %s 已停用，不能往下挂节点", target.Code)
	}

	oldParentCode := dragged.ParentCode

	err = s.nodeRepo.Transaction(ctx, func(txRepo repository.NodeRepository) error {
		// 事务内重新校验，防止校验后别的移动改了树
		if err := hierarchy.Validate(dragged, target, func(lvl int, c string) (*model.TaxonomyNode, error) {
			return txRepo.GetByLevelCode(ctx, lvl, c)
		}); err != nil {
			return err
		}

		freshTarget, err := txRepo.GetByLevelCode(ctx, target.Level, target.Code)
		if err != nil {
			return err
		}
		if freshTarget == nil || !freshTarget.IsActive {
			return apperr.NewValidationError("target_parent_code",
				"目标父节点 %s 已停用，不能往下挂节点", target.Code)
		}

		// 新父下同名编码冲突
		exists, err := txRepo.ExistsInParent(ctx, dragged.Level, target.Code, dragged.Code)
		if err != nil {
			return err
		}
		if exists && !strings.EqualFold(oldParentCode, target.Code) {
			return apperr.NewConflictError(dragged.Level, dragged.Code, target.Code,
				"目标父节点下已存在编码 "+dragged.Code)
		}

		hierarchy.Apply(dragged, target)

		rows, err := txRepo.UpdateWithVersion(ctx, dragged, map[string]interface{}{
			"parent_code":       dragged.ParentCode,
			"category_code":     dragged.CategoryCode,
			"sub_category_code": dragged.SubCategoryCode,
			"division_code":     dragged.DivisionCode,
			"class_code":        dragged.ClassCode,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NewConflictError(dragged.Level, dragged.Code, target.Code,
				"节点 "+dragged.Code+" 正被并发修改，移动已放弃")
		}

		// 维护新旧父节点的直接子节点数
		if !strings.EqualFold(oldParentCode, target.Code) {
			old, err := txRepo.GetByLevelCode(ctx, dragged.Level-1, oldParentCode)
			if err != nil {
				return err
			}
			if old != nil {
				if err := txRepo.UpdateFields(ctx, old.ID, map[string]interface{}{
					"child_count": gorm.Expr("child_count - 1"),
				}); err != nil {
					return err
				}
			}
			if err := txRepo.UpdateFields(ctx, target.ID, map[string]interface{}{
				"child_count": gorm.Expr("child_count + 1"),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("分类节点已移动",
		zap.Int("level", level),
		zap.String("code", code),
		zap.String("from", oldParentCode),
		zap.String("to", targetParentCode))

	return s.nodeRepo.GetByLevelCode(ctx, level, code)
}

// CanMove 只读校验，拖拽交互预检用
func (s *TaxonomyService) CanMove(ctx context.Context, level int, code, targetParentCode string) error {
	dragged, err := s.nodeRepo.GetByLevelCode(ctx, level, strings.ToUpper(code))
	if err != nil {
		return err
	}
	if dragged == nil {
		return apperr.NewNotFoundError("分类节点", code)
	}
	if dragged.IsRoot() {
		return apperr.NewInvalidMoveError(apperr.MoveRuleRootImmovable, code, targetParentCode,
			"Level 1 节点 "+code+" 不可移动")
	}
	target, err := s.nodeRepo.GetByLevelCode(ctx, level-1, strings.ToUpper(targetParentCode))
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NewNotFoundError("目标父节点", targetParentCode)
	}
	if !target.IsActive {
		return apperr.NewValidationError("target_parent_code",
			"目标父节点 %s 已停用，不能往下挂节点", target.Code)
	}
	return hierarchy.Validate(dragged, target, s.lookup(ctx))
}

// ==================== 停用 / 启用 ====================

// DeactivateNode 软删除
// 有在用子节点或物料时拒绝，除非 cascade 连带停用整棵子树
func (s *TaxonomyService) DeactivateNode(ctx context.Context, level int, code string, cascade bool) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	node, err := s.nodeRepo.GetByLevelCode(ctx, level, code)
	if err != nil {
		return err
	}
	if node == nil {
		return apperr.NewNotFoundError("分类节点", code)
	}

	childCount, err := s.nodeRepo.CountActiveChildren(ctx, level, code)
	if err != nil {
		return err
	}
	itemCount, err := s.itemRepo.CountActiveByNode(ctx, level, code)
	if err != nil {
		return err
	}
	if (childCount > 0 || itemCount > 0) && !cascade {
		return apperr.NewHasActiveChildrenError(code, childCount, itemCount)
	}

	return s.nodeRepo.Transaction(ctx, func(txRepo repository.NodeRepository) error {
		if err := txRepo.UpdateFields(ctx, node.ID, map[string]interface{}{"is_active": false}); err != nil {
			return err
		}
		if cascade {
			affected, err := txRepo.SetSubtreeActive(ctx, node, false)
			if err != nil {
				return err
			}
			s.log.Info("级联停用子树",
				zap.String("code", code),
				zap.Int64("affected", affected))
		}
		return nil
	})
}

// ReactivateNode 重新启用；父节点停用中时拒绝
func (s *TaxonomyService) ReactivateNode(ctx context.Context, level int, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	node, err := s.nodeRepo.GetByLevelCode(ctx, level, code)
	if err != nil {
		return err
	}
	if node == nil {
		return apperr.NewNotFoundError("分类节点", code)
	}

	if node.ParentCode != "" {
		parent, err := s.nodeRepo.GetByLevelCode(ctx, level-1, node.ParentCode)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperr.NewOrphanedNodeError(level, code, node.ParentCode)
		}
		if !parent.IsActive {
			return apperr.NewValidationError("parent_code", "父节点 %s 处于停用状态，不能单独启用子节点", node.ParentCode)
		}
	}

	return s.nodeRepo.UpdateFields(ctx, node.ID, map[string]interface{}{"is_active": true})
}

// ==================== 查询 ====================

// Query 列表查询
func (s *TaxonomyService) Query(ctx context.Context, filter repository.NodeFilter) ([]model.TaxonomyNode, int64, error) {
	filter.ParentCode = strings.ToUpper(strings.TrimSpace(filter.ParentCode))
	return s.nodeRepo.List(ctx, filter)
}

// GetNode 含路径的单节点详情
func (s *TaxonomyService) GetNode(ctx context.Context, level int, code string) (*model.TaxonomyNode, []model.PathEntry, error) {
	node, err := s.nodeRepo.GetByLevelCode(ctx, level, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, nil, err
	}
	if node == nil {
		return nil, nil, apperr.NewNotFoundError("分类节点", code)
	}
	path, err := hierarchy.Path(node, s.lookup(ctx))
	if err != nil {
		return nil, nil, err
	}
	return node, path, nil
}

// Dropdown 某层级的下拉选项，按父编码过滤，只含启用节点
func (s *TaxonomyService) Dropdown(ctx context.Context, level int, parentCode string) ([]DropdownOption, error) {
	nodes, _, err := s.nodeRepo.List(ctx, repository.NodeFilter{
		Level:      level,
		ParentCode: strings.ToUpper(strings.TrimSpace(parentCode)),
	})
	if err != nil {
		return nil, err
	}
	options := make([]DropdownOption, 0, len(nodes))
	for _, n := range nodes {
		options = append(options, DropdownOption{Value: n.Code, Label: n.Name})
	}
	return options, nil
}

// Tree 整棵层级树
func (s *TaxonomyService) Tree(ctx context.Context, includeInactive bool) ([]*TreeNode, error) {
	nodes, err := s.nodeRepo.ListAll(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}

	// level+code -> 树节点
	index := make(map[string]*TreeNode, len(nodes))
	var roots []*TreeNode

	for i := range nodes {
		n := &nodes[i]
		tn := &TreeNode{
			Level:      n.Level,
			Code:       n.Code,
			Name:       n.Name,
			SortOrder:  n.SortOrder,
			IsActive:   n.IsActive,
			ChildCount: n.ChildCount,
		}
		index[treeKey(n.Level, n.Code)] = tn

		if n.Level == model.LevelCategory {
			roots = append(roots, tn)
			continue
		}
		parent, ok := index[treeKey(n.Level-1, n.ParentCode)]
		if !ok {
			// 父节点被过滤掉（停用）或缺失，跳过而不是报错
			continue
		}
		parent.Children = append(parent.Children, tn)
	}
	return roots, nil
}

func treeKey(level int, code string) string {
	return string(rune('0'+level)) + ":" + code
}

// normalizeCode 编码规整 + 格式校验
func normalizeCode(field, raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !codePattern.MatchString(code) {
		return "", apperr.NewValidationError(field, "编码必须是 2-4 位字母数字，当前值 %q", raw)
	}
	return code, nil
}
