package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
)

// CreateItemReq 建档请求
type CreateItemReq struct {
	Name         string
	ItemTypeCode string
	NodeLevel    int
	NodeCode     string
	ColourName   string
	SizeName     string
	CreatedBy    string
}

// UpdateSelectionReq 变体改选请求，nil 字段不动
type UpdateSelectionReq struct {
	NodeLevel  *int
	NodeCode   *string
	ColourName *string
	SizeName   *string
	UpdatedBy  string
}

// ItemService 物料建档服务
// SKU 定稿前可随选择重算，UID 签发后永不变
type ItemService struct {
	itemRepo     repository.ItemRepository
	nodeRepo     repository.NodeRepository
	itemTypeRepo repository.ItemTypeRepository
	specSvc      *SpecService
	generator    *codegen.Generator
	log          *zap.Logger
}

func NewItemService(
	itemRepo repository.ItemRepository,
	nodeRepo repository.NodeRepository,
	itemTypeRepo repository.ItemTypeRepository,
	specSvc *SpecService,
	generator *codegen.Generator,
	log *zap.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		nodeRepo:     nodeRepo,
		itemTypeRepo: itemTypeRepo,
		specSvc:      specSvc,
		generator:    generator,
		log:          log,
	}
}

// CreateItem 建档并签发 SKU / UID
func (s *ItemService) CreateItem(ctx context.Context, req *CreateItemReq) (*model.Item, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.NewValidationError("name", "名称不能为空")
	}

	itemTypeCode := strings.ToUpper(strings.TrimSpace(req.ItemTypeCode))
	itemType, err := s.itemTypeRepo.GetByCode(ctx, itemTypeCode)
	if err != nil {
		return nil, err
	}
	if itemType == nil || !itemType.IsActive {
		return nil, apperr.NewValidationError("item_type_code", "物料类型 %s 不存在或已停用", itemTypeCode)
	}

	node, err := s.resolveNode(ctx, req.NodeLevel, req.NodeCode)
	if err != nil {
		return nil, err
	}
	if err := s.checkSelection(ctx, node.Code, req.ColourName, req.SizeName); err != nil {
		return nil, err
	}

	result, err := s.generator.Issue(ctx, itemTypeCode, skuCategoryOf(node), req.ColourName, req.SizeName)
	if err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:             strings.TrimSpace(req.Name),
		ItemTypeCode:     itemTypeCode,
		NodeLevel:        node.Level,
		NodeCode:         node.Code,
		ColourName:       strings.TrimSpace(req.ColourName),
		SizeName:         strings.TrimSpace(req.SizeName),
		SKU:              result.SKU,
		UID:              result.UID,
		Sequence:         result.Sequence,
		SequenceDegraded: result.Degraded,
		IsActive:         true,
	}
	item.CreatedBy = req.CreatedBy
	item.UpdatedBy = req.CreatedBy

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("物料已建档",
		zap.String("uid", item.UID),
		zap.String("sku", item.SKU),
		zap.Bool("degraded", item.SequenceDegraded))
	return item, nil
}

// UpdateSelection 定稿前改选分类或变体，用存量序列号重算 SKU
// UID 与序列号不变，不会再向计数器申请号段
func (s *ItemService) UpdateSelection(ctx context.Context, id int64, req *UpdateSelectionReq) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NewNotFoundError("物料", itemKey(id))
	}
	if item.Finalized {
		return nil, apperr.NewValidationError("finalized", "物料 %s 已定稿，编码不可再变", item.UID)
	}

	node, err := s.resolveNode(ctx, item.NodeLevel, item.NodeCode)
	if err != nil {
		return nil, err
	}
	if req.NodeCode != nil {
		level := item.NodeLevel
		if req.NodeLevel != nil {
			level = *req.NodeLevel
		}
		node, err = s.resolveNode(ctx, level, *req.NodeCode)
		if err != nil {
			return nil, err
		}
		item.NodeLevel = node.Level
		item.NodeCode = node.Code
	}
	if req.ColourName != nil {
		item.ColourName = strings.TrimSpace(*req.ColourName)
	}
	if req.SizeName != nil {
		item.SizeName = strings.TrimSpace(*req.SizeName)
	}
	if err := s.checkSelection(ctx, node.Code, item.ColourName, item.SizeName); err != nil {
		return nil, err
	}

	item.SKU = s.generator.Rebuild(item.ItemTypeCode, skuCategoryOf(node), item.Sequence, item.ColourName, item.SizeName)
	item.UpdatedBy = req.UpdatedBy

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Finalize 定稿，之后 SKU 和归属冻结
func (s *ItemService) Finalize(ctx context.Context, id int64, updatedBy string) (*model.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NewNotFoundError("物料", itemKey(id))
	}
	if item.Finalized {
		return item, nil
	}

	item.Finalized = true
	item.UpdatedBy = updatedBy
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("物料已定稿", zap.String("uid", item.UID), zap.String("sku", item.SKU))
	return item, nil
}

// GetByUID UID 精确查找
func (s *ItemService) GetByUID(ctx context.Context, uid string) (*model.Item, error) {
	item, err := s.itemRepo.GetByUID(ctx, strings.ToUpper(strings.TrimSpace(uid)))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NewNotFoundError("物料", uid)
	}
	return item, nil
}

// List 列表查询
func (s *ItemService) List(ctx context.Context, filter repository.ItemFilter) ([]model.Item, int64, error) {
	return s.itemRepo.List(ctx, filter)
}

// ListDegraded 降级序列号的物料，人工复核入口
func (s *ItemService) ListDegraded(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.ListDegraded(ctx)
}

// PreviewSKU 不落库、不占号的 SKU 预览
func (s *ItemService) PreviewSKU(ctx context.Context, itemTypeCode string, nodeLevel int, nodeCode, colourName, sizeName string, sequence int64) (string, error) {
	node, err := s.resolveNode(ctx, nodeLevel, nodeCode)
	if err != nil {
		return "", err
	}
	if sequence <= 0 {
		sequence = 1
	}
	return codegen.GenerateSKU(strings.ToUpper(strings.TrimSpace(itemTypeCode)), skuCategoryOf(node), sequence, colourName, sizeName), nil
}

// resolveNode 物料只能挂在启用节点上
func (s *ItemService) resolveNode(ctx context.Context, level int, code string) (*model.TaxonomyNode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	node, err := s.nodeRepo.GetByLevelCode(ctx, level, code)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, apperr.NewNotFoundError("分类节点", code)
	}
	if !node.IsActive {
		return nil, apperr.NewValidationError("node_code", "分类节点 %s 已停用，不能挂新物料", code)
	}
	return node, nil
}

// checkSelection 按节点规格配置校验变体选择
func (s *ItemService) checkSelection(ctx context.Context, nodeCode, colourName, sizeName string) error {
	cfg, err := s.specSvc.GetConfig(ctx, nodeCode)
	if err != nil {
		return err
	}

	checks := []struct {
		key   model.DimensionKey
		value string
		field string
	}{
		{model.DimColour, strings.TrimSpace(colourName), "colour_name"},
		{model.DimSize, strings.TrimSpace(sizeName), "size_name"},
	}
	for _, c := range checks {
		dim := cfg.Dimension(c.key)
		if !dim.Enabled && c.value != "" {
			return apperr.NewValidationError(c.field, "节点 %s 未启用 %s 维度", nodeCode, string(c.key))
		}
		if dim.Enabled && dim.Required && c.value == "" {
			return apperr.NewValidationError(c.field, "节点 %s 的 %s 维度为必填", nodeCode, string(c.key))
		}
	}
	return nil
}

// skuCategoryOf 节点的 SKU 类目段，未指定时退回节点编码
func skuCategoryOf(node *model.TaxonomyNode) string {
	if node.SkuCategoryCode != "" {
		return node.SkuCategoryCode
	}
	return node.Code
}

func itemKey(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}
