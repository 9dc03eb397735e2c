package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/pkg/utils"
)

// 规格配置读多写少，短 TTL 足够
const specCacheTTL = 5 * time.Minute

// dimensionVariantType 维度对应的变体组类型
var dimensionVariantType = map[model.DimensionKey]model.VariantType{
	model.DimColour:   model.VariantColour,
	model.DimSize:     model.VariantSize,
	model.DimUOM:      model.VariantUOM,
	model.DimBrand:    model.VariantBrand,
	model.DimSupplier: model.VariantSupplier,
}

// SetSpecConfigReq 规格配置全量替换请求
type SetSpecConfigReq struct {
	NodeLevel    int
	NodeCode     string
	Dimensions   map[model.DimensionKey]model.DimensionConfig
	CustomFields []model.CustomField
	UpdatedBy    string
}

// SpecService 节点规格配置服务
// 配置只属于节点自身，从不沿层级继承
type SpecService struct {
	specRepo    repository.SpecRepository
	variantRepo repository.VariantRepository
	nodeRepo    repository.NodeRepository
	log         *zap.Logger
}

func NewSpecService(
	specRepo repository.SpecRepository,
	variantRepo repository.VariantRepository,
	nodeRepo repository.NodeRepository,
	log *zap.Logger,
) *SpecService {
	return &SpecService{
		specRepo:    specRepo,
		variantRepo: variantRepo,
		nodeRepo:    nodeRepo,
		log:         log,
	}
}

// GetConfig 读取节点规格配置，未配置时返回全关的默认配置
func (s *SpecService) GetConfig(ctx context.Context, nodeCode string) (*model.SpecConfig, error) {
	nodeCode = strings.ToUpper(strings.TrimSpace(nodeCode))

	if cached, ok := utils.GetCache(specCacheKey(nodeCode)); ok {
		if cfg, ok := cached.(*model.SpecConfig); ok {
			return cfg, nil
		}
	}

	record, err := s.specRepo.GetByNodeCode(ctx, nodeCode)
	if err != nil {
		return nil, err
	}

	var cfg *model.SpecConfig
	if record == nil || !record.IsActive {
		cfg = model.DefaultSpecConfig(nodeCode)
	} else {
		cfg, err = record.Decode()
		if err != nil {
			return nil, err
		}
	}

	utils.SetCache(specCacheKey(nodeCode), cfg, specCacheTTL)
	return cfg, nil
}

// GetConfigStrict 读取节点规格配置，未配置时报错而不是回退默认
func (s *SpecService) GetConfigStrict(ctx context.Context, nodeCode string) (*model.SpecConfig, error) {
	nodeCode = strings.ToUpper(strings.TrimSpace(nodeCode))

	record, err := s.specRepo.GetByNodeCode(ctx, nodeCode)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.IsActive {
		return nil, apperr.NewNotConfiguredError(nodeCode)
	}
	return record.Decode()
}

// ResolveEffective 生效配置 = 最深选中节点自己的配置（或默认），不合并祖先
func (s *SpecService) ResolveEffective(ctx context.Context, deepestNodeCode string) (*model.SpecConfig, error) {
	return s.GetConfig(ctx, deepestNodeCode)
}

// SetConfig 全量替换节点规格配置
// 请求里没出现的维度和字段会被清掉，不做增量合并
func (s *SpecService) SetConfig(ctx context.Context, req *SetSpecConfigReq) (*model.SpecConfig, error) {
	nodeCode := strings.ToUpper(strings.TrimSpace(req.NodeCode))

	node, err := s.nodeRepo.GetByLevelCode(ctx, req.NodeLevel, nodeCode)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, apperr.NewNotFoundError("分类节点", nodeCode)
	}

	cfg := model.DefaultSpecConfig(nodeCode)
	for key, dim := range req.Dimensions {
		if !key.Valid() {
			return nil, apperr.NewValidationError("dimensions", "未知维度 %q", string(key))
		}
		if dim.Enabled && len(dim.GroupCodes) > 0 {
			if err := s.checkGroupCodes(ctx, key, dim.GroupCodes); err != nil {
				return nil, err
			}
		}
		if !dim.Enabled && dim.Required {
			return nil, apperr.NewValidationError("dimensions", "维度 %s 未启用时不能设为必填", string(key))
		}
		cfg.Dimensions[key] = dim
	}

	seen := make(map[string]bool, len(req.CustomFields))
	for _, field := range req.CustomFields {
		fieldCode := strings.TrimSpace(field.FieldCode)
		if fieldCode == "" {
			return nil, apperr.NewValidationError("custom_fields", "字段编码不能为空")
		}
		if seen[fieldCode] {
			return nil, apperr.NewValidationError("custom_fields", "字段编码 %s 重复", fieldCode)
		}
		seen[fieldCode] = true
		if !field.FieldType.Valid() {
			return nil, apperr.NewValidationError("custom_fields", "字段 %s 的类型 %q 不合法", fieldCode, string(field.FieldType))
		}
		if field.FieldType == model.FieldDropdown && len(field.Options) == 0 {
			return nil, apperr.NewValidationError("custom_fields", "下拉字段 %s 必须提供选项", fieldCode)
		}
	}
	cfg.CustomFields = req.CustomFields

	record := &model.SpecificationConfig{
		NodeLevel: node.Level,
		IsActive:  true,
	}
	record.UpdatedBy = req.UpdatedBy
	if err := record.Encode(cfg); err != nil {
		return nil, err
	}
	if err := s.specRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	utils.DeleteCache(specCacheKey(nodeCode))
	s.log.Info("规格配置已保存",
		zap.String("node_code", nodeCode),
		zap.Int("node_level", node.Level))
	return cfg, nil
}

// DeleteConfig 删除节点规格配置，之后读取回到默认配置
func (s *SpecService) DeleteConfig(ctx context.Context, nodeCode string) error {
	nodeCode = strings.ToUpper(strings.TrimSpace(nodeCode))
	if err := s.specRepo.Delete(ctx, nodeCode); err != nil {
		return err
	}
	utils.DeleteCache(specCacheKey(nodeCode))
	return nil
}

// checkGroupCodes 校验维度引用的变体组都存在
func (s *SpecService) checkGroupCodes(ctx context.Context, key model.DimensionKey, groupCodes []string) error {
	variantType := dimensionVariantType[key]
	found, err := s.variantRepo.FilterExisting(ctx, variantType, groupCodes)
	if err != nil {
		return err
	}
	if len(found) == len(groupCodes) {
		return nil
	}
	existing := make(map[string]bool, len(found))
	for _, c := range found {
		existing[c] = true
	}
	for _, c := range groupCodes {
		if !existing[c] {
			return apperr.NewValidationError("dimensions", "维度 %s 引用的变体组 %s 不存在", string(key), c)
		}
	}
	return nil
}

func specCacheKey(nodeCode string) string {
	return "spec_config:" + nodeCode
}
