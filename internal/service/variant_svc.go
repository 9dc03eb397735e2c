package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
)

// SaveVariantGroupReq 变体组创建/更新请求，成员全量替换
type SaveVariantGroupReq struct {
	VariantType  model.VariantType
	GroupCode    string
	GroupName    string
	Description  string
	Members      []model.VariantValue
	DisplayOrder int
	Operator     string
}

// VariantService 变体组主档服务
type VariantService struct {
	variantRepo repository.VariantRepository
	log         *zap.Logger
}

func NewVariantService(variantRepo repository.VariantRepository, log *zap.Logger) *VariantService {
	return &VariantService{variantRepo: variantRepo, log: log}
}

// ListGroups 某类型下的全部变体组
func (s *VariantService) ListGroups(ctx context.Context, variantType model.VariantType, activeOnly bool) ([]model.VariantGroup, error) {
	if !variantType.Valid() {
		return nil, apperr.NewValidationError("variant_type", "未知变体类型 %q", string(variantType))
	}
	return s.variantRepo.ListByType(ctx, variantType, activeOnly)
}

// GetGroup 单个变体组
func (s *VariantService) GetGroup(ctx context.Context, variantType model.VariantType, groupCode string) (*model.VariantGroup, error) {
	if !variantType.Valid() {
		return nil, apperr.NewValidationError("variant_type", "未知变体类型 %q", string(variantType))
	}
	group, err := s.variantRepo.GetByCode(ctx, variantType, strings.ToUpper(strings.TrimSpace(groupCode)))
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NewNotFoundError("变体组", groupCode)
	}
	return group, nil
}

// SaveGroup 创建或全量替换变体组
func (s *VariantService) SaveGroup(ctx context.Context, req *SaveVariantGroupReq) (*model.VariantGroup, error) {
	if !req.VariantType.Valid() {
		return nil, apperr.NewValidationError("variant_type", "未知变体类型 %q", string(req.VariantType))
	}
	groupCode := strings.ToUpper(strings.TrimSpace(req.GroupCode))
	if groupCode == "" {
		return nil, apperr.NewValidationError("group_code", "变体组编码不能为空")
	}
	if strings.TrimSpace(req.GroupName) == "" {
		return nil, apperr.NewValidationError("group_name", "变体组名称不能为空")
	}
	if len(req.Members) == 0 {
		return nil, apperr.NewValidationError("members", "变体组至少要有一个成员")
	}

	seen := make(map[string]bool, len(req.Members))
	members := make([]model.VariantValue, 0, len(req.Members))
	for _, m := range req.Members {
		code := strings.ToUpper(strings.TrimSpace(m.Code))
		if code == "" || strings.TrimSpace(m.Name) == "" {
			return nil, apperr.NewValidationError("members", "成员编码和名称都不能为空")
		}
		if seen[code] {
			return nil, apperr.NewValidationError("members", "成员编码 %s 重复", code)
		}
		seen[code] = true
		members = append(members, model.VariantValue{Code: code, Name: strings.TrimSpace(m.Name)})
	}

	group := &model.VariantGroup{
		VariantType:  req.VariantType,
		GroupCode:    groupCode,
		GroupName:    strings.TrimSpace(req.GroupName),
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	group.CreatedBy = req.Operator
	group.UpdatedBy = req.Operator
	if err := group.EncodeMembers(members); err != nil {
		return nil, err
	}

	if err := s.variantRepo.Upsert(ctx, group); err != nil {
		return nil, err
	}
	s.log.Info("变体组已保存",
		zap.String("variant_type", string(req.VariantType)),
		zap.String("group_code", groupCode),
		zap.Int("members", len(members)))
	return group, nil
}
