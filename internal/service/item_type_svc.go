package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
)

// 物料类型编码固定两位
var itemTypeCodePattern = regexp.MustCompile(`^[A-Z0-9]{2}$`)

// SaveItemTypeReq 物料类型创建/更新请求
type SaveItemTypeReq struct {
	Code                string
	Name                string
	Description         string
	AllowPurchase       bool
	AllowSale           bool
	TrackInventory      bool
	RequireQualityCheck bool
	DefaultUOM          string
	SortOrder           int
	Operator            string
}

// ItemTypeService 物料类型主档服务
type ItemTypeService struct {
	itemTypeRepo repository.ItemTypeRepository
	nodeRepo     repository.NodeRepository
	itemRepo     repository.ItemRepository
	log          *zap.Logger
}

func NewItemTypeService(
	itemTypeRepo repository.ItemTypeRepository,
	nodeRepo repository.NodeRepository,
	itemRepo repository.ItemRepository,
	log *zap.Logger,
) *ItemTypeService {
	return &ItemTypeService{
		itemTypeRepo: itemTypeRepo,
		nodeRepo:     nodeRepo,
		itemRepo:     itemRepo,
		log:          log,
	}
}

// Create 新建物料类型，编码全局唯一
func (s *ItemTypeService) Create(ctx context.Context, req *SaveItemTypeReq) (*model.ItemType, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !itemTypeCodePattern.MatchString(code) {
		return nil, apperr.NewValidationError("code", "物料类型编码必须是 2 位字母数字，当前值 %q", req.Code)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.NewValidationError("name", "名称不能为空")
	}

	existing, err := s.itemTypeRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewConflictError(0, code, "", "物料类型编码 "+code+" 已存在")
	}

	itemType := &model.ItemType{
		Code:                code,
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		AllowPurchase:       req.AllowPurchase,
		AllowSale:           req.AllowSale,
		TrackInventory:      req.TrackInventory,
		RequireQualityCheck: req.RequireQualityCheck,
		DefaultUOM:          strings.ToUpper(strings.TrimSpace(req.DefaultUOM)),
		SortOrder:           req.SortOrder,
		IsActive:            true,
	}
	if itemType.DefaultUOM == "" {
		itemType.DefaultUOM = "PCS"
	}
	itemType.CreatedBy = req.Operator
	itemType.UpdatedBy = req.Operator

	if err := s.itemTypeRepo.Create(ctx, itemType); err != nil {
		return nil, err
	}
	s.log.Info("物料类型已创建", zap.String("code", code))
	return itemType, nil
}

// Update 更新物料类型；编码一旦签发过编号就只读
func (s *ItemTypeService) Update(ctx context.Context, code string, req *SaveItemTypeReq) (*model.ItemType, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	itemType, err := s.itemTypeRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if itemType == nil {
		return nil, apperr.NewNotFoundError("物料类型", code)
	}

	if req.Code != "" && !strings.EqualFold(req.Code, code) {
		return nil, apperr.NewValidationError("code", "物料类型编码不可修改")
	}

	if strings.TrimSpace(req.Name) != "" {
		itemType.Name = strings.TrimSpace(req.Name)
	}
	itemType.Description = req.Description
	itemType.AllowPurchase = req.AllowPurchase
	itemType.AllowSale = req.AllowSale
	itemType.TrackInventory = req.TrackInventory
	itemType.RequireQualityCheck = req.RequireQualityCheck
	if uom := strings.ToUpper(strings.TrimSpace(req.DefaultUOM)); uom != "" {
		itemType.DefaultUOM = uom
	}
	itemType.SortOrder = req.SortOrder
	itemType.UpdatedBy = req.Operator

	if err := s.itemTypeRepo.Update(ctx, itemType); err != nil {
		return nil, err
	}
	return itemType, nil
}

// Deactivate 停用；还有分类树或物料引用时拒绝
func (s *ItemTypeService) Deactivate(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	itemType, err := s.itemTypeRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if itemType == nil {
		return apperr.NewNotFoundError("物料类型", code)
	}

	nodeCount, err := s.nodeRepo.CountByItemType(ctx, code)
	if err != nil {
		return err
	}
	itemCount, err := s.itemRepo.CountByItemType(ctx, code)
	if err != nil {
		return err
	}
	if nodeCount > 0 || itemCount > 0 {
		return apperr.NewHasActiveChildrenError(code, nodeCount, itemCount)
	}

	itemType.IsActive = false
	return s.itemTypeRepo.Update(ctx, itemType)
}

// Get 单个查询
func (s *ItemTypeService) Get(ctx context.Context, code string) (*model.ItemType, error) {
	itemType, err := s.itemTypeRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if itemType == nil {
		return nil, apperr.NewNotFoundError("物料类型", code)
	}
	return itemType, nil
}

// List 全量列表
func (s *ItemTypeService) List(ctx context.Context, activeOnly bool) ([]model.ItemType, error) {
	return s.itemTypeRepo.List(ctx, activeOnly)
}
