package seed

import (
	"context"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/service"
)

// Seeder 初始主档数据，只补缺不覆盖
type Seeder struct {
	itemTypeSvc *service.ItemTypeService
	taxonomySvc *service.TaxonomyService
	variantSvc  *service.VariantService
	log         *zap.Logger
}

func NewSeeder(
	itemTypeSvc *service.ItemTypeService,
	taxonomySvc *service.TaxonomyService,
	variantSvc *service.VariantService,
	log *zap.Logger,
) *Seeder {
	return &Seeder{
		itemTypeSvc: itemTypeSvc,
		taxonomySvc: taxonomySvc,
		variantSvc:  variantSvc,
		log:         log,
	}
}

// Run 按依赖顺序灌入：物料类型 -> 变体组 -> 分类树
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedItemTypes(ctx); err != nil {
		return err
	}
	if err := s.seedVariantGroups(ctx); err != nil {
		return err
	}
	if err := s.seedTaxonomy(ctx); err != nil {
		return err
	}
	s.log.Info("主档种子数据就绪")
	return nil
}

func (s *Seeder) seedItemTypes(ctx context.Context) error {
	types := []service.SaveItemTypeReq{
		{Code: "FG", Name: "成品", AllowPurchase: false, AllowSale: true, TrackInventory: true, RequireQualityCheck: true, DefaultUOM: "PCS", SortOrder: 1},
		{Code: "RM", Name: "原材料", AllowPurchase: true, AllowSale: false, TrackInventory: true, RequireQualityCheck: true, DefaultUOM: "KG", SortOrder: 2},
		{Code: "SF", Name: "半成品", AllowPurchase: false, AllowSale: false, TrackInventory: true, RequireQualityCheck: true, DefaultUOM: "PCS", SortOrder: 3},
		{Code: "PK", Name: "包装材料", AllowPurchase: true, AllowSale: false, TrackInventory: true, RequireQualityCheck: false, DefaultUOM: "PCS", SortOrder: 4},
		{Code: "CS", Name: "耗材", AllowPurchase: true, AllowSale: false, TrackInventory: false, RequireQualityCheck: false, DefaultUOM: "PCS", SortOrder: 5},
	}
	for i := range types {
		req := types[i]
		req.Operator = "seed"
		if existing, err := s.itemTypeSvc.Get(ctx, req.Code); err == nil && existing != nil {
			continue
		}
		if _, err := s.itemTypeSvc.Create(ctx, &req); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedVariantGroups(ctx context.Context) error {
	groups := []service.SaveVariantGroupReq{
		{
			VariantType: model.VariantColour,
			GroupCode:   "BASIC",
			GroupName:   "基础色",
			Members: []model.VariantValue{
				{Code: "RED", Name: "Red"},
				{Code: "BLU", Name: "Blue"},
				{Code: "BLK", Name: "Black"},
				{Code: "WHT", Name: "White"},
			},
			DisplayOrder: 1,
		},
		{
			VariantType: model.VariantSize,
			GroupCode:   "APPAREL",
			GroupName:   "服装尺码",
			Members: []model.VariantValue{
				{Code: "SM", Name: "Small"},
				{Code: "ME", Name: "Medium"},
				{Code: "LA", Name: "Large"},
				{Code: "XL", Name: "Extra Large"},
			},
			DisplayOrder: 1,
		},
		{
			VariantType: model.VariantUOM,
			GroupCode:   "COMMON",
			GroupName:   "常用单位",
			Members: []model.VariantValue{
				{Code: "PCS", Name: "Pieces"},
				{Code: "KG", Name: "Kilogram"},
				{Code: "M", Name: "Meter"},
			},
			DisplayOrder: 1,
		},
	}
	for i := range groups {
		req := groups[i]
		req.Operator = "seed"
		if existing, err := s.variantSvc.GetGroup(ctx, req.VariantType, req.GroupCode); err == nil && existing != nil {
			continue
		}
		if _, err := s.variantSvc.SaveGroup(ctx, &req); err != nil {
			return err
		}
	}
	return nil
}

// seedTaxonomy 一条示例链路 APRL -> MENS -> TOPW -> TSHT -> CREW
func (s *Seeder) seedTaxonomy(ctx context.Context) error {
	chain := []service.CreateNodeReq{
		{
			Level: 1, Code: "APRL", Name: "Apparel",
			ItemTypeCode: "FG",
			LevelNames: map[string]string{
				"l1": "Category", "l2": "Sub-Category", "l3": "Division", "l4": "Class", "l5": "Sub-Class",
			},
			SortOrder: 1,
		},
		{Level: 2, Code: "MENS", Name: "Menswear", CategoryCode: "APRL", SortOrder: 1},
		{Level: 3, Code: "TOPW", Name: "Topwear", CategoryCode: "APRL", SubCategoryCode: "MENS", SortOrder: 1},
		{Level: 4, Code: "TSHT", Name: "T-Shirts", CategoryCode: "APRL", SubCategoryCode: "MENS", DivisionCode: "TOPW", SortOrder: 1},
		{Level: 5, Code: "CREW", Name: "Crew Neck", CategoryCode: "APRL", SubCategoryCode: "MENS", DivisionCode: "TOPW", ClassCode: "TSHT", SkuCategoryCode: "APRL", SortOrder: 1},
	}
	for i := range chain {
		req := chain[i]
		req.CreatedBy = "seed"
		if node, _, err := s.taxonomySvc.GetNode(ctx, req.Level, req.Code); err == nil && node != nil {
			continue
		}
		if _, err := s.taxonomySvc.CreateNode(ctx, &req); err != nil {
			return err
		}
	}
	return nil
}
