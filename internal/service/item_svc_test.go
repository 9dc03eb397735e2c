package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/pkg/utils"
)

// ==================== 测试辅助 ====================

type itemTestEnv struct {
	itemSvc *ItemService
	specSvc *SpecService
	db      *gorm.DB
}

// newItemTestEnv 起一套完整的建档环境：FG 类型 + 一个 L1 节点 + 内存计数器
func newItemTestEnv(t *testing.T, nodeCode string) *itemTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.ItemType{},
		&model.TaxonomyNode{},
		&model.SpecificationConfig{},
		&model.VariantGroup{},
		&model.Item{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	utils.DeleteCache("spec_config:" + nodeCode)

	db.Create(&model.ItemType{Code: "FG", Name: "成品", DefaultUOM: "PCS", IsActive: true})
	db.Create(&model.TaxonomyNode{Level: 1, Code: nodeCode, Name: nodeCode, ItemTypeCode: "FG", IsActive: true})

	nodeRepo := repository.NewNodeRepository(db)
	itemTypeRepo := repository.NewItemTypeRepository(db)
	itemRepo := repository.NewItemRepository(db)
	specSvc := NewSpecService(
		repository.NewSpecRepository(db),
		repository.NewVariantRepository(db),
		nodeRepo,
		zap.NewNop(),
	)
	generator := codegen.NewGenerator(codegen.NewMemoryAllocator(), zap.NewNop())

	return &itemTestEnv{
		itemSvc: NewItemService(itemRepo, nodeRepo, itemTypeRepo, specSvc, generator, zap.NewNop()),
		specSvc: specSvc,
		db:      db,
	}
}

// enableColourSize 给节点开启颜色 + 尺码维度
func (e *itemTestEnv) enableColourSize(t *testing.T, nodeCode string, required bool) {
	t.Helper()
	_, err := e.specSvc.SetConfig(context.Background(), &SetSpecConfigReq{
		NodeLevel: 1,
		NodeCode:  nodeCode,
		Dimensions: map[model.DimensionKey]model.DimensionConfig{
			model.DimColour: {Enabled: true, Required: required},
			model.DimSize:   {Enabled: true, Required: required},
		},
	})
	if err != nil {
		t.Fatalf("配置规格失败: %v", err)
	}
}

// ==================== 建档 ====================

func TestCreateItemIssuesCodes(t *testing.T) {
	env := newItemTestEnv(t, "APRL")
	env.enableColourSize(t, "APRL", false)
	ctx := context.Background()

	item, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name:         "Crew Neck Tee",
		ItemTypeCode: "FG",
		NodeLevel:    1,
		NodeCode:     "APRL",
		ColourName:   "Red",
		SizeName:     "Medium",
	})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	if item.SKU != "FG-APRL-A0001-RED0-ME" {
		t.Errorf("SKU = %s, 期望 FG-APRL-A0001-RED0-ME", item.SKU)
	}
	if item.UID != "FGAP0001" {
		t.Errorf("UID = %s, 期望 FGAP0001", item.UID)
	}
	if item.Sequence != 1 || item.SequenceDegraded {
		t.Errorf("序列号: seq=%d degraded=%v", item.Sequence, item.SequenceDegraded)
	}

	// 第二件顺位拿 2
	second, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "Tee 2", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "APRL",
	})
	if err != nil {
		t.Fatalf("第二件建档失败: %v", err)
	}
	if second.Sequence != 2 || second.UID != "FGAP0002" {
		t.Errorf("第二件: seq=%d uid=%s", second.Sequence, second.UID)
	}
}

func TestCreateItemSelectionRules(t *testing.T) {
	env := newItemTestEnv(t, "ITM1")
	ctx := context.Background()
	var valErr *apperr.ValidationError

	// 维度未启用时不准带变体
	_, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM1", ColourName: "Red",
	})
	if !errors.As(err, &valErr) {
		t.Errorf("未启用维度带值: %v", err)
	}

	// 必填维度缺值
	env.enableColourSize(t, "ITM1", true)
	_, err = env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM1",
	})
	if !errors.As(err, &valErr) {
		t.Errorf("必填缺值: %v", err)
	}

	// 停用节点不能挂新物料
	env.db.Model(&model.TaxonomyNode{}).Where("code = ?", "ITM1").Update("is_active", false)
	_, err = env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM1",
		ColourName: "Red", SizeName: "Medium",
	})
	if !errors.As(err, &valErr) {
		t.Errorf("停用节点建档: %v", err)
	}
}

// ==================== 改选与定稿 ====================

func TestUpdateSelectionRebuildsSKU(t *testing.T) {
	env := newItemTestEnv(t, "ITM2")
	env.enableColourSize(t, "ITM2", false)
	ctx := context.Background()

	item, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM2",
		ColourName: "Red", SizeName: "Medium",
	})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	originalUID := item.UID

	colour := "Blue"
	updated, err := env.itemSvc.UpdateSelection(ctx, item.ID, &UpdateSelectionReq{ColourName: &colour})
	if err != nil {
		t.Fatalf("改选失败: %v", err)
	}
	if updated.SKU != "FG-ITM2-A0001-BLUE-ME" {
		t.Errorf("重算 SKU = %s", updated.SKU)
	}
	// 序列号复用、UID 冻结
	if updated.Sequence != item.Sequence {
		t.Errorf("改选不应重新占号: %d -> %d", item.Sequence, updated.Sequence)
	}
	if updated.UID != originalUID {
		t.Errorf("UID 不可变更: %s -> %s", originalUID, updated.UID)
	}
}

func TestFinalizeFreezesItem(t *testing.T) {
	env := newItemTestEnv(t, "ITM3")
	env.enableColourSize(t, "ITM3", false)
	ctx := context.Background()

	item, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM3",
		ColourName: "Red", SizeName: "Medium",
	})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	if _, err := env.itemSvc.Finalize(ctx, item.ID, "tester"); err != nil {
		t.Fatalf("定稿失败: %v", err)
	}

	colour := "Blue"
	_, err = env.itemSvc.UpdateSelection(ctx, item.ID, &UpdateSelectionReq{ColourName: &colour})
	var valErr *apperr.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("定稿后改选应被拒绝, 实际 %v", err)
	}

	// 定稿幂等
	again, err := env.itemSvc.Finalize(ctx, item.ID, "tester")
	if err != nil || !again.Finalized {
		t.Errorf("重复定稿: %v, finalized=%v", err, again.Finalized)
	}
}

// ==================== 降级 ====================

// failingAllocator 永远失败的分配器
type failingAllocator struct{}

func (failingAllocator) Next(ctx context.Context, itemTypeCode string) (int64, error) {
	return 0, errors.New("counter down")
}

func TestCreateItemDegradedSequence(t *testing.T) {
	env := newItemTestEnv(t, "ITM4")
	env.enableColourSize(t, "ITM4", false)

	// 换成必挂的分配器，走降级路径
	degradedGen := codegen.NewGenerator(failingAllocator{}, zap.NewNop())
	env.itemSvc.generator = degradedGen

	item, err := env.itemSvc.CreateItem(context.Background(), &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM4",
	})
	if err != nil {
		t.Fatalf("降级路径建档不应失败: %v", err)
	}
	if !item.SequenceDegraded || item.Sequence != 1 {
		t.Errorf("降级标记: seq=%d degraded=%v", item.Sequence, item.SequenceDegraded)
	}

	degraded, err := env.itemSvc.ListDegraded(context.Background())
	if err != nil || len(degraded) != 1 {
		t.Errorf("降级清单: %v, err = %v", degraded, err)
	}
}

// ==================== 查询 ====================

func TestGetByUID(t *testing.T) {
	env := newItemTestEnv(t, "ITM5")
	env.enableColourSize(t, "ITM5", false)
	ctx := context.Background()

	item, err := env.itemSvc.CreateItem(ctx, &CreateItemReq{
		Name: "x", ItemTypeCode: "FG", NodeLevel: 1, NodeCode: "ITM5",
	})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	found, err := env.itemSvc.GetByUID(ctx, item.UID)
	if err != nil || found.ID != item.ID {
		t.Errorf("UID 查找: %v, err = %v", found, err)
	}

	_, err = env.itemSvc.GetByUID(ctx, "ZZZZ9999")
	var notFound *apperr.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("不存在的 UID: %v", err)
	}
}
