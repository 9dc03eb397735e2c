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
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/pkg/utils"
)

// ==================== 测试辅助 ====================

func newSpecTestService(t *testing.T, nodeCodes ...string) *SpecService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.TaxonomyNode{},
		&model.SpecificationConfig{},
		&model.VariantGroup{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	// 进程级缓存可能残留其他用例写入的同名键
	for _, code := range nodeCodes {
		utils.DeleteCache("spec_config:" + code)
	}

	// 父子两个节点：配置只挂父节点，用来验证不继承
	for i, code := range nodeCodes {
		node := &model.TaxonomyNode{Level: i + 1, Code: code, Name: code, IsActive: true}
		if i > 0 {
			node.ParentCode = nodeCodes[i-1]
			node.CategoryCode = nodeCodes[0]
		}
		if err := db.Create(node).Error; err != nil {
			t.Fatalf("建节点失败: %v", err)
		}
	}

	// 一个基础色变体组
	group := &model.VariantGroup{VariantType: model.VariantColour, GroupCode: "BASIC", GroupName: "基础色", IsActive: true}
	if err := group.EncodeMembers([]model.VariantValue{{Code: "RED", Name: "Red"}}); err != nil {
		t.Fatalf("编码成员失败: %v", err)
	}
	db.Create(group)

	return NewSpecService(
		repository.NewSpecRepository(db),
		repository.NewVariantRepository(db),
		repository.NewNodeRepository(db),
		zap.NewNop(),
	)
}

func enabledColour(required bool, groups ...string) map[model.DimensionKey]model.DimensionConfig {
	return map[model.DimensionKey]model.DimensionConfig{
		model.DimColour: {Enabled: true, Required: required, GroupCodes: groups},
	}
}

// ==================== 读取 ====================

func TestGetConfigDefault(t *testing.T) {
	svc := newSpecTestService(t, "SPA1")
	ctx := context.Background()

	cfg, err := svc.GetConfig(ctx, "SPA1")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	// 未配置时回全关默认
	for _, dim := range model.AllDimensions {
		if cfg.Dimension(dim).Enabled {
			t.Errorf("默认配置维度 %s 不应启用", dim)
		}
	}
	if len(cfg.CustomFields) != 0 {
		t.Errorf("默认配置不应有自定义字段: %v", cfg.CustomFields)
	}
}

func TestGetConfigStrictMissing(t *testing.T) {
	svc := newSpecTestService(t, "SPA2")

	_, err := svc.GetConfigStrict(context.Background(), "SPA2")
	var notConfigured *apperr.NotConfiguredError
	if !errors.As(err, &notConfigured) {
		t.Fatalf("未配置节点 strict 读取应报 NotConfiguredError, 实际 %v", err)
	}
}

// ==================== 写入 ====================

func TestSetConfigFullReplace(t *testing.T) {
	svc := newSpecTestService(t, "SPA3")
	ctx := context.Background()

	_, err := svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel:  1,
		NodeCode:   "SPA3",
		Dimensions: enabledColour(true, "BASIC"),
		CustomFields: []model.CustomField{
			{FieldCode: "fabric", FieldName: "面料", FieldType: model.FieldText},
		},
	})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	// 第二次保存不带自定义字段，应整体替换而不是合并
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel:  1,
		NodeCode:   "SPA3",
		Dimensions: enabledColour(false),
	})
	if err != nil {
		t.Fatalf("第二次保存失败: %v", err)
	}

	cfg, err := svc.GetConfigStrict(ctx, "SPA3")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(cfg.CustomFields) != 0 {
		t.Errorf("全量替换后自定义字段应清空: %v", cfg.CustomFields)
	}
	if cfg.Dimension(model.DimColour).Required {
		t.Error("required 应被替换为 false")
	}
}

func TestSetConfigValidation(t *testing.T) {
	svc := newSpecTestService(t, "SPA4")
	ctx := context.Background()
	var valErr *apperr.ValidationError

	// 未知维度
	_, err := svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		Dimensions: map[model.DimensionKey]model.DimensionConfig{"weight": {Enabled: true}},
	})
	if !errors.As(err, &valErr) {
		t.Errorf("未知维度: %v", err)
	}

	// 引用不存在的变体组
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		Dimensions: enabledColour(false, "NOPE"),
	})
	if !errors.As(err, &valErr) {
		t.Errorf("引用不存在变体组: %v", err)
	}

	// 未启用却必填
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		Dimensions: map[model.DimensionKey]model.DimensionConfig{
			model.DimSize: {Enabled: false, Required: true},
		},
	})
	if !errors.As(err, &valErr) {
		t.Errorf("未启用却必填: %v", err)
	}

	// 非法字段类型
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		CustomFields: []model.CustomField{
			{FieldCode: "f1", FieldName: "x", FieldType: "RADIO"},
		},
	})
	if !errors.As(err, &valErr) {
		t.Errorf("非法字段类型: %v", err)
	}

	// 字段编码重复
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		CustomFields: []model.CustomField{
			{FieldCode: "f1", FieldName: "x", FieldType: model.FieldText},
			{FieldCode: "f1", FieldName: "y", FieldType: model.FieldText},
		},
	})
	if !errors.As(err, &valErr) {
		t.Errorf("字段编码重复: %v", err)
	}

	// 下拉字段必须有选项
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel: 1, NodeCode: "SPA4",
		CustomFields: []model.CustomField{
			{FieldCode: "f2", FieldName: "x", FieldType: model.FieldDropdown},
		},
	})
	if !errors.As(err, &valErr) {
		t.Errorf("下拉无选项: %v", err)
	}

	// 节点不存在
	_, err = svc.SetConfig(ctx, &SetSpecConfigReq{NodeLevel: 1, NodeCode: "NOPE"})
	var notFound *apperr.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("节点不存在: %v", err)
	}
}

// ==================== 不继承 ====================

func TestConfigNotInherited(t *testing.T) {
	svc := newSpecTestService(t, "SPA5", "SPB5")
	ctx := context.Background()

	// 只给父节点配颜色
	_, err := svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel:  1,
		NodeCode:   "SPA5",
		Dimensions: enabledColour(true, "BASIC"),
	})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	// 子节点读出来必须还是全关默认，不吃父配置
	child, err := svc.ResolveEffective(ctx, "SPB5")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if child.Dimension(model.DimColour).Enabled {
		t.Error("子节点不应继承父节点的规格配置")
	}
}

// ==================== 删除 ====================

func TestDeleteConfig(t *testing.T) {
	svc := newSpecTestService(t, "SPA6")
	ctx := context.Background()

	_, err := svc.SetConfig(ctx, &SetSpecConfigReq{
		NodeLevel:  1,
		NodeCode:   "SPA6",
		Dimensions: enabledColour(false),
	})
	if err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	if err := svc.DeleteConfig(ctx, "SPA6"); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	cfg, err := svc.GetConfig(ctx, "SPA6")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if cfg.Dimension(model.DimColour).Enabled {
		t.Error("删除后应回到默认配置")
	}
}
