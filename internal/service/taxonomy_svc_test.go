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
)

// ==================== 测试辅助 ====================

func setupTaxonomyTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.ItemType{},
		&model.TaxonomyNode{},
		&model.Item{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func newTaxonomyTestService(t *testing.T) (*TaxonomyService, *gorm.DB) {
	db := setupTaxonomyTestDB(t)
	nodeRepo := repository.NewNodeRepository(db)
	itemTypeRepo := repository.NewItemTypeRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// 物料类型主档先就位
	db.Create(&model.ItemType{Code: "FG", Name: "成品", DefaultUOM: "PCS", IsActive: true})

	return NewTaxonomyService(nodeRepo, itemTypeRepo, itemRepo, zap.NewNop()), db
}

func mustCreateChain(t *testing.T, svc *TaxonomyService) {
	t.Helper()
	ctx := context.Background()

	reqs := []*CreateNodeReq{
		{Level: 1, Code: "APRL", Name: "Apparel", ItemTypeCode: "FG",
			LevelNames: map[string]string{"l1": "Category", "l2": "Sub-Category"}},
		{Level: 2, Code: "MENS", Name: "Menswear", CategoryCode: "APRL"},
		{Level: 2, Code: "WMNS", Name: "Womenswear", CategoryCode: "APRL"},
		{Level: 3, Code: "TOPW", Name: "Topwear", CategoryCode: "APRL", SubCategoryCode: "MENS"},
		{Level: 4, Code: "TSHT", Name: "T-Shirts", CategoryCode: "APRL", SubCategoryCode: "MENS", DivisionCode: "TOPW"},
		{Level: 5, Code: "CREW", Name: "Crew Neck", CategoryCode: "APRL", SubCategoryCode: "MENS", DivisionCode: "TOPW", ClassCode: "TSHT"},
	}
	for _, req := range reqs {
		if _, err := svc.CreateNode(ctx, req); err != nil {
			t.Fatalf("创建 %s (L%d) 失败: %v", req.Code, req.Level, err)
		}
	}
}

// ==================== 创建 ====================

func TestCreateNodeNormalization(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	ctx := context.Background()

	node, err := svc.CreateNode(ctx, &CreateNodeReq{
		Level: 1, Code: "  aprl ", Name: " Apparel ",
		ItemTypeCode: "fg",
		LevelNames:   map[string]string{"l1": "Category"},
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if node.Code != "APRL" {
		t.Errorf("编码未大写规整: %s", node.Code)
	}
	if node.ItemTypeCode != "FG" {
		t.Errorf("物料类型未规整: %s", node.ItemTypeCode)
	}
	if node.Name != "Apparel" {
		t.Errorf("名称未去空白: %q", node.Name)
	}
}

func TestCreateNodeCodeFormat(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	ctx := context.Background()

	for _, bad := range []string{"", "A", "TOOLONG", "AB!", "中文"} {
		_, err := svc.CreateNode(ctx, &CreateNodeReq{
			Level: 1, Code: bad, Name: "x", ItemTypeCode: "FG",
			LevelNames: map[string]string{"l1": "Category"},
		})
		var valErr *apperr.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("编码 %q 应被拒绝, 实际 %v", bad, err)
		}
	}
}

func TestCreateNodeLevel1Requirements(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	ctx := context.Background()

	// 缺物料类型
	_, err := svc.CreateNode(ctx, &CreateNodeReq{
		Level: 1, Code: "AA", Name: "x",
		LevelNames: map[string]string{"l1": "Category"},
	})
	var valErr *apperr.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("缺物料类型应被拒绝, 实际 %v", err)
	}

	// 缺层级命名
	_, err = svc.CreateNode(ctx, &CreateNodeReq{
		Level: 1, Code: "AA", Name: "x", ItemTypeCode: "FG",
	})
	if !errors.As(err, &valErr) {
		t.Errorf("缺层级命名应被拒绝, 实际 %v", err)
	}
}

func TestCreateNodeChainValidation(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	// 祖先链不完整
	_, err := svc.CreateNode(ctx, &CreateNodeReq{
		Level: 3, Code: "BOTW", Name: "Bottomwear", CategoryCode: "APRL",
	})
	var valErr *apperr.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("缺 L2 编码应被拒绝, 实际 %v", err)
	}

	// 祖先不存在
	_, err = svc.CreateNode(ctx, &CreateNodeReq{
		Level: 2, Code: "KIDS", Name: "Kids", CategoryCode: "NOPE",
	})
	if !errors.As(err, &valErr) {
		t.Errorf("祖先不存在应被拒绝, 实际 %v", err)
	}
}

func TestCreateNodeConflict(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	// 同层同编码，大小写不同也算重复
	_, err := svc.CreateNode(ctx, &CreateNodeReq{
		Level: 2, Code: "mens", Name: "dup", CategoryCode: "APRL",
	})
	var conflict *apperr.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("重复编码应返回 ConflictError, 实际 %v", err)
	}
}

func TestCreateNodeChildCountAndSkuCode(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	parent, _, err := svc.GetNode(ctx, 4, "TSHT")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if parent.ChildCount != 1 {
		t.Errorf("child_count = %d, 期望 1", parent.ChildCount)
	}

	// L5 没显式给 sku_category_code 时按名称派生
	leaf, _, _ := svc.GetNode(ctx, 5, "CREW")
	if leaf.SkuCategoryCode != "CN" {
		t.Errorf("sku_category_code = %s, 期望按名称派生为 CN", leaf.SkuCategoryCode)
	}
}

// ==================== 更新与 level_names 回写 ====================

func TestUpdateNodeLevelNamesWriteThrough(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	// 从 L3 节点改层级命名，要落到 L1 祖先上
	_, err := svc.UpdateNode(ctx, 3, "TOPW", &UpdateNodeReq{
		LevelNames: map[string]string{"l3": "Dept"},
	})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}

	root, _, _ := svc.GetNode(ctx, 1, "APRL")
	if got, _ := root.LevelNames["l3"].(string); got != "Dept" {
		t.Errorf("根节点 level_names 未更新: %v", root.LevelNames)
	}
}

func TestUpdateNodeFields(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	name := "Mens"
	sort := 9
	node, err := svc.UpdateNode(ctx, 2, "MENS", &UpdateNodeReq{Name: &name, SortOrder: &sort})
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if node.Name != "Mens" || node.SortOrder != 9 {
		t.Errorf("更新结果: name=%s sort=%d", node.Name, node.SortOrder)
	}

	_, err = svc.UpdateNode(ctx, 2, "NOPE", &UpdateNodeReq{Name: &name})
	var notFound *apperr.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("不存在的节点应返回 NotFoundError, 实际 %v", err)
	}
}

// ==================== 移动 ====================

func TestMoveNode(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	moved, err := svc.MoveNode(ctx, 3, "TOPW", "WMNS")
	if err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if moved.ParentCode != "WMNS" || moved.SubCategoryCode != "WMNS" {
		t.Errorf("移动后父引用: parent=%s sub=%s", moved.ParentCode, moved.SubCategoryCode)
	}

	// 旧父 -1，新父 +1
	oldParent, _, _ := svc.GetNode(ctx, 2, "MENS")
	newParent, _, _ := svc.GetNode(ctx, 2, "WMNS")
	if oldParent.ChildCount != 0 || newParent.ChildCount != 1 {
		t.Errorf("child_count 维护错误: old=%d new=%d", oldParent.ChildCount, newParent.ChildCount)
	}

	// 后代不用改写，路径按父引用现算
	_, path, err := svc.GetNode(ctx, 5, "CREW")
	if err != nil {
		t.Fatalf("查询后代路径失败: %v", err)
	}
	if len(path) != 5 || path[1].Code != "WMNS" {
		t.Errorf("后代路径未跟随移动: %v", path)
	}
}

func TestMoveNodeRules(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	var moveErr *apperr.InvalidMoveError

	// 根节点不可移动
	_, err := svc.MoveNode(ctx, 1, "APRL", "MENS")
	if !errors.As(err, &moveErr) || moveErr.Rule != apperr.MoveRuleRootImmovable {
		t.Errorf("根节点移动: %v", err)
	}

	// 层级差必须正好为 1：L4 直接挂 L2 时按 (level-1) 找不到目标
	_, err = svc.MoveNode(ctx, 4, "TSHT", "MENS")
	var notFound *apperr.NotFoundError
	if !errors.As(err, &notFound) && !errors.As(err, &moveErr) {
		t.Errorf("跨层级移动: %v", err)
	}
}

func TestMoveNodeInactiveTarget(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	if err := svc.DeactivateNode(ctx, 2, "WMNS", false); err != nil {
		t.Fatalf("停用目标父节点失败: %v", err)
	}

	// 停用的父节点不能往下挂，否则又造出停用祖先下挂在用后代的形状
	var valErr *apperr.ValidationError
	_, err := svc.MoveNode(ctx, 3, "TOPW", "WMNS")
	if !errors.As(err, &valErr) {
		t.Errorf("移到停用父节点应被拒绝, 实际 %v", err)
	}
	if err := svc.CanMove(ctx, 3, "TOPW", "WMNS"); !errors.As(err, &valErr) {
		t.Errorf("预检也应拒绝停用父节点, 实际 %v", err)
	}

	// 没有真的移动
	node, _, _ := svc.GetNode(ctx, 3, "TOPW")
	if node.ParentCode != "MENS" {
		t.Errorf("拒绝移动后 parent=%s", node.ParentCode)
	}
}

func TestMoveNodeDryRun(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	if err := svc.CanMove(ctx, 3, "TOPW", "WMNS"); err != nil {
		t.Errorf("预检应通过: %v", err)
	}

	// 预检不落库
	node, _, _ := svc.GetNode(ctx, 3, "TOPW")
	if node.ParentCode != "MENS" {
		t.Errorf("预检不应改数据: parent=%s", node.ParentCode)
	}
}

// ==================== 停用 / 启用 ====================

func TestDeactivateNodeBlockedByChildren(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	err := svc.DeactivateNode(ctx, 2, "MENS", false)
	var hasChildren *apperr.HasActiveChildrenError
	if !errors.As(err, &hasChildren) {
		t.Fatalf("有在用子节点应拒绝停用, 实际 %v", err)
	}
}

func TestDeactivateNodeCascade(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	if err := svc.DeactivateNode(ctx, 2, "MENS", true); err != nil {
		t.Fatalf("级联停用失败: %v", err)
	}

	for _, probe := range []struct {
		level int
		code  string
	}{{2, "MENS"}, {3, "TOPW"}, {4, "TSHT"}, {5, "CREW"}} {
		n, _, err := svc.GetNode(ctx, probe.level, probe.code)
		if err != nil {
			t.Fatalf("查询 %s 失败: %v", probe.code, err)
		}
		if n.IsActive {
			t.Errorf("%s 应随级联停用", probe.code)
		}
	}

	// 旁支不受影响
	w, _, _ := svc.GetNode(ctx, 2, "WMNS")
	if !w.IsActive {
		t.Error("旁支节点不应被停用")
	}
}

func TestMoveThenCascadeDeactivate(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	// 移动不回写后代的冗余祖先列，级联必须沿 parent_code 找后代
	if _, err := svc.MoveNode(ctx, 3, "TOPW", "WMNS"); err != nil {
		t.Fatalf("移动失败: %v", err)
	}

	// 移走的子树不再归旧父管
	if err := svc.DeactivateNode(ctx, 2, "MENS", true); err != nil {
		t.Fatalf("级联停用旧父失败: %v", err)
	}
	for _, probe := range []struct {
		level int
		code  string
	}{{3, "TOPW"}, {4, "TSHT"}, {5, "CREW"}} {
		n, _, err := svc.GetNode(ctx, probe.level, probe.code)
		if err != nil {
			t.Fatalf("查询 %s 失败: %v", probe.code, err)
		}
		if !n.IsActive {
			t.Errorf("%s (L%d) 已移走，不应随旧父停用", probe.code, probe.level)
		}
	}

	// 新父级联要把移进来的子树整棵停掉
	if err := svc.DeactivateNode(ctx, 2, "WMNS", true); err != nil {
		t.Fatalf("级联停用新父失败: %v", err)
	}
	for _, probe := range []struct {
		level int
		code  string
	}{{2, "WMNS"}, {3, "TOPW"}, {4, "TSHT"}, {5, "CREW"}} {
		n, _, err := svc.GetNode(ctx, probe.level, probe.code)
		if err != nil {
			t.Fatalf("查询 %s 失败: %v", probe.code, err)
		}
		if n.IsActive {
			t.Errorf("%s (L%d) 应随新父级联停用但仍在用", probe.code, probe.level)
		}
	}
}

func TestReactivateNodeParentInactive(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	if err := svc.DeactivateNode(ctx, 2, "MENS", true); err != nil {
		t.Fatalf("级联停用失败: %v", err)
	}

	// 父节点还停着，子节点不能单独启用
	err := svc.ReactivateNode(ctx, 3, "TOPW")
	var valErr *apperr.ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("父停用时启用子节点应被拒绝, 实际 %v", err)
	}

	// 自上而下启用则可以
	if err := svc.ReactivateNode(ctx, 2, "MENS"); err != nil {
		t.Fatalf("启用父节点失败: %v", err)
	}
	if err := svc.ReactivateNode(ctx, 3, "TOPW"); err != nil {
		t.Fatalf("启用子节点失败: %v", err)
	}
}

// ==================== 查询 ====================

func TestTreeAndDropdown(t *testing.T) {
	svc, _ := newTaxonomyTestService(t)
	mustCreateChain(t, svc)
	ctx := context.Background()

	tree, err := svc.Tree(ctx, false)
	if err != nil {
		t.Fatalf("Tree 失败: %v", err)
	}
	if len(tree) != 1 || tree[0].Code != "APRL" {
		t.Fatalf("树根: %v", tree)
	}
	if len(tree[0].Children) != 2 {
		t.Errorf("L2 子节点数 = %d, 期望 2", len(tree[0].Children))
	}

	options, err := svc.Dropdown(ctx, 2, "APRL")
	if err != nil {
		t.Fatalf("Dropdown 失败: %v", err)
	}
	if len(options) != 2 {
		t.Errorf("下拉选项数 = %d, 期望 2", len(options))
	}
	for _, opt := range options {
		if opt.Value == "" || opt.Label == "" {
			t.Errorf("空选项: %+v", opt)
		}
	}
}
