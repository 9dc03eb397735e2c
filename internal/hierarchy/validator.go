// Package hierarchy 分类树结构校验
// 纯函数，不直接碰数据库，节点查询通过 NodeLookup 注入
package hierarchy

import (
	"fmt"
	"strings"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/model"
)

// NodeLookup 按 (level, code) 查节点，不存在时返回 (nil, nil)
type NodeLookup func(level int, code string) (*model.TaxonomyNode, error)

// ==================== 移动校验 ====================

// Validate 校验 dragged 能否挂到 target 下
// 规则按序检查：根节点不可移动 → 不能移给自己 → 目标必须正好浅一级 → 不能形成环
// 违规返回 *apperr.InvalidMoveError，合法返回 nil
func Validate(dragged, target *model.TaxonomyNode, lookup NodeLookup) error {
	if dragged.IsRoot() {
		return apperr.NewInvalidMoveError(apperr.MoveRuleRootImmovable, dragged.Code, target.Code,
			fmt.Sprintf("Level 1 节点 %s 不可移动", dragged.Code))
	}

	if strings.EqualFold(dragged.Code, target.Code) {
		return apperr.NewInvalidMoveError(apperr.MoveRuleSelfMove, dragged.Code, target.Code,
			fmt.Sprintf("节点 %s 不能移动到自身", dragged.Code))
	}

	if target.Level != dragged.Level-1 {
		return apperr.NewInvalidMoveError(apperr.MoveRuleLevelDelta, dragged.Code, target.Code,
			fmt.Sprintf("节点 %s (L%d) 只能挂到 L%d 节点下，目标 %s 是 L%d",
				dragged.Code, dragged.Level, dragged.Level-1, target.Code, target.Level))
	}

	// 环检查：沿 target 的祖先链回溯，撞到 dragged 即为环
	// 层级规则已保证 target 更浅，这里防的是 dragged 本身在 target 的祖先链上
	cur := target
	for cur.Level > model.LevelCategory {
		parent, err := lookup(cur.Level-1, cur.ParentCode)
		if err != nil {
			return err
		}
		if parent == nil {
			return apperr.NewOrphanedNodeError(cur.Level, cur.Code, cur.ParentCode)
		}
		if parent.Same(dragged) {
			return apperr.NewInvalidMoveError(apperr.MoveRuleCycle, dragged.Code, target.Code,
				fmt.Sprintf("目标 %s 是节点 %s 的后代，移动会形成环", target.Code, dragged.Code))
		}
		cur = parent
	}

	return nil
}

// CanMove 布尔版校验
func CanMove(dragged, target *model.TaxonomyNode, lookup NodeLookup) bool {
	return Validate(dragged, target, lookup) == nil
}

// Apply 把 dragged 挂到 target 下，原地改写父引用和冗余祖先编码
// 后代节点不需要任何改动：它们的路径是按 ParentCode 现算的
// 调用方负责先 Validate、再在一个事务里落库
func Apply(dragged, target *model.TaxonomyNode) {
	dragged.ParentCode = target.Code

	// 冗余祖先 = target 的祖先 + target 自身
	dragged.CategoryCode = target.CategoryCode
	dragged.SubCategoryCode = target.SubCategoryCode
	dragged.DivisionCode = target.DivisionCode
	dragged.ClassCode = target.ClassCode

	switch target.Level {
	case model.LevelCategory:
		dragged.CategoryCode = target.Code
	case model.LevelSubCategory:
		dragged.SubCategoryCode = target.Code
	case model.LevelDivision:
		dragged.DivisionCode = target.Code
	case model.LevelClass:
		dragged.ClassCode = target.Code
	}

	// 比自己浅不了的槽位清空，避免带着旧链的脏数据
	for level := dragged.Level; level <= model.LevelClass; level++ {
		switch level {
		case model.LevelSubCategory:
			dragged.SubCategoryCode = ""
		case model.LevelDivision:
			dragged.DivisionCode = ""
		case model.LevelClass:
			dragged.ClassCode = ""
		}
	}
}
