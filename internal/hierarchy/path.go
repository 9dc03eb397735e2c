package hierarchy

import (
	"strings"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/model"
)

// Path 计算节点完整路径（根在前，含自身）
// 沿 ParentCode 逐级回溯到 Level 1，父节点缺失时返回 OrphanedNodeError
func Path(node *model.TaxonomyNode, lookup NodeLookup) ([]model.PathEntry, error) {
	entries := make([]model.PathEntry, 0, node.Level)
	entries = append(entries, model.PathEntry{Level: node.Level, Code: node.Code, Name: node.Name})

	cur := node
	for cur.Level > model.LevelCategory {
		parent, err := lookup(cur.Level-1, cur.ParentCode)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NewOrphanedNodeError(cur.Level, cur.Code, cur.ParentCode)
		}
		entries = append(entries, model.PathEntry{Level: parent.Level, Code: parent.Code, Name: parent.Name})
		cur = parent
	}

	// 反转为根在前
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// PathString 形如 APRL/MENS/TOPW 的路径串
func PathString(entries []model.PathEntry) string {
	codes := make([]string, 0, len(entries))
	for _, e := range entries {
		codes = append(codes, e.Code)
	}
	return strings.Join(codes, "/")
}

// PathName 形如 Apparel > Men > Topwear 的展示串
func PathName(entries []model.PathEntry) string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return strings.Join(names, " > ")
}
