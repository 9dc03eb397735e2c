package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/apperr"
)

// SKU 结构: {类型:2}-{分类:4}-{字母}{序号:4}-{颜色:4}-{尺码:2}
// 例: FG-APRL-A0001-RED0-ME
// 颜色/尺码段取人读名称的前 N 位，让一串编码里留点人能认的信息

const (
	defaultCategorySegment = "GNRL"
	categoryWidth          = 4
	colourWidth            = 4
	sizeWidth              = 2
)

// Result 一次签发的结果
// Degraded 为真表示序列号是降级兜底值，可能与已签发的冲突，见 DegradedSequenceWarning
type Result struct {
	SKU      string `json:"sku"`
	UID      string `json:"uid"`
	Sequence int64  `json:"sequence"`
	Degraded bool   `json:"degraded"`
}

// ==================== 纯函数部分 ====================

// SequenceCode 序列号编码为 1 字母 + 4 数字
// 字母按万进位：1..10000 -> A，10001..20000 -> B
func SequenceCode(sequence int64) string {
	letter := rune('A' + (sequence-1)/10000)
	number := (sequence-1)%10000 + 1
	return fmt.Sprintf("%c%04d", letter, number)
}

// ItemTypeSegment 物料类型段，2 位大写
func ItemTypeSegment(itemTypeCode string) string {
	code := strings.ToUpper(strings.TrimSpace(itemTypeCode))
	if len(code) > 2 {
		code = code[:2]
	}
	return pad(code, 2, 'X')
}

// CategorySegment 分类段，4 位大写，空值用 GNRL 占位
func CategorySegment(categoryCode string) string {
	code := strings.ToUpper(strings.TrimSpace(categoryCode))
	if code == "" {
		return defaultCategorySegment
	}
	if len(code) > categoryWidth {
		code = code[:categoryWidth]
	}
	return pad(code, categoryWidth, 'X')
}

// VariantSegment 变体段，取名称（非编码）前 width 位大写，不足补 0
// 未选择时全 0 占位
func VariantSegment(variantName string, width int) string {
	if strings.TrimSpace(variantName) == "" {
		return strings.Repeat("0", width)
	}
	clean := strings.ToUpper(variantName)
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "-", "")
	if len(clean) > width {
		clean = clean[:width]
	}
	return pad(clean, width, '0')
}

// GenerateUID 生成物料 UID：类型 2 位 + 分类前 2 位 + 计数 4 位
// 一经签发永不变更
func GenerateUID(itemTypeCode, categoryCode string, counter int64) string {
	category := CategorySegment(categoryCode)[:2]
	return fmt.Sprintf("%s%s%04d", ItemTypeSegment(itemTypeCode), category, counter)
}

// GenerateSKU 生成 SKU，同样入参永远得到同样的串
// 分类/颜色/尺码在定稿前变化时调用方需重新生成（序列号复用，不重新申请）
func GenerateSKU(itemTypeCode, categoryCode string, sequence int64, colourName, sizeName string) string {
	return strings.Join([]string{
		ItemTypeSegment(itemTypeCode),
		CategorySegment(categoryCode),
		SequenceCode(sequence),
		VariantSegment(colourName, colourWidth),
		VariantSegment(sizeName, sizeWidth),
	}, "-")
}

// CategoryCodeFromName 从节点名称派生 SKU 分类段（2-4 位）
// 多词取各词首字母，单词取前 4 位
func CategoryCodeFromName(name string) string {
	clean := strings.ToUpper(name)
	clean = strings.ReplaceAll(clean, "-", " ")
	clean = strings.ReplaceAll(clean, "_", " ")
	words := strings.Fields(clean)

	var code string
	if len(words) >= 2 {
		var b strings.Builder
		for _, w := range words {
			b.WriteByte(w[0])
			if b.Len() == categoryWidth {
				break
			}
		}
		code = b.String()
	} else {
		code = strings.ReplaceAll(clean, " ", "")
		if len(code) > categoryWidth {
			code = code[:categoryWidth]
		}
	}
	return pad(code, 2, 'X')
}

func pad(s string, width int, c byte) string {
	for len(s) < width {
		s += string(c)
	}
	return s
}

// ==================== 生成器 ====================

// Generator 编码生成器，持有序列号分配器
type Generator struct {
	allocator SequenceAllocator
	log       *zap.Logger
}

func NewGenerator(allocator SequenceAllocator, log *zap.Logger) *Generator {
	return &Generator{allocator: allocator, log: log}
}

// AllocateSequence 申请下一个序列号
// 瞬时失败重试一次；仍失败则降级为序列号 1（degraded=true），绝不因此卡住物料创建
// 序列号用尽是硬错误，不降级
func (g *Generator) AllocateSequence(ctx context.Context, itemTypeCode string) (int64, bool, error) {
	seq, err := g.allocator.Next(ctx, itemTypeCode)
	if err == nil {
		return seq, false, nil
	}

	var exhausted *apperr.ExhaustedError
	if errors.As(err, &exhausted) {
		return 0, false, err
	}

	// 重试一次
	seq, retryErr := g.allocator.Next(ctx, itemTypeCode)
	if retryErr == nil {
		return seq, false, nil
	}
	if errors.As(retryErr, &exhausted) {
		return 0, false, retryErr
	}

	// 降级：兜底序列号 1，可能与真实序列号 1 冲突，下游按 Degraded 标记甄别
	g.log.Warn("计数服务不可用，序列号降级为 1",
		zap.String("item_type_code", itemTypeCode),
		zap.Error(retryErr))
	return 1, true, nil
}

// Issue 为一个物料签发 SKU + UID
func (g *Generator) Issue(ctx context.Context, itemTypeCode, categoryCode, colourName, sizeName string) (*Result, error) {
	seq, degraded, err := g.AllocateSequence(ctx, itemTypeCode)
	if err != nil {
		return nil, err
	}
	return &Result{
		SKU:      GenerateSKU(itemTypeCode, categoryCode, seq, colourName, sizeName),
		UID:      GenerateUID(itemTypeCode, categoryCode, seq),
		Sequence: seq,
		Degraded: degraded,
	}, nil
}

// Rebuild 用已分配的序列号重算 SKU（定稿前分类/变体变化时用）
func (g *Generator) Rebuild(itemTypeCode, categoryCode string, sequence int64, colourName, sizeName string) string {
	return GenerateSKU(itemTypeCode, categoryCode, sequence, colourName, sizeName)
}
