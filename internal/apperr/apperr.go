// Package apperr 业务错误类型
// 结构性错误必须原样上抛，不得吞掉；错误里带上违规编码/规则，调用方可直接渲染
package apperr

import (
	"fmt"
	"net/http"
)

// AppError 业务错误统一接口
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError 基础实现
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
}

func (e *BaseError) Error() string   { return e.Message }
func (e *BaseError) HTTPStatus() int { return e.StatusCode }
func (e *BaseError) Code() string    { return e.ErrorCode }

// ==================== 校验错误 ====================

// ValidationError 入参/结构校验失败，任何持久化写入之前抛出
type ValidationError struct {
	BaseError
	Field string `json:"field,omitempty"`
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    fmt.Sprintf(format, args...),
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Field: field,
	}
}

// ==================== 移动错误 ====================

// MoveRule 被违反的移动规则
type MoveRule string

const (
	MoveRuleRootImmovable MoveRule = "ROOT_IMMOVABLE" // Level 1 不可移动
	MoveRuleSelfMove      MoveRule = "SELF_MOVE"      // 目标是自己
	MoveRuleLevelDelta    MoveRule = "LEVEL_DELTA"    // 目标必须正好浅一级
	MoveRuleCycle         MoveRule = "CYCLE"          // 目标是自己的后代
)

// InvalidMoveError 重挂父节点违规，带具体规则
type InvalidMoveError struct {
	BaseError
	Rule        MoveRule `json:"rule"`
	DraggedCode string   `json:"dragged_code"`
	TargetCode  string   `json:"target_code"`
}

func NewInvalidMoveError(rule MoveRule, draggedCode, targetCode, message string) *InvalidMoveError {
	return &InvalidMoveError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  "INVALID_MOVE",
		},
		Rule:        rule,
		DraggedCode: draggedCode,
		TargetCode:  targetCode,
	}
}

// ==================== 冲突类错误 ====================

// ConflictError 编码重复或并发更新落败，调用方应重试或提示
type ConflictError struct {
	BaseError
	Level      int    `json:"level,omitempty"`
	NodeCode   string `json:"node_code,omitempty"`
	ParentCode string `json:"parent_code,omitempty"`
}

func NewConflictError(level int, nodeCode, parentCode, message string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusConflict,
			ErrorCode:  "CONFLICT",
		},
		Level:      level,
		NodeCode:   nodeCode,
		ParentCode: parentCode,
	}
}

// HasActiveChildrenError 有在用子节点/物料时禁止停用
type HasActiveChildrenError struct {
	BaseError
	NodeCode   string `json:"node_code"`
	ChildCount int64  `json:"child_count"`
	ItemCount  int64  `json:"item_count"`
}

func NewHasActiveChildrenError(nodeCode string, childCount, itemCount int64) *HasActiveChildrenError {
	return &HasActiveChildrenError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("节点 %s 下仍有 %d 个在用子节点、%d 个物料，禁止停用", nodeCode, childCount, itemCount),
			StatusCode: http.StatusConflict,
			ErrorCode:  "HAS_ACTIVE_CHILDREN",
		},
		NodeCode:   nodeCode,
		ChildCount: childCount,
		ItemCount:  itemCount,
	}
}

// ==================== 结构错误 ====================

// OrphanedNodeError 路径回溯时父节点缺失
type OrphanedNodeError struct {
	BaseError
	Level      int    `json:"level"`
	NodeCode   string `json:"node_code"`
	ParentCode string `json:"parent_code"`
}

func NewOrphanedNodeError(level int, nodeCode, parentCode string) *OrphanedNodeError {
	return &OrphanedNodeError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("节点 %s (L%d) 的父节点 %s 不存在", nodeCode, level, parentCode),
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "ORPHANED_NODE",
		},
		Level:      level,
		NodeCode:   nodeCode,
		ParentCode: parentCode,
	}
}

// NotFoundError 资源不存在
type NotFoundError struct {
	BaseError
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s %s 不存在", resource, key),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_FOUND",
		},
		Resource: resource,
		Key:      key,
	}
}

// ==================== 规格配置 ====================

// NotConfiguredError 节点没有规格配置
// 只在调用方明确要区分「未配置」和「配置了但全关」时使用
type NotConfiguredError struct {
	BaseError
	NodeCode string `json:"node_code"`
}

func NewNotConfiguredError(nodeCode string) *NotConfiguredError {
	return &NotConfiguredError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("节点 %s 未配置规格", nodeCode),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_CONFIGURED",
		},
		NodeCode: nodeCode,
	}
}

// ==================== 序列号 ====================

// ExhaustedError 序列号超出可编码范围（26 字母 × 10000 = 260000）
type ExhaustedError struct {
	BaseError
	ItemTypeCode string `json:"item_type_code"`
	Value        int64  `json:"value"`
}

func NewExhaustedError(itemTypeCode string, value int64) *ExhaustedError {
	return &ExhaustedError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("物料类型 %s 序列号已用尽 (value=%d)", itemTypeCode, value),
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "SEQUENCE_EXHAUSTED",
		},
		ItemTypeCode: itemTypeCode,
		Value:        value,
	}
}
