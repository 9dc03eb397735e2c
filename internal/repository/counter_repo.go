package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/model"
)

// CounterRepository 数据库计数器，实现 codegen.SequenceAllocator
// 原子性靠事务 + 行锁，同类型并发申请不会重号
type CounterRepository struct {
	db *gorm.DB
}

// NewCounterRepository 创建计数器仓储
func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next 自增并返回下一个序列号
// 超出可编码范围（26 × 10000）返回 ExhaustedError
func (r *CounterRepository) Next(ctx context.Context, itemTypeCode string) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter model.SequenceCounter
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_type_code = ?", itemTypeCode).
			First(&counter).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = model.SequenceCounter{ItemTypeCode: itemTypeCode, Value: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
			next = 1
			return nil
		}
		if err != nil {
			return err
		}

		if counter.Value+1 > codegen.MaxSequence {
			return apperr.NewExhaustedError(itemTypeCode, counter.Value+1)
		}

		next = counter.Value + 1
		return tx.Model(&model.SequenceCounter{}).
			Where("id = ?", counter.ID).
			Update("value", next).Error
	})

	if err != nil {
		return 0, err
	}
	return next, nil
}

// Current 当前值，没有记录时返回 0
func (r *CounterRepository) Current(ctx context.Context, itemTypeCode string) (int64, error) {
	var counter model.SequenceCounter
	err := r.db.WithContext(ctx).Where("item_type_code = ?", itemTypeCode).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}
