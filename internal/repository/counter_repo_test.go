package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"item_taxonomy_v1_202603/internal/apperr"
	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/model"
)

func setupCounterTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SequenceCounter{}); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

func TestCounterNextSequential(t *testing.T) {
	repo := NewCounterRepository(setupCounterTestDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := repo.Next(ctx, "FG")
		if err != nil {
			t.Fatalf("Next 失败: %v", err)
		}
		if got != want {
			t.Errorf("第 %d 次分配得到 %d", want, got)
		}
	}

	// 不同类型各自独立计数
	got, err := repo.Next(ctx, "RM")
	if err != nil || got != 1 {
		t.Errorf("RM 首个序列号 = %d, err = %v", got, err)
	}

	current, err := repo.Current(ctx, "FG")
	if err != nil || current != 5 {
		t.Errorf("Current = %d, err = %v", current, err)
	}
}

func TestCounterCurrentMissing(t *testing.T) {
	repo := NewCounterRepository(setupCounterTestDB(t))

	current, err := repo.Current(context.Background(), "ZZ")
	if err != nil {
		t.Fatalf("Current 失败: %v", err)
	}
	if current != 0 {
		t.Errorf("无记录时 Current = %d, 期望 0", current)
	}
}

func TestCounterExhausted(t *testing.T) {
	db := setupCounterTestDB(t)
	repo := NewCounterRepository(db)

	// 直接把计数器顶到上限
	db.Create(&model.SequenceCounter{ItemTypeCode: "FG", Value: codegen.MaxSequence})

	_, err := repo.Next(context.Background(), "FG")
	var exhausted *apperr.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("超限应返回 ExhaustedError, 实际 %v", err)
	}

	// 耗尽后计数器不再前进
	current, _ := repo.Current(context.Background(), "FG")
	if current != codegen.MaxSequence {
		t.Errorf("耗尽后 Current = %d", current)
	}
}
