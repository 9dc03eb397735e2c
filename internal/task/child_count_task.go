package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
)

// ==================== ChildCountTask 子节点数对账任务 ====================

// ChildCountTask 定时核对各节点的 child_count 冗余字段
// 日常增删和移动由服务层增量维护，这里兜底修正漂移
type ChildCountTask struct {
	nodeRepo repository.NodeRepository
	cron     *cron.Cron
	spec     string
}

// NewChildCountTask 创建对账任务，spec 为 6 段 cron 表达式
func NewChildCountTask(nodeRepo repository.NodeRepository, spec string) *ChildCountTask {
	if spec == "" {
		spec = "0 0 3 * * *"
	}
	return &ChildCountTask{
		nodeRepo: nodeRepo,
		cron:     cron.New(cron.WithSeconds()),
		spec:     spec,
	}
}

// Start 启动定时任务
func (t *ChildCountTask) Start() {
	_, err := t.cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		t.Reconcile(ctx)
	})
	if err != nil {
		log.Printf("[ChildCountTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[ChildCountTask] 已启动 (%s)", t.spec)
}

// Stop 停止任务
func (t *ChildCountTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[ChildCountTask] 已停止")
}

// Reconcile 全量重算一遍直接子节点数，修正不一致的节点
func (t *ChildCountTask) Reconcile(ctx context.Context) {
	nodes, err := t.nodeRepo.ListAll(ctx, false)
	if err != nil {
		log.Printf("[ChildCountTask] 读取节点失败: %v", err)
		return
	}

	// (父层级, 父编码) -> 实际子节点数
	type parentKey struct {
		level int
		code  string
	}
	counts := make(map[parentKey]int, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Level == model.LevelCategory {
			continue
		}
		counts[parentKey{n.Level - 1, n.ParentCode}]++
	}

	fixed := 0
	for i := range nodes {
		n := &nodes[i]
		actual := counts[parentKey{n.Level, n.Code}]
		if n.ChildCount == actual {
			continue
		}
		if err := t.nodeRepo.UpdateFields(ctx, n.ID, map[string]interface{}{
			"child_count": actual,
		}); err != nil {
			log.Printf("[ChildCountTask] 修正节点 %s (L%d) 失败: %v", n.Code, n.Level, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("[ChildCountTask] 对账完成, 修正 %d 个节点", fixed)
	}
}
