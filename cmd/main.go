package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"item_taxonomy_v1_202603/internal/codegen"
	"item_taxonomy_v1_202603/internal/controller"
	"item_taxonomy_v1_202603/internal/model"
	"item_taxonomy_v1_202603/internal/repository"
	"item_taxonomy_v1_202603/internal/router"
	"item_taxonomy_v1_202603/internal/seed"
	"item_taxonomy_v1_202603/internal/service"
	"item_taxonomy_v1_202603/internal/task"
	"item_taxonomy_v1_202603/pkg/config"
	"item_taxonomy_v1_202603/pkg/database"
	"item_taxonomy_v1_202603/pkg/logger"
)

func main() {
	// 1. 加载配置与日志
	cfg := config.Load()
	if cfg.Server.Mode != "release" {
		logger.UseDevelopment()
	}
	zlog := logger.Get()
	defer zlog.Sync()

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db, zlog)

	// 4. 灌入主档种子数据
	seeder := seed.NewSeeder(deps.Services.ItemType, deps.Services.Taxonomy, deps.Services.Variant, zlog)
	if err := seeder.Run(context.Background()); err != nil {
		zlog.Warn("种子数据灌入失败", zap.Error(err))
	}

	// 5. 启动定时任务
	tasks := initTasks(cfg, deps)
	defer stopTasks(tasks)

	// 6. 初始化路由
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, zlog,
		deps.Controllers.Node,
		deps.Controllers.ItemType,
		deps.Controllers.Spec,
		deps.Controllers.Variant,
		deps.Controllers.Item,
	)

	// 7. 启动服务
	startServer(cfg, r, zlog)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Node     repository.NodeRepository
	ItemType repository.ItemTypeRepository
	Counter  *repository.CounterRepository
	Spec     repository.SpecRepository
	Variant  repository.VariantRepository
	Item     repository.ItemRepository
}

// Services 服务集合
type Services struct {
	Taxonomy *service.TaxonomyService
	ItemType *service.ItemTypeService
	Spec     *service.SpecService
	Variant  *service.VariantService
	Item     *service.ItemService
}

// Controllers 控制器集合
type Controllers struct {
	Node     *controller.NodeController
	ItemType *controller.ItemTypeController
	Spec     *controller.SpecController
	Variant  *controller.VariantController
	Item     *controller.ItemController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.Database.DSN,
		&model.ItemType{},
		&model.TaxonomyNode{},
		&model.SequenceCounter{},
		&model.SpecificationConfig{},
		&model.VariantGroup{},
		&model.Item{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zlog *zap.Logger) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Node:     repository.NewNodeRepository(db),
		ItemType: repository.NewItemTypeRepository(db),
		Counter:  repository.NewCounterRepository(db),
		Spec:     repository.NewSpecRepository(db),
		Variant:  repository.NewVariantRepository(db),
		Item:     repository.NewItemRepository(db),
	}

	// -------- 编码生成 --------
	// 配置了远程计数器就走 HTTP，否则用本地数据库行锁计数
	var allocator codegen.SequenceAllocator = repos.Counter
	if cfg.Counter.BaseURL != "" {
		allocator = codegen.NewRemoteAllocator(cfg.Counter.BaseURL, time.Duration(cfg.Counter.TimeoutSeconds)*time.Second)
		zlog.Info("使用远程序列号服务", zap.String("base_url", cfg.Counter.BaseURL))
	}
	generator := codegen.NewGenerator(allocator, zlog)

	// -------- 业务服务 --------
	services := &Services{}
	services.Taxonomy = service.NewTaxonomyService(repos.Node, repos.ItemType, repos.Item, zlog)
	services.ItemType = service.NewItemTypeService(repos.ItemType, repos.Node, repos.Item, zlog)
	services.Spec = service.NewSpecService(repos.Spec, repos.Variant, repos.Node, zlog)
	services.Variant = service.NewVariantService(repos.Variant, zlog)
	services.Item = service.NewItemService(repos.Item, repos.Node, repos.ItemType, services.Spec, generator, zlog)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Node:     controller.NewNodeController(services.Taxonomy),
		ItemType: controller.NewItemTypeController(services.ItemType),
		Spec:     controller.NewSpecController(services.Spec),
		Variant:  controller.NewVariantController(services.Variant),
		Item:     controller.NewItemController(services.Item),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

type stoppable interface {
	Stop()
}

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies) []stoppable {
	childCountTask := task.NewChildCountTask(deps.Repos.Node, cfg.Task.ChildCountCron)
	childCountTask.Start()

	log.Println("定时任务已启动")
	return []stoppable{childCountTask}
}

func stopTasks(tasks []stoppable) {
	for _, t := range tasks {
		t.Stop()
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务并优雅退出
func startServer(cfg *config.Config, r *gin.Engine, zlog *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		zlog.Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("收到退出信号，开始优雅关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("优雅关闭失败", zap.Error(err))
	}
	zlog.Info("服务已退出")
}
