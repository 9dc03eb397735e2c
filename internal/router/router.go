package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"item_taxonomy_v1_202603/internal/controller"
	"item_taxonomy_v1_202603/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	log *zap.Logger,
	nodeCtl *controller.NodeController,
	itemTypeCtl *controller.ItemTypeController,
	specCtl *controller.SpecController,
	variantCtl *controller.VariantController,
	itemCtl *controller.ItemController) {

	r.Use(middleware.RequestLog(log))
	r.Use(middleware.AuditContext())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// 分类树
		taxonomy := api.Group("/taxonomy")
		{
			taxonomy.GET("/tree", nodeCtl.GetTree)
			taxonomy.GET("/dropdown", nodeCtl.GetDropdown)

			nodes := taxonomy.Group("/nodes")
			{
				nodes.GET("", nodeCtl.ListNodes)
				nodes.POST("", nodeCtl.CreateNode)
				nodes.GET("/:level/:code", nodeCtl.GetNode)
				nodes.PUT("/:level/:code", nodeCtl.UpdateNode)
				nodes.POST("/:level/:code/move", nodeCtl.MoveNode)
				nodes.POST("/:level/:code/deactivate", nodeCtl.DeactivateNode)
				nodes.POST("/:level/:code/reactivate", nodeCtl.ReactivateNode)
			}
		}

		// 物料类型主档
		itemTypes := api.Group("/item-types")
		{
			itemTypes.GET("", itemTypeCtl.ListItemTypes)
			itemTypes.POST("", itemTypeCtl.CreateItemType)
			itemTypes.GET("/:code", itemTypeCtl.GetItemType)
			itemTypes.PUT("/:code", itemTypeCtl.UpdateItemType)
			itemTypes.POST("/:code/deactivate", itemTypeCtl.DeactivateItemType)
		}

		// 节点规格配置
		specs := api.Group("/specifications")
		{
			specs.GET("/:node_code", specCtl.GetSpecConfig)
			specs.PUT("/:node_code", specCtl.SetSpecConfig)
			specs.DELETE("/:node_code", specCtl.DeleteSpecConfig)
			specs.GET("/:node_code/effective", specCtl.ResolveEffective)
		}

		// 变体组主档
		variants := api.Group("/variants")
		{
			variants.GET("/:type", variantCtl.ListGroups)
			variants.POST("/:type", variantCtl.SaveGroup)
			variants.GET("/:type/:group_code", variantCtl.GetGroup)
		}

		// 物料建档
		items := api.Group("/items")
		{
			items.GET("", itemCtl.ListItems)
			items.POST("", itemCtl.CreateItem)
			items.GET("/degraded", itemCtl.ListDegradedItems)
			items.POST("/preview-sku", itemCtl.PreviewSKU)
			items.GET("/uid/:uid", itemCtl.GetItemByUID)
			items.PUT("/:id/selection", itemCtl.UpdateSelection)
			items.POST("/:id/finalize", itemCtl.FinalizeItem)
		}
	}
}
