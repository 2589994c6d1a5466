package registry

import (
	"sort"

	"footstep/internal/pkg/config"
	"footstep/internal/pkg/notify"
	"footstep/internal/pkg/session"
	"footstep/internal/pkg/uploader"
	"footstep/pkg/cache"
	"footstep/pkg/database"
	"footstep/pkg/metrics"
	"footstep/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config     *config.Config
	DB         *gorm.DB
	Tx         database.Transactor
	Cache      cache.CacheService
	Sessions   session.Store
	Tokens     *utils.TokenIssuer
	Images     uploader.ImageStore // 未配置 OSS 时为 nil
	Notices    notify.Dispatcher
	Metrics    *metrics.Collector
	Log        *zap.Logger
	Router     *gin.RouterGroup // /api/v1
	AuthRouter *gin.RouterGroup // /api/v1，已挂认证中间件

	// 模块间共享的服务，由先初始化的模块写入
	Services map[string]interface{}
}

// Provide 注册共享服务
func (c *ModuleContext) Provide(name string, svc interface{}) {
	if c.Services == nil {
		c.Services = make(map[string]interface{})
	}
	c.Services[name] = svc
}

// Lookup 获取共享服务
func Lookup[T any](c *ModuleContext, name string) (T, bool) {
	svc, ok := c.Services[name].(T)
	return svc, ok
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	// 例如：posting 需要 report 提供的黑名单，所以排在它之后
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// Ordered 按优先级排序，优先级相同按名称
func Ordered() []Module {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range Ordered() {
		if err := module.Init(ctx); err != nil {
			return err
		}
		ctx.Log.Info("module initialized", zap.String("module", module.Name()))
	}
	return nil
}
