package common

import (
	commonHandler "footstep/internal/pkg/common"
	"footstep/internal/pkg/registry"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	// 图片上传接口
	ctx.AuthRouter.POST("/upload", commonHandler.UploadHandler(ctx.Images))
	return nil
}
