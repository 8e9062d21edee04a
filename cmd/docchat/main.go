// Package main 启动 docchat 服务.
package main

import (
	"os"

	"github.com/yeisme/docchat/pkg/cmd"
)

//	@title			DocChat API
//	@version		1.0
//	@description	DocChat 文档上传、内容指纹去重与查询记录服务，为文档问答界面提供后端接口。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
