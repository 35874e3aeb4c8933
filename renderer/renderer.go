package renderer

import "github.com/ByLCY/transkribus/annotate"

// Renderer 将标注结果输出为最终文件，例如 PDF 预览。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(ann *annotate.Annotation) ([]byte, error)
}
