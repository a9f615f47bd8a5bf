package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"golang.org/x/time/rate"

	"github.com/clearlabel/transparency_portal/pkg/logger"
)

// ErrNoProductData 产品没有任何已提交答案，无法生成报告
var ErrNoProductData = errors.New("no product data available for report generation")

// filenameSanitizer 文件名里只保留小写字母与数字
var filenameSanitizer = regexp.MustCompile(`[^a-z0-9]`)

// Engine 报告生成引擎，串联分析、内容生成与文档排版三个阶段
type Engine struct {
	synth *Synthesizer
}

// NewEngine 创建报告引擎，chatModel 与 limiter 可以为 nil
func NewEngine(chatModel model.ChatModel, limiter *rate.Limiter) *Engine {
	return &Engine{synth: NewSynthesizer(chatModel, limiter)}
}

// Result 一次生成的产物
type Result struct {
	ReportID string
	Filename string
	PDF      []byte
}

// Generate 为产品生成完整的透明度报告。
// 1. 校验输入；2. 量化分析；3. 生成叙述内容（含兜底）；4. 排版输出 PDF。
func (e *Engine) Generate(ctx context.Context, p *Product, answers []Answer) (*Result, error) {
	if len(answers) == 0 {
		return nil, ErrNoProductData
	}

	logger.Log.Infof("开始生成透明度报告 [%s], 数据点: %d", p.Name, len(answers))

	analysis := Analyze(p, answers)
	content := e.synth.Generate(ctx, p, answers, analysis)

	reportID := fmt.Sprintf("TR-%d-%d", p.ID, time.Now().Year())

	var buf bytes.Buffer
	if err := renderDocument(p, analysis, content, answers, reportID, &buf); err != nil {
		return nil, fmt.Errorf("failed to render report document: %w", err)
	}

	logger.Log.Infof("透明度报告生成完成 [%s], 大小: %d 字节", reportID, buf.Len())

	return &Result{
		ReportID: reportID,
		Filename: Filename(p.Name),
		PDF:      buf.Bytes(),
	}, nil
}

// Filename 根据产品名生成下载文件名
func Filename(productName string) string {
	sanitized := filenameSanitizer.ReplaceAllString(strings.ToLower(productName), "_")
	return fmt.Sprintf("transparency-report-%s.pdf", sanitized)
}
