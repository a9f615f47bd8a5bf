package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// 页面基础参数（A4 纵向，单位 pt），与页脚预留高度
const (
	pageMargin    = 60.0
	footerReserve = 80.0
	footerOffset  = 40.0
)

// layoutEngine 文档排版引擎。
// 持有唯一的可变游标（当前纵向偏移 + 当前页码），一次生成专用一个实例，
// 所有写入操作都先测量高度、必要时换页，再落笔，保证单个内容块不跨页。
type layoutEngine struct {
	doc *fpdf.Fpdf
	tr  func(string) string

	currentY   float64
	pageNumber int

	pageWidth    float64
	pageHeight   float64
	contentWidth float64
}

// newLayoutEngine 创建排版引擎并打开首页
func newLayoutEngine() *layoutEngine {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	w, h := doc.GetPageSize()
	return &layoutEngine{
		doc:          doc,
		tr:           doc.UnicodeTranslatorFromDescriptor(""),
		currentY:     pageMargin,
		pageNumber:   1,
		pageWidth:    w,
		pageHeight:   h,
		contentWidth: w - pageMargin*2,
	}
}

// setFont 设置 Helvetica 字体，bold 为 true 时用粗体
func (e *layoutEngine) setFont(size float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	e.doc.SetFont("Helvetica", style, size)
}

// textHeight 按当前列宽与行高计算文本的渲染高度，必须在落笔前调用
func (e *layoutEngine) textHeight(text string, width, fontSize, lineGap float64) float64 {
	lines := e.doc.SplitText(e.tr(text), width)
	if len(lines) == 0 {
		return 0
	}
	return float64(len(lines)) * (fontSize + lineGap)
}

// checkPageBreak 若剩余可打印高度不足则收尾当前页并翻页
func (e *layoutEngine) checkPageBreak(spaceNeeded float64) bool {
	if e.currentY+spaceNeeded > e.pageHeight-footerReserve {
		e.writeFooter()
		e.pageNumber++
		e.doc.AddPage()
		e.currentY = pageMargin
		return true
	}
	return false
}

// writeFooter 在页脚位置写入居中的页码
func (e *layoutEngine) writeFooter() {
	e.setFont(8, false)
	e.doc.SetXY(pageMargin, e.pageHeight-footerOffset)
	e.doc.CellFormat(e.contentWidth, 10, fmt.Sprintf("Page %d", e.pageNumber), "", 0, "C", false, 0, "")
}

// addHeader 写入章节标题，level 1 带下划线分隔线
func (e *layoutEngine) addHeader(title string, level int) {
	fontSize := 12.0
	switch level {
	case 1:
		fontSize = 18
	case 2:
		fontSize = 14
	}

	if level == 1 {
		e.checkPageBreak(40)
	} else {
		e.checkPageBreak(fontSize + 10)
	}

	e.setFont(fontSize, true)
	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.CellFormat(e.contentWidth, fontSize+2, e.tr(title), "", 0, "L", false, 0, "")

	if level == 1 {
		e.doc.SetLineWidth(1)
		e.doc.SetDrawColor(0, 0, 0)
		e.doc.Line(pageMargin, e.currentY+22, e.pageWidth-pageMargin, e.currentY+22)
		e.currentY += 35
	} else {
		e.currentY += fontSize + 8
	}
}

// textOptions 段落排版参数，零值表示使用默认（10pt、两端对齐、行距 4、段后距 12）
type textOptions struct {
	fontSize float64
	bold     bool
	align    string
	lineGap  float64
	spacing  float64
}

// addText 写入一个段落：先测高，必要时换页，再整段落笔
func (e *layoutEngine) addText(text string, opts textOptions) {
	if strings.TrimSpace(text) == "" {
		return
	}

	if opts.fontSize == 0 {
		opts.fontSize = 10
	}
	if opts.align == "" {
		opts.align = "J"
	}
	if opts.lineGap == 0 {
		opts.lineGap = 4
	}
	if opts.spacing == 0 {
		opts.spacing = 12
	}

	e.setFont(opts.fontSize, opts.bold)
	height := e.textHeight(text, e.contentWidth, opts.fontSize, opts.lineGap)
	e.checkPageBreak(height)

	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.MultiCell(e.contentWidth, opts.fontSize+opts.lineGap, e.tr(text), "", opts.align, false)
	e.currentY += height + opts.spacing
}

// addDataRow 写入一行 "标签: 值"，固定行高 16
func (e *layoutEngine) addDataRow(label, value string) {
	e.checkPageBreak(16)

	e.setFont(10, true)
	e.doc.SetXY(pageMargin+20, e.currentY)
	e.doc.CellFormat(120, 12, e.tr(label+":"), "", 0, "L", false, 0, "")

	e.setFont(10, false)
	e.doc.SetXY(pageMargin+150, e.currentY)
	e.doc.CellFormat(e.contentWidth-150, 12, e.tr(value), "", 0, "L", false, 0, "")

	e.currentY += 16
}

// addBullet 写入一个带圆点的列表项，项内不跨页
func (e *layoutEngine) addBullet(text string, indent, trailing float64) {
	line := "• " + text
	e.setFont(10, false)
	width := e.contentWidth - indent*2
	height := e.textHeight(line, width, 10, 4)
	e.checkPageBreak(height)

	e.doc.SetXY(pageMargin+indent, e.currentY)
	e.doc.MultiCell(width, 14, e.tr(line), "", "L", false)
	e.currentY += height + trailing
}

// coverSection 封面：标题、产品标识表、执行摘要与两列评估指标
func (e *layoutEngine) coverSection(p *Product, analysis *Analysis, content *ReportContent, reportID string) {
	e.setFont(26, true)
	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.CellFormat(e.contentWidth, 28, "PRODUCT TRANSPARENCY REPORT", "", 0, "C", false, 0, "")
	e.currentY += 50

	e.setFont(20, true)
	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.CellFormat(e.contentWidth, 22, e.tr(p.Name), "", 0, "C", false, 0, "")
	e.currentY += 40

	e.setFont(14, true)
	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.CellFormat(e.contentWidth, 16, "Report Information", "", 0, "L", false, 0, "")
	e.currentY += 25

	e.addDataRow("Product Name", p.Name)
	e.addDataRow("Manufacturer", p.Company)
	e.addDataRow("Category", titleCase(p.Category))
	e.addDataRow("Report Date", time.Now().Format("January 2, 2006"))
	e.addDataRow("Report ID", reportID)
	e.addDataRow("Total Data Points", fmt.Sprintf("%d", analysis.TotalDataPoints))

	e.currentY += 30

	if strings.TrimSpace(content.ExecutiveSummary) != "" {
		e.addHeader("Executive Summary", 1)
		e.addText(content.ExecutiveSummary, textOptions{spacing: 15})
	}

	if analysis.TotalDataPoints > 0 {
		e.addHeader("Transparency Assessment", 2)

		e.setFont(11, true)
		e.doc.SetXY(pageMargin, e.currentY)
		e.doc.CellFormat(e.contentWidth, 13, "Assessment Results", "", 0, "L", false, 0, "")
		e.currentY += 20

		metrics := []string{
			fmt.Sprintf("Completeness Score: %.1f%%", analysis.CompletenessScore),
			fmt.Sprintf("Risk Assessment: %s", analysis.RiskLevel),
		}
		if analysis.SafetyRelated > 0 {
			metrics = append(metrics, fmt.Sprintf("Safety Documentation: %d items", analysis.SafetyRelated))
		}
		if analysis.ComplianceRelated > 0 {
			metrics = append(metrics, fmt.Sprintf("Compliance Records: %d items", analysis.ComplianceRelated))
		}
		if analysis.QualityRelated > 0 {
			metrics = append(metrics, fmt.Sprintf("Quality Specifications: %d items", analysis.QualityRelated))
		}
		if analysis.EnvironmentalRelated > 0 {
			metrics = append(metrics, fmt.Sprintf("Environmental Data: %d items", analysis.EnvironmentalRelated))
		}

		// 按下标奇偶左右两列摆放，每逻辑行固定前进 16pt
		e.setFont(10, false)
		for i, metric := range metrics {
			x := pageMargin + 20
			if i%2 == 1 {
				x = pageMargin + 260
			}
			row := float64(i / 2)
			e.doc.SetXY(x, e.currentY+row*16)
			e.doc.CellFormat(230, 12, e.tr("• "+metric), "", 0, "L", false, 0, "")
		}

		rows := (len(metrics) + 1) / 2
		e.currentY += float64(rows)*16 + 25
	}
}

// analysisSection 分析章节：产品描述、关键发现与透明度分析
func (e *layoutEngine) analysisSection(p *Product, content *ReportContent) {
	e.checkPageBreak(100)
	e.currentY += 10
	e.addHeader("Product Information & Analysis", 1)

	if strings.TrimSpace(p.Description) != "" {
		e.addHeader("Product Description", 2)
		e.addText(p.Description, textOptions{spacing: 18})
	}

	// 过滤空白项与"0 total data points"哨兵句
	var meaningful []string
	for _, finding := range content.KeyFindings {
		if strings.TrimSpace(finding) == "" || strings.Contains(finding, "0 total data points") {
			continue
		}
		meaningful = append(meaningful, finding)
	}

	if len(meaningful) > 0 {
		e.checkPageBreak(100)
		e.addHeader("Key Findings", 2)
		for _, finding := range meaningful {
			e.addBullet(finding, 20, 10)
		}
		e.currentY += 10
	}

	if strings.TrimSpace(content.TransparencyAnalysis) != "" {
		e.checkPageBreak(80)
		e.addHeader("Transparency Analysis", 2)
		e.addText(content.TransparencyAnalysis, textOptions{spacing: 18})
	}
}

// categoryBucket 详情章节的固定分组
type categoryBucket struct {
	Name    string
	Answers []Answer
}

// bucketAnswers 把答案按首个命中的关键词组归入六个固定分组。
// 与聚合计数不同，这里是互斥路由（先匹配先归组），且跳过空白答案。
func bucketAnswers(answers []Answer) []categoryBucket {
	buckets := []categoryBucket{
		{Name: "Safety & Health Information"},
		{Name: "Compliance & Certifications"},
		{Name: "Quality Specifications"},
		{Name: "Environmental Impact"},
		{Name: "Technical Specifications"},
		{Name: "Additional Information"},
	}

	routes := [][]string{
		{"safety", "allergen", "hazard"},
		{"certification", "compliance", "standard"},
		{"quality", "ingredient", "specification"},
		{"environment", "sustainable", "organic"},
		{"technical", "performance", "capacity"},
	}

	for _, answer := range answers {
		if strings.TrimSpace(answer.Value) == "" {
			continue
		}

		text := strings.ToLower(answer.QuestionText)
		idx := len(buckets) - 1 // 默认归入 Additional Information
		for i, keywords := range routes {
			matched := false
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					matched = true
					break
				}
			}
			if matched {
				idx = i
				break
			}
		}
		buckets[idx].Answers = append(buckets[idx].Answers, answer)
	}

	return buckets
}

// detailSection 详情章节：按固定分组输出编号的问答对
func (e *layoutEngine) detailSection(answers []Answer) {
	buckets := bucketAnswers(answers)

	empty := true
	for _, b := range buckets {
		if len(b.Answers) > 0 {
			empty = false
			break
		}
	}
	if empty {
		return
	}

	e.checkPageBreak(100)
	e.addHeader("Detailed Product Data", 1)

	for _, bucket := range buckets {
		if len(bucket.Answers) == 0 {
			continue
		}

		e.checkPageBreak(60)
		e.setFont(13, true)
		e.doc.SetXY(pageMargin, e.currentY)
		e.doc.CellFormat(e.contentWidth, 15, e.tr(bucket.Name), "", 0, "L", false, 0, "")
		e.currentY += 22

		for i, answer := range bucket.Answers {
			e.checkPageBreak(60)

			question := fmt.Sprintf("%d. %s", i+1, answer.QuestionText)
			e.setFont(10, true)
			qHeight := e.textHeight(question, e.contentWidth-40, 10, 3)
			e.checkPageBreak(qHeight)
			e.doc.SetXY(pageMargin+20, e.currentY)
			e.doc.MultiCell(e.contentWidth-40, 13, e.tr(question), "", "L", false)
			e.currentY += qHeight + 6

			e.setFont(10, false)
			vHeight := e.textHeight(answer.Value, e.contentWidth-40, 10, 4)
			e.checkPageBreak(vHeight)
			e.doc.SetXY(pageMargin+20, e.currentY)
			e.doc.MultiCell(e.contentWidth-40, 14, e.tr(answer.Value), "", "J", false)
			e.currentY += vHeight + 16
		}

		e.currentY += 8
	}
}

// conclusionSection 结论章节：合规评估、结论、建议与认证声明
func (e *layoutEngine) conclusionSection(content *ReportContent) {
	e.checkPageBreak(10)
	e.addHeader("Conclusions & Recommendations", 1)

	if strings.TrimSpace(content.ComplianceAssessment) != "" {
		e.addHeader("Compliance Assessment", 2)
		e.addText(content.ComplianceAssessment, textOptions{spacing: 18})
	}

	if strings.TrimSpace(content.QualityAssessment) != "" {
		e.addHeader("Quality Assessment", 2)
		e.addText(content.QualityAssessment, textOptions{spacing: 18})
	}

	if strings.TrimSpace(content.Conclusions) != "" {
		e.addHeader("Conclusions", 2)
		e.addText(content.Conclusions, textOptions{spacing: 18})
	}

	if len(content.Recommendations) > 0 {
		e.addHeader("Recommendations", 2)
		for _, rec := range content.Recommendations {
			if strings.TrimSpace(rec) == "" {
				continue
			}
			e.addBullet(rec, 20, 10)
		}
		e.currentY += 10
	}

	e.checkPageBreak(60)

	e.setFont(11, true)
	e.doc.SetXY(pageMargin, e.currentY)
	e.doc.CellFormat(e.contentWidth, 13, "Report Certification", "", 0, "L", false, 0, "")
	e.currentY += 18

	certification := "This report has been generated by the Product Transparency Portal and contains verified product information as submitted by the manufacturer. Report generated on " +
		time.Now().Format("January 2, 2006") + "."
	e.addText(certification, textOptions{})
}

// renderDocument 渲染完整文档并写入 w。
// 任何排版失败都整体报错，不返回半成品文档。
func renderDocument(p *Product, analysis *Analysis, content *ReportContent, answers []Answer, reportID string, w io.Writer) error {
	e := newLayoutEngine()

	e.doc.SetTitle("Product Transparency Report - "+p.Name, true)
	e.doc.SetAuthor("Product Transparency Portal", true)
	e.doc.SetSubject("Product Transparency Report", true)
	e.doc.SetKeywords("transparency, product, compliance, regulatory", true)

	e.coverSection(p, analysis, content, reportID)
	e.analysisSection(p, content)
	e.detailSection(answers)
	e.conclusionSection(content)

	// 末页补页脚后输出
	e.writeFooter()

	if e.doc.Err() {
		return fmt.Errorf("document layout failed: %w", e.doc.Error())
	}
	if err := e.doc.Output(w); err != nil {
		return fmt.Errorf("document output failed: %w", err)
	}
	return nil
}

// titleCase 首字母大写，用于封面品类展示
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
