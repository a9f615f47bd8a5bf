package report

import (
	"strings"
	"time"
)

// Product 进入报告流水线的产品快照，加载后不再修改
type Product struct {
	ID          int
	Name        string
	Category    string
	Company     string
	Description string
	CreatedAt   time.Time
}

// Answer 产品提交的单条问答数据
type Answer struct {
	QuestionText string
	QuestionType string // text / select / textarea / number / date
	Value        string
	SortOrder    int
}

// CategoryTag 答案命中的主题类别标签（非互斥）
type CategoryTag string

const (
	CategorySafety        CategoryTag = "safety"
	CategoryCompliance    CategoryTag = "compliance"
	CategoryQuality       CategoryTag = "quality"
	CategoryEnvironmental CategoryTag = "environmental"
	CategoryTechnical     CategoryTag = "technical"
	CategoryOther         CategoryTag = "other"
)

// RiskLevel 基于完整度得分的三档风险等级
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// categoryKeywords 各类别的关键词组。
// 注意 "specification" 同时出现在 quality 和 technical 中，
// 一条答案可以同时命中两个类别，这里只做聚合计数，不做唯一归类。
var categoryKeywords = map[CategoryTag][]string{
	CategorySafety:        {"safety", "allergen", "hazard", "risk", "health", "toxic"},
	CategoryCompliance:    {"certification", "compliance", "standard", "regulation", "approved", "license"},
	CategoryQuality:       {"quality", "grade", "specification", "ingredient", "material", "composition"},
	CategoryEnvironmental: {"environment", "sustainable", "recyclable", "organic", "eco", "carbon"},
	CategoryTechnical:     {"technical", "specification", "performance", "feature", "capacity", "efficiency"},
}

// classifyOrder 固定的判定顺序，保证结果可复现
var classifyOrder = []CategoryTag{
	CategorySafety,
	CategoryCompliance,
	CategoryQuality,
	CategoryEnvironmental,
	CategoryTechnical,
}

// Classify 返回问题文本命中的全部类别标签。
// 纯函数：对每个类别独立做大小写不敏感的子串匹配，互不排斥。
func Classify(questionText string) []CategoryTag {
	text := strings.ToLower(questionText)

	var tags []CategoryTag
	for _, tag := range classifyOrder {
		for _, kw := range categoryKeywords[tag] {
			if strings.Contains(text, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}
	return tags
}

// expectedQuestions 各品类的期望答案数基线，未知品类按 10 计
var expectedQuestions = map[string]int{
	"food":        15,
	"electronics": 12,
	"clothing":    10,
	"cosmetics":   12,
	"non-food":    10,
}

const defaultExpected = 10

// Analysis 一次报告的量化分析结果，生成后只读
type Analysis struct {
	TotalDataPoints int
	ProductCategory string
	CompanyName     string
	SubmissionDate  time.Time
	ReportDate      time.Time

	SafetyRelated        int
	ComplianceRelated    int
	QualityRelated       int
	EnvironmentalRelated int
	TechnicalRelated     int

	QuestionTypes     map[string]int
	CompletenessScore float64
	RiskLevel         RiskLevel
}

// CategoryCount 按标签取对应的聚合计数
func (a *Analysis) CategoryCount(tag CategoryTag) int {
	switch tag {
	case CategorySafety:
		return a.SafetyRelated
	case CategoryCompliance:
		return a.ComplianceRelated
	case CategoryQuality:
		return a.QualityRelated
	case CategoryEnvironmental:
		return a.EnvironmentalRelated
	case CategoryTechnical:
		return a.TechnicalRelated
	}
	return 0
}

// Analyze 对产品与答案序列做分类与完整度评估。
// 分类与排序无关；完整度 = min(100, 100 * 答案数 / 品类基线)。
func Analyze(p *Product, answers []Answer) *Analysis {
	analysis := &Analysis{
		TotalDataPoints: len(answers),
		ProductCategory: p.Category,
		CompanyName:     p.Company,
		SubmissionDate:  p.CreatedAt,
		ReportDate:      time.Now(),
		QuestionTypes:   make(map[string]int),
	}

	for _, answer := range answers {
		for _, tag := range Classify(answer.QuestionText) {
			switch tag {
			case CategorySafety:
				analysis.SafetyRelated++
			case CategoryCompliance:
				analysis.ComplianceRelated++
			case CategoryQuality:
				analysis.QualityRelated++
			case CategoryEnvironmental:
				analysis.EnvironmentalRelated++
			case CategoryTechnical:
				analysis.TechnicalRelated++
			}
		}

		qType := answer.QuestionType
		if qType == "" {
			qType = "text"
		}
		analysis.QuestionTypes[qType]++
	}

	expected, ok := expectedQuestions[p.Category]
	if !ok {
		expected = defaultExpected
	}
	score := float64(len(answers)) / float64(expected) * 100
	if score > 100 {
		score = 100
	}
	analysis.CompletenessScore = score

	switch {
	case score < 50:
		analysis.RiskLevel = RiskHigh
	case score < 80:
		analysis.RiskLevel = RiskMedium
	default:
		analysis.RiskLevel = RiskLow
	}

	return analysis
}
