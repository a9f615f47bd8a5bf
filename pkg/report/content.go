package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/clearlabel/transparency_portal/pkg/logger"
)

// synthesisTimeout 外部内容生成服务的调用上限
const synthesisTimeout = 30 * time.Second

// ReportContent 报告的叙述性内容。
// 除 QualityAssessment 外，所有字段都必须非空才算有效。
type ReportContent struct {
	LeadershipMessage    string   `json:"leadershipMessage"`
	ExecutiveSummary     string   `json:"executiveSummary"`
	TransparencyAnalysis string   `json:"transparencyAnalysis"`
	KeyFindings          []string `json:"keyFindings"`
	ComplianceAssessment string   `json:"complianceAssessment"`
	QualityAssessment    string   `json:"qualityAssessment,omitempty"`
	Conclusions          string   `json:"conclusions"`
	Recommendations      []string `json:"recommendations"`
}

// Synthesizer 负责生成报告叙述内容：
// 优先调用外部 LLM，失败时退回本地确定性生成，保证报告一定能产出。
type Synthesizer struct {
	chatModel model.ChatModel
	limiter   *rate.Limiter
}

// NewSynthesizer 创建内容生成器，chatModel 可以为 nil（只走本地兜底）
func NewSynthesizer(chatModel model.ChatModel, limiter *rate.Limiter) *Synthesizer {
	return &Synthesizer{chatModel: chatModel, limiter: limiter}
}

// Generate 生成完整的报告内容。
// 远端只尝试一次；超时、传输失败、JSON 非法、字段缺失都视为失败并退回兜底内容。
func (s *Synthesizer) Generate(ctx context.Context, p *Product, answers []Answer, analysis *Analysis) *ReportContent {
	if s.chatModel == nil {
		logger.Log.Info("未配置内容生成服务，使用本地内容")
		return FallbackContent(p, analysis)
	}

	content, err := s.generateRemote(ctx, p, answers, analysis)
	if err != nil {
		logger.Log.Errorf("调用内容生成服务失败，退回本地内容 [%s]: %v", p.Name, err)
		return FallbackContent(p, analysis)
	}
	return content
}

// generateRemote 调用外部 LLM 生成内容并做严格校验
func (s *Synthesizer) generateRemote(ctx context.Context, p *Product, answers []Answer, analysis *Analysis) (*ReportContent, error) {
	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}
	}

	messages := []*schema.Message{
		{
			Role:    schema.System,
			Content: "You are a professional transparency report writer. You return only a valid JSON string, no markdown and no additional text.",
		},
		{
			Role:    schema.User,
			Content: buildContentPrompt(p, answers, analysis),
		},
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	// 清理可能的 markdown 标记
	cleanContent := strings.TrimSpace(resp.Content)
	cleanContent = strings.TrimPrefix(cleanContent, "```json")
	cleanContent = strings.TrimPrefix(cleanContent, "```")
	cleanContent = strings.TrimSuffix(cleanContent, "```")

	var content ReportContent
	if err := json.Unmarshal([]byte(cleanContent), &content); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	// 结构合法但字段缺失的响应同样按失败处理
	if err := validateContent(&content); err != nil {
		return nil, err
	}

	return &content, nil
}

// buildContentPrompt 把产品、问答与分析指标拼装为生成提示词
func buildContentPrompt(p *Product, answers []Answer, analysis *Analysis) string {
	var sb strings.Builder

	sb.WriteString("Generate comprehensive, formal content for a product transparency report.\n\n")
	sb.WriteString("PRODUCT INFORMATION:\n")
	fmt.Fprintf(&sb, "- Product Name: %s\n", p.Name)
	fmt.Fprintf(&sb, "- Company: %s\n", p.Company)
	fmt.Fprintf(&sb, "- Category: %s\n", p.Category)
	description := p.Description
	if description == "" {
		description = "Not provided"
	}
	fmt.Fprintf(&sb, "- Description: %s\n", description)
	fmt.Fprintf(&sb, "- Submission Date: %s\n\n", p.CreatedAt.Format(time.DateOnly))

	sb.WriteString("COLLECTED DATA:\n")
	for i, a := range answers {
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i+1, a.QuestionText, a.Value)
	}

	sb.WriteString("\nANALYSIS METRICS:\n")
	fmt.Fprintf(&sb, "- Total Data Points: %d\n", analysis.TotalDataPoints)
	fmt.Fprintf(&sb, "- Completeness Score: %.1f%%\n", analysis.CompletenessScore)
	fmt.Fprintf(&sb, "- Risk Level: %s\n", analysis.RiskLevel)
	fmt.Fprintf(&sb, "- Safety Items: %d\n", analysis.SafetyRelated)
	fmt.Fprintf(&sb, "- Compliance Items: %d\n", analysis.ComplianceRelated)
	fmt.Fprintf(&sb, "- Quality Items: %d\n", analysis.QualityRelated)
	fmt.Fprintf(&sb, "- Environmental Items: %d\n", analysis.EnvironmentalRelated)
	fmt.Fprintf(&sb, "- Technical Items: %d\n\n", analysis.TechnicalRelated)

	sb.WriteString(`Write the following sections in a formal, objective tone suitable for regulatory and stakeholder review:
1. leadershipMessage: a message from company leadership emphasizing commitment to transparency, referencing specific metrics.
2. executiveSummary: a comprehensive executive summary of purpose, scope, key assessment results and main findings.
3. transparencyAnalysis: detailed analysis of documentation completeness and coverage across safety, compliance, quality, environmental and technical categories.
4. keyFindings: a list of 5-8 specific, data-backed findings, each 1-2 sentences.
5. complianceAssessment: assessment of regulatory compliance and quality control based on documented certifications and standards.
6. conclusions: balanced final conclusions about overall transparency performance.
7. recommendations: 4-6 specific, actionable recommendations.

Return ONLY valid JSON with this exact structure:
{
  "leadershipMessage": "...",
  "executiveSummary": "...",
  "transparencyAnalysis": "...",
  "keyFindings": ["..."],
  "complianceAssessment": "...",
  "conclusions": "...",
  "recommendations": ["..."]
}`)

	return sb.String()
}

// validateContent 校验必填字段：空字符串或空列表都算缺失
func validateContent(c *ReportContent) error {
	var missing []string

	if strings.TrimSpace(c.LeadershipMessage) == "" {
		missing = append(missing, "leadershipMessage")
	}
	if strings.TrimSpace(c.ExecutiveSummary) == "" {
		missing = append(missing, "executiveSummary")
	}
	if strings.TrimSpace(c.TransparencyAnalysis) == "" {
		missing = append(missing, "transparencyAnalysis")
	}
	if len(c.KeyFindings) == 0 {
		missing = append(missing, "keyFindings")
	}
	if strings.TrimSpace(c.ComplianceAssessment) == "" {
		missing = append(missing, "complianceAssessment")
	}
	if strings.TrimSpace(c.Conclusions) == "" {
		missing = append(missing, "conclusions")
	}
	if len(c.Recommendations) == 0 {
		missing = append(missing, "recommendations")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FallbackContent 本地确定性内容生成。
// 只依赖产品字段与分析结果，引用真实数字；无数据时改用"已登记/基线"口径，
// 保证所有必填字段始终非空。
func FallbackContent(p *Product, analysis *Analysis) *ReportContent {
	hasData := analysis.TotalDataPoints > 0

	dataDescription := "initial product information"
	if hasData {
		dataDescription = fmt.Sprintf("%d documented data points", analysis.TotalDataPoints)
	}

	completenessDescription := "baseline documentation"
	if hasData {
		completenessDescription = fmt.Sprintf("%.1f%% completeness score", analysis.CompletenessScore)
	}

	var keyFindings []string
	if hasData {
		keyFindings = append(keyFindings, fmt.Sprintf("Product documentation includes %d data points", analysis.TotalDataPoints))
		if analysis.SafetyRelated > 0 {
			keyFindings = append(keyFindings, fmt.Sprintf("Safety and health information: %d documented items", analysis.SafetyRelated))
		}
		if analysis.ComplianceRelated > 0 {
			keyFindings = append(keyFindings, fmt.Sprintf("Regulatory compliance: %d compliance-related documents", analysis.ComplianceRelated))
		}
		if analysis.QualityRelated > 0 {
			keyFindings = append(keyFindings, fmt.Sprintf("Quality specifications: %d quality-related data points", analysis.QualityRelated))
		}
		if analysis.EnvironmentalRelated > 0 {
			keyFindings = append(keyFindings, fmt.Sprintf("Environmental considerations: %d items documented", analysis.EnvironmentalRelated))
		}
		if analysis.TechnicalRelated > 0 {
			keyFindings = append(keyFindings, fmt.Sprintf("Technical specifications: %d technical details provided", analysis.TechnicalRelated))
		}
	} else {
		keyFindings = append(keyFindings, fmt.Sprintf("%s has been registered in the transparency portal and awaits detailed documentation", p.Name))
	}

	executiveSummary := fmt.Sprintf("This transparency report documents %s, manufactured by %s. The product has been registered in our transparency portal with basic information collected.", p.Name, p.Company)
	if hasData {
		executiveSummary = fmt.Sprintf("This transparency report provides comprehensive analysis of %s, manufactured by %s. The assessment covers %d documented data points with a completeness score of %.1f%%. This documentation supports informed decision-making and regulatory compliance while demonstrating our commitment to product transparency.",
			p.Name, p.Company, analysis.TotalDataPoints, analysis.CompletenessScore)
	}

	transparencyAnalysis := fmt.Sprintf("This transparency assessment establishes the baseline documentation for %s in the %s category.", p.Name, p.Category)
	if hasData {
		coverage := "adequate"
		if analysis.CompletenessScore > 80 {
			coverage = "excellent"
		} else if analysis.CompletenessScore > 60 {
			coverage = "good"
		}
		transparencyAnalysis = fmt.Sprintf("The transparency assessment reveals a comprehensive documentation approach with %d total data points collected across multiple categories. The %.1f%% completeness score indicates %s transparency coverage for this %s product.",
			analysis.TotalDataPoints, analysis.CompletenessScore, coverage, p.Category)
	}

	complianceAssessment := fmt.Sprintf("The compliance assessment establishes %s's commitment to transparency standards for %s.", p.Company, p.Name)
	if hasData {
		complianceAssessment = fmt.Sprintf("The compliance assessment demonstrates %s's adherence to transparency standards with documented compliance information. The product meets documentation requirements for the %s category with coverage across safety, quality, and regulatory aspects.", p.Company, p.Category)
	}

	qualityAssessment := ""
	if hasData && analysis.QualityRelated > 0 {
		qualityAssessment = fmt.Sprintf("Quality specifications have been documented across %d data points. The quality assessment covers material specifications, manufacturing processes, and quality control measures implemented by %s.", analysis.QualityRelated, p.Company)
	}

	practices := "foundational"
	if hasData {
		practices = "effective"
	}
	conclusions := fmt.Sprintf("This transparency assessment confirms %s's commitment to product documentation for %s. The %s and %s risk assessment demonstrate %s transparency practices.",
		p.Company, p.Name, completenessDescription, strings.ToLower(string(analysis.RiskLevel)), practices)

	return &ReportContent{
		LeadershipMessage: fmt.Sprintf("At %s, we are committed to transparency and building trust with our stakeholders. This report for %s demonstrates our dedication to providing complete product information. With %s and %s, we continue to set high standards for product transparency in the %s industry.",
			p.Company, p.Name, dataDescription, completenessDescription, p.Category),
		ExecutiveSummary:     executiveSummary,
		TransparencyAnalysis: transparencyAnalysis,
		KeyFindings:          keyFindings,
		ComplianceAssessment: complianceAssessment,
		QualityAssessment:    qualityAssessment,
		Conclusions:          conclusions,
		Recommendations: []string{
			"Continue maintaining comprehensive documentation standards across all product categories",
			"Implement regular transparency assessments to ensure ongoing compliance",
			"Enhance stakeholder access to product transparency information",
			"Monitor regulatory requirements and update documentation practices accordingly",
		},
	}
}
