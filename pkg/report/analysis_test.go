package report

import (
	"testing"
	"time"
)

func makeAnswers(n int, questionText string) []Answer {
	answers := make([]Answer, 0, n)
	for i := 0; i < n; i++ {
		answers = append(answers, Answer{
			QuestionText: questionText,
			QuestionType: "text",
			Value:        "some value",
			SortOrder:    i,
		})
	}
	return answers
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []CategoryTag
	}{
		{
			name:     "单类别命中",
			question: "What allergens does this product contain?",
			want:     []CategoryTag{CategorySafety},
		},
		{
			name:     "大小写不敏感",
			question: "SAFETY warnings for children",
			want:     []CategoryTag{CategorySafety},
		},
		{
			name:     "specification 同时命中 quality 与 technical",
			question: "Provide the technical specification of the device",
			want:     []CategoryTag{CategoryQuality, CategoryTechnical},
		},
		{
			name:     "无命中",
			question: "What is the product color?",
			want:     nil,
		},
		{
			name:     "多类别命中",
			question: "Is the packaging recyclable and certified to safety standards?",
			want:     []CategoryTag{CategorySafety, CategoryCompliance, CategoryEnvironmental},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question)
			if len(got) != len(tt.want) {
				t.Fatalf("Classify(%q) = %v, want %v", tt.question, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Classify(%q)[%d] = %s, want %s", tt.question, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeCompletenessScore(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		answers   int
		wantScore float64
		wantRisk  RiskLevel
	}{
		{"food 无答案", "food", 0, 0, RiskHigh},
		{"food 低于一半", "food", 7, 100.0 * 7 / 15, RiskHigh},
		{"food 过半", "food", 9, 60, RiskMedium},
		{"food 达到基线", "food", 15, 100, RiskLow},
		{"food 超过基线封顶", "food", 30, 100, RiskLow},
		{"clothing 边界 50", "clothing", 5, 50, RiskMedium},
		{"clothing 边界 80", "clothing", 8, 80, RiskLow},
		{"clothing 边界 80 以下", "clothing", 7, 70, RiskMedium},
		{"未知品类用默认基线", "toys", 10, 100, RiskLow},
		{"electronics 基线 12", "electronics", 12, 100, RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ID: 1, Name: "Test", Category: tt.category, Company: "Acme", CreatedAt: time.Now()}
			analysis := Analyze(p, makeAnswers(tt.answers, "generic question"))

			diff := analysis.CompletenessScore - tt.wantScore
			if diff < -0.0001 || diff > 0.0001 {
				t.Errorf("CompletenessScore = %.4f, want %.4f", analysis.CompletenessScore, tt.wantScore)
			}
			if analysis.RiskLevel != tt.wantRisk {
				t.Errorf("RiskLevel = %s, want %s", analysis.RiskLevel, tt.wantRisk)
			}
		})
	}
}

func TestAnalyzeScoreMonotonic(t *testing.T) {
	p := &Product{ID: 1, Name: "Test", Category: "food", Company: "Acme"}

	prev := -1.0
	for n := 0; n <= 20; n++ {
		analysis := Analyze(p, makeAnswers(n, "generic question"))
		if analysis.CompletenessScore < prev {
			t.Fatalf("score decreased at n=%d: %.2f < %.2f", n, analysis.CompletenessScore, prev)
		}
		if analysis.CompletenessScore > 100 {
			t.Fatalf("score exceeds 100 at n=%d: %.2f", n, analysis.CompletenessScore)
		}
		prev = analysis.CompletenessScore
	}
}

func TestAnalyzeCategoryCounts(t *testing.T) {
	p := &Product{ID: 7, Name: "Snack Bar", Category: "food", Company: "Acme Foods", CreatedAt: time.Now()}
	answers := []Answer{
		{QuestionText: "List all allergens present", QuestionType: "textarea", Value: "peanuts"},
		{QuestionText: "Safety handling instructions", QuestionType: "text", Value: "keep dry"},
		{QuestionText: "Any health hazards?", QuestionType: "text", Value: "none"},
		{QuestionText: "Which certifications does the product hold?", QuestionType: "select", Value: "ISO 22000"},
		{QuestionText: "Ingredient list", QuestionType: "textarea", Value: "oats, honey"},
		{QuestionText: "Is the packaging recyclable?", QuestionType: "select", Value: "yes"},
		{QuestionText: "Shelf life", QuestionType: "", Value: "12 months"},
	}

	analysis := Analyze(p, answers)

	if analysis.TotalDataPoints != 7 {
		t.Errorf("TotalDataPoints = %d, want 7", analysis.TotalDataPoints)
	}
	if analysis.SafetyRelated != 3 {
		t.Errorf("SafetyRelated = %d, want 3", analysis.SafetyRelated)
	}
	if analysis.ComplianceRelated != 1 {
		t.Errorf("ComplianceRelated = %d, want 1", analysis.ComplianceRelated)
	}
	if analysis.QualityRelated != 1 {
		t.Errorf("QualityRelated = %d, want 1", analysis.QualityRelated)
	}
	if analysis.EnvironmentalRelated != 1 {
		t.Errorf("EnvironmentalRelated = %d, want 1", analysis.EnvironmentalRelated)
	}
	if analysis.TechnicalRelated != 0 {
		t.Errorf("TechnicalRelated = %d, want 0", analysis.TechnicalRelated)
	}

	// 缺失类型按 text 统计
	if analysis.QuestionTypes["text"] != 3 {
		t.Errorf("QuestionTypes[text] = %d, want 3", analysis.QuestionTypes["text"])
	}
	if analysis.QuestionTypes["textarea"] != 2 {
		t.Errorf("QuestionTypes[textarea] = %d, want 2", analysis.QuestionTypes["textarea"])
	}
	if analysis.QuestionTypes["select"] != 2 {
		t.Errorf("QuestionTypes[select] = %d, want 2", analysis.QuestionTypes["select"])
	}
}

func TestAnalyzeOrderIndependent(t *testing.T) {
	p := &Product{ID: 1, Name: "Test", Category: "food", Company: "Acme"}
	answers := []Answer{
		{QuestionText: "List all allergens", Value: "a", SortOrder: 2},
		{QuestionText: "Quality grade", Value: "b", SortOrder: 0},
		{QuestionText: "Carbon footprint", Value: "c", SortOrder: 1},
	}
	reversed := []Answer{answers[2], answers[1], answers[0]}

	a1 := Analyze(p, answers)
	a2 := Analyze(p, reversed)

	if a1.SafetyRelated != a2.SafetyRelated ||
		a1.QualityRelated != a2.QualityRelated ||
		a1.EnvironmentalRelated != a2.EnvironmentalRelated ||
		a1.CompletenessScore != a2.CompletenessScore {
		t.Errorf("analysis depends on answer order: %+v vs %+v", a1, a2)
	}
}
