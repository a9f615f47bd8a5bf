package biz

import (
	"strings"
	"testing"
)

func validProduct() *Product {
	return &Product{
		Name:     "Organic Granola",
		Company:  "Acme Foods",
		Category: "food",
	}
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{"合法产品", func(p *Product) {}, false},
		{"名称过短", func(p *Product) { p.Name = "A" }, true},
		{"名称过长", func(p *Product) { p.Name = strings.Repeat("a", 101) }, true},
		{"名称非法字符", func(p *Product) { p.Name = "Granola <script>" }, true},
		{"名称允许括号与连字符", func(p *Product) { p.Name = "Granola (Original) - 500g" }, false},
		{"公司过短", func(p *Product) { p.Company = "X" }, true},
		{"品类非法", func(p *Product) { p.Category = "toys" }, true},
		{"描述过长", func(p *Product) { p.Description = strings.Repeat("a", 1001) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(p)
			err := validateProduct(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProduct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAnswers(t *testing.T) {
	tests := []struct {
		name    string
		answers []*Answer
		wantErr bool
	}{
		{"合法答案", []*Answer{{QuestionText: "Allergens?", Value: "peanuts"}}, false},
		{"空答案列表", nil, false},
		{"缺少问题文本", []*Answer{{QuestionText: "  ", Value: "x"}}, true},
		{"缺少答案值", []*Answer{{QuestionText: "Allergens?", Value: ""}}, true},
		{"答案过长", []*Answer{{QuestionText: "Allergens?", Value: strings.Repeat("a", 1001)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnswers(tt.answers)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAnswers() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"合法凭证", "user@example.com", "secret123", false},
		{"邮箱格式错误", "not-an-email", "secret123", true},
		{"邮箱过长", strings.Repeat("a", 250) + "@example.com", "secret123", true},
		{"密码过短", "user@example.com", "123", true},
		{"密码过长", "user@example.com", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCredentials(tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
