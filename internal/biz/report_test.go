package biz

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/clearlabel/transparency_portal/pkg/report"
)

// mockProductRepo 模拟产品仓库
type mockProductRepo struct {
	products map[int]*Product
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	p.ID = len(m.products) + 1
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductRepo) ListProducts(ctx context.Context, filter ListFilter) ([]*Product, int, error) {
	var list []*Product
	for _, p := range m.products {
		list = append(list, p)
	}
	return list, len(list), nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, errors.NotFound("PRODUCT_NOT_FOUND", "product not found")
	}
	return p, nil
}

func (m *mockProductRepo) ListQuestions(ctx context.Context, category string) ([]*Question, error) {
	return nil, nil
}

func newMockRepo() *mockProductRepo {
	return &mockProductRepo{products: map[int]*Product{
		1: {
			ID:        1,
			UserID:    1,
			Name:      "Organic Granola",
			Category:  "food",
			Company:   "Acme Foods",
			CreatedAt: time.Now(),
			Answers: []*Answer{
				{QuestionText: "List all allergens", QuestionType: "textarea", Value: "peanuts", SortOrder: 0},
				{QuestionText: "Which certifications does it hold?", QuestionType: "select", Value: "ISO 22000", SortOrder: 1},
			},
		},
		2: {
			ID:        2,
			UserID:    1,
			Name:      "Empty Product",
			Category:  "food",
			Company:   "Acme Foods",
			CreatedAt: time.Now(),
		},
	}}
}

func TestReportUseCase_Generate(t *testing.T) {
	uc := NewReportUseCase(newMockRepo(), report.NewEngine(nil, nil), log.DefaultLogger)

	result, err := uc.Generate(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("Generate() 未返回 PDF 文档")
	}
	if result.Filename != "transparency-report-organic_granola.pdf" {
		t.Errorf("Filename = %q", result.Filename)
	}
}

func TestReportUseCase_GenerateNoData(t *testing.T) {
	uc := NewReportUseCase(newMockRepo(), report.NewEngine(nil, nil), log.DefaultLogger)

	_, err := uc.Generate(context.Background(), 2, 1)
	if err == nil {
		t.Fatal("Generate() 应返回错误")
	}
	if !errors.IsBadRequest(err) {
		t.Errorf("err = %v, want BadRequest", err)
	}
	if errors.FromError(err).Reason != "NO_PRODUCT_DATA" {
		t.Errorf("reason = %q, want NO_PRODUCT_DATA", errors.FromError(err).Reason)
	}
}

func TestReportUseCase_GenerateNotFound(t *testing.T) {
	uc := NewReportUseCase(newMockRepo(), report.NewEngine(nil, nil), log.DefaultLogger)

	_, err := uc.Generate(context.Background(), 99, 1)
	if !errors.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestReportUseCase_GenerateForbidden(t *testing.T) {
	uc := NewReportUseCase(newMockRepo(), report.NewEngine(nil, nil), log.DefaultLogger)

	_, err := uc.Generate(context.Background(), 1, 2)
	if !errors.IsForbidden(err) {
		t.Errorf("err = %v, want Forbidden", err)
	}
}

func TestProductUseCase_Create(t *testing.T) {
	repo := &mockProductRepo{products: map[int]*Product{}}
	uc := NewProductUseCase(repo, log.DefaultLogger)

	p := &Product{
		Name:     "Organic Granola",
		Company:  "Acme Foods",
		Category: "food",
		Answers: []*Answer{
			{QuestionText: "List all allergens", Value: "peanuts"},
		},
	}
	created, err := uc.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("Create() 未分配产品 ID")
	}

	bad := &Product{Name: "X", Company: "Acme Foods", Category: "food"}
	if _, err := uc.Create(context.Background(), bad); err == nil {
		t.Error("非法产品应校验失败")
	}
}
