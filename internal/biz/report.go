package biz

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/clearlabel/transparency_portal/pkg/report"
)

// ReportGenerator 报告生成器接口，由 pkg/report.Engine 实现
type ReportGenerator interface {
	Generate(ctx context.Context, p *report.Product, answers []report.Answer) (*report.Result, error)
}

// ReportUseCase 报告业务逻辑：加载产品数据并驱动生成引擎
type ReportUseCase struct {
	products ProductRepo
	engine   ReportGenerator
	log      *log.Helper
}

// NewReportUseCase 创建报告业务逻辑实例
func NewReportUseCase(products ProductRepo, engine ReportGenerator, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{
		products: products,
		engine:   engine,
		log:      log.NewHelper(logger),
	}
}

// Generate 为指定产品生成透明度报告 PDF。
// userID 为 0 表示匿名请求或离线 CLI，跳过归属校验；登录用户只能生成自己的产品报告。
func (uc *ReportUseCase) Generate(ctx context.Context, productID, userID int) (*report.Result, error) {
	p, err := uc.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NotFound("PRODUCT_NOT_FOUND", "product not found")
	}
	if userID != 0 && p.UserID != userID {
		return nil, errors.Forbidden("FORBIDDEN", "product belongs to another user")
	}

	rp := &report.Product{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Company:     p.Company,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
	answers := make([]report.Answer, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, report.Answer{
			QuestionText: a.QuestionText,
			QuestionType: a.QuestionType,
			Value:        a.Value,
			SortOrder:    a.SortOrder,
		})
	}

	result, err := uc.engine.Generate(ctx, rp, answers)
	if err != nil {
		if stderrors.Is(err, report.ErrNoProductData) {
			return nil, errors.BadRequest("NO_PRODUCT_DATA", "no product data available for report generation")
		}
		uc.log.Errorf("生成报告失败 [%d]: %v", productID, err)
		return nil, errors.InternalServer("REPORT_GENERATION_FAILED", "failed to generate report")
	}

	return result, nil
}
