package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Product 产品实体
type Product struct {
	ID          int
	UserID      int
	Name        string
	Category    string
	Company     string
	Description string
	CreatedAt   time.Time
	Answers     []*Answer
}

// Question 问题库里的一条问题
type Question struct {
	ID        int
	Category  string
	Text      string
	Type      string
	Options   []string
	SortOrder int
}

// Answer 产品提交的一条答案
type Answer struct {
	ID           int
	ProductID    int
	QuestionText string
	QuestionType string
	Value        string
	SortOrder    int
}

// ListFilter 产品列表的筛选与分页参数
type ListFilter struct {
	Category string
	Company  string
	Page     int
	PageSize int
}

// ProductRepo 产品仓库接口
type ProductRepo interface {
	// CreateProduct 在同一事务中写入产品与全部答案
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	// ListProducts 按筛选条件分页列出产品
	ListProducts(ctx context.Context, filter ListFilter) ([]*Product, int, error)
	// GetProduct 获取产品及其全部答案，按 sort_order 排序
	GetProduct(ctx context.Context, id int) (*Product, error)
	// ListQuestions 按品类获取问题库
	ListQuestions(ctx context.Context, category string) ([]*Question, error)
}

// ProductUseCase 产品业务逻辑
type ProductUseCase struct {
	repo ProductRepo
	log  *log.Helper
}

// NewProductUseCase 创建产品业务逻辑实例
func NewProductUseCase(repo ProductRepo, logger log.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, log: log.NewHelper(logger)}
}

// Create 校验并创建产品及其答案
func (uc *ProductUseCase) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := validateAnswers(p.Answers); err != nil {
		return nil, err
	}

	created, err := uc.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("created product [%d] %s with %d answers", created.ID, created.Name, len(p.Answers))
	return created, nil
}

// List 分页列出产品
func (uc *ProductUseCase) List(ctx context.Context, filter ListFilter) ([]*Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}
	return uc.repo.ListProducts(ctx, filter)
}

// Get 获取产品详情
func (uc *ProductUseCase) Get(ctx context.Context, id int) (*Product, error) {
	return uc.repo.GetProduct(ctx, id)
}

// Questions 获取品类对应的问题库
func (uc *ProductUseCase) Questions(ctx context.Context, category string) ([]*Question, error) {
	return uc.repo.ListQuestions(ctx, category)
}
