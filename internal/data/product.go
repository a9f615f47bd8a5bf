package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/lib/pq"

	"github.com/clearlabel/transparency_portal/internal/biz"
)

type productRepo struct {
	data *Data
	log  *log.Helper
}

func NewProductRepo(data *Data, logger log.Logger) biz.ProductRepo {
	return &productRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreateProduct 在同一事务中写入产品与全部答案，任一失败整体回滚
func (r *productRepo) CreateProduct(ctx context.Context, p *biz.Product) (*biz.Product, error) {
	tx, err := r.data.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (user_id, name, category, company, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		toNullableID(p.UserID), p.Name, p.Category, p.Company, p.Description,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return nil, err
	}

	for i, a := range p.Answers {
		qType := a.QuestionType
		if qType == "" {
			qType = "text"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO answers (product_id, question_text, question_type, value, sort_order)
			VALUES ($1, $2, $3, $4, $5)`,
			p.ID, a.QuestionText, qType, a.Value, i)
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w: %v", err, rerr)
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts 按品类精确匹配、公司模糊匹配分页列出产品
func (r *productRepo) ListProducts(ctx context.Context, filter biz.ListFilter) ([]*biz.Product, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Company != "" {
		args = append(args, "%"+filter.Company+"%")
		where += fmt.Sprintf(" AND company ILIKE $%d", len(args))
	}

	var total int
	if err := r.data.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT id, COALESCE(user_id, 0), name, category, company, description, created_at
		FROM products %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.data.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*biz.Product
	for rows.Next() {
		p := &biz.Product{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Company, &p.Description, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetProduct 获取产品与全部答案，答案按 sort_order 排序
func (r *productRepo) GetProduct(ctx context.Context, id int) (*biz.Product, error) {
	p := &biz.Product{}
	err := r.data.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(user_id, 0), name, category, company, description, created_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Category, &p.Company, &p.Description, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("PRODUCT_NOT_FOUND", "product not found")
		}
		return nil, err
	}

	rows, err := r.data.db.QueryContext(ctx, `
		SELECT id, product_id, question_text, question_type, value, sort_order
		FROM answers WHERE product_id = $1
		ORDER BY sort_order ASC, id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a := &biz.Answer{}
		if err := rows.Scan(&a.ID, &a.ProductID, &a.QuestionText, &a.QuestionType, &a.Value, &a.SortOrder); err != nil {
			return nil, err
		}
		p.Answers = append(p.Answers, a)
	}
	return p, rows.Err()
}

// toNullableID 匿名提交（ID 为 0）写入 NULL
func toNullableID(id int) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// ListQuestions 获取品类问题库，category 为空时返回全部
func (r *productRepo) ListQuestions(ctx context.Context, category string) ([]*biz.Question, error) {
	query := `
		SELECT id, category, question_text, question_type, options, sort_order
		FROM questions`
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := r.data.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []*biz.Question
	for rows.Next() {
		q := &biz.Question{}
		var options pq.StringArray
		if err := rows.Scan(&q.ID, &q.Category, &q.Text, &q.Type, &options, &q.SortOrder); err != nil {
			return nil, err
		}
		q.Options = options
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
