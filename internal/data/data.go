package data

import (
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/lib/pq"

	"github.com/clearlabel/transparency_portal/internal/conf"
)

type Data struct {
	db *sql.DB
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := seedQuestions(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		db.Close()
	}
	return &Data{db: db}, cleanup, nil
}

// initSchema 初始化数据表
func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			user_id INT REFERENCES users(id),
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			company TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id SERIAL PRIMARY KEY,
			category TEXT NOT NULL,
			question_text TEXT NOT NULL,
			question_type TEXT NOT NULL DEFAULT 'text',
			options TEXT[] DEFAULT NULL,
			sort_order INT NOT NULL DEFAULT 0,
			UNIQUE (category, question_text)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id SERIAL PRIMARY KEY,
			product_id INT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			question_text TEXT NOT NULL,
			question_type TEXT NOT NULL DEFAULT 'text',
			value TEXT NOT NULL,
			sort_order INT NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

// seedQuestion 问题库种子数据
type seedQuestion struct {
	category string
	text     string
	qType    string
	options  []string
}

var questionSeed = []seedQuestion{
	{"food", "What allergens does this product contain?", "textarea", nil},
	{"food", "List the complete ingredient composition", "textarea", nil},
	{"food", "Is the product certified organic?", "select", []string{"Yes", "No", "Partially"}},
	{"food", "What food safety certifications does the product hold?", "text", nil},
	{"food", "What is the shelf life in months?", "number", nil},
	{"food", "Are there any health warnings for this product?", "textarea", nil},
	{"electronics", "What safety certifications does the device hold?", "text", nil},
	{"electronics", "Describe the technical specification of the device", "textarea", nil},
	{"electronics", "What is the battery capacity?", "number", nil},
	{"electronics", "Is the packaging recyclable?", "select", []string{"Yes", "No"}},
	{"electronics", "What is the energy efficiency rating?", "text", nil},
	{"clothing", "What materials are used in this garment?", "textarea", nil},
	{"clothing", "Does the product hold any sustainability certifications?", "text", nil},
	{"clothing", "Were any hazardous dyes used in production?", "select", []string{"Yes", "No", "Unknown"}},
	{"cosmetics", "List all ingredients and their concentrations", "textarea", nil},
	{"cosmetics", "Has the product undergone safety testing?", "select", []string{"Yes", "No"}},
	{"cosmetics", "What quality standards does manufacturing comply with?", "text", nil},
	{"non-food", "What safety hazards are associated with this product?", "textarea", nil},
	{"non-food", "What compliance standards does the product meet?", "text", nil},
	{"non-food", "Describe the environmental impact of production", "textarea", nil},
}

// seedQuestions 幂等写入问题库
func seedQuestions(db *sql.DB) error {
	for i, q := range questionSeed {
		_, err := db.Exec(`
			INSERT INTO questions (category, question_text, question_type, options, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (category, question_text) DO NOTHING`,
			q.category, q.text, q.qType, toTextArray(q.options), i)
		if err != nil {
			return fmt.Errorf("failed to seed questions: %w", err)
		}
	}
	return nil
}

// toTextArray 空切片写入 NULL，否则转为 text[]
func toTextArray(opts []string) interface{} {
	if len(opts) == 0 {
		return nil
	}
	return pq.Array(opts)
}
