package biz

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,()&]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// validCategories 允许的产品品类
var validCategories = map[string]bool{
	"food":        true,
	"electronics": true,
	"clothing":    true,
	"cosmetics":   true,
	"non-food":    true,
}

// validateProduct 校验产品提交数据
func validateProduct(p *Product) error {
	var problems []string

	name := strings.TrimSpace(p.Name)
	if len(name) < 2 || len(name) > 100 {
		problems = append(problems, "name must be between 2 and 100 characters")
	} else if !namePattern.MatchString(name) {
		problems = append(problems, "name contains invalid characters")
	}

	company := strings.TrimSpace(p.Company)
	if len(company) < 2 || len(company) > 100 {
		problems = append(problems, "company must be between 2 and 100 characters")
	} else if !namePattern.MatchString(company) {
		problems = append(problems, "company contains invalid characters")
	}

	if !validCategories[p.Category] {
		problems = append(problems, "category must be one of: food, electronics, clothing, cosmetics, non-food")
	}

	if len(p.Description) > 1000 {
		problems = append(problems, "description must not exceed 1000 characters")
	}

	if len(problems) > 0 {
		return errors.BadRequest("VALIDATION_ERROR", strings.Join(problems, "; "))
	}
	return nil
}

// validateAnswers 校验答案列表：答案值必填且不超长
func validateAnswers(answers []*Answer) error {
	for i, a := range answers {
		if strings.TrimSpace(a.QuestionText) == "" {
			return errors.BadRequest("VALIDATION_ERROR", fmt.Sprintf("answer %d is missing question text", i+1))
		}
		if strings.TrimSpace(a.Value) == "" {
			return errors.BadRequest("VALIDATION_ERROR", fmt.Sprintf("answer %d is missing a value", i+1))
		}
		if len(a.Value) > 1000 {
			return errors.BadRequest("VALIDATION_ERROR", fmt.Sprintf("answer %d exceeds 1000 characters", i+1))
		}
	}
	return nil
}

// validateCredentials 校验注册/登录的邮箱与密码
func validateCredentials(email, password string) error {
	var problems []string

	if len(email) > 255 || !emailPattern.MatchString(email) {
		problems = append(problems, "a valid email address is required")
	}
	if len(password) < 6 || len(password) > 128 {
		problems = append(problems, "password must be between 6 and 128 characters")
	}

	if len(problems) > 0 {
		return errors.BadRequest("VALIDATION_ERROR", strings.Join(problems, "; "))
	}
	return nil
}
