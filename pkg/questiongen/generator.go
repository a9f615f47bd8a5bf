package questiongen

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

// Question 动态生成的追问
type Question struct {
	Text    string   `json:"question"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// validTypes 允许的问题类型白名单
var validTypes = map[string]bool{
	"text":     true,
	"select":   true,
	"textarea": true,
	"number":   true,
	"date":     true,
}

// Generator 基于产品信息生成针对性的透明度追问
type Generator struct {
	chatModel  model.ChatModel
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewGenerator 创建问题生成器
func NewGenerator(chatModel model.ChatModel, limiter *rate.Limiter) *Generator {
	return &Generator{chatModel: chatModel, limiter: limiter, retryDelay: 2 * time.Second}
}

// Generate 为产品生成 4-6 个追问。
// 429 限流错误按指数退避重试，最多 3 次；其他错误直接返回。
func (g *Generator) Generate(ctx context.Context, name, category, description string) ([]Question, error) {
	if g.chatModel == nil {
		return nil, fmt.Errorf("question generation service not configured")
	}

	var sb strings.Builder
	sb.WriteString("Generate 3-5 specific follow-up questions to collect transparency data for this product:\n\n")
	fmt.Fprintf(&sb, "- Name: %s\n", name)
	fmt.Fprintf(&sb, "- Category: %s\n", category)
	if description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", description)
	}
	sb.WriteString(`
Questions must cover safety, compliance, quality and environmental aspects relevant to the category.
Return ONLY a valid JSON array with this exact structure:
[
  {"question": "...", "type": "text|select|textarea|number|date", "options": ["..."]}
]
The "options" field is only present for select questions.`)

	maxRetries := 3
	baseDelay := g.retryDelay
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "You are a product transparency expert. You return only a valid JSON array, no markdown and no additional text."},
			{Role: schema.User, Content: sb.String()},
		}

		resp, err := g.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					logger.Log.Warnf("问题生成触发限流，%v 后重试: %v", baseDelay*time.Duration(1<<i), err)
					time.Sleep(baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return nil, err
		}

		cleanContent := strings.TrimSpace(resp.Content)
		cleanContent = strings.TrimPrefix(cleanContent, "```json")
		cleanContent = strings.TrimPrefix(cleanContent, "```")
		cleanContent = strings.TrimSuffix(cleanContent, "```")

		var questions []Question
		if err := json.Unmarshal([]byte(cleanContent), &questions); err != nil {
			lastErr = fmt.Errorf("json unmarshal: %w", err)
			if i < maxRetries {
				continue
			}
			return nil, lastErr
		}

		return sanitize(questions), nil
	}
	return nil, lastErr
}

// sanitize 丢弃空白问题，类型不在白名单内的降级为 text
func sanitize(questions []Question) []Question {
	result := make([]Question, 0, len(questions))
	for _, q := range questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}
		if !validTypes[q.Type] {
			q.Type = "text"
		}
		if q.Type != "select" {
			q.Options = nil
		}
		result = append(result, q)
	}
	return result
}
