package server

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/clearlabel/transparency_portal/internal/conf"
	plogger "github.com/clearlabel/transparency_portal/pkg/logger"
	"github.com/clearlabel/transparency_portal/pkg/questiongen"
	"github.com/clearlabel/transparency_portal/pkg/report"
)

// NewReportEngine 初始化报告引擎与问题生成器。
// 未配置 LLM 时引擎退化为纯本地生成，问题生成器为 nil。
func NewReportEngine(c *conf.Report, logger log.Logger) (*report.Engine, *questiongen.Generator, error) {
	helper := log.NewHelper(logger)

	level, file := "info", ""
	if c != nil && c.Log != nil {
		level, file = c.Log.Level, c.Log.File
	}
	if err := plogger.Init(level, file); err != nil {
		helper.Errorf("Failed to init report logger: %v", err)
		_ = plogger.Init("info", "") // 降级处理
	}

	var chatModel einomodel.ChatModel
	var limiter *rate.Limiter

	if c != nil && c.Llm != nil && c.Llm.ApiKey != "" {
		cm, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
			BaseURL: c.Llm.BaseUrl,
			APIKey:  c.Llm.ApiKey,
			Model:   c.Llm.Model,
		})
		if err != nil {
			helper.Errorf("Failed to init chat model: %v", err)
			return nil, nil, err
		}
		chatModel = cm

		if c.Concurrency != nil && c.Concurrency.Rpm > 0 {
			limit := rate.Limit(float64(c.Concurrency.Rpm) / 60.0)
			burst := int(c.Concurrency.Qps)
			if burst < 1 {
				burst = 1
			}
			limiter = rate.NewLimiter(limit, burst)
		}
	} else {
		helper.Info("LLM not configured, reports will use locally generated content")
	}

	engine := report.NewEngine(chatModel, limiter)

	var questions *questiongen.Generator
	if chatModel != nil {
		questions = questiongen.NewGenerator(chatModel, limiter)
	}

	return engine, questions, nil
}
