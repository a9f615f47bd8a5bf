package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	kratoslog "github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/clearlabel/transparency_portal/internal/biz"
	"github.com/clearlabel/transparency_portal/internal/conf"
	"github.com/clearlabel/transparency_portal/internal/data"
	"github.com/clearlabel/transparency_portal/pkg/config"
	"github.com/clearlabel/transparency_portal/pkg/logger"
	"github.com/clearlabel/transparency_portal/pkg/report"
)

var (
	flagConf    string
	flagProduct int
	flagOut     string
)

func init() {
	flag.StringVar(&flagConf, "conf", "configs/reportctl.yaml", "配置文件路径")
	flag.IntVar(&flagProduct, "product", 0, "产品 ID")
	flag.StringVar(&flagOut, "o", "", "输出文件路径，默认使用报告文件名")
}

func main() {
	flag.Parse()

	if flagProduct < 1 {
		fmt.Fprintln(os.Stderr, "用法: reportctl -conf <配置> -product <产品ID> [-o <输出文件>]")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(flagConf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Log.Errorf("生成报告失败: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	klog := kratoslog.NewStdLogger(os.Stdout)

	d, cleanup, err := data.NewData(&conf.Data{
		Database: &conf.Database{Driver: "postgres", Source: cfg.DB.DSN()},
	}, klog)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	defer cleanup()

	var chatModel einomodel.ChatModel
	var limiter *rate.Limiter
	if cfg.LLM.APIKey != "" {
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return fmt.Errorf("LLM 初始化失败: %w", err)
		}
		chatModel = cm

		if cfg.Concurrency.RPM > 0 {
			burst := cfg.Concurrency.QPS
			if burst < 1 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), burst)
		}
	}

	repo := data.NewProductRepo(d, klog)
	uc := biz.NewReportUseCase(repo, report.NewEngine(chatModel, limiter), klog)

	result, err := uc.Generate(ctx, flagProduct, 0)
	if err != nil {
		return err
	}

	out := flagOut
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, result.PDF, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}

	logger.Log.Infof("报告已生成: %s (%s, %d 字节)", out, result.ReportID, len(result.PDF))
	return nil
}
