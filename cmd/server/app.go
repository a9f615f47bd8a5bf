package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/clearlabel/transparency_portal/internal/biz"
	"github.com/clearlabel/transparency_portal/internal/conf"
	"github.com/clearlabel/transparency_portal/internal/data"
	"github.com/clearlabel/transparency_portal/internal/server"
	"github.com/clearlabel/transparency_portal/internal/service"
)

// initApp 按依赖顺序手工装配应用
func initApp(cs *conf.Server, cd *conf.Data, ca *conf.Auth, cr *conf.Report, logger log.Logger) (*kratos.App, func(), error) {
	d, cleanup, err := data.NewData(cd, logger)
	if err != nil {
		return nil, nil, err
	}

	engine, questions, err := server.NewReportEngine(cr, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	productRepo := data.NewProductRepo(d, logger)
	userRepo := data.NewUserRepo(d, logger)

	ucUser := biz.NewUserUseCase(userRepo, ca, logger)
	ucProduct := biz.NewProductUseCase(productRepo, logger)
	ucReport := biz.NewReportUseCase(productRepo, engine, logger)

	svc := service.NewPortalService(ucUser, ucProduct, ucReport, questions, logger)
	hs := server.NewHTTPServer(cs, svc, logger)

	return newApp(logger, hs), cleanup, nil
}
