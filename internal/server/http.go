package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/clearlabel/transparency_portal/internal/conf"
	"github.com/clearlabel/transparency_portal/internal/service"
)

func NewHTTPServer(c *conf.Server, s *service.PortalService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout != "" {
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	srv.HandleFunc("/api/auth/register", s.Register)
	srv.HandleFunc("/api/auth/login", s.Login)
	srv.HandleFunc("/api/products", s.CreateProduct)
	srv.HandleFunc("/api/products/all", s.ListProducts)
	srv.HandleFunc("/api/products/questions", s.ListQuestions)
	srv.HandleFunc("/api/products/{id}", s.GetProduct)
	srv.HandleFunc("/api/reports/{id}/pdf", s.GenerateReport)
	srv.HandleFunc("/api/questions/generate", s.GenerateQuestions)

	return srv
}
