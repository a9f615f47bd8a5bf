package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/mux"

	"github.com/clearlabel/transparency_portal/internal/biz"
	"github.com/clearlabel/transparency_portal/pkg/questiongen"
)

// PortalService 对外 HTTP 服务
type PortalService struct {
	ucUser    *biz.UserUseCase
	ucProduct *biz.ProductUseCase
	ucReport  *biz.ReportUseCase
	questions *questiongen.Generator
	log       *log.Helper
}

// NewPortalService 创建门户服务，questions 可以为 nil
func NewPortalService(
	ucUser *biz.UserUseCase,
	ucProduct *biz.ProductUseCase,
	ucReport *biz.ReportUseCase,
	questions *questiongen.Generator,
	logger log.Logger,
) *PortalService {
	return &PortalService{
		ucUser:    ucUser,
		ucProduct: ucProduct,
		ucReport:  ucReport,
		questions: questions,
		log:       log.NewHelper(logger),
	}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userReply struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type authReply struct {
	Token string    `json:"token"`
	User  userReply `json:"user"`
}

type answerReq struct {
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	Value        string `json:"value"`
}

type productReq struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	Answers     []answerReq `json:"answers"`
}

type answerReply struct {
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	Value        string `json:"value"`
	SortOrder    int    `json:"sortOrder"`
}

type productReply struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Company     string        `json:"company"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"createdAt"`
	Answers     []answerReply `json:"answers,omitempty"`
}

// requirePost 只放行 POST 请求
func (s *PortalService) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, errors.New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"))
		return false
	}
	return true
}

// Register 注册新用户并签发 token
func (s *PortalService) Register(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.BadRequest("INVALID_BODY", "invalid request body"))
		return
	}

	u, token, err := s.ucUser.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authReply{Token: token, User: userReply{ID: u.ID, Email: u.Email}})
}

// Login 登录
func (s *PortalService) Login(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.BadRequest("INVALID_BODY", "invalid request body"))
		return
	}

	u, token, err := s.ucUser.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authReply{Token: token, User: userReply{ID: u.ID, Email: u.Email}})
}

// CreateProduct 创建产品及其答案，需要登录
func (s *PortalService) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}
	userID, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.BadRequest("INVALID_BODY", "invalid request body"))
		return
	}

	p := &biz.Product{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Category:    req.Category,
		Company:     strings.TrimSpace(req.Company),
		Description: req.Description,
	}
	for _, a := range req.Answers {
		p.Answers = append(p.Answers, &biz.Answer{
			QuestionText: a.QuestionText,
			QuestionType: a.QuestionType,
			Value:        a.Value,
		})
	}

	created, err := s.ucProduct.Create(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toProductReply(created, true))
}

// ListProducts 分页列出产品，支持 category 与 company 过滤
func (s *PortalService) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("limit"))

	filter := biz.ListFilter{
		Category: q.Get("category"),
		Company:  q.Get("company"),
		Page:     page,
		PageSize: pageSize,
	}

	products, total, err := s.ucProduct.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	list := make([]productReply, 0, len(products))
	for _, p := range products {
		list = append(list, toProductReply(p, false))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": list,
		"total":    total,
	})
}

// GetProduct 获取产品详情与全部答案
func (s *PortalService) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.ucProduct.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductReply(p, true))
}

// ListQuestions 获取品类问题库
func (s *PortalService) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.ucProduct.Questions(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	type questionReply struct {
		ID       int      `json:"id"`
		Category string   `json:"category"`
		Text     string   `json:"question"`
		Type     string   `json:"type"`
		Options  []string `json:"options,omitempty"`
	}
	list := make([]questionReply, 0, len(questions))
	for _, q := range questions {
		list = append(list, questionReply{
			ID:       q.ID,
			Category: q.Category,
			Text:     q.Text,
			Type:     q.Type,
			Options:  q.Options,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"questions": list})
}

// GenerateReport 生成产品透明度报告 PDF
func (s *PortalService) GenerateReport(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}
	userID, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.ucReport.Generate(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.PDF)
}

// GenerateQuestions 基于产品信息动态生成追问
func (s *PortalService) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}
	if s.questions == nil {
		s.writeError(w, errors.ServiceUnavailable("SERVICE_UNAVAILABLE", "question generation service not configured"))
		return
	}

	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.BadRequest("INVALID_BODY", "invalid request body"))
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" {
		s.writeError(w, errors.BadRequest("VALIDATION_ERROR", "name and category are required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	questions, err := s.questions.Generate(ctx, req.Name, req.Category, req.Description)
	if err != nil {
		s.log.Errorf("生成追问失败 [%s]: %v", req.Name, err)
		s.writeError(w, errors.InternalServer("QUESTION_GENERATION_FAILED", "failed to generate questions"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// authenticate 解析 Authorization 头里的 Bearer token。
// 未携带凭证按匿名处理，返回用户 ID 0；携带了非法或过期的 token 仍然拒绝。
func (s *PortalService) authenticate(r *http.Request) (int, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, nil
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return 0, errors.Unauthorized("AUTH_FAILED", "malformed authorization header")
	}
	userID, _, err := s.ucUser.VerifyToken(strings.TrimPrefix(header, "Bearer "))
	return userID, err
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, errors.BadRequest("INVALID_ID", "invalid product id")
	}
	return id, nil
}

func toProductReply(p *biz.Product, withAnswers bool) productReply {
	reply := productReply{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Company:     p.Company,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if withAnswers {
		for _, a := range p.Answers {
			reply.Answers = append(reply.Answers, answerReply{
				QuestionText: a.QuestionText,
				QuestionType: a.QuestionType,
				Value:        a.Value,
				SortOrder:    a.SortOrder,
			})
		}
	}
	return reply
}

func (s *PortalService) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Errorf("写响应失败: %v", err)
	}
}

func (s *PortalService) writeError(w http.ResponseWriter, err error) {
	e := errors.FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(int(e.Code))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"reason":  e.Reason,
			"message": e.Message,
		},
	})
}
