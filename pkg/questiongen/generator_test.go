package questiongen

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	resp := ""
	if idx < len(f.responses) {
		resp = f.responses[idx]
	}
	return &schema.Message{Role: schema.Assistant, Content: resp}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (f *fakeChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

const questionsJSON = `[
  {"question": "What allergens does the product contain?", "type": "textarea"},
  {"question": "Is it certified organic?", "type": "select", "options": ["Yes", "No"]},
  {"question": "Shelf life in months", "type": "slider", "options": ["1", "2"]},
  {"question": "   ", "type": "text"}
]`

func TestGenerate(t *testing.T) {
	fake := &fakeChatModel{responses: []string{"```json\n" + questionsJSON + "\n```"}}
	gen := NewGenerator(fake, nil)

	questions, err := gen.Generate(context.Background(), "Granola", "food", "organic oats")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// 空白问题被丢弃
	if len(questions) != 3 {
		t.Fatalf("questions = %d, want 3: %+v", len(questions), questions)
	}
	// 白名单外的类型降级为 text 并清空选项
	if questions[2].Type != "text" {
		t.Errorf("questions[2].Type = %q, want text", questions[2].Type)
	}
	if questions[2].Options != nil {
		t.Errorf("非 select 问题不应保留选项: %v", questions[2].Options)
	}
	if questions[1].Type != "select" || len(questions[1].Options) != 2 {
		t.Errorf("select 问题选项丢失: %+v", questions[1])
	}
}

func TestGenerateRetryOn429(t *testing.T) {
	fake := &fakeChatModel{
		errs:      []error{errors.New("429 Too Many Requests"), nil},
		responses: []string{"", questionsJSON},
	}
	gen := NewGenerator(fake, nil)
	gen.retryDelay = 0

	questions, err := gen.Generate(context.Background(), "Granola", "food", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("calls = %d, want 2", fake.calls)
	}
	if len(questions) == 0 {
		t.Error("重试成功后应返回问题列表")
	}
}

func TestGenerateNonRetriableError(t *testing.T) {
	fake := &fakeChatModel{errs: []error{errors.New("invalid api key")}}
	gen := NewGenerator(fake, nil)

	if _, err := gen.Generate(context.Background(), "Granola", "food", ""); err == nil {
		t.Fatal("期望返回错误")
	}
	if fake.calls != 1 {
		t.Errorf("非限流错误不应重试, calls = %d", fake.calls)
	}
}

func TestGenerateNilModel(t *testing.T) {
	gen := NewGenerator(nil, nil)
	if _, err := gen.Generate(context.Background(), "Granola", "food", ""); err == nil {
		t.Fatal("未配置模型时应返回错误")
	}
}
