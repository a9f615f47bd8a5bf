package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestEngineGenerateNoAnswers(t *testing.T) {
	engine := NewEngine(nil, nil)
	p := testProduct()

	_, err := engine.Generate(context.Background(), p, nil)
	if !errors.Is(err, ErrNoProductData) {
		t.Fatalf("err = %v, want ErrNoProductData", err)
	}
}

func TestEngineGenerate(t *testing.T) {
	engine := NewEngine(nil, nil)
	p := testProduct()
	answers := []Answer{
		{QuestionText: "List all allergens", QuestionType: "textarea", Value: "peanuts"},
		{QuestionText: "Safety handling instructions", QuestionType: "text", Value: "keep dry"},
		{QuestionText: "Any health hazards?", QuestionType: "text", Value: "none"},
		{QuestionText: "Which certifications does it hold?", QuestionType: "select", Value: "ISO 22000"},
		{QuestionText: "Ingredient list", QuestionType: "textarea", Value: "oats, honey"},
	}

	result, err := engine.Generate(context.Background(), p, answers)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantID := fmt.Sprintf("TR-42-%d", time.Now().Year())
	if result.ReportID != wantID {
		t.Errorf("ReportID = %q, want %q", result.ReportID, wantID)
	}
	if result.Filename != "transparency-report-organic_granola.pdf" {
		t.Errorf("Filename = %q", result.Filename)
	}
	if !bytes.HasPrefix(result.PDF, []byte("%PDF")) {
		t.Error("PDF 输出缺少文件头")
	}
}

func TestEngineGenerateWithRemoteContent(t *testing.T) {
	fake := &fakeChatModel{response: validContentJSON}
	engine := NewEngine(fake, nil)

	result, err := engine.Generate(context.Background(), testProduct(), makeAnswers(15, "safety question"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("model calls = %d, want 1", fake.calls)
	}
	if len(result.PDF) == 0 {
		t.Error("PDF 为空")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Organic Granola", "transparency-report-organic_granola.pdf"},
		{"Café Brand 2000!", "transparency-report-caf__brand_2000_.pdf"},
		{"simple", "transparency-report-simple.pdf"},
	}

	for _, tt := range tests {
		if got := Filename(tt.name); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
