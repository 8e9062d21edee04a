package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/docchat/pkg/rule"
)

// uploadSettings 模拟带 mapstructure 标签的配置段.
type uploadSettings struct {
	Dir       string `mapstructure:"dir"         rule:"required"`
	MaxSizeMB int64  `mapstructure:"max_size_mb" rule:"min=1"`
}

// queryBody 模拟带 json 标签的请求体.
type queryBody struct {
	DocumentID uint     `json:"documentId" rule:"required"`
	QueryText  string   `json:"queryText"  rule:"notblank"`
	Score      *float64 `json:"relevanceScore"`
	Internal   string   `json:"-"          rule:"omitempty,max=2"`
}

func TestEngineIsShared(t *testing.T) {
	if rule.Engine() == nil || rule.Engine() != rule.Engine() {
		t.Fatal("Engine should return one shared instance")
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name string
		body queryBody
		ok   bool
	}{
		{name: "valid", body: queryBody{DocumentID: 1, QueryText: "what is this?"}, ok: true},
		{name: "whitespace text", body: queryBody{DocumentID: 1, QueryText: " \t\n"}},
		{name: "empty text", body: queryBody{DocumentID: 1}},
		{name: "zero document", body: queryBody{QueryText: "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.ValidateStruct(tt.body)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := rule.ValidateVar(3, "notblank"); err != nil {
		t.Errorf("non-zero int should pass notblank: %v", err)
	}
}

func TestErrorsUseTagNames(t *testing.T) {
	err := rule.ValidateStruct(uploadSettings{Dir: "", MaxSizeMB: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}

	errs := rule.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(errs), errs)
	}

	if msg, ok := errs["uploadSettings.dir"]; !ok || msg != "failed on required" {
		t.Errorf("dir: %q (present=%v)", msg, ok)
	}

	if msg := errs["uploadSettings.max_size_mb"]; msg != "failed on min=1" {
		t.Errorf("max_size_mb: %q", msg)
	}

	jsonErrs := rule.Errors(rule.ValidateStruct(queryBody{DocumentID: 1}))
	if _, ok := jsonErrs["queryBody.queryText"]; !ok {
		t.Errorf("expected json field name, got %v", jsonErrs)
	}

	if rule.Errors(nil) != nil {
		t.Error("expected nil map for nil error")
	}
}

func TestValidateVarSHA256(t *testing.T) {
	digest := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if err := rule.ValidateVar(digest, "sha256"); err != nil {
		t.Errorf("valid digest rejected: %v", err)
	}

	if err := rule.ValidateVar("abc", "sha256"); err == nil {
		t.Error("short digest accepted")
	}
}

func TestRegisterValidationAndAlias(t *testing.T) {
	err := rule.RegisterValidation("pdf_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) > 4 && name[len(name)-4:] == ".pdf"
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := rule.ValidateVar("report.pdf", "pdf_name"); err != nil {
		t.Errorf("report.pdf rejected: %v", err)
	}

	if err := rule.ValidateVar("report.txt", "pdf_name"); err == nil {
		t.Error("report.txt accepted")
	}

	rule.RegisterAlias("question", "notblank,max=8")

	if err := rule.ValidateVar("why?", "question"); err != nil {
		t.Errorf("alias rejected short question: %v", err)
	}

	if err := rule.ValidateVar("a very long question", "question"); err == nil {
		t.Error("alias accepted long question")
	}
}
