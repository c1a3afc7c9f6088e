package service

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/AnnaNajafiH/SabaStudio/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	personNameRe = regexp.MustCompile(`^[\p{L}\s\-'.]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

	stripPolicy = bluemonday.StrictPolicy()

	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance は独自ルールを登録した共有 validator を返す。
// エラーのフィールド名は json タグを使う
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		rules := map[string]validator.Func{
			"person_name":          func(fl validator.FieldLevel) bool { return personNameRe.MatchString(fl.Field().String()) },
			"phone":                func(fl validator.FieldLevel) bool { return phoneRe.MatchString(fl.Field().String()) },
			"contact_project_type": func(fl validator.FieldLevel) bool { return model.IsValidContactProjectType(fl.Field().String()) },
			"contact_budget":       func(fl validator.FieldLevel) bool { return model.IsValidContactBudget(fl.Field().String()) },
			"contact_timeline":     func(fl validator.FieldLevel) bool { return model.IsValidContactTimeline(fl.Field().String()) },
			"project_category":     func(fl validator.FieldLevel) bool { return model.IsValidCategory(fl.Field().String()) },
			"project_status":       func(fl validator.FieldLevel) bool { return model.IsValidProjectStatus(fl.Field().String()) },
			"image_url":            func(fl validator.FieldLevel) bool { return isImageURL(fl.Field().String()) },
			"year_range": func(fl validator.FieldLevel) bool {
				y := fl.Field().Int()
				return y >= model.MinProjectYear && y <= int64(maxProjectYear())
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
		validate = v
	})
	return validate
}

func maxProjectYear() int { return time.Now().Year() + 5 }

func isImageURL(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// checkStruct は v を検証し、失敗を *ValidationError に変換する
func checkStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must not be negative"
	case "person_name":
		return "may only contain letters, spaces, hyphens, apostrophes and periods"
	case "phone":
		return "must be a valid phone number"
	case "contact_project_type":
		return "must be one of: " + strings.Join(model.ContactProjectTypes, ", ")
	case "contact_budget":
		return "must be one of: " + strings.Join(model.ContactBudgets, ", ")
	case "contact_timeline":
		return "must be one of: " + strings.Join(model.ContactTimelines, ", ")
	case "project_category":
		return "must be one of: " + strings.Join(model.ProjectCategories, ", ")
	case "project_status":
		return "must be one of: " + strings.Join(model.ProjectStatuses, ", ")
	case "image_url":
		return "must be an http(s) URL or a site-relative path"
	case "year_range":
		return fmt.Sprintf("must be between %d and %d", model.MinProjectYear, maxProjectYear())
	default:
		return "is invalid"
	}
}

// stripTags は s からタグを除去して前後の空白を削る。文字参照はデコードし、
// 変化がなくなるまで繰り返すので、エンコードされたタグも
// タグとして残らない
func stripTags(s string) string {
	for {
		next := html.UnescapeString(stripPolicy.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}
