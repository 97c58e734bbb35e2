package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"heritage_tree/internal/model"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validator 数据验证服务
type Validator struct {
	errors []string
}

// NewValidator 创建验证器实例
func NewValidator() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// Validate 执行验证并返回错误
func (v *Validator) Validate() error {
	if len(v.errors) > 0 {
		return NewError(ErrValidation, "validation errors: "+strings.Join(v.errors, "; "), nil)
	}
	return nil
}

// Struct 结构体标签验证
func (v *Validator) Struct(value interface{}) *Validator {
	err := structValidator.Struct(value)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			v.errors = append(v.errors, fmt.Sprintf("%s is %s", lowerFirst(fe.Field()), fe.Tag()))
		}
	} else if err != nil {
		v.errors = append(v.errors, err.Error())
	}
	return v
}

// Date 日期格式验证（至少能解析出年份）
func (v *Validator) Date(value string, fieldName string) *Validator {
	if value == "" {
		return v
	}
	if _, ok := model.Year(value); !ok {
		v.errors = append(v.errors, fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", fieldName))
	}
	return v
}

// Reference 引用字段必须指向已存在的成员
func (v *Validator) Reference(id string, fieldName string, exists func(string) bool) *Validator {
	if id != "" && !exists(id) {
		v.errors = append(v.errors, fmt.Sprintf("%s %q does not match any person", fieldName, id))
	}
	return v
}

// ValidatePerson 新增/编辑成员时的校验
func ValidatePerson(p model.Person, exists func(string) bool) error {
	return NewValidator().
		Struct(p).
		Date(p.BirthDate, "birthDate").
		Date(p.DeathDate, "deathDate").
		Reference(p.FatherID, "fatherId", exists).
		Reference(p.MotherID, "motherId", exists).
		Reference(p.SpouseID, "spouseId", exists).
		Validate()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
