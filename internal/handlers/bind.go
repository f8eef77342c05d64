package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance reports field errors under their JSON names.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// FieldError is one rejected request field
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidationError is answered as 400 with the offending fields
type ValidationError struct {
	Detail string       `json:"detail"`
	Fields []FieldError `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Detail }

// decode reads a JSON body into dst and runs the struct's validate tags.
func decode(req *http.Request, dst interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Detail: "Request body is empty"}
		}
		return &ValidationError{Detail: fmt.Sprintf("Invalid request payload: %v", err)}
	}
	err := validatorInstance().Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Detail: err.Error()}
	}
	out := &ValidationError{Detail: "Validation failed"}
	for _, fe := range verrs {
		// Namespace keeps the position inside nested lists, e.g. items[0].vendor
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
