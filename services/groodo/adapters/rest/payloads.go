package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode reads a JSON body into dst and validates it. Failures wrap
// core.ErrInvalidArgs.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json", core.ErrInvalidArgs)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", core.ErrInvalidArgs, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", core.ErrInvalidArgs, strings.Join(msgs, "; "))
	}
	return nil
}

type RegisterIn struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

type LoginIn struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateTaskIn struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProjectID   *int64  `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	ParentID    *int64  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	AfterID     *int64  `json:"after_id,omitempty" validate:"omitempty,gt=0"`
	First       bool    `json:"first"`
}

type PatchTaskIn struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Completed   *bool   `json:"completed,omitempty"`
}

// UpdateOrderIn moves a task. A nil date makes it undated, a nil after_id
// puts it first, a nil project_id keeps the current project.
type UpdateOrderIn struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ProjectID *int64  `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	AfterID   *int64  `json:"after_id" validate:"omitempty,gt=0"`
}

// UpdateParentIn sets the parent; null detaches.
type UpdateParentIn struct {
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

type CreateProjectIn struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Color       string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type PatchProjectIn struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Color       *string `json:"color,omitempty"`
}

type CreateDocumentIn struct {
	Title    string `json:"title" validate:"required,max=255"`
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

type PatchDocumentIn struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Content *string `json:"content,omitempty"`
}
