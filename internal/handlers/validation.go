package handlers

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"katalog/internal/apperr"
	"katalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// trimmer is implemented by request bodies whose text fields are trimmed
// before validation.
type trimmer interface {
	trim()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

func bindBody(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if t, ok := dst.(trimmer); ok {
		t.trim()
	}
	return validate(v, dst)
}

func bindQuery(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return apperr.Validation("Invalid query parameters")
	}
	return validate(v, dst)
}

func validate(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Validation(err.Error())
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldPath(e), e.Tag()))
	}
	return apperr.Validation(strings.Join(messages, ", "))
}

// fieldPath drops the top-level struct name from the namespace so nested
// fields read as "variants[0].price".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

// listParams are the paging, sorting and search parameters every list
// endpoint accepts.
type listParams struct {
	Page   *int   `query:"page" validate:"omitnil,min=1"`
	Limit  *int   `query:"limit" validate:"omitnil,min=1,max=100"`
	Sort   string `query:"sort"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
	Search string `query:"search"`
}

// parseList binds the list parameters and checks sort against the sortable
// fields of the listed entity.
func parseList(c *fiber.Ctx, v *validator.Validate, sortable map[string]string) (repositories.ListQuery, error) {
	var p listParams
	if err := bindQuery(c, v, &p); err != nil {
		return repositories.ListQuery{}, err
	}
	if p.Sort != "" {
		if _, ok := sortable[p.Sort]; !ok {
			fields := slices.Sorted(maps.Keys(sortable))
			return repositories.ListQuery{}, apperr.Validation(
				fmt.Sprintf("Field 'sort' must be one of [%s]", strings.Join(fields, " ")))
		}
	}

	q := repositories.ListQuery{
		Sort:   p.Sort,
		Order:  p.Order,
		Search: strings.TrimSpace(p.Search),
	}
	if p.Page != nil {
		q.Page = *p.Page
	}
	if p.Limit != nil {
		q.Limit = *p.Limit
	}
	q.Normalize()
	return q, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
