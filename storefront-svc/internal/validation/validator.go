// Package validation checks inbound payloads against their declared bounds
// and scrubs free text before it is stored.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"street-bites/pkg/domain"
)

// Error reports the first offending field of a rejected payload.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func Invalid(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and converts the first failure into an *Error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Invalid("", err.Error())
	}
	fe := fieldErrs[0]
	return Invalid(fieldPath(fe.Namespace()), describe(fe))
}

// Order validates a checkout payload and returns it with free text scrubbed.
func Order(req domain.PlaceOrderRequest) (domain.PlaceOrderRequest, error) {
	if err := Struct(req); err != nil {
		return req, err
	}

	req.CustomerName = Sanitize(req.CustomerName)
	if req.CustomerName == "" {
		return req, Invalid("customerName", "is required")
	}
	req.Notes = Sanitize(req.Notes)
	req.DeviceID = strings.TrimSpace(req.DeviceID)

	items := make([]domain.PlaceOrderLine, len(req.Items))
	for i, line := range req.Items {
		line.Name = Sanitize(line.Name)
		if line.Name == "" {
			return req, Invalid(fmt.Sprintf("items[%d].name", i), "is required")
		}
		items[i] = line
	}
	req.Items = items
	return req, nil
}

func MenuItem(item domain.MenuItem) (domain.MenuItem, error) {
	if err := Struct(item); err != nil {
		return item, err
	}
	item.Name = Sanitize(item.Name)
	item.Description = Sanitize(item.Description)
	item.Category = Sanitize(item.Category)
	if item.Name == "" {
		return item, Invalid("name", "is required")
	}
	if item.Category == "" {
		return item, Invalid("category", "is required")
	}
	return item, nil
}

func Offer(offer domain.SpecialOffer) (domain.SpecialOffer, error) {
	if err := Struct(offer); err != nil {
		return offer, err
	}
	offer.Title = Sanitize(offer.Title)
	offer.Description = Sanitize(offer.Description)
	if offer.Title == "" {
		return offer, Invalid("title", "is required")
	}
	return offer, nil
}

func Location(loc domain.LocationData) (domain.LocationData, error) {
	if err := Struct(loc); err != nil {
		return loc, err
	}
	loc.Name = Sanitize(loc.Name)
	loc.Address = Sanitize(loc.Address)
	loc.NextOnlineTime = Sanitize(loc.NextOnlineTime)
	if loc.Name == "" {
		return loc, Invalid("name", "is required")
	}
	return loc, nil
}

// fieldPath drops the root struct name: "PlaceOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max", "lte":
		switch kind {
		case reflect.String:
			return "must be at most " + fe.Param() + " characters"
		case reflect.Slice, reflect.Array, reflect.Map:
			return "must contain at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param()
	case "min", "gte":
		switch kind {
		case reflect.String:
			return "must be at least " + fe.Param() + " characters"
		case reflect.Slice, reflect.Array, reflect.Map:
			return "must contain at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}
