package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/middleware"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return utils.IsDate(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate decodes the JSON body into dst and validates it. On
// failure it writes the 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return false
	}
	return validateRequest(w, dst)
}

func validateRequest(w http.ResponseWriter, req any) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return false
	}
	utils.RespondErrorWithCode(
		w, http.StatusBadRequest, utils.ErrCodeValidation, "Request validation failed", validationDetails(verrs), err,
	)
	return false
}

func validationDetails(verrs validator.ValidationErrors) []dtos.ValidationErrorDetail {
	details := make([]dtos.ValidationErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dtos.ValidationErrorDetail{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return details
}

// fieldPath turns "InboundTransferRequest.TransferBase.products[0].ProductBase.name"
// into "products[0].name". Go-named segments are the root type and embedded
// structs; every wire field carries a lowercase json name.
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	kept := segments[:0]
	for i, s := range segments {
		if i == 0 || s == "" || unicode.IsUpper(rune(s[0])) {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, ".")
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "uuid":
		return "must be a UUID"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

// identityOrUnauthorized fetches the caller set by AuthMiddleware.
func identityOrUnauthorized(w http.ResponseWriter, r *http.Request) (*services.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.RespondUnauthorized(w, utils.ErrCodeUnauthorized, "Not authenticated", nil)
		return nil, false
	}
	return identity, true
}
