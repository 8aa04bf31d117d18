package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"stockroom/internal/apierror"
	"stockroom/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// Report fields by their wire name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and records the error if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	return bindJSON(c, req, "Validation failed")
}

func bindJSON(c *gin.Context, req interface{}, failMsg string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apierror.Validation(failMsg, bindingFields(err)))
		return false
	}
	return validateStruct(c, req, failMsg)
}

// bindQuery binds query-string filters and validates them.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, apierror.Validation("Validation failed", map[string]string{"query": err.Error()}))
		return false
	}
	return validateStruct(c, req, "Validation failed")
}

func validateStruct(c *gin.Context, req interface{}, failMsg string) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(c, apierror.Internal("Validation failed", err))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	respondError(c, apierror.Validation(failMsg, fields))
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Invalid value."
	}
}

// bindingFields turns a JSON decoding failure into a field map.
func bindingFields(err error) map[string]string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return map[string]string{typeErr.Field: fmt.Sprintf("A valid %s is required.", jsonKind(typeErr.Type))}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return map[string]string{"body": "Malformed JSON."}
	case errors.Is(err, io.EOF):
		return map[string]string{"body": "Request body is required."}
	default:
		return map[string]string{"body": "Invalid request body: " + err.Error()}
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	default:
		return "string"
	}
}

// respondError hands err to middleware.ErrorHandler, which renders the envelope.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
}

// ── Auth cookie ──────────────────────────────────────────────────────────────

// CookieSettings mirrors the AUTH_COOKIE_* configuration.
type CookieSettings struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	MaxAge   int
}

func CookieSettingsFrom(cfg *config.Config) CookieSettings {
	return CookieSettings{
		Name:     cfg.AuthCookieName,
		Domain:   cfg.AuthCookieDomain,
		Path:     cfg.AuthCookiePath,
		Secure:   cfg.AuthCookieSecure,
		HTTPOnly: cfg.AuthCookieHTTPOnly,
		SameSite: parseSameSite(cfg.AuthCookieSameSite),
		MaxAge:   cfg.AuthCookieMaxAge,
	}
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (s CookieSettings) set(c *gin.Context, value string) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, value, s.MaxAge, s.Path, s.Domain, s.Secure, s.HTTPOnly)
}

func (s CookieSettings) clear(c *gin.Context) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, "", -1, s.Path, s.Domain, s.Secure, s.HTTPOnly)
}
