package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck/internal/common"
)

// notFoundError carries the entity name so the 404 body can say what was
// missing. It matches common.ErrorNotFound for errors.Is.
type notFoundError struct {
	entity string
}

func (e notFoundError) Error() string {
	return e.entity + " not found"
}

func (e notFoundError) Is(target error) bool {
	return target == common.ErrorNotFound
}

// notFound converts a service NotFound into the entity-specific variant and
// passes everything else through.
func notFound(entity string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return notFoundError{entity: entity}
	}
	return err
}

// translateErrors is the single boundary between the error taxonomy and
// HTTP. Handlers attach errors via c.Error and return; nothing below the
// transport layer writes a status code.
func (s *Server) translateErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		err := last.Err

		var verr *common.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": verr.Details})
		case errors.Is(err, common.ErrorConflict):
			// email is the only unique field in the system
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already exists"})
		case errors.Is(err, common.ErrorUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		case errors.Is(err, common.ErrorNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			s.logger.Error(c.Request.Context(), "unhandled error",
				"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}
}

// bindJSON decodes and validates a request body, converting validator
// failures into the field-level taxonomy the client expects.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]common.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, common.FieldError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		return common.NewValidationError(details...)
	}

	return common.NewFieldError("body", "invalid request body")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "hexcolor", "len":
		return "must be a hex color code"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
