package delivery

import (
	"net/http"
	"sync"

	"grouporder/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var bindingNamesOnce sync.Once

// useJSONFieldNames makes gin's binding validator name fields by their JSON
// key, matching the errors the domain validation reports.
func useJSONFieldNames() {
	bindingNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(domain.JSONFieldName)
		}
	})
}

// bindJSON decodes the request body into target. Failed `binding` rules are
// answered like any other validation error, with a per-field map.
func bindJSON(c *gin.Context, log *logrus.Logger, target interface{}, what string) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}
	if verr := domain.ValidationFromRules(err); domain.IsValidation(verr) {
		FailWithError(c, log, "Invalid request body for "+what, verr)
		return false
	}
	log.Errorf("Failed to bind JSON for %s: %v", what, err)
	ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
	return false
}
