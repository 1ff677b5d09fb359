package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taxiline/internal/apperrors"
	"taxiline/internal/utils"
	"taxiline/pkg/logger"

	"taxiline/internal/query"
)

// parseListingParams reads the table-widget query shape:
// search[field]=value, sort[predicate]=field, sort[reverse]=true,
// pagination[start]=n, pagination[number]=n. All parts are optional.
func parseListingParams(c *gin.Context) *query.Params {
	params := &query.Params{
		Search: make(map[string]string),
	}

	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		if strings.HasPrefix(key, "search[") && strings.HasSuffix(key, "]") {
			field := key[len("search[") : len(key)-1]
			params.Search[field] = value
			continue
		}

		switch key {
		case "sort[predicate]":
			params.Sort.Predicate = value
		case "sort[reverse]":
			params.Sort.Reverse = value
		case "pagination[start]":
			if n, err := strconv.Atoi(value); err == nil {
				params.Pagination.Start = n
			}
		case "pagination[number]":
			if n, err := strconv.Atoi(value); err == nil {
				params.Pagination.Number = n
			}
		}
	}

	return params
}

// respondError translates the error taxonomy to transport responses. Expected
// outcomes map to their status; anything else is logged and surfaced as a
// generic fault without leaking storage detail.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.Status(404)
	case apperrors.IsValidation(err):
		utils.ValidationErrorResponse(c, apperrors.ValidationFields(err))
	case apperrors.IsAuthorization(err):
		utils.ForbiddenResponse(c)
	default:
		log.WithError(err).Error("Request failed")
		utils.InternalServerErrorResponse(c)
	}
}
