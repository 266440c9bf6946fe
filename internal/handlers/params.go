package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 1000
)

var validate = validator.New()

type breakdownParams struct {
	Dimension string `validate:"required,oneof=region category channel salesperson product month"`
	Order     string `validate:"oneof=key sales"`
}

type pageParams struct {
	Offset int `validate:"gte=0"`
	Limit  int `validate:"gte=1,lte=1000"`
}

// parseFilters reads the four filter dimensions from repeated query
// parameters. An absent parameter leaves the dimension unspecified; a
// parameter present with only blank values selects nothing.
func parseFilters(r *http.Request) (models.FilterRequest, error) {
	var req models.FilterRequest
	q := r.URL.Query()

	for _, d := range models.FilterDimensions {
		raw, ok := q[string(d)]
		if !ok {
			continue
		}
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		req.Set(d, values)
	}

	if err := validate.Struct(req); err != nil {
		return req, errors.ValidationWrap(err, "Invalid filter parameters")
	}
	return req, nil
}

func parsePage(r *http.Request) (pageParams, error) {
	p := pageParams{Limit: defaultPageLimit}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.BadRequestWrap(err, "offset must be an integer")
		}
		p.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.BadRequestWrap(err, "limit must be an integer")
		}
		p.Limit = n
	}

	if err := validate.Struct(p); err != nil {
		return p, errors.ValidationWrap(err, "offset must be >= 0 and limit between 1 and "+strconv.Itoa(maxPageLimit))
	}
	return p, nil
}
