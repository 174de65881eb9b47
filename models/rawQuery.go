package models

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/smtworks/qcreport_backend/config"
)

// RawQueryRequest is an ad-hoc read-only query from the analysis
// screens. Params bind positionally to ? placeholders.
type RawQueryRequest struct {
	Query  string        `json:"query" binding:"required"`
	Params []interface{} `json:"params"`
}

var sqlIdentifierPattern = regexp.MustCompile(`(?i)(?:FROM|JOIN)\s+` + "`?" + `([a-zA-Z_][a-zA-Z0-9_]*)` + "`?")

// ValidateRawQuery enforces the ad-hoc query contract: exactly one
// statement, SELECT only, and every FROM/JOIN target inside the
// endpoint's table allow-list.
func ValidateRawQuery(query string, allowedTables map[string]bool) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if trimmed == "" {
		return errors.New("query is required")
	}
	if strings.Contains(trimmed, ";") {
		return errors.New("only a single statement is allowed")
	}
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return errors.New("only SELECT statements are allowed")
	}

	matches := sqlIdentifierPattern.FindAllStringSubmatch(trimmed, -1)
	if len(matches) == 0 {
		return errors.New("query must read from a table")
	}
	for _, m := range matches {
		table := strings.ToLower(m[1])
		if !allowedTables[table] {
			return fmt.Errorf("table %q is not allowed here", m[1])
		}
	}
	return nil
}

// RunRawQuery validates and executes an ad-hoc query, returning rows as
// generic maps for the analysis screens to render.
func RunRawQuery(ctx context.Context, req RawQueryRequest, allowedTables map[string]bool) ([]map[string]interface{}, error) {
	logger := config.GetLogger()

	if err := ValidateRawQuery(req.Query, allowedTables); err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(req.Query, req.Params...).Scan(&rows).Error; err != nil {
		config.LogError(logger, "models", "RunRawQuery", "running query", map[string]interface{}{"query": req.Query}, err)
		return nil, err
	}
	return rows, nil
}
