package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/internal/query/parser"
	"github.com/minirel/minirel/pkg/types"
)

// evaluateWhere evaluates a SELECT WHERE clause against a value map.
// Conjunction and disjunction short-circuit over their child conditions.
func evaluateWhere(values map[string]interface{}, where *parser.WhereClause) (bool, error) {
	switch where.Connective {
	case parser.ConnectiveAnd:
		for i := range where.Conditions {
			ok, err := evaluateCondition(values, &where.Conditions[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case parser.ConnectiveOr:
		for i := range where.Conditions {
			ok, err := evaluateCondition(values, &where.Conditions[i])
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return evaluateCondition(values, &where.Conditions[0])
	}
}

// evaluateCondition evaluates one <column> <op> <literal> leaf. A qualified
// column absent from the map retries with the unqualified name.
func evaluateCondition(values map[string]interface{}, cond *parser.Condition) (bool, error) {
	col := cond.Column
	if _, ok := values[col]; !ok {
		if _, bare, found := strings.Cut(col, "."); found {
			if _, ok := values[bare]; ok {
				col = bare
			}
		}
	}
	actual := values[col]

	switch cond.Operator {
	case "=":
		return types.EqualValues(actual, cond.Value), nil
	case "!=":
		return !types.EqualValues(actual, cond.Value), nil
	case ">", "<", ">=", "<=":
		// Ordering against null is always false.
		if actual == nil || cond.Value == nil {
			return false, nil
		}
		cmp, err := types.CompareValues(actual, cond.Value)
		if err != nil {
			return false, errors.NewQueryError(errors.CodeUnsupportedOperator, err.Error())
		}
		switch cond.Operator {
		case ">":
			return cmp > 0, nil
		case "<":
			return cmp < 0, nil
		case ">=":
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	case "LIKE":
		return evaluateLike(actual, cond.Value)
	default:
		return false, errors.NewQueryError(errors.CodeUnsupportedOperator,
			fmt.Sprintf("unsupported operator: %s", cond.Operator))
	}
}

// evaluateLike matches the string form of the actual value against the
// pattern with % translated to .*, case-insensitively, anchored at the
// start. There is no _ wildcard and no escape character.
func evaluateLike(actual, pattern interface{}) (bool, error) {
	if actual == nil || pattern == nil {
		return false, nil
	}

	translated := "(?i)^" + strings.ReplaceAll(types.FormatValue(pattern), "%", ".*")
	re, err := regexp.Compile(translated)
	if err != nil {
		return false, errors.NewQueryError(errors.CodeUnsupportedOperator,
			fmt.Sprintf("invalid LIKE pattern: %v", pattern))
	}
	return re.MatchString(types.FormatValue(actual)), nil
}
