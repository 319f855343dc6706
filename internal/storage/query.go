package storage

import (
	"strings"
	"unicode"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// selectQuery accumulates the WHERE clause of a history query. Values are
// always bound, never spliced into the SQL text.
type selectQuery struct {
	where []string
	args  []interface{}
}

func (q *selectQuery) and(cond string, args ...interface{}) {
	q.where = append(q.where, cond)
	q.args = append(q.args, args...)
}

func (q *selectQuery) whereClause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// scope restricts q to the part of history visible under filter.
func (q *selectQuery) scope(filter modes.FilterMode, hctx history.Context) {
	switch filter {
	case modes.FilterHost:
		q.and("lower(hostname) = ?", strings.ToLower(hctx.Hostname))
	case modes.FilterSession:
		q.and("session = ?", hctx.SessionID)
	case modes.FilterDirectory:
		q.and("cwd = ?", hctx.WorkingDir)
	}
}

// page appends ORDER BY and LIMIT/OFFSET for opts to sql.
func page(sql *strings.Builder, args []interface{}, orderBy string, opts history.QueryOptions) []interface{} {
	sql.WriteString(" ORDER BY ")
	sql.WriteString(orderBy)
	if opts.Reverse {
		sql.WriteString(" ASC")
	} else {
		sql.WriteString(" DESC")
	}

	if opts.Limit > 0 || opts.Offset > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		sql.WriteString(" LIMIT ?")
		args = append(args, limit)
		if opts.Offset > 0 {
			sql.WriteString(" OFFSET ?")
			args = append(args, opts.Offset)
		}
	}
	return args
}

// termCondition is one pattern test against the command column.
type termCondition struct {
	pattern string
	glob    bool
	inverse bool
}

func (c termCondition) sql() string {
	var b strings.Builder
	b.WriteString("command")
	if c.inverse {
		b.WriteString(" NOT")
	}
	if c.glob {
		b.WriteString(" GLOB ?")
	} else {
		b.WriteString(" LIKE ?")
	}
	return b.String()
}

// matchCommand adds the conditions selecting commands that match query
// under mode.
//
// Prefix mode matches the whole query at the start of the command, with *
// as a wildcard. The other modes split the query on whitespace and AND the
// terms together. Per term:
//
//	!term   the command must not contain term
//	^term   the command starts with term
//	term$   the command ends with term
//	'term   the command contains term, even in fuzzy mode
//	|       ORs the following term with the previous one
//
// A term containing an upper case letter is matched case sensitively with
// GLOB, otherwise LIKE is used. Fuzzy mode matches the characters of a term
// in order with anything in between.
func (q *selectQuery) matchCommand(mode modes.SearchMode, query string) {
	if mode == modes.SearchPrefix {
		q.and("command LIKE ?", strings.ReplaceAll(query, "*", "%")+"%")
		return
	}

	var groups [][]termCondition
	isOr := false
	for _, part := range strings.Fields(query) {
		if part == "|" && !isOr && len(groups) > 0 {
			isOr = true
			continue
		}

		cond, ok := parseTerm(mode, part)
		if !ok {
			continue
		}
		if isOr {
			last := len(groups) - 1
			groups[last] = append(groups[last], cond)
		} else {
			groups = append(groups, []termCondition{cond})
		}
		isOr = false
	}

	for _, group := range groups {
		ors := make([]string, 0, len(group))
		args := make([]interface{}, 0, len(group))
		for _, c := range group {
			ors = append(ors, c.sql())
			args = append(args, c.pattern)
		}
		if len(ors) == 1 {
			q.and(ors[0], args...)
		} else {
			q.and("("+strings.Join(ors, " OR ")+")", args...)
		}
	}
}

func parseTerm(mode modes.SearchMode, part string) (termCondition, bool) {
	glob := strings.IndexFunc(part, unicode.IsUpper) >= 0
	wild := "%"
	if glob {
		wild = "*"
	}
	part = strings.ReplaceAll(part, "*", wild)

	cond := termCondition{glob: glob}
	if rest, ok := strings.CutPrefix(part, "!"); ok {
		cond.inverse = true
		part = rest
	}

	switch {
	case part == "|":
		// a second | in a row is matched literally
		cond.pattern = wild + "|" + wild
	case strings.HasPrefix(part, "^"):
		cond.pattern = part[1:] + wild
	case strings.HasSuffix(part, "$"):
		cond.pattern = wild + part[:len(part)-1]
	case strings.HasPrefix(part, "'"):
		cond.pattern = wild + part[1:] + wild
	case cond.inverse || mode == modes.SearchFullText:
		cond.pattern = wild + part + wild
	default:
		cond.pattern = wild + strings.Join(strings.Split(part, ""), wild) + wild
	}

	// a bare marker leaves nothing to match
	if strings.Trim(cond.pattern, wild) == "" {
		return termCondition{}, false
	}
	return cond, true
}
