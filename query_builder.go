// Package solrq provides a Go query builder for Apache Solr
package solrq

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	// SortAsc represents ascending sort order
	SortAsc SortOrder = "asc"
	// SortDesc represents descending sort order
	SortDesc SortOrder = "desc"
)

// matchAll is the query Solr uses to select every document
const matchAll = "*:*"

// QueryBuilder provides a fluent API for building Solr queries
type QueryBuilder struct {
	criteria      []string
	filterQueries []string
	sortFields    []string
	fields        []string
	limit         *int
	skip          *int
	join          *Join
	config        Config
	err           error
}

// RequestBody is the body of a Solr JSON Request API call
type RequestBody struct {
	Query  string            `json:"query" msgpack:"query"`
	Filter []string          `json:"filter,omitempty" msgpack:"filter,omitempty"`
	Limit  *int              `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Offset *int              `json:"offset,omitempty" msgpack:"offset,omitempty"`
	Sort   string            `json:"sort,omitempty" msgpack:"sort,omitempty"`
	Fields []string          `json:"fields,omitempty" msgpack:"fields,omitempty"`
	Params map[string]string `json:"params,omitempty" msgpack:"params,omitempty"`
}

// NewQueryBuilder creates a new QueryBuilder
func NewQueryBuilder() *QueryBuilder {
	return NewQueryBuilderWithConfig(DefaultConfig())
}

// NewQueryBuilderWithConfig creates a new QueryBuilder using config defaults
func NewQueryBuilderWithConfig(config Config) *QueryBuilder {
	return &QueryBuilder{
		criteria:      make([]string, 0),
		filterQueries: make([]string, 0),
		sortFields:    make([]string, 0),
		config:        config,
	}
}

func (qb *QueryBuilder) addCriteria(field, term string) *QueryBuilder {
	return qb.appendCriteria("", field, term)
}

func (qb *QueryBuilder) appendCriteria(prefix, field, term string) *QueryBuilder {
	if strings.TrimSpace(field) == "" {
		qb.fail(invalidArgument("criteria field is required"))
		return qb
	}
	qb.criteria = append(qb.criteria, prefix+EscapeQueryChars(field)+":"+term)
	return qb
}

func (qb *QueryBuilder) fail(err error) {
	if qb.err == nil {
		qb.err = err
	}
}

// Eq adds an equality criteria (field:value)
func (qb *QueryBuilder) Eq(field string, value interface{}) *QueryBuilder {
	return qb.addCriteria(field, FormatValue(value))
}

// Ne adds a negated equality criteria (-field:value)
func (qb *QueryBuilder) Ne(field string, value interface{}) *QueryBuilder {
	return qb.appendCriteria("-", field, FormatValue(value))
}

// Gt adds an exclusive lower bound (field:{value TO *])
func (qb *QueryBuilder) Gt(field string, value interface{}) *QueryBuilder {
	return qb.addCriteria(field, "{"+FormatValue(value)+" TO *]")
}

// Gte adds an inclusive lower bound (field:[value TO *])
func (qb *QueryBuilder) Gte(field string, value interface{}) *QueryBuilder {
	return qb.addCriteria(field, "["+FormatValue(value)+" TO *]")
}

// Lt adds an exclusive upper bound (field:[* TO value})
func (qb *QueryBuilder) Lt(field string, value interface{}) *QueryBuilder {
	return qb.addCriteria(field, "[* TO "+FormatValue(value)+"}")
}

// Lte adds an inclusive upper bound (field:[* TO value])
func (qb *QueryBuilder) Lte(field string, value interface{}) *QueryBuilder {
	return qb.addCriteria(field, "[* TO "+FormatValue(value)+"]")
}

// Between adds an inclusive range (field:[lower TO upper]). A nil bound is open.
func (qb *QueryBuilder) Between(field string, lower, upper interface{}) *QueryBuilder {
	return qb.addCriteria(field, "["+FormatValue(lower)+" TO "+FormatValue(upper)+"]")
}

// In adds a match-any criteria (field:(a OR b))
func (qb *QueryBuilder) In(field string, values []interface{}) *QueryBuilder {
	if len(values) == 0 {
		qb.fail(invalidArgument("In on %q needs at least one value", field))
		return qb
	}
	return qb.addCriteria(field, joinValues(values))
}

// Nin adds a match-none criteria (-field:(a OR b))
func (qb *QueryBuilder) Nin(field string, values []interface{}) *QueryBuilder {
	if len(values) == 0 {
		qb.fail(invalidArgument("Nin on %q needs at least one value", field))
		return qb
	}
	return qb.appendCriteria("-", field, joinValues(values))
}

func joinValues(values []interface{}) string {
	terms := make([]string, len(values))
	for i, v := range values {
		terms[i] = FormatValue(v)
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// Contains adds a substring wildcard criteria (field:*value*)
func (qb *QueryBuilder) Contains(field string, substring string) *QueryBuilder {
	return qb.addCriteria(field, "*"+EscapeQueryChars(substring)+"*")
}

// StartsWith adds a prefix criteria (field:value*)
func (qb *QueryBuilder) StartsWith(field string, prefix string) *QueryBuilder {
	return qb.addCriteria(field, EscapeQueryChars(prefix)+"*")
}

// EndsWith adds a suffix criteria (field:*value)
func (qb *QueryBuilder) EndsWith(field string, suffix string) *QueryBuilder {
	return qb.addCriteria(field, "*"+EscapeQueryChars(suffix))
}

// Regex adds a regular expression criteria (field:/pattern/)
func (qb *QueryBuilder) Regex(field string, pattern string) *QueryBuilder {
	return qb.addCriteria(field, "/"+escapeSlashes(pattern)+"/")
}

// escapeSlashes escapes every '/' not already escaped by a backslash
func escapeSlashes(pattern string) string {
	var sb strings.Builder
	sb.Grow(len(pattern))
	backslashes := 0
	for _, r := range pattern {
		if r == '/' && backslashes%2 == 0 {
			sb.WriteByte('\\')
		}
		if r == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Exists matches documents with any value in field
func (qb *QueryBuilder) Exists(field string) *QueryBuilder {
	return qb.addCriteria(field, "[* TO *]")
}

// Raw adds a clause verbatim. The caller is responsible for escaping.
func (qb *QueryBuilder) Raw(clause string) *QueryBuilder {
	if strings.TrimSpace(clause) != "" {
		qb.criteria = append(qb.criteria, clause)
	}
	return qb
}

// And groups the criteria of each sub-builder with AND logic
func (qb *QueryBuilder) And(subs ...*QueryBuilder) *QueryBuilder {
	return qb.group("AND", subs)
}

// Or groups the criteria of each sub-builder with OR logic
func (qb *QueryBuilder) Or(subs ...*QueryBuilder) *QueryBuilder {
	return qb.group("OR", subs)
}

// Not negates the criteria of a sub-builder
func (qb *QueryBuilder) Not(sub *QueryBuilder) *QueryBuilder {
	expr, ok := qb.subExpression(sub)
	if ok {
		qb.criteria = append(qb.criteria, "-("+expr+")")
	}
	return qb
}

func (qb *QueryBuilder) group(operator string, subs []*QueryBuilder) *QueryBuilder {
	exprs := make([]string, 0, len(subs))
	for _, sub := range subs {
		expr, ok := qb.subExpression(sub)
		if !ok {
			return qb
		}
		exprs = append(exprs, "("+expr+")")
	}
	if len(exprs) > 0 {
		qb.criteria = append(qb.criteria, "("+strings.Join(exprs, " "+operator+" ")+")")
	}
	return qb
}

// subExpression renders the criteria of sub, propagating its error
func (qb *QueryBuilder) subExpression(sub *QueryBuilder) (string, bool) {
	if sub == nil {
		qb.fail(invalidArgument("sub-query is required"))
		return "", false
	}
	if sub.err != nil {
		qb.fail(sub.err)
		return "", false
	}
	if len(sub.criteria) == 0 {
		qb.fail(invalidArgument("sub-query has no criteria"))
		return "", false
	}
	if nested := sub.nestedParts(); nested != "" {
		qb.fail(invalidArgument("sub-query carries %s that cannot be nested", nested))
		return "", false
	}
	return strings.Join(sub.criteria, " AND "), true
}

// nestedParts names the request-level parts of a sub-builder, which only
// apply to a top-level query
func (qb *QueryBuilder) nestedParts() string {
	var parts []string
	if qb.join != nil {
		parts = append(parts, "a join")
	}
	if len(qb.filterQueries) > 0 {
		parts = append(parts, "filter queries")
	}
	if len(qb.sortFields) > 0 {
		parts = append(parts, "sort fields")
	}
	if len(qb.fields) > 0 {
		parts = append(parts, "selected fields")
	}
	if qb.limit != nil || qb.skip != nil {
		parts = append(parts, "paging")
	}
	return strings.Join(parts, ", ")
}

// Filter adds the criteria of sub as a filter query (fq)
func (qb *QueryBuilder) Filter(sub *QueryBuilder) *QueryBuilder {
	expr, ok := qb.subExpression(sub)
	if ok {
		qb.filterQueries = append(qb.filterQueries, expr)
	}
	return qb
}

// Join restricts the main query to documents reached through j
func (qb *QueryBuilder) Join(j Join) *QueryBuilder {
	if j.IsZero() {
		qb.fail(invalidArgument("join is not complete"))
		return qb
	}
	qb.join = &j
	return qb
}

// JoinFilter adds a filter query selecting documents reached through j from
// the documents matching sub. A nil sub joins from every document.
func (qb *QueryBuilder) JoinFilter(j Join, sub *QueryBuilder) *QueryBuilder {
	if j.IsZero() {
		qb.fail(invalidArgument("join is not complete"))
		return qb
	}
	expr := matchAll
	if sub != nil {
		var ok bool
		if expr, ok = qb.subExpression(sub); !ok {
			return qb
		}
	}
	qb.filterQueries = append(qb.filterQueries, renderJoin(j)+expr)
	return qb
}

// SortAscending adds a sort field in ascending order
func (qb *QueryBuilder) SortAscending(field string) *QueryBuilder {
	return qb.sort(field, SortAsc)
}

// SortDescending adds a sort field in descending order
func (qb *QueryBuilder) SortDescending(field string) *QueryBuilder {
	return qb.sort(field, SortDesc)
}

func (qb *QueryBuilder) sort(field string, order SortOrder) *QueryBuilder {
	if strings.TrimSpace(field) == "" {
		qb.fail(invalidArgument("sort field is required"))
		return qb
	}
	qb.sortFields = append(qb.sortFields, field+" "+string(order))
	return qb
}

// SelectFields sets the fields returned for each document (fl)
func (qb *QueryBuilder) SelectFields(fields ...string) *QueryBuilder {
	qb.fields = append(qb.fields, fields...)
	return qb
}

// Limit sets the maximum number of results
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	if limit < 0 {
		qb.fail(invalidArgument("limit must not be negative, got %d", limit))
		return qb
	}
	qb.limit = &limit
	return qb
}

// Skip sets the number of results to skip (for pagination)
func (qb *QueryBuilder) Skip(skip int) *QueryBuilder {
	if skip < 0 {
		qb.fail(invalidArgument("skip must not be negative, got %d", skip))
		return qb
	}
	qb.skip = &skip
	return qb
}

// Page sets page number and page size (convenience method)
func (qb *QueryBuilder) Page(page, pageSize int) *QueryBuilder {
	if page < 0 || pageSize < 0 {
		qb.fail(invalidArgument("page and page size must not be negative, got %d and %d", page, pageSize))
		return qb
	}
	skip := page * pageSize
	qb.skip = &skip
	qb.limit = &pageSize
	return qb
}

// Err returns the first error recorded while building
func (qb *QueryBuilder) Err() error {
	return qb.err
}

// queryString renders q, including any join prefix
func (qb *QueryBuilder) queryString() string {
	q := matchAll
	if len(qb.criteria) > 0 {
		q = strings.Join(qb.criteria, " AND ")
	}
	if qb.join != nil {
		q = renderJoin(*qb.join) + q
	}
	return q
}

func (qb *QueryBuilder) rows() *int {
	if qb.limit != nil {
		rows := *qb.limit
		return &rows
	}
	if qb.config.DefaultRows > 0 {
		rows := qb.config.DefaultRows
		return &rows
	}
	return nil
}

func (qb *QueryBuilder) start() *int {
	if qb.skip == nil {
		return nil
	}
	start := *qb.skip
	return &start
}

// Build builds the final Solr request parameters
func (qb *QueryBuilder) Build() (url.Values, error) {
	if qb.err != nil {
		return nil, qb.err
	}

	params := url.Values{}
	params.Set("q", qb.queryString())

	for _, fq := range qb.filterQueries {
		params.Add("fq", fq)
	}

	if len(qb.sortFields) > 0 {
		params.Set("sort", strings.Join(qb.sortFields, ","))
	}
	if len(qb.fields) > 0 {
		params.Set("fl", strings.Join(qb.fields, ","))
	}

	// Add pagination
	if rows := qb.rows(); rows != nil {
		params.Set("rows", strconv.Itoa(*rows))
	}
	if qb.skip != nil {
		params.Set("start", strconv.Itoa(*qb.skip))
	}

	if qb.config.DefaultOperator != "" {
		params.Set("q.op", string(qb.config.DefaultOperator))
	}
	if qb.config.DefType != "" {
		params.Set("defType", qb.config.DefType)
	}

	return params, nil
}

// Encode builds the request parameters as a URL query string
func (qb *QueryBuilder) Encode() (string, error) {
	params, err := qb.Build()
	if err != nil {
		return "", err
	}
	return params.Encode(), nil
}

// BuildRequest builds the body for Solr's JSON Request API
func (qb *QueryBuilder) BuildRequest() (RequestBody, error) {
	if qb.err != nil {
		return RequestBody{}, qb.err
	}

	body := RequestBody{
		Query:  qb.queryString(),
		Limit:  qb.rows(),
		Offset: qb.start(),
		Sort:   strings.Join(qb.sortFields, ","),
	}
	if len(qb.filterQueries) > 0 {
		body.Filter = append([]string(nil), qb.filterQueries...)
	}
	if len(qb.fields) > 0 {
		body.Fields = append([]string(nil), qb.fields...)
	}

	params := make(map[string]string)
	if qb.config.DefaultOperator != "" {
		params["q.op"] = string(qb.config.DefaultOperator)
	}
	if qb.config.DefType != "" {
		params["defType"] = qb.config.DefType
	}
	if len(params) > 0 {
		body.Params = params
	}

	return body, nil
}

// BuildJSON builds the JSON Request API body as JSON bytes
func (qb *QueryBuilder) BuildJSON() ([]byte, error) {
	body, err := qb.BuildRequest()
	if err != nil {
		return nil, err
	}
	return json.Marshal(body)
}

// BuildMsgpack builds the JSON Request API body encoded as MessagePack
func (qb *QueryBuilder) BuildMsgpack() ([]byte, error) {
	body, err := qb.BuildRequest()
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(body)
}
