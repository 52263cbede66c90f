package nba

import (
	"strconv"
	"strings"
)

// statsResponse is the stats.nba.com envelope: named result sets, each a
// header list zipped against untyped rows.
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// resultSetByName returns the named result set, or the first one when the
// name is empty. Missing sets return ok=false.
func (r *statsResponse) resultSetByName(name string) (resultSet, bool) {
	if len(r.ResultSets) == 0 {
		return resultSet{}, false
	}
	if name == "" {
		return r.ResultSets[0], true
	}
	for _, set := range r.ResultSets {
		if set.Name == name {
			return set, true
		}
	}
	return resultSet{}, false
}

// rows zips each row against the headers
func (s resultSet) rows() []row {
	rows := make([]row, 0, len(s.RowSet))
	for _, raw := range s.RowSet {
		r := row{}
		for i, header := range s.Headers {
			if i < len(raw) {
				r[header] = raw[i]
			}
		}
		rows = append(rows, r)
	}
	return rows
}

type row map[string]interface{}

func (r row) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (r row) float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

func (r row) int(key string) int {
	return int(r.float(key))
}

// intPtr returns nil when the value is absent rather than zero
func (r row) intPtr(key string) *int {
	if _, present := r[key]; !present || r[key] == nil {
		return nil
	}
	v := r.int(key)
	return &v
}
