package core

// Filter restricts every table that carries Column to the rows whose raw
// value in that column belongs to Values. A nil *Filter loads everything.
type Filter struct {
	Column string   `json:"column"`
	Values []string `json:"values"`

	set map[string]struct{}
}

// NewFilter builds a filter over the given column and value set.
func NewFilter(column string, values ...string) *Filter {
	f := &Filter{Column: column, Values: values}
	f.index()
	return f
}

func (f *Filter) index() {
	f.set = make(map[string]struct{}, len(f.Values))
	for _, v := range f.Values {
		f.set[v] = struct{}{}
	}
}

// IsZero reports whether the filter is unset.
func (f *Filter) IsZero() bool {
	return f == nil || f.Column == ""
}

// AppliesTo reports whether a table with the given columns is subject to the filter.
func (f *Filter) AppliesTo(columns []string) bool {
	if f.IsZero() {
		return false
	}
	for _, c := range columns {
		if c == f.Column {
			return true
		}
	}
	return false
}

// Contains reports whether value is a member of the filter's value set.
func (f *Filter) Contains(value string) bool {
	if f.set == nil {
		f.index()
	}
	_, ok := f.set[value]
	return ok
}
