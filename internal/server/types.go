package server

import (
	gojson "github.com/goccy/go-json"

	"github.com/stratadb/strata/pkg/aggregate"
	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/readbuffer"
	"github.com/stratadb/strata/pkg/value"
)

// columnPayload is the wire form of one column: ingest bodies and query
// results both use it.
type columnPayload struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Values []interface{} `json:"values"`
}

// writeRequest maps table name to that table's columns.
type writeRequest map[string][]columnPayload

type predicatePayload struct {
	Column string      `json:"column"`
	Op     string      `json:"op"`
	Value  interface{} `json:"value"`
	// Type disambiguates numeric literals; one of int, float, string, bool.
	// Optional: bare JSON numbers default to float, except on the time
	// column.
	Type string `json:"type,omitempty"`
}

type aggregatePayload struct {
	Column string `json:"column"`
	Kind   string `json:"kind"`
}

type queryRequest struct {
	Table      string             `json:"table,omitempty"`
	Start      int64              `json:"start"`
	End        int64              `json:"end"`
	Predicates []predicatePayload `json:"predicates,omitempty"`

	// Select
	Columns []string `json:"columns,omitempty"`

	// Aggregate / AggregateWindow
	GroupColumns []string           `json:"group_columns,omitempty"`
	Aggregates   []aggregatePayload `json:"aggregates,omitempty"`
	Window       int64              `json:"window,omitempty"`

	// TagValues
	Keys []string `json:"keys,omitempty"`
}

type resultPayload struct {
	Columns []columnPayload `json:"columns"`
	Rows    int             `json:"rows"`
}

type errorPayload struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (r queryRequest) timeRange() readbuffer.TimeRange {
	return readbuffer.TimeRange{From: r.Start, To: r.End}
}

func (r queryRequest) predicates() ([]readbuffer.Predicate, error) {
	out := make([]readbuffer.Predicate, 0, len(r.Predicates))
	for _, p := range r.Predicates {
		op, err := value.ParseOperator(p.Op)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(p.Value, p.Type, p.Column == readbuffer.TimeColumn)
		if err != nil {
			return nil, err
		}
		out = append(out, readbuffer.Predicate{Column: p.Column, Op: op, Value: v})
	}
	return out, nil
}

func (r queryRequest) aggregates() ([]readbuffer.AggregateSpec, error) {
	out := make([]readbuffer.AggregateSpec, 0, len(r.Aggregates))
	for _, a := range r.Aggregates {
		kind, err := aggregate.ParseKind(a.Kind)
		if err != nil {
			return nil, err
		}
		out = append(out, readbuffer.AggregateSpec{Column: a.Column, Kind: kind})
	}
	return out, nil
}

// decodeValue converts a decoded JSON literal into a typed value. Numbers
// arrive as gojson.Number because request decoding uses UseNumber to keep
// nanosecond timestamps exact.
func decodeValue(raw interface{}, typeHint string, isTime bool) (value.Value, error) {
	switch v := raw.(type) {
	case string:
		return value.String(v), nil
	case bool:
		return value.Bool(v), nil
	case gojson.Number:
		return decodeNumber(string(v), typeHint, isTime)
	case float64:
		return decodeNumberFloat(v, typeHint, isTime)
	default:
		return value.Value{}, errors.Newf(errors.ErrorTypeInvalidArgument,
			"unsupported literal %v (%T)", raw, raw)
	}
}

func decodeNumber(s, typeHint string, isTime bool) (value.Value, error) {
	n := gojson.Number(s)
	if typeHint == "int" || isTime {
		i, err := n.Int64()
		if err != nil {
			return value.Value{}, errors.Wrap(err, errors.ErrorTypeInvalidArgument,
				"integer literal "+s)
		}
		return value.Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return value.Value{}, errors.Wrap(err, errors.ErrorTypeInvalidArgument,
			"numeric literal "+s)
	}
	return value.Float(f), nil
}

func decodeNumberFloat(f float64, typeHint string, isTime bool) (value.Value, error) {
	if typeHint == "int" || isTime {
		return value.Int(int64(f)), nil
	}
	return value.Float(f), nil
}

// toBatch converts one table's wire columns into a read buffer batch.
func toBatch(cols []columnPayload) (*readbuffer.Batch, error) {
	b := readbuffer.NewBatch()
	for _, c := range cols {
		typ, err := value.ParseType(c.Type)
		if err != nil {
			return nil, err
		}
		switch typ {
		case value.TypeInt:
			vals := make([]int64, len(c.Values))
			for i, raw := range c.Values {
				v, err := decodeValue(raw, "int", false)
				if err != nil {
					return nil, err
				}
				vals[i] = v.IntVal()
			}
			b.AddIntColumn(c.Name, vals)
		case value.TypeFloat:
			vals := make([]float64, len(c.Values))
			for i, raw := range c.Values {
				v, err := decodeValue(raw, "float", false)
				if err != nil {
					return nil, err
				}
				vals[i] = v.FloatVal()
			}
			b.AddFloatColumn(c.Name, vals)
		case value.TypeString:
			vals := make([]string, len(c.Values))
			for i, raw := range c.Values {
				s, ok := raw.(string)
				if !ok {
					return nil, errors.Newf(errors.ErrorTypeConstruction,
						"column %q row %d: expected string, got %T", c.Name, i, raw)
				}
				vals[i] = s
			}
			b.AddStringColumn(c.Name, vals)
		case value.TypeBool:
			vals := make([]bool, len(c.Values))
			for i, raw := range c.Values {
				bv, ok := raw.(bool)
				if !ok {
					return nil, errors.Newf(errors.ErrorTypeConstruction,
						"column %q row %d: expected bool, got %T", c.Name, i, raw)
				}
				vals[i] = bv
			}
			b.AddBoolColumn(c.Name, vals)
		}
	}
	return b, nil
}

// toResultPayload converts a query result into its wire form.
func toResultPayload(res *readbuffer.Result) resultPayload {
	out := resultPayload{
		Columns: make([]columnPayload, 0, res.NumColumns()),
		Rows:    res.NumRows(),
	}
	for _, col := range res.Columns() {
		p := columnPayload{
			Name:   col.Name,
			Type:   col.Type.String(),
			Values: make([]interface{}, len(col.Values)),
		}
		for i, v := range col.Values {
			p.Values[i] = v.Interface()
		}
		out.Columns = append(out.Columns, p)
	}
	return out
}
