package services

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Predicate filters the records returned by a query.
type Predicate interface {
	// Matches evaluates the predicate against the fields of a record.
	Matches(fields map[string]types.AttributeValue) bool

	filter(b *filterBuilder) (string, error)
}

// All matches every record.
func All() Predicate {
	return allPredicate{}
}

// Equal matches records whose field equals value.
func Equal(field string, value interface{}) Predicate {
	av, err := attributevalue.Marshal(value)
	return comparison{field: field, op: "=", value: av, err: err}
}

// NotEqual matches records whose field does not equal value. Records without
// the field match.
func NotEqual(field string, value interface{}) Predicate {
	av, err := attributevalue.Marshal(value)
	return comparison{field: field, op: "<>", value: av, err: err}
}

// And matches records that match every one of preds.
func And(preds ...Predicate) Predicate {
	return conjunction(preds)
}

// CompileFilter turns p into a DynamoDB filter expression with its attribute
// name and value placeholders. A predicate matching everything compiles to an
// empty expression.
func CompileFilter(p Predicate) (string, map[string]string, map[string]types.AttributeValue, error) {
	if p == nil {
		p = All()
	}
	b := &filterBuilder{
		names:  map[string]string{},
		values: map[string]types.AttributeValue{},
		byName: map[string]string{},
	}
	expr, err := p.filter(b)
	if err != nil {
		return "", nil, nil, err
	}
	if expr == "" {
		return "", nil, nil, nil
	}
	return expr, b.names, b.values, nil
}

type filterBuilder struct {
	names  map[string]string
	values map[string]types.AttributeValue
	byName map[string]string
}

func (b *filterBuilder) name(field string) string {
	if ph, ok := b.byName[field]; ok {
		return ph
	}
	ph := "#f" + strconv.Itoa(len(b.byName))
	b.byName[field] = ph
	b.names[ph] = field
	return ph
}

func (b *filterBuilder) value(v types.AttributeValue) string {
	ph := ":v" + strconv.Itoa(len(b.values))
	b.values[ph] = v
	return ph
}

type allPredicate struct{}

func (allPredicate) Matches(map[string]types.AttributeValue) bool { return true }

func (allPredicate) filter(*filterBuilder) (string, error) { return "", nil }

type comparison struct {
	field string
	op    string
	value types.AttributeValue
	err   error
}

func (c comparison) Matches(fields map[string]types.AttributeValue) bool {
	if c.err != nil {
		return false
	}
	stored, ok := fields[c.field]
	equal := ok && reflect.DeepEqual(stored, c.value)
	if c.op == "=" {
		return equal
	}
	return !equal
}

func (c comparison) filter(b *filterBuilder) (string, error) {
	if c.err != nil {
		return "", fmt.Errorf("predicate on %q: %w", c.field, c.err)
	}
	name := b.name(c.field)
	expr := fmt.Sprintf("%s %s %s", name, c.op, b.value(c.value))
	if c.op == "<>" {
		// a comparison against a missing attribute is false in DynamoDB
		return fmt.Sprintf("attribute_not_exists(%s) OR %s", name, expr), nil
	}
	return expr, nil
}

type conjunction []Predicate

func (preds conjunction) Matches(fields map[string]types.AttributeValue) bool {
	for _, p := range preds {
		if !p.Matches(fields) {
			return false
		}
	}
	return true
}

func (preds conjunction) filter(b *filterBuilder) (string, error) {
	var parts []string
	for _, p := range preds {
		expr, err := p.filter(b)
		if err != nil {
			return "", err
		}
		if expr != "" {
			parts = append(parts, "("+expr+")")
		}
	}
	return strings.Join(parts, " AND "), nil
}
