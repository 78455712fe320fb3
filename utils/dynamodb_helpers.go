package utils

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AssetKeyAttribute is the map key under which a stored asset reference keeps
// its remote object key.
const AssetKeyAttribute = "assetKey"

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) (string, bool) {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value, true
		}
	}
	return "", false
}

// ExtractOptionalString returns nil when the field is absent or not a string.
func ExtractOptionalString(item map[string]types.AttributeValue, field string) *string {
	if s, ok := ExtractString(item, field); ok {
		return &s
	}
	return nil
}

// ExtractInt safely extracts a whole number from a DynamoDB attribute map
func ExtractInt(item map[string]types.AttributeValue, field string) (int, bool) {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			n, err := strconv.Atoi(v.Value)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

// ExtractFloat safely extracts a floating point number from a DynamoDB attribute map
func ExtractFloat(item map[string]types.AttributeValue, field string) (float64, bool) {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberN); ok {
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return 0, false
			}
			return f, true
		}
	}
	return 0, false
}

// ExtractTime reads a timestamp stored as an RFC 3339 string.
func ExtractTime(item map[string]types.AttributeValue, field string) (time.Time, bool) {
	s, ok := ExtractString(item, field)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ExtractOptionalTime returns nil when the field is absent or not a timestamp.
func ExtractOptionalTime(item map[string]types.AttributeValue, field string) *time.Time {
	if t, ok := ExtractTime(item, field); ok {
		return &t
	}
	return nil
}

// ExtractStringList extracts a list of strings stored either as a list (L) or
// a string set (SS). It fails if any list element is not a string.
func ExtractStringList(item map[string]types.AttributeValue, field string) ([]string, bool) {
	attr, ok := item[field]
	if !ok {
		return nil, false
	}

	switch v := attr.(type) {
	case *types.AttributeValueMemberSS:
		out := make([]string, len(v.Value))
		copy(out, v.Value)
		return out, true
	case *types.AttributeValueMemberL:
		out := make([]string, 0, len(v.Value))
		for _, elem := range v.Value {
			s, ok := elem.(*types.AttributeValueMemberS)
			if !ok {
				return nil, false
			}
			out = append(out, s.Value)
		}
		return out, true
	default:
		return nil, false
	}
}

// ExtractAssetKey returns the remote object key of an asset reference.
func ExtractAssetKey(item map[string]types.AttributeValue, field string) (string, bool) {
	attr, ok := item[field]
	if !ok {
		return "", false
	}
	m, ok := attr.(*types.AttributeValueMemberM)
	if !ok || len(m.Value) != 1 {
		return "", false
	}
	return ExtractString(m.Value, AssetKeyAttribute)
}

// StringValue wraps s as a DynamoDB string.
func StringValue(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

// OptionalStringValue returns nil for a nil s so callers can clear the field.
func OptionalStringValue(s *string) types.AttributeValue {
	if s == nil {
		return nil
	}
	return StringValue(*s)
}

// IntValue wraps n as a DynamoDB number.
func IntValue(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}

// FloatValue wraps f as a DynamoDB number.
func FloatValue(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'g', -1, 64)}
}

// TimeValue stores t as an RFC 3339 string in UTC.
func TimeValue(t time.Time) types.AttributeValue {
	return StringValue(t.UTC().Format(time.RFC3339Nano))
}

// OptionalTimeValue returns nil for a nil t.
func OptionalTimeValue(t *time.Time) types.AttributeValue {
	if t == nil {
		return nil
	}
	return TimeValue(*t)
}

// StringListValue stores values as a list so that order is kept and empty
// lists are allowed.
func StringListValue(values []string) types.AttributeValue {
	list := make([]types.AttributeValue, 0, len(values))
	for _, v := range values {
		list = append(list, StringValue(v))
	}
	return &types.AttributeValueMemberL{Value: list}
}

// AssetValue is the stored form of an asset reference.
func AssetValue(key string) types.AttributeValue {
	return &types.AttributeValueMemberM{
		Value: map[string]types.AttributeValue{
			AssetKeyAttribute: StringValue(key),
		},
	}
}

// ExtractBool safely extracts a boolean from a DynamoDB attribute map
func ExtractBool(item map[string]types.AttributeValue, field string) (bool, bool) {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberBOOL); ok {
			return v.Value, true
		}
	}
	return false, false
}

// BoolValue wraps b as a DynamoDB boolean.
func BoolValue(b bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: b}
}
