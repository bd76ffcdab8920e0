// Package parse turns raw model output into an ExtractedRecord.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// synonyms maps alternative key names the model has been seen to use onto
// record keys.
var synonyms = map[string]string{
	"aadhaar_number": domain.FieldIDNumber,
	"aadhar_number":  domain.FieldIDNumber,
	"parent":         domain.FieldParentName,
}

// Parser implements domain.ResponseParser. Only syntax and shape are
// enforced: the response must be one JSON object. Field values are coerced,
// never rejected.
type Parser struct {
	logger *observability.Logger
}

// NewParser creates a parser
func NewParser(logger *observability.Logger) *Parser {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Parser{logger: logger.WithOperation("parse")}
}

// Parse strips fences, decodes a single JSON object and maps it onto the
// record. Keys the model left out come back as nil.
func (p *Parser) Parse(raw string) (*domain.ExtractedRecord, error) {
	body := StripFences(raw)

	value, err := decodeSingle(body)
	if err != nil {
		return nil, domain.ParseError("model response is not valid JSON", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, domain.ParseError(domain.ErrResponseNotAnObject.Error(),
			fmt.Errorf("%w: got %s", domain.ErrResponseNotAnObject, jsonKind(value)))
	}

	renamed := applySynonyms(obj)

	if err := recordSchema.Validate(obj); err != nil {
		return nil, domain.ParseError(domain.ErrResponseNotAnObject.Error(), err)
	}

	record, dropped, coerced := buildRecord(obj)

	if len(renamed) > 0 || len(dropped) > 0 || len(coerced) > 0 {
		p.logger.Warn().
			Strs("renamed", renamed).
			Strs("dropped", dropped).
			Strs("coerced", coerced).
			Msg("normalised model response")
	}

	return record, nil
}

// decodeSingle decodes exactly one JSON value, keeping numbers exact.
func decodeSingle(body string) (any, error) {
	if body == "" {
		return nil, errors.New("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func applySynonyms(obj map[string]any) []string {
	var renamed []string
	for from, to := range synonyms {
		v, ok := obj[from]
		if !ok {
			continue
		}
		// never overwrite a canonical key the model already sent
		if _, exists := obj[to]; !exists {
			obj[to] = v
		}
		delete(obj, from)
		renamed = append(renamed, from+"->"+to)
	}
	sort.Strings(renamed)
	return renamed
}

func buildRecord(obj map[string]any) (*domain.ExtractedRecord, []string, []string) {
	var dropped []string
	known := make(map[string]struct{}, len(domain.RecordFields))
	for _, f := range domain.RecordFields {
		known[f] = struct{}{}
	}
	for k := range obj {
		if _, ok := known[k]; !ok {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)

	var coerced []string
	text := func(field string) *string {
		s, structured := toText(obj[field])
		if structured {
			coerced = append(coerced, field)
		}
		return s
	}

	record := &domain.ExtractedRecord{
		Name:            text(domain.FieldName),
		DateOfBirth:     text(domain.FieldDateOfBirth),
		DateOfBirthYear: text(domain.FieldDateOfBirthYear),
		Gender:          text(domain.FieldGender),
		IDNumber:        text(domain.FieldIDNumber),
		Address:         text(domain.FieldAddress),
		ParentName:      text(domain.FieldParentName),
	}

	confidence, ok := toConfidence(obj[domain.FieldConfidence])
	if !ok {
		coerced = append(coerced, domain.FieldConfidence+"(null)")
	}
	record.Confidence = confidence

	return record, dropped, coerced
}

// toText keeps strings verbatim and renders numbers in their JSON form.
// Booleans, arrays and objects become their compact JSON text; structured
// reports that this happened.
func toText(v any) (s *string, structured bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return &t, false
	case json.Number:
		n := t.String()
		return &n, false
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, true
		}
		c := string(b)
		return &c, true
	}
}

// toConfidence converts a number or numeric string to an int, rounding
// fractions. ok is false when a value was present but not numeric.
func toConfidence(v any) (*int, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, true
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err != nil {
			return nil, false
		}
		f = n
	default:
		return nil, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil, false
	}
	c := int(math.Round(f))
	return &c, true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
