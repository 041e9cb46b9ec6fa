package handler

import (
	"strings"

	"merx/internal/criteria"
	"merx/pkg/domain"
	dErrors "merx/pkg/domain-errors"
)

// CriterionPayload is one submitted criterion. Only the value field
// matching the type's kind may be set; the factory rejects the rest.
type CriterionPayload struct {
	ContentType  string               `json:"content_type"`
	Operator     string               `json:"operator"`
	Value        string               `json:"value,omitempty"`
	Refs         []string             `json:"refs,omitempty"`
	Compositions []CompositionPayload `json:"compositions,omitempty"`
}

// CompositionPayload is one (category, amount) pair of a
// composition criterion.
type CompositionPayload struct {
	Category string `json:"category"`
	Amount   int    `json:"amount"`
}

// RawValue converts the payload to the factory's input form.
func (p CriterionPayload) RawValue() criteria.RawValue {
	raw := criteria.RawValue{
		Operator: p.Operator,
		Value:    p.Value,
		Refs:     p.Refs,
	}
	for _, c := range p.Compositions {
		raw.Compositions = append(raw.Compositions, criteria.RawComposition{
			Category: c.Category,
			Amount:   c.Amount,
		})
	}
	return raw
}

// PutCriteriaRequest is the HTTP request body for PUT /owners/{kind}/{id}/criteria.
type PutCriteriaRequest struct {
	Criteria []CriterionPayload `json:"criteria"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *PutCriteriaRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Criteria) > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "at most 100 criteria per owner")
	}
	for i := range r.Criteria {
		r.Criteria[i].ContentType = strings.TrimSpace(r.Criteria[i].ContentType)
		if r.Criteria[i].ContentType == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "criterion %d: content_type is required", i)
		}
	}
	return nil
}

// EvaluateRequest is the HTTP request body for POST /owners/{kind}/{id}/evaluate.
// The body is optional; send it to evaluate against a product subject.
type EvaluateRequest struct {
	ProductID string `json:"product_id,omitempty"`

	// Parsed values (populated by Validate)
	parsedProductID *domain.ProductID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return nil
	}
	r.ProductID = strings.TrimSpace(r.ProductID)
	if r.ProductID == "" {
		return nil
	}
	productID, err := domain.ParseProductID(r.ProductID)
	if err != nil {
		return err
	}
	r.parsedProductID = &productID
	return nil
}

// ParsedProductID returns the validated product subject, nil when
// the request names none.
func (r *EvaluateRequest) ParsedProductID() *domain.ProductID {
	return r.parsedProductID
}
