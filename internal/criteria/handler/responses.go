package handler

import (
	"time"

	"merx/internal/criteria"
	"merx/pkg/domain"
)

// TypeResponse describes one registered criterion type.
type TypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TypeListResponse is the HTTP response for GET /criteria/types.
type TypeListResponse struct {
	Types []TypeResponse `json:"types"`
}

// FromTypeList converts registry type infos to an HTTP response.
func FromTypeList(types []criteria.TypeInfo) *TypeListResponse {
	out := &TypeListResponse{Types: make([]TypeResponse, 0, len(types))}
	for _, t := range types {
		out.Types = append(out.Types, TypeResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

// CriterionResponse is one stored criterion on the wire.
type CriterionResponse struct {
	ID           string               `json:"id"`
	Position     int                  `json:"position"`
	ContentType  string               `json:"content_type"`
	Operator     string               `json:"operator"`
	Value        *float64             `json:"value,omitempty"`
	Refs         []string             `json:"refs,omitempty"`
	Compositions []CompositionPayload `json:"compositions,omitempty"`
}

// CriteriaResponse is the HTTP response for GET and PUT
// /owners/{kind}/{id}/criteria.
type CriteriaResponse struct {
	OwnerKind string              `json:"owner_kind"`
	OwnerID   string              `json:"owner_id"`
	Criteria  []CriterionResponse `json:"criteria"`
}

// FromCriteria converts a stored criteria set to an HTTP response.
func FromCriteria(owner domain.OwnerRef, items []criteria.Criterion) *CriteriaResponse {
	out := &CriteriaResponse{
		OwnerKind: owner.Kind.String(),
		OwnerID:   owner.ID,
		Criteria:  make([]CriterionResponse, 0, len(items)),
	}
	for _, c := range items {
		resp := CriterionResponse{
			ID:          c.ID.String(),
			Position:    c.Position,
			ContentType: c.ContentType,
			Operator:    string(c.Operator),
			Refs:        c.Refs,
		}
		if len(c.Refs) == 0 && len(c.Compositions) == 0 && hasScalar(c.Operator) {
			v := c.Value
			resp.Value = &v
		}
		for _, entry := range c.Compositions {
			resp.Compositions = append(resp.Compositions, CompositionPayload{
				Category: entry.Category.String(),
				Amount:   entry.Amount,
			})
		}
		out.Criteria = append(out.Criteria, resp)
	}
	return out
}

// hasScalar reports whether the operator compares a numeric value,
// so flag criteria do not echo a meaningless zero.
func hasScalar(op criteria.Operator) bool {
	return op.In(criteria.NumberOperators)
}

// ResultResponse is the per-criterion breakdown of an evaluation.
type ResultResponse struct {
	CriterionID string `json:"criterion_id"`
	ContentType string `json:"content_type"`
	Valid       bool   `json:"valid"`
}

// EvaluateResponse is the HTTP response for POST /owners/{kind}/{id}/evaluate.
type EvaluateResponse struct {
	OwnerKind   string           `json:"owner_kind"`
	OwnerID     string           `json:"owner_id"`
	Valid       bool             `json:"valid"`
	Results     []ResultResponse `json:"results"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// FromDecision converts a domain Decision to an HTTP response.
func FromDecision(d *criteria.Decision) *EvaluateResponse {
	out := &EvaluateResponse{
		OwnerKind:   d.Owner.Kind.String(),
		OwnerID:     d.Owner.ID,
		Valid:       d.Valid,
		Results:     make([]ResultResponse, 0, len(d.Results)),
		EvaluatedAt: d.EvaluatedAt,
	}
	for _, r := range d.Results {
		out.Results = append(out.Results, ResultResponse{
			CriterionID: r.CriterionID.String(),
			ContentType: r.ContentType,
			Valid:       r.Valid,
		})
	}
	return out
}
