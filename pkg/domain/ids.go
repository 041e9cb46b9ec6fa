// Package domain defines the identity primitives shared across merx.
//
// Values are constructed via ParseX at trust boundaries to enforce
// validity; direct casting bypasses validation and is reserved for
// code that already holds a validated value (stores, fixtures).
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	dErrors "merx/pkg/domain-errors"
)

// UserID identifies an authenticated shopper. Backed by a UUID issued
// by the identity provider; the empty value means "anonymous".
type UserID string

// ParseUserID validates that s is a well formed, non-nil UUID.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid user id %q", s)
	}
	return UserID(u.String()), nil
}

func (id UserID) String() string { return string(id) }

// IsNil reports whether the ID is unset (anonymous actor).
func (id UserID) IsNil() bool { return id == "" }

// Catalog references are opaque slugs managed by the host shop. They
// only need to be non-empty and free of whitespace; the catalog store
// is the authority on existence.
type (
	ProductID      string
	CategoryID     string
	ManufacturerID string
	DiscountID     string
	GroupID        string
)

func parseRef(kind, s string) (string, error) {
	if s == "" {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "%s reference cannot be empty", kind)
	}
	if strings.ContainsAny(s, " \t\n") {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s reference %q", kind, s)
	}
	return s, nil
}

func ParseProductID(s string) (ProductID, error) {
	v, err := parseRef("product", s)
	return ProductID(v), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	v, err := parseRef("category", s)
	return CategoryID(v), err
}

func ParseManufacturerID(s string) (ManufacturerID, error) {
	v, err := parseRef("manufacturer", s)
	return ManufacturerID(v), err
}

func ParseDiscountID(s string) (DiscountID, error) {
	v, err := parseRef("discount", s)
	return DiscountID(v), err
}

func ParseGroupID(s string) (GroupID, error) {
	v, err := parseRef("group", s)
	return GroupID(v), err
}

func (id ProductID) String() string      { return string(id) }
func (id CategoryID) String() string     { return string(id) }
func (id ManufacturerID) String() string { return string(id) }
func (id DiscountID) String() string     { return string(id) }
func (id GroupID) String() string        { return string(id) }

// CountryCode is an ISO 3166-1 alpha-2 code, stored upper case.
type CountryCode string

func ParseCountryCode(s string) (CountryCode, error) {
	if len(s) != 2 {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid country code %q", s)
	}
	up := strings.ToUpper(s)
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid country code %q", s)
		}
	}
	return CountryCode(up), nil
}

func (c CountryCode) String() string { return string(c) }

// OwnerKind enumerates the business objects criteria can attach to.
type OwnerKind string

const (
	OwnerDiscount       OwnerKind = "discount"
	OwnerShippingMethod OwnerKind = "shipping_method"
	OwnerPaymentMethod  OwnerKind = "payment_method"
)

// validOwnerKinds is the single source of truth for owner kinds.
var validOwnerKinds = map[OwnerKind]bool{
	OwnerDiscount:       true,
	OwnerShippingMethod: true,
	OwnerPaymentMethod:  true,
}

func ParseOwnerKind(s string) (OwnerKind, error) {
	k := OwnerKind(s)
	if !validOwnerKinds[k] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown owner kind %q", s)
	}
	return k, nil
}

func (k OwnerKind) String() string { return string(k) }

// OwnerRef identifies one business object owning a criteria set.
type OwnerRef struct {
	Kind OwnerKind
	ID   string
}

// ParseOwnerRef validates both halves of an owner reference.
func ParseOwnerRef(kind, id string) (OwnerRef, error) {
	k, err := ParseOwnerKind(kind)
	if err != nil {
		return OwnerRef{}, err
	}
	v, err := parseRef("owner", id)
	if err != nil {
		return OwnerRef{}, err
	}
	return OwnerRef{Kind: k, ID: v}, nil
}

// DiscountOwner is a convenience constructor for the recursive
// discount criterion, which always targets discount owners.
func DiscountOwner(id DiscountID) OwnerRef {
	return OwnerRef{Kind: OwnerDiscount, ID: string(id)}
}

func (o OwnerRef) String() string {
	return fmt.Sprintf("%s:%s", o.Kind, o.ID)
}

// IsZero reports whether the reference is unset.
func (o OwnerRef) IsZero() bool { return o.Kind == "" && o.ID == "" }
