// Package resources declares the MLS reports cached by this tool and the
// order they are fetched in.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"wardroster/internal/registry"
	"wardroster/lib/cachedir"
)

const (
	UnitNumber             = "unit_number"
	MemberList             = "member_list"
	MembersWithCallings    = "members_with_callings"
	MembersWithoutCallings = "members_without_callings"
)

// Names lists the resources in the order they are fetched.
func Names() []string {
	return []string{UnitNumber, MemberList, MembersWithCallings, MembersWithoutCallings}
}

var ErrMissingDependency = errors.New("dependency has not been fetched")

// Source is the part of the MLS client the resources are fetched with.
type Source interface {
	GetUnitNumber(ctx context.Context) (string, error)
	GetMemberList(ctx context.Context, unitNumber string) (json.RawMessage, error)
	GetMembersWithCallings(ctx context.Context, unitNumber string) (json.RawMessage, error)
	GetMembersWithoutCallings(ctx context.Context, unitNumber string) (json.RawMessage, error)
}

// Register adds every MLS resource to `reg`, unit_number first since the
// reports are requested by unit.
func Register(reg *registry.Registry, src Source, store cachedir.RawStore) {
	reg.Register(UnitNumber, func(ctx context.Context) (any, error) {
		return src.GetUnitNumber(ctx)
	})
	reg.Register(MemberList, byUnit(store, src.GetMemberList))
	reg.Register(MembersWithCallings, byUnit(store, src.GetMembersWithCallings))
	reg.Register(MembersWithoutCallings, byUnit(store, src.GetMembersWithoutCallings))
}

// CachedUnitNumber reads the unit number written by an earlier fetch.
func CachedUnitNumber(store cachedir.RawStore) (string, error) {
	unit, err := cachedir.ReadOr(store, UnitNumber, "")
	if err != nil {
		return "", err
	}
	if unit == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingDependency, UnitNumber)
	}
	return unit, nil
}

func byUnit(
	store cachedir.RawStore,
	get func(ctx context.Context, unitNumber string) (json.RawMessage, error),
) registry.FetchFunc {
	return func(ctx context.Context) (any, error) {
		unit, err := CachedUnitNumber(store)
		if err != nil {
			return nil, err
		}
		return get(ctx, unit)
	}
}
