// Package report turns the cached MLS reports into a static HTML page of
// callings grouped by organization.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"wardroster/internal/resources"
	"wardroster/lib/cachedir"
	"wardroster/lib/scrapers/mls"
)

// MinimumAge is the youngest a member can be to be listed without a calling.
const MinimumAge = 12

// organizationOrder is the order headings appear in, organizations not listed
// here come after these in alphabetical order.
var organizationOrder = []string{
	"Bishopric",
	"Ward Clerk",
	"Elders Quorum",
	"Relief Society",
	"Aaronic Priesthood Quorums",
	"Young Women",
	"Sunday School",
	"Primary",
	"Ward Missionaries",
	"Full-Time Missionaries",
	"Temple and Family History",
	"Activities",
	"Music",
	"Other Callings",
}

type SubGroup struct {
	Key      string
	Callings []mls.Calling
}

type Group struct {
	Heading   string
	SubGroups []SubGroup
}

type Data struct {
	// Groups are ordered by organization, sub groups by first appearance.
	Groups []Group
	// CallingCounts is the number of callings held by each member.
	CallingCounts map[int64]int
	// NoCalling are the members of at least MinimumAge without a calling,
	// sorted by name.
	NoCalling []mls.Member
}

func organizationRank(name string) int {
	idx := slices.Index(organizationOrder, name)
	if idx < 0 {
		return len(organizationOrder)
	}
	return idx
}

// GroupCallings groups callings by organization then by sub organization,
// keeping the order of callings within a sub group.
func GroupCallings(callings []mls.Calling) []Group {
	var groups []Group
	index := map[string]int{}

	for _, c := range callings {
		gi, ok := index[c.Organization]
		if !ok {
			gi = len(groups)
			index[c.Organization] = gi
			groups = append(groups, Group{Heading: c.Organization})
		}
		group := &groups[gi]

		key := c.SubOrgKey()
		si := slices.IndexFunc(group.SubGroups, func(s SubGroup) bool {
			return s.Key == key
		})
		if si < 0 {
			group.SubGroups = append(group.SubGroups, SubGroup{Key: key})
			si = len(group.SubGroups) - 1
		}
		group.SubGroups[si].Callings = append(group.SubGroups[si].Callings, c)
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		return cmp.Or(
			cmp.Compare(organizationRank(a.Heading), organizationRank(b.Heading)),
			strings.Compare(a.Heading, b.Heading),
		)
	})
	return groups
}

func CountCallings(callings []mls.Calling) map[int64]int {
	counts := map[int64]int{}
	for _, c := range callings {
		counts[c.Id]++
	}
	return counts
}

// WithoutCalling filters members down to those old enough to hold a calling
// that do not appear in counts, sorted by name.
func WithoutCalling(members []mls.Member, counts map[int64]int) []mls.Member {
	var out []mls.Member
	for _, m := range members {
		if m.Age < MinimumAge || counts[m.Id] > 0 {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b mls.Member) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Build reads the cached reports. The members without callings report is
// used when present, otherwise they are worked out from the member list.
func Build(store cachedir.RawStore) (Data, error) {
	callings, err := cachedir.ReadOr[[]mls.Calling](store, resources.MembersWithCallings, nil)
	if err != nil {
		return Data{}, err
	}
	exists, err := store.Exists(resources.MembersWithCallings)
	if err != nil {
		return Data{}, err
	}
	if !exists {
		return Data{}, fmt.Errorf("%w: %s", resources.ErrMissingDependency, resources.MembersWithCallings)
	}

	counts := CountCallings(callings)

	members, err := cachedir.ReadOr[[]mls.Member](store, resources.MembersWithoutCallings, nil)
	if err != nil {
		return Data{}, err
	}
	if members == nil {
		members, err = cachedir.ReadOr[[]mls.Member](store, resources.MemberList, nil)
		if err != nil {
			return Data{}, err
		}
	}

	return Data{
		Groups:        GroupCallings(callings),
		CallingCounts: counts,
		NoCalling:     WithoutCalling(members, counts),
	}, nil
}
