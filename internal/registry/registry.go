// Package registry keeps the list of named resources this tool knows how to
// fetch and makes sure each one is fetched at most once per cache directory.
package registry

import (
	"context"
	"fmt"
	"wardroster/lib/cachedir"
	"wardroster/lib/telemetry"
)

const (
	report_registry_refresh = "registry.refresh"
)

// FetchFunc produces the value of a resource. It may read resources that were
// registered before it from the store.
type FetchFunc func(ctx context.Context) (any, error)

type resource struct {
	name  string
	fetch FetchFunc
}

// Registry maps resource names to fetch functions in registration order.
// Resources must be registered after the resources they depend on.
type Registry struct {
	store     cachedir.RawStore
	tel       telemetry.API
	resources []resource
}

func New(store cachedir.RawStore, tel telemetry.API) *Registry {
	return &Registry{
		store: store,
		tel:   telemetry.NewScopedAPI("registry", tel),
	}
}

// Register adds a resource. Registering the same name twice is a programming
// error and panics.
func (r *Registry) Register(name string, fetch FetchFunc) {
	for _, existing := range r.resources {
		if existing.name == name {
			panic(fmt.Sprintf("registry: resource %q registered twice", name))
		}
	}
	r.resources = append(r.resources, resource{name: name, fetch: fetch})
}

// Names returns the registered resource names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.resources))
	for i, res := range r.resources {
		names[i] = res.name
	}
	return names
}

type Result struct {
	Fetched []string
	Skipped []string
}

// Refresh fetches every registered resource that is not in the store yet, one
// at a time and in registration order. Each value is written to the store
// before the next resource is considered. The first failure stops the pass,
// resources written before it stay cached.
func (r *Registry) Refresh(ctx context.Context) (Result, error) {
	var result Result

	for _, res := range r.resources {
		exists, err := r.store.Exists(res.name)
		if err != nil {
			r.tel.ReportBroken(report_registry_refresh, res.name, err)
			return result, fmt.Errorf("%s: %w", res.name, err)
		}
		if exists {
			r.tel.ReportInfo("already present", res.name)
			result.Skipped = append(result.Skipped, res.name)
			continue
		}

		r.tel.ReportInfo("fetching", res.name)
		value, err := res.fetch(ctx)
		if err != nil {
			r.tel.ReportBroken(report_registry_refresh, res.name, err)
			return result, fmt.Errorf("fetch %s: %w", res.name, err)
		}

		err = r.store.Write(res.name, value)
		if err != nil {
			r.tel.ReportBroken(report_registry_refresh, res.name, err)
			return result, fmt.Errorf("store %s: %w", res.name, err)
		}
		result.Fetched = append(result.Fetched, res.name)
	}

	return result, nil
}
