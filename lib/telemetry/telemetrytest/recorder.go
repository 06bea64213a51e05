// Package telemetrytest provides a telemetry.API that remembers what was
// reported so tests can assert on it.
package telemetrytest

import (
	"fmt"
	"strings"
	"sync"
)

type Kind int

const (
	Broken Kind = iota
	Warning
	Info
	Debug
	Count
)

type Report struct {
	Kind   Kind
	Id     string
	Params []any
}

func (r Report) String() string {
	return fmt.Sprintf("%s %v", r.Id, r.Params)
}

type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(kind Kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any)  { r.add(Broken, id, params) }
func (r *Recorder) ReportWarning(id string, params ...any) { r.add(Warning, id, params) }
func (r *Recorder) ReportInfo(msg string, params ...any)   { r.add(Info, msg, params) }
func (r *Recorder) ReportDebug(msg string, params ...any)  { r.add(Debug, msg, params) }
func (r *Recorder) ReportCount(id string, count int64)     { r.add(Count, id, []any{count}) }

// Reports returns every report of the given kind in the order they were made.
func (r *Recorder) Reports(kind Kind) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Report
	for _, report := range r.reports {
		if report.Kind == kind {
			out = append(out, report)
		}
	}
	return out
}

// Find returns the reports of the given kind whose id contains `substr`.
func (r *Recorder) Find(kind Kind, substr string) []Report {
	var out []Report
	for _, report := range r.Reports(kind) {
		if strings.Contains(report.Id, substr) {
			out = append(out, report)
		}
	}
	return out
}
