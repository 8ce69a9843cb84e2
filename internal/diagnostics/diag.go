// Package diagnostics describes problems in a form the preview page can
// show next to the strip.
package diagnostics

import (
	"errors"
	"time"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/script"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	Time           time.Time      `json:"time"`
}

// Reload describes the outcome of a script reload.
func Reload(path string, err error) Diagnostic {
	if err == nil {
		return Diagnostic{
			Severity: Info,
			Code:     "SCRIPT.RELOADED",
			Summary:  "Script reloaded",
			Evidence: map[string]any{"path": path},
			Time:     time.Now(),
		}
	}
	d := FromError("SCRIPT.RELOAD_FAILED", err)
	d.Summary = "Script reload failed; previous graph still running"
	d.Evidence["path"] = path
	return d
}

// FromError builds an error diagnostic, pulling line numbers out of
// script errors and positions out of graph check errors.
func FromError(code string, err error) Diagnostic {
	d := Diagnostic{
		Severity: Err,
		Code:     code,
		Summary:  "Error",
		Detail:   err.Error(),
		Evidence: map[string]any{},
		Time:     time.Now(),
	}
	var se *script.Error
	var ce *op.CheckError
	switch {
	case errors.As(err, &se):
		d.Evidence["line"] = se.Line
		d.LikelyCauses = []string{"syntax or input error in the script"}
		d.SuggestedFixes = []string{"fix the script at the reported line and save again"}
	case errors.As(err, &ce):
		d.Evidence["order_pos"] = ce.Pos
		d.Evidence["node"] = ce.Node.String()
		d.LikelyCauses = []string{"graph built with a broken child reference"}
	}
	return d
}
