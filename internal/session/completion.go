package session

import (
	"github.com/dshills/codeshell/internal/lang"
	"github.com/dshills/codeshell/internal/logging"
)

// CompletionRequest is the pending completion popover of an item.
type CompletionRequest struct {
	ID          RequestID
	Anchor      Rect
	Prefix      string
	Completions []lang.Completion

	surface Surface
}

// Surface returns the surface the completion will be inserted into.
func (r *CompletionRequest) Surface() Surface { return r.surface }

// Completions coordinates completion popovers and validation results.
type Completions struct {
	m   *Manager
	log *logging.Logger
}

func newCompletions(m *Manager, log *logging.Logger) *Completions {
	return &Completions{m: m, log: log.Component("completions")}
}

// RequestCompletion replaces the item's pending completion. An empty
// candidate list cancels instead.
func (c *Completions) RequestCompletion(item *Item, anchor Rect, surface Surface, prefix string, completions []lang.Completion) (*CompletionRequest, bool) {
	if item == nil || item.closed {
		return nil, false
	}
	if len(completions) == 0 {
		c.CancelCompletion(item)
		return nil, false
	}
	req := &CompletionRequest{
		ID:          newRequestID(),
		Anchor:      anchor,
		Prefix:      prefix,
		Completions: lang.CloneCompletions(completions),
		surface:     surface,
	}
	item.pendingCompletion = req
	c.m.publish(Change{Kind: ChangeCompletion, Item: item})
	return req, true
}

// CancelCompletion clears the item's pending completion, if any.
func (c *Completions) CancelCompletion(item *Item) {
	if item == nil || item.pendingCompletion == nil {
		return
	}
	item.pendingCompletion = nil
	c.m.publish(Change{Kind: ChangeCompletion, Item: item})
}

// PendingCompletion returns the item's pending completion.
func (c *Completions) PendingCompletion(item *Item) (*CompletionRequest, bool) {
	if item == nil || item.pendingCompletion == nil {
		return nil, false
	}
	return item.pendingCompletion, true
}

// AcceptCompletion inserts candidate index of the pending request and
// clears it. Stale ids and out-of-range indexes do nothing.
func (c *Completions) AcceptCompletion(item *Item, id RequestID, index int) bool {
	req, ok := c.PendingCompletion(item)
	if !ok || req.ID != id {
		return false
	}
	if index < 0 || index >= len(req.Completions) {
		return false
	}
	choice := req.Completions[index]
	item.pendingCompletion = nil
	c.m.publish(Change{Kind: ChangeCompletion, Item: item})

	ins, ok := req.surface.(TextInserter)
	if !ok {
		c.log.Warn("surface cannot insert completions", "item", item.path)
		return false
	}
	ins.InsertCompletion(choice.Text(), len([]rune(req.Prefix)))
	return true
}

// ValidationResult replaces the item's validation snapshot wholesale.
func (c *Completions) ValidationResult(item *Item, functions []lang.Symbol, errs, warnings []lang.Diagnostic) {
	if item == nil || item.closed {
		return
	}
	item.validation = lang.ValidationResult{
		Functions: functions,
		Errors:    errs,
		Warnings:  warnings,
	}.Clone()
	if view, ok := item.backend.(DiagnosticsView); ok {
		view.ShowDiagnostics(item.validation.Clone())
	}
	c.m.publish(Change{Kind: ChangeValidation, Item: item})
}

// LastValidation returns the item's latest validation snapshot.
func (c *Completions) LastValidation(item *Item) lang.ValidationResult {
	if item == nil {
		return lang.ValidationResult{}
	}
	return item.validation.Clone()
}
