package config

import (
	"sort"
	"time"

	"github.com/falculator/falculator/core"
	"github.com/falculator/falculator/item"
)

// SanitizationReport is the diff Sanitize hands back to the caller instead
// of mutating silently: every auto-correction it made, plus a non-nil
// Fatal if the config cannot be run at all.
type SanitizationReport struct {
	Corrections []core.SanitizationCorrection
	Fatal       error
}

func (r *SanitizationReport) add(c core.SanitizationCorrection) {
	r.Corrections = append(r.Corrections, c)
}

// Sanitize runs the ten-step normalization pipeline and returns the
// corrected Config alongside a report of everything it changed. Running
// the simulator on a Config that has not been through Sanitize is
// undefined; Sanitize itself is idempotent (running it twice produces the
// same Config and an empty second report).
func (c *Config) Sanitize() (*Config, *SanitizationReport) {
	report := &SanitizationReport{}

	ids := core.NewIdRegistry()
	c.assignIDs(ids, report)

	c.normalizeTopLevel(report)

	if len(c.Items) == 0 {
		c.Items = append(c.Items, defaultMainSavingsItem(ids))
		report.add(core.SanitizationCorrection{
			Field: "items", Message: "no items configured; synthesized a default main savings item",
		})
	}

	for _, fi := range c.Items {
		fi.Sanitize(&report.Corrections)
	}

	if !c.resolveMainSavings(ids, report) {
		return c, report
	}

	c.dedupeEvalOrder(report)

	tags := core.NewTagRegistry()
	for _, fi := range c.Items {
		tags.AddAll(fi.TagsList)
	}
	c.validateTagReferences(tags, report)

	c.resolveEventTargets(report)

	return c, report
}

func (c *Config) assignIDs(ids *core.IdRegistry, report *SanitizationReport) {
	for _, fi := range c.Items {
		id, collided := ids.EnsureID(fi.ID)
		fi.ID = id
		if collided {
			report.add(core.SanitizationCorrection{
				ItemID: id, Field: "id", Message: "id collided with another entity; regenerated",
			})
		}
		for i := range fi.Events {
			evID, evCollided := ids.EnsureID(fi.Events[i].ID)
			fi.Events[i].ID = evID
			if evCollided {
				report.add(core.SanitizationCorrection{
					ItemID: fi.ID, Field: "events." + evID,
					Message: "event id collided with another entity; regenerated",
				})
			}
		}
	}
}

func (c *Config) normalizeTopLevel(report *SanitizationReport) {
	c.Version = 1

	if c.EndOfFY.IsZero() {
		c.EndOfFY = defaultEndOfFY(time.Now().Year())
	}
	if c.YearsToSim < 1 {
		c.YearsToSim = 1
		report.add(core.SanitizationCorrection{Field: "years_to_sim", Message: "clamped to minimum of 1"})
	}
	if c.StartDateIsToday {
		c.StartDate = core.Today()
	}
	if c.StartDate.Before(c.BirthDate) {
		report.add(core.SanitizationCorrection{
			Field: "start_date", Message: "start_date is before birth_date",
		})
	}
}

// defaultMainSavingsItem builds the item synthesized when a Config has no
// items at all, or when main-savings resolution comes up empty.
func defaultMainSavingsItem(ids *core.IdRegistry) *item.FinancialItem {
	return &item.FinancialItem{
		ID:            ids.Generate(),
		Name:          "Main Savings",
		Type:          item.TypeSavings,
		Value:         core.Zero,
		StartEnabled:  true,
		IsMainSavings: true,
		IsLiquidAsset: true,
		StartDate:     core.NewSimDate(1970, time.January, 1),
		EndDate:       core.Today().AddYears(100),
		Interest:      core.AmountFreq{IsPercentage: true, PercentageBasis: core.BasisSource},
		CashIn:        core.AmountFreq{PercentageBasis: core.BasisSource},
		CashOut:       core.AmountFreq{PercentageBasis: core.BasisSource},
	}
}

// resolveMainSavings guarantees exactly one item flagged is_main_savings,
// of type Savings, eval_order 0, start_enabled, never user-disabled, a
// liquid asset, with an end_date far enough out that it never naturally
// expires. Returns false if the result is fatal (two or more candidates).
func (c *Config) resolveMainSavings(ids *core.IdRegistry, report *SanitizationReport) bool {
	var candidates []int
	for i, fi := range c.Items {
		if fi.IsMainSavings {
			candidates = append(candidates, i)
		}
	}

	switch len(candidates) {
	case 0:
		synth := defaultMainSavingsItem(ids)
		c.Items = append(c.Items, synth)
		c.MainSavingsIdx = len(c.Items) - 1
		report.add(core.SanitizationCorrection{
			Field: "main_savings", Message: "no item flagged is_main_savings; synthesized one",
		})
	case 1:
		c.MainSavingsIdx = candidates[0]
	default:
		report.Fatal = &core.SanitizationFatalError{
			Reason: core.ErrMultipleMainSavings,
			Detail: "more than one item has is_main_savings set; simulation refuses to start",
		}
		return false
	}

	main := c.Items[c.MainSavingsIdx]
	if main.Type != item.TypeSavings {
		main.Type = item.TypeSavings
		report.add(core.SanitizationCorrection{ItemID: main.ID, Field: "type", Message: "main savings item forced to Savings"})
	}
	main.EvalOrder = 0
	if !main.StartEnabled {
		main.StartEnabled = true
		report.add(core.SanitizationCorrection{ItemID: main.ID, Field: "start_enabled", Message: "main savings item forced start_enabled"})
	}
	if main.DisabledByUser {
		main.DisabledByUser = false
		report.add(core.SanitizationCorrection{ItemID: main.ID, Field: "disabled_by_user", Message: "main savings item cannot be user-disabled"})
	}
	if !main.IsLiquidAsset {
		main.IsLiquidAsset = true
		report.add(core.SanitizationCorrection{ItemID: main.ID, Field: "is_liquid_asset", Message: "main savings item forced is_liquid_asset"})
	}
	minEndDate := core.Today().AddYears(95)
	if main.EndDate.Before(minEndDate) {
		main.EndDate = core.Today().AddYears(100)
		report.add(core.SanitizationCorrection{ItemID: main.ID, Field: "end_date", Message: "main savings item end_date extended past 95 years"})
	}
	return true
}

// dedupeEvalOrder ensures eval_order values are distinct; any
// collision is broken by shifting the later-declared conflicting item
// upward, preserving the relative order items were declared in.
func (c *Config) dedupeEvalOrder(report *SanitizationReport) {
	order := make([]int, len(c.Items))
	for i := range c.Items {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.Items[order[a]].EvalOrder < c.Items[order[b]].EvalOrder
	})

	seen := make(map[int]bool)
	next := 1 // main savings keeps 0
	for _, idx := range order {
		fi := c.Items[idx]
		if fi.IsMainSavings {
			seen[0] = true
			continue
		}
		for seen[fi.EvalOrder] || fi.EvalOrder <= 0 {
			if fi.EvalOrder <= 0 {
				fi.EvalOrder = next
			} else {
				fi.EvalOrder++
			}
		}
		if !seen[fi.EvalOrder] {
			seen[fi.EvalOrder] = true
		}
		for next <= fi.EvalOrder {
			next++
		}
	}
	_ = report
}

// validateTagReferences ensures every tag a TagPredicate names
// must appear somewhere in the union of all items' tags, or the predicate
// is disabled.
func (c *Config) validateTagReferences(tags *core.TagRegistry, report *SanitizationReport) {
	for _, fi := range c.Items {
		validateTagPredicates(fi.SelfTrigger.TagRules, tags, report, fi.ID, "self_trigger")
		for i := range fi.Events {
			validateTagPredicates(fi.Events[i].Triggers.TagRules, tags, report, fi.ID, "events."+fi.Events[i].ID)
		}
	}
}

func validateTagPredicates(rules []core.TagPredicate, tags *core.TagRegistry, report *SanitizationReport, ownerID, field string) {
	for i := range rules {
		if !tags.HasAll(rules[i].Tags) {
			rules[i].Enabled = false
			report.add(core.SanitizationCorrection{
				ItemID: ownerID, Field: field + ".tag_rules",
				Message: "tag predicate references an unknown tag; disabled",
			})
		}
	}
}

// resolveEventTargets ensures an EventItem's target_id resolves
// to a different item in the same Config, falling back to target_name,
// otherwise the event is disabled.
func (c *Config) resolveEventTargets(report *SanitizationReport) {
	byID := make(map[string]*item.FinancialItem, len(c.Items))
	byName := make(map[string]*item.FinancialItem, len(c.Items))
	for _, fi := range c.Items {
		byID[fi.ID] = fi
		byName[fi.Name] = fi
	}

	for _, fi := range c.Items {
		for i := range fi.Events {
			ev := &fi.Events[i]
			target := byID[ev.TargetID]
			if target == nil && ev.TargetName != "" {
				target = byName[ev.TargetName]
			}
			if target == nil || target.ID == fi.ID {
				ev.Enabled = false
				report.add(core.SanitizationCorrection{
					ItemID: fi.ID, Field: "events." + ev.ID + ".target_id",
					Message: "event target does not resolve or references itself; disabled",
				})
				continue
			}
			ev.TargetID = target.ID
			ev.TargetName = target.Name
		}
	}
}
