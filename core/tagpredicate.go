package core

// TaggedItem is the minimal view TagPredicate needs of a financial item:
// its tags and its current enabled-by-sim state. Domain packages
// (item.FinancialItem) implement this so core stays domain-agnostic,
// mirroring how generic.ResourceType is a small interface implemented by
// timeoff.Resource/rewards.Resource rather than generic importing either
// domain package (generic/types.go).
type TaggedItem interface {
	ItemID() string
	Tags() []string
	EnabledBySim() bool
}

// TagMatchType selects how a TagPredicate aggregates the candidate set.
type TagMatchType string

const (
	MatchAll  TagMatchType = "All"
	MatchAny  TagMatchType = "Any"
	MatchNone TagMatchType = "None"
)

var tagMatchTypeOrdinals = []string{"All", "Any", "None"}

func (t *TagMatchType) UnmarshalJSON(data []byte) error {
	s, err := DecodeEnum(data, tagMatchTypeOrdinals)
	if err != nil {
		return err
	}
	*t = TagMatchType(s)
	return nil
}

// TagPredicate is a boolean condition over the set of items carrying any
// of the listed tags.
type TagPredicate struct {
	Tags       []string     `json:"tags,omitempty"`
	MatchType  TagMatchType `json:"match_type,omitempty"`
	MatchValue bool         `json:"match_value"`
	Enabled    bool         `json:"enabled"`
}

// Evaluate implements the TagPredicate algorithm: build the
// candidate set (excluding the owner), partition by whether each
// candidate's EnabledBySim equals MatchValue, then combine under
// MatchType. logWarn is called when an empty predicate.Tags list makes an
// All-predicate vacuously true.
func (p TagPredicate) Evaluate(items []TaggedItem, owner TaggedItem, logWarn func(string)) bool {
	var candidates []TaggedItem
	for _, it := range items {
		if it.ItemID() == owner.ItemID() {
			continue
		}
		if hasAnyTag(it.Tags(), p.Tags) {
			candidates = append(candidates, it)
		}
	}

	matched := 0
	for _, c := range candidates {
		if c.EnabledBySim() == p.MatchValue {
			matched++
		}
	}

	switch p.MatchType {
	case MatchAll:
		if len(p.Tags) == 0 && logWarn != nil {
			logWarn("tag predicate has no tags configured; All match is vacuously true")
		}
		if len(p.Tags) == 0 {
			return true
		}
		return len(candidates) > 0 && matched == len(candidates)
	case MatchAny:
		return matched > 0
	case MatchNone:
		return matched == 0
	default:
		return false
	}
}

func hasAnyTag(itemTags, predicateTags []string) bool {
	set := make(map[string]struct{}, len(predicateTags))
	for _, t := range predicateTags {
		set[t] = struct{}{}
	}
	for _, t := range itemTags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
