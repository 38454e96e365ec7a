package analytical

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shiv-furniture/shiverp/internal/catalog"
	"github.com/shiv-furniture/shiverp/internal/documents"
)

// defaultPriority matches what the admin UI pre-fills. Lower wins.
const defaultPriority = 10

// ProductSource resolves catalog products for category and default-account
// rules. *catalog.Service satisfies it.
type ProductSource interface {
	Get(ctx context.Context, id int64) (*catalog.Product, error)
}

// Assigner tags freshly created documents with a cost center by running the
// active auto-analytical models in priority order. When no rule matches it
// falls back to the first line product's default analytical account.
type Assigner struct {
	repo     Repository
	products ProductSource
}

// NewAssigner constructs an Assigner.
func NewAssigner(repo Repository, products ProductSource) *Assigner {
	return &Assigner{repo: repo, products: products}
}

// SuggestAccount implements documents.AnalyticalAssigner. A nil result with a
// nil error means no rule applied.
func (a *Assigner) SuggestAccount(ctx context.Context, doc documents.Document) (*int64, error) {
	models, err := a.repo.ListModels(ctx, true)
	if err != nil {
		return nil, err
	}

	// Product lookups are shared across category rules and the fallback.
	productCache := map[int64]*catalog.Product{}
	lookup := func(id int64) *catalog.Product {
		if p, ok := productCache[id]; ok {
			return p
		}
		p, err := a.products.Get(ctx, id)
		if err != nil {
			p = nil
		}
		productCache[id] = p
		return p
	}

	for _, m := range models {
		if a.matches(m, doc, lookup) {
			accountID := m.AnalyticalAccountID
			return &accountID, nil
		}
	}

	for _, item := range doc.Items {
		if p := lookup(item.ProductID); p != nil && p.AnalyticalAccountID != nil {
			return p.AnalyticalAccountID, nil
		}
	}
	return nil, nil
}

func (a *Assigner) matches(m Model, doc documents.Document, lookup func(int64) *catalog.Product) bool {
	switch m.RuleType {
	case RuleProduct:
		id, err := strconv.ParseInt(m.RuleValue, 10, 64)
		if err != nil {
			return false
		}
		for _, item := range doc.Items {
			if item.ProductID == id {
				return true
			}
		}
	case RuleProductCategory:
		for _, item := range doc.Items {
			if p := lookup(item.ProductID); p != nil && strings.EqualFold(p.Category, m.RuleValue) {
				return true
			}
		}
	case RuleContact:
		id, err := strconv.ParseInt(m.RuleValue, 10, 64)
		if err != nil {
			return false
		}
		return doc.ContactID == id
	case RuleAmountRange:
		min, max, err := parseAmountRange(m.RuleValue)
		if err != nil {
			return false
		}
		return doc.Total >= min && doc.Total <= max
	}
	return false
}

// parseAmountRange splits a "min-max" rule value. Either bound may be empty:
// "-5000" caps only the upper end, "10000-" only the lower.
func parseAmountRange(value string) (min, max float64, err error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: amount range must be min-max", ErrValidation)
	}
	min, max = 0, maxAmount
	if s := strings.TrimSpace(parts[0]); s != "" {
		if min, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, 0, fmt.Errorf("%w: bad range minimum %q", ErrValidation, s)
		}
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		if max, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, 0, fmt.Errorf("%w: bad range maximum %q", ErrValidation, s)
		}
	}
	if min > max {
		return 0, 0, fmt.Errorf("%w: range minimum exceeds maximum", ErrValidation)
	}
	return min, max, nil
}

const maxAmount = 1e15

func validateRuleValue(ruleType RuleType, value string) error {
	switch ruleType {
	case RuleProduct, RuleContact:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: rule value must be an id for %s rules", ErrValidation, ruleType)
		}
	case RuleProductCategory:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: rule value must name a category", ErrValidation)
		}
	case RuleAmountRange:
		if _, _, err := parseAmountRange(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrValidation, ruleType)
	}
	return nil
}
