package services

import (
	"errors"
	"fmt"
	"strings"

	"renovapro-backend/models"
)

// ErrNoTemplate means no template could be resolved for a notice; the
// notice is dropped, not the batch.
var ErrNoTemplate = errors.New("no applicable message template")

// TemplateVars are the values substituted into a message template. Built
// once at the boundary from a customer and a day count.
type TemplateVars struct {
	Name   string
	Plan   string
	Amount float64
	Days   int
}

func VarsForCustomer(c *models.Customer, days int) TemplateVars {
	return TemplateVars{
		Name:   c.Name,
		Plan:   c.PlanName,
		Amount: c.PlanPrice,
		Days:   days,
	}
}

// Render substitutes {name}, {plan}, {amount} and {days} in the template
// body. Unknown placeholders are left verbatim. Pure and safe for
// concurrent use.
func Render(body string, vars TemplateVars) string {
	out := body
	out = strings.ReplaceAll(out, "{name}", vars.Name)
	out = strings.ReplaceAll(out, "{plan}", vars.Plan)
	out = strings.ReplaceAll(out, "{amount}", fmt.Sprintf("R$ %.2f", vars.Amount))

	days := vars.Days
	if days < 0 {
		days = -days
	}
	out = strings.ReplaceAll(out, "{days}", fmt.Sprintf("%d", days))

	return out
}

// ResolveTemplate finds the template for a notice: the customer's own
// template when set and active, else the default for (product, kind), else
// the GENERAL default for that kind.
func ResolveTemplate(store RecordStore, c *models.Customer, kind string) (*models.MessageTemplate, error) {
	if c.TemplateID != nil {
		if t, err := store.GetTemplate(*c.TemplateID); err == nil && t.IsActive {
			return t, nil
		}
	}

	if t, err := store.GetDefaultTemplate(c.ProductType, kind); err == nil {
		return t, nil
	}

	if t, err := store.GetDefaultTemplate(models.ProductGeneral, kind); err == nil {
		return t, nil
	}

	return nil, ErrNoTemplate
}

// TemplateKindForNotice maps a notice kind to the template kind used to
// resolve defaults. Both notice kinds are expiration reminders.
func TemplateKindForNotice(noticeKind string) string {
	switch noticeKind {
	case models.NoticeKindLeadTime, models.NoticeKindDueToday:
		return models.TemplateKindExpiration
	default:
		return models.TemplateKindCustom
	}
}
