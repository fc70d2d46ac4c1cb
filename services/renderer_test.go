package services

import (
	"testing"

	"renovapro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	body := "Olá {name}! Seu plano {plan} vence em {days} dia(s). Valor: {amount}."
	out := Render(body, TemplateVars{Name: "João", Plan: "Premium", Amount: 29.9, Days: 3})

	assert.Equal(t, "Olá João! Seu plano Premium vence em 3 dia(s). Valor: R$ 29.90.", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Oi {name}, código {code}", TemplateVars{Name: "Ana"})
	assert.Equal(t, "Oi Ana, código {code}", out)
}

func TestRenderNegativeDaysAbsolute(t *testing.T) {
	out := Render("venceu há {days} dia(s)", TemplateVars{Days: -2})
	assert.Equal(t, "venceu há 2 dia(s)", out)
}

func TestRenderCurrencyFormat(t *testing.T) {
	assert.Equal(t, "R$ 100.00", Render("{amount}", TemplateVars{Amount: 100}))
	assert.Equal(t, "R$ 9.99", Render("{amount}", TemplateVars{Amount: 9.99}))
}

func TestRenderNoPlaceholders(t *testing.T) {
	out := Render("mensagem fixa", TemplateVars{Name: "Ana"})
	assert.Equal(t, "mensagem fixa", out)
}

func TestResolveTemplateCustomerOwn(t *testing.T) {
	store := newFakeStore()
	own := &models.MessageTemplate{
		ID:          uuid.New(),
		ProductType: models.ProductIPTV,
		Kind:        models.TemplateKindExpiration,
		Body:        "custom",
		IsActive:    true,
	}
	store.addTemplate(own)

	c := &models.Customer{ProductType: models.ProductIPTV, TemplateID: &own.ID}
	got, err := ResolveTemplate(store, c, models.TemplateKindExpiration)

	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)
}

func TestResolveTemplateInactiveOwnFallsBack(t *testing.T) {
	store := newFakeStore()
	own := &models.MessageTemplate{
		ID:          uuid.New(),
		ProductType: models.ProductIPTV,
		Kind:        models.TemplateKindExpiration,
		Body:        "custom",
		IsActive:    false,
	}
	store.addTemplate(own)
	store.addTemplate(&models.MessageTemplate{
		ProductType: models.ProductIPTV,
		Kind:        models.TemplateKindExpiration,
		Body:        "product default",
		IsActive:    true,
		IsDefault:   true,
	})

	c := &models.Customer{ProductType: models.ProductIPTV, TemplateID: &own.ID}
	got, err := ResolveTemplate(store, c, models.TemplateKindExpiration)

	require.NoError(t, err)
	assert.Equal(t, "product default", got.Body)
}

func TestResolveTemplateGeneralFallback(t *testing.T) {
	store := newFakeStore()
	store.addTemplate(&models.MessageTemplate{
		ProductType: models.ProductGeneral,
		Kind:        models.TemplateKindExpiration,
		Body:        "general default",
		IsActive:    true,
		IsDefault:   true,
	})

	c := &models.Customer{ProductType: models.ProductVPN}
	got, err := ResolveTemplate(store, c, models.TemplateKindExpiration)

	require.NoError(t, err)
	assert.Equal(t, "general default", got.Body)
}

func TestResolveTemplateNone(t *testing.T) {
	store := newFakeStore()
	c := &models.Customer{ProductType: models.ProductVPN}

	_, err := ResolveTemplate(store, c, models.TemplateKindExpiration)
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestTemplateKindForNotice(t *testing.T) {
	assert.Equal(t, models.TemplateKindExpiration, TemplateKindForNotice(models.NoticeKindLeadTime))
	assert.Equal(t, models.TemplateKindExpiration, TemplateKindForNotice(models.NoticeKindDueToday))
	assert.Equal(t, models.TemplateKindCustom, TemplateKindForNotice(models.NoticeKindManual))
}
