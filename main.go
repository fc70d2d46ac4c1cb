package main

import (
	"fmt"
	"log"
	"os"

	"renovapro-backend/config"
	"renovapro-backend/controllers"
	"renovapro-backend/models"
	"renovapro-backend/routes"
	"renovapro-backend/services"
	"renovapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Renewal{},
		&models.MessageTemplate{},
		&models.MessageLog{},
		&models.Setting{},
	)

	seedSettings()
	seedTemplates()
}

func main() {
	store := services.NewGormStore(config.DB)
	transport := buildTransport()
	deliveryLog := utils.NewFileLog("logs/delivery.log")
	governor := services.NewGovernor(store)
	deliverer := services.NewDeliverer(store, transport, deliveryLog)
	polisher := services.NewPolisher(store)
	notifier := services.NewNotifier(store, transport, governor, deliverer, polisher, deliveryLog)

	controllers.SetServiceContext(&controllers.ServiceContext{
		Store:       store,
		Transport:   transport,
		Deliverer:   deliverer,
		Notifier:    notifier,
		DeliveryLog: deliveryLog,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

// buildTransport picks the chat channel from settings. wweb talks to the
// local WhatsApp Web sidecar, twilio uses the Twilio WhatsApp API.
func buildTransport() services.Transport {
	channel, _ := models.GetSetting(config.DB, "whatsapp_channel", "wweb").(string)
	if channel == "twilio" {
		return services.NewTwilioTransport()
	}

	baseURL := os.Getenv("WHATSAPP_SERVICE_URL")
	return services.NewWWebTransport(baseURL)
}

// seedSettings writes the default configuration rows. Existing keys are left
// untouched.
func seedSettings() {
	var count int64
	config.DB.Model(&models.Setting{}).Count(&count)
	if count > 0 {
		return
	}

	type seed struct {
		key         string
		value       interface{}
		typ         string
		category    string
		description string
	}

	defaults := []seed{
		{"whatsapp_enabled", false, models.SettingTypeBoolean, models.SettingCategoryWhatsApp, "Notification scheduler enabled"},
		{"whatsapp_channel", "wweb", models.SettingTypeString, models.SettingCategoryWhatsApp, "Chat channel: wweb or twilio"},
		{services.SettingMessageInterval, 60, models.SettingTypeInteger, models.SettingCategoryWhatsApp, "Seconds between outbound messages"},
		{services.SettingWindowStart, "08:00", models.SettingTypeString, models.SettingCategoryWhatsApp, "Operating window start (HH:MM)"},
		{services.SettingWindowEnd, "22:00", models.SettingTypeString, models.SettingCategoryWhatsApp, "Operating window end (HH:MM)"},
		{services.SettingWeekdays, []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
			models.SettingTypeJSON, models.SettingCategoryWhatsApp, "Weekdays automated sends are allowed"},
		{"notification_default_lead_days", 3, models.SettingTypeInteger, models.SettingCategoryNotification, "Default advance-notice days"},
		{services.SettingAIEnabled, false, models.SettingTypeBoolean, models.SettingCategoryAI, "Rewrite reminders through an AI provider"},
		{services.SettingAIBaseURL, "", models.SettingTypeString, models.SettingCategoryAI, "OpenAI-compatible API base URL"},
		{services.SettingAIAPIKey, "", models.SettingTypeString, models.SettingCategoryAI, "AI provider API key"},
		{services.SettingAIModel, "gpt-4o-mini", models.SettingTypeString, models.SettingCategoryAI, "AI model name"},
		{services.SettingAITone, "professional", models.SettingTypeString, models.SettingCategoryAI, "Tone for rewritten reminders"},
		{"system_company_name", "RenovaPro", models.SettingTypeString, models.SettingCategorySystem, "Company name shown in the panel"},
	}

	for _, s := range defaults {
		if _, err := models.SetSetting(config.DB, s.key, s.value, s.typ, s.category, s.description); err != nil {
			log.Printf("seed: failed to write setting %s: %v", s.key, err)
		}
	}
	log.Println("Seeded default settings")
}

// seedTemplates creates one default expiration and renewal template per
// product type when the table is empty.
func seedTemplates() {
	var count int64
	config.DB.Model(&models.MessageTemplate{}).Count(&count)
	if count > 0 {
		return
	}

	placeholders := models.StringList{"{name}", "{plan}", "{amount}", "{days}"}

	expirationBody := "Olá {name}! Seu plano {plan} vence em {days} dia(s). " +
		"Renove por {amount} e continue aproveitando sem interrupção."
	renewalBody := "Olá {name}! Recebemos sua renovação do plano {plan} no valor de {amount}. Obrigado!"

	products := []string{models.ProductIPTV, models.ProductVPN, models.ProductOther, models.ProductGeneral}
	for _, product := range products {
		templates := []models.MessageTemplate{
			{
				Name:         "Aviso de vencimento " + product,
				ProductType:  product,
				Kind:         models.TemplateKindExpiration,
				Body:         expirationBody,
				Placeholders: placeholders,
				IsActive:     true,
				IsDefault:    true,
			},
			{
				Name:         "Confirmação de renovação " + product,
				ProductType:  product,
				Kind:         models.TemplateKindRenewal,
				Body:         renewalBody,
				Placeholders: placeholders,
				IsActive:     true,
				IsDefault:    true,
			},
		}
		for i := range templates {
			if err := config.DB.Create(&templates[i]).Error; err != nil {
				log.Printf("seed: failed to create template %s: %v", templates[i].Name, err)
			}
		}
	}
	log.Println("Seeded default message templates")
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
