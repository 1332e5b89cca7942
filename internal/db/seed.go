package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

// Seed inserts the starter task templates, local services and FAQ entries.
// It is a no-op when the corresponding tables already contain rows, so it is
// safe to run on every startup.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.TaskTemplate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: count templates: %w", err)
	}
	if count == 0 {
		if err := conn.Create(defaultTemplates()).Error; err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
	}

	if err := conn.Model(&models.LocalService{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: count services: %w", err)
	}
	if count == 0 {
		if err := conn.Create(defaultServices()).Error; err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
	}

	if err := conn.Model(&models.FaqEntry{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed: count faq: %w", err)
	}
	if count == 0 {
		if err := conn.Create(defaultFaq()).Error; err != nil {
			return fmt.Errorf("seed faq: %w", err)
		}
	}

	return nil
}

func defaultTemplates() []models.TaskTemplate {
	return []models.TaskTemplate{
		{
			Title:           "Check your visa conditions",
			Description:     "Understand your visa responsibilities and any work/study limits.",
			Category:        models.CategoryLegal,
			DefaultPriority: "URGENT",
			SortOrder:       5,
		},
		{
			Title:           "Register with a GP (NHS)",
			Description:     "Find a local GP practice and complete NHS registration.",
			Category:        models.CategoryHealthcare,
			DefaultPriority: "HIGH",
			OfficialURL:     "https://www.nhs.uk/nhs-services/gps/how-to-register-with-a-gp-surgery/",
			SortOrder:       10,
		},
		{
			Title:           "Student: Collect BRP / check eVisa (if applicable)",
			Description:     "Confirm your immigration status documentation and deadlines.",
			Category:        models.CategoryLegal,
			DefaultPriority: "HIGH",
			VisaTypeMatch:   "Student",
			SortOrder:       15,
		},
		{
			Title:           "Apply for a National Insurance Number (NIN)",
			Description:     "If eligible, apply for a National Insurance number to work and pay tax.",
			Category:        models.CategoryLegal,
			DefaultPriority: "HIGH",
			OfficialURL:     "https://www.gov.uk/apply-national-insurance-number",
			SortOrder:       20,
		},
		{
			Title:           "Open a UK bank account",
			Description:     "Choose a bank and prepare documents (ID, proof of address, etc.).",
			Category:        models.CategoryFinancial,
			DefaultPriority: "MEDIUM",
			SortOrder:       30,
		},
		{
			Title:           "Get a UK SIM / mobile plan",
			Description:     "Compare providers and pick pay-as-you-go or contract.",
			Category:        models.CategoryConnectivity,
			DefaultPriority: "LOW",
			SortOrder:       40,
		},
	}
}

func defaultServices() []models.LocalService {
	return []models.LocalService{
		{Name: "NHS GP Finder", Category: "GP", City: "London", Website: "https://www.nhs.uk/service-search/find-a-gp", Description: "Find GP practices near you."},
		{Name: "HSBC UK", Category: "BANK", City: "London", Website: "https://www.hsbc.co.uk/", Description: "Bank accounts and student options."},
		{Name: "Giffgaff", Category: "MOBILE", City: "London", Website: "https://www.giffgaff.com/", Description: "Flexible SIM plans."},
	}
}

func defaultFaq() []models.FaqEntry {
	return []models.FaqEntry{
		{
			Topic:       "NIN",
			Question:    "Do all newcomers need a National Insurance Number?",
			Answer:      "Not everyone needs one immediately. It's generally needed for working and tax/benefits. If you plan to work, check eligibility and apply via GOV.UK.",
			OfficialURL: "https://www.gov.uk/apply-national-insurance-number",
		},
		{
			Topic:       "GP",
			Question:    "How do I register with a GP in the UK?",
			Answer:      "Use the NHS service search to find a GP practice near your address and follow their registration process. Requirements vary slightly by practice.",
			OfficialURL: "https://www.nhs.uk/nhs-services/gps/how-to-register-with-a-gp-surgery/",
		},
	}
}
