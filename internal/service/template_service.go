// internal/service/template_service.go
package service

import (
	"strings"

	"github.com/unclebandit/donorlink-backend/internal/model"
)

// DefaultMessageTemplate is the outreach body used when none is configured.
const DefaultMessageTemplate = "Need blood donation. Please contact {admin_contact} if available."

// RenderTemplate fills {key} placeholders in a single pass, so values that
// themselves look like placeholders are left as they are.
func RenderTemplate(template string, data map[string]string) string {
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RenderOutreachMessage fills {name}, {blood_group}, {city} and {admin_contact}.
func RenderOutreachMessage(template string, d model.Donor, adminContact string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultMessageTemplate
	}
	return RenderTemplate(template, map[string]string{
		"name":          d.Name,
		"blood_group":   string(d.BloodGroup),
		"city":          d.City,
		"admin_contact": adminContact,
	})
}
