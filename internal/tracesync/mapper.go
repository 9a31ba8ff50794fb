package tracesync

import (
	"fmt"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/spendsense/spendsense/internal/domain"
)

// TraceToNotionProperties converts a recommendation and its decision trace
// into Notion properties for the decision-trace review database.
func TraceToNotionProperties(rec domain.Recommendation, trace domain.DecisionTrace) notionapi.Properties {
	props := notionapi.Properties{
		"Recommendation ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.RecommendationID,
					},
				},
			},
		},
		"User": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.UserID,
					},
				},
			},
		},
		"Window": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Window),
			},
		},
		"Persona": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(trace.PersonaMatch),
			},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Type),
			},
		},
		"Shown At": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(rec.ShownAt)
					return &d
				}(),
			},
		},
		"Superseded": notionapi.CheckboxProperty{
			Checkbox: rec.Superseded,
		},
		"Tone Check": notionapi.CheckboxProperty{
			Checkbox: trace.Guardrails.ToneCheck,
		},
		"Eligibility Check": notionapi.CheckboxProperty{
			Checkbox: trace.Guardrails.EligibilityCheck,
		},
		"Template Fallback": notionapi.CheckboxProperty{
			Checkbox: trace.TemplateFallback,
		},
	}

	if rec.Title != "" {
		props["Title"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Title,
					},
				},
			},
		}
	}

	if rec.Rationale != "" {
		props["Rationale"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Rationale,
					},
				},
			},
		}
	}

	if trace.TemplateID != "" {
		props["Template"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: trace.TemplateID,
			},
		}
	}

	if summary := formatCitations(trace.SignalsUsed); summary != "" {
		props["Signals Used"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: summary,
					},
				},
			},
		}
	}

	return props
}

// formatCitations renders signal citations as one line per citation, e.g.
// "credit_utilization_visa_4523 = 0.68 (threshold 0.5)".
func formatCitations(citations []domain.SignalCitation) string {
	lines := make([]string, 0, len(citations))
	for _, c := range citations {
		if c.Threshold != 0 {
			lines = append(lines, fmt.Sprintf("%s = %v (threshold %v)", c.Signal, c.Value, c.Threshold))
		} else {
			lines = append(lines, fmt.Sprintf("%s = %v", c.Signal, c.Value))
		}
	}
	return strings.Join(lines, "\n")
}

// extractRecommendationID extracts the recommendation ID from a Notion
// page's properties. Returns empty string if not found.
func extractRecommendationID(page notionapi.Page) string {
	if prop, ok := page.Properties["Recommendation ID"]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
