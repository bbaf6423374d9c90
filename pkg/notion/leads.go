package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Lead is a prospective student pulled from the intake database.
type Lead struct {
	PageID        string
	Name          string
	Email         string
	Phone         string
	CurrentSchool string
	TargetDegree  string
	TargetCountry string
	Mentor        string
	Notes         string
}

// PageToLead extracts a Lead from a Notion page. The Name title property
// is required; everything else is optional.
func PageToLead(page notionapi.Page) (Lead, error) {
	lead := Lead{PageID: page.ID.String()}

	for key, prop := range page.Properties {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			lead.Name = richTextPlain(p.Title)
		case *notionapi.RichTextProperty:
			switch normalizeKey(key) {
			case "school", "current school":
				lead.CurrentSchool = richTextPlain(p.RichText)
			case "notes":
				lead.Notes = richTextPlain(p.RichText)
			case "mentor":
				lead.Mentor = richTextPlain(p.RichText)
			}
		case *notionapi.EmailProperty:
			lead.Email = p.Email
		case *notionapi.PhoneNumberProperty:
			lead.Phone = p.PhoneNumber
		case *notionapi.SelectProperty:
			switch normalizeKey(key) {
			case "target degree", "degree":
				lead.TargetDegree = p.Select.Name
			case "target country", "country":
				lead.TargetCountry = p.Select.Name
			}
		}
	}

	if strings.TrimSpace(lead.Name) == "" {
		return Lead{}, eris.Errorf("notion: lead page %s has no name", lead.PageID)
	}
	return lead, nil
}

// MarkImported sets the page Status to "Imported" so the lead is not
// pulled twice.
func MarkImported(ctx context.Context, c Client, pageID string) error {
	_, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			"Status": notionapi.StatusProperty{
				Status: notionapi.Option{Name: "Imported"},
			},
		},
	})
	if err != nil {
		return eris.Wrapf(err, "notion: mark lead %s imported", pageID)
	}
	return nil
}

func richTextPlain(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range parts {
		sb.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(sb.String())
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
