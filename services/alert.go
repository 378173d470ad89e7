package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"pricetrack/models"

	"github.com/PuerkitoBio/goquery"
)

// PriceAlert is a rendered price-drop message
type PriceAlert struct {
	Subject  string
	HTMLBody string
	TextBody string
}

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 600px; margin: 0 auto; padding: 16px;">
    <h2>Good news! The price dropped.</h2>
    {{if .ImageURL}}<p><img src="{{.ImageURL}}" alt="{{.Name}}" style="max-width: 240px;"></p>{{end}}
    <p><strong>{{.Name}}</strong></p>
    <p>Current price: <strong>{{.CurrentPrice}}</strong></p>
    <p>Your target price: {{.TargetPrice}}</p>
    {{if .Savings}}<p>That is {{.Savings}} ({{.SavingsPercent}}%) below the first price we saw.</p>{{end}}
    <p><a href="{{.URL}}">View the product</a></p>
    <p style="font-size: 12px; color: #6b7280;">You will not receive another alert for this product.</p>
  </div>
</body>
</html>`))

type alertView struct {
	Name           string
	URL            string
	ImageURL       string
	CurrentPrice   string
	TargetPrice    string
	Savings        string
	SavingsPercent string
}

// BuildPriceAlert renders the alert for a product whose target was reached
func BuildPriceAlert(p *models.TrackedProduct) (PriceAlert, error) {
	name := p.Name
	if name == "" {
		name = models.UnknownProductName
	}

	view := alertView{
		Name:        name,
		URL:         p.URL,
		ImageURL:    p.ImageURL,
		TargetPrice: p.TargetPrice.StringFixed(2),
	}
	if p.CurrentPrice.Valid {
		view.CurrentPrice = p.CurrentPrice.Decimal.StringFixed(2)
	}
	if diff := p.PriceDifference(); diff.IsPositive() {
		view.Savings = diff.StringFixed(2)
		view.SavingsPercent = p.PriceDifferencePercentage().StringFixed(1)
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, view); err != nil {
		return PriceAlert{}, fmt.Errorf("failed to render price alert: %w", err)
	}
	htmlBody := buf.String()

	return PriceAlert{
		Subject:  "Price Drop Alert for " + name,
		HTMLBody: htmlBody,
		TextBody: stripTags(htmlBody),
	}, nil
}

// stripTags turns an HTML body into readable plain text
func stripTags(htmlBody string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return htmlBody
	}
	var lines []string
	doc.Find("h2, p").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if href, ok := s.Find("a").Attr("href"); ok {
			text += ": " + href
		}
		if text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}
