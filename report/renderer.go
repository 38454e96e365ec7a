package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// titles maps a document kind to the heading printed on its PDF.
var titles = map[documents.Kind]string{
	documents.KindSalesOrder:      "Sales Order",
	documents.KindPurchaseOrder:   "Purchase Order",
	documents.KindCustomerInvoice: "Tax Invoice",
	documents.KindVendorBill:      "Vendor Bill",
}

// Renderer turns a document into a stored PDF artifact. It satisfies the
// document handler's PDFRenderer port.
type Renderer struct {
	client   *Client
	store    ArtifactStore
	business string
	tmpl     *template.Template
	printer  *message.Printer
}

// NewRenderer constructs a renderer. business is the letterhead name.
func NewRenderer(client *Client, store ArtifactStore, business string) *Renderer {
	if business == "" {
		business = "Shiv Furniture"
	}
	// Indian grouping for amounts (1,20,000.00).
	printer := message.NewPrinter(language.MustParse("en-IN"))
	r := &Renderer{client: client, store: store, business: business, printer: printer}
	r.tmpl = template.Must(template.New("document").Funcs(template.FuncMap{
		"money": func(v float64) string {
			return printer.Sprintf("%.2f", v)
		},
	}).Parse(documentTemplate))
	return r
}

// RenderDocument renders the document and stores the PDF, returning its URL.
func (r *Renderer) RenderDocument(ctx context.Context, cfg documents.KindConfig, doc documents.Document) (string, error) {
	html, err := r.buildHTML(cfg, doc)
	if err != nil {
		return "", fmt.Errorf("build html: %w", err)
	}
	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return "", err
	}
	name := strings.ToLower(doc.Number) + ".pdf"
	return r.store.Save(ctx, name, pdf)
}

func (r *Renderer) buildHTML(cfg documents.KindConfig, doc documents.Document) (string, error) {
	title, ok := titles[cfg.Kind]
	if !ok {
		title = "Document"
	}
	data := map[string]any{
		"Business": r.business,
		"Title":    title,
		"Doc":      doc,
		"Payable":  cfg.Payable,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Doc.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; margin: 32px; }
h1 { font-size: 20px; margin: 0; }
.head { display: flex; justify-content: space-between; margin-bottom: 24px; }
.meta { text-align: right; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border-bottom: 1px solid #ddd; padding: 6px 8px; text-align: left; }
th { background: #f5f5f5; text-transform: uppercase; font-size: 10px; letter-spacing: 0.05em; }
td.num, th.num { text-align: right; }
.totals { margin-top: 16px; width: 40%; margin-left: auto; }
.totals td { border: none; padding: 3px 8px; }
.totals tr.grand td { border-top: 2px solid #1a1a1a; font-weight: bold; }
</style>
</head>
<body>
<div class="head">
  <div>
    <h1>{{.Business}}</h1>
    <p>{{.Title}}</p>
  </div>
  <div class="meta">
    <p><strong>{{.Doc.Number}}</strong></p>
    <p>Date: {{.Doc.DocumentDate.Format "02 Jan 2006"}}</p>
    {{if .Doc.DueDate}}<p>Due: {{.Doc.DueDate.Format "02 Jan 2006"}}</p>{{end}}
    <p>{{.Doc.ContactName}}</p>
  </div>
</div>
<table>
  <tr>
    <th>#</th><th>Item</th><th class="num">Qty</th><th class="num">Unit Price</th>
    <th class="num">Tax %</th><th class="num">Tax</th><th class="num">Total</th>
  </tr>
  {{range $i, $item := .Doc.Items}}
  <tr>
    <td>{{$item.LineOrder}}</td>
    <td>{{$item.ProductName}}{{if $item.ProductSKU}} ({{$item.ProductSKU}}){{end}}</td>
    <td class="num">{{$item.Quantity}}{{if $item.Unit}} {{$item.Unit}}{{end}}</td>
    <td class="num">{{money $item.UnitPrice}}</td>
    <td class="num">{{$item.TaxRatePercent}}</td>
    <td class="num">{{money $item.TaxAmount}}</td>
    <td class="num">{{money $item.LineTotal}}</td>
  </tr>
  {{end}}
</table>
<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{money .Doc.Subtotal}}</td></tr>
  <tr><td>Tax</td><td class="num">{{money .Doc.TaxTotal}}</td></tr>
  <tr class="grand"><td>Total</td><td class="num">{{money .Doc.Total}}</td></tr>
  {{if .Payable}}
  <tr><td>Paid</td><td class="num">{{money .Doc.AmountPaid}}</td></tr>
  <tr><td>Amount Due</td><td class="num">{{money .Doc.AmountDue}}</td></tr>
  {{end}}
</table>
</body>
</html>`
