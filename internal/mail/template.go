package mail

import (
	"bytes"
	"html/template"
)

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"euro": euro,
}).Parse(receiptHTML))

// Render produces the HTML body of the confirmation email.
func Render(r Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const receiptHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #4f46e5; padding: 20px; text-align: center; color: white;">
    <h1 style="margin: 0;">Order Confirmation</h1>
  </div>
  <div style="padding: 20px; border: 1px solid #eee; background-color: #fff;">
    <p>Hello {{.Customer}},</p>
    <p>Thank you for your order! We have received it and it is being processed.</p>
    <div style="margin: 20px 0; padding: 15px; background-color: #f9fafb; border-radius: 5px;">
      <p style="margin: 0;"><strong>Order Number:</strong> #{{.OrderID}}</p>
      <p style="margin: 8px 0 0;"><strong>Order Date:</strong> {{.OrderDate}}</p>
    </div>
    <h2 style="border-bottom: 2px solid #4f46e5; padding-bottom: 10px; color: #4f46e5;">Order Summary</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <thead>
        <tr style="background-color: #f9fafb;">
          <th style="padding: 10px; text-align: left;">Product</th>
          <th style="padding: 10px; text-align: center;">Quantity</th>
          <th style="padding: 10px; text-align: right;">Price</th>
          <th style="padding: 10px; text-align: right;">Total</th>
        </tr>
      </thead>
      <tbody>
        {{- range .Lines}}
        <tr>
          <td style="padding: 10px; border-bottom: 1px solid #eee;">{{.Name}}{{if .Color}} ({{.Color}}){{end}}{{if .Size}} - Size {{.Size}}{{end}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">{{euro .UnitPrice}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">{{euro .LineTotal}}</td>
        </tr>
        {{- end}}
      </tbody>
      <tfoot>
        <tr><td colspan="3" style="padding: 10px; text-align: right;"><strong>Subtotal:</strong></td><td style="padding: 10px; text-align: right;">{{euro .Subtotal}}</td></tr>
        <tr><td colspan="3" style="padding: 10px; text-align: right;"><strong>Shipping:</strong></td><td style="padding: 10px; text-align: right;">{{euro .Shipping}}</td></tr>
        <tr><td colspan="3" style="padding: 10px; text-align: right;"><strong>Tax (20% VAT):</strong></td><td style="padding: 10px; text-align: right;">{{euro .Tax}}</td></tr>
        <tr style="background-color: #f9fafb;"><td colspan="3" style="padding: 10px; text-align: right;"><strong>Total:</strong></td><td style="padding: 10px; text-align: right; font-weight: bold;">{{euro .Total}}</td></tr>
      </tfoot>
    </table>
    <h2 style="border-bottom: 2px solid #4f46e5; padding-bottom: 10px; margin-top: 30px; color: #4f46e5;">Delivery Information</h2>
    <h3 style="margin-bottom: 10px;">Shipping Address</h3>
    <p style="margin: 0; line-height: 1.5;">
      {{.Address.FirstName}} {{.Address.LastName}}<br>
      {{.Address.Address}}<br>
      {{.Address.City}}{{if .Address.PostalCode}}, {{.Address.PostalCode}}{{end}}<br>
      {{.Address.Country}}<br>
      Phone: {{.Address.Phone}}
    </p>
    <h3 style="margin-bottom: 10px;">Payment Method</h3>
    <p style="margin: 0; line-height: 1.5;">
      Cash on Delivery<br>
      Amount to be paid: <strong>{{euro .Total}}</strong><br>
      Please have the exact amount ready upon delivery.
    </p>
    <p style="margin-top: 30px; border-top: 1px solid #eee; padding-top: 20px;">Your order will be delivered within 2-3 business days.</p>
    <p>Thank you for shopping with i Optika!</p>
  </div>
</div>
`
