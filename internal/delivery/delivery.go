// Package delivery implements the two mutually exclusive strategies for
// handing a final invoice to the client: direct email with the document
// attached, or a webhook POST to an external automation workflow.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecron24/delmas-app-sub000/internal/mailer"
	"github.com/ecron24/delmas-app-sub000/internal/services"
)

// EmailDeliverer sends the invoice as a PDF attachment.
type EmailDeliverer struct {
	Mailer *mailer.Mailer
}

func NewEmailDeliverer(m *mailer.Mailer) *EmailDeliverer { return &EmailDeliverer{Mailer: m} }

func (d *EmailDeliverer) Deliver(ctx context.Context, req services.DeliveryRequest) (services.DeliveryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return services.DeliveryReceipt{}, err
	}
	body := fmt.Sprintf(
		"Bonjour %s,\n\nVeuillez trouver ci-joint votre facture %s d'un montant de %.2f € TTC.\n\nElle reste disponible pendant une heure à l'adresse suivante :\n%s\n\nCordialement",
		req.ClientName, req.InvoiceNumber, req.TotalTTC, req.DocumentURL,
	)
	msgID, err := d.Mailer.Send(mailer.Message{
		To:             req.ClientEmail,
		Subject:        "Facture " + req.InvoiceNumber,
		Body:           body,
		AttachmentName: req.DocumentFilename,
		Attachment:     req.Attachment,
	})
	if err != nil {
		return services.DeliveryReceipt{}, err
	}
	return services.DeliveryReceipt{MessageID: msgID}, nil
}

// WebhookDeliverer POSTs the dispatch payload to an external automation
// endpoint. A 2xx response is treated as accepted; the response body may
// carry a follow-up storage location to persist onto the invoice.
type WebhookDeliverer struct {
	URL    string
	Client *http.Client
}

func NewWebhookDeliverer(url string, timeout time.Duration) *WebhookDeliverer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookDeliverer{URL: url, Client: &http.Client{Timeout: timeout}}
}

type webhookResponse struct {
	MessageID       string `json:"message_id"`
	StorageLocation string `json:"storage_location"`
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, req services.DeliveryRequest) (services.DeliveryReceipt, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return services.DeliveryReceipt{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(payload))
	if err != nil {
		return services.DeliveryReceipt{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := d.Client.Do(httpReq)
	if err != nil {
		return services.DeliveryReceipt{}, fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return services.DeliveryReceipt{}, fmt.Errorf("webhook rejected dispatch: status %d", resp.StatusCode)
	}
	var wr webhookResponse
	if len(body) > 0 {
		// body is optional; a non-JSON 2xx response still counts as accepted
		_ = json.Unmarshal(body, &wr)
	}
	return services.DeliveryReceipt{MessageID: wr.MessageID, StorageLocation: wr.StorageLocation}, nil
}
