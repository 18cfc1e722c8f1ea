package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Webhook event kinds the billing layer reports.
const (
	eventCheckoutCompleted   = "checkout_completed"
	eventSubscriptionChanged = "subscription_changed"
)

// subscriptionEvent is a verified webhook reduced to what the profile needs.
// UserID is set for checkout completions (from session metadata);
// subscription changes are matched by CustomerID.
type subscriptionEvent struct {
	Kind             string
	UserID           int
	Tier             string
	CustomerID       string
	SubscriptionID   string
	Status           string
	CurrentPeriodEnd time.Time
}

type checkoutResult struct {
	URL        string
	CustomerID string
}

// billingService creates hosted checkout/portal sessions and verifies
// webhooks. Implemented by stripeBilling.
type billingService interface {
	createCheckout(ctx context.Context, tier string, p profile, email, origin string) (checkoutResult, error)
	createPortal(ctx context.Context, customerID, origin string) (string, error)
	// parseWebhook verifies the signature. Events the profile does not care
	// about come back with an empty Kind.
	parseWebhook(payload []byte, signature string) (subscriptionEvent, error)
}

var errUnknownTier = errors.New("unknown subscription tier")

var validTiers = map[string]bool{"monthly": true, "annual": true, "student": true}

// maxWebhookBytes bounds the webhook body read.
const maxWebhookBytes = 64 << 10

// applySubscriptionEvent folds a billing event into the profile.
func applySubscriptionEvent(p *profile, ev subscriptionEvent) {
	if ev.CustomerID != "" {
		p.StripeCustomerID = &ev.CustomerID
	}
	if ev.SubscriptionID != "" {
		p.StripeSubscriptionID = &ev.SubscriptionID
	}
	if !ev.CurrentPeriodEnd.IsZero() {
		end := ev.CurrentPeriodEnd
		p.CurrentPeriodEnd = &end
	}

	switch ev.Kind {
	case eventCheckoutCompleted:
		p.SubscriptionStatus = "active"
		p.IsPro = true
		if validTiers[ev.Tier] {
			p.SubscriptionTier = ev.Tier
		}
		p.DailyScanLimit = proScanLimit
		p.ScansRemainingToday = proScanLimit

	case eventSubscriptionChanged:
		active := ev.Status == "active" || ev.Status == "trialing"
		p.SubscriptionStatus = ev.Status
		p.IsPro = active
		if active {
			if !validTiers[p.SubscriptionTier] {
				p.SubscriptionTier = "monthly"
			}
			p.DailyScanLimit = proScanLimit
			p.ScansRemainingToday = proScanLimit
		} else {
			p.SubscriptionTier = "free"
			p.DailyScanLimit = freeScanLimit
			p.ScansRemainingToday = freeScanLimit
		}
	}
}

// createCheckout starts a hosted subscription checkout with a 7-day trial.
// POST /api/billing/checkout. Body: { "tier": "monthly"|"annual"|"student" }.
// Returns { "url": "..." }.
func (h *Handler) createCheckout(c *gin.Context) {
	if h.billing == nil {
		apiError(c, http.StatusServiceUnavailable, "billing not configured")
		return
	}
	var body struct {
		Tier string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validTiers[body.Tier] {
		apiError(c, http.StatusBadRequest, "tier must be one of: monthly, annual, student")
		return
	}

	p, ok := h.loadProfile(c)
	if !ok {
		return
	}

	res, err := h.billing.createCheckout(c.Request.Context(), body.Tier, p, p.Email, h.appOrigin)
	if errors.Is(err, errUnknownTier) {
		apiError(c, http.StatusBadRequest, "tier not available")
		return
	}
	if err != nil {
		log.Printf("[createCheckout] %v", err)
		apiError(c, http.StatusBadGateway, "failed to create checkout session")
		return
	}

	if res.CustomerID != "" && p.StripeCustomerID == nil {
		_, err := h.updateProfile(c, p.UserID, func(cur *profile) error {
			if cur.StripeCustomerID == nil {
				cur.StripeCustomerID = &res.CustomerID
			}
			return nil
		})
		if err != nil {
			log.Printf("[createCheckout] failed to store customer id: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"url": res.URL})
}

// createPortal opens the hosted billing portal for an existing customer.
// POST /api/billing/portal. Returns { "url": "..." }; 404 if the user has
// never checked out.
func (h *Handler) createPortal(c *gin.Context) {
	if h.billing == nil {
		apiError(c, http.StatusServiceUnavailable, "billing not configured")
		return
	}
	p, ok := h.loadProfile(c)
	if !ok {
		return
	}
	if p.StripeCustomerID == nil || *p.StripeCustomerID == "" {
		apiError(c, http.StatusNotFound, "no billing account")
		return
	}

	url, err := h.billing.createPortal(c.Request.Context(), *p.StripeCustomerID, h.appOrigin)
	if err != nil {
		log.Printf("[createPortal] %v", err)
		apiError(c, http.StatusBadGateway, "failed to create portal session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// billingWebhook receives signed billing events and updates the matching
// profile. Unknown event types and unknown customers are acknowledged so the
// sender stops retrying.
// POST /api/billing/webhook (public; authenticated by signature).
func (h *Handler) billingWebhook(c *gin.Context) {
	if h.billing == nil {
		apiError(c, http.StatusServiceUnavailable, "billing not configured")
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		apiError(c, http.StatusBadRequest, "failed to read body")
		return
	}

	ev, err := h.billing.parseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("[billingWebhook] rejected: %v", err)
		apiError(c, http.StatusBadRequest, "invalid webhook")
		return
	}

	var userID int
	switch ev.Kind {
	case eventCheckoutCompleted:
		userID = ev.UserID
	case eventSubscriptionChanged:
		p, err := h.store.profileByStripeCustomer(c, ev.CustomerID)
		if errors.Is(err, errNotFound) {
			log.Printf("[billingWebhook] no profile for customer %s", ev.CustomerID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if err != nil {
			log.Printf("[billingWebhook] lookup error: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to fetch profile")
			return
		}
		userID = p.UserID
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	_, err = h.updateProfile(c, userID, func(p *profile) error {
		applySubscriptionEvent(p, ev)
		return nil
	})
	if errors.Is(err, errNotFound) {
		log.Printf("[billingWebhook] no profile for %s event (user %d)", ev.Kind, userID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err != nil {
		log.Printf("[billingWebhook] save error: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
